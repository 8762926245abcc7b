package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stagewiki/verdict"
	"github.com/stagewiki/verdict/decisionlog"
	"github.com/stagewiki/verdict/grant"
	"github.com/stagewiki/verdict/id"
	"github.com/stagewiki/verdict/policy"
	"github.com/stagewiki/verdict/principalgroup"
	"github.com/stagewiki/verdict/store"
)

// Compile-time check that *Store implements store.Store.
var _ store.Store = (*Store)(nil)

func TestPolicyCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	p := &policy.Policy{
		ID:        id.NewPolicyID(),
		AccountID: "acct1",
		Name:      "song-editors",
		IsActive:  true,
		Statements: []policy.Statement{{
			Effect:        policy.EffectAllow,
			Actions:       []string{"edit"},
			ResourceTypes: []string{"song"},
		}},
	}

	// Create
	if err := s.CreatePolicy(ctx, p); err != nil {
		t.Fatal(err)
	}

	// Get
	got, err := s.GetPolicy(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "song-editors" {
		t.Fatalf("expected song-editors, got %s", got.Name)
	}

	// GetByName
	got, err = s.GetPolicyByName(ctx, "acct1", "song-editors")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != p.ID {
		t.Fatal("name lookup mismatch")
	}

	// Update
	p.Description = "editors of song records"
	if err := s.UpdatePolicy(ctx, p); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetPolicy(ctx, p.ID)
	if got.Description != "editors of song records" {
		t.Fatal("update failed")
	}

	// List
	list, _ := s.ListPolicies(ctx, &policy.ListFilter{AccountID: "acct1"})
	if len(list) != 1 {
		t.Fatalf("expected 1 policy, got %d", len(list))
	}

	// Count
	count, _ := s.CountPolicies(ctx, &policy.ListFilter{AccountID: "acct1"})
	if count != 1 {
		t.Fatalf("expected count 1, got %d", count)
	}

	// Delete
	if err := s.DeletePolicy(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetPolicy(ctx, p.ID); !errors.Is(err, verdict.ErrPolicyNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestSystemPolicyImmutable(t *testing.T) {
	ctx := context.Background()
	s := New()

	p := policy.FullAccess()
	p.ID = id.NewPolicyID()
	if err := s.CreatePolicy(ctx, p); err != nil {
		t.Fatal(err)
	}

	p.Description = "tampered"
	if err := s.UpdatePolicy(ctx, p); !errors.Is(err, verdict.ErrSystemPolicyImmutable) {
		t.Fatalf("expected immutable error on update, got %v", err)
	}
	if err := s.DeletePolicy(ctx, p.ID); !errors.Is(err, verdict.ErrSystemPolicyImmutable) {
		t.Fatalf("expected immutable error on delete, got %v", err)
	}
}

func TestListActivePolicies(t *testing.T) {
	ctx := context.Background()
	s := New()

	active := &policy.Policy{ID: id.NewPolicyID(), AccountID: "acct1", Name: "active", IsActive: true}
	inactive := &policy.Policy{ID: id.NewPolicyID(), AccountID: "acct1", Name: "inactive"}
	other := &policy.Policy{ID: id.NewPolicyID(), AccountID: "acct2", Name: "other", IsActive: true}
	for _, p := range []*policy.Policy{active, inactive, other} {
		if err := s.CreatePolicy(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.ListActivePolicies(ctx, "acct1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Name != "active" {
		t.Fatalf("expected only the active acct1 policy, got %d", len(list))
	}
}

func TestGroupCRUDAndMembership(t *testing.T) {
	ctx := context.Background()
	s := New()

	g := &principalgroup.PrincipalGroup{
		ID:        id.NewPrincipalGroupID(),
		AccountID: "acct1",
		Name:      "editors",
	}
	if err := s.CreateGroup(ctx, g); err != nil {
		t.Fatal(err)
	}

	if err := s.AddMember(ctx, g.ID, "prin1"); err != nil {
		t.Fatal(err)
	}
	// Adding twice is a no-op.
	if err := s.AddMember(ctx, g.ID, "prin1"); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetGroup(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.MemberIDs) != 1 || !got.HasMember("prin1") {
		t.Fatalf("expected single member prin1, got %v", got.MemberIDs)
	}

	groups, err := s.ListGroupsForMember(ctx, "acct1", "prin1")
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 1 || groups[0] != g.ID {
		t.Fatalf("expected membership in %s, got %v", g.ID, groups)
	}

	if err := s.RemoveMember(ctx, g.ID, "prin1"); err != nil {
		t.Fatal(err)
	}
	groups, _ = s.ListGroupsForMember(ctx, "acct1", "prin1")
	if len(groups) != 0 {
		t.Fatalf("expected no memberships after removal, got %v", groups)
	}
}

func TestDefaultGroup(t *testing.T) {
	ctx := context.Background()
	s := New()

	def := &principalgroup.PrincipalGroup{
		ID:        id.NewPrincipalGroupID(),
		AccountID: "acct1",
		Name:      "everyone",
		IsDefault: true,
	}
	if err := s.CreateGroup(ctx, def); err != nil {
		t.Fatal(err)
	}

	// A second default group is rejected.
	dup := &principalgroup.PrincipalGroup{
		ID:        id.NewPrincipalGroupID(),
		AccountID: "acct1",
		Name:      "everyone-again",
		IsDefault: true,
	}
	if err := s.CreateGroup(ctx, dup); !errors.Is(err, verdict.ErrDefaultGroupExists) {
		t.Fatalf("expected default group conflict, got %v", err)
	}

	got, err := s.GetDefaultGroup(ctx, "acct1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != def.ID {
		t.Fatal("default group lookup mismatch")
	}

	// Every principal of the account is implicitly in the default group.
	groups, err := s.ListGroupsForMember(ctx, "acct1", "someone-new")
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 1 || groups[0] != def.ID {
		t.Fatalf("expected implicit default membership, got %v", groups)
	}
}

func TestGrantLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	aff := &grant.Affiliation{
		ID:              id.NewAffiliationID(),
		AgencyAccountID: "agency1",
		TalentAccountID: "talent1",
		Status:          grant.StatusActive,
	}
	if err := s.PutAffiliation(ctx, aff); err != nil {
		t.Fatal(err)
	}

	groupID := id.NewPrincipalGroupID()
	g := &grant.AffiliationGrant{
		ID:               id.NewGrantID(),
		AffiliationID:    aff.ID,
		PolicyID:         id.NewPolicyID(),
		PrincipalGroupID: groupID,
		Type:             grant.TalentSide,
	}
	if err := s.CreateGrant(ctx, g); err != nil {
		t.Fatal(err)
	}

	// Identical grant is rejected.
	dup := *g
	dup.ID = id.NewGrantID()
	if err := s.CreateGrant(ctx, &dup); !errors.Is(err, verdict.ErrDuplicateGrant) {
		t.Fatalf("expected duplicate grant error, got %v", err)
	}

	list, err := s.ListGrantsForGroups(ctx, []id.PrincipalGroupID{groupID})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 grant, got %d", len(list))
	}

	// Terminating the affiliation hard-deletes its grants.
	if err := s.SetAffiliationStatus(ctx, aff.ID, grant.StatusTerminated); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetGrant(ctx, g.ID); !errors.Is(err, verdict.ErrGrantNotFound) {
		t.Fatalf("expected grant gone after termination, got %v", err)
	}

	// New grants against the terminated affiliation are rejected.
	late := &grant.AffiliationGrant{
		ID:               id.NewGrantID(),
		AffiliationID:    aff.ID,
		PolicyID:         id.NewPolicyID(),
		PrincipalGroupID: groupID,
		Type:             grant.TalentSide,
	}
	if err := s.CreateGrant(ctx, late); !errors.Is(err, verdict.ErrAffiliationInactive) {
		t.Fatalf("expected inactive affiliation error, got %v", err)
	}
}

func TestListGrantsForGroupsSkipsInactive(t *testing.T) {
	ctx := context.Background()
	s := New()

	groupID := id.NewPrincipalGroupID()

	active := &grant.Affiliation{ID: id.NewAffiliationID(), Status: grant.StatusActive}
	if err := s.PutAffiliation(ctx, active); err != nil {
		t.Fatal(err)
	}
	g := &grant.AffiliationGrant{
		ID:               id.NewGrantID(),
		AffiliationID:    active.ID,
		PolicyID:         id.NewPolicyID(),
		PrincipalGroupID: groupID,
		Type:             grant.AgencySide,
	}
	if err := s.CreateGrant(ctx, g); err != nil {
		t.Fatal(err)
	}

	// Flip the affiliation out from under the grant via PutAffiliation,
	// which does not cascade. Resolution must still skip the grant.
	active.Status = grant.StatusRevoked
	if err := s.PutAffiliation(ctx, active); err != nil {
		t.Fatal(err)
	}

	list, err := s.ListGrantsForGroups(ctx, []id.PrincipalGroupID{groupID})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no grants from inactive affiliation, got %d", len(list))
	}
}

func TestDecisionLogStore(t *testing.T) {
	ctx := context.Background()
	s := New()

	old := &decisionlog.Entry{
		ID:        id.NewDecisionLogID(),
		AccountID: "acct1",
		Decision:  "allow",
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}
	recent := &decisionlog.Entry{
		ID:        id.NewDecisionLogID(),
		AccountID: "acct1",
		Decision:  "deny_default",
		CreatedAt: time.Now(),
	}
	for _, e := range []*decisionlog.Entry{old, recent} {
		if err := s.CreateDecisionLog(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.ListDecisionLogs(ctx, &decisionlog.QueryFilter{AccountID: "acct1", Decision: "allow"})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != old.ID {
		t.Fatalf("expected the allow entry, got %d entries", len(list))
	}

	purged, err := s.PurgeDecisionLogs(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged entry, got %d", purged)
	}
	if _, err := s.GetDecisionLog(ctx, old.ID); err == nil {
		t.Fatal("expected purged entry gone")
	}
	if _, err := s.GetDecisionLog(ctx, recent.ID); err != nil {
		t.Fatal(err)
	}
}

func TestStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()

	p := &policy.Policy{
		ID:        id.NewPolicyID(),
		AccountID: "acct1",
		Name:      "original",
		IsActive:  true,
		Statements: []policy.Statement{{
			Effect:        policy.EffectAllow,
			Actions:       []string{"edit"},
			ResourceTypes: []string{"song"},
		}},
	}
	if err := s.CreatePolicy(ctx, p); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetPolicy(ctx, p.ID)
	got.Statements[0].Actions[0] = "rollback"

	again, _ := s.GetPolicy(ctx, p.ID)
	if again.Statements[0].Actions[0] != "edit" {
		t.Fatal("store leaked internal state to a caller")
	}
}
