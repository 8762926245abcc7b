package verdict_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stagewiki/verdict"
	"github.com/stagewiki/verdict/decisionlog"
	"github.com/stagewiki/verdict/grant"
	"github.com/stagewiki/verdict/id"
	"github.com/stagewiki/verdict/policy"
	"github.com/stagewiki/verdict/principalgroup"
	"github.com/stagewiki/verdict/store/memory"
)

func newTestEngine(t *testing.T, opts ...verdict.Option) (*verdict.Engine, *memory.Store) {
	t.Helper()
	s := memory.New()
	eng, err := verdict.NewEngine(append([]verdict.Option{verdict.WithStore(s)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return eng, s
}

func TestNewEngineRequiresStore(t *testing.T) {
	if _, err := verdict.NewEngine(); err == nil {
		t.Fatal("expected error when store is nil")
	}
}

func TestCheckDefaultDeny(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	result, err := eng.Check(ctx, &verdict.CheckRequest{
		Principal: verdict.Principal{ID: "p1", AccountID: "acct1", Role: verdict.RoleNone},
		Action:    verdict.ActionEdit,
		Resource:  verdict.ResourceDescriptor{Type: verdict.ResourceSong, ID: "s1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("expected deny with no role and no policies")
	}
	if result.Decision != verdict.DecisionDenyNoRole {
		t.Fatalf("expected %s, got %s", verdict.DecisionDenyNoRole, result.Decision)
	}
}

func TestCheckNoRuleSourcesFallsToDefaultDeny(t *testing.T) {
	ctx := context.Background()
	off := false
	eng, _ := newTestEngine(t, verdict.WithConfig(verdict.Config{EnableRoleRules: &off}))

	// With the role matrix off and no policies, the merge bottoms out at
	// the default-deny code rather than a generic one.
	result, err := eng.Check(ctx, &verdict.CheckRequest{
		Principal: verdict.Principal{ID: "p1", AccountID: "acct1", Role: verdict.RoleAdministrator},
		Action:    verdict.ActionEdit,
		Resource:  verdict.ResourceDescriptor{Type: verdict.ResourceSong, ID: "s1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("expected deny with all rule sources disabled")
	}
	if result.Decision != verdict.DecisionDenyDefault {
		t.Fatalf("expected %s, got %s", verdict.DecisionDenyDefault, result.Decision)
	}
}

func TestCheckRoleAllow(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	result, err := eng.Check(ctx, &verdict.CheckRequest{
		Principal: verdict.Principal{ID: "p1", AccountID: "acct1", Role: verdict.RoleCollaborator},
		Action:    verdict.ActionEdit,
		Resource:  verdict.ResourceDescriptor{Type: verdict.ResourceSong, ID: "s1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("expected allow, got %s: %s", result.Decision, result.Reason)
	}
	if result.MatchedBy[0].Source != "role" {
		t.Fatalf("expected role match, got %+v", result.MatchedBy)
	}
}

func TestCheckPolicyDenyOverridesRoleAllow(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)

	_ = s.CreatePolicy(ctx, &policy.Policy{
		ID:        id.NewPolicyID(),
		AccountID: "acct1",
		Name:      "freeze-songs",
		IsActive:  true,
		Statements: []policy.Statement{{
			Effect:        policy.EffectDeny,
			Actions:       []string{"edit"},
			ResourceTypes: []string{"song"},
		}},
	})

	// Even an unrestricted role loses to an explicit deny.
	result, err := eng.Check(ctx, &verdict.CheckRequest{
		Principal: verdict.Principal{ID: "p1", AccountID: "acct1", Role: verdict.RoleSeniorCollaborator},
		Action:    verdict.ActionEdit,
		Resource:  verdict.ResourceDescriptor{Type: verdict.ResourceSong, ID: "s1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("expected explicit deny to win")
	}
	if result.Decision != verdict.DecisionDenyExplicit {
		t.Fatalf("expected %s, got %s", verdict.DecisionDenyExplicit, result.Decision)
	}

	// Unrelated actions are untouched.
	result, err = eng.Check(ctx, &verdict.CheckRequest{
		Principal: verdict.Principal{ID: "p1", AccountID: "acct1", Role: verdict.RoleSeniorCollaborator},
		Action:    verdict.ActionApprove,
		Resource:  verdict.ResourceDescriptor{Type: verdict.ResourceSong, ID: "s1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("expected allow, got %s: %s", result.Decision, result.Reason)
	}
}

func TestCheckAccountPolicyAllow(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)

	_ = s.CreatePolicy(ctx, &policy.Policy{
		ID:        id.NewPolicyID(),
		AccountID: "acct1",
		Name:      "song-editors",
		IsActive:  true,
		Statements: []policy.Statement{{
			Effect:        policy.EffectAllow,
			Actions:       []string{"edit"},
			ResourceTypes: []string{"song"},
		}},
	})

	// Role none contributes nothing; the account policy carries the allow.
	result, err := eng.Check(ctx, &verdict.CheckRequest{
		Principal: verdict.Principal{ID: "p1", AccountID: "acct1", Role: verdict.RoleNone},
		Action:    verdict.ActionEdit,
		Resource:  verdict.ResourceDescriptor{Type: verdict.ResourceSong, ID: "s1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("expected allow, got %s: %s", result.Decision, result.Reason)
	}
	if result.MatchedBy[0].Source != "policy" {
		t.Fatalf("expected policy match, got %+v", result.MatchedBy)
	}
}

// seedAffiliationGrant wires a talent-side account to receive an
// agency-owned policy: default group on the talent account, an active
// affiliation between the two accounts, and a grant distributing the
// policy to that group.
func seedAffiliationGrant(t *testing.T, s *memory.Store, polID id.PolicyID, role string) (affID id.AffiliationID) {
	t.Helper()
	ctx := context.Background()

	groupID := id.NewPrincipalGroupID()
	if err := s.CreateGroup(ctx, &principalgroup.PrincipalGroup{
		ID:        groupID,
		AccountID: "talent-acct",
		Name:      "Everyone",
		IsDefault: true,
	}); err != nil {
		t.Fatal(err)
	}

	affID = id.NewAffiliationID()
	if err := s.PutAffiliation(ctx, &grant.Affiliation{
		ID:              affID,
		AgencyAccountID: "agency-acct",
		TalentAccountID: "talent-acct",
		Status:          grant.StatusActive,
	}); err != nil {
		t.Fatal(err)
	}

	if err := s.CreateGrant(ctx, &grant.AffiliationGrant{
		ID:               id.NewGrantID(),
		AffiliationID:    affID,
		PolicyID:         polID,
		Role:             role,
		PrincipalGroupID: groupID,
		Type:             grant.AgencySide,
	}); err != nil {
		t.Fatal(err)
	}
	return affID
}

func TestGrantDistributesPolicyAcrossAccounts(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)

	// The policy lives in the agency account; the principal does not.
	polID := id.NewPolicyID()
	_ = s.CreatePolicy(ctx, &policy.Policy{
		ID:        polID,
		AccountID: "agency-acct",
		Name:      "agency-songs",
		IsActive:  true,
		Statements: []policy.Statement{{
			Effect:        policy.EffectAllow,
			Actions:       []string{"publish"},
			ResourceTypes: []string{"song"},
		}},
	})
	affID := seedAffiliationGrant(t, s, polID, "")

	req := &verdict.CheckRequest{
		// Membership in the default group is implicit.
		Principal: verdict.Principal{ID: "staff1", AccountID: "talent-acct", Role: verdict.RoleNone},
		Action:    verdict.ActionPublish,
		Resource:  verdict.ResourceDescriptor{Type: verdict.ResourceSong, ID: "s1"},
	}

	result, err := eng.Check(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("expected granted policy to allow, got %s: %s", result.Decision, result.Reason)
	}

	// Terminating the affiliation revokes its grants immediately.
	if err := s.SetAffiliationStatus(ctx, affID, grant.StatusTerminated); err != nil {
		t.Fatal(err)
	}
	result, err = eng.Check(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("expected deny after affiliation terminated")
	}
}

func TestGrantDistributesRole(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)

	seedAffiliationGrant(t, s, id.PolicyID{}, "agency_actor")

	// The granted agency_actor role still applies its own scope checks.
	result, err := eng.Check(ctx, &verdict.CheckRequest{
		Principal: verdict.Principal{
			ID: "staff1", AccountID: "talent-acct",
			Role: verdict.RoleNone, AgencyID: "agency1",
		},
		Action:   verdict.ActionApprove,
		Resource: verdict.ResourceDescriptor{Type: verdict.ResourceGroup, ID: "g1", AgencyID: "agency1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("expected granted role to allow, got %s: %s", result.Decision, result.Reason)
	}

	result, err = eng.Check(ctx, &verdict.CheckRequest{
		Principal: verdict.Principal{
			ID: "staff1", AccountID: "talent-acct",
			Role: verdict.RoleNone, AgencyID: "agency1",
		},
		Action:   verdict.ActionApprove,
		Resource: verdict.ResourceDescriptor{Type: verdict.ResourceGroup, ID: "g2", AgencyID: "agency2"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("expected granted role to stay in scope")
	}
}

func TestEnsureSystemPoliciesIdempotent(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t)

	if err := eng.EnsureSystemPolicies(ctx); err != nil {
		t.Fatal(err)
	}
	if err := eng.EnsureSystemPolicies(ctx); err != nil {
		t.Fatal(err)
	}

	isSystem := true
	count, err := s.CountPolicies(ctx, &policy.ListFilter{IsSystem: &isSystem})
	if err != nil {
		t.Fatal(err)
	}
	if want := int64(len(policy.SystemCatalog())); count != want {
		t.Fatalf("expected %d system policies, got %d", want, count)
	}

	// Seeded entries keep their identity across runs.
	full, err := s.GetPolicyByName(ctx, "", policy.SystemFullAccess)
	if err != nil {
		t.Fatal(err)
	}
	if err := eng.EnsureSystemPolicies(ctx); err != nil {
		t.Fatal(err)
	}
	again, err := s.GetPolicyByName(ctx, "", policy.SystemFullAccess)
	if err != nil {
		t.Fatal(err)
	}
	if full.ID.String() != again.ID.String() {
		t.Fatal("reseeding replaced an existing system policy")
	}
}

func TestEnforce(t *testing.T) {
	ctx := context.Background()
	eng, _ := newTestEngine(t)

	err := eng.Enforce(ctx, &verdict.CheckRequest{
		Principal: verdict.Principal{ID: "p1", AccountID: "acct1", Role: verdict.RoleNone},
		Action:    verdict.ActionEdit,
		Resource:  verdict.ResourceDescriptor{Type: verdict.ResourceSong, ID: "s1"},
	})
	if !errors.Is(err, verdict.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}

	err = eng.Enforce(ctx, &verdict.CheckRequest{
		Principal: verdict.Principal{ID: "p1", AccountID: "acct1", Role: verdict.RoleAdministrator},
		Action:    verdict.ActionEdit,
		Resource:  verdict.ResourceDescriptor{Type: verdict.ResourceSong, ID: "s1"},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestCheckWritesDecisionLog(t *testing.T) {
	ctx := context.Background()
	eng, s := newTestEngine(t, verdict.WithConfig(verdict.Config{LogDecisions: true}))

	_, err := eng.Check(ctx, &verdict.CheckRequest{
		Principal: verdict.Principal{ID: "p1", AccountID: "acct1", Role: verdict.RoleCollaborator},
		Action:    verdict.ActionSubmit,
		Resource:  verdict.ResourceDescriptor{Type: verdict.ResourceTalent, ID: "t1"},
	})
	if err != nil {
		t.Fatal(err)
	}

	entries, err := s.ListDecisionLogs(ctx, &decisionlog.QueryFilter{AccountID: "acct1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	e := entries[0]
	if e.PrincipalID != "p1" || e.Action != "submit" || e.ResourceType != "talent" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.Decision != string(verdict.DecisionAllow) {
		t.Fatalf("expected allow decision, got %s", e.Decision)
	}
}

func TestAuthorizeStandalone(t *testing.T) {
	ctx := context.Background()

	pol := &policy.Policy{
		ID:       id.NewPolicyID(),
		Name:     "rollback-freeze",
		IsActive: true,
		Statements: []policy.Statement{{
			Effect:        policy.EffectDeny,
			Actions:       []string{"rollback"},
			ResourceTypes: []string{"song"},
		}},
	}

	result, err := verdict.Authorize(ctx, &verdict.CheckRequest{
		Principal: verdict.Principal{ID: "p1", Role: verdict.RoleSeniorCollaborator},
		Action:    verdict.ActionRollback,
		Resource:  verdict.ResourceDescriptor{Type: verdict.ResourceSong, ID: "s1"},
	}, []*policy.Policy{pol})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("expected standalone deny")
	}

	// Granted roles passed directly participate in the merge.
	result, err = verdict.Authorize(ctx, &verdict.CheckRequest{
		Principal: verdict.Principal{ID: "p1", Role: verdict.RoleNone},
		Action:    verdict.ActionEdit,
		Resource:  verdict.ResourceDescriptor{Type: verdict.ResourceSong, ID: "s1"},
	}, nil, verdict.RoleCollaborator)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("expected granted role allow, got %s: %s", result.Decision, result.Reason)
	}
}
