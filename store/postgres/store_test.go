package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"

	"github.com/stagewiki/verdict"
	"github.com/stagewiki/verdict/grant"
	"github.com/stagewiki/verdict/id"
	"github.com/stagewiki/verdict/policy"
	"github.com/stagewiki/verdict/principalgroup"
)

// setupStore starts a disposable PostgreSQL container, verifies it is
// reachable, and returns a migrated store.
func setupStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("verdict"),
		tcpostgres.WithUsername("verdict"),
		tcpostgres.WithPassword("verdict"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("cannot start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}

	// Sanity-check connectivity before handing the DSN to grove.
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("pgx connect: %v", err)
	}
	if err := conn.Ping(ctx); err != nil {
		t.Fatalf("pgx ping: %v", err)
	}
	_ = conn.Close(ctx)

	pgdb := pgdriver.New()
	if err := pgdb.Open(ctx, dsn); err != nil {
		t.Fatalf("open pg driver: %v", err)
	}
	db, err := grove.Open(pgdb)
	if err != nil {
		t.Fatalf("open grove db: %v", err)
	}
	s := New(db)
	t.Cleanup(func() { _ = s.Close() })

	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func TestPolicyRoundTrip(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	p := &policy.Policy{
		ID:        id.NewPolicyID(),
		AccountID: "acct1",
		Name:      "song-editors",
		IsActive:  true,
		Statements: []policy.Statement{{
			Effect:        policy.EffectAllow,
			Actions:       []string{"edit", "submit"},
			ResourceTypes: []string{"song"},
			Conditions: []policy.Condition{{
				ID:       id.NewConditionID(),
				Key:      policy.KeyTalentIDs,
				Operator: policy.OpIn,
				Value:    policy.PrincipalAttr(policy.PrincipalTalentIDs),
			}},
		}},
	}
	if err := s.CreatePolicy(ctx, p); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetPolicyByName(ctx, "acct1", "song-editors")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != p.ID {
		t.Fatal("name lookup mismatch")
	}
	if len(got.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(got.Statements))
	}
	st := got.Statements[0]
	if len(st.Conditions) != 1 {
		t.Fatalf("expected 1 condition, got %d", len(st.Conditions))
	}
	c := st.Conditions[0]
	if !c.Value.IsPlaceholder() || c.Value.Placeholder() != policy.PrincipalTalentIDs {
		t.Fatalf("placeholder did not survive the jsonb round trip: %+v", c.Value)
	}

	active, err := s.ListActivePolicies(ctx, "acct1")
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active policy, got %d", len(active))
	}
}

func TestGroupMembership(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	def := &principalgroup.PrincipalGroup{
		ID:        id.NewPrincipalGroupID(),
		AccountID: "acct1",
		Name:      "everyone",
		IsDefault: true,
	}
	if err := s.CreateGroup(ctx, def); err != nil {
		t.Fatal(err)
	}

	dup := &principalgroup.PrincipalGroup{
		ID:        id.NewPrincipalGroupID(),
		AccountID: "acct1",
		Name:      "everyone-2",
		IsDefault: true,
	}
	if err := s.CreateGroup(ctx, dup); !errors.Is(err, verdict.ErrDefaultGroupExists) {
		t.Fatalf("expected default group conflict, got %v", err)
	}

	editors := &principalgroup.PrincipalGroup{
		ID:        id.NewPrincipalGroupID(),
		AccountID: "acct1",
		Name:      "editors",
	}
	if err := s.CreateGroup(ctx, editors); err != nil {
		t.Fatal(err)
	}
	if err := s.AddMember(ctx, editors.ID, "prin1"); err != nil {
		t.Fatal(err)
	}
	// Idempotent.
	if err := s.AddMember(ctx, editors.ID, "prin1"); err != nil {
		t.Fatal(err)
	}

	groups, err := s.ListGroupsForMember(ctx, "acct1", "prin1")
	if err != nil {
		t.Fatal(err)
	}
	// Direct membership plus the implicit default group.
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
}

func TestGrantCascadeOnStatusChange(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	group := &principalgroup.PrincipalGroup{
		ID:        id.NewPrincipalGroupID(),
		AccountID: "agency1",
		Name:      "staff",
	}
	if err := s.CreateGroup(ctx, group); err != nil {
		t.Fatal(err)
	}

	aff := &grant.Affiliation{
		ID:              id.NewAffiliationID(),
		AgencyAccountID: "agency1",
		TalentAccountID: "talent1",
		Status:          grant.StatusActive,
	}
	if err := s.PutAffiliation(ctx, aff); err != nil {
		t.Fatal(err)
	}

	g := &grant.AffiliationGrant{
		ID:               id.NewGrantID(),
		AffiliationID:    aff.ID,
		PolicyID:         id.NewPolicyID(),
		PrincipalGroupID: group.ID,
		Type:             grant.TalentSide,
	}
	if err := s.CreateGrant(ctx, g); err != nil {
		t.Fatal(err)
	}

	list, err := s.ListGrantsForGroups(ctx, []id.PrincipalGroupID{group.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 grant, got %d", len(list))
	}

	if err := s.SetAffiliationStatus(ctx, aff.ID, grant.StatusRevoked); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetGrant(ctx, g.ID); !errors.Is(err, verdict.ErrGrantNotFound) {
		t.Fatalf("expected grant gone after revocation, got %v", err)
	}

	if err := s.CreateGrant(ctx, &grant.AffiliationGrant{
		ID:               id.NewGrantID(),
		AffiliationID:    aff.ID,
		PolicyID:         id.NewPolicyID(),
		PrincipalGroupID: group.ID,
		Type:             grant.TalentSide,
	}); !errors.Is(err, verdict.ErrAffiliationInactive) {
		t.Fatalf("expected inactive affiliation error, got %v", err)
	}
}

func TestSystemPolicyProtection(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	p := policy.DenyRollback()
	p.ID = id.NewPolicyID()
	if err := s.CreatePolicy(ctx, p); err != nil {
		t.Fatal(err)
	}

	p.Description = "tampered"
	if err := s.UpdatePolicy(ctx, p); !errors.Is(err, verdict.ErrSystemPolicyImmutable) {
		t.Fatalf("expected immutable error, got %v", err)
	}
	if err := s.DeletePolicy(ctx, p.ID); !errors.Is(err, verdict.ErrSystemPolicyImmutable) {
		t.Fatalf("expected immutable error, got %v", err)
	}
}
