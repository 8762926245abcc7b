// Package postgres provides a PostgreSQL implementation of the Verdict
// composite store using grove ORM with Go-based migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/stagewiki/verdict"
	"github.com/stagewiki/verdict/decisionlog"
	"github.com/stagewiki/verdict/grant"
	"github.com/stagewiki/verdict/id"
	"github.com/stagewiki/verdict/policy"
	"github.com/stagewiki/verdict/principalgroup"
	"github.com/stagewiki/verdict/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a PostgreSQL implementation of the composite Verdict store.
type Store struct {
	db   *grove.DB
	pgdb *pgdriver.PgDB
}

// New creates a new PostgreSQL store.
func New(db *grove.DB) *Store {
	return &Store{
		db:   db,
		pgdb: pgdriver.Unwrap(db),
	}
}

// Migrate runs programmatic migrations via the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pgdb)
	if err != nil {
		return fmt.Errorf("verdict: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("verdict: migration failed: %w", err)
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ──────────────────────────────────────────────────
// Policy operations
// ──────────────────────────────────────────────────

func (s *Store) CreatePolicy(ctx context.Context, p *policy.Policy) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Version == 0 {
		p.Version = 1
	}
	m := policyToModel(p)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("verdict: create policy: %w", err)
	}
	return nil
}

func (s *Store) GetPolicy(ctx context.Context, polID id.PolicyID) (*policy.Policy, error) {
	m := new(policyModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", polID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("policy %s: %w", polID, verdict.ErrPolicyNotFound)
		}
		return nil, fmt.Errorf("verdict: get policy: %w", err)
	}
	return policyFromModel(m), nil
}

func (s *Store) GetPolicyByName(ctx context.Context, accountID, name string) (*policy.Policy, error) {
	m := new(policyModel)
	err := s.pgdb.NewSelect(m).
		Where("account_id = ?", accountID).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("policy %q: %w", name, verdict.ErrPolicyNotFound)
		}
		return nil, fmt.Errorf("verdict: get policy by name: %w", err)
	}
	return policyFromModel(m), nil
}

func (s *Store) UpdatePolicy(ctx context.Context, p *policy.Policy) error {
	existing, err := s.GetPolicy(ctx, p.ID)
	if err != nil {
		return err
	}
	if existing.IsSystem {
		return fmt.Errorf("policy %q: %w", existing.Name, verdict.ErrSystemPolicyImmutable)
	}
	p.UpdatedAt = time.Now().UTC()
	m := policyToModel(p)
	if _, err := s.pgdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("verdict: update policy: %w", err)
	}
	return nil
}

func (s *Store) DeletePolicy(ctx context.Context, polID id.PolicyID) error {
	existing, err := s.GetPolicy(ctx, polID)
	if err != nil {
		if errors.Is(err, verdict.ErrPolicyNotFound) {
			return nil
		}
		return err
	}
	if existing.IsSystem {
		return fmt.Errorf("policy %q: %w", existing.Name, verdict.ErrSystemPolicyImmutable)
	}
	if _, err := s.pgdb.NewDelete((*policyModel)(nil)).
		Where("id = ?", polID.String()).Exec(ctx); err != nil {
		return fmt.Errorf("verdict: delete policy: %w", err)
	}
	return nil
}

func (s *Store) ListPolicies(ctx context.Context, filter *policy.ListFilter) ([]*policy.Policy, error) {
	var models []policyModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.AccountID != "" {
			q = q.Where("account_id = ?", filter.AccountID)
		}
		if filter.IsSystem != nil {
			q = q.Where("is_system = ?", *filter.IsSystem)
		}
		if filter.IsActive != nil {
			q = q.Where("is_active = ?", *filter.IsActive)
		}
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict: list policies: %w", err)
	}
	result := make([]*policy.Policy, len(models))
	for i := range models {
		result[i] = policyFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountPolicies(ctx context.Context, filter *policy.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*policyModel)(nil))
	if filter != nil {
		if filter.AccountID != "" {
			q = q.Where("account_id = ?", filter.AccountID)
		}
		if filter.IsSystem != nil {
			q = q.Where("is_system = ?", *filter.IsSystem)
		}
		if filter.IsActive != nil {
			q = q.Where("is_active = ?", *filter.IsActive)
		}
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("verdict: count policies: %w", err)
	}
	return count, nil
}

func (s *Store) ListActivePolicies(ctx context.Context, accountID string) ([]*policy.Policy, error) {
	var models []policyModel
	err := s.pgdb.NewSelect(&models).
		Where("account_id = ?", accountID).
		Where("is_active = TRUE").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("verdict: list active policies: %w", err)
	}
	result := make([]*policy.Policy, len(models))
	for i := range models {
		result[i] = policyFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) SetPolicyVersion(ctx context.Context, polID id.PolicyID, version int) error {
	_, err := s.pgdb.NewUpdate((*policyModel)(nil)).
		Set("version = ?", version).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", polID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: set policy version: %w", err)
	}
	return nil
}

func (s *Store) DeletePoliciesByAccount(ctx context.Context, accountID string) error {
	_, err := s.pgdb.NewDelete((*policyModel)(nil)).
		Where("account_id = ?", accountID).
		Where("is_system = FALSE").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: delete policies by account: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Principal group operations
// ──────────────────────────────────────────────────

func (s *Store) CreateGroup(ctx context.Context, g *principalgroup.PrincipalGroup) error {
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now
	if g.IsDefault {
		count, err := s.pgdb.NewSelect((*groupModel)(nil)).
			Where("account_id = ?", g.AccountID).
			Where("is_default = TRUE").
			Count(ctx)
		if err != nil {
			return fmt.Errorf("verdict: check default group: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("account %s: %w", g.AccountID, verdict.ErrDefaultGroupExists)
		}
	}
	m := groupToModel(g)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("verdict: create group: %w", err)
	}
	return nil
}

func (s *Store) GetGroup(ctx context.Context, groupID id.PrincipalGroupID) (*principalgroup.PrincipalGroup, error) {
	m := new(groupModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", groupID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("group %s: %w", groupID, verdict.ErrGroupNotFound)
		}
		return nil, fmt.Errorf("verdict: get group: %w", err)
	}
	members, err := s.listMembers(ctx, groupID.String())
	if err != nil {
		return nil, err
	}
	return groupFromModel(m, members), nil
}

func (s *Store) GetDefaultGroup(ctx context.Context, accountID string) (*principalgroup.PrincipalGroup, error) {
	m := new(groupModel)
	err := s.pgdb.NewSelect(m).
		Where("account_id = ?", accountID).
		Where("is_default = TRUE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("default group for account %s: %w", accountID, verdict.ErrGroupNotFound)
		}
		return nil, fmt.Errorf("verdict: get default group: %w", err)
	}
	members, err := s.listMembers(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	return groupFromModel(m, members), nil
}

func (s *Store) listMembers(ctx context.Context, groupID string) ([]string, error) {
	var models []groupMemberModel
	err := s.pgdb.NewSelect(&models).
		Where("group_id = ?", groupID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("verdict: list group members: %w", err)
	}
	members := make([]string, len(models))
	for i, m := range models {
		members[i] = m.PrincipalID
	}
	return members, nil
}

func (s *Store) UpdateGroup(ctx context.Context, g *principalgroup.PrincipalGroup) error {
	g.UpdatedAt = time.Now().UTC()
	m := groupToModel(g)
	if _, err := s.pgdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("verdict: update group: %w", err)
	}
	return nil
}

func (s *Store) DeleteGroup(ctx context.Context, groupID id.PrincipalGroupID) error {
	// Memberships cascade via FK.
	_, err := s.pgdb.NewDelete((*groupModel)(nil)).
		Where("id = ?", groupID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: delete group: %w", err)
	}
	return nil
}

func (s *Store) ListGroups(ctx context.Context, filter *principalgroup.ListFilter) ([]*principalgroup.PrincipalGroup, error) {
	var models []groupModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.AccountID != "" {
			q = q.Where("account_id = ?", filter.AccountID)
		}
		if filter.IsDefault != nil {
			q = q.Where("is_default = ?", *filter.IsDefault)
		}
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict: list groups: %w", err)
	}
	result := make([]*principalgroup.PrincipalGroup, len(models))
	for i := range models {
		members, err := s.listMembers(ctx, models[i].ID)
		if err != nil {
			return nil, err
		}
		result[i] = groupFromModel(&models[i], members)
	}
	return result, nil
}

func (s *Store) CountGroups(ctx context.Context, filter *principalgroup.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*groupModel)(nil))
	if filter != nil {
		if filter.AccountID != "" {
			q = q.Where("account_id = ?", filter.AccountID)
		}
		if filter.IsDefault != nil {
			q = q.Where("is_default = ?", *filter.IsDefault)
		}
		if filter.Search != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("verdict: count groups: %w", err)
	}
	return count, nil
}

func (s *Store) AddMember(ctx context.Context, groupID id.PrincipalGroupID, principalID string) error {
	m := &groupMemberModel{
		GroupID:     groupID.String(),
		PrincipalID: principalID,
	}
	_, err := s.pgdb.NewInsert(m).
		OnConflict("(group_id, principal_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: add group member: %w", err)
	}
	return nil
}

func (s *Store) RemoveMember(ctx context.Context, groupID id.PrincipalGroupID, principalID string) error {
	_, err := s.pgdb.NewDelete((*groupMemberModel)(nil)).
		Where("group_id = ?", groupID.String()).
		Where("principal_id = ?", principalID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: remove group member: %w", err)
	}
	return nil
}

func (s *Store) ListGroupsForMember(ctx context.Context, accountID, principalID string) ([]id.PrincipalGroupID, error) {
	// Direct memberships plus the account default group, which every
	// principal of the account belongs to implicitly.
	var models []groupModel
	q := s.pgdb.NewSelect(&models).
		Join("LEFT JOIN", "verdict_group_members AS gm", "gm.group_id = verdict_principal_groups.id").
		Where("(gm.principal_id = ? OR (verdict_principal_groups.is_default AND verdict_principal_groups.account_id = ?))", principalID, accountID).
		DistinctOn("verdict_principal_groups.id")
	if accountID != "" {
		q = q.Where("verdict_principal_groups.account_id = ?", accountID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict: list groups for member: %w", err)
	}
	result := make([]id.PrincipalGroupID, 0, len(models))
	for _, m := range models {
		gid, err := id.ParsePrincipalGroupID(m.ID)
		if err == nil {
			result = append(result, gid)
		}
	}
	return result, nil
}

func (s *Store) DeleteGroupsByAccount(ctx context.Context, accountID string) error {
	_, err := s.pgdb.NewDelete((*groupModel)(nil)).
		Where("account_id = ?", accountID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: delete groups by account: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Affiliation and grant operations
// ──────────────────────────────────────────────────

func (s *Store) PutAffiliation(ctx context.Context, a *grant.Affiliation) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	m := affiliationToModel(a)
	_, err := s.pgdb.NewInsert(m).
		OnConflict("(id) DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: put affiliation: %w", err)
	}
	return nil
}

func (s *Store) GetAffiliation(ctx context.Context, affID id.AffiliationID) (*grant.Affiliation, error) {
	m := new(affiliationModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", affID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("affiliation %s: %w", affID, verdict.ErrAffiliationNotFound)
		}
		return nil, fmt.Errorf("verdict: get affiliation: %w", err)
	}
	return affiliationFromModel(m), nil
}

func (s *Store) SetAffiliationStatus(ctx context.Context, affID id.AffiliationID, status grant.AffiliationStatus) error {
	tx, err := s.pgdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("verdict: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	res, err := tx.NewUpdate((*affiliationModel)(nil)).
		Set("status = ?", string(status)).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", affID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: set affiliation status: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("affiliation %s: %w", affID, verdict.ErrAffiliationNotFound)
	}

	// Leaving the active state removes every grant this affiliation
	// authorized.
	if status != grant.StatusActive {
		_, err = tx.NewDelete((*grantModel)(nil)).
			Where("affiliation_id = ?", affID.String()).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("verdict: cascade grant delete: %w", err)
		}
	}

	return tx.Commit()
}

func (s *Store) CreateGrant(ctx context.Context, g *grant.AffiliationGrant) error {
	aff, err := s.GetAffiliation(ctx, g.AffiliationID)
	if err != nil {
		return err
	}
	if !aff.IsActive() {
		return fmt.Errorf("affiliation %s: %w", g.AffiliationID, verdict.ErrAffiliationInactive)
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	m := grantToModel(g)
	res, err := s.pgdb.NewInsert(m).
		OnConflict("(affiliation_id, policy_id, role, principal_group_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: create grant: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("affiliation %s: %w", g.AffiliationID, verdict.ErrDuplicateGrant)
	}
	return nil
}

func (s *Store) GetGrant(ctx context.Context, grantID id.GrantID) (*grant.AffiliationGrant, error) {
	m := new(grantModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", grantID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("grant %s: %w", grantID, verdict.ErrGrantNotFound)
		}
		return nil, fmt.Errorf("verdict: get grant: %w", err)
	}
	return grantFromModel(m), nil
}

func (s *Store) DeleteGrant(ctx context.Context, grantID id.GrantID) error {
	_, err := s.pgdb.NewDelete((*grantModel)(nil)).
		Where("id = ?", grantID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: delete grant: %w", err)
	}
	return nil
}

func (s *Store) ListGrants(ctx context.Context, filter *grant.ListFilter) ([]*grant.AffiliationGrant, error) {
	var models []grantModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.AffiliationID != nil {
			q = q.Where("affiliation_id = ?", filter.AffiliationID.String())
		}
		if filter.PolicyID != nil {
			q = q.Where("policy_id = ?", filter.PolicyID.String())
		}
		if filter.PrincipalGroupID != nil {
			q = q.Where("principal_group_id = ?", filter.PrincipalGroupID.String())
		}
		if filter.Type != "" {
			q = q.Where("type = ?", string(filter.Type))
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict: list grants: %w", err)
	}
	result := make([]*grant.AffiliationGrant, len(models))
	for i := range models {
		result[i] = grantFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountGrants(ctx context.Context, filter *grant.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*grantModel)(nil))
	if filter != nil {
		if filter.AffiliationID != nil {
			q = q.Where("affiliation_id = ?", filter.AffiliationID.String())
		}
		if filter.PolicyID != nil {
			q = q.Where("policy_id = ?", filter.PolicyID.String())
		}
		if filter.PrincipalGroupID != nil {
			q = q.Where("principal_group_id = ?", filter.PrincipalGroupID.String())
		}
		if filter.Type != "" {
			q = q.Where("type = ?", string(filter.Type))
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("verdict: count grants: %w", err)
	}
	return count, nil
}

func (s *Store) ListGrantsForGroups(ctx context.Context, groupIDs []id.PrincipalGroupID) ([]*grant.AffiliationGrant, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	ids := make([]string, len(groupIDs))
	for i, gid := range groupIDs {
		ids[i] = gid.String()
	}
	var models []grantModel
	err := s.pgdb.NewSelect(&models).
		Join("JOIN", "verdict_affiliations AS a", "a.id = verdict_grants.affiliation_id").
		Where("verdict_grants.principal_group_id IN (?)", ids).
		Where("a.status = ?", string(grant.StatusActive)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("verdict: list grants for groups: %w", err)
	}
	result := make([]*grant.AffiliationGrant, len(models))
	for i := range models {
		result[i] = grantFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) DeleteGrantsByAffiliation(ctx context.Context, affID id.AffiliationID) error {
	_, err := s.pgdb.NewDelete((*grantModel)(nil)).
		Where("affiliation_id = ?", affID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: delete grants by affiliation: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Decision log operations
// ──────────────────────────────────────────────────

func (s *Store) CreateDecisionLog(ctx context.Context, e *decisionlog.Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	m := decisionLogToModel(e)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("verdict: create decision log: %w", err)
	}
	return nil
}

func (s *Store) GetDecisionLog(ctx context.Context, logID id.DecisionLogID) (*decisionlog.Entry, error) {
	m := new(decisionLogModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", logID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("decision log %s: %w", logID, verdict.ErrDecisionLogNotFound)
		}
		return nil, fmt.Errorf("verdict: get decision log: %w", err)
	}
	return decisionLogFromModel(m), nil
}

func (s *Store) ListDecisionLogs(ctx context.Context, filter *decisionlog.QueryFilter) ([]*decisionlog.Entry, error) {
	var models []decisionLogModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at DESC")
	if filter != nil {
		if filter.AccountID != "" {
			q = q.Where("account_id = ?", filter.AccountID)
		}
		if filter.PrincipalID != "" {
			q = q.Where("principal_id = ?", filter.PrincipalID)
		}
		if filter.Action != "" {
			q = q.Where("action = ?", filter.Action)
		}
		if filter.ResourceType != "" {
			q = q.Where("resource_type = ?", filter.ResourceType)
		}
		if filter.ResourceID != "" {
			q = q.Where("resource_id = ?", filter.ResourceID)
		}
		if filter.Decision != "" {
			q = q.Where("decision = ?", filter.Decision)
		}
		if filter.After != nil {
			q = q.Where("created_at > ?", *filter.After)
		}
		if filter.Before != nil {
			q = q.Where("created_at < ?", *filter.Before)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict: list decision logs: %w", err)
	}
	result := make([]*decisionlog.Entry, len(models))
	for i := range models {
		result[i] = decisionLogFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountDecisionLogs(ctx context.Context, filter *decisionlog.QueryFilter) (int64, error) {
	q := s.pgdb.NewSelect((*decisionLogModel)(nil))
	if filter != nil {
		if filter.AccountID != "" {
			q = q.Where("account_id = ?", filter.AccountID)
		}
		if filter.PrincipalID != "" {
			q = q.Where("principal_id = ?", filter.PrincipalID)
		}
		if filter.Action != "" {
			q = q.Where("action = ?", filter.Action)
		}
		if filter.ResourceType != "" {
			q = q.Where("resource_type = ?", filter.ResourceType)
		}
		if filter.ResourceID != "" {
			q = q.Where("resource_id = ?", filter.ResourceID)
		}
		if filter.Decision != "" {
			q = q.Where("decision = ?", filter.Decision)
		}
		if filter.After != nil {
			q = q.Where("created_at > ?", *filter.After)
		}
		if filter.Before != nil {
			q = q.Where("created_at < ?", *filter.Before)
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("verdict: count decision logs: %w", err)
	}
	return count, nil
}

func (s *Store) PurgeDecisionLogs(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.pgdb.NewDelete((*decisionLogModel)(nil)).
		Where("created_at < ?", before).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("verdict: purge decision logs: %w", err)
	}
	purged, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return purged, nil
}

func (s *Store) DeleteDecisionLogsByAccount(ctx context.Context, accountID string) error {
	_, err := s.pgdb.NewDelete((*decisionLogModel)(nil)).
		Where("account_id = ?", accountID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict: delete decision logs by account: %w", err)
	}
	return nil
}
