// Package mongo provides a MongoDB implementation of the Verdict
// composite store. Group membership is embedded in the group document;
// everything else maps one collection per entity.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/stagewiki/verdict"
	"github.com/stagewiki/verdict/decisionlog"
	"github.com/stagewiki/verdict/grant"
	"github.com/stagewiki/verdict/id"
	"github.com/stagewiki/verdict/policy"
	"github.com/stagewiki/verdict/principalgroup"
	"github.com/stagewiki/verdict/store"
)

// Collection name constants.
const (
	colPolicies     = "verdict_policies"
	colGroups       = "verdict_principal_groups"
	colAffiliations = "verdict_affiliations"
	colGrants       = "verdict_grants"
	colDecisionLogs = "verdict_decision_logs"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a MongoDB implementation of the composite Verdict store.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// Migrate creates indexes for all verdict collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()
	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("verdict/mongo: migrate %s indexes: %w", col, err)
		}
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

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongod.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all verdict collections.
func migrationIndexes() map[string][]mongod.IndexModel {
	return map[string][]mongod.IndexModel{
		colPolicies: {
			{
				Keys:    bson.D{{Key: "account_id", Value: 1}, {Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "is_active", Value: 1}}},
			{Keys: bson.D{{Key: "is_system", Value: 1}}},
		},
		colGroups: {
			{
				Keys:    bson.D{{Key: "account_id", Value: 1}, {Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "account_id", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.D{{Key: "is_default", Value: true}}),
			},
			{Keys: bson.D{{Key: "member_ids", Value: 1}}},
		},
		colAffiliations: {
			{Keys: bson.D{{Key: "agency_account_id", Value: 1}}},
			{Keys: bson.D{{Key: "talent_account_id", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		colGrants: {
			{
				Keys: bson.D{
					{Key: "affiliation_id", Value: 1},
					{Key: "policy_id", Value: 1},
					{Key: "role", Value: 1},
					{Key: "principal_group_id", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "affiliation_id", Value: 1}}},
			{Keys: bson.D{{Key: "principal_group_id", Value: 1}}},
		},
		colDecisionLogs: {
			{Keys: bson.D{{Key: "account_id", Value: 1}}},
			{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "principal_id", Value: 1}}},
			{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "decision", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	}
}

// ──────────────────────────────────────────────────
// Policy operations
// ──────────────────────────────────────────────────

func (s *Store) CreatePolicy(ctx context.Context, p *policy.Policy) error {
	t := now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = t
	}
	p.UpdatedAt = t
	if p.Version == 0 {
		p.Version = 1
	}
	m := policyToModel(p)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("verdict/mongo: create policy: %w", err)
	}
	return nil
}

func (s *Store) GetPolicy(ctx context.Context, polID id.PolicyID) (*policy.Policy, error) {
	var m policyModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": polID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("policy %s: %w", polID, verdict.ErrPolicyNotFound)
		}
		return nil, fmt.Errorf("verdict/mongo: get policy: %w", err)
	}
	return policyFromModel(&m), nil
}

func (s *Store) GetPolicyByName(ctx context.Context, accountID, name string) (*policy.Policy, error) {
	var m policyModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"account_id": accountID, "name": name}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("policy %q: %w", name, verdict.ErrPolicyNotFound)
		}
		return nil, fmt.Errorf("verdict/mongo: get policy by name: %w", err)
	}
	return policyFromModel(&m), nil
}

func (s *Store) UpdatePolicy(ctx context.Context, p *policy.Policy) error {
	existing, err := s.GetPolicy(ctx, p.ID)
	if err != nil {
		return err
	}
	if existing.IsSystem {
		return fmt.Errorf("policy %q: %w", existing.Name, verdict.ErrSystemPolicyImmutable)
	}
	p.UpdatedAt = now()
	m := policyToModel(p)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict/mongo: update policy: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("policy %s: %w", p.ID, verdict.ErrPolicyNotFound)
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
	_, err = s.mdb.NewDelete((*policyModel)(nil)).
		Filter(bson.M{"_id": polID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict/mongo: delete policy: %w", err)
	}
	return nil
}

func policyFilter(filter *policy.ListFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.AccountID != "" {
		f["account_id"] = filter.AccountID
	}
	if filter.IsSystem != nil {
		f["is_system"] = *filter.IsSystem
	}
	if filter.IsActive != nil {
		f["is_active"] = *filter.IsActive
	}
	if filter.Search != "" {
		f["name"] = bson.M{"$regex": filter.Search, "$options": "i"}
	}
	return f
}

func (s *Store) ListPolicies(ctx context.Context, filter *policy.ListFilter) ([]*policy.Policy, error) {
	var models []policyModel
	q := s.mdb.NewFind(&models).
		Filter(policyFilter(filter)).
		Sort(bson.D{{Key: "created_at", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict/mongo: list policies: %w", err)
	}
	result := make([]*policy.Policy, len(models))
	for i := range models {
		result[i] = policyFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountPolicies(ctx context.Context, filter *policy.ListFilter) (int64, error) {
	count, err := s.mdb.NewFind((*policyModel)(nil)).
		Filter(policyFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("verdict/mongo: count policies: %w", err)
	}
	return count, nil
}

func (s *Store) ListActivePolicies(ctx context.Context, accountID string) ([]*policy.Policy, error) {
	var models []policyModel
	if err := s.mdb.NewFind(&models).
		Filter(bson.M{
			"account_id": accountID,
			"is_active":  true,
		}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict/mongo: list active policies: %w", err)
	}
	result := make([]*policy.Policy, len(models))
	for i := range models {
		result[i] = policyFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) SetPolicyVersion(ctx context.Context, polID id.PolicyID, version int) error {
	res, err := s.mdb.NewUpdate((*policyModel)(nil)).
		Filter(bson.M{"_id": polID.String()}).
		Set("version", version).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict/mongo: set policy version: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("policy %s: %w", polID, verdict.ErrPolicyNotFound)
	}
	return nil
}

func (s *Store) DeletePoliciesByAccount(ctx context.Context, accountID string) error {
	_, err := s.mdb.NewDelete((*policyModel)(nil)).
		Many().
		Filter(bson.M{"account_id": accountID, "is_system": false}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict/mongo: delete policies by account: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Principal group operations
// ──────────────────────────────────────────────────

func (s *Store) CreateGroup(ctx context.Context, g *principalgroup.PrincipalGroup) error {
	t := now()
	g.CreatedAt = t
	g.UpdatedAt = t
	if g.IsDefault {
		count, err := s.mdb.NewFind((*groupModel)(nil)).
			Filter(bson.M{"account_id": g.AccountID, "is_default": true}).
			Count(ctx)
		if err != nil {
			return fmt.Errorf("verdict/mongo: check default group: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("account %s: %w", g.AccountID, verdict.ErrDefaultGroupExists)
		}
	}
	m := groupToModel(g)
	if m.MemberIDs == nil {
		m.MemberIDs = []string{}
	}
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("verdict/mongo: create group: %w", err)
	}
	return nil
}

func (s *Store) GetGroup(ctx context.Context, groupID id.PrincipalGroupID) (*principalgroup.PrincipalGroup, error) {
	var m groupModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": groupID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("group %s: %w", groupID, verdict.ErrGroupNotFound)
		}
		return nil, fmt.Errorf("verdict/mongo: get group: %w", err)
	}
	return groupFromModel(&m), nil
}

func (s *Store) GetDefaultGroup(ctx context.Context, accountID string) (*principalgroup.PrincipalGroup, error) {
	var m groupModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"account_id": accountID, "is_default": true}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("default group for account %s: %w", accountID, verdict.ErrGroupNotFound)
		}
		return nil, fmt.Errorf("verdict/mongo: get default group: %w", err)
	}
	return groupFromModel(&m), nil
}

func (s *Store) UpdateGroup(ctx context.Context, g *principalgroup.PrincipalGroup) error {
	g.UpdatedAt = now()
	m := groupToModel(g)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict/mongo: update group: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("group %s: %w", g.ID, verdict.ErrGroupNotFound)
	}
	return nil
}

func (s *Store) DeleteGroup(ctx context.Context, groupID id.PrincipalGroupID) error {
	_, err := s.mdb.NewDelete((*groupModel)(nil)).
		Filter(bson.M{"_id": groupID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict/mongo: delete group: %w", err)
	}
	return nil
}

func groupFilter(filter *principalgroup.ListFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.AccountID != "" {
		f["account_id"] = filter.AccountID
	}
	if filter.IsDefault != nil {
		f["is_default"] = *filter.IsDefault
	}
	if filter.Search != "" {
		f["name"] = bson.M{"$regex": filter.Search, "$options": "i"}
	}
	return f
}

func (s *Store) ListGroups(ctx context.Context, filter *principalgroup.ListFilter) ([]*principalgroup.PrincipalGroup, error) {
	var models []groupModel
	q := s.mdb.NewFind(&models).
		Filter(groupFilter(filter)).
		Sort(bson.D{{Key: "created_at", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict/mongo: list groups: %w", err)
	}
	result := make([]*principalgroup.PrincipalGroup, len(models))
	for i := range models {
		result[i] = groupFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountGroups(ctx context.Context, filter *principalgroup.ListFilter) (int64, error) {
	count, err := s.mdb.NewFind((*groupModel)(nil)).
		Filter(groupFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("verdict/mongo: count groups: %w", err)
	}
	return count, nil
}

func (s *Store) AddMember(ctx context.Context, groupID id.PrincipalGroupID, principalID string) error {
	g, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if g.HasMember(principalID) {
		return nil // already a member
	}
	g.MemberIDs = append(g.MemberIDs, principalID)
	return s.UpdateGroup(ctx, g)
}

func (s *Store) RemoveMember(ctx context.Context, groupID id.PrincipalGroupID, principalID string) error {
	g, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	kept := g.MemberIDs[:0]
	for _, m := range g.MemberIDs {
		if m != principalID {
			kept = append(kept, m)
		}
	}
	g.MemberIDs = kept
	return s.UpdateGroup(ctx, g)
}

func (s *Store) ListGroupsForMember(ctx context.Context, accountID, principalID string) ([]id.PrincipalGroupID, error) {
	f := bson.M{"member_ids": principalID}
	if accountID != "" {
		// Every account member implicitly belongs to the default group.
		f = bson.M{
			"account_id": accountID,
			"$or": []bson.M{
				{"member_ids": principalID},
				{"is_default": true},
			},
		}
	}
	var models []groupModel
	if err := s.mdb.NewFind(&models).
		Filter(f).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict/mongo: list groups for member: %w", err)
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
	_, err := s.mdb.NewDelete((*groupModel)(nil)).
		Many().
		Filter(bson.M{"account_id": accountID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict/mongo: delete groups by account: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Affiliation and grant operations
// ──────────────────────────────────────────────────

func (s *Store) PutAffiliation(ctx context.Context, a *grant.Affiliation) error {
	t := now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = t
	}
	a.UpdatedAt = t
	m := affiliationToModel(a)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict/mongo: put affiliation: %w", err)
	}
	if res.MatchedCount() == 0 {
		if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
			return fmt.Errorf("verdict/mongo: put affiliation: %w", err)
		}
	}
	return nil
}

func (s *Store) GetAffiliation(ctx context.Context, affID id.AffiliationID) (*grant.Affiliation, error) {
	var m affiliationModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": affID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("affiliation %s: %w", affID, verdict.ErrAffiliationNotFound)
		}
		return nil, fmt.Errorf("verdict/mongo: get affiliation: %w", err)
	}
	return affiliationFromModel(&m), nil
}

func (s *Store) SetAffiliationStatus(ctx context.Context, affID id.AffiliationID, status grant.AffiliationStatus) error {
	res, err := s.mdb.NewUpdate((*affiliationModel)(nil)).
		Filter(bson.M{"_id": affID.String()}).
		Set("status", string(status)).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict/mongo: set affiliation status: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("affiliation %s: %w", affID, verdict.ErrAffiliationNotFound)
	}
	if status != grant.StatusActive {
		if err := s.DeleteGrantsByAffiliation(ctx, affID); err != nil {
			return err
		}
	}
	return nil
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
		g.CreatedAt = now()
	}
	m := grantToModel(g)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return fmt.Errorf("affiliation %s: %w", g.AffiliationID, verdict.ErrDuplicateGrant)
		}
		return fmt.Errorf("verdict/mongo: create grant: %w", err)
	}
	return nil
}

func (s *Store) GetGrant(ctx context.Context, grantID id.GrantID) (*grant.AffiliationGrant, error) {
	var m grantModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": grantID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("grant %s: %w", grantID, verdict.ErrGrantNotFound)
		}
		return nil, fmt.Errorf("verdict/mongo: get grant: %w", err)
	}
	return grantFromModel(&m), nil
}

func (s *Store) DeleteGrant(ctx context.Context, grantID id.GrantID) error {
	_, err := s.mdb.NewDelete((*grantModel)(nil)).
		Filter(bson.M{"_id": grantID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict/mongo: delete grant: %w", err)
	}
	return nil
}

func grantFilter(filter *grant.ListFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.AffiliationID != nil {
		f["affiliation_id"] = filter.AffiliationID.String()
	}
	if filter.PolicyID != nil {
		f["policy_id"] = filter.PolicyID.String()
	}
	if filter.PrincipalGroupID != nil {
		f["principal_group_id"] = filter.PrincipalGroupID.String()
	}
	if filter.Type != "" {
		f["type"] = string(filter.Type)
	}
	return f
}

func (s *Store) ListGrants(ctx context.Context, filter *grant.ListFilter) ([]*grant.AffiliationGrant, error) {
	var models []grantModel
	q := s.mdb.NewFind(&models).
		Filter(grantFilter(filter)).
		Sort(bson.D{{Key: "created_at", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict/mongo: list grants: %w", err)
	}
	result := make([]*grant.AffiliationGrant, len(models))
	for i := range models {
		result[i] = grantFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountGrants(ctx context.Context, filter *grant.ListFilter) (int64, error) {
	count, err := s.mdb.NewFind((*grantModel)(nil)).
		Filter(grantFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("verdict/mongo: count grants: %w", err)
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
	if err := s.mdb.NewFind(&models).
		Filter(bson.M{"principal_group_id": bson.M{"$in": ids}}).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict/mongo: list grants for groups: %w", err)
	}
	if len(models) == 0 {
		return nil, nil
	}

	// Filter out grants whose affiliation is no longer active.
	affIDs := make([]string, 0, len(models))
	seen := make(map[string]struct{})
	for _, m := range models {
		if _, ok := seen[m.AffiliationID]; !ok {
			seen[m.AffiliationID] = struct{}{}
			affIDs = append(affIDs, m.AffiliationID)
		}
	}
	var affModels []affiliationModel
	if err := s.mdb.NewFind(&affModels).
		Filter(bson.M{
			"_id":    bson.M{"$in": affIDs},
			"status": string(grant.StatusActive),
		}).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict/mongo: list grants for groups: %w", err)
	}
	active := make(map[string]struct{}, len(affModels))
	for _, a := range affModels {
		active[a.ID] = struct{}{}
	}

	result := make([]*grant.AffiliationGrant, 0, len(models))
	for i := range models {
		if _, ok := active[models[i].AffiliationID]; ok {
			result = append(result, grantFromModel(&models[i]))
		}
	}
	return result, nil
}

func (s *Store) DeleteGrantsByAffiliation(ctx context.Context, affID id.AffiliationID) error {
	_, err := s.mdb.NewDelete((*grantModel)(nil)).
		Many().
		Filter(bson.M{"affiliation_id": affID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict/mongo: delete grants by affiliation: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Decision log operations
// ──────────────────────────────────────────────────

func (s *Store) CreateDecisionLog(ctx context.Context, e *decisionlog.Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now()
	}
	m := decisionLogToModel(e)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("verdict/mongo: create decision log: %w", err)
	}
	return nil
}

func (s *Store) GetDecisionLog(ctx context.Context, logID id.DecisionLogID) (*decisionlog.Entry, error) {
	var m decisionLogModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": logID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("decision log %s: %w", logID, verdict.ErrDecisionLogNotFound)
		}
		return nil, fmt.Errorf("verdict/mongo: get decision log: %w", err)
	}
	return decisionLogFromModel(&m), nil
}

func decisionLogFilter(filter *decisionlog.QueryFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.AccountID != "" {
		f["account_id"] = filter.AccountID
	}
	if filter.PrincipalID != "" {
		f["principal_id"] = filter.PrincipalID
	}
	if filter.Action != "" {
		f["action"] = filter.Action
	}
	if filter.ResourceType != "" {
		f["resource_type"] = filter.ResourceType
	}
	if filter.ResourceID != "" {
		f["resource_id"] = filter.ResourceID
	}
	if filter.Decision != "" {
		f["decision"] = filter.Decision
	}
	if filter.After != nil || filter.Before != nil {
		dateFilter := bson.M{}
		if filter.After != nil {
			dateFilter["$gt"] = *filter.After
		}
		if filter.Before != nil {
			dateFilter["$lt"] = *filter.Before
		}
		f["created_at"] = dateFilter
	}
	return f
}

func (s *Store) ListDecisionLogs(ctx context.Context, filter *decisionlog.QueryFilter) ([]*decisionlog.Entry, error) {
	var models []decisionLogModel
	q := s.mdb.NewFind(&models).
		Filter(decisionLogFilter(filter)).
		Sort(bson.D{{Key: "created_at", Value: -1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("verdict/mongo: list decision logs: %w", err)
	}
	result := make([]*decisionlog.Entry, len(models))
	for i := range models {
		result[i] = decisionLogFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountDecisionLogs(ctx context.Context, filter *decisionlog.QueryFilter) (int64, error) {
	count, err := s.mdb.NewFind((*decisionLogModel)(nil)).
		Filter(decisionLogFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("verdict/mongo: count decision logs: %w", err)
	}
	return count, nil
}

func (s *Store) PurgeDecisionLogs(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.mdb.NewDelete((*decisionLogModel)(nil)).
		Many().
		Filter(bson.M{"created_at": bson.M{"$lt": before}}).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("verdict/mongo: purge decision logs: %w", err)
	}
	return res.DeletedCount(), nil
}

func (s *Store) DeleteDecisionLogsByAccount(ctx context.Context, accountID string) error {
	_, err := s.mdb.NewDelete((*decisionLogModel)(nil)).
		Many().
		Filter(bson.M{"account_id": accountID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("verdict/mongo: delete decision logs by account: %w", err)
	}
	return nil
}
