// Package memory provides an in-memory implementation of the Verdict
// composite store. It is intended for testing and development.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/stagewiki/verdict"
	"github.com/stagewiki/verdict/decisionlog"
	"github.com/stagewiki/verdict/grant"
	"github.com/stagewiki/verdict/id"
	"github.com/stagewiki/verdict/policy"
	"github.com/stagewiki/verdict/principalgroup"
)

// Compile-time interface checks.
var (
	_ policy.Store         = (*Store)(nil)
	_ principalgroup.Store = (*Store)(nil)
	_ grant.Store          = (*Store)(nil)
	_ decisionlog.Store    = (*Store)(nil)
)

// Store is a thread-safe in-memory store for all Verdict entities.
type Store struct {
	mu sync.RWMutex

	policies     map[string]*policy.Policy
	groups       map[string]*principalgroup.PrincipalGroup
	affiliations map[string]*grant.Affiliation
	grants       map[string]*grant.AffiliationGrant
	decisionLogs map[string]*decisionlog.Entry
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		policies:     make(map[string]*policy.Policy),
		groups:       make(map[string]*principalgroup.PrincipalGroup),
		affiliations: make(map[string]*grant.Affiliation),
		grants:       make(map[string]*grant.AffiliationGrant),
		decisionLogs: make(map[string]*decisionlog.Entry),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Policy Store
// ──────────────────────────────────────────────────

func (s *Store) CreatePolicy(_ context.Context, p *policy.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[p.ID.String()] = p.Clone()
	return nil
}

func (s *Store) GetPolicy(_ context.Context, polID id.PolicyID) (*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.policies[polID.String()]
	if !ok {
		return nil, fmt.Errorf("policy %s: %w", polID, verdict.ErrPolicyNotFound)
	}
	return p.Clone(), nil
}

func (s *Store) GetPolicyByName(_ context.Context, accountID, name string) (*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.policies {
		if p.AccountID == accountID && p.Name == name {
			return p.Clone(), nil
		}
	}
	return nil, fmt.Errorf("policy %q: %w", name, verdict.ErrPolicyNotFound)
}

func (s *Store) UpdatePolicy(_ context.Context, p *policy.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.policies[p.ID.String()]
	if !ok {
		return fmt.Errorf("policy %s: %w", p.ID, verdict.ErrPolicyNotFound)
	}
	if existing.IsSystem {
		return fmt.Errorf("policy %q: %w", existing.Name, verdict.ErrSystemPolicyImmutable)
	}
	s.policies[p.ID.String()] = p.Clone()
	return nil
}

func (s *Store) DeletePolicy(_ context.Context, polID id.PolicyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.policies[polID.String()]; ok && existing.IsSystem {
		return fmt.Errorf("policy %q: %w", existing.Name, verdict.ErrSystemPolicyImmutable)
	}
	delete(s.policies, polID.String())
	return nil
}

func (s *Store) ListPolicies(_ context.Context, filter *policy.ListFilter) ([]*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*policy.Policy, 0, len(s.policies))
	for _, p := range s.policies {
		if filter != nil {
			if filter.AccountID != "" && p.AccountID != filter.AccountID {
				continue
			}
			if filter.IsSystem != nil && p.IsSystem != *filter.IsSystem {
				continue
			}
			if filter.IsActive != nil && p.IsActive != *filter.IsActive {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
				continue
			}
		}
		result = append(result, p.Clone())
	}
	return applyPagination(result, paginationOptsPol(filter)), nil
}

func (s *Store) CountPolicies(ctx context.Context, filter *policy.ListFilter) (int64, error) {
	list, err := s.ListPolicies(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) ListActivePolicies(_ context.Context, accountID string) ([]*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*policy.Policy
	for _, p := range s.policies {
		if p.AccountID == accountID && p.IsActive {
			result = append(result, p.Clone())
		}
	}
	return result, nil
}

func (s *Store) SetPolicyVersion(_ context.Context, polID id.PolicyID, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.policies[polID.String()]
	if !ok {
		return fmt.Errorf("policy %s: %w", polID, verdict.ErrPolicyNotFound)
	}
	p.Version = version
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) DeletePoliciesByAccount(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, p := range s.policies {
		if p.AccountID == accountID && !p.IsSystem {
			delete(s.policies, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Principal Group Store
// ──────────────────────────────────────────────────

func (s *Store) CreateGroup(_ context.Context, g *principalgroup.PrincipalGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.IsDefault {
		for _, existing := range s.groups {
			if existing.AccountID == g.AccountID && existing.IsDefault {
				return fmt.Errorf("account %s: %w", g.AccountID, verdict.ErrDefaultGroupExists)
			}
		}
	}
	s.groups[g.ID.String()] = copyGroup(g)
	return nil
}

func (s *Store) GetGroup(_ context.Context, groupID id.PrincipalGroupID) (*principalgroup.PrincipalGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[groupID.String()]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", groupID, verdict.ErrGroupNotFound)
	}
	return copyGroup(g), nil
}

func (s *Store) GetDefaultGroup(_ context.Context, accountID string) (*principalgroup.PrincipalGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.groups {
		if g.AccountID == accountID && g.IsDefault {
			return copyGroup(g), nil
		}
	}
	return nil, fmt.Errorf("default group for account %s: %w", accountID, verdict.ErrGroupNotFound)
}

func (s *Store) UpdateGroup(_ context.Context, g *principalgroup.PrincipalGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[g.ID.String()]; !ok {
		return fmt.Errorf("group %s: %w", g.ID, verdict.ErrGroupNotFound)
	}
	s.groups[g.ID.String()] = copyGroup(g)
	return nil
}

func (s *Store) DeleteGroup(_ context.Context, groupID id.PrincipalGroupID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.groups, groupID.String())
	return nil
}

func (s *Store) ListGroups(_ context.Context, filter *principalgroup.ListFilter) ([]*principalgroup.PrincipalGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*principalgroup.PrincipalGroup, 0, len(s.groups))
	for _, g := range s.groups {
		if filter != nil {
			if filter.AccountID != "" && g.AccountID != filter.AccountID {
				continue
			}
			if filter.IsDefault != nil && g.IsDefault != *filter.IsDefault {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(g.Name), strings.ToLower(filter.Search)) {
				continue
			}
		}
		result = append(result, copyGroup(g))
	}
	return applyPagination(result, paginationOptsGrp(filter)), nil
}

func (s *Store) CountGroups(ctx context.Context, filter *principalgroup.ListFilter) (int64, error) {
	list, err := s.ListGroups(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) AddMember(_ context.Context, groupID id.PrincipalGroupID, principalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID.String()]
	if !ok {
		return fmt.Errorf("group %s: %w", groupID, verdict.ErrGroupNotFound)
	}
	if g.HasMember(principalID) {
		return nil
	}
	g.MemberIDs = append(g.MemberIDs, principalID)
	g.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) RemoveMember(_ context.Context, groupID id.PrincipalGroupID, principalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID.String()]
	if !ok {
		return fmt.Errorf("group %s: %w", groupID, verdict.ErrGroupNotFound)
	}
	for i, m := range g.MemberIDs {
		if m == principalID {
			g.MemberIDs = append(g.MemberIDs[:i], g.MemberIDs[i+1:]...)
			g.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return nil
}

func (s *Store) ListGroupsForMember(_ context.Context, accountID, principalID string) ([]id.PrincipalGroupID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []id.PrincipalGroupID
	for _, g := range s.groups {
		if accountID != "" && g.AccountID != accountID {
			continue
		}
		// Principals of an account belong to its default group implicitly.
		if g.HasMember(principalID) || (g.IsDefault && g.AccountID == accountID) {
			result = append(result, g.ID)
		}
	}
	return result, nil
}

func (s *Store) DeleteGroupsByAccount(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, g := range s.groups {
		if g.AccountID == accountID {
			delete(s.groups, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Grant Store
// ──────────────────────────────────────────────────

func (s *Store) PutAffiliation(_ context.Context, a *grant.Affiliation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.affiliations[a.ID.String()] = copyAffiliation(a)
	return nil
}

func (s *Store) GetAffiliation(_ context.Context, affID id.AffiliationID) (*grant.Affiliation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.affiliations[affID.String()]
	if !ok {
		return nil, fmt.Errorf("affiliation %s: %w", affID, verdict.ErrAffiliationNotFound)
	}
	return copyAffiliation(a), nil
}

func (s *Store) SetAffiliationStatus(_ context.Context, affID id.AffiliationID, status grant.AffiliationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.affiliations[affID.String()]
	if !ok {
		return fmt.Errorf("affiliation %s: %w", affID, verdict.ErrAffiliationNotFound)
	}
	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	if status != grant.StatusActive {
		for k, g := range s.grants {
			if g.AffiliationID.String() == affID.String() {
				delete(s.grants, k)
			}
		}
	}
	return nil
}

func (s *Store) CreateGrant(_ context.Context, g *grant.AffiliationGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.affiliations[g.AffiliationID.String()]
	if !ok {
		return fmt.Errorf("affiliation %s: %w", g.AffiliationID, verdict.ErrAffiliationNotFound)
	}
	if !a.IsActive() {
		return fmt.Errorf("affiliation %s: %w", g.AffiliationID, verdict.ErrAffiliationInactive)
	}
	for _, existing := range s.grants {
		if existing.AffiliationID.String() == g.AffiliationID.String() &&
			existing.PolicyID.String() == g.PolicyID.String() &&
			existing.Role == g.Role &&
			existing.PrincipalGroupID.String() == g.PrincipalGroupID.String() {
			return fmt.Errorf("affiliation %s: %w", g.AffiliationID, verdict.ErrDuplicateGrant)
		}
	}
	s.grants[g.ID.String()] = copyGrant(g)
	return nil
}

func (s *Store) GetGrant(_ context.Context, grantID id.GrantID) (*grant.AffiliationGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.grants[grantID.String()]
	if !ok {
		return nil, fmt.Errorf("grant %s: %w", grantID, verdict.ErrGrantNotFound)
	}
	return copyGrant(g), nil
}

func (s *Store) DeleteGrant(_ context.Context, grantID id.GrantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.grants, grantID.String())
	return nil
}

func (s *Store) ListGrants(_ context.Context, filter *grant.ListFilter) ([]*grant.AffiliationGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*grant.AffiliationGrant, 0, len(s.grants))
	for _, g := range s.grants {
		if filter != nil {
			if filter.AffiliationID != nil && g.AffiliationID.String() != filter.AffiliationID.String() {
				continue
			}
			if filter.PolicyID != nil && g.PolicyID.String() != filter.PolicyID.String() {
				continue
			}
			if filter.PrincipalGroupID != nil && g.PrincipalGroupID.String() != filter.PrincipalGroupID.String() {
				continue
			}
			if filter.Type != "" && g.Type != filter.Type {
				continue
			}
		}
		result = append(result, copyGrant(g))
	}
	return applyPagination(result, paginationOptsGrant(filter)), nil
}

func (s *Store) CountGrants(ctx context.Context, filter *grant.ListFilter) (int64, error) {
	list, err := s.ListGrants(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) ListGrantsForGroups(_ context.Context, groupIDs []id.PrincipalGroupID) ([]*grant.AffiliationGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := make(map[string]struct{}, len(groupIDs))
	for _, gid := range groupIDs {
		want[gid.String()] = struct{}{}
	}
	var result []*grant.AffiliationGrant
	for _, g := range s.grants {
		if _, ok := want[g.PrincipalGroupID.String()]; !ok {
			continue
		}
		a, ok := s.affiliations[g.AffiliationID.String()]
		if !ok || !a.IsActive() {
			continue
		}
		result = append(result, copyGrant(g))
	}
	return result, nil
}

func (s *Store) DeleteGrantsByAffiliation(_ context.Context, affID id.AffiliationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, g := range s.grants {
		if g.AffiliationID.String() == affID.String() {
			delete(s.grants, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Decision Log Store
// ──────────────────────────────────────────────────

func (s *Store) CreateDecisionLog(_ context.Context, e *decisionlog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisionLogs[e.ID.String()] = copyDecisionLog(e)
	return nil
}

func (s *Store) GetDecisionLog(_ context.Context, logID id.DecisionLogID) (*decisionlog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.decisionLogs[logID.String()]
	if !ok {
		return nil, fmt.Errorf("decision log %s: %w", logID, verdict.ErrDecisionLogNotFound)
	}
	return copyDecisionLog(e), nil
}

func (s *Store) ListDecisionLogs(_ context.Context, filter *decisionlog.QueryFilter) ([]*decisionlog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*decisionlog.Entry, 0, len(s.decisionLogs))
	for _, e := range s.decisionLogs {
		if filter != nil && !matchDecisionLog(e, filter) {
			continue
		}
		result = append(result, copyDecisionLog(e))
	}
	return applyPagination(result, paginationOptsDL(filter)), nil
}

func (s *Store) CountDecisionLogs(ctx context.Context, filter *decisionlog.QueryFilter) (int64, error) {
	list, err := s.ListDecisionLogs(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) PurgeDecisionLogs(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged int64
	for k, e := range s.decisionLogs {
		if e.CreatedAt.Before(before) {
			delete(s.decisionLogs, k)
			purged++
		}
	}
	return purged, nil
}

func (s *Store) DeleteDecisionLogsByAccount(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.decisionLogs {
		if e.AccountID == accountID {
			delete(s.decisionLogs, k)
		}
	}
	return nil
}

func matchDecisionLog(e *decisionlog.Entry, f *decisionlog.QueryFilter) bool {
	if f.AccountID != "" && e.AccountID != f.AccountID {
		return false
	}
	if f.PrincipalID != "" && e.PrincipalID != f.PrincipalID {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.ResourceType != "" && e.ResourceType != f.ResourceType {
		return false
	}
	if f.ResourceID != "" && e.ResourceID != f.ResourceID {
		return false
	}
	if f.Decision != "" && e.Decision != f.Decision {
		return false
	}
	if f.After != nil && !e.CreatedAt.After(*f.After) {
		return false
	}
	if f.Before != nil && !e.CreatedAt.Before(*f.Before) {
		return false
	}
	return true
}

// ──────────────────────────────────────────────────
// Copy and pagination helpers
// ──────────────────────────────────────────────────

func copyGroup(g *principalgroup.PrincipalGroup) *principalgroup.PrincipalGroup {
	c := *g
	if g.MemberIDs != nil {
		c.MemberIDs = make([]string, len(g.MemberIDs))
		copy(c.MemberIDs, g.MemberIDs)
	}
	return &c
}

func copyAffiliation(a *grant.Affiliation) *grant.Affiliation {
	c := *a
	return &c
}

func copyGrant(g *grant.AffiliationGrant) *grant.AffiliationGrant {
	c := *g
	return &c
}

func copyDecisionLog(e *decisionlog.Entry) *decisionlog.Entry {
	c := *e
	return &c
}

type pagOpts struct{ limit, offset int }

func applyPagination[T any](items []*T, p pagOpts) []*T {
	if p.offset > 0 && p.offset < len(items) {
		items = items[p.offset:]
	} else if p.offset >= len(items) && p.offset > 0 {
		return nil
	}
	if p.limit > 0 && p.limit < len(items) {
		items = items[:p.limit]
	}
	return items
}

func paginationOptsPol(f *policy.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func paginationOptsGrp(f *principalgroup.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func paginationOptsGrant(f *grant.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func paginationOptsDL(f *decisionlog.QueryFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}
