package verdict

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stagewiki/verdict/decisionlog"
	"github.com/stagewiki/verdict/id"
	"github.com/stagewiki/verdict/plugin"
	"github.com/stagewiki/verdict/policy"
	"github.com/stagewiki/verdict/store"
)

// Engine is the central authorization engine. It combines the role
// capability matrix with grant-distributed policy evaluation, manages
// the store, and fires extension hooks.
type Engine struct {
	store      store.Store
	evaluator  Evaluator
	cache      Cache
	plugins    *plugin.Registry
	logger     *slog.Logger
	config     Config
	principals PrincipalResolver
	resources  ResourceResolver
}

// NewEngine creates a new Verdict engine with the given options.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		evaluator: DefaultEvaluator(),
		logger:    slog.Default(),
		config:    DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		return nil, errors.New("verdict: store is required")
	}
	return e, nil
}

// Store returns the underlying composite store.
func (e *Engine) Store() store.Store { return e.store }

// Plugins returns the plugin registry (may be nil).
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// Start runs store migrations and seeds the system policy catalog.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.store.Migrate(ctx); err != nil {
		return fmt.Errorf("verdict migrate: %w", err)
	}
	if err := e.EnsureSystemPolicies(ctx); err != nil {
		return fmt.Errorf("verdict seed system policies: %w", err)
	}
	return nil
}

// Stop performs graceful shutdown.
func (e *Engine) Stop(ctx context.Context) error {
	if e.plugins != nil {
		e.plugins.EmitShutdown(ctx)
	}
	return nil
}

// EnsureSystemPolicies seeds every catalog policy that is not yet
// stored. Seeding is idempotent: policies are matched by name, and an
// existing entry is left untouched.
func (e *Engine) EnsureSystemPolicies(ctx context.Context) error {
	for _, def := range policy.SystemCatalog() {
		existing, err := e.store.GetPolicyByName(ctx, "", def.Name)
		if err != nil && !errors.Is(err, ErrPolicyNotFound) {
			return fmt.Errorf("lookup %s: %w", def.Name, err)
		}
		if existing != nil {
			continue
		}
		def.ID = id.NewPolicyID()
		if err := e.store.CreatePolicy(ctx, def); err != nil {
			return fmt.Errorf("create %s: %w", def.Name, err)
		}
		e.logger.Info("seeded system policy", slog.String("name", def.Name))
	}
	return nil
}

// Check performs an authorization check. This is the hot path.
func (e *Engine) Check(ctx context.Context, req *CheckRequest) (*CheckResult, error) {
	start := time.Now()
	scope := scopeFromContext(ctx)
	if scope.accountID == "" {
		scope.accountID = req.Principal.AccountID
	}

	// 1. Cache hit?
	if e.cache != nil {
		if cached, ok := e.cache.Get(ctx, scope.accountID, req); ok {
			cached.EvalTimeNs = time.Since(start).Nanoseconds()
			return cached, nil
		}
	}

	// 1b. Extension hook: before check.
	if e.plugins != nil {
		e.plugins.EmitBeforeCheck(ctx, req)
	}

	// 2. Resolve the principal's reachable policies and granted roles.
	policies, grantedRoles, err := e.resolveReachable(ctx, scope.accountID, &req.Principal)
	if err != nil {
		return nil, fmt.Errorf("verdict resolve grants: %w", err)
	}

	// 3. Evaluate role matrix and policy statements, deny-overrides.
	result, err := e.authorize(ctx, req, policies, grantedRoles)
	if err != nil {
		return nil, err
	}
	result.EvalTimeNs = time.Since(start).Nanoseconds()

	// 4. Audit trail.
	if e.config.LogDecisions {
		e.logDecision(ctx, scope.accountID, req, result)
	}

	// 5. Cache the result.
	if e.cache != nil {
		e.cache.Set(ctx, scope.accountID, req, result)
	}

	// 6. Extension hook: after check.
	if e.plugins != nil {
		e.plugins.EmitAfterCheck(ctx, req, result)
	}

	return result, nil
}

// Enforce returns an error if the authorization check is denied.
func (e *Engine) Enforce(ctx context.Context, req *CheckRequest) error {
	result, err := e.Check(ctx, req)
	if err != nil {
		return fmt.Errorf("verdict check: %w", err)
	}
	if !result.Allowed {
		return fmt.Errorf("%w: %s: %s", ErrAccessDenied, result.Decision, result.Reason)
	}
	return nil
}

// Can is a shorthand for a simple authorization check.
func (e *Engine) Can(ctx context.Context, principal *Principal, action Action, resource *ResourceDescriptor) (bool, error) {
	result, err := e.Check(ctx, &CheckRequest{
		Principal: *principal,
		Action:    action,
		Resource:  *resource,
	})
	if err != nil {
		return false, err
	}
	return result.Allowed, nil
}

// CheckIdentity resolves a principal and a resource reference through the
// configured resolvers and performs a check. Both resolvers must be set.
func (e *Engine) CheckIdentity(ctx context.Context, accountID, principalID string, action Action, resourceType ResourceType, resourceID string) (*CheckResult, error) {
	if e.principals == nil || e.resources == nil {
		return nil, errors.New("verdict: principal and resource resolvers are required for identity checks")
	}
	principal, err := e.principals.ResolvePrincipal(ctx, accountID, principalID)
	if err != nil {
		return nil, fmt.Errorf("verdict resolve principal: %w", err)
	}
	resource, err := e.resources.ResolveResource(ctx, accountID, resourceType, resourceID)
	if err != nil {
		return nil, fmt.Errorf("verdict resolve resource: %w", err)
	}
	return e.Check(WithAccount(ctx, accountID), &CheckRequest{
		Principal: *principal,
		Action:    action,
		Resource:  *resource,
	})
}

// Authorize evaluates a request against the role matrix and the given
// policies without touching a store. Combination is deny-overrides: an
// explicit policy deny beats every allow, any allow beats the default,
// and a request nothing matches is denied.
func Authorize(ctx context.Context, req *CheckRequest, policies []*policy.Policy, grantedRoles ...Role) (*CheckResult, error) {
	e := &Engine{evaluator: DefaultEvaluator(), config: DefaultConfig()}
	return e.authorize(ctx, req, policies, grantedRoles)
}

func (e *Engine) authorize(ctx context.Context, req *CheckRequest, policies []*policy.Policy, grantedRoles []Role) (*CheckResult, error) {
	var roleResults []*CheckResult
	if e.config.roleRulesEnabled() {
		roleResults = append(roleResults, evaluateRole(req.Principal.Role, req))
		for _, r := range grantedRoles {
			roleResults = append(roleResults, evaluateRole(r, req))
		}
	}

	var policyResult *CheckResult
	if e.config.policyRulesEnabled() {
		var err error
		policyResult, err = e.evaluator.Evaluate(ctx, policies, req)
		if err != nil {
			return nil, fmt.Errorf("verdict policy evaluation: %w", err)
		}
	}

	return mergeDecisions(roleResults, policyResult), nil
}

// resolveReachable assembles the policies and role tags a principal can
// reach: the account's own active policies plus everything distributed
// to the principal's groups through active-affiliation grants.
func (e *Engine) resolveReachable(ctx context.Context, accountID string, principal *Principal) ([]*policy.Policy, []Role, error) {
	policies, err := e.store.ListActivePolicies(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	seen := make(map[string]struct{}, len(policies))
	for _, p := range policies {
		seen[p.ID.String()] = struct{}{}
	}

	groupIDs, err := e.store.ListGroupsForMember(ctx, accountID, principal.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(groupIDs) == 0 {
		return policies, nil, nil
	}

	grants, err := e.store.ListGrantsForGroups(ctx, groupIDs)
	if err != nil {
		return nil, nil, err
	}

	var grantedRoles []Role
	for _, g := range grants {
		if g.Role != "" {
			r, err := ParseRole(g.Role)
			if err != nil {
				return nil, nil, fmt.Errorf("grant %s: %w", g.ID, err)
			}
			grantedRoles = append(grantedRoles, r)
		}
		if g.PolicyID.IsNil() {
			continue
		}
		if _, ok := seen[g.PolicyID.String()]; ok {
			continue
		}
		p, err := e.store.GetPolicy(ctx, g.PolicyID)
		if err != nil {
			if errors.Is(err, ErrPolicyNotFound) {
				e.logger.Warn("grant references missing policy",
					slog.String("grant_id", g.ID.String()),
					slog.String("policy_id", g.PolicyID.String()),
				)
				continue
			}
			return nil, nil, err
		}
		seen[p.ID.String()] = struct{}{}
		policies = append(policies, p)
	}

	return policies, grantedRoles, nil
}

// mergeDecisions combines rule sources: explicit deny > any allow >
// most informative deny > default deny.
func mergeDecisions(roleResults []*CheckResult, policyResult *CheckResult) *CheckResult {
	if policyResult != nil && policyResult.Decision == DecisionDenyExplicit {
		return policyResult
	}

	for _, r := range roleResults {
		if r != nil && r.Allowed {
			return r
		}
	}
	if policyResult != nil && policyResult.Allowed {
		return policyResult
	}

	// No allow anywhere. Prefer a scope denial over a missing-role one,
	// since it names the closest miss.
	var fallback *CheckResult
	for _, r := range roleResults {
		if r == nil {
			continue
		}
		if r.Decision == DecisionDenyScope {
			return r
		}
		if fallback == nil && r.Reason != "" {
			fallback = r
		}
	}
	if fallback != nil {
		return fallback
	}

	return &CheckResult{Decision: DecisionDenyDefault, Reason: "no matching allow rule"}
}

func (e *Engine) logDecision(ctx context.Context, accountID string, req *CheckRequest, result *CheckResult) {
	var matched string
	if len(result.MatchedBy) > 0 {
		matched = result.MatchedBy[0].Source + ":" + result.MatchedBy[0].RuleID
	}
	entry := &decisionlog.Entry{
		ID:           id.NewDecisionLogID(),
		AccountID:    accountID,
		PrincipalID:  req.Principal.ID,
		Role:         string(req.Principal.Role),
		Action:       string(req.Action),
		ResourceType: string(req.Resource.Type),
		ResourceID:   req.Resource.ID,
		Decision:     string(result.Decision),
		Reason:       result.Reason,
		MatchedRule:  matched,
		EvalTimeNs:   result.EvalTimeNs,
		CreatedAt:    time.Now().UTC(),
	}
	if err := e.store.CreateDecisionLog(ctx, entry); err != nil {
		// Auditing must not fail the check.
		e.logger.Warn("decision log write failed", slog.String("error", err.Error()))
	}
}
