// Package plugin defines the plugin system for Verdict.
// Plugins are notified of lifecycle events (check performed, policy
// updated, grant created, etc.) and can react with logging, metrics,
// tracing, cache invalidation.
//
// Each lifecycle hook is a separate interface so plugins opt in only
// to the events they care about.
package plugin

import (
	"context"

	"github.com/stagewiki/verdict/grant"
	"github.com/stagewiki/verdict/id"
	"github.com/stagewiki/verdict/policy"
	"github.com/stagewiki/verdict/principalgroup"
)

// Plugin is the base interface all plugins must implement.
type Plugin interface {
	// Name returns a unique human-readable name for the plugin.
	Name() string
}

// ──────────────────────────────────────────────────
// Check lifecycle hooks
// ──────────────────────────────────────────────────

// BeforeCheck is called before an authorization check is evaluated.
// The req parameter is *verdict.CheckRequest (passed as any to avoid import cycle).
type BeforeCheck interface {
	OnBeforeCheck(ctx context.Context, req any) error
}

// AfterCheck is called after an authorization check completes.
// The req parameter is *verdict.CheckRequest; result is *verdict.CheckResult.
type AfterCheck interface {
	OnAfterCheck(ctx context.Context, req, result any) error
}

// ──────────────────────────────────────────────────
// Policy lifecycle hooks
// ──────────────────────────────────────────────────

// PolicyCreated is called after a policy is created.
type PolicyCreated interface {
	OnPolicyCreated(ctx context.Context, p *policy.Policy) error
}

// PolicyUpdated is called after a policy is updated.
type PolicyUpdated interface {
	OnPolicyUpdated(ctx context.Context, p *policy.Policy) error
}

// PolicyDeleted is called after a policy is deleted.
type PolicyDeleted interface {
	OnPolicyDeleted(ctx context.Context, polID id.PolicyID) error
}

// ──────────────────────────────────────────────────
// Principal group lifecycle hooks
// ──────────────────────────────────────────────────

// GroupCreated is called after a principal group is created.
type GroupCreated interface {
	OnGroupCreated(ctx context.Context, g *principalgroup.PrincipalGroup) error
}

// GroupDeleted is called after a principal group is deleted.
type GroupDeleted interface {
	OnGroupDeleted(ctx context.Context, groupID id.PrincipalGroupID) error
}

// GroupMemberAdded is called after a principal joins a group.
type GroupMemberAdded interface {
	OnGroupMemberAdded(ctx context.Context, groupID id.PrincipalGroupID, principalID string) error
}

// GroupMemberRemoved is called after a principal leaves a group.
type GroupMemberRemoved interface {
	OnGroupMemberRemoved(ctx context.Context, groupID id.PrincipalGroupID, principalID string) error
}

// ──────────────────────────────────────────────────
// Grant lifecycle hooks
// ──────────────────────────────────────────────────

// GrantCreated is called after an affiliation grant is created.
type GrantCreated interface {
	OnGrantCreated(ctx context.Context, g *grant.AffiliationGrant) error
}

// GrantRevoked is called after an affiliation grant is deleted, whether
// directly or by cascade when its affiliation left the active state.
type GrantRevoked interface {
	OnGrantRevoked(ctx context.Context, grantID id.GrantID) error
}

// AffiliationStatusChanged is called after an affiliation transitions
// lifecycle state.
type AffiliationStatusChanged interface {
	OnAffiliationStatusChanged(ctx context.Context, affID id.AffiliationID, status grant.AffiliationStatus) error
}

// ──────────────────────────────────────────────────
// Shutdown hook
// ──────────────────────────────────────────────────

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
