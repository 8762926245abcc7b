package plugin

import (
	"context"
	"log/slog"

	"github.com/stagewiki/verdict/grant"
	"github.com/stagewiki/verdict/id"
	"github.com/stagewiki/verdict/policy"
	"github.com/stagewiki/verdict/principalgroup"
)

// Named entry types pair a hook with the plugin name for logging.

type beforeCheckEntry struct {
	name string
	hook BeforeCheck
}
type afterCheckEntry struct {
	name string
	hook AfterCheck
}
type policyCreatedEntry struct {
	name string
	hook PolicyCreated
}
type policyUpdatedEntry struct {
	name string
	hook PolicyUpdated
}
type policyDeletedEntry struct {
	name string
	hook PolicyDeleted
}
type groupCreatedEntry struct {
	name string
	hook GroupCreated
}
type groupDeletedEntry struct {
	name string
	hook GroupDeleted
}
type groupMemberAddedEntry struct {
	name string
	hook GroupMemberAdded
}
type groupMemberRemovedEntry struct {
	name string
	hook GroupMemberRemoved
}
type grantCreatedEntry struct {
	name string
	hook GrantCreated
}
type grantRevokedEntry struct {
	name string
	hook GrantRevoked
}
type affiliationStatusChangedEntry struct {
	name string
	hook AffiliationStatusChanged
}
type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered plugins and dispatches lifecycle events.
// It type-caches plugins at registration time so emit calls iterate
// only over plugins implementing the relevant hook.
type Registry struct {
	plugins []Plugin
	logger  *slog.Logger

	beforeCheck              []beforeCheckEntry
	afterCheck               []afterCheckEntry
	policyCreated            []policyCreatedEntry
	policyUpdated            []policyUpdatedEntry
	policyDeleted            []policyDeletedEntry
	groupCreated             []groupCreatedEntry
	groupDeleted             []groupDeletedEntry
	groupMemberAdded         []groupMemberAddedEntry
	groupMemberRemoved       []groupMemberRemovedEntry
	grantCreated             []grantCreatedEntry
	grantRevoked             []grantRevokedEntry
	affiliationStatusChanged []affiliationStatusChangedEntry
	shutdown                 []shutdownEntry
}

// NewRegistry creates a plugin registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds a plugin and type-asserts it into all applicable
// hook caches. Plugins are notified in registration order.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
	name := p.Name()

	if h, ok := p.(BeforeCheck); ok {
		r.beforeCheck = append(r.beforeCheck, beforeCheckEntry{name, h})
	}
	if h, ok := p.(AfterCheck); ok {
		r.afterCheck = append(r.afterCheck, afterCheckEntry{name, h})
	}
	if h, ok := p.(PolicyCreated); ok {
		r.policyCreated = append(r.policyCreated, policyCreatedEntry{name, h})
	}
	if h, ok := p.(PolicyUpdated); ok {
		r.policyUpdated = append(r.policyUpdated, policyUpdatedEntry{name, h})
	}
	if h, ok := p.(PolicyDeleted); ok {
		r.policyDeleted = append(r.policyDeleted, policyDeletedEntry{name, h})
	}
	if h, ok := p.(GroupCreated); ok {
		r.groupCreated = append(r.groupCreated, groupCreatedEntry{name, h})
	}
	if h, ok := p.(GroupDeleted); ok {
		r.groupDeleted = append(r.groupDeleted, groupDeletedEntry{name, h})
	}
	if h, ok := p.(GroupMemberAdded); ok {
		r.groupMemberAdded = append(r.groupMemberAdded, groupMemberAddedEntry{name, h})
	}
	if h, ok := p.(GroupMemberRemoved); ok {
		r.groupMemberRemoved = append(r.groupMemberRemoved, groupMemberRemovedEntry{name, h})
	}
	if h, ok := p.(GrantCreated); ok {
		r.grantCreated = append(r.grantCreated, grantCreatedEntry{name, h})
	}
	if h, ok := p.(GrantRevoked); ok {
		r.grantRevoked = append(r.grantRevoked, grantRevokedEntry{name, h})
	}
	if h, ok := p.(AffiliationStatusChanged); ok {
		r.affiliationStatusChanged = append(r.affiliationStatusChanged, affiliationStatusChangedEntry{name, h})
	}
	if h, ok := p.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Plugins returns all registered plugins.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// ──────────────────────────────────────────────────
// Check event emitters
// ──────────────────────────────────────────────────

// EmitBeforeCheck notifies all plugins that implement BeforeCheck.
func (r *Registry) EmitBeforeCheck(ctx context.Context, req any) {
	for _, e := range r.beforeCheck {
		if err := e.hook.OnBeforeCheck(ctx, req); err != nil {
			r.logHookError("OnBeforeCheck", e.name, err)
		}
	}
}

// EmitAfterCheck notifies all plugins that implement AfterCheck.
func (r *Registry) EmitAfterCheck(ctx context.Context, req, result any) {
	for _, e := range r.afterCheck {
		if err := e.hook.OnAfterCheck(ctx, req, result); err != nil {
			r.logHookError("OnAfterCheck", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Policy event emitters
// ──────────────────────────────────────────────────

// EmitPolicyCreated notifies all plugins that implement PolicyCreated.
func (r *Registry) EmitPolicyCreated(ctx context.Context, p *policy.Policy) {
	for _, e := range r.policyCreated {
		if err := e.hook.OnPolicyCreated(ctx, p); err != nil {
			r.logHookError("OnPolicyCreated", e.name, err)
		}
	}
}

// EmitPolicyUpdated notifies all plugins that implement PolicyUpdated.
func (r *Registry) EmitPolicyUpdated(ctx context.Context, p *policy.Policy) {
	for _, e := range r.policyUpdated {
		if err := e.hook.OnPolicyUpdated(ctx, p); err != nil {
			r.logHookError("OnPolicyUpdated", e.name, err)
		}
	}
}

// EmitPolicyDeleted notifies all plugins that implement PolicyDeleted.
func (r *Registry) EmitPolicyDeleted(ctx context.Context, polID id.PolicyID) {
	for _, e := range r.policyDeleted {
		if err := e.hook.OnPolicyDeleted(ctx, polID); err != nil {
			r.logHookError("OnPolicyDeleted", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Principal group event emitters
// ──────────────────────────────────────────────────

// EmitGroupCreated notifies all plugins that implement GroupCreated.
func (r *Registry) EmitGroupCreated(ctx context.Context, g *principalgroup.PrincipalGroup) {
	for _, e := range r.groupCreated {
		if err := e.hook.OnGroupCreated(ctx, g); err != nil {
			r.logHookError("OnGroupCreated", e.name, err)
		}
	}
}

// EmitGroupDeleted notifies all plugins that implement GroupDeleted.
func (r *Registry) EmitGroupDeleted(ctx context.Context, groupID id.PrincipalGroupID) {
	for _, e := range r.groupDeleted {
		if err := e.hook.OnGroupDeleted(ctx, groupID); err != nil {
			r.logHookError("OnGroupDeleted", e.name, err)
		}
	}
}

// EmitGroupMemberAdded notifies all plugins that implement GroupMemberAdded.
func (r *Registry) EmitGroupMemberAdded(ctx context.Context, groupID id.PrincipalGroupID, principalID string) {
	for _, e := range r.groupMemberAdded {
		if err := e.hook.OnGroupMemberAdded(ctx, groupID, principalID); err != nil {
			r.logHookError("OnGroupMemberAdded", e.name, err)
		}
	}
}

// EmitGroupMemberRemoved notifies all plugins that implement GroupMemberRemoved.
func (r *Registry) EmitGroupMemberRemoved(ctx context.Context, groupID id.PrincipalGroupID, principalID string) {
	for _, e := range r.groupMemberRemoved {
		if err := e.hook.OnGroupMemberRemoved(ctx, groupID, principalID); err != nil {
			r.logHookError("OnGroupMemberRemoved", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Grant event emitters
// ──────────────────────────────────────────────────

// EmitGrantCreated notifies all plugins that implement GrantCreated.
func (r *Registry) EmitGrantCreated(ctx context.Context, g *grant.AffiliationGrant) {
	for _, e := range r.grantCreated {
		if err := e.hook.OnGrantCreated(ctx, g); err != nil {
			r.logHookError("OnGrantCreated", e.name, err)
		}
	}
}

// EmitGrantRevoked notifies all plugins that implement GrantRevoked.
func (r *Registry) EmitGrantRevoked(ctx context.Context, grantID id.GrantID) {
	for _, e := range r.grantRevoked {
		if err := e.hook.OnGrantRevoked(ctx, grantID); err != nil {
			r.logHookError("OnGrantRevoked", e.name, err)
		}
	}
}

// EmitAffiliationStatusChanged notifies all plugins that implement
// AffiliationStatusChanged.
func (r *Registry) EmitAffiliationStatusChanged(ctx context.Context, affID id.AffiliationID, status grant.AffiliationStatus) {
	for _, e := range r.affiliationStatusChanged {
		if err := e.hook.OnAffiliationStatusChanged(ctx, affID, status); err != nil {
			r.logHookError("OnAffiliationStatusChanged", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Shutdown emitter
// ──────────────────────────────────────────────────

// EmitShutdown notifies all plugins that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

func (r *Registry) logHookError(hook, plugin string, err error) {
	if r.logger == nil {
		return
	}
	r.logger.Warn("plugin hook failed",
		slog.String("hook", hook),
		slog.String("plugin", plugin),
		slog.String("error", err.Error()),
	)
}
