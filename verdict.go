// Package verdict provides the authorization engine for the StageWiki
// platform: it decides whether an acting principal may perform an action
// on a wiki resource (agency, group, talent, or song record).
//
// Two mechanisms are combined through a single deny-overrides fold: a
// role-based capability matrix with built-in scope checks, and a
// declarative statement/condition policy model whose grants are
// distributed across accounts via affiliation grants.
//
//	eng, err := verdict.NewEngine(
//	    verdict.WithStore(memStore),
//	)
//	result, err := eng.Check(ctx, &verdict.CheckRequest{
//	    Principal: principal,
//	    Action:    verdict.ActionApprove,
//	    Resource:  descriptor,
//	})
package verdict

import "fmt"

// Action identifies what a principal wants to do to a wiki resource.
type Action string

const (
	// ActionCreate creates a new draft record.
	ActionCreate Action = "create"

	// ActionEdit modifies an existing record.
	ActionEdit Action = "edit"

	// ActionSubmit submits a draft for review.
	ActionSubmit Action = "submit"

	// ActionApprove approves a submitted draft.
	ActionApprove Action = "approve"

	// ActionReject rejects a submitted draft.
	ActionReject Action = "reject"

	// ActionTranslate approves a translated revision.
	ActionTranslate Action = "translate"

	// ActionPublish publishes an approved revision.
	ActionPublish Action = "publish"

	// ActionRollback reverts a record to a prior revision.
	ActionRollback Action = "rollback"
)

// Actions lists every valid action in declaration order.
func Actions() []Action {
	return []Action{
		ActionCreate, ActionEdit, ActionSubmit, ActionApprove,
		ActionReject, ActionTranslate, ActionPublish, ActionRollback,
	}
}

// ParseAction parses a stable action tag. Unknown tags fail closed.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionCreate, ActionEdit, ActionSubmit, ActionApprove,
		ActionReject, ActionTranslate, ActionPublish, ActionRollback:
		return Action(s), nil
	}
	return "", fmt.Errorf("%w: unknown action %q", ErrInvalidStatement, s)
}

// ResourceType identifies the kind of wiki record under evaluation.
type ResourceType string

const (
	// ResourceAgency is an agency record.
	ResourceAgency ResourceType = "agency"

	// ResourceGroup is a group record.
	ResourceGroup ResourceType = "group"

	// ResourceTalent is a talent record.
	ResourceTalent ResourceType = "talent"

	// ResourceSong is a song record.
	ResourceSong ResourceType = "song"
)

// ResourceTypes lists every valid resource type in declaration order.
func ResourceTypes() []ResourceType {
	return []ResourceType{ResourceAgency, ResourceGroup, ResourceTalent, ResourceSong}
}

// ParseResourceType parses a stable resource-type tag. Unknown tags fail closed.
func ParseResourceType(s string) (ResourceType, error) {
	switch ResourceType(s) {
	case ResourceAgency, ResourceGroup, ResourceTalent, ResourceSong:
		return ResourceType(s), nil
	}
	return "", fmt.Errorf("%w: unknown resource type %q", ErrInvalidStatement, s)
}

// Principal is the authorization context of an acting identity.
// Role and memberships change out-of-band; the engine only ever reads
// the snapshot the caller resolved for this one check.
type Principal struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Role      Role   `json:"role"`
	AgencyID  string `json:"agency_id,omitempty"`
	GroupIDs  IDSet  `json:"group_ids,omitempty"`
	TalentIDs IDSet  `json:"talent_ids,omitempty"`
}

// ResourceDescriptor is a read-only snapshot of the scoping attributes
// of the wiki record under evaluation. It is computed on demand by the
// host application and never persisted by the engine.
type ResourceDescriptor struct {
	Type       ResourceType `json:"type"`
	ID         string       `json:"id"`
	AgencyID   string       `json:"agency_id,omitempty"`
	GroupIDs   IDSet        `json:"group_ids,omitempty"`
	TalentIDs  IDSet        `json:"talent_ids,omitempty"`
	IsOfficial bool         `json:"is_official"`
}

// CheckRequest is the input to an authorization check.
type CheckRequest struct {
	Principal Principal          `json:"principal"`
	Action    Action             `json:"action"`
	Resource  ResourceDescriptor `json:"resource"`
}

// CheckResult is the outcome of an authorization check.
type CheckResult struct {
	Allowed    bool        `json:"allowed"`
	Decision   Decision    `json:"decision"`
	Reason     string      `json:"reason,omitempty"`
	MatchedBy  []MatchInfo `json:"matched_by,omitempty"`
	EvalTimeNs int64       `json:"eval_time_ns"`
}

// Decision is the authorization outcome.
type Decision string

const (
	// DecisionAllow means the request is permitted.
	DecisionAllow Decision = "allow"

	// DecisionDenyExplicit means an explicit deny statement matched.
	DecisionDenyExplicit Decision = "deny_explicit"

	// DecisionDenyDefault means no matching allow rule was found.
	DecisionDenyDefault Decision = "deny_default"

	// DecisionDenyNoRole means the principal's role grants no actions here.
	DecisionDenyNoRole Decision = "deny_no_role"

	// DecisionDenyScope means the role's scope check against the
	// resource's ownership attributes failed.
	DecisionDenyScope Decision = "deny_scope"
)

// MatchInfo describes what rule matched during evaluation.
type MatchInfo struct {
	Source string `json:"source"` // "role" or "policy"
	RuleID string `json:"rule_id,omitempty"`
	Detail string `json:"detail,omitempty"`
}
