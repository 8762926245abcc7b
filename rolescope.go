package verdict

import "fmt"

// Role is a built-in RBAC tier. Roles are a closed set: each supplies a
// base allow-list per resource type plus scope checks for approval-class
// actions. Custom authority beyond the matrix is expressed with policies.
type Role string

const (
	// RoleAdministrator is platform staff with unrestricted access.
	RoleAdministrator Role = "administrator"

	// RoleSeniorCollaborator is a trusted editor with unrestricted access.
	RoleSeniorCollaborator Role = "senior_collaborator"

	// RoleAgencyActor acts on behalf of an agency account.
	RoleAgencyActor Role = "agency_actor"

	// RoleGroupActor acts on behalf of one or more groups.
	RoleGroupActor Role = "group_actor"

	// RoleTalentActor acts on behalf of one or more talents.
	RoleTalentActor Role = "talent_actor"

	// RoleCollaborator is a regular contributor.
	RoleCollaborator Role = "collaborator"

	// RoleNone is the default role before any authority is granted.
	RoleNone Role = "none"
)

// Roles lists every valid role in descending order of authority.
func Roles() []Role {
	return []Role{
		RoleAdministrator, RoleSeniorCollaborator, RoleAgencyActor,
		RoleGroupActor, RoleTalentActor, RoleCollaborator, RoleNone,
	}
}

// ParseRole parses a stable role tag. Unknown tags fail closed.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdministrator, RoleSeniorCollaborator, RoleAgencyActor,
		RoleGroupActor, RoleTalentActor, RoleCollaborator, RoleNone:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidStatement, s)
}

// contributorActions is the draft-editing subset every contributing role has.
var contributorActions = []Action{ActionCreate, ActionEdit, ActionSubmit}

// approvalActions is the approval-class subset that triggers scope checks.
var approvalActions = []Action{ActionApprove, ActionReject, ActionTranslate, ActionPublish}

// AllowedActions returns the base allow-list for this role on the given
// resource type, before any scope check.
func (r Role) AllowedActions(rt ResourceType) []Action {
	switch r {
	case RoleAdministrator, RoleSeniorCollaborator, RoleAgencyActor:
		return Actions()
	case RoleGroupActor, RoleTalentActor:
		// Group and talent actors may only draft against agency records;
		// everything else gets the full set (subject to scope checks).
		if rt == ResourceAgency {
			return contributorActions
		}
		return Actions()
	case RoleCollaborator:
		return contributorActions
	default:
		return nil
	}
}

// Allows reports whether action is in the role's base allow-list for rt.
func (r Role) Allows(action Action, rt ResourceType) bool {
	for _, a := range r.AllowedActions(rt) {
		if a == action {
			return true
		}
	}
	return false
}

// scopedActions returns the actions for which this role applies set
// intersection checks against the resource. Talent actors additionally
// scope plain edits, since their editing authority follows their talents.
func (r Role) scopedActions() []Action {
	switch r {
	case RoleTalentActor:
		return append([]Action{ActionEdit}, approvalActions...)
	case RoleAgencyActor, RoleGroupActor:
		return approvalActions
	default:
		return nil
	}
}

func (r Role) isScoped(action Action) bool {
	for _, a := range r.scopedActions() {
		if a == action {
			return true
		}
	}
	return false
}

// Can reports whether the role permits action on resource for the given
// principal. Missing principal or resource context (no agency id, empty
// membership sets) is a deny, never an error.
func (r Role) Can(action Action, resource *ResourceDescriptor, principal *Principal) bool {
	switch r {
	case RoleAdministrator, RoleSeniorCollaborator:
		return true
	case RoleNone:
		return false
	}

	if !r.Allows(action, resource.Type) {
		return false
	}
	if !r.isScoped(action) {
		return true
	}
	return r.inScope(resource, principal)
}

// inScope applies the role's ownership intersection rules. Only reached
// for the three scoped actor roles on their scoped actions.
func (r Role) inScope(resource *ResourceDescriptor, principal *Principal) bool {
	switch r {
	case RoleAgencyActor:
		// All resource types reduce to agency equality: the resource must
		// carry the principal's agency.
		if principal.AgencyID == "" || resource.AgencyID == "" {
			return false
		}
		return resource.AgencyID == principal.AgencyID

	case RoleGroupActor:
		if resource.Type == ResourceAgency {
			return false
		}
		return !resource.GroupIDs.IsEmpty() && resource.GroupIDs.Intersects(principal.GroupIDs)

	case RoleTalentActor:
		switch resource.Type {
		case ResourceAgency:
			return false
		case ResourceGroup:
			return !resource.GroupIDs.IsEmpty() && resource.GroupIDs.Intersects(principal.GroupIDs)
		case ResourceTalent:
			// Both the talent overlap and the group overlap are required.
			if resource.TalentIDs.IsEmpty() || principal.TalentIDs.IsEmpty() {
				return false
			}
			if resource.GroupIDs.IsEmpty() || principal.GroupIDs.IsEmpty() {
				return false
			}
			return resource.TalentIDs.Intersects(principal.TalentIDs) &&
				resource.GroupIDs.Intersects(principal.GroupIDs)
		case ResourceSong:
			// Either overlap suffices for song credits.
			return resource.TalentIDs.Intersects(principal.TalentIDs) ||
				resource.GroupIDs.Intersects(principal.GroupIDs)
		}
	}
	return false
}

// evaluateRole produces the role rule source's contribution to a check.
// The role matrix never denies explicitly; a non-allow outcome leaves
// room for reachable policies to grant access.
func evaluateRole(role Role, req *CheckRequest) *CheckResult {
	if role == RoleNone {
		return &CheckResult{Decision: DecisionDenyNoRole, Reason: "principal has no role"}
	}
	if !role.Allows(req.Action, req.Resource.Type) {
		return &CheckResult{
			Decision: DecisionDenyNoRole,
			Reason:   fmt.Sprintf("role %s does not allow %s on %s", role, req.Action, req.Resource.Type),
		}
	}
	if !role.Can(req.Action, &req.Resource, &req.Principal) {
		return &CheckResult{
			Decision: DecisionDenyScope,
			Reason:   fmt.Sprintf("role %s is out of scope for %s %s", role, req.Resource.Type, req.Resource.ID),
		}
	}
	return &CheckResult{
		Allowed:  true,
		Decision: DecisionAllow,
		MatchedBy: []MatchInfo{{
			Source: "role",
			RuleID: string(role),
			Detail: fmt.Sprintf("role %s allows %s on %s", role, req.Action, req.Resource.Type),
		}},
	}
}
