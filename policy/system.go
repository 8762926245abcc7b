package policy

// System policy names. System policies are seeded once, owned by no
// account, and treated as immutable catalog entries: every request for a
// definition yields an identical statement list.
const (
	// SystemFullAccess grants every action on every resource type.
	SystemFullAccess = "FULL_ACCESS"

	// SystemContributor grants the draft-editing actions everywhere.
	SystemContributor = "CONTRIBUTOR_ACCESS"

	// SystemDenyAgencyApproval blocks approval-class actions on agency
	// records regardless of any other grant.
	SystemDenyAgencyApproval = "DENY_AGENCY_APPROVAL"

	// SystemDenyRollback blocks rollbacks everywhere regardless of any
	// other grant.
	SystemDenyRollback = "DENY_ROLLBACK"

	// SystemTalentRepresentation grants editorial and approval authority
	// over records credited to the principal's talents. Distributed to
	// agency-side principals through TALENT_SIDE affiliation grants.
	SystemTalentRepresentation = "TALENT_REPRESENTATION"

	// SystemAgencyRepresentation grants full authority over records owned
	// by the principal's agency. Distributed to talent-side principals
	// through AGENCY_SIDE affiliation grants.
	SystemAgencyRepresentation = "AGENCY_REPRESENTATION"
)

// Tag lists mirror the root enumerations. The catalog spells them out as
// strings so the policy package stays a leaf.
var (
	allActions = []string{
		"create", "edit", "submit", "approve",
		"reject", "translate", "publish", "rollback",
	}
	draftActions    = []string{"create", "edit", "submit"}
	approvalClass   = []string{"approve", "reject", "translate", "publish"}
	allResources    = []string{"agency", "group", "talent", "song"}
	taggedResources = []string{"group", "talent", "song"}
)

// SystemCatalog returns fresh copies of every system policy definition,
// in a stable order. IDs are assigned when the catalog is seeded into a
// store; the definitions themselves are identified by name.
func SystemCatalog() []*Policy {
	return []*Policy{
		FullAccess(),
		Contributor(),
		DenyAgencyApproval(),
		DenyRollback(),
		TalentRepresentation(),
		AgencyRepresentation(),
	}
}

// FullAccess returns the FULL_ACCESS system policy definition.
func FullAccess() *Policy {
	return system(SystemFullAccess, "Unrestricted access to all wiki records.", Statement{
		Effect:        EffectAllow,
		Actions:       append([]string(nil), allActions...),
		ResourceTypes: append([]string(nil), allResources...),
	})
}

// Contributor returns the CONTRIBUTOR_ACCESS system policy definition.
func Contributor() *Policy {
	return system(SystemContributor, "Draft-editing access to all wiki records.", Statement{
		Effect:        EffectAllow,
		Actions:       append([]string(nil), draftActions...),
		ResourceTypes: append([]string(nil), allResources...),
	})
}

// DenyAgencyApproval returns the DENY_AGENCY_APPROVAL system policy
// definition. Deny-overrides makes it defeat any matching allow.
func DenyAgencyApproval() *Policy {
	return system(SystemDenyAgencyApproval, "Blocks approval-class actions on agency records.", Statement{
		Effect:        EffectDeny,
		Actions:       append([]string(nil), approvalClass...),
		ResourceTypes: []string{"agency"},
	})
}

// DenyRollback returns the DENY_ROLLBACK system policy definition.
func DenyRollback() *Policy {
	return system(SystemDenyRollback, "Blocks rollbacks on all wiki records.", Statement{
		Effect:        EffectDeny,
		Actions:       []string{"rollback"},
		ResourceTypes: append([]string(nil), allResources...),
	})
}

// TalentRepresentation returns the TALENT_REPRESENTATION system policy
// definition: authority scoped to records credited to the principal's
// talents.
func TalentRepresentation() *Policy {
	return system(SystemTalentRepresentation, "Editorial authority over records credited to the principal's talents.", Statement{
		Effect:        EffectAllow,
		Actions:       append(append([]string(nil), draftActions...), approvalClass...),
		ResourceTypes: []string{"talent", "song"},
		Conditions: []Condition{{
			Key:      KeyTalentIDs,
			Operator: OpIn,
			Value:    PrincipalAttr(PrincipalTalentIDs),
		}},
	})
}

// AgencyRepresentation returns the AGENCY_REPRESENTATION system policy
// definition: authority scoped to records owned by the principal's agency.
func AgencyRepresentation() *Policy {
	return system(SystemAgencyRepresentation, "Full authority over records owned by the principal's agency.", Statement{
		Effect:        EffectAllow,
		Actions:       append([]string(nil), allActions...),
		ResourceTypes: append([]string(nil), taggedResources...),
		Conditions: []Condition{{
			Key:      KeyAgencyID,
			Operator: OpEquals,
			Value:    PrincipalAttr(PrincipalAgencyID),
		}},
	})
}

func system(name, description string, statements ...Statement) *Policy {
	return &Policy{
		Name:        name,
		Description: description,
		Statements:  statements,
		IsSystem:    true,
		IsActive:    true,
		Version:     1,
	}
}
