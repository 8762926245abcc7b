// Package grant defines the AffiliationGrant entity: the binding of a
// cross-account affiliation to a (policy, role, principal-group)
// authority package with a direction tag.
package grant

import (
	"time"

	"github.com/stagewiki/verdict/id"
)

// Type tags which side of the affiliation the grant distributes
// authority to.
type Type string

const (
	// TalentSide distributes authority over the talent's records to the
	// agency account's principal group.
	TalentSide Type = "talent_side"

	// AgencySide distributes authority over the agency's records to the
	// talent account's principal group.
	AgencySide Type = "agency_side"
)

// AffiliationGrant binds an active affiliation to a policy (and
// optionally a role tag) for a principal group. It has no existence of
// its own: when the affiliation terminates or is revoked the grant is
// deleted, not soft-marked.
type AffiliationGrant struct {
	ID               id.GrantID          `json:"id" db:"id"`
	AffiliationID    id.AffiliationID    `json:"affiliation_id" db:"affiliation_id"`
	PolicyID         id.PolicyID         `json:"policy_id" db:"policy_id"`
	Role             string              `json:"role,omitempty" db:"role"`
	PrincipalGroupID id.PrincipalGroupID `json:"principal_group_id" db:"principal_group_id"`
	Type             Type                `json:"type" db:"type"`
	CreatedAt        time.Time           `json:"created_at" db:"created_at"`
}

// AffiliationStatus is the lifecycle state of an affiliation.
type AffiliationStatus string

const (
	// StatusActive means the affiliation is in force.
	StatusActive AffiliationStatus = "active"

	// StatusTerminated means the affiliation ended by agreement.
	StatusTerminated AffiliationStatus = "terminated"

	// StatusRevoked means the affiliation was revoked by one side.
	StatusRevoked AffiliationStatus = "revoked"
)

// Affiliation is the engine's read model of a business relationship
// between an agency account and a talent account. The account domain
// owns the full record; the engine mirrors only what grant resolution
// needs.
type Affiliation struct {
	ID              id.AffiliationID  `json:"id" db:"id"`
	AgencyAccountID string            `json:"agency_account_id" db:"agency_account_id"`
	TalentAccountID string            `json:"talent_account_id" db:"talent_account_id"`
	Status          AffiliationStatus `json:"status" db:"status"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether the affiliation is in force.
func (a *Affiliation) IsActive() bool { return a.Status == StatusActive }

// ListFilter contains filters for listing grants.
type ListFilter struct {
	AffiliationID    *id.AffiliationID    `json:"affiliation_id,omitempty"`
	PolicyID         *id.PolicyID         `json:"policy_id,omitempty"`
	PrincipalGroupID *id.PrincipalGroupID `json:"principal_group_id,omitempty"`
	Type             Type                 `json:"type,omitempty"`
	Limit            int                  `json:"limit,omitempty"`
	Offset           int                  `json:"offset,omitempty"`
}
