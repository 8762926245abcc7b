package grant

import (
	"context"

	"github.com/stagewiki/verdict/id"
)

// Store defines persistence operations for affiliations and their
// grants. The store is also the grant resolver: it only ever hands the
// evaluator grants whose underlying affiliation is active.
type Store interface {
	// PutAffiliation inserts or updates the affiliation read model.
	PutAffiliation(ctx context.Context, a *Affiliation) error

	// GetAffiliation retrieves an affiliation by ID.
	GetAffiliation(ctx context.Context, affID id.AffiliationID) (*Affiliation, error)

	// SetAffiliationStatus transitions an affiliation's lifecycle state.
	// Leaving the active state deletes every grant the affiliation
	// authorized.
	SetAffiliationStatus(ctx context.Context, affID id.AffiliationID, status AffiliationStatus) error

	// CreateGrant persists a new grant. The referenced affiliation must
	// be active.
	CreateGrant(ctx context.Context, g *AffiliationGrant) error

	// GetGrant retrieves a grant by ID.
	GetGrant(ctx context.Context, grantID id.GrantID) (*AffiliationGrant, error)

	// DeleteGrant removes a grant by ID.
	DeleteGrant(ctx context.Context, grantID id.GrantID) error

	// ListGrants returns grants matching the filter.
	ListGrants(ctx context.Context, filter *ListFilter) ([]*AffiliationGrant, error)

	// CountGrants returns the number of grants matching the filter.
	CountGrants(ctx context.Context, filter *ListFilter) (int64, error)

	// ListGrantsForGroups returns every grant bound to one of the given
	// principal groups whose affiliation is active.
	ListGrantsForGroups(ctx context.Context, groupIDs []id.PrincipalGroupID) ([]*AffiliationGrant, error)

	// DeleteGrantsByAffiliation removes all grants for an affiliation.
	DeleteGrantsByAffiliation(ctx context.Context, affID id.AffiliationID) error
}
