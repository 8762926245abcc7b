package principalgroup

import (
	"context"

	"github.com/stagewiki/verdict/id"
)

// Store defines persistence operations for principal groups.
type Store interface {
	// CreateGroup persists a new principal group. Creating a second
	// default group for an account is rejected.
	CreateGroup(ctx context.Context, g *PrincipalGroup) error

	// GetGroup retrieves a group by ID, including its membership.
	GetGroup(ctx context.Context, groupID id.PrincipalGroupID) (*PrincipalGroup, error)

	// GetDefaultGroup retrieves an account's default group.
	GetDefaultGroup(ctx context.Context, accountID string) (*PrincipalGroup, error)

	// UpdateGroup persists changes to a group's name.
	UpdateGroup(ctx context.Context, g *PrincipalGroup) error

	// DeleteGroup removes a group and its memberships.
	DeleteGroup(ctx context.Context, groupID id.PrincipalGroupID) error

	// ListGroups returns groups matching the filter.
	ListGroups(ctx context.Context, filter *ListFilter) ([]*PrincipalGroup, error)

	// CountGroups returns the number of groups matching the filter.
	CountGroups(ctx context.Context, filter *ListFilter) (int64, error)

	// AddMember adds a principal to a group.
	AddMember(ctx context.Context, groupID id.PrincipalGroupID, principalID string) error

	// RemoveMember removes a principal from a group.
	RemoveMember(ctx context.Context, groupID id.PrincipalGroupID, principalID string) error

	// ListGroupsForMember returns the IDs of every group a principal
	// belongs to, including the account default group when accountID is
	// non-empty.
	ListGroupsForMember(ctx context.Context, accountID, principalID string) ([]id.PrincipalGroupID, error)

	// DeleteGroupsByAccount removes all groups for an account.
	DeleteGroupsByAccount(ctx context.Context, accountID string) error
}
