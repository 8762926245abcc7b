// Package principalgroup defines the PrincipalGroup entity: a named set
// of principals within an account, used as the distribution target for
// affiliation grants.
package principalgroup

import (
	"time"

	"github.com/stagewiki/verdict/id"
)

// PrincipalGroup is a membership set of principals within an account.
// Every account has exactly one default group; principals of the account
// belong to it implicitly.
type PrincipalGroup struct {
	ID        id.PrincipalGroupID `json:"id" db:"id"`
	AccountID string              `json:"account_id" db:"account_id"`
	Name      string              `json:"name" db:"name"`
	IsDefault bool                `json:"is_default" db:"is_default"`
	MemberIDs []string            `json:"member_ids" db:"-"`
	CreatedAt time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt time.Time           `json:"updated_at" db:"updated_at"`
}

// HasMember reports whether principalID is a direct member.
func (g *PrincipalGroup) HasMember(principalID string) bool {
	for _, m := range g.MemberIDs {
		if m == principalID {
			return true
		}
	}
	return false
}

// ListFilter contains filters for listing principal groups.
type ListFilter struct {
	AccountID string `json:"account_id,omitempty"`
	IsDefault *bool  `json:"is_default,omitempty"`
	Search    string `json:"search,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}
