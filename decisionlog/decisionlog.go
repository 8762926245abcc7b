// Package decisionlog defines the authorization decision audit Entry entity.
package decisionlog

import (
	"time"

	"github.com/stagewiki/verdict/id"
)

// Entry is a single authorization decision audit record.
type Entry struct {
	ID           id.DecisionLogID `json:"id" db:"id"`
	AccountID    string           `json:"account_id" db:"account_id"`
	PrincipalID  string           `json:"principal_id" db:"principal_id"`
	Role         string           `json:"role" db:"role"`
	Action       string           `json:"action" db:"action"`
	ResourceType string           `json:"resource_type" db:"resource_type"`
	ResourceID   string           `json:"resource_id" db:"resource_id"`
	Decision     string           `json:"decision" db:"decision"`
	Reason       string           `json:"reason,omitempty" db:"reason"`
	MatchedRule  string           `json:"matched_rule,omitempty" db:"matched_rule"`
	EvalTimeNs   int64            `json:"eval_time_ns" db:"eval_time_ns"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}

// QueryFilter contains filters for querying decision logs.
type QueryFilter struct {
	AccountID    string     `json:"account_id,omitempty"`
	PrincipalID  string     `json:"principal_id,omitempty"`
	Action       string     `json:"action,omitempty"`
	ResourceType string     `json:"resource_type,omitempty"`
	ResourceID   string     `json:"resource_id,omitempty"`
	Decision     string     `json:"decision,omitempty"`
	After        *time.Time `json:"after,omitempty"`
	Before       *time.Time `json:"before,omitempty"`
	Limit        int        `json:"limit,omitempty"`
	Offset       int        `json:"offset,omitempty"`
}
