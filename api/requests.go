package api

import (
	"github.com/stagewiki/verdict/policy"
)

// ──────────────────────────────────────────────────
// Check requests
// ──────────────────────────────────────────────────

// PrincipalInput describes the acting principal of a check.
type PrincipalInput struct {
	ID        string   `json:"id" description:"Principal identifier"`
	AccountID string   `json:"account_id" description:"Owning account identifier"`
	Role      string   `json:"role" description:"Capability role (administrator, senior_collaborator, agency_actor, group_actor, talent_actor, collaborator, none)"`
	AgencyID  string   `json:"agency_id,omitempty" description:"Represented agency identifier"`
	GroupIDs  []string `json:"group_ids,omitempty" description:"Represented group identifiers"`
	TalentIDs []string `json:"talent_ids,omitempty" description:"Represented talent identifiers"`
}

// ResourceInput describes the wiki record under evaluation.
type ResourceInput struct {
	Type       string   `json:"type" description:"Resource type (agency, group, talent, song)"`
	ID         string   `json:"id" description:"Resource identifier"`
	AgencyID   string   `json:"agency_id,omitempty" description:"Owning agency identifier"`
	GroupIDs   []string `json:"group_ids,omitempty" description:"Owning group identifiers"`
	TalentIDs  []string `json:"talent_ids,omitempty" description:"Owning talent identifiers"`
	IsOfficial bool     `json:"is_official,omitempty" description:"Official record flag"`
}

// CheckRequest is the request body for an authorization check.
type CheckRequest struct {
	Principal PrincipalInput `json:"principal" description:"Acting principal"`
	Action    string         `json:"action" description:"Action name"`
	Resource  ResourceInput  `json:"resource" description:"Target resource"`
}

// BatchCheckRequest contains multiple checks.
type BatchCheckRequest struct {
	Checks []CheckRequest `json:"checks" description:"List of authorization checks"`
}

// ──────────────────────────────────────────────────
// Policy requests
// ──────────────────────────────────────────────────

// CreatePolicyRequest is the body for creating a policy.
type CreatePolicyRequest struct {
	AccountID   string             `json:"account_id" description:"Owning account identifier"`
	Name        string             `json:"name" description:"Policy name"`
	Description string             `json:"description,omitempty" description:"Human-readable description"`
	IsActive    bool               `json:"is_active" description:"Whether the policy is active"`
	Statements  []policy.Statement `json:"statements" description:"Policy statements"`
	Metadata    map[string]any     `json:"metadata,omitempty" description:"Custom metadata"`
}

// UpdatePolicyRequest is the body for updating a policy.
type UpdatePolicyRequest struct {
	Name        string             `json:"name,omitempty" description:"Policy name"`
	Description string             `json:"description,omitempty" description:"Description"`
	IsActive    *bool              `json:"is_active,omitempty" description:"Active flag"`
	Statements  []policy.Statement `json:"statements,omitempty" description:"Policy statements"`
	Metadata    map[string]any     `json:"metadata,omitempty" description:"Metadata"`
}

// GetPolicyRequest is the path parameter for getting a policy.
type GetPolicyRequest struct {
	PolicyID string `path:"policyId" description:"Policy ID"`
}

// ListPoliciesRequest holds query parameters.
type ListPoliciesRequest struct {
	AccountID string `query:"account_id" description:"Filter by account"`
	System    string `query:"system" description:"Filter by system flag (true/false)"`
	Active    string `query:"active" description:"Filter by active status (true/false)"`
	Search    string `query:"search" description:"Search by name"`
	Limit     int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset    int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Principal group requests
// ──────────────────────────────────────────────────

// CreateGroupRequest is the body for creating a principal group.
type CreateGroupRequest struct {
	AccountID string `json:"account_id" description:"Owning account identifier"`
	Name      string `json:"name" description:"Group name"`
	IsDefault bool   `json:"is_default,omitempty" description:"Default group flag (one per account)"`
}

// UpdateGroupRequest is the body for renaming a principal group.
type UpdateGroupRequest struct {
	Name string `json:"name" description:"Group name"`
}

// GetGroupRequest is the path parameter for getting a group.
type GetGroupRequest struct {
	GroupID string `path:"groupId" description:"Principal group ID"`
}

// ListGroupsRequest holds query parameters.
type ListGroupsRequest struct {
	AccountID string `query:"account_id" description:"Filter by account"`
	Default   string `query:"default" description:"Filter by default flag (true/false)"`
	Search    string `query:"search" description:"Search by name"`
	Limit     int    `query:"limit" description:"Maximum results"`
	Offset    int    `query:"offset" description:"Results to skip"`
}

// AddMemberRequest is the body for adding a principal to a group.
type AddMemberRequest struct {
	PrincipalID string `json:"principal_id" description:"Principal to add"`
}

// ──────────────────────────────────────────────────
// Affiliation and grant requests
// ──────────────────────────────────────────────────

// PutAffiliationRequest is the body for upserting an affiliation.
type PutAffiliationRequest struct {
	ID              string `json:"id,omitempty" description:"Affiliation ID (omit to create)"`
	AgencyAccountID string `json:"agency_account_id" description:"Agency-side account identifier"`
	TalentAccountID string `json:"talent_account_id" description:"Talent-side account identifier"`
	Status          string `json:"status" description:"Lifecycle status (active, terminated, revoked)"`
}

// GetAffiliationRequest is the path parameter for getting an affiliation.
type GetAffiliationRequest struct {
	AffiliationID string `path:"affiliationId" description:"Affiliation ID"`
}

// SetAffiliationStatusRequest is the body for a status transition.
type SetAffiliationStatusRequest struct {
	Status string `json:"status" description:"New lifecycle status (active, terminated, revoked)"`
}

// CreateGrantRequest is the body for creating an affiliation grant.
type CreateGrantRequest struct {
	AffiliationID    string `json:"affiliation_id" description:"Authorizing affiliation ID"`
	PolicyID         string `json:"policy_id,omitempty" description:"Contributed policy ID"`
	Role             string `json:"role,omitempty" description:"Granted role tag"`
	PrincipalGroupID string `json:"principal_group_id" description:"Receiving principal group ID"`
	Type             string `json:"type" description:"Grant side (talent_side, agency_side)"`
}

// GetGrantRequest is the path parameter for getting a grant.
type GetGrantRequest struct {
	GrantID string `path:"grantId" description:"Grant ID"`
}

// ListGrantsRequest holds query parameters.
type ListGrantsRequest struct {
	AffiliationID    string `query:"affiliation_id" description:"Filter by affiliation"`
	PolicyID         string `query:"policy_id" description:"Filter by policy"`
	PrincipalGroupID string `query:"principal_group_id" description:"Filter by principal group"`
	Type             string `query:"type" description:"Filter by grant side"`
	Limit            int    `query:"limit" description:"Maximum results"`
	Offset           int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Decision log requests
// ──────────────────────────────────────────────────

// ListDecisionLogsRequest holds query parameters for querying decision logs.
type ListDecisionLogsRequest struct {
	AccountID    string `query:"account_id" description:"Filter by account"`
	PrincipalID  string `query:"principal_id" description:"Filter by principal"`
	Action       string `query:"action" description:"Filter by action"`
	ResourceType string `query:"resource_type" description:"Filter by resource type"`
	ResourceID   string `query:"resource_id" description:"Filter by resource ID"`
	Decision     string `query:"decision" description:"Filter by decision code"`
	After        string `query:"after" description:"After timestamp (RFC3339)"`
	Before       string `query:"before" description:"Before timestamp (RFC3339)"`
	Limit        int    `query:"limit" description:"Maximum results"`
	Offset       int    `query:"offset" description:"Results to skip"`
}

// PurgeDecisionLogsRequest is the body for purging old decision logs.
type PurgeDecisionLogsRequest struct {
	Before string `json:"before" description:"Delete entries older than this timestamp (RFC3339)"`
}
