package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/stagewiki/verdict/decisionlog"
	"github.com/stagewiki/verdict/grant"
	"github.com/stagewiki/verdict/id"
	"github.com/stagewiki/verdict/policy"
	"github.com/stagewiki/verdict/principalgroup"
)

// ──────────────────────────────────────────────────
// Policy model
// ──────────────────────────────────────────────────

type policyModel struct {
	grove.BaseModel `grove:"table:verdict_policies"`
	ID              string             `grove:"id,pk"`
	AccountID       string             `grove:"account_id,notnull"`
	Name            string             `grove:"name,notnull"`
	Description     string             `grove:"description"`
	IsSystem        bool               `grove:"is_system,notnull"`
	IsActive        bool               `grove:"is_active,notnull"`
	Version         int                `grove:"version,notnull"`
	Statements      []policy.Statement `grove:"statements,type:jsonb"`
	Metadata        map[string]any     `grove:"metadata,type:jsonb"`
	CreatedAt       time.Time          `grove:"created_at,notnull"`
	UpdatedAt       time.Time          `grove:"updated_at,notnull"`
}

func policyToModel(p *policy.Policy) *policyModel {
	return &policyModel{
		ID:          p.ID.String(),
		AccountID:   p.AccountID,
		Name:        p.Name,
		Description: p.Description,
		IsSystem:    p.IsSystem,
		IsActive:    p.IsActive,
		Version:     p.Version,
		Statements:  p.Statements,
		Metadata:    p.Metadata,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func policyFromModel(m *policyModel) *policy.Policy {
	pid, _ := id.ParsePolicyID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &policy.Policy{
		ID:          pid,
		AccountID:   m.AccountID,
		Name:        m.Name,
		Description: m.Description,
		IsSystem:    m.IsSystem,
		IsActive:    m.IsActive,
		Version:     m.Version,
		Statements:  m.Statements,
		Metadata:    m.Metadata,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Principal group models
// ──────────────────────────────────────────────────

type groupModel struct {
	grove.BaseModel `grove:"table:verdict_principal_groups"`
	ID              string    `grove:"id,pk"`
	AccountID       string    `grove:"account_id,notnull"`
	Name            string    `grove:"name,notnull"`
	IsDefault       bool      `grove:"is_default,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

// Memberships live in their own table keyed by (group_id, principal_id).
type groupMemberModel struct {
	grove.BaseModel `grove:"table:verdict_group_members"`
	GroupID         string `grove:"group_id,pk"`
	PrincipalID     string `grove:"principal_id,pk"`
}

func groupToModel(g *principalgroup.PrincipalGroup) *groupModel {
	return &groupModel{
		ID:        g.ID.String(),
		AccountID: g.AccountID,
		Name:      g.Name,
		IsDefault: g.IsDefault,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

func groupFromModel(m *groupModel, memberIDs []string) *principalgroup.PrincipalGroup {
	gid, _ := id.ParsePrincipalGroupID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &principalgroup.PrincipalGroup{
		ID:        gid,
		AccountID: m.AccountID,
		Name:      m.Name,
		IsDefault: m.IsDefault,
		MemberIDs: memberIDs,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Affiliation and grant models
// ──────────────────────────────────────────────────

type affiliationModel struct {
	grove.BaseModel `grove:"table:verdict_affiliations"`
	ID              string    `grove:"id,pk"`
	AgencyAccountID string    `grove:"agency_account_id,notnull"`
	TalentAccountID string    `grove:"talent_account_id,notnull"`
	Status          string    `grove:"status,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func affiliationToModel(a *grant.Affiliation) *affiliationModel {
	return &affiliationModel{
		ID:              a.ID.String(),
		AgencyAccountID: a.AgencyAccountID,
		TalentAccountID: a.TalentAccountID,
		Status:          string(a.Status),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func affiliationFromModel(m *affiliationModel) *grant.Affiliation {
	aid, _ := id.ParseAffiliationID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &grant.Affiliation{
		ID:              aid,
		AgencyAccountID: m.AgencyAccountID,
		TalentAccountID: m.TalentAccountID,
		Status:          grant.AffiliationStatus(m.Status),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

type grantModel struct {
	grove.BaseModel `grove:"table:verdict_grants"`
	ID              string    `grove:"id,pk"`
	AffiliationID   string    `grove:"affiliation_id,notnull"`
	PolicyID        string    `grove:"policy_id,notnull"`
	Role            string    `grove:"role"`
	GroupID         string    `grove:"principal_group_id,notnull"`
	Type            string    `grove:"type,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func grantToModel(g *grant.AffiliationGrant) *grantModel {
	return &grantModel{
		ID:            g.ID.String(),
		AffiliationID: g.AffiliationID.String(),
		PolicyID:      g.PolicyID.String(),
		Role:          g.Role,
		GroupID:       g.PrincipalGroupID.String(),
		Type:          string(g.Type),
		CreatedAt:     g.CreatedAt,
	}
}

func grantFromModel(m *grantModel) *grant.AffiliationGrant {
	gid, _ := id.ParseGrantID(m.ID)                    //nolint:errcheck // stored IDs are always valid
	affID, _ := id.ParseAffiliationID(m.AffiliationID) //nolint:errcheck
	polID, _ := id.ParsePolicyID(m.PolicyID)           //nolint:errcheck
	pgID, _ := id.ParsePrincipalGroupID(m.GroupID)     //nolint:errcheck
	return &grant.AffiliationGrant{
		ID:               gid,
		AffiliationID:    affID,
		PolicyID:         polID,
		Role:             m.Role,
		PrincipalGroupID: pgID,
		Type:             grant.Type(m.Type),
		CreatedAt:        m.CreatedAt,
	}
}

// ──────────────────────────────────────────────────
// Decision log model
// ──────────────────────────────────────────────────

type decisionLogModel struct {
	grove.BaseModel `grove:"table:verdict_decision_logs"`
	ID              string    `grove:"id,pk"`
	AccountID       string    `grove:"account_id,notnull"`
	PrincipalID     string    `grove:"principal_id,notnull"`
	Role            string    `grove:"role"`
	Action          string    `grove:"action,notnull"`
	ResourceType    string    `grove:"resource_type,notnull"`
	ResourceID      string    `grove:"resource_id,notnull"`
	Decision        string    `grove:"decision,notnull"`
	Reason          string    `grove:"reason"`
	MatchedRule     string    `grove:"matched_rule"`
	EvalTimeNs      int64     `grove:"eval_time_ns,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func decisionLogToModel(e *decisionlog.Entry) *decisionLogModel {
	return &decisionLogModel{
		ID:           e.ID.String(),
		AccountID:    e.AccountID,
		PrincipalID:  e.PrincipalID,
		Role:         e.Role,
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Decision:     e.Decision,
		Reason:       e.Reason,
		MatchedRule:  e.MatchedRule,
		EvalTimeNs:   e.EvalTimeNs,
		CreatedAt:    e.CreatedAt,
	}
}

func decisionLogFromModel(m *decisionLogModel) *decisionlog.Entry {
	lid, _ := id.ParseDecisionLogID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &decisionlog.Entry{
		ID:           lid,
		AccountID:    m.AccountID,
		PrincipalID:  m.PrincipalID,
		Role:         m.Role,
		Action:       m.Action,
		ResourceType: m.ResourceType,
		ResourceID:   m.ResourceID,
		Decision:     m.Decision,
		Reason:       m.Reason,
		MatchedRule:  m.MatchedRule,
		EvalTimeNs:   m.EvalTimeNs,
		CreatedAt:    m.CreatedAt,
	}
}
