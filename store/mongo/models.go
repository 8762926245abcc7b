package mongo

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
	ID              string             `grove:"id,pk"        bson:"_id"`
	AccountID       string             `grove:"account_id"   bson:"account_id"`
	Name            string             `grove:"name"         bson:"name"`
	Description     string             `grove:"description"  bson:"description"`
	IsSystem        bool               `grove:"is_system"    bson:"is_system"`
	IsActive        bool               `grove:"is_active"    bson:"is_active"`
	Version         int                `grove:"version"      bson:"version"`
	Statements      []policy.Statement `grove:"statements"   bson:"statements"`
	Metadata        map[string]any     `grove:"metadata"     bson:"metadata,omitempty"`
	CreatedAt       time.Time          `grove:"created_at"   bson:"created_at"`
	UpdatedAt       time.Time          `grove:"updated_at"   bson:"updated_at"`
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
	ID              string    `grove:"id,pk"       bson:"_id"`
	AccountID       string    `grove:"account_id"  bson:"account_id"`
	Name            string    `grove:"name"        bson:"name"`
	IsDefault       bool      `grove:"is_default"  bson:"is_default"`
	MemberIDs       []string  `grove:"member_ids"  bson:"member_ids"`
	CreatedAt       time.Time `grove:"created_at"  bson:"created_at"`
	UpdatedAt       time.Time `grove:"updated_at"  bson:"updated_at"`
}

func groupToModel(g *principalgroup.PrincipalGroup) *groupModel {
	return &groupModel{
		ID:        g.ID.String(),
		AccountID: g.AccountID,
		Name:      g.Name,
		IsDefault: g.IsDefault,
		MemberIDs: g.MemberIDs,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

func groupFromModel(m *groupModel) *principalgroup.PrincipalGroup {
	gid, _ := id.ParsePrincipalGroupID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &principalgroup.PrincipalGroup{
		ID:        gid,
		AccountID: m.AccountID,
		Name:      m.Name,
		IsDefault: m.IsDefault,
		MemberIDs: m.MemberIDs,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Affiliation and grant models
// ──────────────────────────────────────────────────

type affiliationModel struct {
	grove.BaseModel `grove:"table:verdict_affiliations"`
	ID              string    `grove:"id,pk"              bson:"_id"`
	AgencyAccountID string    `grove:"agency_account_id"  bson:"agency_account_id"`
	TalentAccountID string    `grove:"talent_account_id"  bson:"talent_account_id"`
	Status          string    `grove:"status"             bson:"status"`
	CreatedAt       time.Time `grove:"created_at"         bson:"created_at"`
	UpdatedAt       time.Time `grove:"updated_at"         bson:"updated_at"`
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
	ID              string    `grove:"id,pk"               bson:"_id"`
	AffiliationID   string    `grove:"affiliation_id"      bson:"affiliation_id"`
	PolicyID        string    `grove:"policy_id"           bson:"policy_id"`
	Role            string    `grove:"role"                bson:"role"`
	GroupID         string    `grove:"principal_group_id"  bson:"principal_group_id"`
	Type            string    `grove:"type"                bson:"type"`
	CreatedAt       time.Time `grove:"created_at"          bson:"created_at"`
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
	ID              string    `grove:"id,pk"          bson:"_id"`
	AccountID       string    `grove:"account_id"     bson:"account_id"`
	PrincipalID     string    `grove:"principal_id"   bson:"principal_id"`
	Role            string    `grove:"role"           bson:"role"`
	Action          string    `grove:"action"         bson:"action"`
	ResourceType    string    `grove:"resource_type"  bson:"resource_type"`
	ResourceID      string    `grove:"resource_id"    bson:"resource_id"`
	Decision        string    `grove:"decision"       bson:"decision"`
	Reason          string    `grove:"reason"         bson:"reason"`
	MatchedRule     string    `grove:"matched_rule"   bson:"matched_rule"`
	EvalTimeNs      int64     `grove:"eval_time_ns"   bson:"eval_time_ns"`
	CreatedAt       time.Time `grove:"created_at"     bson:"created_at"`
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
