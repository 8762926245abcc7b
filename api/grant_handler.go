package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/stagewiki/verdict"
	"github.com/stagewiki/verdict/grant"
	"github.com/stagewiki/verdict/id"
)

func (a *API) registerGrantRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("grants"))

	if err := g.PUT("/affiliations", a.putAffiliation,
		forge.WithSummary("Upsert affiliation"),
		forge.WithDescription("Creates or updates the affiliation read model."),
		forge.WithOperationID("putAffiliation"),
		forge.WithRequestSchema(PutAffiliationRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Affiliation", &grant.Affiliation{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/affiliations/:affiliationId", a.getAffiliation,
		forge.WithSummary("Get affiliation"),
		forge.WithOperationID("getAffiliation"),
		forge.WithResponseSchema(http.StatusOK, "Affiliation details", &grant.Affiliation{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/affiliations/:affiliationId/status", a.setAffiliationStatus,
		forge.WithSummary("Set affiliation status"),
		forge.WithDescription("Transitions the affiliation lifecycle. Leaving the active state revokes all grants the affiliation authorized."),
		forge.WithOperationID("setAffiliationStatus"),
		forge.WithRequestSchema(SetAffiliationStatusRequest{}),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/grants", a.createGrant,
		forge.WithSummary("Create grant"),
		forge.WithDescription("Distributes a policy or role tag to a principal group under an active affiliation."),
		forge.WithOperationID("createGrant"),
		forge.WithRequestSchema(CreateGrantRequest{}),
		forge.WithCreatedResponse(&grant.AffiliationGrant{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/grants/:grantId", a.getGrant,
		forge.WithSummary("Get grant"),
		forge.WithOperationID("getGrant"),
		forge.WithResponseSchema(http.StatusOK, "Grant details", &grant.AffiliationGrant{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/grants/:grantId", a.revokeGrant,
		forge.WithSummary("Revoke grant"),
		forge.WithOperationID("revokeGrant"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/grants", a.listGrants,
		forge.WithSummary("List grants"),
		forge.WithOperationID("listGrants"),
		forge.WithRequestSchema(ListGrantsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Grant list", []*grant.AffiliationGrant{}),
		forge.WithErrorResponses(),
	)
}

func parseAffiliationStatus(s string) (grant.AffiliationStatus, error) {
	switch grant.AffiliationStatus(s) {
	case grant.StatusActive, grant.StatusTerminated, grant.StatusRevoked:
		return grant.AffiliationStatus(s), nil
	}
	return "", fmt.Errorf("unknown affiliation status %q", s)
}

func (a *API) putAffiliation(ctx forge.Context, req *PutAffiliationRequest) (*grant.Affiliation, error) {
	if req.AgencyAccountID == "" || req.TalentAccountID == "" {
		return nil, forge.BadRequest("agency_account_id and talent_account_id are required")
	}
	status, err := parseAffiliationStatus(req.Status)
	if err != nil {
		return nil, forge.BadRequest(err.Error())
	}

	aff := &grant.Affiliation{
		AgencyAccountID: req.AgencyAccountID,
		TalentAccountID: req.TalentAccountID,
		Status:          status,
	}
	if req.ID != "" {
		affID, err := id.ParseAffiliationID(req.ID)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid affiliation ID: %v", err))
		}
		aff.ID = affID
	} else {
		aff.ID = id.NewAffiliationID()
	}

	if err := a.eng.Store().PutAffiliation(ctx.Context(), aff); err != nil {
		return nil, mapError(err)
	}

	return aff, ctx.JSON(http.StatusOK, aff)
}

func (a *API) getAffiliation(ctx forge.Context, _ *GetAffiliationRequest) (*grant.Affiliation, error) {
	affID, err := id.ParseAffiliationID(ctx.Param("affiliationId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid affiliation ID: %v", err))
	}

	aff, err := a.eng.Store().GetAffiliation(ctx.Context(), affID)
	if err != nil {
		return nil, mapError(err)
	}

	return aff, ctx.JSON(http.StatusOK, aff)
}

func (a *API) setAffiliationStatus(ctx forge.Context, req *SetAffiliationStatusRequest) (*struct{}, error) {
	affID, err := id.ParseAffiliationID(ctx.Param("affiliationId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid affiliation ID: %v", err))
	}
	status, err := parseAffiliationStatus(req.Status)
	if err != nil {
		return nil, forge.BadRequest(err.Error())
	}

	if err := a.eng.Store().SetAffiliationStatus(ctx.Context(), affID, status); err != nil {
		return nil, mapError(err)
	}

	if a.eng.Plugins() != nil {
		a.eng.Plugins().EmitAffiliationStatusChanged(ctx.Context(), affID, status)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) createGrant(ctx forge.Context, req *CreateGrantRequest) (*grant.AffiliationGrant, error) {
	affID, err := id.ParseAffiliationID(req.AffiliationID)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid affiliation ID: %v", err))
	}
	groupID, err := id.ParsePrincipalGroupID(req.PrincipalGroupID)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid principal group ID: %v", err))
	}
	if req.Type != string(grant.TalentSide) && req.Type != string(grant.AgencySide) {
		return nil, forge.BadRequest("type must be 'talent_side' or 'agency_side'")
	}
	if req.PolicyID == "" && req.Role == "" {
		return nil, forge.BadRequest("grant must carry a policy_id or a role")
	}

	g := &grant.AffiliationGrant{
		ID:               id.NewGrantID(),
		AffiliationID:    affID,
		PrincipalGroupID: groupID,
		Type:             grant.Type(req.Type),
	}
	if req.PolicyID != "" {
		polID, err := id.ParsePolicyID(req.PolicyID)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid policy ID: %v", err))
		}
		g.PolicyID = polID
	}
	if req.Role != "" {
		if _, err := verdict.ParseRole(req.Role); err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid role: %v", err))
		}
		g.Role = req.Role
	}

	if err := a.eng.Store().CreateGrant(ctx.Context(), g); err != nil {
		return nil, mapError(err)
	}

	if a.eng.Plugins() != nil {
		a.eng.Plugins().EmitGrantCreated(ctx.Context(), g)
	}

	return g, ctx.JSON(http.StatusCreated, g)
}

func (a *API) getGrant(ctx forge.Context, _ *GetGrantRequest) (*grant.AffiliationGrant, error) {
	grantID, err := id.ParseGrantID(ctx.Param("grantId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid grant ID: %v", err))
	}

	g, err := a.eng.Store().GetGrant(ctx.Context(), grantID)
	if err != nil {
		return nil, mapError(err)
	}

	return g, ctx.JSON(http.StatusOK, g)
}

func (a *API) revokeGrant(ctx forge.Context, _ *GetGrantRequest) (*struct{}, error) {
	grantID, err := id.ParseGrantID(ctx.Param("grantId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid grant ID: %v", err))
	}

	if err := a.eng.Store().DeleteGrant(ctx.Context(), grantID); err != nil {
		return nil, mapError(err)
	}

	if a.eng.Plugins() != nil {
		a.eng.Plugins().EmitGrantRevoked(ctx.Context(), grantID)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listGrants(ctx forge.Context, req *ListGrantsRequest) ([]*grant.AffiliationGrant, error) {
	filter := &grant.ListFilter{
		Limit:  defaultLimit(req.Limit),
		Offset: req.Offset,
	}

	if req.AffiliationID != "" {
		affID, err := id.ParseAffiliationID(req.AffiliationID)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid affiliation ID: %v", err))
		}
		filter.AffiliationID = &affID
	}
	if req.PolicyID != "" {
		polID, err := id.ParsePolicyID(req.PolicyID)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid policy ID: %v", err))
		}
		filter.PolicyID = &polID
	}
	if req.PrincipalGroupID != "" {
		groupID, err := id.ParsePrincipalGroupID(req.PrincipalGroupID)
		if err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid principal group ID: %v", err))
		}
		filter.PrincipalGroupID = &groupID
	}
	if req.Type != "" {
		filter.Type = grant.Type(req.Type)
	}

	grants, err := a.eng.Store().ListGrants(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return grants, ctx.JSON(http.StatusOK, grants)
}
