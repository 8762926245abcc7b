package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/stagewiki/verdict"
)

func (a *API) registerCheckRoutes(router forge.Router) error {
	g := router.Group("/v1/authz", forge.WithGroupTags("authorization"))

	if err := g.POST("/check", a.check,
		forge.WithSummary("Authorization check"),
		forge.WithDescription("Evaluates whether the principal can perform the action on the resource."),
		forge.WithOperationID("authzCheck"),
		forge.WithRequestSchema(CheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Check result", CheckResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/enforce", a.enforce,
		forge.WithSummary("Enforce authorization"),
		forge.WithDescription("Returns 200 if allowed, 403 if denied."),
		forge.WithOperationID("authzEnforce"),
		forge.WithRequestSchema(CheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Allowed", CheckResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/batch-check", a.batchCheck,
		forge.WithSummary("Batch authorization check"),
		forge.WithDescription("Evaluates multiple authorization checks in one request."),
		forge.WithOperationID("authzBatchCheck"),
		forge.WithRequestSchema(BatchCheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Batch results", BatchCheckResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) check(ctx forge.Context, req *CheckRequest) (*CheckResponse, error) {
	domainReq, err := toCheckRequest(req)
	if err != nil {
		return nil, err
	}

	result, err := a.eng.Check(ctx.Context(), domainReq)
	if err != nil {
		return nil, mapError(err)
	}

	resp := toCheckResponse(result)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) enforce(ctx forge.Context, req *CheckRequest) (*CheckResponse, error) {
	domainReq, err := toCheckRequest(req)
	if err != nil {
		return nil, err
	}

	result, err := a.eng.Check(ctx.Context(), domainReq)
	if err != nil {
		return nil, mapError(err)
	}

	resp := toCheckResponse(result)
	if !result.Allowed {
		return resp, ctx.JSON(http.StatusForbidden, resp)
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) batchCheck(ctx forge.Context, req *BatchCheckRequest) (*BatchCheckResponse, error) {
	if len(req.Checks) == 0 {
		return nil, forge.BadRequest("checks cannot be empty")
	}

	results := make([]CheckResponse, len(req.Checks))
	for i, c := range req.Checks {
		domainReq, err := toCheckRequest(&c)
		if err != nil {
			return nil, err
		}
		result, err := a.eng.Check(ctx.Context(), domainReq)
		if err != nil {
			return nil, mapError(err)
		}
		results[i] = *toCheckResponse(result)
	}

	resp := &BatchCheckResponse{Results: results}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func toCheckRequest(r *CheckRequest) (*verdict.CheckRequest, error) {
	if r.Principal.ID == "" || r.Action == "" || r.Resource.Type == "" {
		return nil, forge.BadRequest("principal.id, action, and resource.type are required")
	}

	action, err := verdict.ParseAction(r.Action)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid action: %v", err))
	}
	resourceType, err := verdict.ParseResourceType(r.Resource.Type)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid resource type: %v", err))
	}
	role, err := verdict.ParseRole(r.Principal.Role)
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid role: %v", err))
	}

	return &verdict.CheckRequest{
		Principal: verdict.Principal{
			ID:        r.Principal.ID,
			AccountID: r.Principal.AccountID,
			Role:      role,
			AgencyID:  r.Principal.AgencyID,
			GroupIDs:  verdict.NewIDSet(r.Principal.GroupIDs...),
			TalentIDs: verdict.NewIDSet(r.Principal.TalentIDs...),
		},
		Action: action,
		Resource: verdict.ResourceDescriptor{
			Type:       resourceType,
			ID:         r.Resource.ID,
			AgencyID:   r.Resource.AgencyID,
			GroupIDs:   verdict.NewIDSet(r.Resource.GroupIDs...),
			TalentIDs:  verdict.NewIDSet(r.Resource.TalentIDs...),
			IsOfficial: r.Resource.IsOfficial,
		},
	}, nil
}

func toCheckResponse(r *verdict.CheckResult) *CheckResponse {
	resp := &CheckResponse{
		Allowed:    r.Allowed,
		Decision:   string(r.Decision),
		Reason:     r.Reason,
		EvalTimeNs: r.EvalTimeNs,
	}
	for _, m := range r.MatchedBy {
		resp.MatchedBy = append(resp.MatchedBy, MatchInfo{
			Source: m.Source,
			RuleID: m.RuleID,
			Detail: m.Detail,
		})
	}
	return resp
}
