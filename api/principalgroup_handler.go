package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/stagewiki/verdict/id"
	"github.com/stagewiki/verdict/principalgroup"
)

func (a *API) registerGroupRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("principal-groups"))

	if err := g.POST("/principal-groups", a.createGroup,
		forge.WithSummary("Create principal group"),
		forge.WithDescription("Creates a new principal group. Each account may have at most one default group."),
		forge.WithOperationID("createPrincipalGroup"),
		forge.WithRequestSchema(CreateGroupRequest{}),
		forge.WithCreatedResponse(&principalgroup.PrincipalGroup{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/principal-groups/:groupId", a.getGroup,
		forge.WithSummary("Get principal group"),
		forge.WithOperationID("getPrincipalGroup"),
		forge.WithResponseSchema(http.StatusOK, "Group details", &principalgroup.PrincipalGroup{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/principal-groups/:groupId", a.updateGroup,
		forge.WithSummary("Rename principal group"),
		forge.WithOperationID("updatePrincipalGroup"),
		forge.WithRequestSchema(UpdateGroupRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated group", &principalgroup.PrincipalGroup{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/principal-groups/:groupId", a.deleteGroup,
		forge.WithSummary("Delete principal group"),
		forge.WithOperationID("deletePrincipalGroup"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/principal-groups", a.listGroups,
		forge.WithSummary("List principal groups"),
		forge.WithOperationID("listPrincipalGroups"),
		forge.WithRequestSchema(ListGroupsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Group list", []*principalgroup.PrincipalGroup{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/principal-groups/:groupId/members", a.addGroupMember,
		forge.WithSummary("Add group member"),
		forge.WithOperationID("addGroupMember"),
		forge.WithRequestSchema(AddMemberRequest{}),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.DELETE("/principal-groups/:groupId/members/:principalId", a.removeGroupMember,
		forge.WithSummary("Remove group member"),
		forge.WithOperationID("removeGroupMember"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	)
}

func (a *API) createGroup(ctx forge.Context, req *CreateGroupRequest) (*principalgroup.PrincipalGroup, error) {
	if req.AccountID == "" {
		return nil, forge.BadRequest("account_id is required")
	}
	if req.Name == "" {
		return nil, forge.BadRequest("name is required")
	}

	g := &principalgroup.PrincipalGroup{
		ID:        id.NewPrincipalGroupID(),
		AccountID: req.AccountID,
		Name:      req.Name,
		IsDefault: req.IsDefault,
	}

	if err := a.eng.Store().CreateGroup(ctx.Context(), g); err != nil {
		return nil, mapError(err)
	}

	if a.eng.Plugins() != nil {
		a.eng.Plugins().EmitGroupCreated(ctx.Context(), g)
	}

	return g, ctx.JSON(http.StatusCreated, g)
}

func (a *API) getGroup(ctx forge.Context, _ *GetGroupRequest) (*principalgroup.PrincipalGroup, error) {
	groupID, err := id.ParsePrincipalGroupID(ctx.Param("groupId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid group ID: %v", err))
	}

	g, err := a.eng.Store().GetGroup(ctx.Context(), groupID)
	if err != nil {
		return nil, mapError(err)
	}

	return g, ctx.JSON(http.StatusOK, g)
}

func (a *API) updateGroup(ctx forge.Context, req *UpdateGroupRequest) (*principalgroup.PrincipalGroup, error) {
	groupID, err := id.ParsePrincipalGroupID(ctx.Param("groupId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid group ID: %v", err))
	}
	if req.Name == "" {
		return nil, forge.BadRequest("name is required")
	}

	g, err := a.eng.Store().GetGroup(ctx.Context(), groupID)
	if err != nil {
		return nil, mapError(err)
	}

	g.Name = req.Name
	if err := a.eng.Store().UpdateGroup(ctx.Context(), g); err != nil {
		return nil, mapError(err)
	}

	return g, ctx.JSON(http.StatusOK, g)
}

func (a *API) deleteGroup(ctx forge.Context, _ *GetGroupRequest) (*struct{}, error) {
	groupID, err := id.ParsePrincipalGroupID(ctx.Param("groupId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid group ID: %v", err))
	}

	if err := a.eng.Store().DeleteGroup(ctx.Context(), groupID); err != nil {
		return nil, mapError(err)
	}

	if a.eng.Plugins() != nil {
		a.eng.Plugins().EmitGroupDeleted(ctx.Context(), groupID)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listGroups(ctx forge.Context, req *ListGroupsRequest) ([]*principalgroup.PrincipalGroup, error) {
	filter := &principalgroup.ListFilter{
		AccountID: req.AccountID,
		Search:    req.Search,
		Limit:     defaultLimit(req.Limit),
		Offset:    req.Offset,
	}

	switch req.Default {
	case "true":
		t := true
		filter.IsDefault = &t
	case "false":
		f := false
		filter.IsDefault = &f
	}

	groups, err := a.eng.Store().ListGroups(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return groups, ctx.JSON(http.StatusOK, groups)
}

func (a *API) addGroupMember(ctx forge.Context, req *AddMemberRequest) (*struct{}, error) {
	groupID, err := id.ParsePrincipalGroupID(ctx.Param("groupId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid group ID: %v", err))
	}
	if req.PrincipalID == "" {
		return nil, forge.BadRequest("principal_id is required")
	}

	if err := a.eng.Store().AddMember(ctx.Context(), groupID, req.PrincipalID); err != nil {
		return nil, mapError(err)
	}

	if a.eng.Plugins() != nil {
		a.eng.Plugins().EmitGroupMemberAdded(ctx.Context(), groupID, req.PrincipalID)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) removeGroupMember(ctx forge.Context, _ *struct{}) (*struct{}, error) {
	groupID, err := id.ParsePrincipalGroupID(ctx.Param("groupId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid group ID: %v", err))
	}
	principalID := ctx.Param("principalId")
	if principalID == "" {
		return nil, forge.BadRequest("principalId is required")
	}

	if err := a.eng.Store().RemoveMember(ctx.Context(), groupID, principalID); err != nil {
		return nil, mapError(err)
	}

	if a.eng.Plugins() != nil {
		a.eng.Plugins().EmitGroupMemberRemoved(ctx.Context(), groupID, principalID)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}
