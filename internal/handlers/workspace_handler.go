package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/teamflow/crm-api/internal/apperrors"
	"github.com/teamflow/crm-api/internal/middleware"
	"github.com/teamflow/crm-api/internal/rbac"
	"github.com/teamflow/crm-api/internal/services"
	"github.com/teamflow/crm-api/pkg/utils"
)

type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

type UpdateMemberRoleRequest struct {
	Role rbac.Role `json:"role" binding:"required"`
}

type CreateInviteRequest struct {
	Email string    `json:"email" binding:"required"`
	Role  rbac.Role `json:"role" binding:"required"`
}

type AcceptInviteRequest struct {
	Token string `json:"token" binding:"required"`
}

// WorkspaceHandler serves workspace, member and invite endpoints.
type WorkspaceHandler struct {
	workspaces *services.WorkspaceService
	invites    *services.InviteService
}

func NewWorkspaceHandler(workspaces *services.WorkspaceService, invites *services.InviteService) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaces: workspaces,
		invites:    invites,
	}
}

func (h *WorkspaceHandler) Create(c *gin.Context) {
	var req CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(c, "name and slug are required")
		return
	}

	workspace, err := h.workspaces.Create(c.Request.Context(), req.Name, req.Slug, middleware.GetUserID(c))
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.Created(c, "Workspace created", workspace)
}

func (h *WorkspaceHandler) List(c *gin.Context) {
	workspaces, err := h.workspaces.ListForUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.OK(c, workspaces)
}

func (h *WorkspaceHandler) Get(c *gin.Context) {
	utils.OK(c, gin.H{
		"workspace": middleware.GetWorkspace(c),
		"member":    middleware.GetMember(c),
	})
}

func (h *WorkspaceHandler) ListMembers(c *gin.Context) {
	workspace := middleware.GetWorkspace(c)
	members, err := h.workspaces.ListMembers(c.Request.Context(), workspace.ID)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.OK(c, members)
}

func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	workspace := middleware.GetWorkspace(c)
	memberID, err := pathID(c, "member_id")
	if err != nil {
		utils.SendError(c, err)
		return
	}

	err = h.workspaces.RemoveMember(c.Request.Context(), workspace.ID, middleware.GetUserID(c), memberID)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.OKWithMessage(c, "Member removed", nil)
}

func (h *WorkspaceHandler) UpdateMemberRole(c *gin.Context) {
	workspace := middleware.GetWorkspace(c)
	memberID, err := pathID(c, "member_id")
	if err != nil {
		utils.SendError(c, err)
		return
	}

	var req UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(c, "role is required")
		return
	}

	member, err := h.workspaces.UpdateMemberRole(c.Request.Context(), workspace.ID, memberID, req.Role)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.OKWithMessage(c, "Role updated", member)
}

func (h *WorkspaceHandler) CreateInvite(c *gin.Context) {
	workspace := middleware.GetWorkspace(c)

	var req CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(c, "email and role are required")
		return
	}

	invite, err := h.invites.Create(c.Request.Context(), workspace.ID, middleware.GetUserID(c), req.Email, req.Role)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.Created(c, "Invite created", invite)
}

func (h *WorkspaceHandler) ListInvites(c *gin.Context) {
	workspace := middleware.GetWorkspace(c)
	invites, err := h.invites.List(c.Request.Context(), workspace.ID)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.OK(c, invites)
}

func (h *WorkspaceHandler) DeleteInvite(c *gin.Context) {
	workspace := middleware.GetWorkspace(c)
	inviteID, err := pathID(c, "invite_id")
	if err != nil {
		utils.SendError(c, err)
		return
	}

	if err := h.invites.Delete(c.Request.Context(), workspace.ID, inviteID); err != nil {
		utils.SendError(c, err)
		return
	}
	utils.OKWithMessage(c, "Invite deleted", nil)
}

// AcceptInvite is not workspace-scoped: the token identifies the
// workspace.
func (h *WorkspaceHandler) AcceptInvite(c *gin.Context) {
	var req AcceptInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(c, "token is required")
		return
	}

	member, err := h.invites.Accept(c.Request.Context(), req.Token, middleware.GetUser(c))
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.Created(c, "Invite accepted", member)
}

// pathID parses a numeric path parameter.
func pathID(c *gin.Context, name string) (uint, error) {
	return parseID(c.Param(name), name)
}

func parseID(raw, name string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, apperrors.ErrValidation.WithMessage("Invalid " + name)
	}
	return uint(id), nil
}
