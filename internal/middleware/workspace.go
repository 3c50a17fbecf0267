package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/teamflow/crm-api/internal/apperrors"
	"github.com/teamflow/crm-api/internal/models"
	"github.com/teamflow/crm-api/internal/rbac"
	"github.com/teamflow/crm-api/internal/services"
	"github.com/teamflow/crm-api/pkg/utils"
)

// WorkspaceMiddleware resolves the workspace slug path parameter and the
// caller's membership. It must run on every workspace-scoped route before
// any domain logic.
type WorkspaceMiddleware struct {
	workspaces *services.WorkspaceService
}

func NewWorkspaceMiddleware(workspaces *services.WorkspaceService) *WorkspaceMiddleware {
	return &WorkspaceMiddleware{
		workspaces: workspaces,
	}
}

// RequireMember resolves :slug to a workspace and the caller to a member
// of it. Non-members are Forbidden; the platform-admin flag does not
// bypass the tenant boundary.
func (m *WorkspaceMiddleware) RequireMember() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		user := GetUser(c)
		if user == nil {
			utils.AbortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		slug := c.Param("slug")
		workspace, err := m.workspaces.GetBySlug(c.Request.Context(), slug)
		if err != nil {
			utils.AbortWithError(c, err)
			return
		}

		member, err := m.workspaces.ResolveMember(c.Request.Context(), workspace.ID, user.ID)
		if err != nil {
			utils.AbortWithError(c, err)
			return
		}

		c.Set("workspace", workspace)
		c.Set("member", member)
		c.Set("workspace_id", workspace.ID)

		ctx := context.WithValue(c.Request.Context(), "workspace_id", workspace.ID)
		ctx = context.WithValue(ctx, "user_id", user.ID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	})
}

// RequireAnyRole gates a route group on a role allow-list. This is the
// coarse first line of defense; field-level checks against the permission
// table happen in the services.
func (m *WorkspaceMiddleware) RequireAnyRole(roles ...rbac.Role) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		member := GetMember(c)
		if member == nil {
			utils.AbortWithError(c, apperrors.ErrForbidden.WithMessage("Workspace membership required"))
			return
		}

		for _, role := range roles {
			if member.Role == role {
				c.Next()
				return
			}
		}

		utils.AbortWithError(c, apperrors.ErrForbidden.WithMessage("Insufficient role for this operation"))
	})
}

// GetWorkspace gets the resolved workspace from context
func GetWorkspace(c *gin.Context) *models.Workspace {
	if val, exists := c.Get("workspace"); exists {
		if workspace, ok := val.(*models.Workspace); ok {
			return workspace
		}
	}
	return nil
}

// GetMember gets the caller's resolved membership from context
func GetMember(c *gin.Context) *models.Member {
	if val, exists := c.Get("member"); exists {
		if member, ok := val.(*models.Member); ok {
			return member
		}
	}
	return nil
}
