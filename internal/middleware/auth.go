package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/teamflow/crm-api/internal/apperrors"
	"github.com/teamflow/crm-api/internal/config"
	"github.com/teamflow/crm-api/internal/models"
	"github.com/teamflow/crm-api/internal/services"
	"github.com/teamflow/crm-api/pkg/utils"
)

// AuthMiddleware resolves the session cookie to a user identity.
type AuthMiddleware struct {
	sessions *services.SessionService
	cfg      config.SessionConfig
}

func NewAuthMiddleware(sessions *services.SessionService, cfg config.SessionConfig) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
		cfg:      cfg,
	}
}

// RequireSession validates the session cookie and sets the user context.
// Authorization failures short-circuit the request; they are never
// downgraded.
func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		token, err := c.Cookie(m.cfg.CookieName)
		if err != nil || token == "" {
			utils.AbortWithError(c, apperrors.ErrUnauthorized.WithMessage("Session cookie is required"))
			return
		}

		session, user, err := m.sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			utils.AbortWithError(c, err)
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Set("session_id", session.ID)

		c.Next()
	})
}

// RequirePlatformAdmin gates /platform routes on the global flag. This is
// orthogonal to workspace RBAC: platform admins get no implicit workspace
// membership.
func (m *AuthMiddleware) RequirePlatformAdmin() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		user := GetUser(c)
		if user == nil {
			utils.AbortWithError(c, apperrors.ErrUnauthorized)
			return
		}
		if !user.IsPlatformAdmin {
			utils.AbortWithError(c, apperrors.ErrForbidden.WithMessage("Platform admin access required"))
			return
		}
		c.Next()
	})
}

// GetUser gets the resolved user from context
func GetUser(c *gin.Context) *models.User {
	if val, exists := c.Get("user"); exists {
		if user, ok := val.(*models.User); ok {
			return user
		}
	}
	return nil
}

// GetUserID gets the resolved user id from context
func GetUserID(c *gin.Context) uint {
	if val, exists := c.Get("user_id"); exists {
		if id, ok := val.(uint); ok {
			return id
		}
	}
	return 0
}
