package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teamflow/crm-api/internal/apperrors"
	"github.com/teamflow/crm-api/internal/config"
	"github.com/teamflow/crm-api/internal/middleware"
	"github.com/teamflow/crm-api/internal/models"
	"github.com/teamflow/crm-api/internal/services"
	"github.com/teamflow/crm-api/pkg/utils"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserInfo struct {
	ID              uint   `json:"id"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	IsPlatformAdmin bool   `json:"is_platform_admin"`
}

func userInfo(user *models.User) UserInfo {
	return UserInfo{
		ID:              user.ID,
		Email:           user.Email,
		Name:            user.Name,
		IsPlatformAdmin: user.IsPlatformAdmin,
	}
}

type AuthHandler struct {
	auth *services.AuthService
	cfg  config.SessionConfig
}

func NewAuthHandler(auth *services.AuthService, cfg config.SessionConfig) *AuthHandler {
	return &AuthHandler{
		auth: auth,
		cfg:  cfg,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(c, "email and password are required")
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	utils.Created(c, "Registered", userInfo(user))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(c, "email and password are required")
		return
	}

	user, session, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	h.setSessionCookie(c, session.Token, int(models.SessionTTL.Seconds()))
	utils.OKWithMessage(c, "Logged in", userInfo(user))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token, err := c.Cookie(h.cfg.CookieName)
	if err == nil && token != "" {
		if err := h.auth.Logout(c.Request.Context(), token); err != nil {
			utils.SendError(c, err)
			return
		}
	}

	h.setSessionCookie(c, "", -1)
	utils.OKWithMessage(c, "Logged out", nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		utils.SendError(c, apperrors.ErrUnauthorized)
		return
	}
	utils.OK(c, userInfo(user))
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, token, maxAge, "/", h.cfg.CookieDomain, h.cfg.CookieSecure, true)
}
