package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/teamflow/crm-api/internal/models"
	"github.com/teamflow/crm-api/pkg/utils"
)

// PlatformHandler serves the cross-tenant admin surface. Every route is
// gated by RequirePlatformAdmin; there is no workspace scope here.
type PlatformHandler struct {
	db *gorm.DB
}

func NewPlatformHandler(db *gorm.DB) *PlatformHandler {
	return &PlatformHandler{db: db}
}

func (h *PlatformHandler) ListWorkspaces(c *gin.Context) {
	var workspaces []models.Workspace
	if err := h.db.WithContext(c.Request.Context()).Order("id").Find(&workspaces).Error; err != nil {
		utils.SendError(c, err)
		return
	}
	utils.OK(c, workspaces)
}

func (h *PlatformHandler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := h.db.WithContext(c.Request.Context()).Order("id").Find(&users).Error; err != nil {
		utils.SendError(c, err)
		return
	}
	utils.OK(c, users)
}

func (h *PlatformHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()
	counts := map[string]int64{}

	for name, model := range map[string]interface{}{
		"users":      &models.User{},
		"workspaces": &models.Workspace{},
		"clients":    &models.Client{},
		"deals":      &models.Deal{},
		"tasks":      &models.Task{},
	} {
		var n int64
		if err := h.db.WithContext(ctx).Model(model).Count(&n).Error; err != nil {
			utils.SendError(c, err)
			return
		}
		counts[name] = n
	}

	utils.OK(c, counts)
}
