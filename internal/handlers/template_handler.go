package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/teamflow/crm-api/internal/middleware"
	"github.com/teamflow/crm-api/internal/models"
	"github.com/teamflow/crm-api/internal/services"
	"github.com/teamflow/crm-api/pkg/utils"
)

type CreateTemplateRequest struct {
	Trigger      string `json:"trigger" binding:"required"`
	TriggerValue string `json:"triggerValue"`
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	DueDays      *int   `json:"dueDays"`
}

// TemplateHandler exposes the workspace task-automation templates. The
// routes are restricted to OWNER and ADMIN at the router level.
type TemplateHandler struct {
	automation *services.AutomationService
}

func NewTemplateHandler(automation *services.AutomationService) *TemplateHandler {
	return &TemplateHandler{automation: automation}
}

func (h *TemplateHandler) Create(c *gin.Context) {
	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(c, "trigger and title are required")
		return
	}

	workspace := middleware.GetWorkspace(c)
	template, err := h.automation.CreateTemplate(c.Request.Context(), workspace.ID,
		models.TriggerType(req.Trigger), req.TriggerValue, req.Title, req.Description, req.DueDays)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.Created(c, "Template saved", template)
}

func (h *TemplateHandler) List(c *gin.Context) {
	workspace := middleware.GetWorkspace(c)
	templates, err := h.automation.ListTemplates(c.Request.Context(), workspace.ID)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.OK(c, templates)
}
