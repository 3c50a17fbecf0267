package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/teamflow/crm-api/internal/middleware"
	"github.com/teamflow/crm-api/internal/services"
	"github.com/teamflow/crm-api/pkg/utils"
)

type AuditHandler struct {
	audit *services.AuditService
}

func NewAuditHandler(audit *services.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

func (h *AuditHandler) List(c *gin.Context) {
	workspace := middleware.GetWorkspace(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	events, total, err := h.audit.List(c.Request.Context(), workspace.ID, page, limit)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.Paginated(c, events, page, limit, int(total))
}
