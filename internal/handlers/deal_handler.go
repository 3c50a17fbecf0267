package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/teamflow/crm-api/internal/middleware"
	"github.com/teamflow/crm-api/internal/services"
	"github.com/teamflow/crm-api/pkg/utils"
)

type CreateDealRequest struct {
	Title      string   `json:"title" binding:"required"`
	Stage      string   `json:"stage"`
	Amount     *float64 `json:"amount"`
	ClientID   *uint    `json:"clientId"`
	AssigneeID *uint    `json:"assigneeId"`
}

type UpdateDealRequest struct {
	Title      *string  `json:"title"`
	Stage      *string  `json:"stage"`
	Amount     *float64 `json:"amount"`
	ClientID   *uint    `json:"clientId"`
	AssigneeID *uint    `json:"assigneeId"`
}

type ToggleChecklistRequest struct {
	Title     string `json:"title" binding:"required"`
	Completed *bool  `json:"completed" binding:"required"`
}

type DealHandler struct {
	deals      *services.DealService
	checklists *services.ChecklistService
}

func NewDealHandler(deals *services.DealService, checklists *services.ChecklistService) *DealHandler {
	return &DealHandler{deals: deals, checklists: checklists}
}

func (h *DealHandler) Create(c *gin.Context) {
	var req CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(c, "title is required")
		return
	}

	deal, err := h.deals.Create(c.Request.Context(), middleware.GetMember(c), services.DealInput{
		Title:      req.Title,
		Stage:      req.Stage,
		Amount:     req.Amount,
		ClientID:   req.ClientID,
		AssigneeID: req.AssigneeID,
	})
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.Created(c, "Deal created", deal)
}

func (h *DealHandler) List(c *gin.Context) {
	workspace := middleware.GetWorkspace(c)
	deals, err := h.deals.List(c.Request.Context(), workspace.ID, c.Query("stage"))
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.OK(c, deals)
}

func (h *DealHandler) Get(c *gin.Context) {
	workspace := middleware.GetWorkspace(c)
	dealID, err := pathID(c, "deal_id")
	if err != nil {
		utils.SendError(c, err)
		return
	}

	deal, err := h.deals.Get(c.Request.Context(), workspace.ID, dealID)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.OK(c, deal)
}

func (h *DealHandler) Update(c *gin.Context) {
	dealID, err := pathID(c, "deal_id")
	if err != nil {
		utils.SendError(c, err)
		return
	}

	var req UpdateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(c, "invalid request body")
		return
	}

	deal, err := h.deals.Update(c.Request.Context(), middleware.GetMember(c), dealID, services.DealUpdate{
		Title:      req.Title,
		Stage:      req.Stage,
		Amount:     req.Amount,
		ClientID:   req.ClientID,
		AssigneeID: req.AssigneeID,
	})
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.OKWithMessage(c, "Deal updated", deal)
}

func (h *DealHandler) Delete(c *gin.Context) {
	dealID, err := pathID(c, "deal_id")
	if err != nil {
		utils.SendError(c, err)
		return
	}

	if err := h.deals.Delete(c.Request.Context(), middleware.GetMember(c), dealID); err != nil {
		utils.SendError(c, err)
		return
	}
	utils.OKWithMessage(c, "Deal deleted", nil)
}

// GetChecklist materializes and returns the checklist for the deal's
// current stage.
func (h *DealHandler) GetChecklist(c *gin.Context) {
	workspace := middleware.GetWorkspace(c)
	dealID, err := pathID(c, "deal_id")
	if err != nil {
		utils.SendError(c, err)
		return
	}

	deal, err := h.deals.Get(c.Request.Context(), workspace.ID, dealID)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	items, err := h.checklists.Materialize(c.Request.Context(), deal)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.OK(c, items)
}

func (h *DealHandler) ToggleChecklistItem(c *gin.Context) {
	workspace := middleware.GetWorkspace(c)
	dealID, err := pathID(c, "deal_id")
	if err != nil {
		utils.SendError(c, err)
		return
	}

	var req ToggleChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(c, "title and completed are required")
		return
	}

	deal, err := h.deals.Get(c.Request.Context(), workspace.ID, dealID)
	if err != nil {
		utils.SendError(c, err)
		return
	}

	result, err := h.checklists.Toggle(c.Request.Context(), middleware.GetMember(c), deal, req.Title, *req.Completed)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.OK(c, result)
}
