package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/teamflow/crm-api/internal/middleware"
	"github.com/teamflow/crm-api/internal/services"
	"github.com/teamflow/crm-api/pkg/utils"
)

type CreateClientRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Notes   string `json:"notes"`
}

type UpdateClientRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Company *string `json:"company"`
	Notes   *string `json:"notes"`
}

type ClientHandler struct {
	clients *services.ClientService
}

func NewClientHandler(clients *services.ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

func (h *ClientHandler) Create(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(c, "name is required")
		return
	}

	client, err := h.clients.Create(c.Request.Context(), middleware.GetMember(c),
		req.Name, req.Email, req.Phone, req.Company, req.Notes)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.Created(c, "Client created", client)
}

func (h *ClientHandler) List(c *gin.Context) {
	workspace := middleware.GetWorkspace(c)
	clients, err := h.clients.List(c.Request.Context(), workspace.ID)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.OK(c, clients)
}

func (h *ClientHandler) Get(c *gin.Context) {
	workspace := middleware.GetWorkspace(c)
	clientID, err := pathID(c, "client_id")
	if err != nil {
		utils.SendError(c, err)
		return
	}

	client, err := h.clients.Get(c.Request.Context(), workspace.ID, clientID)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.OK(c, client)
}

func (h *ClientHandler) Update(c *gin.Context) {
	clientID, err := pathID(c, "client_id")
	if err != nil {
		utils.SendError(c, err)
		return
	}

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(c, "invalid request body")
		return
	}

	client, err := h.clients.Update(c.Request.Context(), middleware.GetMember(c), clientID, services.ClientUpdate{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Notes:   req.Notes,
	})
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.OKWithMessage(c, "Client updated", client)
}

func (h *ClientHandler) Delete(c *gin.Context) {
	clientID, err := pathID(c, "client_id")
	if err != nil {
		utils.SendError(c, err)
		return
	}

	if err := h.clients.Delete(c.Request.Context(), middleware.GetMember(c), clientID); err != nil {
		utils.SendError(c, err)
		return
	}
	utils.OKWithMessage(c, "Client deleted", nil)
}
