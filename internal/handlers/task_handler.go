package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/teamflow/crm-api/internal/middleware"
	"github.com/teamflow/crm-api/internal/models"
	"github.com/teamflow/crm-api/internal/services"
	"github.com/teamflow/crm-api/pkg/utils"
)

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueAt       *time.Time `json:"dueAt"`
	ClientID    *uint      `json:"clientId"`
	DealID      *uint      `json:"dealId"`
	AssigneeID  *uint      `json:"assigneeId"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	DueAt       *time.Time `json:"dueAt"`
	AssigneeID  *uint      `json:"assigneeId"`
}

type TaskHandler struct {
	tasks *services.TaskService
}

func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(c, "title is required")
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), middleware.GetMember(c), services.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		DueAt:       req.DueAt,
		ClientID:    req.ClientID,
		DealID:      req.DealID,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.Created(c, "Task created", task)
}

func (h *TaskHandler) List(c *gin.Context) {
	workspace := middleware.GetWorkspace(c)

	var dealID uint
	if raw := c.Query("dealId"); raw != "" {
		id, err := parseID(raw, "dealId")
		if err != nil {
			utils.SendError(c, err)
			return
		}
		dealID = id
	}

	tasks, err := h.tasks.List(c.Request.Context(), workspace.ID, models.TaskStatus(c.Query("status")), dealID)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.OK(c, tasks)
}

func (h *TaskHandler) Get(c *gin.Context) {
	workspace := middleware.GetWorkspace(c)
	taskID, err := pathID(c, "task_id")
	if err != nil {
		utils.SendError(c, err)
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), workspace.ID, taskID)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.OK(c, task)
}

func (h *TaskHandler) Update(c *gin.Context) {
	taskID, err := pathID(c, "task_id")
	if err != nil {
		utils.SendError(c, err)
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(c, "invalid request body")
		return
	}

	update := services.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
		AssigneeID:  req.AssigneeID,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		update.Status = &status
	}

	task, err := h.tasks.Update(c.Request.Context(), middleware.GetMember(c), taskID, update)
	if err != nil {
		utils.SendError(c, err)
		return
	}
	utils.OKWithMessage(c, "Task updated", task)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	taskID, err := pathID(c, "task_id")
	if err != nil {
		utils.SendError(c, err)
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), middleware.GetMember(c), taskID); err != nil {
		utils.SendError(c, err)
		return
	}
	utils.OKWithMessage(c, "Task deleted", nil)
}
