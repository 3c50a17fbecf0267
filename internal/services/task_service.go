package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/teamflow/crm-api/internal/apperrors"
	"github.com/teamflow/crm-api/internal/models"
	"github.com/teamflow/crm-api/internal/rbac"
)

type TaskService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewTaskService(db *gorm.DB, audit *AuditService) *TaskService {
	return &TaskService{
		db:    db,
		audit: audit,
	}
}

type TaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	DueAt       *time.Time
	ClientID    *uint
	DealID      *uint
	AssigneeID  *uint
}

// TaskUpdate carries optional field updates; nil means "leave as is".
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	DueAt       *time.Time
	AssigneeID  *uint
}

func (s *TaskService) Create(ctx context.Context, member *models.Member, input TaskInput) (*models.Task, error) {
	if input.Title == "" {
		return nil, apperrors.ErrValidation.WithMessage("Task title is required")
	}
	status := input.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	if !models.IsValidTaskStatus(status) {
		return nil, apperrors.ErrValidation.WithMessage("Unknown task status")
	}

	task := &models.Task{
		WorkspaceID: member.WorkspaceID,
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		DueAt:       input.DueAt,
		ClientID:    input.ClientID,
		DealID:      input.DealID,
		AssigneeID:  input.AssigneeID,
	}
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return nil, err
	}

	fireAndForget(ctx, "audit.task.create", func() error {
		return s.audit.Record(ctx, AuditEntry{
			WorkspaceID: member.WorkspaceID,
			ActorID:     member.UserID,
			EntityType:  "task",
			EntityID:    task.ID,
			Action:      models.AuditActionCreate,
			Payload:     models.JSON{"title": task.Title},
		})
	})

	return task, nil
}

func (s *TaskService) Get(ctx context.Context, workspaceID, taskID uint) (*models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).
		Where("id = ? AND workspace_id = ?", taskID, workspaceID).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound.WithMessage("Task not found")
		}
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) List(ctx context.Context, workspaceID uint, status models.TaskStatus, dealID uint) ([]models.Task, error) {
	query := s.db.WithContext(ctx).Where("workspace_id = ?", workspaceID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if dealID != 0 {
		query = query.Where("deal_id = ?", dealID)
	}
	var tasks []models.Task
	err := query.Order("id").Find(&tasks).Error
	return tasks, err
}

func (s *TaskService) Update(ctx context.Context, member *models.Member, taskID uint, update TaskUpdate) (*models.Task, error) {
	if !rbac.Can(member.Role, rbac.ActionTaskUpdateAll) {
		return nil, apperrors.ErrForbidden.WithMessage("Role does not permit task updates")
	}

	task, err := s.Get(ctx, member.WorkspaceID, taskID)
	if err != nil {
		return nil, err
	}

	changed := models.JSON{}
	if update.Title != nil {
		task.Title = *update.Title
		changed["title"] = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
		changed["description"] = *update.Description
	}
	if update.Status != nil {
		if !models.IsValidTaskStatus(*update.Status) {
			return nil, apperrors.ErrValidation.WithMessage("Unknown task status")
		}
		task.Status = *update.Status
		changed["status"] = string(*update.Status)
	}
	if update.DueAt != nil {
		task.DueAt = update.DueAt
		changed["due_at"] = update.DueAt.Format(time.RFC3339)
	}
	if update.AssigneeID != nil {
		task.AssigneeID = update.AssigneeID
		changed["assignee_id"] = *update.AssigneeID
	}

	if err := s.db.WithContext(ctx).Save(task).Error; err != nil {
		return nil, err
	}

	fireAndForget(ctx, "audit.task.update", func() error {
		return s.audit.Record(ctx, AuditEntry{
			WorkspaceID: member.WorkspaceID,
			ActorID:     member.UserID,
			EntityType:  "task",
			EntityID:    task.ID,
			Action:      models.AuditActionUpdate,
			Payload:     changed,
		})
	})

	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, member *models.Member, taskID uint) error {
	if !rbac.Can(member.Role, rbac.ActionTaskDelete) {
		return apperrors.ErrForbidden.WithMessage("Role does not permit deleting tasks")
	}

	task, err := s.Get(ctx, member.WorkspaceID, taskID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(task).Error; err != nil {
		return err
	}

	fireAndForget(ctx, "audit.task.delete", func() error {
		return s.audit.Record(ctx, AuditEntry{
			WorkspaceID: member.WorkspaceID,
			ActorID:     member.UserID,
			EntityType:  "task",
			EntityID:    task.ID,
			Action:      models.AuditActionDelete,
			Payload:     models.JSON{"title": task.Title},
		})
	})

	return nil
}
