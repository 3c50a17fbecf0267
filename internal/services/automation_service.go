package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/teamflow/crm-api/internal/apperrors"
	"github.com/teamflow/crm-api/internal/models"
)

// AutomationService materializes tasks from workspace templates when deal
// events fire. Callers invoke Fire through fireAndForget: an automation
// failure never fails the deal mutation that triggered it.
type AutomationService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewAutomationService(db *gorm.DB, audit *AuditService) *AutomationService {
	return &AutomationService{
		db:    db,
		audit: audit,
	}
}

// TemplateID computes the deterministic id used for seeded templates, so
// the same (workspace, trigger) pair always upserts the same row.
func TemplateID(workspaceID uint, trigger models.TriggerType, value string) string {
	if value == "" {
		return fmt.Sprintf("%d:%s", workspaceID, trigger)
	}
	return fmt.Sprintf("%d:%s:%s", workspaceID, trigger, value)
}

type defaultTemplate struct {
	trigger     models.TriggerType
	value       string
	title       string
	description string
	dueDays     int
}

var defaultTemplates = []defaultTemplate{
	{models.TriggerDealCreated, "", "Первичный контакт", "Связаться с клиентом по новой сделке", 1},
	{models.TriggerDealStageChanged, models.StageQualification, "Провести квалификацию", "Уточнить потребность, бюджет и сроки", 2},
	{models.TriggerDealStageChanged, models.StageProposal, "Подготовить коммерческое предложение", "Составить и отправить КП клиенту", 3},
	{models.TriggerDealStageChanged, models.StageNegotiation, "Согласовать условия сделки", "Обсудить условия, скидки и договор", 5},
}

// SeedDefaultTemplates upserts the default template set for a workspace.
// Ids are deterministic, so repeated seeding never duplicates.
func (s *AutomationService) SeedDefaultTemplates(ctx context.Context, workspaceID uint) error {
	templates := make([]models.TaskTemplate, 0, len(defaultTemplates))
	for _, d := range defaultTemplates {
		dueDays := d.dueDays
		templates = append(templates, models.TaskTemplate{
			ID:           TemplateID(workspaceID, d.trigger, d.value),
			WorkspaceID:  workspaceID,
			TriggerType:  d.trigger,
			TriggerValue: d.value,
			Title:        d.title,
			Description:  d.description,
			DueDays:      &dueDays,
			TaskStatus:   models.TaskStatusTodo,
		})
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description", "due_days", "task_status", "updated_at"}),
		}).
		Create(&templates).Error
}

// CreateTemplate adds a custom template with a random id.
func (s *AutomationService) CreateTemplate(ctx context.Context, workspaceID uint, trigger models.TriggerType, value, title, description string, dueDays *int) (*models.TaskTemplate, error) {
	if trigger != models.TriggerDealCreated && trigger != models.TriggerDealStageChanged {
		return nil, apperrors.ErrValidation.WithMessage("Unknown trigger type")
	}
	if trigger == models.TriggerDealStageChanged && !models.IsValidStage(value) {
		return nil, apperrors.ErrValidation.WithMessage("Unknown pipeline stage")
	}
	if title == "" {
		return nil, apperrors.ErrValidation.WithMessage("Template title is required")
	}

	template := &models.TaskTemplate{
		ID:           uuid.NewString(),
		WorkspaceID:  workspaceID,
		TriggerType:  trigger,
		TriggerValue: value,
		Title:        title,
		Description:  description,
		DueDays:      dueDays,
		TaskStatus:   models.TaskStatusTodo,
	}
	if err := s.db.WithContext(ctx).Create(template).Error; err != nil {
		return nil, err
	}
	return template, nil
}

func (s *AutomationService) ListTemplates(ctx context.Context, workspaceID uint) ([]models.TaskTemplate, error) {
	var templates []models.TaskTemplate
	err := s.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("id").
		Find(&templates).Error
	return templates, err
}

// Fire materializes one task per template matching the trigger. For
// DEAL_STAGE_CHANGED the trigger value is the new stage; for DEAL_CREATED
// it is ignored. Tasks inherit the deal's client and assignee.
func (s *AutomationService) Fire(ctx context.Context, deal *models.Deal, trigger models.TriggerType, value string, actorID uint) error {
	query := s.db.WithContext(ctx).
		Where("workspace_id = ? AND trigger_type = ?", deal.WorkspaceID, trigger)
	if trigger == models.TriggerDealStageChanged {
		query = query.Where("trigger_value = ?", value)
	}

	var templates []models.TaskTemplate
	if err := query.Find(&templates).Error; err != nil {
		return fmt.Errorf("template lookup failed: %w", err)
	}

	for _, template := range templates {
		var dueAt *time.Time
		if template.DueDays != nil {
			due := time.Now().Add(time.Duration(*template.DueDays) * 24 * time.Hour)
			dueAt = &due
		}

		dealID := deal.ID
		task := &models.Task{
			WorkspaceID: deal.WorkspaceID,
			Title:       template.Title,
			Description: template.Description,
			Status:      template.TaskStatus,
			DueAt:       dueAt,
			DealID:      &dealID,
			ClientID:    deal.ClientID,
			AssigneeID:  deal.AssigneeID,
		}
		if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
			return fmt.Errorf("failed to create task from template %s: %w", template.ID, err)
		}

		templateID := template.ID
		fireAndForget(ctx, "audit.task.auto_create", func() error {
			return s.audit.Record(ctx, AuditEntry{
				WorkspaceID: deal.WorkspaceID,
				ActorID:     actorID,
				EntityType:  "task",
				EntityID:    task.ID,
				Action:      models.AuditActionCreate,
				Payload: models.JSON{
					"autoCreated":  true,
					"templateId":   templateID,
					"trigger":      string(trigger),
					"triggerValue": value,
					"dealId":       deal.ID,
				},
			})
		})
	}

	return nil
}
