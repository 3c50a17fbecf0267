package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/teamflow/crm-api/internal/apperrors"
	"github.com/teamflow/crm-api/internal/models"
	"github.com/teamflow/crm-api/internal/rbac"
)

// stageChecklists is the fixed table of required checklist titles per
// pipeline stage. The titles are part of the observable contract; the
// table is policy, not configuration.
var stageChecklists = map[string][]string{
	models.StageLead: {
		"Первичный контакт установлен",
		"Потребность выявлена",
		"Бюджет определен",
	},
	models.StageQualification: {
		"Квалификация завершена",
		"ЛПР определен",
		"Сроки согласованы",
	},
	models.StageProposal: {
		"КП подготовлено",
		"КП отправлено клиенту",
		"Обратная связь получена",
	},
	models.StageNegotiation: {
		"Условия обсуждены",
		"Скидка согласована",
		"Договор подготовлен",
	},
	models.StageClosedWon: {
		"Договор подписан",
		"Оплата получена",
		"Проект передан в работу",
	},
	models.StageClosedLost: {
		"Причина отказа зафиксирована",
		"Клиент уведомлен",
		"Сделка архивирована",
	},
}

// RequiredChecklistTitles returns the static required titles for a stage,
// in display order.
func RequiredChecklistTitles(stage string) []string {
	return stageChecklists[stage]
}

// ChecklistService materializes per-stage deal checklists and closes
// related open tasks when items complete.
type ChecklistService struct {
	db      *gorm.DB
	audit   *AuditService
	matcher TaskMatcher
}

func NewChecklistService(db *gorm.DB, audit *AuditService, matcher TaskMatcher) *ChecklistService {
	if matcher == nil {
		matcher = SubstringMatcher{}
	}
	return &ChecklistService{
		db:      db,
		audit:   audit,
		matcher: matcher,
	}
}

// Materialize lazily creates any missing required items for the deal's
// current stage. It is idempotent: the (deal, stage, title) unique key
// makes re-requests no-ops.
func (s *ChecklistService) Materialize(ctx context.Context, deal *models.Deal) ([]models.DealChecklistItem, error) {
	required := RequiredChecklistTitles(deal.Stage)
	if len(required) > 0 {
		rows := make([]models.DealChecklistItem, 0, len(required))
		for _, title := range required {
			rows = append(rows, models.DealChecklistItem{
				DealID: deal.ID,
				Stage:  deal.Stage,
				Title:  title,
			})
		}
		err := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&rows).Error
		if err != nil {
			return nil, err
		}
	}

	var items []models.DealChecklistItem
	err := s.db.WithContext(ctx).
		Where("deal_id = ? AND stage = ?", deal.ID, deal.Stage).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ToggleResult is the checklist update response. The completion flag is
// advisory for the UI; it does not gate stage transitions.
type ToggleResult struct {
	Item              *models.DealChecklistItem `json:"item"`
	ChecklistComplete bool                      `json:"checklistComplete"`
	CompletedCount    int                       `json:"completedCount"`
	TotalCount        int                       `json:"totalCount"`
}

// Toggle sets a checklist item's completion for the deal's current stage,
// find-or-creating the row. Completing an item also closes related open
// tasks; that side effect and the audit write are best-effort.
func (s *ChecklistService) Toggle(ctx context.Context, member *models.Member, deal *models.Deal, title string, completed bool) (*ToggleResult, error) {
	if !rbac.Can(member.Role, rbac.ActionChecklistUpdate) {
		return nil, apperrors.ErrForbidden.WithMessage("Role does not permit checklist updates")
	}
	if title == "" {
		return nil, apperrors.ErrValidation.WithMessage("Checklist item title is required")
	}

	var item models.DealChecklistItem
	err := s.db.WithContext(ctx).
		Where("deal_id = ? AND stage = ? AND title = ?", deal.ID, deal.Stage, title).
		First(&item).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		item = models.DealChecklistItem{
			DealID: deal.ID,
			Stage:  deal.Stage,
			Title:  title,
		}
		if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
			return nil, err
		}
	}

	if completed {
		now := time.Now()
		userID := member.UserID
		item.Completed = true
		item.CompletedByID = &userID
		item.CompletedAt = &now
	} else {
		item.Completed = false
		item.CompletedByID = nil
		item.CompletedAt = nil
	}

	if err := s.db.WithContext(ctx).Save(&item).Error; err != nil {
		return nil, err
	}

	action := models.AuditActionUncheck
	if completed {
		action = models.AuditActionCheck
	}
	fireAndForget(ctx, "audit.checklist.toggle", func() error {
		return s.audit.Record(ctx, AuditEntry{
			WorkspaceID: deal.WorkspaceID,
			ActorID:     member.UserID,
			EntityType:  "checklist_item",
			EntityID:    item.ID,
			Action:      action,
			Payload:     models.JSON{"title": item.Title, "stage": item.Stage, "dealId": deal.ID},
		})
	})

	if completed {
		fireAndForget(ctx, "checklist.auto_close", func() error {
			return s.autoCloseTasks(ctx, member, deal, title)
		})
	}

	completedCount, totalCount, err := s.progress(ctx, deal)
	if err != nil {
		return nil, err
	}

	return &ToggleResult{
		Item:              &item,
		ChecklistComplete: totalCount > 0 && completedCount == totalCount,
		CompletedCount:    completedCount,
		TotalCount:        totalCount,
	}, nil
}

// autoCloseTasks moves matching open tasks on the same deal to DONE.
func (s *ChecklistService) autoCloseTasks(ctx context.Context, member *models.Member, deal *models.Deal, itemTitle string) error {
	var tasks []models.Task
	err := s.db.WithContext(ctx).
		Where("deal_id = ? AND status IN ?", deal.ID,
			[]models.TaskStatus{models.TaskStatusTodo, models.TaskStatusInProgress}).
		Find(&tasks).Error
	if err != nil {
		return err
	}

	for i := range tasks {
		task := &tasks[i]
		if !s.matcher.Matches(itemTitle, task.Title, task.Description) {
			continue
		}

		task.Status = models.TaskStatusDone
		if err := s.db.WithContext(ctx).Save(task).Error; err != nil {
			return err
		}

		fireAndForget(ctx, "audit.task.auto_close", func() error {
			return s.audit.Record(ctx, AuditEntry{
				WorkspaceID: deal.WorkspaceID,
				ActorID:     member.UserID,
				EntityType:  "task",
				EntityID:    task.ID,
				Action:      models.AuditActionUpdate,
				Payload: models.JSON{
					"autoClosed":    true,
					"checklistItem": itemTitle,
					"status":        string(models.TaskStatusDone),
				},
			})
		})
	}

	return nil
}

// progress recomputes completion for the deal's current stage against the
// static required titles.
func (s *ChecklistService) progress(ctx context.Context, deal *models.Deal) (completed, total int, err error) {
	required := RequiredChecklistTitles(deal.Stage)
	total = len(required)
	if total == 0 {
		return 0, 0, nil
	}

	var items []models.DealChecklistItem
	err = s.db.WithContext(ctx).
		Where("deal_id = ? AND stage = ? AND completed = ?", deal.ID, deal.Stage, true).
		Find(&items).Error
	if err != nil {
		return 0, 0, err
	}

	done := make(map[string]bool, len(items))
	for _, item := range items {
		done[item.Title] = true
	}
	for _, title := range required {
		if done[title] {
			completed++
		}
	}
	return completed, total, nil
}
