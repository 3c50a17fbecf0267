package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/teamflow/crm-api/internal/apperrors"
	"github.com/teamflow/crm-api/internal/models"
	"github.com/teamflow/crm-api/internal/rbac"
)

// DealService owns deal mutations and drives the automation engine on
// create and stage-change events. The sequence within a request is
// gate, mutate, automate, audit; the latter two are best-effort.
type DealService struct {
	db         *gorm.DB
	automation *AutomationService
	audit      *AuditService
}

func NewDealService(db *gorm.DB, automation *AutomationService, audit *AuditService) *DealService {
	return &DealService{
		db:         db,
		automation: automation,
		audit:      audit,
	}
}

type DealInput struct {
	Title      string
	Stage      string
	Amount     *float64
	ClientID   *uint
	AssigneeID *uint
}

// DealUpdate carries optional field updates; nil means "leave as is".
type DealUpdate struct {
	Title      *string
	Stage      *string
	Amount     *float64
	ClientID   *uint
	AssigneeID *uint
}

func (s *DealService) Create(ctx context.Context, member *models.Member, input DealInput) (*models.Deal, error) {
	if input.Title == "" {
		return nil, apperrors.ErrValidation.WithMessage("Deal title is required")
	}
	stage := input.Stage
	if stage == "" {
		stage = models.StageLead
	}
	if !models.IsValidStage(stage) {
		return nil, apperrors.ErrValidation.WithMessage("Unknown pipeline stage")
	}

	deal := &models.Deal{
		WorkspaceID: member.WorkspaceID,
		Title:       input.Title,
		Stage:       stage,
		Amount:      input.Amount,
		ClientID:    input.ClientID,
		AssigneeID:  input.AssigneeID,
	}
	if err := s.db.WithContext(ctx).Create(deal).Error; err != nil {
		return nil, err
	}

	// DEAL_CREATED fires once regardless of the initial stage.
	fireAndForget(ctx, "automation.deal_created", func() error {
		return s.automation.Fire(ctx, deal, models.TriggerDealCreated, "", member.UserID)
	})

	fireAndForget(ctx, "audit.deal.create", func() error {
		return s.audit.Record(ctx, AuditEntry{
			WorkspaceID: member.WorkspaceID,
			ActorID:     member.UserID,
			EntityType:  "deal",
			EntityID:    deal.ID,
			Action:      models.AuditActionCreate,
			Payload:     models.JSON{"title": deal.Title, "stage": deal.Stage},
		})
	})

	return deal, nil
}

func (s *DealService) Get(ctx context.Context, workspaceID, dealID uint) (*models.Deal, error) {
	var deal models.Deal
	err := s.db.WithContext(ctx).
		Where("id = ? AND workspace_id = ?", dealID, workspaceID).
		First(&deal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound.WithMessage("Deal not found")
		}
		return nil, err
	}
	return &deal, nil
}

func (s *DealService) List(ctx context.Context, workspaceID uint, stage string) ([]models.Deal, error) {
	query := s.db.WithContext(ctx).Where("workspace_id = ?", workspaceID)
	if stage != "" {
		query = query.Where("stage = ?", stage)
	}
	var deals []models.Deal
	err := query.Order("id").Find(&deals).Error
	return deals, err
}

// requiredActions maps the touched fields to the fine-grained actions the
// caller must hold. Stage is only gated when it actually changes.
func (u DealUpdate) requiredActions(current *models.Deal) []rbac.Action {
	var actions []rbac.Action
	if u.Stage != nil && *u.Stage != current.Stage {
		actions = append(actions, rbac.ActionDealUpdateStage)
	}
	if u.Amount != nil {
		actions = append(actions, rbac.ActionDealUpdateAmount)
	}
	if u.Title != nil || u.ClientID != nil || u.AssigneeID != nil {
		actions = append(actions, rbac.ActionDealUpdateAll)
	}
	return actions
}

// Update applies a deal update. A stage change to a genuinely different
// value fires DEAL_STAGE_CHANGED automation after the save; setting the
// same stage again fires nothing.
func (s *DealService) Update(ctx context.Context, member *models.Member, dealID uint, update DealUpdate) (*models.Deal, error) {
	deal, err := s.Get(ctx, member.WorkspaceID, dealID)
	if err != nil {
		return nil, err
	}

	if update.Stage != nil && !models.IsValidStage(*update.Stage) {
		return nil, apperrors.ErrValidation.WithMessage("Unknown pipeline stage")
	}

	for _, action := range update.requiredActions(deal) {
		if !rbac.Can(member.Role, action) {
			return nil, apperrors.ErrForbidden.WithMessage("Role does not permit this deal update")
		}
	}

	previousStage := deal.Stage
	changed := models.JSON{}
	if update.Title != nil {
		deal.Title = *update.Title
		changed["title"] = *update.Title
	}
	if update.Stage != nil && *update.Stage != deal.Stage {
		deal.Stage = *update.Stage
		changed["stage"] = *update.Stage
	}
	if update.Amount != nil {
		deal.Amount = update.Amount
		changed["amount"] = *update.Amount
	}
	if update.ClientID != nil {
		deal.ClientID = update.ClientID
		changed["client_id"] = *update.ClientID
	}
	if update.AssigneeID != nil {
		deal.AssigneeID = update.AssigneeID
		changed["assignee_id"] = *update.AssigneeID
	}

	if err := s.db.WithContext(ctx).Save(deal).Error; err != nil {
		return nil, err
	}

	if deal.Stage != previousStage {
		fireAndForget(ctx, "automation.deal_stage_changed", func() error {
			return s.automation.Fire(ctx, deal, models.TriggerDealStageChanged, deal.Stage, member.UserID)
		})
	}

	fireAndForget(ctx, "audit.deal.update", func() error {
		return s.audit.Record(ctx, AuditEntry{
			WorkspaceID: member.WorkspaceID,
			ActorID:     member.UserID,
			EntityType:  "deal",
			EntityID:    deal.ID,
			Action:      models.AuditActionUpdate,
			Payload:     changed,
		})
	})

	return deal, nil
}

func (s *DealService) Delete(ctx context.Context, member *models.Member, dealID uint) error {
	if !rbac.Can(member.Role, rbac.ActionDealDelete) {
		return apperrors.ErrForbidden.WithMessage("Role does not permit deleting deals")
	}

	deal, err := s.Get(ctx, member.WorkspaceID, dealID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(deal).Error; err != nil {
		return err
	}

	fireAndForget(ctx, "audit.deal.delete", func() error {
		return s.audit.Record(ctx, AuditEntry{
			WorkspaceID: member.WorkspaceID,
			ActorID:     member.UserID,
			EntityType:  "deal",
			EntityID:    deal.ID,
			Action:      models.AuditActionDelete,
			Payload:     models.JSON{"title": deal.Title},
		})
	})

	return nil
}
