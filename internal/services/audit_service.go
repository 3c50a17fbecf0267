package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teamflow/crm-api/internal/models"
)

// AuditService appends immutable audit events. Records are write-only:
// nothing in this core reads them back for decisions, they feed the
// timeline views.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// AuditEntry describes one mutation to record.
type AuditEntry struct {
	WorkspaceID uint
	ActorID     uint
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Payload     models.JSON
}

func (s *AuditService) Record(ctx context.Context, entry AuditEntry) error {
	event := &models.AuditEvent{
		ID:          uuid.NewString(),
		WorkspaceID: entry.WorkspaceID,
		ActorID:     entry.ActorID,
		EntityType:  entry.EntityType,
		EntityID:    fmt.Sprintf("%d", entry.EntityID),
		Action:      entry.Action,
		Payload:     entry.Payload,
	}
	return s.db.WithContext(ctx).Create(event).Error
}

// List returns workspace audit events, newest first.
func (s *AuditService) List(ctx context.Context, workspaceID uint, page, limit int) ([]models.AuditEvent, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	var total int64
	if err := s.db.WithContext(ctx).
		Model(&models.AuditEvent{}).
		Where("workspace_id = ?", workspaceID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []models.AuditEvent
	err := s.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
