package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/teamflow/crm-api/internal/apperrors"
	"github.com/teamflow/crm-api/internal/models"
	"github.com/teamflow/crm-api/internal/rbac"
)

type ClientService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewClientService(db *gorm.DB, audit *AuditService) *ClientService {
	return &ClientService{
		db:    db,
		audit: audit,
	}
}

// ClientUpdate carries optional field updates; nil means "leave as is".
type ClientUpdate struct {
	Name    *string
	Email   *string
	Phone   *string
	Company *string
	Notes   *string
}

// nameOnly reports whether the update touches nothing but the name, which
// is gated by the weaker client.update.name action.
func (u ClientUpdate) nameOnly() bool {
	return u.Name != nil && u.Email == nil && u.Phone == nil && u.Company == nil && u.Notes == nil
}

func (s *ClientService) Create(ctx context.Context, member *models.Member, name, email, phone, company, notes string) (*models.Client, error) {
	if name == "" {
		return nil, apperrors.ErrValidation.WithMessage("Client name is required")
	}

	client := &models.Client{
		WorkspaceID: member.WorkspaceID,
		Name:        name,
		Email:       email,
		Phone:       phone,
		Company:     company,
		Notes:       notes,
	}
	if err := s.db.WithContext(ctx).Create(client).Error; err != nil {
		return nil, err
	}

	fireAndForget(ctx, "audit.client.create", func() error {
		return s.audit.Record(ctx, AuditEntry{
			WorkspaceID: member.WorkspaceID,
			ActorID:     member.UserID,
			EntityType:  "client",
			EntityID:    client.ID,
			Action:      models.AuditActionCreate,
			Payload:     models.JSON{"name": client.Name},
		})
	})

	return client, nil
}

func (s *ClientService) Get(ctx context.Context, workspaceID, clientID uint) (*models.Client, error) {
	var client models.Client
	err := s.db.WithContext(ctx).
		Where("id = ? AND workspace_id = ?", clientID, workspaceID).
		First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound.WithMessage("Client not found")
		}
		return nil, err
	}
	return &client, nil
}

func (s *ClientService) List(ctx context.Context, workspaceID uint) ([]models.Client, error) {
	var clients []models.Client
	err := s.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("id").
		Find(&clients).Error
	return clients, err
}

// Update applies a field update after the fine-grained permission check:
// name-only edits need client.update.name, anything broader needs
// client.update.all.
func (s *ClientService) Update(ctx context.Context, member *models.Member, clientID uint, update ClientUpdate) (*models.Client, error) {
	required := rbac.ActionClientUpdateAll
	if update.nameOnly() {
		required = rbac.ActionClientUpdateName
	}
	if !rbac.Can(member.Role, required) {
		return nil, apperrors.ErrForbidden.WithMessage("Role does not permit this client update")
	}

	client, err := s.Get(ctx, member.WorkspaceID, clientID)
	if err != nil {
		return nil, err
	}

	changed := models.JSON{}
	if update.Name != nil {
		client.Name = *update.Name
		changed["name"] = *update.Name
	}
	if update.Email != nil {
		client.Email = *update.Email
		changed["email"] = *update.Email
	}
	if update.Phone != nil {
		client.Phone = *update.Phone
		changed["phone"] = *update.Phone
	}
	if update.Company != nil {
		client.Company = *update.Company
		changed["company"] = *update.Company
	}
	if update.Notes != nil {
		client.Notes = *update.Notes
		changed["notes"] = *update.Notes
	}

	if err := s.db.WithContext(ctx).Save(client).Error; err != nil {
		return nil, err
	}

	fireAndForget(ctx, "audit.client.update", func() error {
		return s.audit.Record(ctx, AuditEntry{
			WorkspaceID: member.WorkspaceID,
			ActorID:     member.UserID,
			EntityType:  "client",
			EntityID:    client.ID,
			Action:      models.AuditActionUpdate,
			Payload:     changed,
		})
	})

	return client, nil
}

func (s *ClientService) Delete(ctx context.Context, member *models.Member, clientID uint) error {
	if !rbac.Can(member.Role, rbac.ActionClientDelete) {
		return apperrors.ErrForbidden.WithMessage("Role does not permit deleting clients")
	}

	client, err := s.Get(ctx, member.WorkspaceID, clientID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(client).Error; err != nil {
		return err
	}

	fireAndForget(ctx, "audit.client.delete", func() error {
		return s.audit.Record(ctx, AuditEntry{
			WorkspaceID: member.WorkspaceID,
			ActorID:     member.UserID,
			EntityType:  "client",
			EntityID:    client.ID,
			Action:      models.AuditActionDelete,
			Payload:     models.JSON{"name": client.Name},
		})
	})

	return nil
}
