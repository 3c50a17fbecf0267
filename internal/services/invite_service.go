package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teamflow/crm-api/internal/apperrors"
	"github.com/teamflow/crm-api/internal/models"
	"github.com/teamflow/crm-api/internal/rbac"
	"github.com/teamflow/crm-api/pkg/utils"
)

type InviteService struct {
	db *gorm.DB
}

func NewInviteService(db *gorm.DB) *InviteService {
	return &InviteService{db: db}
}

// Create issues an invite for an email address. Duplicate pending invites
// and invites for existing members are conflicts.
func (s *InviteService) Create(ctx context.Context, workspaceID, createdByID uint, email string, role rbac.Role) (*models.Invite, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !utils.ValidateEmail(email) {
		return nil, apperrors.ErrValidation.WithMessage("Invalid email address")
	}
	if !rbac.IsValidRole(role) {
		return nil, apperrors.ErrValidation.WithMessage("Unknown role")
	}

	var memberCount int64
	err := s.db.WithContext(ctx).
		Model(&models.Member{}).
		Joins("JOIN users ON users.id = members.user_id").
		Where("members.workspace_id = ? AND users.email = ?", workspaceID, email).
		Count(&memberCount).Error
	if err != nil {
		return nil, err
	}
	if memberCount > 0 {
		return nil, apperrors.ErrConflict.WithMessage("User is already a member of this workspace")
	}

	var pending int64
	err = s.db.WithContext(ctx).
		Model(&models.Invite{}).
		Where("workspace_id = ? AND email = ?", workspaceID, email).
		Count(&pending).Error
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, apperrors.ErrConflict.WithMessage("An invite for this email already exists")
	}

	invite := &models.Invite{
		WorkspaceID: workspaceID,
		Email:       email,
		Role:        role,
		Token:       uuid.NewString(),
		CreatedByID: createdByID,
	}
	if err := s.db.WithContext(ctx).Create(invite).Error; err != nil {
		return nil, err
	}
	return invite, nil
}

func (s *InviteService) List(ctx context.Context, workspaceID uint) ([]models.Invite, error) {
	var invites []models.Invite
	err := s.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("id").
		Find(&invites).Error
	return invites, err
}

func (s *InviteService) Delete(ctx context.Context, workspaceID, inviteID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND workspace_id = ?", inviteID, workspaceID).
		Delete(&models.Invite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound.WithMessage("Invite not found")
	}
	return nil
}

// Accept redeems an invite token for the user, creating the membership
// and consuming the invite.
func (s *InviteService) Accept(ctx context.Context, token string, user *models.User) (*models.Member, error) {
	var member *models.Member
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invite models.Invite
		err := tx.Where("token = ?", token).First(&invite).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound.WithMessage("Invite not found")
			}
			return err
		}

		if !strings.EqualFold(invite.Email, user.Email) {
			return apperrors.ErrForbidden.WithMessage("Invite was issued for a different email")
		}

		member = &models.Member{
			WorkspaceID: invite.WorkspaceID,
			UserID:      user.ID,
			Role:        invite.Role,
		}
		if err := tx.Create(member).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.ErrConflict.WithMessage("User is already a member of this workspace")
			}
			return err
		}

		return tx.Delete(&invite).Error
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}
