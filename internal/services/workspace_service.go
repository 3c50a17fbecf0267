package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/teamflow/crm-api/internal/apperrors"
	"github.com/teamflow/crm-api/internal/database"
	"github.com/teamflow/crm-api/internal/models"
	"github.com/teamflow/crm-api/internal/rbac"
	"github.com/teamflow/crm-api/pkg/utils"
)

// WorkspaceService owns the tenant boundary: workspace resolution,
// membership resolution and the member-removal invariants.
type WorkspaceService struct {
	db         database.Database
	automation *AutomationService
}

func NewWorkspaceService(db database.Database, automation *AutomationService) *WorkspaceService {
	return &WorkspaceService{
		db:         db,
		automation: automation,
	}
}

// Create provisions a workspace with the creator as its first OWNER and
// seeds the default task templates.
func (s *WorkspaceService) Create(ctx context.Context, name, slug string, ownerID uint) (*models.Workspace, error) {
	if err := utils.ValidateSlug(slug); err != nil {
		return nil, apperrors.ErrValidation.WithMessage(err.Error())
	}
	name = utils.SanitizeInput(name)
	if name == "" {
		return nil, apperrors.ErrValidation.WithMessage("Workspace name is required")
	}

	workspace := &models.Workspace{Name: name, Slug: slug}

	err := s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(workspace).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.ErrConflict.WithMessage("Workspace slug is already taken")
			}
			return err
		}
		member := &models.Member{
			WorkspaceID: workspace.ID,
			UserID:      ownerID,
			Role:        rbac.RoleOwner,
		}
		return tx.Create(member).Error
	})
	if err != nil {
		return nil, err
	}

	fireAndForget(ctx, "workspace.seed_templates", func() error {
		return s.automation.SeedDefaultTemplates(ctx, workspace.ID)
	})

	return workspace, nil
}

func (s *WorkspaceService) GetBySlug(ctx context.Context, slug string) (*models.Workspace, error) {
	var workspace models.Workspace
	err := s.db.DB().WithContext(ctx).Where("slug = ?", slug).First(&workspace).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrWorkspaceNotFound
		}
		return nil, err
	}
	return &workspace, nil
}

// ResolveMember resolves the caller's membership in a workspace. Absent
// membership is Forbidden regardless of any platform-admin flag.
func (s *WorkspaceService) ResolveMember(ctx context.Context, workspaceID, userID uint) (*models.Member, error) {
	var member models.Member
	err := s.db.DB().WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrForbidden.WithMessage("Not a member of this workspace")
		}
		return nil, err
	}
	return &member, nil
}

// ListForUser returns the workspaces the user is a member of.
func (s *WorkspaceService) ListForUser(ctx context.Context, userID uint) ([]models.Workspace, error) {
	var workspaces []models.Workspace
	err := s.db.DB().WithContext(ctx).
		Joins("JOIN members ON members.workspace_id = workspaces.id").
		Where("members.user_id = ?", userID).
		Find(&workspaces).Error
	return workspaces, err
}

func (s *WorkspaceService) ListMembers(ctx context.Context, workspaceID uint) ([]models.Member, error) {
	var members []models.Member
	err := s.db.DB().WithContext(ctx).
		Preload("User").
		Where("workspace_id = ?", workspaceID).
		Order("id").
		Find(&members).Error
	return members, err
}

// RemoveMember deletes a membership. Self-removal is rejected, and the
// last OWNER can never be removed. The owner count runs inside the same
// transaction as the delete so concurrent removals cannot drop the last
// owner.
func (s *WorkspaceService) RemoveMember(ctx context.Context, workspaceID, actorUserID, memberID uint) error {
	return s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member models.Member
		err := tx.Where("id = ? AND workspace_id = ?", memberID, workspaceID).First(&member).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound.WithMessage("Member not found")
			}
			return err
		}

		if member.UserID == actorUserID {
			return apperrors.ErrCannotRemoveSelf
		}

		if member.Role == rbac.RoleOwner {
			owners, err := s.countOwners(tx, workspaceID)
			if err != nil {
				return err
			}
			if owners <= 1 {
				return apperrors.ErrCannotRemoveLastOwner
			}
		}

		return tx.Delete(&member).Error
	})
}

// UpdateMemberRole changes a member's role. Demoting the last OWNER is
// rejected under the same invariant as removal.
func (s *WorkspaceService) UpdateMemberRole(ctx context.Context, workspaceID, memberID uint, role rbac.Role) (*models.Member, error) {
	if !rbac.IsValidRole(role) {
		return nil, apperrors.ErrValidation.WithMessage("Unknown role")
	}

	var member models.Member
	err := s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND workspace_id = ?", memberID, workspaceID).First(&member).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound.WithMessage("Member not found")
			}
			return err
		}

		if member.Role == rbac.RoleOwner && role != rbac.RoleOwner {
			owners, err := s.countOwners(tx, workspaceID)
			if err != nil {
				return err
			}
			if owners <= 1 {
				return apperrors.ErrCannotRemoveLastOwner
			}
		}

		member.Role = role
		return tx.Save(&member).Error
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (s *WorkspaceService) countOwners(tx *gorm.DB, workspaceID uint) (int64, error) {
	var owners int64
	err := tx.Model(&models.Member{}).
		Where("workspace_id = ? AND role = ?", workspaceID, rbac.RoleOwner).
		Count(&owners).Error
	return owners, err
}
