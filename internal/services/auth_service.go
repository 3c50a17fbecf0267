package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/teamflow/crm-api/internal/apperrors"
	"github.com/teamflow/crm-api/internal/models"
	"github.com/teamflow/crm-api/pkg/utils"
)

// AuthService handles registration, credential verification and session
// issuance. Password hashing is bcrypt only; the hash is opaque to the
// rest of the system.
type AuthService struct {
	db       *gorm.DB
	sessions *SessionService
}

func NewAuthService(db *gorm.DB, sessions *SessionService) *AuthService {
	return &AuthService{
		db:       db,
		sessions: sessions,
	}
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !utils.ValidateEmail(email) {
		return nil, apperrors.ErrValidation.WithMessage("Invalid email address")
	}
	if err := utils.ValidatePassword(password); err != nil {
		return nil, apperrors.ErrValidation.WithMessage(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         utils.SanitizeInput(name),
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrConflict.WithMessage("Email is already registered")
		}
		return nil, err
	}

	return user, nil
}

// Login verifies credentials and opens a session. The same error is
// returned for an unknown email and a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *models.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrUnauthorized.WithMessage("Invalid email or password")
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperrors.ErrUnauthorized.WithMessage("Invalid email or password")
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return &user, session, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}
