package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/teamflow/crm-api/internal/apperrors"
	"github.com/teamflow/crm-api/internal/database"
	"github.com/teamflow/crm-api/internal/models"
)

const sessionCachePrefix = "session:"

// SessionService maps opaque tokens to user identities. Sessions live in
// the database; redis, when available, fronts it as a read-through cache.
type SessionService struct {
	db    database.Database
	cache database.RedisClient // nil when redis is not configured
}

func NewSessionService(db database.Database, cache database.RedisClient) *SessionService {
	return &SessionService{
		db:    db,
		cache: cache,
	}
}

// generateToken returns 32 bytes of cryptographically strong randomness,
// hex encoded. Collisions are astronomically unlikely, so there is no
// uniqueness retry.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Create opens a session for the user with the fixed 30-day lifetime.
func (s *SessionService) Create(ctx context.Context, userID uint) (*models.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(models.SessionTTL),
	}

	if err := s.db.DB().WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.cachePut(ctx, session)
	return session, nil
}

// Resolve maps a token to its session and user. Expired sessions are
// purged as a side effect of the rejection, so a second use of the same
// token fails as an unknown session.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.Session, *models.User, error) {
	if token == "" {
		return nil, nil, apperrors.ErrUnauthorized
	}

	session, err := s.lookup(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	if session.IsExpired() {
		s.purge(ctx, session)
		return nil, nil, apperrors.ErrSessionExpired
	}

	var user models.User
	if err := s.db.DB().WithContext(ctx).First(&user, session.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrUnauthorized.WithMessage("Invalid session")
		}
		return nil, nil, err
	}

	return session, &user, nil
}

// Destroy deletes the session for the token. Unknown tokens are a no-op.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if s.cache != nil {
		fireAndForget(ctx, "session.cache.delete", func() error {
			return s.cache.Delete(ctx, sessionCachePrefix+token)
		})
	}
	return s.db.DB().WithContext(ctx).Where("token = ?", token).Delete(&models.Session{}).Error
}

func (s *SessionService) lookup(ctx context.Context, token string) (*models.Session, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, sessionCachePrefix+token); err == nil {
			if session, err := models.SessionFromJSON([]byte(raw)); err == nil {
				session.Token = token
				return session, nil
			}
		}
	}

	var session models.Session
	err := s.db.DB().WithContext(ctx).Where("token = ?", token).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnauthorized.WithMessage("Invalid session")
		}
		return nil, err
	}

	s.cachePut(ctx, &session)
	return &session, nil
}

func (s *SessionService) cachePut(ctx context.Context, session *models.Session) {
	if s.cache == nil {
		return
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return
	}
	fireAndForget(ctx, "session.cache.put", func() error {
		data, err := session.ToJSON()
		if err != nil {
			return err
		}
		return s.cache.Set(ctx, sessionCachePrefix+session.Token, string(data), ttl)
	})
}

func (s *SessionService) purge(ctx context.Context, session *models.Session) {
	fireAndForget(ctx, "session.purge", func() error {
		return s.db.DB().WithContext(ctx).Where("token = ?", session.Token).Delete(&models.Session{}).Error
	})
	if s.cache != nil {
		fireAndForget(ctx, "session.cache.delete", func() error {
			return s.cache.Delete(ctx, sessionCachePrefix+session.Token)
		})
	}
}
