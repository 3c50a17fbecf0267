package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamflow/crm-api/internal/apperrors"
	"github.com/teamflow/crm-api/internal/database"
	"github.com/teamflow/crm-api/internal/models"
)

func TestSessionCreateAndResolve(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice@example.com")
	sessions := NewSessionService(database.NewGormAdapter(db), nil)
	ctx := context.Background()

	session, err := sessions.Create(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, session.Token, 64)
	assert.WithinDuration(t, time.Now().Add(models.SessionTTL), session.ExpiresAt, time.Minute)

	resolved, resolvedUser, err := sessions.Resolve(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, resolved.ID)
	assert.Equal(t, user.ID, resolvedUser.ID)
	assert.Equal(t, "alice@example.com", resolvedUser.Email)
}

func TestSessionTokensAreUnique(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice@example.com")
	sessions := NewSessionService(database.NewGormAdapter(db), nil)
	ctx := context.Background()

	first, err := sessions.Create(ctx, user.ID)
	require.NoError(t, err)
	second, err := sessions.Create(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)
}

func TestResolveRejectsEmptyAndUnknownTokens(t *testing.T) {
	db := newTestDB(t)
	sessions := NewSessionService(database.NewGormAdapter(db), nil)
	ctx := context.Background()

	_, _, err := sessions.Resolve(ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, _, err = sessions.Resolve(ctx, "deadbeef")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestExpiredSessionIsPurgedOnFirstUse(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice@example.com")
	sessions := NewSessionService(database.NewGormAdapter(db), nil)
	ctx := context.Background()

	session, err := sessions.Create(ctx, user.ID)
	require.NoError(t, err)
	require.NoError(t, db.Model(session).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	// First use reports the expiry and deletes the row.
	_, _, err = sessions.Resolve(ctx, session.Token)
	assert.ErrorIs(t, err, apperrors.ErrSessionExpired)
	assert.EqualValues(t, 0, countRows(t, db, &models.Session{}, "token = ?", session.Token))

	// Reuse of the same token now looks like an unknown session.
	_, _, err = sessions.Resolve(ctx, session.Token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.NotErrorIs(t, err, apperrors.ErrSessionExpired)
}

func TestDestroySession(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice@example.com")
	sessions := NewSessionService(database.NewGormAdapter(db), nil)
	ctx := context.Background()

	session, err := sessions.Create(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, sessions.Destroy(ctx, session.Token))
	_, _, err = sessions.Resolve(ctx, session.Token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	// Unknown tokens are a no-op.
	assert.NoError(t, sessions.Destroy(ctx, "deadbeef"))
	assert.NoError(t, sessions.Destroy(ctx, ""))
}

func TestSessionCacheReadThrough(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice@example.com")
	cache := newFakeCache()
	sessions := NewSessionService(database.NewGormAdapter(db), cache)
	ctx := context.Background()

	session, err := sessions.Create(ctx, user.ID)
	require.NoError(t, err)

	// Create primes the cache, so the first resolve is already a hit.
	_, _, err = sessions.Resolve(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)

	// Even with the database row gone the cached copy still resolves.
	require.NoError(t, db.Where("token = ?", session.Token).Delete(&models.Session{}).Error)
	_, resolvedUser, err := sessions.Resolve(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolvedUser.ID)

	// Destroy drops the cache entry too.
	require.NoError(t, sessions.Destroy(ctx, session.Token))
	_, _, err = sessions.Resolve(ctx, session.Token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
