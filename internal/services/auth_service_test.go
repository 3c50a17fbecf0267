package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamflow/crm-api/internal/apperrors"
	"github.com/teamflow/crm-api/internal/database"
)

func newAuthService(t *testing.T) (*AuthService, *SessionService) {
	t.Helper()
	db := newTestDB(t)
	sessions := NewSessionService(database.NewGormAdapter(db), nil)
	return NewAuthService(db, sessions), sessions
}

func TestRegisterNormalizesEmail(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "  Alice@Example.COM ", "Passw0rdOk", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "Passw0rdOk", user.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "not-an-email", "Passw0rdOk", "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// Too short, and missing character classes.
	_, err = auth.Register(ctx, "bob@example.com", "short", "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = auth.Register(ctx, "bob@example.com", "alllowercase1", "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "alice@example.com", "Passw0rdOk", "Alice")
	require.NoError(t, err)

	_, err = auth.Register(ctx, "ALICE@example.com", "Passw0rdOk", "Imposter")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestLoginIssuesSession(t *testing.T) {
	auth, sessions := newAuthService(t)
	ctx := context.Background()

	registered, err := auth.Register(ctx, "alice@example.com", "Passw0rdOk", "Alice")
	require.NoError(t, err)

	user, session, err := auth.Login(ctx, "Alice@Example.com", "Passw0rdOk")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	require.NotNil(t, session)

	_, resolvedUser, err := sessions.Resolve(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, resolvedUser.ID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "alice@example.com", "Passw0rdOk", "Alice")
	require.NoError(t, err)

	_, _, wrongPassword := auth.Login(ctx, "alice@example.com", "WrongPass1")
	_, _, unknownEmail := auth.Login(ctx, "nobody@example.com", "Passw0rdOk")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.ErrorIs(t, wrongPassword, apperrors.ErrUnauthorized)
	assert.ErrorIs(t, unknownEmail, apperrors.ErrUnauthorized)
}

func TestLogoutDestroysSession(t *testing.T) {
	auth, sessions := newAuthService(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "alice@example.com", "Passw0rdOk", "Alice")
	require.NoError(t, err)
	_, session, err := auth.Login(ctx, "alice@example.com", "Passw0rdOk")
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, session.Token))
	_, _, err = sessions.Resolve(ctx, session.Token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
