package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamflow/crm-api/internal/apperrors"
	"github.com/teamflow/crm-api/internal/models"
	"github.com/teamflow/crm-api/internal/rbac"
)

func TestInviteCreateValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewInviteService(db)
	ctx := context.Background()
	workspace := createTestWorkspace(t, db, "acme")
	owner := memberWithRole(t, db, workspace, "owner@example.com", rbac.RoleOwner)

	_, err := svc.Create(ctx, workspace.ID, owner.UserID, "not-an-email", rbac.RoleAgent)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Create(ctx, workspace.ID, owner.UserID, "new@example.com", rbac.Role("GODMODE"))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestInviteConflictsWithExistingMember(t *testing.T) {
	db := newTestDB(t)
	svc := NewInviteService(db)
	ctx := context.Background()
	workspace := createTestWorkspace(t, db, "acme")
	owner := memberWithRole(t, db, workspace, "owner@example.com", rbac.RoleOwner)
	memberWithRole(t, db, workspace, "agent@example.com", rbac.RoleAgent)

	_, err := svc.Create(ctx, workspace.ID, owner.UserID, "Agent@Example.com", rbac.RoleViewer)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestInviteConflictsWithPendingInvite(t *testing.T) {
	db := newTestDB(t)
	svc := NewInviteService(db)
	ctx := context.Background()
	workspace := createTestWorkspace(t, db, "acme")
	owner := memberWithRole(t, db, workspace, "owner@example.com", rbac.RoleOwner)

	_, err := svc.Create(ctx, workspace.ID, owner.UserID, "new@example.com", rbac.RoleAgent)
	require.NoError(t, err)

	_, err = svc.Create(ctx, workspace.ID, owner.UserID, "new@example.com", rbac.RoleViewer)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestInviteAcceptFlow(t *testing.T) {
	db := newTestDB(t)
	svc := NewInviteService(db)
	ctx := context.Background()
	workspace := createTestWorkspace(t, db, "acme")
	owner := memberWithRole(t, db, workspace, "owner@example.com", rbac.RoleOwner)

	invite, err := svc.Create(ctx, workspace.ID, owner.UserID, "new@example.com", rbac.RoleManager)
	require.NoError(t, err)

	// A user with a different email cannot redeem the token.
	wrongUser := createTestUser(t, db, "other@example.com")
	_, err = svc.Accept(ctx, invite.Token, wrongUser)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	invitee := createTestUser(t, db, "new@example.com")
	member, err := svc.Accept(ctx, invite.Token, invitee)
	require.NoError(t, err)
	assert.Equal(t, workspace.ID, member.WorkspaceID)
	assert.Equal(t, rbac.RoleManager, member.Role)

	// The invite is consumed on acceptance.
	assert.EqualValues(t, 0, countRows(t, db, &models.Invite{}, "workspace_id = ?", workspace.ID))
	_, err = svc.Accept(ctx, invite.Token, invitee)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestInviteAcceptExistingMemberConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := NewInviteService(db)
	ctx := context.Background()
	workspace := createTestWorkspace(t, db, "acme")
	owner := memberWithRole(t, db, workspace, "owner@example.com", rbac.RoleOwner)

	invite, err := svc.Create(ctx, workspace.ID, owner.UserID, "new@example.com", rbac.RoleAgent)
	require.NoError(t, err)

	// The user joins through some other path before redeeming the token.
	invitee := createTestUser(t, db, "new@example.com")
	createTestMember(t, db, workspace, invitee, rbac.RoleViewer)

	_, err = svc.Accept(ctx, invite.Token, invitee)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestInviteDelete(t *testing.T) {
	db := newTestDB(t)
	svc := NewInviteService(db)
	ctx := context.Background()
	workspace := createTestWorkspace(t, db, "acme")
	owner := memberWithRole(t, db, workspace, "owner@example.com", rbac.RoleOwner)

	invite, err := svc.Create(ctx, workspace.ID, owner.UserID, "new@example.com", rbac.RoleAgent)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, workspace.ID, invite.ID))
	assert.ErrorIs(t, svc.Delete(ctx, workspace.ID, invite.ID), apperrors.ErrNotFound)

	// Deletion is workspace-scoped.
	other := createTestWorkspace(t, db, "globex")
	second, err := svc.Create(ctx, workspace.ID, owner.UserID, "again@example.com", rbac.RoleAgent)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Delete(ctx, other.ID, second.ID), apperrors.ErrNotFound)
}
