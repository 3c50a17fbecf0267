package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/teamflow/crm-api/internal/apperrors"
	"github.com/teamflow/crm-api/internal/database"
	"github.com/teamflow/crm-api/internal/models"
	"github.com/teamflow/crm-api/internal/rbac"
)

func newWorkspaceService(t *testing.T) (*WorkspaceService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	audit := NewAuditService(db)
	automation := NewAutomationService(db, audit)
	return NewWorkspaceService(database.NewGormAdapter(db), automation), db
}

func TestWorkspaceCreateSeedsOwnerAndTemplates(t *testing.T) {
	svc, db := newWorkspaceService(t)
	ctx := context.Background()
	user := createTestUser(t, db, "owner@example.com")

	workspace, err := svc.Create(ctx, "Acme Sales", "acme-sales", user.ID)
	require.NoError(t, err)

	member, err := svc.ResolveMember(ctx, workspace.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleOwner, member.Role)

	// The default automation templates come up with the workspace.
	assert.EqualValues(t, 4, countRows(t, db, &models.TaskTemplate{}, "workspace_id = ?", workspace.ID))
}

func TestWorkspaceCreateValidation(t *testing.T) {
	svc, db := newWorkspaceService(t)
	ctx := context.Background()
	user := createTestUser(t, db, "owner@example.com")

	_, err := svc.Create(ctx, "Acme", "Bad Slug!", user.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Create(ctx, "", "acme", user.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestWorkspaceSlugIsUnique(t *testing.T) {
	svc, db := newWorkspaceService(t)
	ctx := context.Background()
	user := createTestUser(t, db, "owner@example.com")

	_, err := svc.Create(ctx, "Acme", "acme", user.ID)
	require.NoError(t, err)

	_, err = svc.Create(ctx, "Other Acme", "acme", user.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestGetBySlug(t *testing.T) {
	svc, db := newWorkspaceService(t)
	ctx := context.Background()
	user := createTestUser(t, db, "owner@example.com")

	created, err := svc.Create(ctx, "Acme", "acme", user.ID)
	require.NoError(t, err)

	found, err := svc.GetBySlug(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.GetBySlug(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrWorkspaceNotFound)
}

func TestResolveMemberRejectsNonMembers(t *testing.T) {
	svc, db := newWorkspaceService(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")
	outsider := createTestUser(t, db, "outsider@example.com")

	workspace, err := svc.Create(ctx, "Acme", "acme", owner.ID)
	require.NoError(t, err)

	_, err = svc.ResolveMember(ctx, workspace.ID, outsider.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestListForUser(t *testing.T) {
	svc, db := newWorkspaceService(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")

	first, err := svc.Create(ctx, "Acme", "acme", owner.ID)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Globex", "globex", other.ID)
	require.NoError(t, err)

	workspaces, err := svc.ListForUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, workspaces, 1)
	assert.Equal(t, first.ID, workspaces[0].ID)
}

func TestRemoveMemberInvariants(t *testing.T) {
	svc, db := newWorkspaceService(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")

	workspace, err := svc.Create(ctx, "Acme", "acme", owner.ID)
	require.NoError(t, err)
	ownerMember, err := svc.ResolveMember(ctx, workspace.ID, owner.ID)
	require.NoError(t, err)

	agent := memberWithRole(t, db, workspace, "agent@example.com", rbac.RoleAgent)

	// Unknown member id.
	err = svc.RemoveMember(ctx, workspace.ID, owner.ID, 9999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Self-removal is rejected even for an owner.
	err = svc.RemoveMember(ctx, workspace.ID, owner.ID, ownerMember.ID)
	assert.ErrorIs(t, err, apperrors.ErrCannotRemoveSelf)

	// The last owner cannot be removed by anyone.
	err = svc.RemoveMember(ctx, workspace.ID, agent.UserID, ownerMember.ID)
	assert.ErrorIs(t, err, apperrors.ErrCannotRemoveLastOwner)

	// Plain removal works.
	require.NoError(t, svc.RemoveMember(ctx, workspace.ID, owner.ID, agent.ID))
	assert.EqualValues(t, 1, countRows(t, db, &models.Member{}, "workspace_id = ?", workspace.ID))
}

func TestRemoveOwnerWithCoOwner(t *testing.T) {
	svc, db := newWorkspaceService(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")

	workspace, err := svc.Create(ctx, "Acme", "acme", owner.ID)
	require.NoError(t, err)
	coOwner := memberWithRole(t, db, workspace, "co-owner@example.com", rbac.RoleOwner)

	require.NoError(t, svc.RemoveMember(ctx, workspace.ID, owner.ID, coOwner.ID))
}

func TestUpdateMemberRole(t *testing.T) {
	svc, db := newWorkspaceService(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")

	workspace, err := svc.Create(ctx, "Acme", "acme", owner.ID)
	require.NoError(t, err)
	ownerMember, err := svc.ResolveMember(ctx, workspace.ID, owner.ID)
	require.NoError(t, err)

	agent := memberWithRole(t, db, workspace, "agent@example.com", rbac.RoleAgent)

	_, err = svc.UpdateMemberRole(ctx, workspace.ID, agent.ID, rbac.Role("SUPERUSER"))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// Demoting the only owner is rejected.
	_, err = svc.UpdateMemberRole(ctx, workspace.ID, ownerMember.ID, rbac.RoleAdmin)
	assert.ErrorIs(t, err, apperrors.ErrCannotRemoveLastOwner)

	// Promote the agent to owner, then the original owner may step down.
	promoted, err := svc.UpdateMemberRole(ctx, workspace.ID, agent.ID, rbac.RoleOwner)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleOwner, promoted.Role)

	demoted, err := svc.UpdateMemberRole(ctx, workspace.ID, ownerMember.ID, rbac.RoleViewer)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleViewer, demoted.Role)
}

func TestListMembersIncludesUsers(t *testing.T) {
	svc, db := newWorkspaceService(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")

	workspace, err := svc.Create(ctx, "Acme", "acme", owner.ID)
	require.NoError(t, err)
	memberWithRole(t, db, workspace, "agent@example.com", rbac.RoleAgent)

	members, err := svc.ListMembers(ctx, workspace.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "owner@example.com", members[0].User.Email)
	assert.Equal(t, "agent@example.com", members[1].User.Email)
}
