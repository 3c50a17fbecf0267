package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/teamflow/crm-api/internal/apperrors"
	"github.com/teamflow/crm-api/internal/models"
	"github.com/teamflow/crm-api/internal/rbac"
)

func newChecklistFixture(t *testing.T) (*ChecklistService, *models.Member, *models.Deal, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	audit := NewAuditService(db)
	svc := NewChecklistService(db, audit, nil)
	workspace := createTestWorkspace(t, db, "acme")
	owner := memberWithRole(t, db, workspace, "owner@example.com", rbac.RoleOwner)

	deal := &models.Deal{
		WorkspaceID: workspace.ID,
		Title:       "Checklist deal",
		Stage:       models.StageLead,
	}
	require.NoError(t, db.Create(deal).Error)
	return svc, owner, deal, db
}

func TestRequiredChecklistTitlesCoverEveryStage(t *testing.T) {
	for _, stage := range models.PipelineStages {
		assert.Len(t, RequiredChecklistTitles(stage), 3, "stage %s", stage)
	}
	assert.Empty(t, RequiredChecklistTitles("warp_speed"))
}

func TestMaterializeIsIdempotent(t *testing.T) {
	svc, _, deal, db := newChecklistFixture(t)
	ctx := context.Background()

	items, err := svc.Materialize(ctx, deal)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Первичный контакт установлен", items[0].Title)
	assert.Equal(t, "Потребность выявлена", items[1].Title)
	assert.Equal(t, "Бюджет определен", items[2].Title)

	again, err := svc.Materialize(ctx, deal)
	require.NoError(t, err)
	assert.Len(t, again, 3)
	assert.EqualValues(t, 3, countRows(t, db, &models.DealChecklistItem{}, "deal_id = ?", deal.ID))
}

func TestMaterializePreservesCompletionState(t *testing.T) {
	svc, owner, deal, _ := newChecklistFixture(t)
	ctx := context.Background()

	_, err := svc.Materialize(ctx, deal)
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, owner, deal, "Бюджет определен", true)
	require.NoError(t, err)

	items, err := svc.Materialize(ctx, deal)
	require.NoError(t, err)
	var completed int
	for _, item := range items {
		if item.Completed {
			completed++
			assert.Equal(t, "Бюджет определен", item.Title)
		}
	}
	assert.Equal(t, 1, completed)
}

func TestChecklistsArePerStage(t *testing.T) {
	svc, _, deal, db := newChecklistFixture(t)
	ctx := context.Background()

	_, err := svc.Materialize(ctx, deal)
	require.NoError(t, err)

	deal.Stage = models.StageProposal
	require.NoError(t, db.Save(deal).Error)

	items, err := svc.Materialize(ctx, deal)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "КП подготовлено", items[0].Title)

	// The lead-stage rows survive alongside the proposal rows.
	assert.EqualValues(t, 6, countRows(t, db, &models.DealChecklistItem{}, "deal_id = ?", deal.ID))
}

func TestToggleRoundTrip(t *testing.T) {
	svc, owner, deal, _ := newChecklistFixture(t)
	ctx := context.Background()

	result, err := svc.Toggle(ctx, owner, deal, "Первичный контакт установлен", true)
	require.NoError(t, err)
	assert.True(t, result.Item.Completed)
	require.NotNil(t, result.Item.CompletedByID)
	assert.Equal(t, owner.UserID, *result.Item.CompletedByID)
	assert.NotNil(t, result.Item.CompletedAt)
	assert.Equal(t, 1, result.CompletedCount)
	assert.Equal(t, 3, result.TotalCount)
	assert.False(t, result.ChecklistComplete)

	result, err = svc.Toggle(ctx, owner, deal, "Первичный контакт установлен", false)
	require.NoError(t, err)
	assert.False(t, result.Item.Completed)
	assert.Nil(t, result.Item.CompletedByID)
	assert.Nil(t, result.Item.CompletedAt)
	assert.Equal(t, 0, result.CompletedCount)
}

func TestCompletingAllItemsMarksChecklistComplete(t *testing.T) {
	svc, owner, deal, _ := newChecklistFixture(t)
	ctx := context.Background()

	for i, title := range RequiredChecklistTitles(models.StageLead) {
		result, err := svc.Toggle(ctx, owner, deal, title, true)
		require.NoError(t, err)
		assert.Equal(t, i+1, result.CompletedCount)
		assert.Equal(t, i == 2, result.ChecklistComplete)
	}
}

func TestToggleValidation(t *testing.T) {
	svc, owner, deal, db := newChecklistFixture(t)
	ctx := context.Background()

	_, err := svc.Toggle(ctx, owner, deal, "", true)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	workspace := &models.Workspace{ID: deal.WorkspaceID}
	viewer := memberWithRole(t, db, workspace, "viewer@example.com", rbac.RoleViewer)
	_, err = svc.Toggle(ctx, viewer, deal, "Первичный контакт установлен", true)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestToggleWritesAuditTrail(t *testing.T) {
	svc, owner, deal, db := newChecklistFixture(t)
	ctx := context.Background()

	_, err := svc.Toggle(ctx, owner, deal, "Бюджет определен", true)
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, owner, deal, "Бюджет определен", false)
	require.NoError(t, err)

	assert.EqualValues(t, 1, countRows(t, db, &models.AuditEvent{},
		"workspace_id = ? AND action = ?", deal.WorkspaceID, models.AuditActionCheck))
	assert.EqualValues(t, 1, countRows(t, db, &models.AuditEvent{},
		"workspace_id = ? AND action = ?", deal.WorkspaceID, models.AuditActionUncheck))
}

func TestCompletionAutoClosesMatchingTasks(t *testing.T) {
	svc, owner, deal, db := newChecklistFixture(t)
	ctx := context.Background()

	deal.Stage = models.StageNegotiation
	require.NoError(t, db.Save(deal).Error)

	dealID := deal.ID
	matching := &models.Task{
		WorkspaceID: deal.WorkspaceID,
		Title:       "Договор подготовлен для клиента",
		Status:      models.TaskStatusTodo,
		DealID:      &dealID,
	}
	byDescription := &models.Task{
		WorkspaceID: deal.WorkspaceID,
		Title:       "Проверка документов",
		Description: "Убедиться, что договор подготовлен юристами",
		Status:      models.TaskStatusInProgress,
		DealID:      &dealID,
	}
	unrelated := &models.Task{
		WorkspaceID: deal.WorkspaceID,
		Title:       "Позвонить клиенту",
		Status:      models.TaskStatusTodo,
		DealID:      &dealID,
	}
	alreadyDone := &models.Task{
		WorkspaceID: deal.WorkspaceID,
		Title:       "Договор подготовлен",
		Status:      models.TaskStatusDone,
		DealID:      &dealID,
	}
	for _, task := range []*models.Task{matching, byDescription, unrelated, alreadyDone} {
		require.NoError(t, db.Create(task).Error)
	}

	_, err := svc.Toggle(ctx, owner, deal, "Договор подготовлен", true)
	require.NoError(t, err)

	reload := func(task *models.Task) models.TaskStatus {
		var fresh models.Task
		require.NoError(t, db.First(&fresh, task.ID).Error)
		return fresh.Status
	}
	assert.Equal(t, models.TaskStatusDone, reload(matching))
	assert.Equal(t, models.TaskStatusDone, reload(byDescription))
	assert.Equal(t, models.TaskStatusTodo, reload(unrelated))
	assert.Equal(t, models.TaskStatusDone, reload(alreadyDone))

	// The closures leave an audit trail of their own.
	assert.EqualValues(t, 2, countRows(t, db, &models.AuditEvent{},
		"workspace_id = ? AND entity_type = ? AND action = ?",
		deal.WorkspaceID, "task", models.AuditActionUpdate))
}

func TestUncheckingDoesNotTouchTasks(t *testing.T) {
	svc, owner, deal, db := newChecklistFixture(t)
	ctx := context.Background()

	dealID := deal.ID
	task := &models.Task{
		WorkspaceID: deal.WorkspaceID,
		Title:       "Первичный контакт установлен по телефону",
		Status:      models.TaskStatusTodo,
		DealID:      &dealID,
	}
	require.NoError(t, db.Create(task).Error)

	_, err := svc.Toggle(ctx, owner, deal, "Первичный контакт установлен", false)
	require.NoError(t, err)

	var fresh models.Task
	require.NoError(t, db.First(&fresh, task.ID).Error)
	assert.Equal(t, models.TaskStatusTodo, fresh.Status)
}
