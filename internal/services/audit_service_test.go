package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamflow/crm-api/internal/models"
)

func TestAuditRecordAndList(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuditService(db)
	ctx := context.Background()

	err := svc.Record(ctx, AuditEntry{
		WorkspaceID: 1,
		ActorID:     7,
		EntityType:  "deal",
		EntityID:    42,
		Action:      models.AuditActionCreate,
		Payload:     models.JSON{"title": "Big deal"},
	})
	require.NoError(t, err)

	events, total, err := svc.List(ctx, 1, 1, 50)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, events, 1)
	assert.Equal(t, "42", events[0].EntityID)
	assert.Equal(t, "Big deal", events[0].Payload["title"])
	assert.NotEmpty(t, events[0].ID)
}

func TestAuditListPaginationAndScope(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuditService(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Record(ctx, AuditEntry{
			WorkspaceID: 1,
			ActorID:     1,
			EntityType:  "client",
			EntityID:    uint(i + 1),
			Action:      models.AuditActionUpdate,
			Payload:     models.JSON{"n": fmt.Sprintf("%d", i)},
		}))
	}
	require.NoError(t, svc.Record(ctx, AuditEntry{
		WorkspaceID: 2,
		ActorID:     1,
		EntityType:  "client",
		EntityID:    99,
		Action:      models.AuditActionDelete,
	}))

	events, total, err := svc.List(ctx, 1, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, events, 2)

	// Out-of-range pages and bogus limits fall back to sane values.
	events, total, err = svc.List(ctx, 1, 0, -1)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, events, 5)

	// The other workspace's trail is invisible here.
	events, total, err = svc.List(ctx, 2, 1, 50)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, events, 1)
	assert.Equal(t, models.AuditActionDelete, events[0].Action)
}
