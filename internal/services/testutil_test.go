package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/teamflow/crm-api/internal/database"
	"github.com/teamflow/crm-api/internal/models"
	"github.com/teamflow/crm-api/internal/rbac"
)

// newTestDB opens an isolated in-memory sqlite database with the full
// schema. Connections are capped at one so every query sees the same
// in-memory store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "$2a$10$test-hash-not-verified",
		Name:         "Test User",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestWorkspace(t *testing.T, db *gorm.DB, slug string) *models.Workspace {
	t.Helper()
	workspace := &models.Workspace{Name: "Test Workspace", Slug: slug}
	require.NoError(t, db.Create(workspace).Error)
	return workspace
}

func createTestMember(t *testing.T, db *gorm.DB, workspace *models.Workspace, user *models.User, role rbac.Role) *models.Member {
	t.Helper()
	member := &models.Member{
		WorkspaceID: workspace.ID,
		UserID:      user.ID,
		Role:        role,
	}
	require.NoError(t, db.Create(member).Error)
	return member
}

// memberWithRole provisions a user plus membership in one call.
func memberWithRole(t *testing.T, db *gorm.DB, workspace *models.Workspace, email string, role rbac.Role) *models.Member {
	t.Helper()
	user := createTestUser(t, db, email)
	return createTestMember(t, db, workspace, user, role)
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	tx := db.Model(model)
	if query != "" {
		tx = tx.Where(query, args...)
	}
	require.NoError(t, tx.Count(&n).Error)
	return n
}

// fakeCache is an in-memory stand-in for the redis session cache.
type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
	gets int
	hits int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	value, ok := c.data[key]
	if !ok {
		return "", errCacheMiss
	}
	c.hits++
	return value, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value.(string)
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.data, key)
	}
	return nil
}

func (c *fakeCache) Exists(ctx context.Context, keys ...string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, key := range keys {
		if _, ok := c.data[key]; ok {
			n++
		}
	}
	return n, nil
}

func (c *fakeCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	return time.Hour, nil
}

func (c *fakeCache) Ping(ctx context.Context) error { return nil }
func (c *fakeCache) Close() error                   { return nil }

var errCacheMiss = cacheMissError{}

type cacheMissError struct{}

func (cacheMissError) Error() string { return "cache miss" }

var _ database.RedisClient = (*fakeCache)(nil)
