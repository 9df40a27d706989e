package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turinglabs/kbchat/chatbot/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func TestContextCacheGorm_InsertAndLatestActive(t *testing.T) {
	ctx := context.Background()
	repo := NewContextCacheGormRepository(newTestDB(t))
	require.NoError(t, repo.Init(ctx))

	_, err := repo.LatestActive(ctx, "prompt-1")
	assert.Error(t, err)

	now := time.Now().UTC()
	require.NoError(t, repo.Insert(ctx, domain.ContextCacheRecord{
		PromptID:    "prompt-1",
		CacheHandle: "caches/old",
		IsActive:    true,
		ExpireTime:  now.Add(time.Hour),
		CreatedAt:   now.Add(-time.Minute),
	}))
	require.NoError(t, repo.Insert(ctx, domain.ContextCacheRecord{
		PromptID:    "prompt-1",
		CacheHandle: "caches/new",
		IsActive:    true,
		ExpireTime:  now.Add(time.Hour),
		CreatedAt:   now,
	}))

	record, err := repo.LatestActive(ctx, "prompt-1")
	require.NoError(t, err)
	assert.Equal(t, "caches/new", record.CacheHandle)
	assert.NotEmpty(t, record.ID)
}

func TestContextCacheGorm_DeactivateByHandle(t *testing.T) {
	ctx := context.Background()
	repo := NewContextCacheGormRepository(newTestDB(t))
	require.NoError(t, repo.Init(ctx))

	now := time.Now().UTC()
	require.NoError(t, repo.Insert(ctx, domain.ContextCacheRecord{
		PromptID:    "prompt-1",
		CacheHandle: "caches/abc",
		IsActive:    true,
		ExpireTime:  now.Add(time.Hour),
		CreatedAt:   now,
	}))

	require.NoError(t, repo.DeactivateByHandle(ctx, "caches/abc"))
	_, err := repo.LatestActive(ctx, "prompt-1")
	assert.Error(t, err)

	// Deactivating an unknown handle is a no-op.
	assert.NoError(t, repo.DeactivateByHandle(ctx, "caches/unknown"))
}

func TestContextCacheGorm_DeactivateAll(t *testing.T) {
	ctx := context.Background()
	repo := NewContextCacheGormRepository(newTestDB(t))
	require.NoError(t, repo.Init(ctx))

	now := time.Now().UTC()
	for _, promptID := range []string{"prompt-1", "prompt-2"} {
		require.NoError(t, repo.Insert(ctx, domain.ContextCacheRecord{
			PromptID:    promptID,
			CacheHandle: "caches/" + promptID,
			IsActive:    true,
			ExpireTime:  now.Add(time.Hour),
			CreatedAt:   now,
		}))
	}

	require.NoError(t, repo.DeactivateAll(ctx))

	for _, promptID := range []string{"prompt-1", "prompt-2"} {
		_, err := repo.LatestActive(ctx, promptID)
		assert.Error(t, err, "prompt %s should have no active record", promptID)
	}
}
