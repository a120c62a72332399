package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"glycofy/internal/config"
	"glycofy/internal/database"
	"glycofy/internal/planner"
)

func TestNewPlanCache(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "glycofy.db"))
	require.NoError(t, err)
	defer db.Close()

	t.Run("MemoryByDefault", func(t *testing.T) {
		cache, rdb := newPlanCache(ctx, &config.Config{}, db, zap.NewNop())
		assert.IsType(t, &planner.MemoryCache{}, cache)
		assert.Nil(t, rdb)
	})

	t.Run("SQLiteOnRequest", func(t *testing.T) {
		cache, rdb := newPlanCache(ctx, &config.Config{PlanCache: config.PlanCacheSQLite}, db, zap.NewNop())
		assert.IsType(t, &planner.PlanRepository{}, cache)
		assert.Nil(t, rdb)
	})

	t.Run("UnreachableRedisFallsBackToMemory", func(t *testing.T) {
		cfg := &config.Config{PlanCache: config.PlanCacheRedis, RedisAddr: "127.0.0.1:1"}
		cache, rdb := newPlanCache(ctx, cfg, db, zap.NewNop())
		assert.IsType(t, &planner.MemoryCache{}, cache)
		assert.Nil(t, rdb)
	})
}
