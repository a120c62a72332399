package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glycofy/internal/database"
)

func newTestStore(t *testing.T) (*Store, *database.DB) {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db.SQL, nil), db
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	s, _ := newTestStore(t)
	s.now = func() time.Time { return now }

	records := []RequestMetric{
		{Method: "GET", Path: "/v1/plan/2024-03-10", Status: 200, LatencyMS: 10, Timestamp: now.Add(-time.Hour)},
		{Method: "GET", Path: "/activities", Status: 500, LatencyMS: 30, Timestamp: now.Add(-2 * time.Hour)},
		{Method: "GET", Path: "/users/me", Status: 200, LatencyMS: 20, Timestamp: now.AddDate(0, 0, -1)},
		{Method: "GET", Path: "/users/me", Status: 200, LatencyMS: 5, Timestamp: now.AddDate(0, 0, -40)},
	}
	for _, r := range records {
		require.NoError(t, s.Record(ctx, r))
	}

	t.Run("DailyUsage", func(t *testing.T) {
		usage, err := s.GetDailyUsage(ctx, 7)
		require.NoError(t, err)
		require.Len(t, usage, 2)
		assert.Equal(t, DailyUsage{Date: "2024-03-10", Requests: 2, Failures: 1, AvgLatencyMS: 20}, usage[0])
		assert.Equal(t, "2024-03-09", usage[1].Date)
	})

	t.Run("Observe", func(t *testing.T) {
		s.Observe("POST", "/sync/strava", 0, 15*time.Millisecond)
		usage, err := s.GetDailyUsage(ctx, 1)
		require.NoError(t, err)
		require.NotEmpty(t, usage)
		assert.Equal(t, 3, usage[0].Requests)
		assert.Equal(t, 2, usage[0].Failures)
	})

	t.Run("Cleanup", func(t *testing.T) {
		n, err := s.Cleanup(ctx, 30)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestGetSysHealth(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bin"), make([]byte, 2048), 0o644))

	h := GetSysHealth(dir)
	assert.Equal(t, "2.0 KB", h.DataDiskSize)
	assert.Greater(t, h.Goroutines, 0)
}
