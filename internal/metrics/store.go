package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const tsLayout = "2006-01-02 15:04:05"

// RequestMetric records one backend call made by the API client.
type RequestMetric struct {
	Method    string
	Path      string
	Status    int
	LatencyMS int64
	Timestamp time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewStore initializes the Store with an existing, migrated connection.
func NewStore(db *sql.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger, now: time.Now}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m RequestMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO request_metrics (method, path, status, latency_ms, timestamp) VALUES (?, ?, ?, ?, ?)`,
		m.Method, m.Path, m.Status, m.LatencyMS, ts.UTC().Format(tsLayout))
	if err != nil {
		return fmt.Errorf("failed to record metric: %w", err)
	}
	return nil
}

// Observe has the signature of an API client observer. Write failures are
// logged, never returned to the request path.
func (s *Store) Observe(method, path string, status int, latency time.Duration) {
	err := s.Record(context.Background(), RequestMetric{
		Method:    method,
		Path:      path,
		Status:    status,
		LatencyMS: latency.Milliseconds(),
	})
	if err != nil {
		s.logger.Warn("metric dropped", zap.String("path", path), zap.Error(err))
	}
}

// DailyUsage is the request totals for a single UTC day.
type DailyUsage struct {
	Date         string
	Requests     int
	Failures     int
	AvgLatencyMS int64
}

// GetDailyUsage retrieves usage for the last N days, newest first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := s.now().UTC().AddDate(0, 0, -days).Format(tsLayout)
	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(timestamp, 1, 10) AS day,
		       COUNT(*),
		       SUM(CASE WHEN status < 200 OR status > 299 THEN 1 ELSE 0 END),
		       CAST(AVG(latency_ms) AS INTEGER)
		FROM request_metrics
		WHERE timestamp >= ?
		GROUP BY day
		ORDER BY day DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.Requests, &u.Failures, &u.AvgLatencyMS); err != nil {
			return nil, fmt.Errorf("failed to scan usage: %w", err)
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := s.now().UTC().AddDate(0, 0, -olderThanDays).Format(tsLayout)
	res, err := s.db.ExecContext(ctx, `DELETE FROM request_metrics WHERE timestamp < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up metrics: %w", err)
	}
	return res.RowsAffected()
}
