package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const planTimeLayout = "2006-01-02 15:04:05"

// PlanRepository is a Cache persisted in the local SQLite database, so
// plans survive between CLI runs. Entries older than ttl are ignored.
// created_at is TEXT in planTimeLayout, UTC.
type PlanRepository struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewPlanRepository creates a PlanRepository over the day_plans table.
func NewPlanRepository(d *sql.DB, ttl time.Duration) *PlanRepository {
	return &PlanRepository{db: d, ttl: ttl, now: time.Now}
}

func (r *PlanRepository) Get(ctx context.Context, date, dietPref string) (DayPlan, bool, error) {
	var data, createdAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT plan_data, created_at FROM day_plans WHERE date = ? AND diet_pref = ?`,
		date, dietPref).Scan(&data, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return DayPlan{}, false, nil
	}
	if err != nil {
		return DayPlan{}, false, fmt.Errorf("failed to read stored plan %s: %w", date, err)
	}

	if r.ttl > 0 {
		stored, err := time.Parse(planTimeLayout, createdAt)
		if err != nil {
			return DayPlan{}, false, fmt.Errorf("failed to parse stored plan time %q: %w", createdAt, err)
		}
		if r.now().UTC().Sub(stored) > r.ttl {
			return DayPlan{}, false, nil
		}
	}

	var p DayPlan
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return DayPlan{}, false, fmt.Errorf("failed to unmarshal stored plan %s: %w", date, err)
	}
	return p, true, nil
}

// Set inserts or replaces the plan for its date and dietPref.
func (r *PlanRepository) Set(ctx context.Context, plan DayPlan, dietPref string) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan %s: %w", plan.Date, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO day_plans (date, diet_pref, plan_data, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(date, diet_pref) DO UPDATE SET plan_data = excluded.plan_data, created_at = excluded.created_at`,
		plan.Date, dietPref, string(data), r.now().UTC().Format(planTimeLayout))
	if err != nil {
		return fmt.Errorf("failed to store plan %s: %w", plan.Date, err)
	}
	return nil
}

func (r *PlanRepository) Invalidate(ctx context.Context, date string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM day_plans WHERE date = ?`, date); err != nil {
		return fmt.Errorf("failed to invalidate stored plans for %s: %w", date, err)
	}
	return nil
}

func (r *PlanRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM day_plans`); err != nil {
		return fmt.Errorf("failed to clear stored plans: %w", err)
	}
	return nil
}
