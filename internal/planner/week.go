package planner

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"glycofy/internal/dates"
)

// Fetcher retrieves the plan for one date.
type Fetcher interface {
	GetDayPlan(ctx context.Context, date, dietPref string) (DayPlan, error)
}

// WeekLoader fetches the seven plans of a week concurrently.
type WeekLoader struct {
	fetcher Fetcher
	cache   Cache
	logger  *zap.Logger
}

// NewWeekLoader creates a WeekLoader. cache may be nil.
func NewWeekLoader(fetcher Fetcher, cache Cache, logger *zap.Logger) *WeekLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeekLoader{fetcher: fetcher, cache: cache, logger: logger}
}

// Load returns the plans of week in date order. It waits for every fetch;
// if any fails, no plans are returned.
func (l *WeekLoader) Load(ctx context.Context, week dates.WeekRange, dietPref string) ([]DayPlan, error) {
	plans := make([]DayPlan, len(week.Dates))
	g, gctx := errgroup.WithContext(ctx)

	for i, date := range week.Dates {
		i, date := i, date
		g.Go(func() error {
			p, err := l.loadDay(gctx, date, dietPref)
			if err != nil {
				return fmt.Errorf("failed to load plan for %s: %w", date, err)
			}
			plans[i] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return plans, nil
}

func (l *WeekLoader) loadDay(ctx context.Context, date, dietPref string) (DayPlan, error) {
	if l.cache != nil {
		p, ok, err := l.cache.Get(ctx, date, dietPref)
		if err != nil {
			l.logger.Warn("plan cache read failed", zap.String("date", date), zap.Error(err))
		} else if ok {
			return p, nil
		}
	}

	p, err := l.fetcher.GetDayPlan(ctx, date, dietPref)
	if err != nil {
		return DayPlan{}, err
	}
	if p.Date == "" {
		p.Date = date
	}

	if l.cache != nil {
		if err := l.cache.Set(ctx, p, dietPref); err != nil {
			l.logger.Warn("plan cache write failed", zap.String("date", date), zap.Error(err))
		}
	}
	return p, nil
}
