package planner

import (
	"context"
	"errors"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glycofy/internal/dates"
)

type mockFetcher struct {
	calls  atomic.Int32
	failOn string
	mu     sync.Mutex
	seen   []string
}

func (m *mockFetcher) GetDayPlan(ctx context.Context, date, dietPref string) (DayPlan, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.seen = append(m.seen, date+"/"+dietPref)
	m.mu.Unlock()
	if date == m.failOn {
		return DayPlan{}, errors.New("boom")
	}
	return DayPlan{
		Date: date,
		Meals: []Meal{
			{Title: "Oats", MealType: Breakfast, Kcal: 400, Ingredients: []string{"oats"}},
			{Title: "Wrap", MealType: Lunch, Kcal: 600},
		},
	}, nil
}

func TestWeekLoader(t *testing.T) {
	ctx := context.Background()
	week := dates.Week(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))

	t.Run("LoadsSevenDaysInOrder", func(t *testing.T) {
		f := &mockFetcher{}
		plans, err := NewWeekLoader(f, nil, nil).Load(ctx, week, "omnivore")
		require.NoError(t, err)
		require.Len(t, plans, 7)
		for i, p := range plans {
			assert.Equal(t, week.Dates[i], p.Date)
		}
		assert.Equal(t, int32(7), f.calls.Load())
		assert.Contains(t, f.seen, "2024-01-01/omnivore")
	})

	t.Run("AnyFailureFailsTheWeek", func(t *testing.T) {
		f := &mockFetcher{failOn: "2024-01-04"}
		plans, err := NewWeekLoader(f, nil, nil).Load(ctx, week, "omnivore")
		require.Error(t, err)
		assert.Nil(t, plans)
		assert.Contains(t, err.Error(), "2024-01-04")
	})

	t.Run("UsesCache", func(t *testing.T) {
		f := &mockFetcher{}
		cache := NewMemoryCache()
		loader := NewWeekLoader(f, cache, nil)

		_, err := loader.Load(ctx, week, "vegan")
		require.NoError(t, err)
		_, err = loader.Load(ctx, week, "vegan")
		require.NoError(t, err)
		assert.Equal(t, int32(7), f.calls.Load())

		_, err = loader.Load(ctx, week, "keto")
		require.NoError(t, err)
		assert.Equal(t, int32(14), f.calls.Load())
	})
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, DayPlan{Date: "2024-01-01"}, "omnivore"))
	require.NoError(t, c.Set(ctx, DayPlan{Date: "2024-01-01"}, "vegan"))
	require.NoError(t, c.Set(ctx, DayPlan{Date: "2024-01-02"}, "vegan"))

	_, ok, _ := c.Get(ctx, "2024-01-01", "vegan")
	assert.True(t, ok)

	require.NoError(t, c.Invalidate(ctx, "2024-01-01"))
	_, ok, _ = c.Get(ctx, "2024-01-01", "omnivore")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "2024-01-01", "vegan")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "2024-01-02", "vegan")
	assert.True(t, ok)

	require.NoError(t, c.Clear(ctx))
	_, ok, _ = c.Get(ctx, "2024-01-02", "vegan")
	assert.False(t, ok)
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	client, err := DialRedis(ctx, addr, os.Getenv("REDIS_PASSWORD"), 0)
	require.NoError(t, err)
	defer client.Close()

	c := NewRedisCache(client, time.Minute)
	c.prefix = "glycofy:test:" + strconv.FormatInt(time.Now().UnixNano(), 10) + ":"

	plan := DayPlan{Date: "2024-01-01", Meals: []Meal{{Title: "Oats", MealType: Breakfast, Kcal: 400}}}
	require.NoError(t, c.Set(ctx, plan, "omnivore"))

	got, ok, err := c.Get(ctx, "2024-01-01", "omnivore")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, plan.Meals, got.Meals)

	require.NoError(t, c.Invalidate(ctx, "2024-01-01"))
	_, ok, err = c.Get(ctx, "2024-01-01", "omnivore")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, plan, "vegan"))
	require.NoError(t, c.Clear(ctx))
	_, ok, err = c.Get(ctx, "2024-01-01", "vegan")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDayPlanHelpers(t *testing.T) {
	p := DayPlan{Meals: []Meal{{MealType: Breakfast, Kcal: 400}, {MealType: Dinner, Kcal: 700}}}
	assert.Equal(t, 1100, p.PlannedKcal())

	m, ok := p.Meal(Dinner)
	assert.True(t, ok)
	assert.Equal(t, 700, m.Kcal)
	_, ok = p.Meal(Snack)
	assert.False(t, ok)

	mt, ok := ParseMealType(" Lunch ")
	assert.True(t, ok)
	assert.Equal(t, Lunch, mt)
	_, ok = ParseMealType("brunch")
	assert.False(t, ok)
}
