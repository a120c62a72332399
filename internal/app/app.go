package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"glycofy/internal/activity"
	"glycofy/internal/apiclient"
	"glycofy/internal/dates"
	"glycofy/internal/planner"
	"glycofy/internal/shopping"
	"glycofy/internal/summary"
)

var (
	// ErrMalformedInput is returned before any network call when a command
	// is missing or has an unusable argument.
	ErrMalformedInput = errors.New("malformed input")

	// ErrStale is returned by a load that finished after a newer load of
	// the same view was started. Its result was discarded.
	ErrStale = errors.New("stale result discarded")
)

// Backend is the subset of the API client the commands use.
type Backend interface {
	planner.Fetcher
	SwapMeal(ctx context.Context, date string, mealType planner.MealType) (planner.DayPlan, error)
	LockPlan(ctx context.Context, date string, lock bool) (apiclient.LockResult, error)
	ListAllActivities(ctx context.Context, pageSize int) ([]activity.Activity, error)
	RangeSummary(ctx context.Context, from, to string) (apiclient.RangeSummary, error)
	Me(ctx context.Context) (apiclient.User, error)
	UpdateMe(ctx context.Context, update apiclient.UserUpdate) (apiclient.User, error)
	SyncStrava(ctx context.Context, replace bool) (apiclient.SyncResult, error)
	StravaStatus(ctx context.Context) (apiclient.StravaStatus, error)
	Login(ctx context.Context, email, password string) (apiclient.LoginResult, error)
	Logout(ctx context.Context) error
}

// WeekView is the last committed week load.
type WeekView struct {
	Range   dates.WeekRange
	Plans   []planner.DayPlan
	Grocery *shopping.GroceryList
}

// App runs user commands and holds the state of each view. Each view has
// a generation counter; a load commits only if no newer load of that view
// started while it was in flight.
type App struct {
	backend  Backend
	loader   *planner.WeekLoader
	cache    planner.Cache
	location *apiclient.Location
	logger   *zap.Logger
	now      func() time.Time

	mu         sync.Mutex
	dietPref   string
	weekGen    uint64
	summaryGen uint64
	week       *WeekView
	summary    *summary.Summary

	// cache mutations, so a week load can tell what changed under it
	mutSeq    uint64
	mutatedAt map[string]uint64
	clearedAt uint64
}

// New wires an App. cache and location may be nil.
func New(backend Backend, cache planner.Cache, location *apiclient.Location, dietPref string, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = planner.NewMemoryCache()
	}
	if location == nil {
		location = apiclient.NewLocation("/", nil)
	}
	if dietPref == "" {
		dietPref = "omnivore"
	}
	return &App{
		backend:   backend,
		loader:    planner.NewWeekLoader(backend, cache, logger),
		cache:     cache,
		location:  location,
		logger:    logger,
		now:       time.Now,
		dietPref:  dietPref,
		mutatedAt: make(map[string]uint64),
	}
}

// DietPref is the preference plans are requested with.
func (a *App) DietPref() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dietPref
}

// Week returns the committed week view, if any.
func (a *App) Week() (WeekView, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.week == nil {
		return WeekView{}, false
	}
	return *a.week, true
}

// Summary returns the committed summary view, if any.
func (a *App) Summary() (summary.Summary, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.summary == nil {
		return summary.Summary{}, false
	}
	return *a.summary, true
}

// begin starts a load of the view whose counter is gen.
func (a *App) begin(gen *uint64) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	*gen++
	return *gen
}

func (a *App) current(gen *uint64, token uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return *gen == token
}

// commit runs apply only if token is still the latest generation.
func (a *App) commit(gen *uint64, token uint64, apply func()) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if *gen != token {
		return ErrStale
	}
	apply()
	return nil
}
