package acceptance_tests

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"glycofy/internal/app"
	"glycofy/internal/config"
	"glycofy/internal/shopping"
	"glycofy/internal/stubapi"
)

// planCounter counts plan fetches reaching the backend.
type planCounter struct {
	next  http.Handler
	plans atomic.Int32
}

func (c *planCounter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/plan/") {
		c.plans.Add(1)
	}
	c.next.ServeHTTP(w, r)
}

func TestFullWorkflow(t *testing.T) {
	ctx := context.Background()

	// 1. Start the stub backend with one workout on the test week
	stub := stubapi.New(stubapi.Options{})
	stub.AddActivity(stubapi.DemoSubject, stubapi.Activity{Name: "Run", Type: "Run", StartTime: "2024-01-02T07:00:00Z", Kcal: 500})
	counter := &planCounter{next: stub.Handler()}
	srv := httptest.NewServer(counter)
	defer srv.Close()

	cfg := &config.Config{
		APIURL:    srv.URL,
		LoginPath: "/login",
		DBPath:    filepath.Join(t.TempDir(), "glycofy.db"),
		DietPref:  "omnivore",
	}

	// 2. Log in and load a week
	rt, err := app.NewRuntime(ctx, cfg, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("Failed to create runtime: %v", err)
	}
	if err := rt.App.Login(ctx, "marc@example.com", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	view, err := rt.App.LoadWeek(ctx, "2024-01-03")
	if err != nil {
		t.Fatalf("LoadWeek failed: %v", err)
	}
	if len(view.Plans) != 7 {
		t.Fatalf("Expected 7 plans, got %d", len(view.Plans))
	}
	if view.Plans[0].Date != "2024-01-01" {
		t.Errorf("Expected week to start on Monday 2024-01-01, got %s", view.Plans[0].Date)
	}
	if view.Plans[1].Targets.TrainingKcal != 500 {
		t.Errorf("Expected 500 training kcal on 2024-01-02, got %d", view.Plans[1].Targets.TrainingKcal)
	}
	if got := counter.plans.Load(); got != 7 {
		t.Errorf("Expected 7 plan fetches, got %d", got)
	}

	// 3. Reloading the week is served from the cache
	if _, err := rt.App.LoadWeek(ctx, "2024-01-05"); err != nil {
		t.Fatalf("Second LoadWeek failed: %v", err)
	}
	if got := counter.plans.Load(); got != 7 {
		t.Errorf("Expected cached reload, got %d plan fetches", got)
	}

	// 4. Locking a day refetches only that day
	if _, err := rt.App.LockDay(ctx, "2024-01-04", true); err != nil {
		t.Fatalf("LockDay failed: %v", err)
	}
	view, err = rt.App.LoadWeek(ctx, "2024-01-03")
	if err != nil {
		t.Fatalf("Third LoadWeek failed: %v", err)
	}
	if got := counter.plans.Load(); got != 8 {
		t.Errorf("Expected one refetch after locking, got %d plan fetches", got)
	}
	if !view.Plans[3].Locked {
		t.Error("Expected 2024-01-04 to be locked")
	}

	// 5. Every day lists oats, so the weekly grocery list counts it 7 times
	file, err := rt.App.ExportGrocery(shopping.FormatCSV)
	if err != nil {
		t.Fatalf("ExportGrocery failed: %v", err)
	}
	if !strings.Contains(string(file.Data), "\"oats\",7") {
		t.Errorf("Expected oats x7 in CSV, got:\n%s", file.Data)
	}

	// 6. Summary over the week
	s, err := rt.App.LoadSummary(ctx, "2024-01-01", "2024-01-07")
	if err != nil {
		t.Fatalf("LoadSummary failed: %v", err)
	}
	if s.TotalKcal != 500 || s.ActivityCount != 1 {
		t.Errorf("Unexpected summary totals: %d kcal, %d activities", s.TotalKcal, s.ActivityCount)
	}

	// 7. The backend's own totals agree with the client-side fold
	rs, err := rt.App.LoadServerSummary(ctx, "2024-01-01", "2024-01-07")
	if err != nil {
		t.Fatalf("LoadServerSummary failed: %v", err)
	}
	if rs.TotalTrainingKcal != s.TotalKcal || rs.ActivityCount != s.ActivityCount {
		t.Errorf("Server summary %d kcal/%d activities, client %d/%d",
			rs.TotalTrainingKcal, rs.ActivityCount, s.TotalKcal, s.ActivityCount)
	}

	// 8. Requests were recorded
	usage, err := rt.Metrics.GetDailyUsage(ctx, 1)
	if err != nil {
		t.Fatalf("GetDailyUsage failed: %v", err)
	}
	if len(usage) == 0 || usage[0].Requests == 0 {
		t.Errorf("Expected recorded requests, got %+v", usage)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// 9. The session survives a restart, cached plans do not
	rt, err = app.NewRuntime(ctx, cfg, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("Failed to reopen runtime: %v", err)
	}
	defer rt.Close()
	if !rt.Client.Session().Authenticated() {
		t.Fatal("Expected the persisted token to be restored")
	}
	if _, err := rt.App.Profile(ctx); err != nil {
		t.Errorf("Profile with restored session failed: %v", err)
	}
	if _, err := rt.App.LoadWeek(ctx, "2024-01-03"); err != nil {
		t.Fatalf("LoadWeek after restart failed: %v", err)
	}
	if got := counter.plans.Load(); got != 15 {
		t.Errorf("Expected a fresh week after restart (15 plan fetches), got %d", got)
	}
}

func TestPersistentPlanCache(t *testing.T) {
	ctx := context.Background()

	stub := stubapi.New(stubapi.Options{})
	counter := &planCounter{next: stub.Handler()}
	srv := httptest.NewServer(counter)
	defer srv.Close()

	cfg := &config.Config{
		APIURL:    srv.URL,
		LoginPath: "/login",
		DBPath:    filepath.Join(t.TempDir(), "glycofy.db"),
		DietPref:  "omnivore",
		PlanCache: config.PlanCacheSQLite,
	}

	rt, err := app.NewRuntime(ctx, cfg, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("Failed to create runtime: %v", err)
	}
	if err := rt.App.Login(ctx, "marc@example.com", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := rt.App.LoadWeek(ctx, "2024-01-03"); err != nil {
		t.Fatalf("LoadWeek failed: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	rt, err = app.NewRuntime(ctx, cfg, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("Failed to reopen runtime: %v", err)
	}
	defer rt.Close()
	view, err := rt.App.LoadWeek(ctx, "2024-01-03")
	if err != nil {
		t.Fatalf("LoadWeek after restart failed: %v", err)
	}
	if len(view.Plans) != 7 {
		t.Fatalf("Expected 7 plans, got %d", len(view.Plans))
	}
	if got := counter.plans.Load(); got != 7 {
		t.Errorf("Expected the stored week to be reused, got %d plan fetches", got)
	}
}
