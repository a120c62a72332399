package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"glycofy/internal/apiclient"
	"glycofy/internal/config"
	"glycofy/internal/database"
	"glycofy/internal/metrics"
	"glycofy/internal/planner"
	"glycofy/internal/session"
)

const planCacheTTL = 6 * time.Hour

// Runtime is a fully wired App and the resources it owns.
type Runtime struct {
	App      *App
	Client   *apiclient.Client
	Location *apiclient.Location
	DB       *database.DB
	Metrics  *metrics.Store

	redis *redis.Client
}

// NewRuntime opens the local database, restores the persisted session and
// wires the API client, plan cache and App. onNavigate is called with the
// login URL whenever the backend rejects the session.
func NewRuntime(ctx context.Context, cfg *config.Config, logger *zap.Logger, onNavigate func(target string)) (*Runtime, error) {
	db, err := database.NewDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	sess, err := session.Load(ctx, session.NewTokenStore(session.NewSQLiteKV(db.SQL)))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	metricsStore := metrics.NewStore(db.SQL, logger)
	location := apiclient.NewLocation("/", onNavigate)

	opts := []apiclient.Option{
		apiclient.WithLoginPath(cfg.LoginPath),
		apiclient.WithNavigator(location),
		apiclient.WithObserver(metricsStore.Observe),
		apiclient.WithLogger(logger),
	}
	if cfg.RequestTimeout > 0 {
		opts = append(opts, apiclient.WithTimeout(cfg.RequestTimeout))
	}
	client := apiclient.New(cfg.APIURL, sess, opts...)

	rt := &Runtime{Client: client, Location: location, DB: db, Metrics: metricsStore}

	cache, rdb := newPlanCache(ctx, cfg, db, logger)
	rt.redis = rdb

	rt.App = New(client, cache, location, cfg.DietPref, logger)
	return rt, nil
}

// newPlanCache picks the plan cache named by cfg.PlanCache. Plans live for
// the process by default; the sqlite and redis stores are opt-in. A redis
// client is returned only when the redis store is in use.
func newPlanCache(ctx context.Context, cfg *config.Config, db *database.DB, logger *zap.Logger) (planner.Cache, *redis.Client) {
	switch cfg.PlanCache {
	case config.PlanCacheSQLite:
		return planner.NewPlanRepository(db.SQL, planCacheTTL), nil
	case config.PlanCacheRedis:
		rdb, err := planner.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, caching plans in memory", zap.Error(err))
			return planner.NewMemoryCache(), nil
		}
		return planner.NewRedisCache(rdb, planCacheTTL), rdb
	default:
		return planner.NewMemoryCache(), nil
	}
}

// Close releases the database and cache connections.
func (r *Runtime) Close() error {
	var errs []error
	if r.redis != nil {
		errs = append(errs, r.redis.Close())
	}
	errs = append(errs, r.DB.Close())
	return errors.Join(errs...)
}
