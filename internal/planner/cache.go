package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache holds fetched day plans keyed by date and diet preference.
type Cache interface {
	Get(ctx context.Context, date, dietPref string) (DayPlan, bool, error)
	Set(ctx context.Context, plan DayPlan, dietPref string) error
	Invalidate(ctx context.Context, date string) error
	Clear(ctx context.Context) error
}

func cacheKey(date, dietPref string) string {
	return date + "|" + dietPref
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu    sync.Mutex
	plans map[string]DayPlan
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{plans: make(map[string]DayPlan)}
}

func (c *MemoryCache) Get(_ context.Context, date, dietPref string) (DayPlan, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.plans[cacheKey(date, dietPref)]
	return p, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, plan DayPlan, dietPref string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plans[cacheKey(plan.Date, dietPref)] = plan
	return nil
}

// Invalidate drops every cached variant of date.
func (c *MemoryCache) Invalidate(_ context.Context, date string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, p := range c.plans {
		if p.Date == date {
			delete(c.plans, k)
		}
	}
	return nil
}

// Clear drops every cached plan.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plans = make(map[string]DayPlan)
	return nil
}

// RedisCache is a Cache shared through Redis. Entries expire after ttl.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: "glycofy:plan:", ttl: ttl}
}

// DialRedis connects to addr and verifies the connection.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func (c *RedisCache) key(date, dietPref string) string {
	return c.prefix + cacheKey(date, dietPref)
}

func (c *RedisCache) Get(ctx context.Context, date, dietPref string) (DayPlan, bool, error) {
	data, err := c.client.Get(ctx, c.key(date, dietPref)).Bytes()
	if errors.Is(err, redis.Nil) {
		return DayPlan{}, false, nil
	}
	if err != nil {
		return DayPlan{}, false, fmt.Errorf("failed to read cached plan %s: %w", date, err)
	}

	var p DayPlan
	if err := json.Unmarshal(data, &p); err != nil {
		return DayPlan{}, false, fmt.Errorf("failed to unmarshal cached plan %s: %w", date, err)
	}
	return p, true, nil
}

func (c *RedisCache) Set(ctx context.Context, plan DayPlan, dietPref string) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan %s: %w", plan.Date, err)
	}
	if err := c.client.Set(ctx, c.key(plan.Date, dietPref), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache plan %s: %w", plan.Date, err)
	}
	return nil
}

// Invalidate deletes every cached variant of date.
func (c *RedisCache) Invalidate(ctx context.Context, date string) error {
	if err := c.deleteMatching(ctx, c.key(date, "*")); err != nil {
		return fmt.Errorf("failed to invalidate cached plans for %s: %w", date, err)
	}
	return nil
}

// Clear deletes every plan under the cache prefix.
func (c *RedisCache) Clear(ctx context.Context) error {
	if err := c.deleteMatching(ctx, c.prefix+"*"); err != nil {
		return fmt.Errorf("failed to clear cached plans: %w", err)
	}
	return nil
}

func (c *RedisCache) deleteMatching(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
