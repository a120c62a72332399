package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the configuration for the application.
type Config struct {
	APIURL         string
	LoginPath      string
	DBPath         string
	DietPref       string
	RequestTimeout time.Duration
	Env            string

	// PlanCache is memory (default, process lifetime), sqlite or redis
	PlanCache string

	// Redis plan cache, used only when PlanCache is redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Telegram Config
	TelegramBotToken    string
	TelegramWebhookURL  string
	TelegramAllowUserID int64
	AdminTelegramID     int64

	// Stub backend
	StubJWTSecret      string
	StubAllowedOrigins []string
}

// Plan cache backends.
const (
	PlanCacheMemory = "memory"
	PlanCacheSQLite = "sqlite"
	PlanCacheRedis  = "redis"
)

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	apiURL := os.Getenv("GLYCOFY_API_URL")
	if apiURL == "" {
		return nil, fmt.Errorf("GLYCOFY_API_URL environment variable not set")
	}

	cfg, err := fromEnv()
	if err != nil {
		return nil, err
	}
	cfg.APIURL = strings.TrimRight(apiURL, "/")
	return cfg, nil
}

// StubFromEnv reads the configuration used by the stub backend, which
// does not need an API URL.
func StubFromEnv() (*Config, error) {
	cfg, err := fromEnv()
	if err != nil {
		return nil, err
	}
	if cfg.StubJWTSecret == "" {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("STUB_JWT_SECRET environment variable not set")
		}
		cfg.StubJWTSecret = "dev-secret"
	}
	return cfg, nil
}

func fromEnv() (*Config, error) {
	cfg := &Config{
		LoginPath:          getenv("GLYCOFY_LOGIN_PATH", "/login"),
		DBPath:             getenv("GLYCOFY_DB_PATH", "data/glycofy.db"),
		DietPref:           getenv("GLYCOFY_DIET_PREF", "omnivore"),
		Env:                getenv("GLYCOFY_ENV", "development"),
		PlanCache:          strings.ToLower(getenv("GLYCOFY_PLAN_CACHE", PlanCacheMemory)),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL: os.Getenv("TELEGRAM_WEBHOOK_URL"),
		StubJWTSecret:      os.Getenv("STUB_JWT_SECRET"),
		StubAllowedOrigins: splitList(getenv("STUB_ALLOWED_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
	}

	if s := os.Getenv("GLYCOFY_REQUEST_TIMEOUT"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid GLYCOFY_REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}

	if s := os.Getenv("REDIS_DB"); s != "" {
		if _, err := fmt.Sscanf(s, "%d", &cfg.RedisDB); err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
	}

	switch cfg.PlanCache {
	case PlanCacheMemory, PlanCacheSQLite:
	case PlanCacheRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR environment variable not set")
		}
	default:
		return nil, fmt.Errorf("invalid GLYCOFY_PLAN_CACHE %q: want memory, sqlite or redis", cfg.PlanCache)
	}

	// Telegram ids are optional for the CLI, required by the bot
	if s := os.Getenv("TELEGRAM_ALLOW_USER_ID"); s != "" {
		fmt.Sscanf(s, "%d", &cfg.TelegramAllowUserID)
	}
	if s := os.Getenv("ADMIN_TELEGRAM_ID"); s != "" {
		fmt.Sscanf(s, "%d", &cfg.AdminTelegramID)
	}

	return cfg, nil
}

// IsProduction reports whether GLYCOFY_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
