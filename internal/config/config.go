// Package config loads application configuration from the environment,
// following the teacher's envconfig + godotenv pattern, extended with a
// per-source configuration block (spec.md §6).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// SourceConfig is one external provider's transport and scheduling
// configuration (spec.md §6).
type SourceConfig struct {
	Name                   string        `json:"name" validate:"required"`
	Enabled                bool          `json:"enabled"`
	AutoSyncEnabled        bool          `json:"auto_sync_enabled"`
	SyncIntervalMinutes    int           `json:"sync_interval_minutes" validate:"gte=0"`
	APIRequestsPerSecond   float64       `json:"api_requests_per_second" validate:"gt=0"`
	ScrapeRequestsPerSecond float64      `json:"scrape_requests_per_second" validate:"gt=0"`
	RequestTimeoutSeconds  int           `json:"request_timeout_s" validate:"gt=0"`
	MaxRetries             int           `json:"max_retries" validate:"gte=0"`
	BaseURL                string        `json:"base_url"`
	APIKey                 string        `json:"api_key"`
}

// RequestTimeout is RequestTimeoutSeconds as a time.Duration.
func (c SourceConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// AnalyticsConfig captures the Open Question decisions from SPEC_FULL §12.
type AnalyticsConfig struct {
	StrictLineupSegments bool `envconfig:"ANALYTICS_STRICT_LINEUP_SEGMENTS" default:"false"`
}

// Config holds all application configuration.
type Config struct {
	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"hoopsync"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"hoopsync"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis — backs the shared response cache when RedisEnabled is set;
	// otherwise the cache runs in-process. Rate limiters are always in-process.
	RedisEnabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// HTTP surface (sync-trigger)
	HTTPPort         int      `envconfig:"HTTP_PORT" default:"8080"`
	CORSAllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS" default:"*"`

	// Scheduler
	EnableScheduler bool `envconfig:"ENABLE_SCHEDULER" default:"true"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`

	// Sync-wide
	DBTransactionSoftDeadline time.Duration `envconfig:"DB_TRANSACTION_SOFT_DEADLINE" default:"60s"`

	Analytics AnalyticsConfig

	// Sources is a JSON-encoded map of source name -> SourceConfig, loaded
	// from SOURCES_JSON so operators can configure an arbitrary set of
	// providers without a code change.
	SourcesJSON string `envconfig:"SOURCES_JSON" default:""`
	Sources     map[string]SourceConfig `envconfig:"-"`
}

// Load loads configuration from environment variables, trying a .env file
// first (ignored if absent, same as the teacher).
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	cfg.Sources = defaultSources()
	if cfg.SourcesJSON != "" {
		var override map[string]SourceConfig
		if err := json.Unmarshal([]byte(cfg.SourcesJSON), &override); err != nil {
			return nil, fmt.Errorf("failed to parse SOURCES_JSON: %w", err)
		}
		for name, sc := range override {
			sc.Name = name
			cfg.Sources[name] = sc
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// defaultSources seeds the three providers named in spec.md §1.
func defaultSources() map[string]SourceConfig {
	return map[string]SourceConfig{
		"winner": {
			Name: "winner", Enabled: true, AutoSyncEnabled: true,
			SyncIntervalMinutes: 60, APIRequestsPerSecond: 2, ScrapeRequestsPerSecond: 0.5,
			RequestTimeoutSeconds: 30, MaxRetries: 3,
			BaseURL: "https://api.winner-league.example/v1",
		},
		"euroleague": {
			Name: "euroleague", Enabled: true, AutoSyncEnabled: true,
			SyncIntervalMinutes: 60, APIRequestsPerSecond: 2, ScrapeRequestsPerSecond: 0.5,
			RequestTimeoutSeconds: 30, MaxRetries: 3,
			BaseURL: "https://api.euroleaguebasketball.net/v2",
		},
		"nba": {
			Name: "nba", Enabled: false, AutoSyncEnabled: false,
			SyncIntervalMinutes: 60, APIRequestsPerSecond: 2, ScrapeRequestsPerSecond: 0.5,
			RequestTimeoutSeconds: 30, MaxRetries: 3,
			BaseURL: "https://stats.nba.example/stats",
		},
	}
}

var validate = validator.New()

// Validate validates the configuration, including each configured source.
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}
	for name, sc := range c.Sources {
		if err := validate.Struct(sc); err != nil {
			return fmt.Errorf("source %q: %w", name, err)
		}
	}
	return nil
}

// SourceEnabled looks up a source by name, returning a structured "not
// enabled"/"unknown source" condition the sync-trigger handler maps to a 400.
func (c *Config) SourceEnabled(name string) (SourceConfig, error) {
	sc, ok := c.Sources[name]
	if !ok {
		return SourceConfig{}, fmt.Errorf("unknown source: %s", name)
	}
	if !sc.Enabled {
		return SourceConfig{}, fmt.Errorf("source not enabled: %s", name)
	}
	return sc, nil
}

// DatabaseDSN returns the PostgreSQL connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DatabaseUser, c.DatabasePassword, c.DatabaseHost, c.DatabasePort,
		c.DatabaseName, c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// MustLoad loads configuration or exits fatally — used in main() where we
// want to fail fast.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
