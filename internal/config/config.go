// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/reviewpulse/reviewpulse/internal/stats"
)

// Supported metrics backends.
const (
	MetricsBackendInMemory   = "inmemory"
	MetricsBackendPrometheus = "prometheus"
	MetricsBackendNoop       = "noop"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Review source (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Snapshot cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// CORS configuration
	// Comma-separated list of dashboard origins (e.g., "https://dash.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Statistics
	// IANA zone used to bucket reviews into calendar days when a request
	// does not name one.
	StatsTimeZone     string        `env:"STATS_TIMEZONE" envDefault:"UTC"`
	StatsCacheEnabled bool          `env:"STATS_CACHE_ENABLED" envDefault:"true"`
	StatsCacheTTL     time.Duration `env:"STATS_CACHE_TTL" envDefault:"60s"`
	StatsMaxRangeDays int           `env:"STATS_MAX_RANGE_DAYS" envDefault:"366"`

	// Metrics backend: inmemory, prometheus or noop
	MetricsBackend string `env:"METRICS_BACKEND" envDefault:"inmemory"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks values that env tags cannot express.
func (c *Config) Validate() error {
	if _, err := stats.LoadLocation(c.StatsTimeZone); err != nil {
		return fmt.Errorf("STATS_TIMEZONE: %w", err)
	}
	if c.StatsMaxRangeDays < 1 {
		return fmt.Errorf("STATS_MAX_RANGE_DAYS must be positive, got %d", c.StatsMaxRangeDays)
	}
	if c.StatsCacheEnabled && c.StatsCacheTTL <= 0 {
		return fmt.Errorf("STATS_CACHE_TTL must be positive when the cache is enabled")
	}
	switch c.MetricsBackend {
	case MetricsBackendInMemory, MetricsBackendPrometheus, MetricsBackendNoop:
	default:
		return fmt.Errorf("unknown METRICS_BACKEND %q", c.MetricsBackend)
	}
	return nil
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
