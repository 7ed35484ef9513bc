package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for cinelog-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (database password, TMDB key) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8337"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Primary source (Letterboxd) configuration
	Letterboxd LetterboxdConfig `yaml:"letterboxd"`

	// Enrichment source (TMDB) configuration
	TMDB TMDBConfig `yaml:"tmdb"`

	// Background sync scheduling
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"cinelog"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"cinelog"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MigrationsPath string `yaml:"migrations_path" env:"PGMIGRATIONS_PATH" env-default:"migrations"`
}

// URL builds a Postgres connection string from the individual fields.
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// LetterboxdConfig holds settings for the primary catalogue source.
type LetterboxdConfig struct {
	// Username is the account to mirror. The scheduler is disabled when empty.
	Username string `yaml:"username" env:"LETTERBOXD_USERNAME" env-default:""`

	// MinDelay is the minimum interval between requests to the primary source.
	MinDelay time.Duration `yaml:"min_delay" env:"LETTERBOXD_MIN_DELAY" env-default:"2s"`

	// FetchDetails controls whether scheduled syncs fetch full film pages
	// for every new slug, or create identifier-only placeholders.
	FetchDetails bool `yaml:"fetch_details" env:"LETTERBOXD_FETCH_DETAILS" env-default:"true"`
}

// TMDBConfig holds settings for the enrichment source.
// Enrichment runs only when APIKey is set.
type TMDBConfig struct {
	APIKey   string        `yaml:"-" env:"TMDB_API_KEY"` // Secret - not in YAML
	MinDelay time.Duration `yaml:"min_delay" env:"TMDB_MIN_DELAY" env-default:"300ms"`

	// BatchLimit bounds the number of films per scheduled enrichment run.
	// Zero means unbounded.
	BatchLimit int `yaml:"batch_limit" env:"TMDB_BATCH_LIMIT" env-default:"0"`
}

// IsConfigured reports whether the enrichment source credential is present.
func (c *TMDBConfig) IsConfigured() bool {
	return c.APIKey != ""
}

// SchedulerConfig controls the periodic background sync.
type SchedulerConfig struct {
	Enabled bool `yaml:"enabled" env:"SYNC_SCHEDULE_ENABLED" env-default:"true"`

	// Interval between scheduled sync runs.
	Interval time.Duration `yaml:"interval" env:"SYNC_INTERVAL" env-default:"24h"`

	// RunOnStart triggers one sync immediately at startup.
	RunOnStart bool `yaml:"run_on_start" env:"SYNC_RUN_ON_START" env-default:"false"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
// Environment variables override YAML values. Secrets (PGPASSWORD, TMDB_API_KEY)
// must come from environment variables (yaml:"-" fields).
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Letterboxd.MinDelay < 0 {
		return fmt.Errorf("letterboxd min_delay must not be negative")
	}
	if c.TMDB.MinDelay < 0 {
		return fmt.Errorf("tmdb min_delay must not be negative")
	}
	if c.Scheduler.Enabled && c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive when enabled")
	}
	return nil
}
