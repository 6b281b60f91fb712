package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/kickstart/pkg/db"
	"github.com/dmitrymomot/kickstart/pkg/logger"
	"github.com/dmitrymomot/kickstart/pkg/scheduler"
	"github.com/dmitrymomot/kickstart/pkg/telemetry"
)

// ProfileLocal is the developer profile. It enables debug logging and
// detailed error responses.
const ProfileLocal = "local"

// Config is the full service configuration.
type Config struct {
	Profile         string        `env:"APP_PROFILE" envDefault:"local"`
	Host            string        `env:"HOST" envDefault:"0.0.0.0"`
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"kickstart"`
	JobStoreSchema  string        `env:"JOB_STORE_DATABASE_SCHEMA" envDefault:"public_job_store"`
	RedisURL        string        `env:"REDIS_URL"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	Port            int           `env:"PORT" envDefault:"8000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	Events    EventsConfig
	Scheduler SchedulerConfig
	DB        db.Config
	Log       logger.Config
	Metrics   telemetry.Config
}

// EventsConfig controls the sample event poll loop.
type EventsConfig struct {
	Queue                 string `env:"SAMPLE_EVENT_QUEUE" envDefault:"sample-events"`
	BatchSize             int    `env:"SAMPLE_EVENT_BATCH_SIZE" envDefault:"10"`
	BackoffInitialSeconds int    `env:"SAMPLE_EVENT_POLLING_BACKOFF_INITIAL_IN_SECONDS" envDefault:"1"`
	BackoffMaxSeconds     int    `env:"SAMPLE_EVENT_POLLING_BACKOFF_MAX_IN_SECONDS" envDefault:"30"`
}

// BackoffInitial returns the first poll delay.
func (c EventsConfig) BackoffInitial() time.Duration {
	return time.Duration(c.BackoffInitialSeconds) * time.Second
}

// BackoffMax returns the delay ceiling.
func (c EventsConfig) BackoffMax() time.Duration {
	return time.Duration(c.BackoffMaxSeconds) * time.Second
}

// SchedulerConfig controls the cron scheduler and the sample job.
type SchedulerConfig struct {
	SampleJobFrequency  string `env:"SAMPLE_JOB_FREQUENCY" envDefault:"*/5 * * * *"`
	Timezone            string `env:"SCHEDULER_TIMEZONE" envDefault:"UTC"`
	MisfireGraceSeconds int    `env:"SCHEDULER_MISFIRE_GRACE_SECONDS" envDefault:"60"`
	Coalesce            bool   `env:"SCHEDULER_COALESCE" envDefault:"true"`
}

// MisfireGrace returns the grace window. Zero means unlimited.
func (c SchedulerConfig) MisfireGrace() time.Duration {
	return time.Duration(c.MisfireGraceSeconds) * time.Second
}

// Location resolves Timezone, falling back to UTC.
func (c SchedulerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads .env.{APP_PROFILE} when present, then parses and validates the
// process environment.
func Load() (*Config, error) {
	profile := os.Getenv("APP_PROFILE")
	if profile == "" {
		profile = ProfileLocal
	}
	if err := godotenv.Load(".env." + profile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Join(ErrLoadEnvFile, err)
	}
	return parse(env.Options{})
}

// Parse builds a Config from vars instead of the process environment.
func Parse(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
		if cfg.IsLocal() {
			cfg.Log.Level = "debug"
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every rule and reports all violations together.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Port < 1 || c.Port > 65535 {
		add("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if strings.TrimSpace(c.ServiceName) == "" {
		add("SERVICE_NAME must not be empty")
	}
	if c.ShutdownTimeout <= 0 {
		add("SHUTDOWN_TIMEOUT must be positive")
	}
	if !strings.HasPrefix(c.DB.ConnectionString, "postgres://") &&
		!strings.HasPrefix(c.DB.ConnectionString, "postgresql://") {
		add("DATABASE_CONN_URL must start with postgres:// or postgresql://")
	}
	if c.JobStoreSchema == "" {
		add("JOB_STORE_DATABASE_SCHEMA must not be empty")
	}

	if c.Events.Queue == "" {
		add("SAMPLE_EVENT_QUEUE must not be empty")
	}
	if c.Events.BatchSize < 1 {
		add("SAMPLE_EVENT_BATCH_SIZE must be at least 1, got %d", c.Events.BatchSize)
	}
	if c.Events.BackoffInitialSeconds < 1 {
		add("SAMPLE_EVENT_POLLING_BACKOFF_INITIAL_IN_SECONDS must be at least 1, got %d", c.Events.BackoffInitialSeconds)
	}
	if c.Events.BackoffMaxSeconds < 1 {
		add("SAMPLE_EVENT_POLLING_BACKOFF_MAX_IN_SECONDS must be at least 1, got %d", c.Events.BackoffMaxSeconds)
	} else if c.Events.BackoffMaxSeconds < c.Events.BackoffInitialSeconds {
		add("SAMPLE_EVENT_POLLING_BACKOFF_MAX_IN_SECONDS (%d) must not be less than the initial delay (%d)",
			c.Events.BackoffMaxSeconds, c.Events.BackoffInitialSeconds)
	}

	if err := scheduler.ValidateSchedule(c.Scheduler.SampleJobFrequency); err != nil {
		add("SAMPLE_JOB_FREQUENCY %q: %w", c.Scheduler.SampleJobFrequency, err)
	}
	if c.Scheduler.MisfireGraceSeconds < 0 {
		add("SCHEDULER_MISFIRE_GRACE_SECONDS must not be negative")
	}
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		add("SCHEDULER_TIMEZONE %q: %w", c.Scheduler.Timezone, err)
	}

	if !logger.ValidLevel(c.Log.Level) {
		add("LOG_LEVEL %q is not one of debug, info, warn, error", c.Log.Level)
	}
	if c.Log.Format != logger.FormatJSON && c.Log.Format != logger.FormatText {
		add("LOG_FORMAT must be json or text, got %q", c.Log.Format)
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		add("METRICS_PATH must start with /")
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
}

// IsLocal reports whether the local developer profile is active.
func (c *Config) IsLocal() bool {
	return c.Profile == ProfileLocal
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
