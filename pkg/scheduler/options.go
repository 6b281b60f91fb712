package scheduler

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// DefaultMisfireGrace is how late a run may start before it counts as missed.
const DefaultMisfireGrace = 60 * time.Second

type options struct {
	logger        *slog.Logger
	store         Store
	location      *time.Location
	meterProvider metric.MeterProvider
	defaults      jobOptions
}

// Option configures a Scheduler.
type Option func(*options)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithStore sets the job state store. Defaults to an in-memory store.
func WithStore(s Store) Option {
	return func(o *options) {
		if s != nil {
			o.store = s
		}
	}
}

// WithLocation sets the time zone cron expressions are evaluated in.
// Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}

// WithMeterProvider enables job run metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithDefaults sets the coalesce and misfire grace values applied to every
// job unless overridden at registration. Default: coalesce on, 60s grace.
func WithDefaults(coalesce bool, misfireGrace time.Duration) Option {
	return func(o *options) {
		o.defaults.coalesce = coalesce
		o.defaults.misfireGrace = misfireGrace
	}
}

// jobOptions holds per-job trigger behaviour.
// max_instances is fixed at 1 and has no option.
type jobOptions struct {
	misfireGrace    time.Duration
	replaceExisting bool
	coalesce        bool
}

// JobOption configures a single registration.
type JobOption func(*jobOptions)

// ReplaceExisting swaps the trigger of an already registered job with the
// same name instead of failing with ErrJobExists.
func ReplaceExisting(v bool) JobOption {
	return func(o *jobOptions) {
		o.replaceExisting = v
	}
}

// Coalesce collapses fires that arrive while the job is still running into a
// single pending run. When false those fires are skipped.
func Coalesce(v bool) JobOption {
	return func(o *jobOptions) {
		o.coalesce = v
	}
}

// MisfireGrace sets how late a run may start and still execute.
// Zero or negative disables the lateness check.
func MisfireGrace(d time.Duration) JobOption {
	return func(o *jobOptions) {
		o.misfireGrace = d
	}
}
