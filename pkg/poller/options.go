package poller

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
)

const (
	defaultName           = "default"
	defaultInitialBackoff = time.Second
	defaultMaxBackoff     = 30 * time.Second
)

type options struct {
	logger         *slog.Logger
	meterProvider  metric.MeterProvider
	name           string
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// Option configures a Poller.
type Option func(*options)

// WithBackoff sets the delay bounds used after failed or empty fetches.
// Default: 1s initial, 30s max. New rejects max < initial.
func WithBackoff(initial, max time.Duration) Option {
	return func(o *options) {
		o.initialBackoff = initial
		o.maxBackoff = max
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMeterProvider enables fetch, message and backoff metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithName labels logs and metrics when several pollers share a process.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}
