package scheduler

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of scheduler metrics.
const MeterName = "github.com/dmitrymomot/kickstart/scheduler"

type metrics struct {
	runs     metric.Int64Counter
	duration metric.Float64Histogram
}

// newMetrics returns nil (no-op metrics) when provider is nil.
func newMetrics(provider metric.MeterProvider) (*metrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(MeterName)

	runs, err := meter.Int64Counter(
		"kickstart_scheduler_job_runs_total",
		metric.WithDescription("Number of job triggers by final status"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"kickstart_scheduler_job_duration_seconds",
		metric.WithDescription("Duration of executed job runs in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 300),
	)
	if err != nil {
		return nil, err
	}

	return &metrics{runs: runs, duration: duration}, nil
}

func (m *metrics) recordRun(ctx context.Context, job, status string) {
	if m == nil {
		return
	}
	m.runs.Add(ctx, 1, metric.WithAttributes(
		attribute.String("job", job),
		attribute.String("status", status),
	))
}

func (m *metrics) recordDuration(ctx context.Context, job string, d time.Duration, success bool) {
	if m == nil {
		return
	}
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("job", job),
		attribute.Bool("success", success),
	))
}
