package poller

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of poller metrics.
const MeterName = "github.com/dmitrymomot/kickstart/poller"

// Fetch outcomes recorded on the fetches counter.
const (
	outcomeError = "error"
	outcomeEmpty = "empty"
	outcomeBatch = "batch"
)

type metrics struct {
	fetches  metric.Int64Counter
	messages metric.Int64Counter
	backoff  metric.Float64Histogram
}

// newMetrics returns nil (no-op metrics) when provider is nil.
func newMetrics(provider metric.MeterProvider) (*metrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(MeterName)

	fetches, err := meter.Int64Counter(
		"kickstart_poller_fetches_total",
		metric.WithDescription("Number of fetch attempts by outcome"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, err
	}

	messages, err := meter.Int64Counter(
		"kickstart_poller_messages_total",
		metric.WithDescription("Number of processed messages by result"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, err
	}

	backoff, err := meter.Float64Histogram(
		"kickstart_poller_backoff_seconds",
		metric.WithDescription("Delays slept between fetches"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(1, 2, 4, 8, 16, 32, 64, 128, 300),
	)
	if err != nil {
		return nil, err
	}

	return &metrics{fetches: fetches, messages: messages, backoff: backoff}, nil
}

func (m *metrics) recordFetch(ctx context.Context, poller, outcome string) {
	if m == nil {
		return
	}
	m.fetches.Add(ctx, 1, metric.WithAttributes(
		attribute.String("poller", poller),
		attribute.String("outcome", outcome),
	))
}

func (m *metrics) recordMessage(ctx context.Context, poller string, success bool) {
	if m == nil {
		return
	}
	m.messages.Add(ctx, 1, metric.WithAttributes(
		attribute.String("poller", poller),
		attribute.Bool("success", success),
	))
}

func (m *metrics) recordBackoff(ctx context.Context, poller string, d time.Duration) {
	if m == nil {
		return
	}
	m.backoff.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("poller", poller)))
}
