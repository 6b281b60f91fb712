package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/dmitrymomot/kickstart/pkg/logger"
)

// Provider owns the process meter provider and its exporters.
type Provider struct {
	provider metric.MeterProvider
	sdk      *sdkmetric.MeterProvider
	handler  http.Handler
	logger   *slog.Logger
}

// Option configures a Provider.
type Option func(*providerConfig)

type providerConfig struct {
	logger         *slog.Logger
	serviceName    string
	serviceVersion string
}

// WithServiceName sets the service.name resource attribute.
func WithServiceName(name string) Option {
	return func(c *providerConfig) {
		c.serviceName = name
	}
}

// WithServiceVersion sets the service.version resource attribute.
func WithServiceVersion(version string) Option {
	return func(c *providerConfig) {
		c.serviceVersion = version
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *providerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates the meter provider described by cfg. When metrics are disabled
// it returns a no-op provider whose Handler answers 404.
// The caller must call Shutdown on exit.
func New(ctx context.Context, cfg Config, opts ...Option) (*Provider, error) {
	pc := &providerConfig{
		logger:         logger.NewNope(),
		serviceName:    "kickstart",
		serviceVersion: "unknown",
	}
	for _, opt := range opts {
		opt(pc)
	}
	log := logger.Component(pc.logger, "telemetry")

	if !cfg.Enabled {
		log.InfoContext(ctx, "metrics disabled, using no-op meter provider")
		return &Provider{
			provider: noop.NewMeterProvider(),
			handler:  http.NotFoundHandler(),
			logger:   log,
		}, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(pc.serviceName),
			semconv.ServiceVersion(pc.serviceVersion),
		),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, errors.Join(ErrCreateResource, err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	pull, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, errors.Join(ErrCreateExporter, err)
	}

	providerOpts := []sdkmetric.Option{
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(pull),
	}

	if cfg.OTLPEndpoint != "" {
		exporterOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			exporterOpts = append(exporterOpts, otlpmetrichttp.WithInsecure())
		}
		push, err := otlpmetrichttp.New(ctx, exporterOpts...)
		if err != nil {
			return nil, errors.Join(ErrCreateExporter, err)
		}
		providerOpts = append(providerOpts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(push, sdkmetric.WithInterval(cfg.ExportInterval)),
		))
	}

	mp := sdkmetric.NewMeterProvider(providerOpts...)
	otel.SetMeterProvider(mp)

	log.InfoContext(ctx, "metrics initialized",
		slog.String("path", cfg.Path),
		slog.String("otlp_endpoint", cfg.OTLPEndpoint),
	)

	return &Provider{
		provider: mp,
		sdk:      mp,
		handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		logger:   log,
	}, nil
}

// MeterProvider returns the provider components create instruments from.
func (p *Provider) MeterProvider() metric.MeterProvider {
	return p.provider
}

// Handler serves the Prometheus scrape endpoint.
func (p *Provider) Handler() http.Handler {
	return p.handler
}

// Shutdown flushes pending exports and releases the provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.sdk == nil {
		return nil
	}
	if err := p.sdk.Shutdown(ctx); err != nil {
		return errors.Join(ErrShutdown, err)
	}
	p.logger.DebugContext(ctx, "meter provider shut down")
	return nil
}
