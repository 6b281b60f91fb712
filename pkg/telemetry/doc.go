// Package telemetry wires OpenTelemetry metrics for the service.
//
// [New] builds an SDK meter provider with a Prometheus pull exporter and,
// when an OTLP endpoint is configured, a periodic OTLP/HTTP push exporter.
// Components receive [Provider.MeterProvider] and create their own
// instruments; the HTTP server mounts [Provider.Handler] at the metrics path.
//
// [HTTPMetrics] records request duration, count and in-flight requests for
// a chi router.
package telemetry
