package telemetry

import "errors"

var (
	ErrCreateResource = errors.New("telemetry: failed to create resource")
	ErrCreateExporter = errors.New("telemetry: failed to create metrics exporter")
	ErrShutdown       = errors.New("telemetry: failed to shut down meter provider")
)
