package telemetry

import "time"

// Config controls metric collection and export.
type Config struct {
	// OTLPEndpoint enables push export when set (host:port, no scheme).
	OTLPEndpoint   string        `env:"OTLP_ENDPOINT"`
	Path           string        `env:"METRICS_PATH" envDefault:"/metrics"`
	ExportInterval time.Duration `env:"OTLP_EXPORT_INTERVAL" envDefault:"60s"`
	Enabled        bool          `env:"METRICS_ENABLED" envDefault:"true"`
	OTLPInsecure   bool          `env:"OTLP_INSECURE" envDefault:"true"`
}
