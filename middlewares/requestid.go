package middlewares

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/kickstart/internal"
	"github.com/dmitrymomot/kickstart/pkg/logger"
)

// Header names carrying request tracing ids, in both directions.
const (
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"
)

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	Generator func() string // ID generator for missing headers
}

// RequestIDOption configures RequestIDConfig.
type RequestIDOption func(*RequestIDConfig)

// WithRequestIDGenerator sets a custom ID generator function.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		if gen != nil {
			cfg.Generator = gen
		}
	}
}

// RequestID returns middleware that assigns a request id and a correlation id
// to each request. Incoming X-Request-ID and X-Correlation-ID headers are
// kept; missing ones are generated independently. Both ids are stored in the
// request context and echoed as response headers.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := &RequestIDConfig{
		Generator: uuid.NewString,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			assignIDs(c, cfg.Generator)
			return next(c)
		}
	}
}

// assignIDs stores both tracing ids unless an earlier middleware already did.
func assignIDs(c internal.Context, gen func() string) (string, string) {
	reqID := GetRequestID(c)
	if reqID == "" {
		if reqID = c.Header(HeaderRequestID); reqID == "" {
			reqID = gen()
		}
		c.Set(internal.RequestIDKey{}, reqID)
	}

	corrID := GetCorrelationID(c)
	if corrID == "" {
		if corrID = c.Header(HeaderCorrelationID); corrID == "" {
			corrID = gen()
		}
		c.Set(internal.CorrelationIDKey{}, corrID)
	}

	c.SetHeader(HeaderRequestID, reqID)
	c.SetHeader(HeaderCorrelationID, corrID)
	return reqID, corrID
}

// GetRequestID extracts the request ID from the context.
// Returns an empty string if no request ID is set.
func GetRequestID(c internal.Context) string {
	return internal.ContextValue[string](c, internal.RequestIDKey{})
}

// GetCorrelationID extracts the correlation ID from the context.
func GetCorrelationID(c internal.Context) string {
	return internal.ContextValue[string](c, internal.CorrelationIDKey{})
}

// RequestIDExtractor returns a ContextExtractor for logger.New.
// Automatically adds "request_id" to all log entries.
func RequestIDExtractor() logger.ContextExtractor {
	return stringExtractor(internal.RequestIDKey{}, "request_id")
}

// CorrelationIDExtractor adds "correlation_id" to log entries.
func CorrelationIDExtractor() logger.ContextExtractor {
	return stringExtractor(internal.CorrelationIDKey{}, "correlation_id")
}

func stringExtractor(key any, attr string) logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			return slog.String(attr, v), true
		}
		return slog.Attr{}, false
	}
}
