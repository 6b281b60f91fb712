// Package logger provides structured logging with context extraction and Sentry integration.
//
// This package extends the standard library's log/slog with two key capabilities:
// automatic context-based attribute injection and optional Sentry error reporting.
// It is designed for production applications that need consistent, enriched logs
// with minimal boilerplate.
//
// # Overview
//
// The package provides:
//   - Context extractors that automatically inject request-scoped values (e.g., request IDs, user IDs)
//   - A decorator pattern that wraps any slog.Handler to add extraction behavior
//   - Sentry integration for error tracking with graceful fallback when unconfigured
//   - JSON or text output with optional size-based file rotation
//   - Multi-handler support for routing logs to multiple destinations
//
// # Basic Usage
//
// Build a logger from configuration and register the returned shutdown
// function so the log file is closed and Sentry is flushed on exit:
//
//	log, closeLog := logger.New(logger.Config{
//		Level:  "debug",
//		Format: logger.FormatText,
//		File:   "logs/app.log",
//	}, requestIDExtractor)
//	defer closeLog(context.Background())
//
//	ctx := context.WithValue(context.Background(), "request_id", "abc-123")
//	log.InfoContext(ctx, "request processed", slog.Int("status", 200))
//
// Config carries env tags (LOG_LEVEL, LOG_FORMAT, LOG_FILE and the LOG_FILE_*
// rotation settings) so it can be embedded in an application config struct.
// The log file is rotated by lumberjack.
//
// # Sentry Integration
//
// Set Config.Sentry.DSN (SENTRY_DSN) to forward warnings and errors to Sentry.
// Errors create Issues, warnings are stored as logs for context.
// If the DSN is empty or the SDK fails to initialize, logging continues to
// stdout only, so the same code path works in development and production.
//
// # Context Extractors
//
// A ContextExtractor is a function that extracts a log attribute from context:
//
//	type ContextExtractor func(ctx context.Context) (slog.Attr, bool)
//
// Extractors are called on every log call, ensuring fresh values for request-scoped data.
// Return false from the extractor to skip adding the attribute for that log entry.
//
// Common extractors include:
//   - Request ID extractor for HTTP request tracing
//   - User ID extractor for authentication context
//   - Tenant ID extractor for multi-tenant applications
//
// # Handler Decoration
//
// The LogHandlerDecorator can wrap any slog.Handler to add context extraction:
//
//	// Wrap a custom handler
//	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
//	decorated := logger.NewLogHandlerDecorator(jsonHandler, extractors...)
//	log := slog.New(decorated)
//
// This allows using context extractors with any handler implementation.
//
// # Architecture
//
// The package uses several design patterns:
//
// Decorator Pattern: LogHandlerDecorator wraps any slog.Handler, intercepting
// Handle calls to inject extracted attributes before delegating to the underlying handler.
//
// Multi-Handler Pattern: An internal multiHandler forwards logs to multiple destinations,
// enabling simultaneous stdout and Sentry logging.
//
// Graceful Degradation: Sentry integration fails gracefully - if DSN is missing or
// initialization fails, logging continues to stdout without disruption.
package logger
