package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"gopkg.in/natefinch/lumberjack.v2"
)

const sentryFlushTimeout = 2 * time.Second

// New builds a logger from cfg. Records go to stdout, to a rotating file when
// cfg.File is set, and to Sentry when a DSN is configured. Context extractors
// apply to every destination.
//
// The returned function closes the log file and flushes Sentry; call it last
// during shutdown.
func New(cfg Config, extractors ...ContextExtractor) (*slog.Logger, func(context.Context) error) {
	var (
		out    io.Writer = os.Stdout
		closer io.Closer
	)
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		out = io.MultiWriter(os.Stdout, file)
		closer = file
	}

	primary := newHandler(cfg, out)
	handler := primary
	sentryHandler := newSentryHandler(cfg.Sentry, primary)
	if sentryHandler != nil {
		handler = newMultiHandler(primary, sentryHandler)
	}

	shutdown := func(ctx context.Context) error {
		if sentryHandler != nil {
			timeout := sentryFlushTimeout
			if deadline, ok := ctx.Deadline(); ok {
				timeout = min(timeout, time.Until(deadline))
			}
			sentry.Flush(timeout)
		}
		if closer != nil {
			if err := closer.Close(); err != nil {
				return errors.Join(ErrCloseOutput, err)
			}
		}
		return nil
	}

	return slog.New(NewLogHandlerDecorator(handler, extractors...)), shutdown
}

// newHandler creates the primary JSON or text handler writing to w.
func newHandler(cfg Config, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if cfg.Format == FormatText {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}
