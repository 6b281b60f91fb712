package middlewares

import (
	"log/slog"
	"runtime"

	"github.com/dmitrymomot/kickstart/internal"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

// RecoverConfig configures the recover middleware.
type RecoverConfig struct {
	StackSize         int  // Max stack trace size (default: 4096)
	DisablePrintStack bool // Skip stack capture
}

// RecoverOption configures RecoverConfig.
type RecoverOption func(*RecoverConfig)

// WithRecoverStackSize sets the maximum stack trace size.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.StackSize = size
	}
}

// WithRecoverDisablePrintStack skips stack capture; PanicError.Stack stays nil.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.DisablePrintStack = true
	}
}

// Recover returns middleware that turns a handler panic into a *PanicError
// for the ErrorHandler. The stack is captured unless disabled; logging is
// left to the ErrorHandler so each panic is reported once.
func Recover(opts ...RecoverOption) internal.Middleware {
	cfg := &RecoverConfig{
		StackSize: DefaultStackSize,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					var stack []byte
					if !cfg.DisablePrintStack {
						size := cfg.StackSize
						if size <= 0 {
							size = DefaultStackSize
						}
						stack = make([]byte, size)
						stack = stack[:runtime.Stack(stack, false)]
					}

					c.LogDebug("panic recovered",
						slog.Any("panic", r),
						slog.String("method", c.Request().Method),
						slog.String("path", c.Request().URL.Path),
					)

					err = &PanicError{
						Value: r,
						Stack: stack,
					}
				}
			}()

			return next(c)
		}
	}
}
