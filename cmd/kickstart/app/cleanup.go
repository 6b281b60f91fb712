package app

import (
	"context"
	"log/slog"
)

// cleanup releases what serve opened, newest first, when wiring or startup
// fails before the coordinator takes ownership.
type cleanup struct {
	steps []cleanupStep
}

type cleanupStep struct {
	fn   func(ctx context.Context) error
	name string
}

func (c *cleanup) add(name string, fn func(ctx context.Context) error) {
	c.steps = append(c.steps, cleanupStep{name: name, fn: fn})
}

// run closes every registered resource. Failures are logged, not returned:
// the caller is already returning an error.
func (c *cleanup) run(ctx context.Context, log *slog.Logger) {
	for i := len(c.steps) - 1; i >= 0; i-- {
		step := c.steps[i]
		if err := step.fn(ctx); err != nil {
			log.WarnContext(ctx, "cleanup failed", slog.String("resource", step.name), slog.Any("error", err))
		}
	}
	c.steps = nil
}
