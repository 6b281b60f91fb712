package lifecycle

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSchedulerStopTimeout bounds how long Stop waits for running jobs.
const DefaultSchedulerStopTimeout = 30 * time.Second

// Runner is a blocking loop such as *poller.Poller.
type Runner interface {
	Run(ctx context.Context) error
	Running() bool
}

// Scheduler is a start/stop trigger engine such as *scheduler.Scheduler.
type Scheduler interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Running() bool
}

type resource struct {
	close func(ctx context.Context) error
	name  string
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithPoller sets the poll loop to run in the background.
func WithPoller(r Runner) Option {
	return func(c *Coordinator) {
		c.poller = r
	}
}

// WithScheduler sets the job scheduler.
func WithScheduler(s Scheduler) Option {
	return func(c *Coordinator) {
		c.scheduler = s
	}
}

// WithResource adds a resource closed during Stop, after the scheduler.
// Resources close in the order they were added.
func WithResource(name string, closeFn func(ctx context.Context) error) Option {
	return func(c *Coordinator) {
		if closeFn != nil {
			c.resources = append(c.resources, resource{name: name, close: closeFn})
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSchedulerStopTimeout bounds the wait for in-flight jobs during Stop.
// The budget is independent of the context passed to Stop.
func WithSchedulerStopTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.schedulerStopTimeout = d
		}
	}
}
