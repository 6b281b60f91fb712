package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/kickstart/pkg/logger"
)

// Coordinator owns the background subsystems of the service: it starts the
// poll loop and the scheduler together and tears them down in a fixed order.
type Coordinator struct {
	poller               Runner
	scheduler            Scheduler
	logger               *slog.Logger
	cancelPoller         context.CancelFunc
	pollerDone           chan error
	resources            []resource
	schedulerStopTimeout time.Duration
	mu                   sync.Mutex
	started              bool
	pollerExited         atomic.Bool
}

// New creates a Coordinator. Nothing runs until Start.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		logger:               logger.NewNope(),
		schedulerStopTimeout: DefaultSchedulerStopTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logger.Component(c.logger, "lifecycle")
	return c
}

// Started reports whether Start succeeded and Stop has not run since.
func (c *Coordinator) Started() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

// PollerRunning reports whether the poll loop is executing.
// It is false when no poller is configured.
func (c *Coordinator) PollerRunning() bool {
	return c.poller != nil && c.poller.Running()
}

// Healthcheck returns a readiness check that fails once the coordinator is
// started but its poll loop has exited.
func (c *Coordinator) Healthcheck() func(ctx context.Context) error {
	return func(context.Context) error {
		if c.poller != nil && c.Started() && c.pollerExited.Load() {
			return ErrPollerNotRunning
		}
		return nil
	}
}

// Start launches the poll loop and starts the scheduler.
// The poll loop outlives ctx; only Stop ends it.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return ErrAlreadyStarted
	}

	if c.poller != nil {
		pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		done := make(chan error, 1)
		c.cancelPoller = cancel
		c.pollerDone = done
		c.pollerExited.Store(false)

		go func() {
			err := c.poller.Run(pollCtx)
			c.pollerExited.Store(true)
			if err != nil && !errors.Is(err, context.Canceled) {
				c.logger.ErrorContext(pollCtx, "poll loop exited", slog.Any("error", err))
			}
			done <- err
		}()
	}

	if c.scheduler != nil && !c.scheduler.Running() {
		if err := c.scheduler.Start(ctx); err != nil {
			if c.cancelPoller != nil {
				c.cancelPoller()
				<-c.pollerDone
				c.cancelPoller, c.pollerDone = nil, nil
			}
			return errors.Join(ErrSchedulerStart, err)
		}
	}

	c.started = true
	c.logger.InfoContext(ctx, "background services started",
		slog.Bool("poller", c.poller != nil),
		slog.Bool("scheduler", c.scheduler != nil),
	)
	return nil
}

// Stop shuts the background services down. Before Start it does nothing.
// Every step runs even if an earlier one fails; failures are joined.
func (c *Coordinator) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return nil
	}
	c.started = false

	var errs []error
	if err := c.stopPoller(ctx); err != nil {
		c.logger.ErrorContext(ctx, "failed to stop poller", slog.Any("error", err))
		errs = append(errs, err)
	}
	if err := c.stopScheduler(ctx); err != nil {
		c.logger.ErrorContext(ctx, "failed to stop scheduler", slog.Any("error", err))
		errs = append(errs, err)
	}
	for _, r := range c.resources {
		if err := r.close(ctx); err != nil {
			c.logger.ErrorContext(ctx, "failed to close resource",
				slog.String("resource", r.name),
				slog.Any("error", err),
			)
			errs = append(errs, fmt.Errorf("%w %q: %w", ErrResourceClose, r.name, err))
		}
	}

	if len(errs) == 0 {
		c.logger.InfoContext(ctx, "background services stopped")
	}
	return errors.Join(errs...)
}

func (c *Coordinator) stopPoller(ctx context.Context) error {
	if c.cancelPoller == nil {
		return nil
	}
	c.cancelPoller()
	done := c.pollerDone
	c.cancelPoller, c.pollerDone = nil, nil

	select {
	case err := <-done:
		if err == nil || errors.Is(err, context.Canceled) {
			return nil
		}
		return errors.Join(ErrPollerStop, err)
	case <-ctx.Done():
		return errors.Join(ErrPollerStop, ctx.Err())
	}
}

func (c *Coordinator) stopScheduler(ctx context.Context) error {
	if c.scheduler == nil || !c.scheduler.Running() {
		return nil
	}
	// The poller may have used up ctx; running jobs still get their own budget.
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.schedulerStopTimeout)
	defer cancel()

	if err := c.scheduler.Stop(stopCtx); err != nil {
		return errors.Join(ErrSchedulerStop, err)
	}
	return nil
}
