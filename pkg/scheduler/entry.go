package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// guard allows one running instance per job name. It outlives entries so a
// replaced job cannot start while the previous registration is still running.
type guard struct {
	pending *entry
	mu      sync.Mutex
	running bool
}

// entry is the cron.Job registered for one named job.
// It enforces the misfire grace; the shared guard enforces a single instance.
type entry struct {
	next     time.Time
	schedule cron.Schedule
	s        *Scheduler
	fn       JobFunc
	guard    *guard
	name     string
	spec     string
	opts     jobOptions
	id       cron.EntryID
	mu       sync.Mutex
	removed  bool
}

// Run is called by cron on every fire.
func (e *entry) Run() {
	e.fire(e.s.now())
}

func (e *entry) fire(now time.Time) {
	e.mu.Lock()
	due := e.next
	e.next = e.schedule.Next(now.In(e.s.location))
	removed := e.removed
	e.mu.Unlock()

	if removed {
		return
	}

	if !due.IsZero() && e.opts.misfireGrace > 0 {
		if late := now.Sub(due); late > e.opts.misfireGrace {
			e.s.logger.Warn("job run missed",
				slog.String("job", e.name),
				slog.Time("scheduled_at", due),
				slog.Duration("late", late),
				slog.Duration("misfire_grace", e.opts.misfireGrace),
			)
			e.s.metrics.recordRun(context.Background(), e.name, StatusMissed)
			e.s.recordOutcome(e, now, StatusMissed, nil)
			return
		}
	}

	e.trigger(now)
}

// trigger runs the job unless an instance is already executing, in which
// case the fire is queued (coalesce) or dropped. A queued run uses the
// registration that requested it.
func (e *entry) trigger(now time.Time) {
	g := e.guard
	g.mu.Lock()
	if g.running {
		if e.opts.coalesce {
			g.pending = e
			g.mu.Unlock()
			e.s.logger.Debug("job still running, run coalesced", slog.String("job", e.name))
			return
		}
		g.mu.Unlock()
		e.s.logger.Warn("job still running, run skipped", slog.String("job", e.name))
		e.s.metrics.recordRun(context.Background(), e.name, StatusSkipped)
		return
	}
	g.running = true
	g.mu.Unlock()

	for cur, first := e, true; ; first = false {
		if first || !cur.isRemoved() {
			cur.execute(now)
		}

		g.mu.Lock()
		next := g.pending
		g.pending = nil
		if next == nil || e.s.stopping.Load() {
			g.running = false
			g.mu.Unlock()
			return
		}
		g.mu.Unlock()
		cur = next
		now = e.s.now()
	}
}

func (e *entry) isRemoved() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.removed
}

func (e *entry) execute(now time.Time) {
	ctx := e.s.runContext()
	log := e.s.logger.With(slog.String("job", e.name))

	log.InfoContext(ctx, "job started")
	start := time.Now()
	err := e.call(ctx)
	elapsed := time.Since(start)

	status := StatusSucceeded
	if err != nil {
		status = StatusFailed
		log.ErrorContext(ctx, "job failed", slog.Any("error", err), slog.Duration("duration", elapsed))
	} else {
		log.InfoContext(ctx, "job finished", slog.Duration("duration", elapsed))
	}

	e.s.metrics.recordRun(ctx, e.name, status)
	e.s.metrics.recordDuration(ctx, e.name, elapsed, err == nil)
	e.s.recordOutcome(e, now, status, err)
}

func (e *entry) call(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrJobPanic, r)
		}
	}()
	return e.fn(ctx)
}
