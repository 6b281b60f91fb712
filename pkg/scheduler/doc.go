// Package scheduler runs named jobs on cron schedules.
//
// It is built on github.com/robfig/cron/v3 and adds the rules a background
// worker needs on top of plain cron triggering:
//
//   - at most one instance of a job runs at a time
//   - fires that land while a run is in progress are coalesced into one
//     pending run, or skipped when coalescing is off
//   - a fire that starts later than its misfire grace is skipped
//   - errors and panics are logged and never deregister the job
//   - job state is persisted to a [Store] so runs missed while the process was
//     down can be replayed at [Scheduler.Start]
//
// Expressions use the standard five fields, an optional leading seconds field,
// or descriptors such as @daily and @every 15m.
//
// # Usage
//
//	s, err := scheduler.New(
//	    scheduler.WithLogger(log),
//	    scheduler.WithStore(scheduler.NewPostgresStore(pool, "scheduler")),
//	)
//	if err != nil {
//	    return err
//	}
//
//	if err := s.Register("cleanup", "*/5 * * * *", cleanup,
//	    scheduler.ReplaceExisting(true),
//	); err != nil {
//	    return err
//	}
//
//	if err := s.Start(ctx); err != nil {
//	    return err
//	}
//	defer s.Stop(shutdownCtx)
//
// # Error Handling
//
// Registration errors wrap [ErrInvalidSchedule] or [ErrJobExists].
// [Scheduler.Stop] returns [ErrNotStarted] when called before Start and
// [ErrStopTimeout] when running jobs outlive its context; in that case the
// context passed to those jobs is cancelled.
package scheduler
