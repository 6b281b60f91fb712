// Package lifecycle starts and stops the background half of the service.
//
// A [Coordinator] runs a poll loop on its own goroutine, starts a job
// scheduler, and on shutdown closes shared resources such as the database
// pool. Stop always walks the same order:
//
//  1. cancel the poll loop and wait for it to return
//  2. stop the scheduler, waiting for in-flight jobs up to a timeout
//  3. close resources in registration order
//
// A failing step is logged and the remaining steps still run. Stop before
// Start is a no-op, so the coordinator can be used unconditionally from an
// HTTP server shutdown hook.
//
// # Usage
//
//	coord := lifecycle.New(
//	    lifecycle.WithPoller(p),
//	    lifecycle.WithScheduler(s),
//	    lifecycle.WithResource("postgres", db.Shutdown(pool)),
//	    lifecycle.WithLogger(log),
//	)
//	if err := coord.Start(ctx); err != nil {
//	    return err
//	}
//	defer coord.Stop(shutdownCtx)
package lifecycle
