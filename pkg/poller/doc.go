// Package poller runs a fetch-and-dispatch loop over an external message source.
//
// A [Poller] repeatedly asks a [Fetcher] for a batch of messages and hands each
// message, in order, to a [Processor]. Failures are contained where they occur:
//
//   - a failing message is logged and the rest of the batch still runs
//   - a failing fetch is logged, the loop sleeps and the delay doubles (capped)
//   - an empty batch sleeps for the current delay, then resets it
//   - a non-empty batch resets the delay and the loop fetches again immediately
//
// The loop never gives up on its own. It ends only when its context is
// cancelled or [Poller.Stop] is called, and then returns the context error so
// callers can tell a cancellation from a crash. Sleeps and fetches both watch
// the context, so cancellation is observed without waiting out a delay or a
// stalled source.
//
// # Usage
//
//	p, err := poller.New(source, processor,
//	    poller.WithBackoff(time.Second, 30*time.Second),
//	    poller.WithLogger(log),
//	)
//	if err != nil {
//	    return err
//	}
//
//	go func() {
//	    if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
//	        log.Error("poller exited", "error", err)
//	    }
//	}()
//
// A message handler that never returns blocks the loop; handlers should honour
// the context they receive.
package poller
