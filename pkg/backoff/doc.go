// Package backoff provides a capped doubling delay policy for retry loops.
//
// A [Policy] is immutable and validated once at construction. It maps the
// current delay to the next one with [Policy.Next], never leaving the
// [initial, max] range. A [Delay] carries the mutable state for a single loop
// and satisfies [github.com/cenkalti/backoff/v5.BackOff], so it can drive
// backoff.Retry as well as hand-written loops.
//
// # Usage
//
//	policy, err := backoff.New(time.Second, 30*time.Second)
//	if err != nil {
//	    return err // max < initial is rejected, never clamped
//	}
//
//	delay := policy.NewDelay()
//	for {
//	    if err := fetch(); err != nil {
//	        sleep(ctx, delay.Advance()) // 1s, 2s, 4s ... 30s
//	        continue
//	    }
//	    delay.Reset()
//	}
//
// # Error Handling
//
//   - [ErrInvalidConfig] - base error for every construction failure
//   - [ErrInvalidInitial] - initial delay is not positive
//   - [ErrInvalidMax] - max delay is lower than the initial delay
package backoff
