package backoff

import (
	"errors"
	"time"

	cbackoff "github.com/cenkalti/backoff/v5"
)

// Policy doubles a delay on every step and caps it at a ceiling.
type Policy struct {
	initial time.Duration
	max     time.Duration
}

// New validates the bounds and returns a Policy.
// A max lower than initial is a configuration error; it is never clamped.
func New(initial, max time.Duration) (Policy, error) {
	if initial <= 0 {
		return Policy{}, errors.Join(ErrInvalidConfig, ErrInvalidInitial)
	}
	if max < initial {
		return Policy{}, errors.Join(ErrInvalidConfig, ErrInvalidMax)
	}
	return Policy{initial: initial, max: max}, nil
}

// Initial returns the delay a fresh or reset loop starts with.
func (p Policy) Initial() time.Duration {
	return p.initial
}

// Max returns the delay ceiling.
func (p Policy) Max() time.Duration {
	return p.max
}

// Next returns min(current*2, max), clamped into [initial, max].
func (p Policy) Next(current time.Duration) time.Duration {
	if current < p.initial {
		current = p.initial
	}
	// current > max/2 also catches the overflow of current*2.
	if current > p.max/2 {
		return p.max
	}
	return current * 2
}

// Reset returns the initial delay.
func (p Policy) Reset() time.Duration {
	return p.initial
}

// NewDelay returns loop state positioned at the initial delay.
func (p Policy) NewDelay() *Delay {
	return &Delay{policy: p, current: p.initial}
}

// Delay is the mutable backoff state of a single loop.
// It is not safe for concurrent use.
type Delay struct {
	policy  Policy
	current time.Duration
}

var _ cbackoff.BackOff = (*Delay)(nil)

// Current returns the delay the next sleep should use.
func (d *Delay) Current() time.Duration {
	return d.current
}

// Advance returns the current delay and doubles the stored one.
func (d *Delay) Advance() time.Duration {
	cur := d.current
	d.current = d.policy.Next(cur)
	return cur
}

// Reset moves the delay back to the initial value.
func (d *Delay) Reset() {
	d.current = d.policy.Reset()
}

// NextBackOff implements backoff.BackOff.
func (d *Delay) NextBackOff() time.Duration {
	return d.Advance()
}
