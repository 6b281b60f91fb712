package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/kickstart/pkg/backoff"
	"github.com/dmitrymomot/kickstart/pkg/logger"
)

// Poller drives one Fetcher and one Processor.
// A Poller runs at most one loop at a time.
type Poller struct {
	fetcher   Fetcher
	processor Processor
	logger    *slog.Logger
	metrics   *metrics
	cancel    context.CancelFunc
	sleep     func(ctx context.Context, d time.Duration) error
	name      string
	policy    backoff.Policy
	mu        sync.Mutex
	running   atomic.Bool
}

// New creates a Poller. It fails fast on a missing collaborator or invalid backoff bounds.
func New(fetcher Fetcher, processor Processor, opts ...Option) (*Poller, error) {
	if fetcher == nil {
		return nil, ErrNilFetcher
	}
	if processor == nil {
		return nil, ErrNilProcessor
	}

	o := &options{
		logger:         logger.NewNope(),
		name:           defaultName,
		initialBackoff: defaultInitialBackoff,
		maxBackoff:     defaultMaxBackoff,
	}
	for _, opt := range opts {
		opt(o)
	}

	policy, err := backoff.New(o.initialBackoff, o.maxBackoff)
	if err != nil {
		return nil, err
	}

	m, err := newMetrics(o.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("poller: create metrics: %w", err)
	}

	return &Poller{
		fetcher:   fetcher,
		processor: processor,
		policy:    policy,
		logger:    logger.Component(o.logger, "poller").With(slog.String("poller", o.name)),
		metrics:   m,
		name:      o.name,
		sleep:     sleep,
	}, nil
}

// Running reports whether a loop is currently executing.
func (p *Poller) Running() bool {
	return p.running.Load()
}

// Stop cancels the running loop, if any. Run returns context.Canceled afterwards.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
}

// Run executes the poll loop until ctx is cancelled or Stop is called.
// It always returns a non-nil error: the context error on cancellation,
// or ErrAlreadyRunning if another loop owns this Poller.
func (p *Poller) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.running.Load() {
		p.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running.Store(true)
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.cancel = nil
		p.mu.Unlock()
		cancel()
		p.running.Store(false)
	}()

	p.logger.InfoContext(ctx, "polling started",
		slog.Duration("initial_backoff", p.policy.Initial()),
		slog.Duration("max_backoff", p.policy.Max()),
	)

	delay := p.policy.NewDelay()
	for {
		if err := ctx.Err(); err != nil {
			return p.cancelled(ctx, err)
		}

		batch, err := p.fetch(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return p.cancelled(ctx, ctxErr)
		}

		switch {
		case err != nil:
			wait := delay.Advance()
			p.metrics.recordFetch(ctx, p.name, outcomeError)
			p.logger.ErrorContext(ctx, "fetch failed",
				slog.Any("error", err),
				slog.Duration("retry_in", wait),
			)
			if err := p.wait(ctx, wait); err != nil {
				return p.cancelled(ctx, err)
			}

		case len(batch) == 0:
			p.metrics.recordFetch(ctx, p.name, outcomeEmpty)
			if err := p.wait(ctx, delay.Current()); err != nil {
				return p.cancelled(ctx, err)
			}
			delay.Reset()

		default:
			p.metrics.recordFetch(ctx, p.name, outcomeBatch)
			p.processBatch(ctx, batch)
			delay.Reset()
		}
	}
}

// fetch runs the Fetcher off the loop goroutine so a stalled source
// cannot hold back cancellation. An abandoned fetch finishes in the background.
func (p *Poller) fetch(ctx context.Context) ([]Message, error) {
	type result struct {
		err   error
		batch []Message
	}

	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: fmt.Errorf("%w: %v", ErrFetchPanic, r)}
			}
		}()
		batch, err := p.fetcher.Fetch(ctx)
		ch <- result{batch: batch, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.batch, r.err
	}
}

// processBatch hands every message to the Processor in order.
// The batch is always finished; cancellation is picked up at the top of the next cycle.
func (p *Poller) processBatch(ctx context.Context, batch []Message) {
	for i, msg := range batch {
		if err := p.process(ctx, msg); err != nil {
			p.metrics.recordMessage(ctx, p.name, false)
			p.logger.ErrorContext(ctx, "message processing failed",
				slog.String("message_id", msg.ID),
				slog.Int("position", i),
				slog.Int("batch_size", len(batch)),
				slog.Any("error", err),
			)
			continue
		}
		p.metrics.recordMessage(ctx, p.name, true)
	}
}

func (p *Poller) process(ctx context.Context, msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrProcessPanic, r)
		}
	}()
	return p.processor.Process(ctx, msg)
}

func (p *Poller) wait(ctx context.Context, d time.Duration) error {
	p.metrics.recordBackoff(ctx, p.name, d)
	p.logger.DebugContext(ctx, "polling backoff", slog.Duration("delay", d))
	return p.sleep(ctx, d)
}

func (p *Poller) cancelled(ctx context.Context, err error) error {
	p.logger.InfoContext(ctx, "polling cancelled")
	return err
}

// sleep blocks for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
