package poller

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/dmitrymomot/kickstart/pkg/backoff"
)

var errSource = errors.New("source unavailable")

type step struct {
	err   error
	batch []Message
}

// scriptedFetcher replays steps in order and cancels the loop once they run out.
func scriptedFetcher(cancel context.CancelFunc, steps ...step) (Fetcher, func() int) {
	var (
		mu    sync.Mutex
		calls int
	)
	f := FetcherFunc(func(ctx context.Context) ([]Message, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls > len(steps) {
			cancel()
			return nil, nil
		}
		s := steps[calls-1]
		return s.batch, s.err
	})
	return f, func() int {
		mu.Lock()
		defer mu.Unlock()
		return calls
	}
}

type sleepRecorder struct {
	delays []time.Duration
	mu     sync.Mutex
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *sleepRecorder) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

func msgs(ids ...string) []Message {
	out := make([]Message, 0, len(ids))
	for _, id := range ids {
		out = append(out, Message{ID: id, Body: []byte(id)})
	}
	return out
}

func noopProcessor() Processor {
	return ProcessorFunc(func(context.Context, Message) error { return nil })
}

func newTestPoller(t *testing.T, f Fetcher, p Processor, opts ...Option) (*Poller, *sleepRecorder) {
	t.Helper()

	pl, err := New(f, p, opts...)
	require.NoError(t, err)

	rec := &sleepRecorder{}
	pl.sleep = rec.sleep
	return pl, rec
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires fetcher", func(t *testing.T) {
		t.Parallel()

		_, err := New(nil, noopProcessor())
		require.ErrorIs(t, err, ErrNilFetcher)
	})

	t.Run("requires processor", func(t *testing.T) {
		t.Parallel()

		_, err := New(FetcherFunc(func(context.Context) ([]Message, error) { return nil, nil }), nil)
		require.ErrorIs(t, err, ErrNilProcessor)
	})

	t.Run("rejects max lower than initial", func(t *testing.T) {
		t.Parallel()

		_, err := New(
			FetcherFunc(func(context.Context) ([]Message, error) { return nil, nil }),
			noopProcessor(),
			WithBackoff(10*time.Second, time.Second),
		)
		require.ErrorIs(t, err, backoff.ErrInvalidConfig)
	})
}

func TestRun_BackoffSequence(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher, calls := scriptedFetcher(cancel,
		step{err: errSource},
		step{err: errSource},
		step{},
		step{batch: msgs("a")},
		step{err: errSource},
	)

	p, rec := newTestPoller(t, fetcher, noopProcessor(), WithBackoff(time.Second, 30*time.Second))

	err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	// error -> 1s, error -> 2s, empty -> 4s then reset, batch -> no sleep, error -> 1s
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, time.Second}, rec.recorded())
	assert.Equal(t, 6, calls())
	assert.False(t, p.Running())
}

func TestRun_DelayStaysWithinBounds(t *testing.T) {
	t.Parallel()

	const initial, ceiling = 2 * time.Second, 20 * time.Second

	rng := rand.New(rand.NewPCG(1, 2))
	steps := make([]step, 200)
	successAt := make(map[int]bool)
	for i := range steps {
		switch rng.IntN(3) {
		case 0:
			steps[i] = step{err: errSource}
		case 1:
			steps[i] = step{}
			successAt[i] = true
		default:
			steps[i] = step{batch: msgs("x")}
			successAt[i] = true
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher, _ := scriptedFetcher(cancel, steps...)
	p, rec := newTestPoller(t, fetcher, noopProcessor(), WithBackoff(initial, ceiling))

	require.ErrorIs(t, p.Run(ctx), context.Canceled)

	delays := rec.recorded()
	require.NotEmpty(t, delays)
	for _, d := range delays {
		assert.GreaterOrEqual(t, d, initial)
		assert.LessOrEqual(t, d, ceiling)
	}

	// Replay the script: the first sleep after any success must be the initial delay.
	idx := 0
	prevSuccess := true
	for i, s := range steps {
		if len(s.batch) > 0 {
			prevSuccess = true
			continue
		}
		if prevSuccess {
			assert.Equal(t, initial, delays[idx], "sleep %d (step %d) should start from initial", idx, i)
		}
		prevSuccess = successAt[i]
		idx++
	}
}

func TestRun_IsolatesMessageFailures(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher, calls := scriptedFetcher(cancel,
		step{batch: msgs("1", "2", "3")},
		step{batch: msgs("4")},
	)

	var (
		mu   sync.Mutex
		seen []string
	)
	processor := ProcessorFunc(func(_ context.Context, m Message) error {
		mu.Lock()
		seen = append(seen, m.ID)
		mu.Unlock()
		if m.ID == "2" {
			return errors.New("bad message")
		}
		return nil
	})

	p, rec := newTestPoller(t, fetcher, processor)

	require.ErrorIs(t, p.Run(ctx), context.Canceled)
	assert.Equal(t, []string{"1", "2", "3", "4"}, seen)
	assert.Equal(t, 3, calls())
	assert.Empty(t, rec.recorded(), "non-empty batches loop without sleeping")
}

func TestRun_RecoversPanics(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var fetches atomic.Int32
	fetcher := FetcherFunc(func(context.Context) ([]Message, error) {
		switch fetches.Add(1) {
		case 1:
			panic("source exploded")
		case 2:
			return msgs("boom", "ok"), nil
		default:
			cancel()
			return nil, nil
		}
	})

	var processed atomic.Int32
	processor := ProcessorFunc(func(_ context.Context, m Message) error {
		if m.ID == "boom" {
			panic("handler exploded")
		}
		processed.Add(1)
		return nil
	})

	p, rec := newTestPoller(t, fetcher, processor, WithBackoff(time.Second, 5*time.Second))

	require.ErrorIs(t, p.Run(ctx), context.Canceled)
	assert.Equal(t, []time.Duration{time.Second}, rec.recorded(), "fetch panic is treated as a fetch error")
	assert.Equal(t, int32(1), processed.Load())
}

func TestRun_CancelDuringSleep(t *testing.T) {
	t.Parallel()

	fetcher := FetcherFunc(func(context.Context) ([]Message, error) {
		return nil, errSource
	})

	p, err := New(fetcher, noopProcessor(), WithBackoff(time.Minute, time.Hour))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, p.Running, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	start := time.Now()
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(start), 500*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	assert.False(t, p.Running())
}

func TestRun_CancelDuringStalledFetch(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)

	fetcher := FetcherFunc(func(context.Context) ([]Message, error) {
		<-release
		return nil, nil
	})

	p, err := New(fetcher, noopProcessor())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, p.Running, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("stalled fetch blocked cancellation")
	}
}

func TestRun_SingleLoop(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)

	fetcher := FetcherFunc(func(ctx context.Context) ([]Message, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil, nil
	})

	p, err := New(fetcher, noopProcessor())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()
	require.Eventually(t, p.Running, time.Second, 5*time.Millisecond)

	require.ErrorIs(t, p.Run(context.Background()), ErrAlreadyRunning)

	p.Stop()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not end the loop")
	}
	assert.False(t, p.Running())

	// Stop without a running loop is harmless.
	p.Stop()
}

func TestRun_RecordsMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher, _ := scriptedFetcher(cancel,
		step{err: errSource},
		step{batch: msgs("1", "2")},
	)
	processor := ProcessorFunc(func(_ context.Context, m Message) error {
		if m.ID == "2" {
			return errors.New("nope")
		}
		return nil
	})

	p, _ := newTestPoller(t, fetcher, processor, WithMeterProvider(mp), WithName("samples"))
	require.ErrorIs(t, p.Run(ctx), context.Canceled)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	names := make(map[string]bool)
	for _, scope := range rm.ScopeMetrics {
		if scope.Scope.Name != MeterName {
			continue
		}
		for _, m := range scope.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["kickstart_poller_fetches_total"])
	assert.True(t, names["kickstart_poller_messages_total"])
	assert.True(t, names["kickstart_poller_backoff_seconds"])
}
