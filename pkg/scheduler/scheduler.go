package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/kickstart/pkg/logger"
)

// maxCatchUp caps how many missed occurrences are replayed at Start.
const maxCatchUp = 100

// storeTimeout bounds store writes issued from job goroutines.
const storeTimeout = 5 * time.Second

// JobFunc is the unit of work a job executes.
type JobFunc func(ctx context.Context) error

// Job is implemented by types that carry their own name and schedule.
type Job interface {
	Name() string
	Schedule() string
	Run(ctx context.Context) error
}

// JobInfo describes a registered job.
type JobInfo struct {
	Next         time.Time
	Name         string
	Schedule     string
	MisfireGrace time.Duration
	Coalesce     bool
}

// Scheduler triggers registered jobs on cron schedules.
type Scheduler struct {
	cron       *cron.Cron
	store      Store
	logger     *slog.Logger
	metrics    *metrics
	location   *time.Location
	now        func() time.Time
	jobs       map[string]*entry
	guards     map[string]*guard
	runCtx     context.Context
	cancelRuns context.CancelFunc
	defaults   jobOptions
	catchUp    sync.WaitGroup
	mu         sync.Mutex
	running    bool
	stopping   atomic.Bool
}

// New creates a stopped Scheduler.
func New(opts ...Option) (*Scheduler, error) {
	o := &options{
		logger:   logger.NewNope(),
		store:    NewMemoryStore(),
		location: time.Local,
		defaults: jobOptions{coalesce: true, misfireGrace: DefaultMisfireGrace},
	}
	for _, opt := range opts {
		opt(o)
	}

	m, err := newMetrics(o.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("scheduler: create metrics: %w", err)
	}

	log := logger.Component(o.logger, "scheduler")

	return &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(o.location),
			cron.WithLogger(cronLogger{log: log}),
		),
		store:    o.store,
		logger:   log,
		metrics:  m,
		location: o.location,
		now:      time.Now,
		jobs:     make(map[string]*entry),
		guards:   make(map[string]*guard),
		defaults: o.defaults,
		runCtx:   context.Background(),
	}, nil
}

// Register adds a job triggered by the cron expression spec.
// It may be called before or after Start.
func (s *Scheduler) Register(name, spec string, fn JobFunc, opts ...JobOption) error {
	if name == "" {
		return ErrEmptyJobName
	}
	if fn == nil {
		return ErrNilJobFunc
	}
	schedule, err := parseSchedule(spec)
	if err != nil {
		return fmt.Errorf("job %q: %w", name, err)
	}

	o := s.defaults
	for _, opt := range opts {
		opt(&o)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.jobs[name]; ok {
		if !o.replaceExisting {
			return fmt.Errorf("%w: %s", ErrJobExists, name)
		}
		s.removeLocked(old)
	}

	g, ok := s.guards[name]
	if !ok {
		g = &guard{}
		s.guards[name] = g
	}

	e := &entry{
		s:        s,
		guard:    g,
		name:     name,
		spec:     spec,
		schedule: schedule,
		fn:       fn,
		opts:     o,
	}
	if s.running {
		e.next = schedule.Next(s.now().In(s.location))
	}
	e.id = s.cron.Schedule(schedule, e)
	s.jobs[name] = e

	if s.running {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		s.syncState(ctx, e)
		cancel()
	}

	s.logger.Info("job registered",
		slog.String("job", name),
		slog.String("schedule", spec),
		slog.Bool("coalesce", o.coalesce),
		slog.Duration("misfire_grace", o.misfireGrace),
	)
	return nil
}

// RegisterJob registers j under its own name and schedule.
func (s *Scheduler) RegisterJob(j Job, opts ...JobOption) error {
	if j == nil {
		return ErrNilJobFunc
	}
	return s.Register(j.Name(), j.Schedule(), j.Run, opts...)
}

// Remove unregisters a job. A run already in progress completes.
func (s *Scheduler) Remove(name string) error {
	s.mu.Lock()
	e, ok := s.jobs[name]
	if ok {
		s.removeLocked(e)
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := s.store.Delete(ctx, name); err != nil {
		s.logger.Warn("failed to delete job state", slog.String("job", name), slog.Any("error", err))
	}
	s.logger.Info("job removed", slog.String("job", name))
	return nil
}

func (s *Scheduler) removeLocked(e *entry) {
	s.cron.Remove(e.id)
	e.mu.Lock()
	e.removed = true
	e.mu.Unlock()
	delete(s.jobs, e.name)
}

// Jobs lists registered jobs ordered by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobInfo, 0, len(s.jobs))
	for _, e := range s.jobs {
		e.mu.Lock()
		out = append(out, JobInfo{
			Name:         e.name,
			Schedule:     e.spec,
			Next:         e.next,
			Coalesce:     e.opts.coalesce,
			MisfireGrace: e.opts.misfireGrace,
		})
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Running reports whether the scheduler is triggering jobs.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start begins triggering jobs. Occurrences missed while the process was
// down are replayed in the background according to each job's misfire grace.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyStarted
	}

	s.runCtx, s.cancelRuns = context.WithCancel(context.WithoutCancel(ctx))
	s.stopping.Store(false)

	now := s.now().In(s.location)
	for _, e := range s.jobs {
		missed := s.missedRuns(ctx, e, now)

		e.mu.Lock()
		e.next = e.schedule.Next(now)
		e.mu.Unlock()
		s.syncState(ctx, e)

		if missed > 0 {
			s.catchUp.Add(1)
			go func(e *entry, n int) {
				defer s.catchUp.Done()
				for range n {
					if s.stopping.Load() {
						return
					}
					e.trigger(e.s.now())
				}
			}(e, missed)
		}
	}

	s.cron.Start()
	s.running = true
	s.logger.InfoContext(ctx, "scheduler started", slog.Int("jobs", len(s.jobs)))
	return nil
}

// Stop halts triggering and waits for in-flight runs until ctx is done.
// On timeout the jobs' context is cancelled and ErrStopTimeout is returned.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.running = false
	s.stopping.Store(true)
	cronDone := s.cron.Stop()
	cancelRuns := s.cancelRuns
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.catchUp.Wait()
		close(done)
	}()

	select {
	case <-done:
		cancelRuns()
		s.logger.InfoContext(ctx, "scheduler stopped")
		return nil
	case <-ctx.Done():
		cancelRuns()
		s.logger.WarnContext(ctx, "scheduler stop timed out, running jobs cancelled")
		return errors.Join(ErrStopTimeout, ctx.Err())
	}
}

func (s *Scheduler) runContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runCtx
}

// missedRuns counts persisted occurrences that came due while the process was
// down and are still within grace. Coalescing jobs replay at most once.
func (s *Scheduler) missedRuns(ctx context.Context, e *entry, now time.Time) int {
	st, err := s.store.Load(ctx, e.name)
	if err != nil {
		if !errors.Is(err, ErrJobNotFound) {
			s.logger.WarnContext(ctx, "failed to load job state", slog.String("job", e.name), slog.Any("error", err))
		}
		return 0
	}
	if st.Schedule != e.spec || st.NextRunAt.IsZero() || st.NextRunAt.After(now) {
		return 0
	}

	grace := e.opts.misfireGrace
	skipped := false
	t := st.NextRunAt
	if grace > 0 && now.Sub(t) > grace {
		skipped = true
		t = e.schedule.Next(now.Add(-grace - time.Second))
	}

	due := 0
	for ; !t.After(now) && due < maxCatchUp; t = e.schedule.Next(t) {
		if grace > 0 && now.Sub(t) > grace {
			skipped = true
			continue
		}
		due++
	}

	if skipped {
		s.logger.WarnContext(ctx, "missed job runs outside misfire grace skipped",
			slog.String("job", e.name),
			slog.Time("missed_since", st.NextRunAt),
		)
		s.metrics.recordRun(ctx, e.name, StatusMissed)
	}
	if due > 1 && e.opts.coalesce {
		due = 1
	}
	if due > 0 {
		s.logger.InfoContext(ctx, "replaying missed job runs", slog.String("job", e.name), slog.Int("runs", due))
	}
	return due
}

// syncState writes the job's schedule and next fire time, keeping the last run fields.
func (s *Scheduler) syncState(ctx context.Context, e *entry) {
	st, err := s.store.Load(ctx, e.name)
	if err != nil && !errors.Is(err, ErrJobNotFound) {
		s.logger.WarnContext(ctx, "failed to load job state", slog.String("job", e.name), slog.Any("error", err))
	}
	if errors.Is(err, ErrJobNotFound) || st.LastStatus == "" {
		st.LastStatus = StatusScheduled
	}

	e.mu.Lock()
	st.Name = e.name
	st.Schedule = e.spec
	st.NextRunAt = e.next
	e.mu.Unlock()
	st.UpdatedAt = s.now()

	if err := s.store.Save(ctx, st); err != nil {
		s.logger.WarnContext(ctx, "failed to save job state", slog.String("job", e.name), slog.Any("error", err))
	}
}

// recordOutcome persists the result of a trigger.
func (s *Scheduler) recordOutcome(e *entry, ranAt time.Time, status string, runErr error) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	e.mu.Lock()
	st := JobState{
		Name:       e.name,
		Schedule:   e.spec,
		NextRunAt:  e.next,
		LastRunAt:  ranAt,
		LastStatus: status,
		UpdatedAt:  s.now(),
	}
	e.mu.Unlock()
	if runErr != nil {
		st.LastError = runErr.Error()
	}

	if err := s.store.Save(ctx, st); err != nil {
		s.logger.Warn("failed to save job state", slog.String("job", e.name), slog.Any("error", err))
	}
}
