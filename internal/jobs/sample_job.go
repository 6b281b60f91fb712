// Package jobs holds the cron jobs registered with the scheduler.
package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/kickstart/pkg/logger"
	"github.com/dmitrymomot/kickstart/pkg/scheduler"
)

// SampleJobName is the scheduler id of SampleJob.
const SampleJobName = "sample_job"

// ActiveCounter reports how many samples are active.
type ActiveCounter interface {
	CountActive(ctx context.Context) (int64, error)
}

// SampleJob logs the number of active samples on every run.
type SampleJob struct {
	counter  ActiveCounter
	logger   *slog.Logger
	schedule string
}

var _ scheduler.Job = (*SampleJob)(nil)

// NewSampleJob creates the job with the given cron schedule.
func NewSampleJob(counter ActiveCounter, schedule string, log *slog.Logger) *SampleJob {
	if log == nil {
		log = logger.NewNope()
	}
	return &SampleJob{
		counter:  counter,
		schedule: schedule,
		logger:   log.With(slog.String("job", SampleJobName)),
	}
}

func (j *SampleJob) Name() string     { return SampleJobName }
func (j *SampleJob) Schedule() string { return j.schedule }

func (j *SampleJob) Run(ctx context.Context) error {
	j.logger.InfoContext(ctx, "starting sample job")
	n, err := j.counter.CountActive(ctx)
	if err != nil {
		return fmt.Errorf("sample job: count active samples: %w", err)
	}
	j.logger.InfoContext(ctx, "sample job finished", slog.Int64("active_samples", n))
	return nil
}

// Register adds every job to s, replacing stale definitions persisted by an
// earlier deployment.
func Register(s *scheduler.Scheduler, jobs ...scheduler.Job) error {
	for _, j := range jobs {
		if err := s.RegisterJob(j, scheduler.ReplaceExisting(true)); err != nil {
			return fmt.Errorf("register job %q: %w", j.Name(), err)
		}
	}
	return nil
}
