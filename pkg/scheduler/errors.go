package scheduler

import "errors"

var (
	ErrEmptyJobName    = errors.New("scheduler: job name is required")
	ErrNilJobFunc      = errors.New("scheduler: job function is required")
	ErrInvalidSchedule = errors.New("scheduler: invalid cron expression")
	ErrJobExists       = errors.New("scheduler: job already registered")
	ErrJobNotFound     = errors.New("scheduler: job not found")
	ErrAlreadyStarted  = errors.New("scheduler: already started")
	ErrNotStarted      = errors.New("scheduler: not started")
	ErrStopTimeout     = errors.New("scheduler: timed out waiting for running jobs")
	ErrJobPanic        = errors.New("scheduler: job panicked")
)
