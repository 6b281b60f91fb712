package lifecycle

import "errors"

var (
	ErrAlreadyStarted   = errors.New("lifecycle: already started")
	ErrPollerStop       = errors.New("lifecycle: poller did not stop cleanly")
	ErrPollerNotRunning = errors.New("lifecycle: poll loop is not running")
	ErrSchedulerStart   = errors.New("lifecycle: failed to start scheduler")
	ErrSchedulerStop    = errors.New("lifecycle: failed to stop scheduler")
	ErrResourceClose    = errors.New("lifecycle: failed to close resource")
)
