package health

import "errors"

var (
	// ErrCheckFailed is returned by Run when any check fails.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout marks a check that did not finish within the timeout.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckPanicked marks a check that panicked; the probe reports it as unhealthy.
	ErrCheckPanicked = errors.New("health: check panicked")
)
