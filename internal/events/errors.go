package events

import "errors"

var (
	ErrInvalidEvent     = errors.New("events: invalid event payload")
	ErrUnknownEventType = errors.New("events: unknown event type")
	ErrMissingSample    = errors.New("events: sample payload is required")
	ErrMissingSampleID  = errors.New("events: sample id is required")
	ErrFetchFailed      = errors.New("events: failed to fetch from queue")
	ErrPublishFailed    = errors.New("events: failed to publish to queue")
)
