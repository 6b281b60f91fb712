package events

import (
	"github.com/google/uuid"

	"github.com/dmitrymomot/kickstart/internal/sample"
)

// Event types.
const (
	TypeSampleCreated     = "sample.created"
	TypeSampleDeactivated = "sample.deactivated"
)

// Event is the wire format of a queued sample event.
type Event struct {
	Sample *sample.CreateRequest `json:"sample,omitempty"`
	ID     *uuid.UUID            `json:"id,omitempty"`
	Type   string                `json:"type"`
}

// SampleCreated builds a sample.created event.
func SampleCreated(req sample.CreateRequest) Event {
	return Event{Type: TypeSampleCreated, Sample: &req}
}

// SampleDeactivated builds a sample.deactivated event.
func SampleDeactivated(id uuid.UUID) Event {
	return Event{Type: TypeSampleDeactivated, ID: &id}
}
