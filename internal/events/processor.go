package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/kickstart/internal/sample"
	"github.com/dmitrymomot/kickstart/pkg/logger"
	"github.com/dmitrymomot/kickstart/pkg/poller"
)

// SampleService is the part of *sample.Service the processor drives.
type SampleService interface {
	Create(ctx context.Context, req sample.CreateRequest) (*sample.Sample, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// Option configures a SampleProcessor.
type Option func(*SampleProcessor)

// WithLogger sets the processor logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *SampleProcessor) {
		if l != nil {
			p.logger = l
		}
	}
}

// SampleProcessor applies sample events through the sample service.
type SampleProcessor struct {
	svc    SampleService
	logger *slog.Logger
}

var _ poller.Processor = (*SampleProcessor)(nil)

// NewSampleProcessor creates a processor.
func NewSampleProcessor(svc SampleService, opts ...Option) *SampleProcessor {
	p := &SampleProcessor{svc: svc, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logger.Component(p.logger, "sample_processor")
	return p
}

// Process decodes msg and applies it.
func (p *SampleProcessor) Process(ctx context.Context, msg poller.Message) error {
	var ev Event
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		return errors.Join(ErrInvalidEvent, err)
	}

	p.logger.DebugContext(ctx, "processing event",
		slog.String("message_id", msg.ID),
		slog.String("type", ev.Type),
	)

	switch ev.Type {
	case TypeSampleCreated:
		if ev.Sample == nil {
			return ErrMissingSample
		}
		s, err := p.svc.Create(ctx, *ev.Sample)
		if err != nil {
			return fmt.Errorf("events: create sample: %w", err)
		}
		p.logger.InfoContext(ctx, "sample created from event", slog.String("id", s.ID.String()))
	case TypeSampleDeactivated:
		if ev.ID == nil {
			return ErrMissingSampleID
		}
		if err := p.svc.Deactivate(ctx, *ev.ID); err != nil {
			return fmt.Errorf("events: deactivate sample %s: %w", ev.ID, err)
		}
		p.logger.InfoContext(ctx, "sample deactivated from event", slog.String("id", ev.ID.String()))
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEventType, ev.Type)
	}
	return nil
}
