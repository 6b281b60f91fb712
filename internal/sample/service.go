package sample

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/kickstart/pkg/logger"
)

// Service implements the sample use cases on top of a Repository.
type Service struct {
	repo   Repository
	logger *slog.Logger
	newID  func() uuid.UUID
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIDGenerator overrides uuid.New for new sample ids.
func WithIDGenerator(fn func() uuid.UUID) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService creates a Service.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo:   repo,
		logger: logger.NewNope(),
		newID:  uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logger.Component(s.logger, "sample")
	return s
}

// Create validates req and stores a new active sample.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Sample, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	entity := &Sample{
		ID:            s.newID(),
		IsActive:      true,
		RequiredUUID:  *req.RequiredUUID,
		OptionalUUID:  req.OptionalUUID,
		StringField:   req.StringField,
		OptionalText:  req.OptionalText,
		RequiredJSONB: req.RequiredJSONB,
		OptionalJSONB: req.OptionalJSONB,
		BigInt:        1,
	}
	if req.BigInt != nil {
		entity.BigInt = *req.BigInt
	}

	if err := s.repo.Create(ctx, entity); err != nil {
		s.logger.ErrorContext(ctx, "create sample failed", slog.Any("error", err))
		return nil, err
	}
	s.logger.InfoContext(ctx, "sample created", slog.String("id", entity.ID.String()))
	return entity, nil
}

// Get returns an active, non-deleted sample.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Sample, error) {
	entity, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		s.logger.WarnContext(ctx, "sample not found", slog.String("id", id.String()))
	}
	return entity, err
}

// List returns one page of samples, newest first, and the total count.
func (s *Service) List(ctx context.Context, p ListParams) (*ListResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, p.IncludeInactive)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "samples listed",
		slog.Int("count", len(items)),
		slog.Int("skip", p.Skip),
		slog.Int("limit", p.Limit),
	)
	return &ListResult{Items: items, Total: total, Skip: p.Skip, Limit: p.Limit}, nil
}

// Search matches term case-insensitively against string_field.
func (s *Service) Search(ctx context.Context, term string, skip, limit int) ([]Sample, error) {
	if err := (ListParams{Skip: skip, Limit: limit}).Validate(); err != nil {
		return nil, err
	}
	return s.repo.Search(ctx, term, skip, limit)
}

// Update applies the fields set in req.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Sample, error) {
	if req.Empty() {
		return nil, ErrNoFieldsToUpdate
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	entity, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "sample updated", slog.String("id", id.String()))
	return entity, nil
}

// Deactivate marks a sample inactive without deleting it.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	inactive := false
	_, err := s.Update(ctx, id, UpdateRequest{IsActive: &inactive})
	return err
}

// Delete soft-deletes a sample, or removes the row when hard is set.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, hard bool) (*DeleteResult, error) {
	if err := s.repo.Delete(ctx, id, hard); err != nil {
		return nil, err
	}

	kind := "soft deleted"
	if hard {
		kind = "permanently deleted"
	}
	s.logger.InfoContext(ctx, "sample deleted", slog.String("id", id.String()), slog.Bool("hard", hard))
	return &DeleteResult{
		Success: true,
		Message: "Sample entity " + kind + " successfully",
		ID:      id,
	}, nil
}

// CountActive returns the number of active, non-deleted samples.
func (s *Service) CountActive(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx, false)
}
