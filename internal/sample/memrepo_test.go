package sample_test

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/kickstart/internal/sample"
)

// memRepo is an in-memory sample.Repository with the same visibility rules
// as the Postgres implementation.
type memRepo struct {
	rows map[uuid.UUID]sample.Sample
	now  time.Time
	err  error
	mu   sync.Mutex
}

func newMemRepo() *memRepo {
	return &memRepo{
		rows: map[uuid.UUID]sample.Sample{},
		now:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *memRepo) tick() time.Time {
	r.now = r.now.Add(time.Second)
	return r.now
}

func (r *memRepo) Create(_ context.Context, s *sample.Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	s.CreatedOn = r.tick()
	s.ModifiedOn = s.CreatedOn
	r.rows[s.ID] = *s
	return nil
}

func (r *memRepo) Get(_ context.Context, id uuid.UUID) (*sample.Sample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	s, ok := r.rows[id]
	if !ok || !visible(s) {
		return nil, sample.ErrNotFound
	}
	return &s, nil
}

func (r *memRepo) filtered(include func(sample.Sample) bool) []sample.Sample {
	out := []sample.Sample{}
	for _, s := range r.rows {
		if include(s) {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b sample.Sample) int { return b.CreatedOn.Compare(a.CreatedOn) })
	return out
}

func page(items []sample.Sample, skip, limit int) []sample.Sample {
	if skip >= len(items) {
		return []sample.Sample{}
	}
	return items[skip:min(len(items), skip+limit)]
}

func (r *memRepo) List(_ context.Context, p sample.ListParams) ([]sample.Sample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	items := r.filtered(func(s sample.Sample) bool { return p.IncludeInactive || visible(s) })
	return page(items, p.Skip, p.Limit), nil
}

func (r *memRepo) Count(_ context.Context, includeInactive bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	return int64(len(r.filtered(func(s sample.Sample) bool { return includeInactive || visible(s) }))), nil
}

func (r *memRepo) Search(_ context.Context, term string, skip, limit int) ([]sample.Sample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	term = strings.ToLower(term)
	items := r.filtered(func(s sample.Sample) bool {
		return visible(s) && strings.Contains(strings.ToLower(s.StringField), term)
	})
	return page(items, skip, limit), nil
}

func (r *memRepo) Update(_ context.Context, id uuid.UUID, req sample.UpdateRequest) (*sample.Sample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok || !visible(s) {
		return nil, sample.ErrNotFound
	}
	s.RequiredUUID = deref(req.RequiredUUID, s.RequiredUUID)
	if req.OptionalUUID != nil {
		s.OptionalUUID = req.OptionalUUID
	}
	s.StringField = deref(req.StringField, s.StringField)
	if req.OptionalText != nil {
		s.OptionalText = req.OptionalText
	}
	if req.RequiredJSONB != nil {
		s.RequiredJSONB = req.RequiredJSONB
	}
	if req.OptionalJSONB != nil {
		s.OptionalJSONB = req.OptionalJSONB
	}
	s.BigInt = deref(req.BigInt, s.BigInt)
	s.IsActive = deref(req.IsActive, s.IsActive)
	s.ModifiedOn = r.tick()
	r.rows[id] = s
	return &s, nil
}

func (r *memRepo) Delete(_ context.Context, id uuid.UUID, hard bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok || !visible(s) {
		return sample.ErrNotFound
	}
	if hard {
		delete(r.rows, id)
		return nil
	}
	s.IsDeleted = true
	s.IsActive = false
	r.rows[id] = s
	return nil
}

func (r *memRepo) row(id uuid.UUID) (sample.Sample, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	return s, ok
}

func visible(s sample.Sample) bool {
	return s.IsActive && !s.IsDeleted
}

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
