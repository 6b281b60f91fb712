package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Run statuses persisted in JobState.LastStatus.
const (
	StatusScheduled = "scheduled"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusMissed    = "missed"
	StatusSkipped   = "skipped"
)

// JobState is the persisted view of one registered job.
type JobState struct {
	NextRunAt  time.Time
	LastRunAt  time.Time
	UpdatedAt  time.Time
	Name       string
	Schedule   string
	LastStatus string
	LastError  string
}

// Store persists job state so missed runs can be detected across restarts.
// Load returns ErrJobNotFound for unknown names.
type Store interface {
	Save(ctx context.Context, state JobState) error
	Load(ctx context.Context, name string) (JobState, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]JobState, error)
}

// MemoryStore keeps job state in process memory.
type MemoryStore struct {
	jobs map[string]JobState
	mu   sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]JobState)}
}

func (s *MemoryStore) Save(_ context.Context, state JobState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = time.Now()
	}
	s.jobs[state.Name] = state
	return nil
}

func (s *MemoryStore) Load(_ context.Context, name string) (JobState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.jobs[name]
	if !ok {
		return JobState{}, ErrJobNotFound
	}
	return st, nil
}

func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, name)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]JobState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]JobState, 0, len(s.jobs))
	for _, st := range s.jobs {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
