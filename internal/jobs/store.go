package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/portraitforge/genjobs/internal/docmerge"
)

// Store is a concurrency-safe in-memory job store. Jobs are kept in a map
// keyed by ID with a separate slice maintaining insertion order for
// deterministic listing.
type Store struct {
	mu       sync.RWMutex
	jobs     map[string]*Job
	orderIDs []string // insertion-order job IDs
}

// NewStore returns an initialized Store ready for use.
func NewStore() *Store {
	return &Store{
		jobs:     make(map[string]*Job),
		orderIDs: make([]string, 0),
	}
}

// Create stores a new job. It returns an error if a job with the same ID
// already exists.
func (s *Store) Create(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("job %q already exists", job.ID)
	}
	s.jobs[job.ID] = &job
	s.orderIDs = append(s.orderIDs, job.ID)
	return nil
}

// Get returns a copy of the job with the given ID. The copy is safe to
// mutate without affecting the store.
func (s *Store) Get(id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %q not found", id)
	}
	return copyJob(j), nil
}

// Update applies the mutation function fn to the job identified by id
// under a write lock and stamps UpdatedAt. The function receives the
// stored job pointer, so mutations are applied in place.
func (s *Store) Update(id string, fn func(*Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("job %q not found", id)
	}
	fn(j)
	j.UpdatedAt = time.Now()
	return nil
}

// List returns copies of jobs in insertion order, optionally filtered by
// tenant and state (empty values match everything).
func (s *Store) List(tenantID string, state State) []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Job, 0, len(s.orderIDs))
	for _, id := range s.orderIDs {
		j := s.jobs[id]
		if tenantID != "" && j.TenantID != tenantID {
			continue
		}
		if state != "" && j.State != state {
			continue
		}
		out = append(out, *copyJob(j))
	}
	return out
}

// Handle is the progress-update handle for one job, backed by the store.
// It implements telemetry.ProgressSink.
type Handle struct {
	store *Store
	id    string
}

// Handle returns the progress handle for the job with the given ID.
func (s *Store) Handle(id string) *Handle {
	return &Handle{store: s, id: id}
}

// UpdateProgress records percent and message on the job. The error is
// reported to the caller (telemetry logs and swallows it); a missing job
// must never fail the generation itself.
func (h *Handle) UpdateProgress(_ context.Context, percent int, message string) error {
	return h.store.Update(h.id, func(j *Job) {
		j.Progress = percent
		j.Message = message
	})
}

// copyJob returns an independent copy of src. The overlay document and
// image payload are deep-copied so callers cannot reach store state.
func copyJob(src *Job) *Job {
	dst := *src
	if src.Overlay != nil {
		dst.Overlay = docmerge.Copy(src.Overlay)
	}
	if src.Image != nil {
		img := *src.Image
		img.Data = make([]byte, len(src.Image.Data))
		copy(img.Data, src.Image.Data)
		dst.Image = &img
	}
	return &dst
}
