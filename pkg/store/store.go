// Package store holds room-creation jobs in memory, from registration to
// one-shot result delivery. Nothing is persisted: a job that outlives the
// process is gone, by contract.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/eroom-dev/eroom/pkg/models"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates the job id is not (or no longer) registered.
	ErrNotFound = errors.New("job not found")

	// ErrDuplicateID indicates an id was registered twice.
	ErrDuplicateID = errors.New("job id already registered")

	// ErrIllegalTransition indicates a status update that violates the
	// QUEUED → PROCESSING → (COMPLETED | FAILED) lifecycle.
	ErrIllegalTransition = errors.New("illegal status transition")
)

// job is the internal record. The result document is write-once: it is set
// together with the terminal status and never mutated afterwards.
type job struct {
	status models.JobStatus
	result *models.ResultDocument
}

// Snapshot is a point-in-time view of a job handed to callers.
type Snapshot struct {
	Status models.JobStatus
	Result *models.ResultDocument
}

// Store is the in-memory job registry. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*job
}

// New creates an empty store.
func New() *Store {
	return &Store{jobs: make(map[string]*job)}
}

// Register inserts id in QUEUED state. Fails if the id is already present —
// ids are never reused within a process lifetime.
func (s *Store) Register(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[id]; exists {
		return fmt.Errorf("job %q: %w", id, ErrDuplicateID)
	}
	s.jobs[id] = &job{status: models.StatusQueued}
	return nil
}

// MarkProcessing moves id from QUEUED to PROCESSING.
func (s *Store) MarkProcessing(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("job %q: %w", id, ErrNotFound)
	}
	if !j.status.CanTransitionTo(models.StatusProcessing) {
		return fmt.Errorf("job %q: %s → %s: %w", id, j.status, models.StatusProcessing, ErrIllegalTransition)
	}
	j.status = models.StatusProcessing
	return nil
}

// Complete atomically moves id to COMPLETED and attaches the result document.
func (s *Store) Complete(id string, doc *models.ResultDocument) error {
	return s.finalize(id, models.StatusCompleted, doc)
}

// Fail atomically moves id to FAILED and attaches the error document.
func (s *Store) Fail(id string, doc *models.ResultDocument) error {
	return s.finalize(id, models.StatusFailed, doc)
}

// finalize performs the single terminal write a job is allowed: status flip
// and result document land in one critical section. A second terminal write
// for the same id is rejected.
func (s *Store) finalize(id string, status models.JobStatus, doc *models.ResultDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("job %q: %w", id, ErrNotFound)
	}
	if !j.status.CanTransitionTo(status) {
		return fmt.Errorf("job %q: %s → %s: %w", id, j.status, status, ErrIllegalTransition)
	}
	j.status = status
	j.result = doc
	return nil
}

// Get returns the current state of id without modifying it. The returned
// snapshot shares the (write-once) result document but no mutable state.
func (s *Store) Get(id string) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return Snapshot{}, false
	}
	return Snapshot{Status: j.status, Result: j.result}, true
}

// Collect returns the state of id and, when that state is terminal, removes
// the entry in the same critical section. The first collector of a finished
// job wins; any later call reports a miss. This is what gives results their
// deliver-once semantics.
func (s *Store) Collect(id string) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return Snapshot{}, false
	}
	snap := Snapshot{Status: j.status, Result: j.result}
	if j.status.Terminal() {
		delete(s.jobs, id)
	}
	return snap, true
}

// Delete removes id unconditionally, reporting whether it was present.
// Used to roll back a registration when enqueueing fails.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.jobs[id]
	delete(s.jobs, id)
	return ok
}

// Len returns the number of jobs currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
