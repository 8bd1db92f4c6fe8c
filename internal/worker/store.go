// Package worker implements the ingestion worker: an in-memory job table
// with simulated asynchronous completion, and the RabbitMQ consumer that
// serves the gateway's RPC requests against it.
package worker

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Worker-local job status values.  A job enters the table as processing
// and settles in completed or failed exactly once.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Defaults for the simulated completion.
const (
	DefaultDelay       = 2 * time.Second
	DefaultSuccessRate = 0.8
	EmbeddingDim       = 8
)

// ErrNotFound is returned when the table has no record for a job id.
var ErrNotFound = errors.New("not found")

// ErrNotCompleted is returned when embeddings are requested for a job
// that has not reached the completed state.
var ErrNotCompleted = errors.New("ingestion not completed yet")

// Record is the worker's process-lifetime view of one ingestion job.
// Records are never persisted and die with the process.
type Record struct {
	ID         string
	Document   string
	Status     string
	Embeddings []float64
}

// Store is the worker job table.  The completion timer fires on its own
// goroutine while RPC handlers read concurrently, so every access goes
// through the mutex and status plus embeddings are always written in the
// same critical section; a reader can never observe one without the other.
type Store struct {
	mu          sync.Mutex
	jobs        map[string]*Record
	delay       time.Duration
	successRate float64
	rnd         *rand.Rand
}

// NewStore builds a job table.  Non-positive delay or an out-of-range
// success rate fall back to the defaults.
func NewStore(delay time.Duration, successRate float64) *Store {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if successRate < 0 || successRate > 1 {
		successRate = DefaultSuccessRate
	}
	return &Store{
		jobs:        make(map[string]*Record),
		delay:       delay,
		successRate: successRate,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Ingest registers a job in the processing state and schedules a single
// deferred completion.  When id is empty a collision-resistant UUID is
// allocated.  The call returns immediately; completion is observed via
// GetStatus / GetEmbeddings polls.
func (s *Store) Ingest(document, id string) Record {
	if id == "" {
		id = uuid.NewString()
	}
	s.mu.Lock()
	s.jobs[id] = &Record{ID: id, Document: document, Status: StatusProcessing}
	s.mu.Unlock()

	time.AfterFunc(s.delay, func() { s.complete(id) })
	return Record{ID: id, Status: StatusProcessing}
}

// complete applies the terminal transition for a job.  Status and
// embeddings change together under the lock, and only from processing,
// so the transition happens exactly once and is never rolled back.
func (s *Store) complete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[id]
	if !ok || rec.Status != StatusProcessing {
		return
	}
	if s.rnd.Float64() < s.successRate {
		vec := make([]float64, EmbeddingDim)
		for i := range vec {
			vec[i] = s.rnd.Float64()
		}
		rec.Status = StatusCompleted
		rec.Embeddings = vec
	} else {
		rec.Status = StatusFailed
		rec.Embeddings = nil
	}
}

// GetStatus reports the current status of a job.
func (s *Store) GetStatus(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[id]
	if !ok {
		return "", ErrNotFound
	}
	return rec.Status, nil
}

// GetEmbeddings returns a copy of the embedding vector for a completed
// job.  Unknown ids report ErrNotFound; known but unfinished or failed
// jobs report ErrNotCompleted.
func (s *Store) GetEmbeddings(id string) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	if rec.Status != StatusCompleted {
		return nil, ErrNotCompleted
	}
	out := make([]float64, len(rec.Embeddings))
	copy(out, rec.Embeddings)
	return out, nil
}
