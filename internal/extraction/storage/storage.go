package storage

import (
	"sync"
	"time"

	"github.com/tech920/motor-claim-decision-api-sub001/internal/extraction/domain"
)

// RunStore keeps recent extraction run summaries in memory for debugging.
// Summaries are non-authoritative and expire after a TTL; losing them costs
// nothing but observability.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*domain.RunSummary
	ttl  time.Duration
}

// NewRunStore creates an in-memory run store with the given TTL
func NewRunStore(ttl time.Duration) *RunStore {
	s := &RunStore{
		runs: make(map[string]*domain.RunSummary),
		ttl:  ttl,
	}
	go s.cleanupLoop()
	return s
}

// Store records a run summary
func (s *RunStore) Store(summary *domain.RunSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[summary.RunID] = summary
}

// Get retrieves a run summary by ID, or nil if unknown or expired
func (s *RunStore) Get(runID string) *domain.RunSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runs[runID]
}

// cleanupLoop periodically removes expired run summaries
func (s *RunStore) cleanupLoop() {
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()
	for range ticker.C {
		s.cleanup()
	}
}

func (s *RunStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-s.ttl)
	for id, run := range s.runs {
		if run.CreatedAt.Before(cutoff) {
			delete(s.runs, id)
		}
	}
}
