package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/logguard/logguard/pkg/models"
)

// MemoryStore is an in-memory implementation of the run-history store
type MemoryStore struct {
	runs map[string]*models.RunRecord
	mu   sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[string]*models.RunRecord),
	}
}

// CreateRun adds a run to the store
func (s *MemoryStore) CreateRun(run *models.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *run
	s.runs[run.ID] = &cp
	return nil
}

// UpdateRun replaces a stored run after validating the status transition
func (s *MemoryStore) UpdateRun(run *models.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.runs[run.ID]
	if !ok {
		return ErrRunNotFound
	}
	if stored.Status != run.Status {
		if err := models.ValidateTransition(stored.Status, run.Status); err != nil {
			return fmt.Errorf("invalid transition: %w", err)
		}
	}
	cp := *run
	s.runs[run.ID] = &cp
	return nil
}

// GetRun retrieves a run by ID
func (s *MemoryStore) GetRun(id string) (*models.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	cp := *run
	return &cp, nil
}

// GetAllRuns returns all recorded runs, most recent first
func (s *MemoryStore) GetAllRuns() []*models.RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]*models.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		cp := *run
		runs = append(runs, &cp)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	return runs
}

// GetRunsByStatus returns runs in the given status, most recent first
func (s *MemoryStore) GetRunsByStatus(status models.RunStatus) []*models.RunRecord {
	all := s.GetAllRuns()
	filtered := make([]*models.RunRecord, 0, len(all))
	for _, run := range all {
		if run.Status == status {
			filtered = append(filtered, run)
		}
	}
	return filtered
}

// Close is a no-op for the memory store
func (s *MemoryStore) Close() error {
	return nil
}

// HealthCheck is a no-op for the memory store
func (s *MemoryStore) HealthCheck() error {
	return nil
}
