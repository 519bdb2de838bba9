// Package settings holds the process-wide default log size threshold.
package settings

import (
	"errors"
	"sync"
	"sync/atomic"
)

var (
	// ErrThresholdMissing is returned when no candidate value was supplied.
	ErrThresholdMissing = errors.New("please specify a max log file size")

	// ErrThresholdNegative is returned for negative candidate values.
	ErrThresholdNegative = errors.New("please specify a positive value for max log file size")
)

// DefaultMaxLogSizeMB is the initial global threshold. Zero disables
// monitoring for runs without their own threshold.
const DefaultMaxLogSizeMB = 0

// PersistFunc commits a validated threshold to durable storage.
type PersistFunc func(mb int) error

// Store is the validated holder for the global default threshold in MB.
// Reads are lock-free snapshots; updates are serialized and persisted
// through the injected hook before taking effect.
type Store struct {
	mu        sync.Mutex // serializes Set
	defaultMB atomic.Int64
	persist   PersistFunc
}

// NewStore creates a Store seeded with defaultMB. persist may be nil for
// in-memory use (tests, validation-only paths).
func NewStore(defaultMB int, persist PersistFunc) *Store {
	s := &Store{persist: persist}
	if defaultMB < 0 {
		defaultMB = DefaultMaxLogSizeMB
	}
	s.defaultMB.Store(int64(defaultMB))
	return s
}

// Get returns the current global default threshold in MB.
func (s *Store) Get() int {
	return int(s.defaultMB.Load())
}

// Validate checks a candidate threshold without committing it. A nil
// candidate is a missing value; negative values are rejected. The same rule
// set backs Set.
func Validate(candidate *int) error {
	if candidate == nil {
		return ErrThresholdMissing
	}
	if *candidate < 0 {
		return ErrThresholdNegative
	}
	return nil
}

// Set validates, persists and commits a new global default. On any error the
// previous value is retained and returned alongside the error.
func (s *Store) Set(candidate *int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := Validate(candidate); err != nil {
		return s.Get(), err
	}
	if s.persist != nil {
		if err := s.persist(*candidate); err != nil {
			return s.Get(), err
		}
	}
	s.defaultMB.Store(int64(*candidate))
	return *candidate, nil
}
