package watchdog

import (
	"fmt"
)

// Cause records why a run was interrupted. Immutable; created at most once
// per run, at the moment the threshold is first exceeded.
type Cause struct {
	ObservedSize int64 `json:"observed_size"`
}

// NewCause creates a Cause for the observed log size in bytes.
func NewCause(observedSize int64) *Cause {
	return &Cause{ObservedSize: observedSize}
}

// Description returns the human-readable reason written to the run's log.
func (c *Cause) Description() string {
	return fmt.Sprintf("Aborting the run because max log size was reached (size: %d)", c.ObservedSize)
}
