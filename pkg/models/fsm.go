package models

import (
	"fmt"
)

// validTransitions maps from-status to allowed to-statuses
var validTransitions = map[RunStatus]map[RunStatus]bool{
	RunStatusPending: {
		RunStatusRunning:  true, // Pending → Running (process started)
		RunStatusFinished: true, // Pending → Finished (process failed to start)
	},
	RunStatusRunning: {
		RunStatusFinished: true, // Running → Finished (any exit path)
	},
	// Terminal status (no transitions allowed)
	RunStatusFinished: {},
}

// ValidateTransition checks if a status transition is valid
func ValidateTransition(from, to RunStatus) error {
	allowed, exists := validTransitions[from]
	if !exists {
		return fmt.Errorf("unknown source status: %s", from)
	}
	if !allowed[to] {
		return fmt.Errorf("invalid transition from %s to %s", from, to)
	}
	return nil
}

// IsTerminalStatus returns true if the status is terminal (no further transitions)
func IsTerminalStatus(status RunStatus) bool {
	return status == RunStatusFinished
}

// IsTerminalOutcome returns true for outcomes that may be recorded on a finished run
func IsTerminalOutcome(o Outcome) bool {
	return o == OutcomeCompleted || o == OutcomeFailed || o == OutcomeAborted
}
