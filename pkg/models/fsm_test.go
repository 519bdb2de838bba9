package models

import (
	"testing"
	"time"
)

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    RunStatus
		to      RunStatus
		wantErr bool
	}{
		// Valid transitions
		{"Pending to Running", RunStatusPending, RunStatusRunning, false},
		{"Pending to Finished", RunStatusPending, RunStatusFinished, false},
		{"Running to Finished", RunStatusRunning, RunStatusFinished, false},

		// Invalid transitions
		{"Running to Pending", RunStatusRunning, RunStatusPending, true},
		{"Finished to Running", RunStatusFinished, RunStatusRunning, true},
		{"Finished to Pending", RunStatusFinished, RunStatusPending, true},
		{"Pending to Pending", RunStatusPending, RunStatusPending, true},
		{"Unknown source status", RunStatus("bogus"), RunStatusRunning, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTransition(%v, %v) error = %v, wantErr %v",
					tt.from, tt.to, err, tt.wantErr)
			}
		})
	}
}

func TestIsTerminalStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   RunStatus
		expected bool
	}{
		{"Finished is terminal", RunStatusFinished, true},
		{"Pending is not terminal", RunStatusPending, false},
		{"Running is not terminal", RunStatusRunning, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsTerminalStatus(tt.status)
			if result != tt.expected {
				t.Errorf("IsTerminalStatus(%v) = %v, want %v", tt.status, result, tt.expected)
			}
		})
	}
}

func TestIsTerminalOutcome(t *testing.T) {
	tests := []struct {
		name     string
		outcome  Outcome
		expected bool
	}{
		{"Completed is terminal", OutcomeCompleted, true},
		{"Failed is terminal", OutcomeFailed, true},
		{"Aborted is terminal", OutcomeAborted, true},
		{"Empty outcome is not", Outcome(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsTerminalOutcome(tt.outcome)
			if result != tt.expected {
				t.Errorf("IsTerminalOutcome(%v) = %v, want %v", tt.outcome, result, tt.expected)
			}
		})
	}
}

func TestRunRecordDuration(t *testing.T) {
	started := time.Now().Add(-10 * time.Second)
	finished := started.Add(3 * time.Second)

	run := &RunRecord{StartedAt: started, FinishedAt: &finished}
	if got := run.Duration(); got != 3*time.Second {
		t.Errorf("Duration() = %v, want %v", got, 3*time.Second)
	}

	live := &RunRecord{StartedAt: started}
	if got := live.Duration(); got < 10*time.Second {
		t.Errorf("Duration() = %v for a live run, want at least 10s", got)
	}
}
