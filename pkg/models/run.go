package models

import (
	"time"
)

// RunStatus represents the status of a monitored run
type RunStatus string

const (
	RunStatusPending  RunStatus = "pending"
	RunStatusRunning  RunStatus = "running"
	RunStatusFinished RunStatus = "finished"
)

// Outcome is the terminal result of a run
type Outcome string

const (
	OutcomeCompleted Outcome = "completed" // Process exited with code 0
	OutcomeFailed    Outcome = "failed"    // Process failed or was failed by the watchdog
	OutcomeAborted   Outcome = "aborted"   // Run was aborted by the watchdog
)

// RunRecord represents one execution of a monitored command
type RunRecord struct {
	ID              string     `json:"id"`
	Command         string     `json:"command"`
	Args            []string   `json:"args,omitempty"`
	PID             int        `json:"pid,omitempty"`
	Status          RunStatus  `json:"status"`
	Outcome         Outcome    `json:"outcome,omitempty"`
	ExitCode        int        `json:"exit_code"`
	LogPath         string     `json:"log_path,omitempty"`
	LogBytes        int64      `json:"log_bytes"`
	ThresholdMB     int        `json:"threshold_mb"`
	Interrupted     bool       `json:"interrupted"`
	InterruptReason string     `json:"interrupt_reason,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
}

// Duration returns how long the run executed, or time since start if still running
func (r *RunRecord) Duration() time.Duration {
	if r.FinishedAt != nil {
		return r.FinishedAt.Sub(r.StartedAt)
	}
	return time.Since(r.StartedAt)
}
