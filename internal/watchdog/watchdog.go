// Package watchdog terminates runs whose log output grows past a byte
// threshold. It owns the periodic check, the override-vs-default threshold
// policy and the single-shot interruption protocol; executing and stopping
// the workload is the run engine's job.
package watchdog

import (
	"io"
	"time"

	"github.com/logguard/logguard/pkg/models"
)

const (
	// Delay before the first size check of a run.
	Delay = 1000 * time.Millisecond

	// Period between size checks.
	Period = 1000 * time.Millisecond

	// MB is the conversion factor for megabytes.
	MB = 1024 * 1024
)

// Executor is the interrupt handle of a live run. IsInterrupted must reflect
// the authoritative flag on every call; the watchdog never caches it.
type Executor interface {
	IsInterrupted() bool
	Interrupt(outcome models.Outcome, cause *Cause)
}

// Run is the narrow surface the watchdog consumes from the run engine.
type Run interface {
	// Executor returns the run's interrupt handle, or nil once the run
	// has finished.
	Executor() Executor

	// LogLen returns the current length of the run's log in bytes.
	LogLen() (int64, error)

	// Output is the run's own log stream, used for the interruption line.
	Output() io.Writer
}

// Settings is the per-run monitor configuration. OwnThresholdMB is validated
// at configuration-entry time, not here.
type Settings struct {
	UseOwnThreshold bool `json:"use_own_threshold"`
	OwnThresholdMB  int  `json:"own_threshold_mb"`
	FailOnExceed    bool `json:"fail_on_exceed"`
}

// DefaultSource supplies the process-wide default threshold in MB.
type DefaultSource interface {
	Get() int
}

// StaticDefault adapts a fixed MB value to DefaultSource.
type StaticDefault int

// Get returns the fixed value.
func (d StaticDefault) Get() int { return int(d) }

// Resolve returns the effective threshold in MB for one run: the run's own
// threshold when the override is set, the global default otherwise.
func Resolve(cfg Settings, global DefaultSource) int {
	if cfg.UseOwnThreshold {
		return cfg.OwnThresholdMB
	}
	return global.Get()
}
