package watchdog

import (
	"fmt"

	"github.com/logguard/logguard/internal/metrics"
	"github.com/logguard/logguard/pkg/models"
)

// Task is the periodic size check for one run. One Task is bound to exactly
// one run; the Controller owns its scheduling and cancellation.
type Task struct {
	run            Run
	thresholdBytes int64
	failOnExceed   bool
}

// NewTask creates a Task that interrupts the run once its log exceeds
// thresholdBytes.
func NewTask(run Run, thresholdBytes int64, failOnExceed bool) *Task {
	return &Task{
		run:            run,
		thresholdBytes: thresholdBytes,
		failOnExceed:   failOnExceed,
	}
}

// Tick performs one size check. All anomalies are absorbed: a missing
// executor handle or an unreadable log length make this tick a no-op, and
// the check runs again on the next tick.
func (t *Task) Tick() {
	metrics.RecordTick()

	ex := t.run.Executor()
	if ex == nil {
		// Run finished or detached; the controller cancels us shortly.
		return
	}

	size, err := t.run.LogLen()
	if err != nil {
		return
	}
	if size <= t.thresholdBytes {
		return
	}

	// At most one interruption per run. The flag lives on the handle and is
	// re-read every tick rather than cached here.
	if ex.IsInterrupted() {
		return
	}

	cause := NewCause(size)
	fmt.Fprintln(t.run.Output(), cause.Description())

	outcome := models.OutcomeAborted
	if t.failOnExceed {
		outcome = models.OutcomeFailed
	}
	ex.Interrupt(outcome, cause)

	metrics.RecordInterruption(string(outcome), float64(size))
}
