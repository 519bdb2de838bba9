package runner

import (
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/logguard/logguard/internal/metrics"
	"github.com/logguard/logguard/internal/watchdog"
	"github.com/logguard/logguard/pkg/models"
)

// Run is one live execution of a monitored command.
type Run struct {
	engine  *Engine
	cmd     *exec.Cmd
	logFile *os.File
	logPath string
	out     *lockedWriter

	mu     sync.Mutex
	handle *Handle // nil once the run has finished

	record *models.RunRecord
}

// ID returns the run identifier.
func (r *Run) ID() string {
	return r.record.ID
}

// Executor returns the run's interrupt handle, or nil once the run finished.
// The watchdog tolerates the nil window between process exit and task
// cancellation.
func (r *Run) Executor() watchdog.Executor {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handle == nil {
		return nil
	}
	return r.handle
}

// LogLen returns the current size of the run's log file in bytes.
func (r *Run) LogLen() (int64, error) {
	fi, err := os.Stat(r.logPath)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// Output is the run's log stream.
func (r *Run) Output() io.Writer {
	return r.out
}

// Wait blocks until the process exits, finalizes the run record and persists
// it. The executor handle is detached before the record is written, so a
// late watchdog tick sees a finished run instead of a stale handle.
func (r *Run) Wait() (*models.RunRecord, error) {
	waitErr := r.cmd.Wait()

	r.mu.Lock()
	handle := r.handle
	r.handle = nil
	r.mu.Unlock()

	exitCode := 0
	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}

	outcome := models.OutcomeCompleted
	if waitErr != nil {
		outcome = models.OutcomeFailed
	}
	if intOutcome, cause, ok := handle.Recorded(); ok {
		// The interruption verdict wins over the raw exit code.
		outcome = intOutcome
		r.record.Interrupted = true
		if cause != nil {
			r.record.InterruptReason = cause.Description()
		} else {
			r.record.InterruptReason = "interrupted by signal"
		}
	}

	now := time.Now()
	r.record.Status = models.RunStatusFinished
	r.record.Outcome = outcome
	r.record.ExitCode = exitCode
	r.record.FinishedAt = &now
	if size, err := r.LogLen(); err == nil {
		r.record.LogBytes = size
	}

	if err := r.engine.store.UpdateRun(r.record); err != nil {
		r.engine.log.Warn("failed to update run", map[string]interface{}{
			"run_id": r.record.ID, "error": err.Error(),
		})
	}
	metrics.RecordRunFinished(string(outcome))
	r.logFile.Close()

	r.engine.log.Info("run finished", map[string]interface{}{
		"run_id":    r.record.ID,
		"outcome":   string(outcome),
		"exit_code": exitCode,
		"log_bytes": r.record.LogBytes,
	})

	return r.record, nil
}

// lockedWriter serializes writes from the process copier and the watchdog's
// interruption line.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
