// Package runner executes commands as monitored runs. It owns the process
// lifecycle and the run's log file, and exposes the narrow surface the
// watchdog consumes: log length, a nullable interrupt handle and the log
// stream.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/logguard/logguard/internal/logging"
	"github.com/logguard/logguard/pkg/models"
	"github.com/logguard/logguard/pkg/store"
)

// DefaultKillGrace is how long a SIGTERM'd process group gets before SIGKILL.
const DefaultKillGrace = 5 * time.Second

// Engine starts runs and records their history.
type Engine struct {
	log   *logging.Logger
	store store.Store
}

// New creates an Engine recording runs to st.
func New(log *logging.Logger, st store.Store) *Engine {
	return &Engine{
		log:   log,
		store: st,
	}
}

// Options configures one run.
type Options struct {
	LogPath     string        // run log file; temp file when empty
	Echo        bool          // also mirror output to stdout
	ThresholdMB int           // effective threshold, recorded for visibility
	KillGrace   time.Duration // SIGTERM-to-SIGKILL grace, DefaultKillGrace when zero
}

// Start spawns the command in its own process group and begins logging its
// combined output. The process survives an engine crash; stopping it goes
// through the interrupt handle only.
func (e *Engine) Start(ctx context.Context, command string, args []string, opts Options) (*Run, error) {
	id := uuid.New().String()

	logPath := opts.LogPath
	if logPath == "" {
		logPath = filepath.Join(os.TempDir(), "logguard-"+id+".log")
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log %s: %w", logPath, err)
	}

	var sink io.Writer = logFile
	if opts.Echo {
		sink = io.MultiWriter(logFile, os.Stdout)
	}
	out := &lockedWriter{w: sink}

	cmd := exec.CommandContext(ctx, command, args...)
	// New process group so the interrupt can signal the whole tree
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    0,
	}
	cmd.Stdout = out
	cmd.Stderr = out

	record := &models.RunRecord{
		ID:          id,
		Command:     command,
		Args:        args,
		Status:      models.RunStatusPending,
		LogPath:     logPath,
		ThresholdMB: opts.ThresholdMB,
		StartedAt:   time.Now(),
	}
	if err := e.store.CreateRun(record); err != nil {
		e.log.Warn("failed to record run", map[string]interface{}{"run_id": id, "error": err.Error()})
	}

	if err := cmd.Start(); err != nil {
		logFile.Close()
		record.Status = models.RunStatusFinished
		record.Outcome = models.OutcomeFailed
		now := time.Now()
		record.FinishedAt = &now
		if uerr := e.store.UpdateRun(record); uerr != nil {
			e.log.Warn("failed to update run", map[string]interface{}{"run_id": id, "error": uerr.Error()})
		}
		return nil, fmt.Errorf("failed to start %s: %w", command, err)
	}

	record.PID = cmd.Process.Pid
	record.Status = models.RunStatusRunning
	if err := e.store.UpdateRun(record); err != nil {
		e.log.Warn("failed to update run", map[string]interface{}{"run_id": id, "error": err.Error()})
	}

	grace := opts.KillGrace
	if grace <= 0 {
		grace = DefaultKillGrace
	}

	e.log.Info("run started", map[string]interface{}{
		"run_id":  id,
		"command": command,
		"pid":     record.PID,
		"log":     logPath,
	})

	return &Run{
		engine:  e,
		cmd:     cmd,
		logFile: logFile,
		logPath: logPath,
		out:     out,
		handle:  newHandle(record.PID, grace),
		record:  record,
	}, nil
}
