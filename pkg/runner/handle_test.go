package runner

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/logguard/logguard/internal/watchdog"
	"github.com/logguard/logguard/pkg/models"
)

func TestHandleInterruptStopsRun(t *testing.T) {
	engine, _ := newTestEngine()

	run, err := engine.Start(context.Background(), "sleep", []string{"30"}, Options{
		LogPath:   filepath.Join(t.TempDir(), "run.log"),
		KillGrace: time.Second,
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ex := run.Executor()
	if ex == nil {
		t.Fatalf("Executor() = nil for a live run")
	}
	if ex.IsInterrupted() {
		t.Fatalf("IsInterrupted() = true before any interruption")
	}

	cause := watchdog.NewCause(5 * watchdog.MB)
	start := time.Now()
	ex.Interrupt(models.OutcomeAborted, cause)

	if !ex.IsInterrupted() {
		t.Errorf("IsInterrupted() = false after Interrupt")
	}

	record, err := run.Wait()
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("Interrupted run took %v to stop", elapsed)
	}

	if record.Outcome != models.OutcomeAborted {
		t.Errorf("Outcome = %s, want aborted", record.Outcome)
	}
	if !record.Interrupted {
		t.Errorf("Interrupted flag not set")
	}
	if !strings.Contains(record.InterruptReason, "5242880") {
		t.Errorf("InterruptReason = %q, want the observed size in it", record.InterruptReason)
	}
}

func TestHandleInterruptIsSingleShot(t *testing.T) {
	engine, _ := newTestEngine()

	run, err := engine.Start(context.Background(), "sleep", []string{"30"}, Options{
		LogPath:   filepath.Join(t.TempDir(), "run.log"),
		KillGrace: time.Second,
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ex := run.Executor()
	ex.Interrupt(models.OutcomeFailed, watchdog.NewCause(1))
	// The first verdict sticks; later calls are no-ops.
	ex.Interrupt(models.OutcomeAborted, watchdog.NewCause(2))

	record, err := run.Wait()
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if record.Outcome != models.OutcomeFailed {
		t.Errorf("Outcome = %s, want the first verdict failed", record.Outcome)
	}
	if !strings.Contains(record.InterruptReason, "(size: 1)") {
		t.Errorf("InterruptReason = %q, want the first cause", record.InterruptReason)
	}
}

func TestHandleSignalInterruptWithoutCause(t *testing.T) {
	engine, _ := newTestEngine()

	run, err := engine.Start(context.Background(), "sleep", []string{"30"}, Options{
		LogPath:   filepath.Join(t.TempDir(), "run.log"),
		KillGrace: time.Second,
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	run.Executor().Interrupt(models.OutcomeAborted, nil)

	record, err := run.Wait()
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if record.Outcome != models.OutcomeAborted {
		t.Errorf("Outcome = %s, want aborted", record.Outcome)
	}
	if record.InterruptReason != "interrupted by signal" {
		t.Errorf("InterruptReason = %q, want the signal fallback", record.InterruptReason)
	}
}

func TestHandleRecordedNilReceiver(t *testing.T) {
	var h *Handle
	if _, _, ok := h.Recorded(); ok {
		t.Errorf("Recorded() on nil handle = true, want false")
	}
}
