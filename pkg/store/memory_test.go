package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/logguard/logguard/pkg/models"
)

func newTestRun(id string, status models.RunStatus, started time.Time) *models.RunRecord {
	return &models.RunRecord{
		ID:        id,
		Command:   "sleep",
		Args:      []string{"60"},
		Status:    status,
		StartedAt: started,
	}
}

func TestMemoryStoreBasicOperations(t *testing.T) {
	store := NewMemoryStore()

	run := newTestRun("run-1", models.RunStatusPending, time.Now())
	if err := store.CreateRun(run); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	retrieved, err := store.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if retrieved.Command != "sleep" {
		t.Errorf("GetRun command = %s, want sleep", retrieved.Command)
	}

	run.Status = models.RunStatusRunning
	run.PID = 1234
	if err := store.UpdateRun(run); err != nil {
		t.Fatalf("UpdateRun failed: %v", err)
	}

	updated, err := store.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun after update failed: %v", err)
	}
	if updated.Status != models.RunStatusRunning || updated.PID != 1234 {
		t.Errorf("GetRun after update = %s/%d, want running/1234", updated.Status, updated.PID)
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	store := NewMemoryStore()

	if _, err := store.GetRun("missing"); err != ErrRunNotFound {
		t.Errorf("GetRun error = %v, want %v", err, ErrRunNotFound)
	}
	if err := store.UpdateRun(newTestRun("missing", models.RunStatusRunning, time.Now())); err != ErrRunNotFound {
		t.Errorf("UpdateRun error = %v, want %v", err, ErrRunNotFound)
	}
}

func TestMemoryStoreGetAllRunsOrder(t *testing.T) {
	store := NewMemoryStore()
	base := time.Now()

	for i := 0; i < 3; i++ {
		run := newTestRun(fmt.Sprintf("run-%d", i), models.RunStatusFinished, base.Add(time.Duration(i)*time.Minute))
		if err := store.CreateRun(run); err != nil {
			t.Fatalf("CreateRun %d failed: %v", i, err)
		}
	}

	runs := store.GetAllRuns()
	if len(runs) != 3 {
		t.Fatalf("GetAllRuns returned %d runs, want 3", len(runs))
	}
	if runs[0].ID != "run-2" || runs[2].ID != "run-0" {
		t.Errorf("GetAllRuns order = [%s %s %s], want most recent first",
			runs[0].ID, runs[1].ID, runs[2].ID)
	}
}

func TestMemoryStoreGetRunsByStatus(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()

	store.CreateRun(newTestRun("a", models.RunStatusRunning, now))
	store.CreateRun(newTestRun("b", models.RunStatusFinished, now))
	store.CreateRun(newTestRun("c", models.RunStatusRunning, now))

	running := store.GetRunsByStatus(models.RunStatusRunning)
	if len(running) != 2 {
		t.Errorf("GetRunsByStatus(running) returned %d runs, want 2", len(running))
	}
	for _, run := range running {
		if run.Status != models.RunStatusRunning {
			t.Errorf("Run %s has status %s, want running", run.ID, run.Status)
		}
	}
}

func TestMemoryStoreRejectsInvalidTransition(t *testing.T) {
	store := NewMemoryStore()
	store.CreateRun(newTestRun("run-1", models.RunStatusFinished, time.Now()))

	update := newTestRun("run-1", models.RunStatusRunning, time.Now())
	if err := store.UpdateRun(update); err == nil {
		t.Fatalf("UpdateRun accepted a finished-to-running transition")
	}

	stored, err := store.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if stored.Status != models.RunStatusFinished {
		t.Errorf("Status after rejected update = %s, want finished", stored.Status)
	}
}

func TestMemoryStoreSameStatusUpdate(t *testing.T) {
	store := NewMemoryStore()
	store.CreateRun(newTestRun("run-1", models.RunStatusRunning, time.Now()))

	update := newTestRun("run-1", models.RunStatusRunning, time.Now())
	update.LogBytes = 4096
	if err := store.UpdateRun(update); err != nil {
		t.Fatalf("UpdateRun rejected a same-status update: %v", err)
	}

	stored, _ := store.GetRun("run-1")
	if stored.LogBytes != 4096 {
		t.Errorf("LogBytes after update = %d, want 4096", stored.LogBytes)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	store.CreateRun(newTestRun("run-1", models.RunStatusPending, time.Now()))

	first, _ := store.GetRun("run-1")
	first.Status = models.RunStatusFinished

	second, _ := store.GetRun("run-1")
	if second.Status != models.RunStatusPending {
		t.Errorf("Mutating a retrieved run leaked into the store: status = %s", second.Status)
	}
}
