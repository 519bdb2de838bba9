package watchdog

import (
	"errors"
	"strings"
	"testing"

	"github.com/logguard/logguard/pkg/models"
)

func TestTaskTick(t *testing.T) {
	tests := []struct {
		name          string
		size          int64
		sizeErr       error
		nilExecutor   bool
		interrupted   bool
		failOnExceed  bool
		wantInterrupt bool
		wantOutcome   models.Outcome
	}{
		{
			name:          "Size over threshold interrupts as aborted",
			size:          2 * MB,
			wantInterrupt: true,
			wantOutcome:   models.OutcomeAborted,
		},
		{
			name:          "Fail-on-exceed interrupts as failed",
			size:          2 * MB,
			failOnExceed:  true,
			wantInterrupt: true,
			wantOutcome:   models.OutcomeFailed,
		},
		{
			name: "Size at threshold does not interrupt",
			size: 1 * MB,
		},
		{
			name: "Size under threshold does not interrupt",
			size: 100,
		},
		{
			name:        "Missing executor is a no-op",
			size:        2 * MB,
			nilExecutor: true,
		},
		{
			name:    "Unreadable log length is a no-op",
			sizeErr: errors.New("stat failed"),
		},
		{
			name:        "Already interrupted run is left alone",
			size:        2 * MB,
			interrupted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := &fakeExecutor{interrupted: tt.interrupted}
			run := &fakeRun{size: tt.size, sizeErr: tt.sizeErr}
			if !tt.nilExecutor {
				run.ex = ex
			}

			task := NewTask(run, 1*MB, tt.failOnExceed)
			task.Tick()

			calls, outcome, cause := ex.snapshot()
			if tt.wantInterrupt {
				if calls != 1 {
					t.Fatalf("Interrupt called %d times, want 1", calls)
				}
				if outcome != tt.wantOutcome {
					t.Errorf("Interrupt outcome = %v, want %v", outcome, tt.wantOutcome)
				}
				if cause == nil || cause.ObservedSize != tt.size {
					t.Errorf("Interrupt cause = %+v, want observed size %d", cause, tt.size)
				}
				if !strings.Contains(run.logged(), cause.Description()) {
					t.Errorf("Run log = %q, want the interruption line in it", run.logged())
				}
			} else {
				if calls != 0 {
					t.Errorf("Interrupt called %d times, want 0", calls)
				}
				if run.logged() != "" {
					t.Errorf("Run log = %q, want empty", run.logged())
				}
			}
		})
	}
}

func TestTaskTickInterruptsOnce(t *testing.T) {
	ex := &fakeExecutor{}
	run := &fakeRun{ex: ex, size: 5 * MB}
	task := NewTask(run, 1*MB, false)

	for i := 0; i < 5; i++ {
		task.Tick()
	}

	calls, _, _ := ex.snapshot()
	if calls != 1 {
		t.Errorf("Interrupt called %d times across 5 ticks, want 1", calls)
	}
	if got := strings.Count(run.logged(), "max log size was reached"); got != 1 {
		t.Errorf("Interruption line written %d times, want 1", got)
	}
}

func TestTaskTickRecoversAfterReadError(t *testing.T) {
	ex := &fakeExecutor{}
	run := &fakeRun{ex: ex, size: 5 * MB, sizeErr: errors.New("stat failed")}
	task := NewTask(run, 1*MB, false)

	task.Tick()
	if calls, _, _ := ex.snapshot(); calls != 0 {
		t.Fatalf("Interrupt called %d times during read error, want 0", calls)
	}

	run.mu.Lock()
	run.sizeErr = nil
	run.mu.Unlock()

	task.Tick()
	if calls, _, _ := ex.snapshot(); calls != 1 {
		t.Errorf("Interrupt called %d times after recovery, want 1", calls)
	}
}
