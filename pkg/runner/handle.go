package runner

import (
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/logguard/logguard/internal/watchdog"
	"github.com/logguard/logguard/pkg/models"
)

// Handle is the interrupt handle of a live run. Interrupt is single-shot:
// the first caller records the outcome and signals the process group, every
// later call is a no-op.
type Handle struct {
	pid         int
	grace       time.Duration
	interrupted atomic.Bool

	mu      sync.Mutex
	outcome models.Outcome
	cause   *watchdog.Cause
}

func newHandle(pid int, grace time.Duration) *Handle {
	return &Handle{
		pid:   pid,
		grace: grace,
	}
}

// IsInterrupted reports whether the run was already interrupted. This is the
// authoritative flag the watchdog re-reads on every tick.
func (h *Handle) IsInterrupted() bool {
	return h.interrupted.Load()
}

// Interrupt marks the run interrupted with the given outcome and cause and
// stops the process group, SIGTERM first and SIGKILL after the grace period.
// Best effort: the signal may race with the process exiting on its own.
func (h *Handle) Interrupt(outcome models.Outcome, cause *watchdog.Cause) {
	if !h.interrupted.CompareAndSwap(false, true) {
		return
	}

	h.mu.Lock()
	h.outcome = outcome
	h.cause = cause
	h.mu.Unlock()

	go h.stop()
}

// Recorded returns the interruption verdict, if any.
func (h *Handle) Recorded() (models.Outcome, *watchdog.Cause, bool) {
	if h == nil || !h.interrupted.Load() {
		return "", nil, false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.outcome, h.cause, true
}

func (h *Handle) stop() {
	// Negative PID signals the whole process group
	syscall.Kill(-h.pid, syscall.SIGTERM)

	deadline := time.Now().Add(h.grace)
	for time.Now().Before(deadline) {
		alive, err := process.PidExists(int32(h.pid))
		if err == nil && !alive {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	syscall.Kill(-h.pid, syscall.SIGKILL)
}
