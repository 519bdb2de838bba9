package watchdog

import (
	"errors"
	"sync"
	"time"
)

// ErrSchedulerStopped is returned when a task is scheduled after Stop.
var ErrSchedulerStopped = errors.New("scheduler stopped")

// Scheduler runs registered tasks at a fixed rate, each on its own timer
// goroutine. One Scheduler is shared process-wide.
type Scheduler struct {
	mu      sync.Mutex
	tasks   map[*TimerTask]struct{}
	stopped bool
}

// NewScheduler creates a new Scheduler instance
func NewScheduler() *Scheduler {
	return &Scheduler{
		tasks: make(map[*TimerTask]struct{}),
	}
}

// Schedule registers fn to run after delay and then every period until the
// returned task is cancelled.
func (s *Scheduler) Schedule(fn func(), delay, period time.Duration) (*TimerTask, error) {
	if period <= 0 {
		period = Period
	}

	t := &TimerTask{
		fn:     fn,
		stopCh: make(chan struct{}),
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil, ErrSchedulerStopped
	}
	s.tasks[t] = struct{}{}
	s.mu.Unlock()

	go t.loop(delay, period, func() { s.remove(t) })
	return t, nil
}

// ActiveTasks returns the number of scheduled, uncancelled tasks.
func (s *Scheduler) ActiveTasks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Stop cancels all scheduled tasks. The scheduler accepts no new tasks
// afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	tasks := make([]*TimerTask, 0, len(s.tasks))
	for t := range s.tasks {
		tasks = append(tasks, t)
	}
	s.mu.Unlock()

	for _, t := range tasks {
		t.Cancel()
	}
}

func (s *Scheduler) remove(t *TimerTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, t)
}

// TimerTask is one scheduled unit of work. Cancel is safe to call any number
// of times, from any goroutine, including after the task already fired.
type TimerTask struct {
	fn     func()
	stopCh chan struct{}
	once   sync.Once
}

// Cancel stops the task. A tick already in flight completes; the action it
// performs is idempotent, so a late tick is harmless.
func (t *TimerTask) Cancel() {
	t.once.Do(func() {
		close(t.stopCh)
	})
}

func (t *TimerTask) loop(delay, period time.Duration, done func()) {
	defer done()

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-t.stopCh:
		return
	}
	t.fn()

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.fn()
		case <-t.stopCh:
			return
		}
	}
}
