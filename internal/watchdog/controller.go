package watchdog

import (
	"sync"
	"time"

	"github.com/logguard/logguard/internal/metrics"
)

// Controller starts and stops one watchdog task per monitored run. A task
// never outlives its run: the teardown returned by OnRunStart must be called
// on every exit path, and calling it more than once is safe.
type Controller struct {
	scheduler *Scheduler

	// Delay and Period default to the one-second schedule. Tests
	// compress them; production code leaves them alone.
	Delay  time.Duration
	Period time.Duration
}

// NewController creates a Controller backed by the shared scheduler.
func NewController(scheduler *Scheduler) *Controller {
	return &Controller{
		scheduler: scheduler,
		Delay:     Delay,
		Period:    Period,
	}
}

// OnRunStart resolves the effective threshold for the run and, if it is
// positive, schedules the periodic size check. The returned teardown cancels
// the check; it is idempotent and safe to call even if the task already
// fired its interruption. A zero or negative threshold disables monitoring
// for the run and the teardown is a no-op.
//
// An error is returned only when the scheduler can no longer accept tasks,
// which is a startup-time failure of the monitoring subsystem rather than a
// per-run condition.
func (c *Controller) OnRunStart(run Run, cfg Settings, global DefaultSource) (func(), error) {
	thresholdMB := Resolve(cfg, global)
	if thresholdMB <= 0 {
		return func() {}, nil
	}

	task := NewTask(run, int64(thresholdMB)*MB, cfg.FailOnExceed)
	timer, err := c.scheduler.Schedule(task.Tick, c.Delay, c.Period)
	if err != nil {
		return nil, err
	}
	metrics.AddActiveWatchdogs(1)

	var once sync.Once
	return func() {
		once.Do(func() {
			timer.Cancel()
			metrics.AddActiveWatchdogs(-1)
		})
	}, nil
}
