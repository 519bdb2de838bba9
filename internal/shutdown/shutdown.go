package shutdown

import (
	"context"
	"sync"
	"time"
)

// Manager runs registered teardown functions exactly once, in reverse
// registration order. It backs the guarantee that a run's watchdog teardown
// executes on every exit path, signal-driven exits included.
type Manager struct {
	funcs   []func(context.Context) error
	mu      sync.Mutex
	timeout time.Duration
	once    sync.Once
}

// New creates a new shutdown manager
func New(timeout time.Duration) *Manager {
	return &Manager{
		funcs:   make([]func(context.Context) error, 0),
		timeout: timeout,
	}
}

// Register adds a shutdown function.
// Functions are called in reverse order (LIFO).
func (m *Manager) Register(fn func(context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funcs = append(m.funcs, fn)
}

// Shutdown executes all registered functions. Safe to call more than once;
// only the first call runs them.
func (m *Manager) Shutdown() []error {
	var errs []error
	m.once.Do(func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		for i := len(m.funcs) - 1; i >= 0; i-- {
			if err := m.funcs[i](ctx); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errs
}
