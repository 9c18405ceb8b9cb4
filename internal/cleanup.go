package internal

import (
	"fmt"
	"log/slog"
	"sync"

	"go.uber.org/multierr"
)

// CleanupManager tracks resources and ensures ordered cleanup in LIFO order.
type CleanupManager struct {
	mu     sync.Mutex
	funcs  []cleanupFunc
	logger Warner
}

// Warner receives cleanup failures. *slog.Logger and Writer both satisfy it.
type Warner interface {
	Warn(msg string, args ...any)
}

type cleanupFunc struct {
	name string
	fn   func() error
}

// NewCleanupManager creates a new cleanup manager. Failures are reported to
// logger as they happen; a nil logger uses slog.Default().
func NewCleanupManager(logger Warner) *CleanupManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanupManager{logger: logger}
}

// Add registers a cleanup function. Functions are executed in LIFO order
// (last added, first executed) to ensure proper cleanup sequencing.
func (m *CleanupManager) Add(name string, fn func() error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funcs = append([]cleanupFunc{{name, fn}}, m.funcs...)
}

// Release forgets every registered function without running it. Ownership of
// the resources passes to the caller.
func (m *CleanupManager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funcs = nil
}

// Execute runs all cleanup functions in reverse order (LIFO) and returns the
// combined errors. It always completes all cleanup operations, even if some
// fail, and leaves the manager empty.
func (m *CleanupManager) Execute() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs error
	for _, cleanup := range m.funcs {
		if err := cleanup.fn(); err != nil {
			m.logger.Warn("cleanup failed", "resource", cleanup.name, "error", err)
			errs = multierr.Append(errs, fmt.Errorf("cleanup %s: %w", cleanup.name, err))
		}
	}
	m.funcs = nil

	return errs
}
