package goroutine

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"

	"steamvault/internal/pkg/stacktrace"
)

// Manager runs functions on goroutines with panic recovery and a Wait for
// graceful shutdown.
type Manager struct {
	wg sync.WaitGroup
}

// NewManager creates a goroutine Manager.
func NewManager() *Manager {
	return &Manager{}
}

// Run executes fn on a new goroutine. A panic inside fn is recovered and
// logged with the in-module stack frames instead of crashing the process.
func (m *Manager) Run(ctx context.Context, fn func(ctx context.Context)) {
	m.wg.Add(1)

	go func() {
		defer m.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.ErrorContext(ctx, "goroutine panic recovered",
					"panic", r,
					"stack", stacktrace.InternalPaths(debug.Stack()),
				)
			}
		}()

		fn(ctx)
	}()
}

// Wait blocks until every goroutine started via Run has returned.
func (m *Manager) Wait() {
	m.wg.Wait()
}
