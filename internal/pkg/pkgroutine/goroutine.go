package pkgroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
)

// DefaultMaxGoroutine caps concurrency when NewManager gets a non-positive
// limit.
const DefaultMaxGoroutine = 10

// Manager schedules background work with bounded concurrency. Task errors
// are collected for Wait; panics are logged and swallowed so one bad task
// cannot take the process down.
type Manager struct {
	slots chan struct{}
	wg    sync.WaitGroup

	mu   sync.Mutex
	errs []error
}

// NewManager returns a Manager that runs at most limit tasks at once.
func NewManager(limit int) *Manager {
	if limit < 1 {
		limit = DefaultMaxGoroutine
	}

	return &Manager{slots: make(chan struct{}, limit)}
}

// Go runs f on its own goroutine once a concurrency slot frees up. The call
// blocks while the manager is saturated; when ctx ends first, f is dropped
// and the cancellation logged.
func (m *Manager) Go(ctx context.Context, f func(ctx context.Context) error) {
	select {
	case m.slots <- struct{}{}:
	case <-ctx.Done():
		slog.WarnContext(ctx, "task dropped before start", "because", ctx.Err())
		return
	}

	m.wg.Add(1)
	go m.run(ctx, f)
}

func (m *Manager) run(ctx context.Context, f func(ctx context.Context) error) {
	defer m.wg.Done()
	defer func() {
		<-m.slots

		if rvr := recover(); rvr != nil {
			slog.ErrorContext(ctx, "task panicked", "panic", rvr, "stack", string(debug.Stack()))
		}
	}()

	if ctx.Err() != nil {
		slog.WarnContext(ctx, "task dropped", "because", ctx.Err())
		return
	}

	if err := f(ctx); err != nil {
		m.mu.Lock()
		m.errs = append(m.errs, err)
		m.mu.Unlock()
	}
}

// Wait blocks until every scheduled task returns, then reports their errors
// joined together.
func (m *Manager) Wait() error {
	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	return errors.Join(m.errs...)
}
