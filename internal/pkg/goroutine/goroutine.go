// Package goroutine runs long-lived background tasks and waits for them on
// shutdown.
package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/shandysiswandi/webauth/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine is used when NewManager receives a non-positive limit.
const DefaultMaxGoroutine = 16

// ErrClosed is recorded when a task is scheduled after Wait was called.
var ErrClosed = errors.New("goroutine: manager is closed")

// ErrLimit is recorded when a task is scheduled while every slot is busy.
var ErrLimit = errors.New("goroutine: limit reached")

// Manager runs tasks in goroutines with a concurrency limit, recovers their
// panics and collects their errors.
type Manager struct {
	mu     sync.Mutex
	errs   []error
	wg     sync.WaitGroup
	slots  chan struct{}
	closed bool
}

// NewManager creates a Manager that runs at most limit tasks at once.
func NewManager(limit int) *Manager {
	if limit < 1 {
		limit = DefaultMaxGoroutine
	}

	return &Manager{slots: make(chan struct{}, limit)}
}

func (g *Manager) fail(err error) {
	g.mu.Lock()
	g.errs = append(g.errs, err)
	g.mu.Unlock()
}

// Go runs f in a new goroutine. The task is dropped, and the reason kept for
// Wait, when the manager is closed or full.
func (g *Manager) Go(ctx context.Context, name string, f func(ctx context.Context) error) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		slog.WarnContext(ctx, "goroutine manager is closed, skipping task", "task", name)
		g.fail(errors.Join(ErrClosed, errors.New(name)))
		return
	}

	select {
	case g.slots <- struct{}{}:
	default:
		g.mu.Unlock()
		slog.WarnContext(ctx, "goroutine limit reached, skipping task", "task", name)
		g.fail(errors.Join(ErrLimit, errors.New(name)))
		return
	}

	g.wg.Add(1)
	g.mu.Unlock()

	go func() {
		defer g.wg.Done()
		defer func() { <-g.slots }()
		defer func() {
			if rvr := recover(); rvr != nil {
				stack := debug.Stack()
				if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
					slog.ErrorContext(ctx, "panic occurred in goroutine", "task", name, "because", rvr, "stack", paths)
				} else {
					slog.ErrorContext(ctx, "panic occurred in goroutine", "task", name, "because", rvr, "stack", string(stack))
				}
			}
		}()

		slog.InfoContext(ctx, "goroutine task started", "task", name)
		if err := f(ctx); err != nil {
			slog.ErrorContext(ctx, "goroutine task failed", "task", name, "error", err)
			g.fail(err)
		}
	}()
}

// Wait closes the manager to new tasks, blocks until running tasks return,
// and reports their errors.
func (g *Manager) Wait() error {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}
