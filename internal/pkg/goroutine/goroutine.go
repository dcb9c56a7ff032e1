package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/mehran-jafari/account/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine is the per-CPU multiplier applied when NewManager
// receives a non-positive limit.
const DefaultMaxGoroutine int = 100

// Manager schedules functions on goroutines behind a semaphore so the
// number of in-flight tasks never exceeds the configured limit. Errors
// returned by tasks accumulate until Wait is called.
type Manager struct {
	errMu sync.Mutex
	errs  []error

	wg   *sync.WaitGroup
	sema chan struct{}

	stateMu sync.RWMutex
	closed  bool
}

// NewManager creates a Manager that runs at most limit tasks concurrently.
func NewManager(limit int) *Manager {
	if limit < 1 {
		limit = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{
		wg:   &sync.WaitGroup{},
		sema: make(chan struct{}, limit),
	}
}

// Go schedules f on a new goroutine when a semaphore slot is free. The call
// is dropped with a warning when the manager is closed or at capacity.
func (m *Manager) Go(pCtx context.Context, f func(ctx context.Context) error) {
	if m == nil {
		return
	}

	m.stateMu.RLock()
	if m.closed {
		m.stateMu.RUnlock()
		slog.WarnContext(pCtx, "goroutine manager is closed, skipping new goroutine")
		return
	}

	select {
	case m.sema <- struct{}{}:
		m.wg.Go(func() {
			m.stateMu.RUnlock()
			defer m.release(pCtx)

			select {
			case <-pCtx.Done():
				slog.WarnContext(pCtx, "goroutine canceled", "because", pCtx.Err())
			default:
				if err := f(pCtx); err != nil {
					m.errMu.Lock()
					m.errs = append(m.errs, err)
					m.errMu.Unlock()
				}
			}
		})

	default:
		m.stateMu.RUnlock()
		slog.WarnContext(pCtx, "Maximum goroutine limit reached, failed to start new goroutine")
	}
}

// release frees the semaphore slot and logs any panic from the task.
func (m *Manager) release(ctx context.Context) {
	<-m.sema

	rvr := recover()
	if rvr == nil {
		return
	}

	stack := debug.Stack()
	if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
		slog.ErrorContext(ctx, "panic occurred in goroutine", "stack", paths)
	} else {
		slog.ErrorContext(ctx, "panic occurred in goroutine", "stack", string(stack))
	}
}

// Wait closes the manager to new work, blocks until every scheduled task
// finishes, and returns the collected errors joined together.
func (m *Manager) Wait() error {
	if m == nil {
		return nil
	}

	m.stateMu.Lock()
	m.closed = true
	m.stateMu.Unlock()

	m.wg.Wait()

	return errors.Join(m.errs...)
}
