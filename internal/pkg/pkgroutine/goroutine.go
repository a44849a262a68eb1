package pkgroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// DefaultMaxGoroutine is used when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 10

// Manager runs functions in goroutines with a configurable concurrency limit.
//
// It collects errors returned by tasks and can be waited on using Wait.
type Manager struct {
	mu   sync.Mutex
	errs []error
	wg   *sync.WaitGroup
	sema chan struct{}
}

// NewManager creates a new Manager with the provided maximum concurrency.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = DefaultMaxGoroutine
	}

	return &Manager{
		wg:   &sync.WaitGroup{},
		sema: make(chan struct{}, maxGoroutine), // Semaphore to limit goroutines
	}
}

// Go schedules a function to run in a goroutine if capacity is available.
//
// If the manager is already at its concurrency limit, the function is not run
// and a warning is logged.
func (g *Manager) Go(pCtx context.Context, f func(ctx context.Context) error) {
	select {
	case g.sema <- struct{}{}: // Acquire a semaphore slot
	case <-pCtx.Done():
		slog.WarnContext(pCtx, "goroutine canceled before start", "because", pCtx.Err())
		return
	}

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() {
			<-g.sema // Release semaphore slot

			if rvr := recover(); rvr != nil {
				stack := debug.Stack()
				slog.ErrorContext(pCtx, "panic occurred in goroutine", "stack", string(stack))
			}
		}()

		select {
		case <-pCtx.Done():
			slog.WarnContext(pCtx, "goroutine canceled", "because", pCtx.Err())
		default:
			if err := f(pCtx); err != nil {
				g.mu.Lock()
				g.errs = append(g.errs, err)
				g.mu.Unlock()
			}
		}
	}()
}

// Wait blocks until all scheduled goroutines finish and returns any collected errors.
func (g *Manager) Wait() error {
	g.wg.Wait()

	return errors.Join(g.errs...)
}

// Every runs f once per interval until ctx is canceled. Tick errors are
// logged under name and do not stop the loop. It occupies one slot of the
// manager for its whole lifetime.
func (g *Manager) Every(pCtx context.Context, name string, interval time.Duration, f func(ctx context.Context) error) {
	if interval <= 0 {
		slog.WarnContext(pCtx, "periodic task disabled", "task", name, "interval", interval)
		return
	}

	g.Go(pCtx, func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.InfoContext(ctx, "periodic task stopped", "task", name)
				return nil
			case <-ticker.C:
				if err := g.tick(ctx, name, f); err != nil {
					slog.WarnContext(ctx, "periodic task failed", "task", name, "error", err)
				}
			}
		}
	})
}

func (g *Manager) tick(ctx context.Context, name string, f func(ctx context.Context) error) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			slog.ErrorContext(ctx, "panic occurred in periodic task", "task", name, "stack", string(debug.Stack()))
		}
	}()

	return f(ctx)
}
