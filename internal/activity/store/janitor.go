package store

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper removes expired sessions.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (int64, error)
}

// Janitor returns a task that runs one sweep per call, suitable for a
// periodic runner.
func Janitor(s Sweeper, now func() time.Time) func(ctx context.Context) error {
	if now == nil {
		now = time.Now
	}

	return func(ctx context.Context) error {
		removed, err := s.Sweep(ctx, now())
		if err != nil {
			return err
		}
		if removed > 0 {
			slog.InfoContext(ctx, "expired sessions removed", "count", removed)
		}
		return nil
	}
}
