package worker

import (
	"context"
	"log/slog"
	"time"
)

// RunPeriodic calls fn immediately and then every interval until ctx is
// done. Errors from fn are logged and do not stop the loop.
func RunPeriodic(ctx context.Context, logger *slog.Logger, name string, interval time.Duration, fn func(context.Context) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := fn(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("periodic job failed", slog.String("job", name), slog.Any("error", err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
