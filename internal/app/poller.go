package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/mycoach/internal/screens"
)

const (
	defaultPollInterval = 10 * time.Second
	maxBackoff          = 30 * time.Second
)

// StartPoller launches a background goroutine that reloads the focused
// screen. Consecutive failures stretch the wait up to maxBackoff. It returns
// immediately.
func StartPoller(ctx context.Context, set *screens.Set, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		failures := 0
		for {
			timer := time.NewTimer(calculateBackoff(failures, interval))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			failures = refresh(ctx, set.Focused(), failures, logger)
		}
	}()
}

// refresh reloads target and returns the new consecutive failure count.
func refresh(ctx context.Context, target screens.Refresher, failures int, logger *slog.Logger) int {
	if target == nil {
		return failures
	}
	if err := target.Reload(ctx); err != nil {
		if ctx.Err() == nil {
			logger.Debug("background refresh failed", "screen", target.Name(), "failures", failures+1, "error", err)
		}
		return failures + 1
	}
	return 0
}

// calculateBackoff doubles base per consecutive failure, capped at
// maxBackoff. Intervals already above the cap are left alone.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 || base >= maxBackoff {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
