package utils

import (
	"context"
	"time"
)

// WaitFor blocks for d or until ctx is done.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Backoff returns base doubled per previous attempt and capped at limit.
// Attempts are counted from 1.
func Backoff(base time.Duration, attempt int, limit time.Duration) time.Duration {
	if base <= 0 || attempt < 1 {
		return 0
	}
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if limit > 0 && delay >= limit {
			return limit
		}
	}
	if limit > 0 && delay > limit {
		return limit
	}
	return delay
}
