package utils

import (
	"context"
	"time"
)

// WaitFor blocks for the given duration or until the context is done,
// whichever comes first.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RetryDelay returns a linear backoff delay for the given attempt, starting
// at base and capped at max. Attempts below one get no delay.
func RetryDelay(attempt int, base, max time.Duration) time.Duration {
	if attempt < 1 || base <= 0 {
		return 0
	}

	d := time.Duration(attempt) * base
	if max > 0 && d > max {
		return max
	}

	return d
}
