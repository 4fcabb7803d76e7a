// internal/client/countdown.go
package client

import (
	"context"
	"time"
)

// Countdown emits from, from-1, ..., 0 on the returned channel, one value per
// interval, starting with from immediately. The channel closes after 0 or when
// ctx is cancelled. Consumers feed the values into
// RecoveryContext.RetryCountdown.
func Countdown(ctx context.Context, from int, interval time.Duration) <-chan int {
	if interval <= 0 {
		interval = time.Second
	}

	out := make(chan int, 1)
	go func() {
		defer close(out)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for n := from; n >= 0; n-- {
			select {
			case out <- n:
			case <-ctx.Done():
				return
			}
			if n == 0 {
				return
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
