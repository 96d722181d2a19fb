package bot

import (
	"context"
	"time"
)

// Стратегии задержки между повторами.
const (
	backoffFixed       = "fixed"
	backoffExponential = "exponential"
)

const maxRetryDelay = 30 * time.Second

// calculateBackoff вычисляет задержку перед повтором.
//
// "exponential": delay = base * 2^(attempt-1), но не больше maxRetryDelay.
// "fixed" или неизвестная стратегия: delay = base.
func calculateBackoff(attempt int, base time.Duration, strategy string) time.Duration {
	if base <= 0 {
		return 0
	}

	delay := base
	if strategy == backoffExponential {
		for i := 1; i < attempt; i++ {
			delay *= 2
			if delay > maxRetryDelay {
				return maxRetryDelay
			}
		}
	}

	return min(delay, maxRetryDelay)
}

// wait ждёт d с учётом context. Нулевая задержка не блокирует.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
