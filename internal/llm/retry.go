package llm

import (
	"context"
	"math/rand"
	"time"

	"github.com/kartika/paper-generator/internal/logger"
)

// DefaultMaxAttempts is the stock retry ceiling for provider calls.
const DefaultMaxAttempts = 3

const (
	backoffBase = 1 * time.Second
	backoffCap  = 60 * time.Second
)

// WithRetry invokes fn up to maxAttempts times, sleeping with exponential
// backoff plus jitter between attempts. Only errors classified as
// transient (rate limiting, quota windows) are retried; everything else
// returns immediately.
func WithRetry(ctx context.Context, log *logger.AppLogger, maxAttempts int, fn func(ctx context.Context) (string, error)) (string, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt)
			log.Warn("retrying provider call", "attempt", attempt+1, "delay", delay.String(), "error", lastErr)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !Retryable(err) {
			return "", err
		}
	}
	return "", lastErr
}

// backoffDelay computes the sleep before the given attempt: base doubled
// per attempt, capped, with up to one second of jitter.
func backoffDelay(attempt int) time.Duration {
	delay := backoffBase << (attempt - 1)
	if delay > backoffCap {
		delay = backoffCap
	}
	return delay + time.Duration(rand.Int63n(int64(time.Second)))
}
