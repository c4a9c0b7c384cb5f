// Package retry implements the bounded exponential-backoff discipline
// shared by the fetcher and the provider clients.
package retry

import (
	"context"
	"time"

	"shopmate/internal/domain"
)

// Config bounds a retried operation.
type Config struct {
	MaxAttempts int           // total attempts, including the first
	BaseDelay   time.Duration // delay before attempt k is BaseDelay * 2^(k-1)
	MaxDelay    time.Duration // optional cap; 0 means uncapped
}

// Default returns the standard 3-attempt policy.
func Default() Config {
	return Config{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 8 * time.Second}
}

// Sleeper pauses between attempts; tests substitute a recording fake.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepWithContext waits for d or until ctx is done.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do runs fn up to cfg.MaxAttempts times, backing off exponentially after
// each retryable failure. Non-retryable failures return immediately. The
// last observed error is returned when attempts are exhausted.
func Do(ctx context.Context, cfg Config, sleep Sleeper, fn func(ctx context.Context) error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if sleep == nil {
		sleep = SleepWithContext
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.ClassifyTransport("retry", err)
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !domain.IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		if err := sleep(ctx, backoff(cfg, attempt)); err != nil {
			return domain.ClassifyTransport("retry", err)
		}
	}
	return lastErr
}

// backoff returns the delay before the attempt following the given one.
func backoff(cfg Config, attempt int) time.Duration {
	d := cfg.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	if cfg.MaxDelay > 0 && d > cfg.MaxDelay {
		d = cfg.MaxDelay
	}
	return d
}
