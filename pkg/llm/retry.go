package llm

import (
	"context"
	"math/rand/v2"
	"time"
)

// RetryConfig configures retry behavior for completion calls.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	MaxAttempts int

	// InitialBackoff is the starting backoff duration.
	InitialBackoff time.Duration

	// MaxBackoff is the maximum backoff duration.
	MaxBackoff time.Duration

	// BackoffFactor is the multiplier applied to backoff after each attempt.
	BackoffFactor float64

	// Jitter is the random jitter factor (0.0-1.0).
	Jitter float64

	// RetryableFunc optionally overrides the default retryability check.
	RetryableFunc func(error) bool
}

// DefaultRetry is the standard retry configuration for a local backend:
// a couple of quick attempts, never long enough to stall a turn.
var DefaultRetry = RetryConfig{
	MaxAttempts:    2,
	InitialBackoff: 250 * time.Millisecond,
	MaxBackoff:     2 * time.Second,
	BackoffFactor:  2.0,
	Jitter:         0.1,
}

// NoRetry disables retries.
var NoRetry = RetryConfig{
	MaxAttempts: 1,
}

// RetryResult contains the result of a retried operation.
type RetryResult[T any] struct {
	// Value is the result if successful.
	Value T

	// Err is the final error if all attempts failed.
	Err error

	// Attempts is the number of attempts made.
	Attempts int

	// Duration is the total time spent retrying.
	Duration time.Duration
}

// WithRetry executes fn with retries, respecting context cancellation.
// Non-retryable errors and context expiry end the loop immediately.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn func(context.Context) (T, error)) RetryResult[T] {
	start := time.Now()
	backoff := cfg.InitialBackoff
	var lastErr error
	var zero T

	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	isRetryable := cfg.RetryableFunc
	if isRetryable == nil {
		isRetryable = IsRetryable
	}

	attempts := 0
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attempts = attempt
		value, err := fn(ctx)
		if err == nil {
			return RetryResult[T]{
				Value:    value,
				Attempts: attempt,
				Duration: time.Since(start),
			}
		}
		lastErr = err

		if ctx.Err() != nil || !isRetryable(err) || attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return RetryResult[T]{
				Value:    zero,
				Err:      ctx.Err(),
				Attempts: attempt,
				Duration: time.Since(start),
			}
		case <-time.After(jittered(backoff, cfg.Jitter)):
		}

		backoff = time.Duration(float64(backoff) * cfg.BackoffFactor)
		if cfg.MaxBackoff > 0 && backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}
	}

	return RetryResult[T]{
		Value:    zero,
		Err:      lastErr,
		Attempts: attempts,
		Duration: time.Since(start),
	}
}

// jittered applies symmetric random jitter to a duration.
func jittered(d time.Duration, factor float64) time.Duration {
	if factor <= 0 {
		return d
	}
	delta := float64(d) * factor
	offset := (rand.Float64()*2 - 1) * delta
	result := time.Duration(float64(d) + offset)
	if result < 0 {
		return 0
	}
	return result
}
