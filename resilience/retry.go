package resilience

import (
	"context"
	"math"
	"time"

	"github.com/nimbus-ai/reasoncore/core"
)

// RetryConfig configures exponential backoff with jitter.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	JitterEnabled bool
}

// DefaultRetryConfig is three attempts, starting at 100ms, doubling up to
// 5s. The backend client does not use it; it runs its own retry loop.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		JitterEnabled: true,
	}
}

// Retry calls fn until it succeeds, the context is done, or MaxAttempts is
// exhausted, sleeping with exponential backoff and jitter between tries.
func Retry(ctx context.Context, config *RetryConfig, fn func() error) error {
	if config == nil {
		config = DefaultRetryConfig()
	}

	var lastErr error
	delay := config.InitialDelay

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt == config.MaxAttempts {
			break
		}

		if attempt > 1 {
			delay = time.Duration(float64(delay) * config.BackoffFactor)
			if delay > config.MaxDelay {
				delay = config.MaxDelay
			}
		}

		if config.JitterEnabled {
			jitter := time.Duration(float64(delay) * 0.1 * math.Sin(float64(attempt)))
			delay += jitter
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return core.New("resilience.Retry", core.KindTimeout, "", lastErr)
}

// RetryWithCircuitBreaker wraps fn so that each attempt first checks the
// breaker and records its outcome, combining retry with fail-fast.
func RetryWithCircuitBreaker(ctx context.Context, config *RetryConfig, cb *CircuitBreaker, fn func() error) error {
	return Retry(ctx, config, func() error {
		if !cb.CanExecute() {
			return core.New("resilience.RetryWithCircuitBreaker", core.KindBackend, cb.Name(), ErrCircuitOpen)
		}

		err := fn()
		if err != nil {
			cb.RecordFailure(err)
			return err
		}

		cb.RecordSuccess()
		return nil
	})
}
