package embedder

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Retry defaults for embedding calls
const (
	DefaultMaxRetries = 5
	DefaultBaseDelay  = 750 * time.Millisecond
	DefaultMultiplier = 2.0
)

// RetryPolicy configures exponential backoff for provider calls
type RetryPolicy struct {
	MaxRetries int           // Retries after the first attempt
	BaseDelay  time.Duration // Delay before the first retry
	MaxDelay   time.Duration // Upper bound on a single delay, zero for none
	Multiplier float64       // Growth factor between retries

	// Retryable classifies errors, IsRetryable when nil
	Retryable func(error) bool

	// OnRetry is called before each backoff sleep
	OnRetry func(retry int, delay time.Duration, err error)
}

// DefaultRetryPolicy returns the policy used for embedding calls:
// five retries starting at 750ms and doubling, for 429 and 5xx only
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		Multiplier: DefaultMultiplier,
		Retryable:  IsRetryable,
	}
}

// Delay returns the wait before the given retry (1-based)
func (p RetryPolicy) Delay(retry int) time.Duration {
	mult := p.Multiplier
	if mult <= 0 {
		mult = DefaultMultiplier
	}
	d := time.Duration(float64(p.BaseDelay) * math.Pow(mult, float64(retry-1)))
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Retry runs fn until it succeeds, fails permanently, or the policy is
// exhausted. Context cancellation stops it immediately.
func Retry[T any](ctx context.Context, p RetryPolicy, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}

	for retry := 0; ; retry++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if !retryable(err) {
			return zero, err
		}
		if retry >= p.MaxRetries {
			return zero, fmt.Errorf("%w after %d retries: %w", ErrProviderFailed, retry, err)
		}

		delay := p.Delay(retry + 1)
		if p.OnRetry != nil {
			p.OnRetry(retry+1, delay, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}
