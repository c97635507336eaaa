package engine

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/tercet-ai/tercet/internal/core"
)

// RetryPolicy defines retry behavior for provider calls. It is an
// explicit value injected into the executor, not literals in the loop.
type RetryPolicy struct {
	MaxAttempts   int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	JitterFactor  float64 // 0.0 to 1.0
}

// DefaultRetryPolicy returns a default retry policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   3,
		BaseDelay:     time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
		JitterFactor:  0.2,
	}
}

// PolicyFromSpec builds a retry policy from a stage's retry spec.
func PolicyFromSpec(spec core.RetrySpec) RetryPolicy {
	p := DefaultRetryPolicy()
	if spec.MaxAttempts > 0 {
		p.MaxAttempts = spec.MaxAttempts
	}
	if spec.BaseDelay > 0 {
		p.BaseDelay = spec.BaseDelay
	}
	if spec.MaxDelay > 0 {
		p.MaxDelay = spec.MaxDelay
	}
	if spec.BackoffFactor >= 1 {
		p.BackoffFactor = spec.BackoffFactor
	}
	return p
}

// RetryableFunc is one attempt of the retried operation.
type RetryableFunc func(ctx context.Context) error

// Execute runs the function with retry and returns the number of
// attempts consumed. A non-retryable error aborts immediately;
// exhausting the budget returns a RetryExhaustedError carrying the
// last cause. Context cancellation abandons the current backoff sleep
// and is returned as-is.
func (p RetryPolicy) Execute(ctx context.Context, fn RetryableFunc) (int, error) {
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, err
		}

		err := fn(ctx)
		if err == nil {
			return attempt, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return attempt, ctx.Err()
		}
		if !core.IsRetryable(err) {
			return attempt, err
		}
		if attempt == p.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return attempt, ctx.Err()
		case <-time.After(p.Delay(attempt)):
		}
	}

	return p.MaxAttempts, &RetryExhaustedError{
		Attempts: p.MaxAttempts,
		LastErr:  lastErr,
	}
}

// Delay computes the backoff before the attempt following the given
// one: BaseDelay * BackoffFactor^(attempt-1), capped and jittered.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	delay := float64(p.BaseDelay) * math.Pow(p.BackoffFactor, float64(attempt-1))
	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	if p.JitterFactor > 0 {
		jitter := delay * p.JitterFactor
		delay += (rand.Float64()*2 - 1) * jitter
	}
	return time.Duration(delay)
}

// DelayNoJitter computes the backoff without jitter (for testing).
func (p RetryPolicy) DelayNoJitter(attempt int) time.Duration {
	delay := float64(p.BaseDelay) * math.Pow(p.BackoffFactor, float64(attempt-1))
	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	return time.Duration(delay)
}

// RetryExhaustedError indicates all retry attempts failed.
type RetryExhaustedError struct {
	Attempts int
	LastErr  error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("retry exhausted after %d attempts: %v", e.Attempts, e.LastErr)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.LastErr
}
