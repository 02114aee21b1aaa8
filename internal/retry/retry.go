// Package retry provides the single retry-policy abstraction shared by
// the archive fetch, journal submission, and the historical-events batch
// driver. Each call site parameterizes attempts, delay, and the predicate
// deciding whether a failure is worth retrying.
package retry

import (
	"context"
	"time"
)

// Policy describes how an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int
	// Delay is the fixed pause between attempts.
	Delay time.Duration
	// Retryable decides whether the error from a failed attempt should
	// trigger another attempt. A nil predicate retries every error.
	Retryable func(error) bool
}

// Option customizes a Runner.
type Option func(*Runner)

// WithSleeper overrides how delays are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(r *Runner) {
		if sleeper != nil {
			r.sleeper = sleeper
		}
	}
}

// Runner executes operations under a Policy.
type Runner struct {
	policy  Policy
	sleeper func(time.Duration)
}

// New constructs a Runner for the given policy.
func New(policy Policy, opts ...Option) *Runner {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	runner := &Runner{policy: policy, sleeper: time.Sleep}
	for _, opt := range opts {
		opt(runner)
	}
	return runner
}

// Do invokes op until it succeeds, the policy is exhausted, or the
// context is cancelled. The attempt number passed to op is 1-based. The
// last error is returned when all attempts fail.
func (r *Runner) Do(ctx context.Context, op func(attempt int) error) error {
	var lastErr error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = op(attempt)
		if lastErr == nil {
			return nil
		}
		if r.policy.Retryable != nil && !r.policy.Retryable(lastErr) {
			return lastErr
		}
		if attempt < r.policy.MaxAttempts && r.policy.Delay > 0 {
			r.sleeper(r.policy.Delay)
		}
	}
	return lastErr
}
