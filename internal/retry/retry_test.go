package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"frontpage/internal/retry"
)

func TestDoStopsAfterSuccess(t *testing.T) {
	calls := 0
	runner := retry.New(retry.Policy{MaxAttempts: 3, Delay: time.Second}, retry.WithSleeper(func(time.Duration) {}))
	err := runner.Do(context.Background(), func(attempt int) error {
		calls++
		if attempt < 2 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestDoExactAttemptCount(t *testing.T) {
	calls := 0
	var slept []time.Duration
	runner := retry.New(retry.Policy{MaxAttempts: 2, Delay: 10 * time.Second}, retry.WithSleeper(func(d time.Duration) {
		slept = append(slept, d)
	}))
	failure := errors.New("still empty")
	err := runner.Do(context.Background(), func(int) error {
		calls++
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected exactly 2 attempts, got %d", calls)
	}
	if len(slept) != 1 || slept[0] != 10*time.Second {
		t.Fatalf("expected one 10s sleep between attempts, got %v", slept)
	}
}

func TestDoHonorsRetryablePredicate(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	runner := retry.New(retry.Policy{
		MaxAttempts: 5,
		Retryable:   func(err error) bool { return !errors.Is(err, permanent) },
	})
	err := runner.Do(context.Background(), func(int) error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("non-retryable error should stop after first attempt, got %d", calls)
	}
}

func TestDoRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := retry.New(retry.Policy{MaxAttempts: 3})
	err := runner.Do(ctx, func(int) error { t.Fatal("op should not run"); return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewClampsAttempts(t *testing.T) {
	calls := 0
	runner := retry.New(retry.Policy{MaxAttempts: 0})
	_ = runner.Do(context.Background(), func(int) error {
		calls++
		return errors.New("fail")
	})
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}
