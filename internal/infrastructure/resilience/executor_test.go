package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2.0,

		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      time.Second,
		BreakerHalfOpenMaxCalls: 1,
	}
}

func alwaysRetry(error) ErrorClassification {
	return ErrorClassification{Retryable: true, RecordFailure: true}
}

func TestExecuteRetriesUntilSuccess(t *testing.T) {
	exec := NewExecutor(fastConfig())

	calls := 0
	err := exec.Execute(context.Background(), "op.retry", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, alwaysRetry)

	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestExecuteStopsOnNonRetryableError(t *testing.T) {
	exec := NewExecutor(fastConfig())
	permanent := errors.New("bad request")

	calls := 0
	err := exec.Execute(context.Background(), "op.permanent", func(context.Context) error {
		calls++
		return permanent
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: false}
	})

	if !errors.Is(err, permanent) {
		t.Fatalf("Execute() error = %v, want %v", err, permanent)
	}
	if calls != 1 {
		t.Fatalf("non-retryable error must not be retried, got %d attempts", calls)
	}
}

func TestExecuteExhaustsAttempts(t *testing.T) {
	exec := NewExecutor(fastConfig())
	transient := errors.New("still down")

	calls := 0
	err := exec.Execute(context.Background(), "op.exhaust", func(context.Context) error {
		calls++
		return transient
	}, alwaysRetry)

	if !errors.Is(err, transient) {
		t.Fatalf("Execute() error = %v, want %v", err, transient)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestExecuteOpensCircuitAfterRepeatedFailures(t *testing.T) {
	exec := NewExecutor(fastConfig())
	transient := errors.New("down")

	for range 3 {
		_ = exec.Execute(context.Background(), "op.breaker", func(context.Context) error {
			return transient
		}, alwaysRetry)
	}

	calls := 0
	err := exec.Execute(context.Background(), "op.breaker", func(context.Context) error {
		calls++
		return nil
	}, alwaysRetry)

	if !IsCircuitOpen(err) {
		t.Fatalf("Execute() error = %v, want open circuit", err)
	}
	if calls != 0 {
		t.Fatalf("open circuit must short-circuit the call, got %d attempts", calls)
	}
}

func TestBreakersAreIsolatedPerOperation(t *testing.T) {
	exec := NewExecutor(fastConfig())
	transient := errors.New("down")

	for range 3 {
		_ = exec.Execute(context.Background(), "op.broken", func(context.Context) error {
			return transient
		}, alwaysRetry)
	}

	if err := exec.Execute(context.Background(), "op.healthy", func(context.Context) error {
		return nil
	}, alwaysRetry); err != nil {
		t.Fatalf("healthy operation must be unaffected: %v", err)
	}
}

func TestExecuteRespectsContextCancellation(t *testing.T) {
	exec := NewExecutor(fastConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := exec.Execute(ctx, "op.cancelled", func(context.Context) error {
		calls++
		return nil
	}, alwaysRetry)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Execute() error = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Fatalf("cancelled context must prevent the call, got %d attempts", calls)
	}
}

func TestExecuteWithBreakerDisabled(t *testing.T) {
	cfg := fastConfig()
	cfg.BreakerEnabled = false
	exec := NewExecutor(cfg)

	transient := errors.New("down")
	for range 5 {
		_ = exec.Execute(context.Background(), "op.nobreaker", func(context.Context) error {
			return transient
		}, alwaysRetry)
	}

	if err := exec.Execute(context.Background(), "op.nobreaker", func(context.Context) error {
		return nil
	}, alwaysRetry); err != nil {
		t.Fatalf("disabled breaker must never open: %v", err)
	}
}
