package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: NewLogger("test")}

	calls := 0
	err := r.Do(context.Background(), "flaky op", func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if calls != 3 {
		t.Errorf("fn called %d times; want 3", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, Logger: NewLogger("test")}

	sentinel := errors.New("permanent")
	err := r.Do(context.Background(), "doomed op", func() error { return sentinel })

	if !errors.Is(err, sentinel) {
		t.Fatalf("Do error = %v; want wrapped %v", err, sentinel)
	}
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 5, BaseDelay: time.Hour, Logger: NewLogger("test")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := r.Do(ctx, "cancelled op", func() error {
		calls++
		return errors.New("fail")
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Do error = %v; want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times; want 1 (no retry after cancel)", calls)
	}
}
