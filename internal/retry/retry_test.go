package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func noSleep(_ context.Context, _ time.Duration) error { return nil }

func TestDoStopsOnSuccess(t *testing.T) {
	calls := 0
	n, err := Do(context.Background(), Policy{MaxAttempts: 3, Backoff: time.Second, Sleep: noSleep}, func(context.Context, int) error {
		calls++
		if calls < 2 {
			return errors.New("blip")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if n != 2 || calls != 2 {
		t.Fatalf("expected 2 attempts, got n=%d calls=%d", n, calls)
	}
}

func TestDoExhaustsBudget(t *testing.T) {
	var slept []time.Duration
	sleep := func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	boom := errors.New("boom")
	n, err := Do(context.Background(), Policy{MaxAttempts: 3, Backoff: 2 * time.Second, Sleep: sleep}, func(context.Context, int) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected last error, got %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 attempts, got %d", n)
	}
	if len(slept) != 2 || slept[0] != 2*time.Second {
		t.Fatalf("expected two fixed waits, got %v", slept)
	}
}

func TestDoFailsFastOnNonRetryable(t *testing.T) {
	fatal := errors.New("transcripts disabled")
	var seen []int
	n, err := Do(context.Background(), Policy{
		MaxAttempts: 5,
		Sleep:       noSleep,
		IsRetryable: func(err error) bool { return !errors.Is(err, fatal) },
		OnFailure:   func(attempt int, _ error) { seen = append(seen, attempt) },
	}, func(context.Context, int) error { return fatal })
	if !errors.Is(err, fatal) {
		t.Fatalf("unexpected error %v", err)
	}
	if n != 1 || len(seen) != 1 {
		t.Fatalf("expected exactly one attempt, got n=%d seen=%v", n, seen)
	}
}

func TestDoHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	n, err := Do(ctx, Policy{MaxAttempts: 3}, func(context.Context, int) error {
		calls++
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if n != 0 || calls != 0 {
		t.Fatalf("expected no attempts, got n=%d calls=%d", n, calls)
	}
}

func TestWaitCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Wait(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}
