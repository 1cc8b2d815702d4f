package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("overloaded")
var errFatal = errors.New("bad request")

func isTransient(err error) bool { return errors.Is(err, errTransient) }

func fastPolicy(retries int) RetryPolicy {
	return RetryPolicy{Name: "test", MaxRetries: retries, BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond, Retryable: isTransient}
}

func TestRetryRecovers(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), fastPolicy(3), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errTransient
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" || calls != 3 {
		t.Errorf("expected ok after 3 calls, got %q after %d", got, calls)
	}
}

func TestRetryGivesUp(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(2), func(ctx context.Context) (int, error) {
		calls++
		return 0, errTransient
	})
	if !errors.Is(err, errTransient) {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 1 attempt + 2 retries, got %d calls", calls)
	}
}

func TestRetrySkipsNonRetryable(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(5), func(ctx context.Context) (int, error) {
		calls++
		return 0, errFatal
	})
	if !errors.Is(err, errFatal) || calls != 1 {
		t.Errorf("expected single call with fatal error, got %d calls err=%v", calls, err)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := fastPolicy(10)
	p.BaseDelay = time.Hour
	p.MaxDelay = 0

	calls := 0
	_, err := Retry(ctx, p, func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, errTransient
	})
	if !errors.Is(err, errTransient) || calls != 1 {
		t.Errorf("expected to stop after cancel, got %d calls err=%v", calls, err)
	}
}

func TestRetryDelay(t *testing.T) {
	p := RetryPolicy{BaseDelay: time.Second, MaxDelay: 5 * time.Second}
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 5 * time.Second},
		{10, 5 * time.Second},
	}
	for _, tt := range tests {
		if got := p.Delay(tt.attempt); got != tt.want {
			t.Errorf("attempt %d: expected %v, got %v", tt.attempt, tt.want, got)
		}
	}
}

func TestBreakerIgnoresNonTrippingErrors(t *testing.T) {
	b := NewBreaker("test", isTransient)

	for i := 0; i < 20; i++ {
		if err := b.Execute("op", func() error { return errFatal }); !errors.Is(err, errFatal) {
			t.Fatalf("expected pass-through error, got %v", err)
		}
	}
	if b.IsOpen() {
		t.Error("client errors must not open the breaker")
	}
}

func TestBreakerOpensOnTransientErrors(t *testing.T) {
	b := NewBreaker("test", isTransient)

	for i := 0; i < 6; i++ {
		_ = b.Execute("op", func() error { return errTransient })
	}
	if !b.IsOpen() {
		t.Fatalf("expected open breaker, state=%s", b.State())
	}

	called := false
	err := b.Execute("op", func() error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) || called {
		t.Errorf("expected fast failure while open, got %v called=%v", err, called)
	}
}
