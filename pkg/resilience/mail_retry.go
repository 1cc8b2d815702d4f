// Package resilience provides fault tolerance patterns for external service calls.
package resilience

import (
	"context"
	"time"

	"github.com/Karan2916/Intellimail-2/pkg/logger"
)

// RetryPolicy configures exponential backoff.
type RetryPolicy struct {
	Name       string
	MaxRetries int           // extra attempts after the first
	BaseDelay  time.Duration // delay before the first retry
	MaxDelay   time.Duration // 0 means uncapped
	// Retryable decides whether an error is worth another attempt.
	Retryable func(error) bool
}

// DefaultRetryPolicy retries up to 3 times starting at 1s.
func DefaultRetryPolicy(name string, retryable func(error) bool) RetryPolicy {
	return RetryPolicy{
		Name:       name,
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   8 * time.Second,
		Retryable:  retryable,
	}
}

// Delay returns the wait before retry number attempt (0-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Retry runs fn until it succeeds, returns a non-retryable error, the retry
// budget is spent, or ctx is done. The last error is returned.
func Retry[T any](ctx context.Context, p RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if attempt >= p.MaxRetries || p.Retryable == nil || !p.Retryable(err) {
			return zero, err
		}

		delay := p.Delay(attempt)
		logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"operation": p.Name,
			"attempt":   attempt + 1,
			"delay_ms":  delay.Milliseconds(),
		}).Warn("retrying after transient failure")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, err
		case <-timer.C:
		}
	}
}
