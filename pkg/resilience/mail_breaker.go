package resilience

import (
	"errors"
	"time"

	"github.com/Karan2916/Intellimail-2/pkg/logger"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = gobreaker.ErrOpenState

// Breaker wraps gobreaker. Errors for which Trips returns false are passed
// through without counting as failures.
type Breaker struct {
	cb    *gobreaker.CircuitBreaker
	trips func(error) bool
}

// NewBreaker opens after more than 5 consecutive failures or a 60% failure
// ratio over at least 10 requests.
func NewBreaker(name string, trips func(error) bool) *Breaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		IsSuccessful: func(err error) bool {
			var nce *nonCircuitError
			return err == nil || errors.As(err, &nce)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	}
	if trips == nil {
		trips = func(error) bool { return true }
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings), trips: trips}
}

// Execute runs fn under the breaker.
func (b *Breaker) Execute(operation string, fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		if err := fn(); err != nil {
			if !b.trips(err) {
				return nil, &nonCircuitError{err: err}
			}
			return nil, err
		}
		return nil, nil
	})

	var nce *nonCircuitError
	if errors.As(err, &nce) {
		return nce.err
	}

	if err != nil {
		logger.WithError(err).WithFields(map[string]any{
			"operation": operation,
			"state":     b.cb.State().String(),
		}).Debug("call failed under circuit breaker")
	}
	return err
}

func (b *Breaker) State() string {
	return b.cb.State().String()
}

func (b *Breaker) IsOpen() bool {
	return b.cb.State() == gobreaker.StateOpen
}

// nonCircuitError wraps errors that should not trip the circuit breaker.
type nonCircuitError struct {
	err error
}

func (e *nonCircuitError) Error() string {
	return e.err.Error()
}
