package httpx

import (
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// CircuitBreaker guards an outbound call so a struggling upstream is given
// time to recover instead of being hammered.
type CircuitBreaker interface {
	Execute(fn func() error) error
}

type circuitBreakerWrapper struct {
	breaker *gobreaker.CircuitBreaker
}

// NewCircuitBreaker opens after maxFailures consecutive failures and probes
// again once the cooldown has elapsed.
func NewCircuitBreaker(name string, cooldown time.Duration, maxFailures uint32) CircuitBreaker {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	})
	return &circuitBreakerWrapper{breaker: cb}
}

func (w *circuitBreakerWrapper) Execute(fn func() error) error {
	if _, err := w.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	}); err != nil {
		return fmt.Errorf("breaker (%s): %w", w.breaker.Name(), err)
	}
	return nil
}
