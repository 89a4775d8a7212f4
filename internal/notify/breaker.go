package notify

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/Skotchmaster/storefront/internal/metrics"
)

type breaker struct {
	*gobreaker.CircuitBreaker
	name    string
	service string
}

func newBreaker(name, service string) *breaker {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		IsSuccessful: countsAsSuccess,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(cbName string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(service, cbName).Set(stateValue(to))
			slog.Info("circuit_breaker_state_changed", "circuit", cbName, "from", from.String(), "to", to.String())
		},
	})

	metrics.CircuitBreakerState.WithLabelValues(service, name).Set(0)
	return &breaker{CircuitBreaker: cb, name: name, service: service}
}

func (b *breaker) Execute(fn func() (any, error)) (any, error) {
	res, err := b.CircuitBreaker.Execute(fn)
	if !countsAsSuccess(err) {
		metrics.CircuitBreakerFailures.WithLabelValues(b.service, b.name).Inc()
	}
	return res, wrapBreakerError(b.name, err)
}

// A rejection of a single message is not an outage.
func countsAsSuccess(err error) bool {
	return err == nil || errors.Is(err, ErrRejected)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

func wrapBreakerError(name string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) {
		return fmt.Errorf("circuit breaker %s is open: %w", name, err)
	}
	if errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("circuit breaker %s: too many requests in half-open state: %w", name, err)
	}
	return err
}
