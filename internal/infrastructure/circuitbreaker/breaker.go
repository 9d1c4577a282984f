package circuitbreaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Settings configures a circuit breaker
type Settings struct {
	// Name identifies the circuit breaker in logs
	Name string

	// MaxRequests is the number of requests allowed through while half-open
	MaxRequests uint32

	// Interval is the cyclic period of the closed state after which counts reset
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing again
	Timeout time.Duration

	// FailureThreshold trips the breaker after this many consecutive failures
	FailureThreshold uint32

	// FailureRatio trips the breaker once at least MinRequests were seen and
	// this share of them failed. Zero disables the ratio rule.
	FailureRatio float64
	MinRequests  uint32
}

// DefaultSettings returns default circuit breaker settings
func DefaultSettings(name string) Settings {
	return Settings{
		Name:             name,
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// New creates a gobreaker circuit breaker that logs state transitions
func New(settings Settings, log *zap.Logger) *gobreaker.CircuitBreaker {
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = 5
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= settings.FailureThreshold {
				return true
			}
			if settings.FailureRatio <= 0 || counts.Requests < settings.MinRequests || counts.Requests == 0 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= settings.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// IsCircuitOpen checks if the error is due to an open or saturated circuit
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
