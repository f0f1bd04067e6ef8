package httpx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const defaultHalfOpenRequests = 5

type CircuitBreaker interface {
	Execute(fn func() error) error
	Name() string
	State() gobreaker.State
}

type BreakerSettings struct {
	Name        string
	Timeout     time.Duration
	MaxFailures uint32
}

type circuitBreakerWrapper struct {
	breaker *gobreaker.CircuitBreaker
}

// NewCircuitBreaker trips after MaxFailures consecutive failures and probes
// again once Timeout has elapsed. Calls abandoned by the caller through
// context cancellation do not count as failures. State changes are logged
// when logger is set.
func NewCircuitBreaker(settings BreakerSettings, logger *logrus.Logger) CircuitBreaker {
	maxFailures := settings.MaxFailures
	st := gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: defaultHalfOpenRequests,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: isCountedSuccess,
	}
	if logger != nil {
		st.OnStateChange = func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		}
	}
	return &circuitBreakerWrapper{
		breaker: gobreaker.NewCircuitBreaker(st),
	}
}

func isCountedSuccess(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

func (g *circuitBreakerWrapper) Execute(fn func() error) error {
	_, err := g.breaker.Execute(func() (res interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic recovered: %v", r)
			}
		}()
		return nil, fn()
	})
	if err != nil {
		return fmt.Errorf("breaker (%s): %w", g.breaker.Name(), err)
	}
	return nil
}

func (g *circuitBreakerWrapper) Name() string {
	return g.breaker.Name()
}

func (g *circuitBreakerWrapper) State() gobreaker.State {
	return g.breaker.State()
}

// IsBreakerOpen reports whether err was produced by a breaker rejecting the
// call rather than by the call itself.
func IsBreakerOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
