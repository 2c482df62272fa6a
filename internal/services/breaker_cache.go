package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// BreakerRunCache stops calling a failing cache until timeout has passed.
// A cache miss does not count as a failure.
type BreakerRunCache struct {
	next    RunCache
	breaker *gobreaker.CircuitBreaker
}

func NewBreakerRunCache(next RunCache, failures uint32, timeout time.Duration, log logrus.FieldLogger) *BreakerRunCache {
	settings := gobreaker.Settings{
		Name:        "run-cache",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrRunNotFound)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	}
	return &BreakerRunCache{next: next, breaker: gobreaker.NewCircuitBreaker(settings)}
}

func (c *BreakerRunCache) Put(ctx context.Context, result *RunResult) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.next.Put(ctx, result)
	})
	return err
}

func (c *BreakerRunCache) Get(ctx context.Context, runID string) (*RunResult, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.next.Get(ctx, runID)
	})
	if err != nil {
		return nil, err
	}
	return out.(*RunResult), nil
}

// State reports the breaker state for health checks.
func (c *BreakerRunCache) State() string {
	return c.breaker.State().String()
}
