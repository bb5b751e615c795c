package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	pkgerrors "github.com/ndstyle/mindflow2/pkg/errors"
)

// BreakerConfig holds configuration for the provider circuit breaker.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      2,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// BreakerProvider stops calling a failing provider for a while so that
// generation falls back immediately instead of waiting on timeouts.
type BreakerProvider struct {
	inner Provider
	cb    *gobreaker.CircuitBreaker
}

func NewBreakerProvider(inner Provider, config BreakerConfig, logger *zap.Logger) *BreakerProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("LLM circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// A cancelled caller says nothing about the provider's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &BreakerProvider{inner: inner, cb: cb}
}

func (b *BreakerProvider) IsAvailable() bool {
	return b.inner.IsAvailable() && b.cb.State() != gobreaker.StateOpen
}

func (b *BreakerProvider) State() gobreaker.State { return b.cb.State() }

func (b *BreakerProvider) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Complete(ctx, prompt, opts)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", pkgerrors.NewUnavailableError("llm").WithCause(err)
	}
	if err != nil {
		return "", err
	}
	return out.(string), nil
}
