package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// RetryConfig configures retry behavior for LLM calls.
type RetryConfig struct {
	MaxRetries int           // attempts after the first; 0 disables retries
	RetryDelay time.Duration // delay before the first retry
	MaxDelay   time.Duration // cap for exponential backoff
	Timeout    time.Duration // per attempt
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		RetryDelay: 500 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Timeout:    45 * time.Second,
	}
}

// RetryProvider wraps a Provider with per attempt timeouts and retries.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
	logger *zap.Logger
}

func NewRetryProvider(inner Provider, config RetryConfig, logger *zap.Logger) *RetryProvider {
	return &RetryProvider{inner: inner, config: config, logger: logger}
}

func (r *RetryProvider) IsAvailable() bool { return r.inner.IsAvailable() }

func (r *RetryProvider) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.backoff(attempt)
			r.logger.Debug("Retrying LLM completion",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		attemptCtx, cancel := ctx, context.CancelFunc(func() {})
		if r.config.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		}
		text, err := r.inner.Complete(attemptCtx, prompt, opts)
		cancel()
		if err == nil {
			return text, nil
		}

		lastErr = err
		if !isRetryable(err) {
			return "", err
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("max retries (%d) exceeded: %w", r.config.MaxRetries, lastErr)
}

// backoff doubles RetryDelay per attempt up to MaxDelay.
func (r *RetryProvider) backoff(attempt int) time.Duration {
	delay := r.config.RetryDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if r.config.MaxDelay > 0 && delay > r.config.MaxDelay {
			return r.config.MaxDelay
		}
	}
	return delay
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrEmptyResponse) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
