package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codform/order-api/pkg/logger"
)

// Func is an operation that can be attempted more than once.
type Func func() error

// Config controls how an operation is retried.
type Config struct {
	MaxAttempts     int
	Backoff         BackoffStrategy
	Logger          logger.Logger
	RetryableErrors []error // empty means every error is retryable
}

// Do runs fn up to cfg.MaxAttempts times, backing off between attempts.
// It stops early on context cancellation or a non-retryable error.
func Do(ctx context.Context, fn Func, cfg *Config) error {
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		default:
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if attempt == cfg.MaxAttempts {
			break
		}

		if !isRetryable(err, cfg.RetryableErrors) {
			cfg.Logger.Warn("Non-retryable error, giving up",
				"error", err,
				"attempt", attempt)
			return err
		}

		backoff := cfg.Backoff.NextBackoff(attempt)
		cfg.Logger.Info("Retrying after error",
			"error", err,
			"attempt", attempt,
			"maxAttempts", cfg.MaxAttempts,
			"backoff", backoff)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled during backoff: %w", ctx.Err())
		}
	}

	return fmt.Errorf("all %d attempts failed, last error: %w", cfg.MaxAttempts, lastErr)
}

func isRetryable(err error, retryable []error) bool {
	if len(retryable) == 0 {
		return true
	}

	for _, candidate := range retryable {
		if errors.Is(err, candidate) {
			return true
		}
	}

	return false
}
