package resilience

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig configures the retry behavior.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	// Default: 3
	MaxAttempts int

	// InitialDelay is the fixed delay before each retry.
	// Default: 1s
	InitialDelay time.Duration

	// RetryIf determines if an error should trigger a retry.
	// Default: all non-nil errors trigger retry.
	RetryIf func(err error) bool

	// OnRetry is called before each retry attempt.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry runs an operation a bounded number of times.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a new retry handler.
func NewRetry(config RetryConfig) *Retry {
	// Apply defaults
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = time.Second
	}
	if config.RetryIf == nil {
		config.RetryIf = func(err error) bool { return err != nil }
	}

	return &Retry{config: config}
}

// Execute runs op until it succeeds, returns a non-retryable error, the
// attempts are exhausted or ctx is done. Exhaustion wraps the last error
// with ErrMaxRetriesExceeded.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	attempt := 0
	policy := backoff.WithContext(
		backoff.WithMaxRetries(r.policy(), uint64(r.config.MaxAttempts-1)),
		ctx,
	)

	err := backoff.RetryNotify(func() error {
		attempt++
		err := op(ctx)
		if err != nil && !r.config.RetryIf(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, delay time.Duration) {
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}
	})

	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if attempt >= r.config.MaxAttempts && r.config.RetryIf(err) {
		return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetriesExceeded, attempt, err)
	}
	return err
}

func (r *Retry) policy() backoff.BackOff {
	return backoff.NewConstantBackOff(r.config.InitialDelay)
}

// Config returns the retry configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}
