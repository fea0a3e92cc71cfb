// Package retrier applies bounded exponential backoff around calls to unreliable dependencies.
package retrier

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

// Policy describes one retry discipline. Waits start at MinWait, double per attempt and never exceed MaxWait.
type Policy struct {
	Name        string
	MaxAttempts int
	MinWait     time.Duration
	MaxWait     time.Duration

	// Retryable decides whether a failure is worth another attempt. Nil retries every failure.
	Retryable func(error) bool

	Logger zerolog.Logger
}

// WithLogger returns a copy of p that logs retries through logger.
func (p Policy) WithLogger(logger zerolog.Logger) Policy {
	p.Logger = logger
	return p
}

// Run calls fn until it succeeds, fails with a non-retryable error, or MaxAttempts is spent.
// It returns the number of attempts made alongside the last error.
func (p Policy) Run(ctx context.Context, fn func(ctx context.Context) error) (int, error) {
	maxAttempts := p.maxAttempts()
	attempts := 0

	err := retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempts++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempts < maxAttempts {
			p.Logger.Info().Err(err).Msgf("Retrying %s (attempt %d)...", p.Name, attempts)
		}
		return retry.RetryableError(err)
	})

	return attempts, err
}

func (p Policy) maxAttempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// backoff is stateful, so every Run builds a fresh one.
func (p Policy) backoff() retry.Backoff {
	minWait := p.MinWait
	if minWait <= 0 {
		minWait = time.Millisecond
	}
	maxWait := p.MaxWait
	if maxWait < minWait {
		maxWait = minWait
	}

	b := retry.NewExponential(minWait)
	b = retry.WithCappedDuration(maxWait, b)
	return retry.WithMaxRetries(uint64(p.maxAttempts()-1), b)
}
