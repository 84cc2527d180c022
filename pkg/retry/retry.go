// Package retry provides bounded exponential backoff for collaborator calls.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Config bounds a retry loop
type Config struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	MaxTotalTimeout time.Duration
}

// DefaultConfig is conservative enough for synchronous request paths: three
// attempts inside a 30 second envelope.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     3,
		InitialDelay:    200 * time.Millisecond,
		MaxDelay:        2 * time.Second,
		BackoffFactor:   2.0,
		MaxTotalTimeout: 30 * time.Second,
	}
}

// Do runs fn until it succeeds, all attempts are spent, or ctx is done.
// The returned error wraps the last failure from fn.
func (c Config) Do(ctx context.Context, fn func() error) error {
	if c.MaxTotalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.MaxTotalTimeout)
		defer cancel()
	}

	delay := c.InitialDelay
	var lastErr error

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return fmt.Errorf("gave up after %d attempts: %w", attempt-1, lastErr)
			}
			return err
		}

		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if attempt >= c.MaxAttempts {
			return fmt.Errorf("gave up after %d attempts: %w", attempt, lastErr)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("gave up after %d attempts: %w", attempt, lastErr)
		case <-time.After(delay):
		}

		if delay = time.Duration(float64(delay) * c.BackoffFactor); delay > c.MaxDelay {
			delay = c.MaxDelay
		}
	}
}
