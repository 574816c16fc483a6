// Package retry runs an operation with exponential backoff, retrying only
// the failures a classifier accepts.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy bounds a retry loop. Attempts counts every call, including the first.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
}

// Classifier reports whether err is worth another attempt.
type Classifier func(error) bool

// Delay returns the pause after the given zero-based attempt: BaseDelay × 2^attempt.
func (p Policy) Delay(attempt int) time.Duration {
	return p.BaseDelay << uint(attempt)
}

// Do calls fn until it succeeds, returns an error the classifier rejects, or
// the policy runs out of attempts. The last error is returned unchanged so
// callers can still match it with errors.Is. Cancelling ctx interrupts a
// pending backoff.
func Do(ctx context.Context, p Policy, retryable Classifier, fn func(context.Context) error) error {
	attempts := max(p.Attempts, 1)

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if retryable == nil || !retryable(err) || attempt == attempts-1 {
			return err
		}

		timer := time.NewTimer(p.Delay(attempt))
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry interrupted: %w", ctx.Err())
		}
	}
	return err
}
