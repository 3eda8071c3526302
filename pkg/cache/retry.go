package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNetwork marks failures talking to a remote cache backend.
var ErrNetwork = errors.New("network error")

// retryAttempts bounds [RetryWithBackoff], first call included.
const retryAttempts = 3

type retryable struct{ error }

func (r retryable) Unwrap() error { return r.error }

// Retryable marks err as transient so that [RetryWithBackoff] tries again.
// Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return retryable{err}
}

// IsRetryable reports whether err, or anything it wraps, was marked with
// [Retryable].
func IsRetryable(err error) bool {
	var r retryable
	return errors.As(err, &r)
}

// RetryWithBackoff runs fn until it succeeds, returns an error not marked
// with [Retryable], or has run retryAttempts times. The wait starts at delay
// and doubles after each failure. A done context ends the wait with
// ctx.Err().
func RetryWithBackoff(ctx context.Context, delay time.Duration, fn func() error) error {
	err := fn()
	for attempt := 1; attempt < retryAttempts && IsRetryable(err); attempt++ {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
		err = fn()
	}
	return err
}
