package api

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultRetryWaitMin = 1 * time.Second
	defaultRetryWaitMax = 30 * time.Second
)

// retrier re-issues transport attempts that failed in a retryable way:
// network errors, 5xx statuses, and rate-limit responses. Logical API
// errors are never retried here; they surface through the response mapper.
type retrier struct {
	maxRetries int
	waitMin    time.Duration
	waitMax    time.Duration
}

func newRetrier(maxRetries int, waitMin, waitMax time.Duration) *retrier {
	if waitMin <= 0 {
		waitMin = defaultRetryWaitMin
	}
	if waitMax <= 0 {
		waitMax = defaultRetryWaitMax
	}
	return &retrier{
		maxRetries: maxRetries,
		waitMin:    waitMin,
		waitMax:    waitMax,
	}
}

// do runs fn up to maxRetries+1 times. fn reports whether its outcome is
// retryable; a nil error with retryable=true means the attempt produced a
// retryable response (5xx, 429) that the caller keeps if attempts run out.
func (r *retrier) do(ctx context.Context, fn func() (bool, error)) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.waitMin
	bo.MaxInterval = r.waitMax
	bo.Reset()

	var lastErr error
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			wait := bo.NextBackOff()
			if wait == backoff.Stop {
				wait = r.waitMax
			}
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
			timer.Stop()
		}

		retryable, err := fn()
		lastErr = err
		if !retryable || attempt >= r.maxRetries {
			return lastErr
		}
	}
}
