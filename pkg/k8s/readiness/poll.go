package readiness

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultPollInterval is the interval between readiness checks.
	DefaultPollInterval = 5 * time.Second
	// DefaultWaitTimeout is the per-resource readiness deadline.
	DefaultWaitTimeout = 300 * time.Second

	minPollInterval = 10 * time.Millisecond
	intervalDivisor = 10
)

// Check evaluates one readiness probe. It returns true when the watched
// condition is satisfied. A non-nil error aborts polling immediately.
type Check func(ctx context.Context) (bool, error)

// PollUntil evaluates check on a fixed interval until it reports success,
// returns an error, or the deadline elapses. The check runs once immediately
// before the first interval, so polling terminates within deadline+interval
// of the call.
//
// Returns ErrTimeoutExceeded (wrapped with the deadline) when the condition
// is not met in time, or the context's error when the caller cancels.
func PollUntil(
	ctx context.Context,
	deadline time.Duration,
	interval time.Duration,
	check Check,
) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("polling aborted: %w", err)
	}

	pollCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := check(pollCtx)
		if err != nil {
			return err
		}

		if done {
			return nil
		}

		select {
		case <-pollCtx.Done():
			if errors.Is(pollCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
				return fmt.Errorf("%w after %s", ErrTimeoutExceeded, deadline)
			}

			return fmt.Errorf("polling aborted: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// PollForReadiness polls check until it succeeds or deadline elapses, using
// an interval derived from the deadline. Short deadlines (as used in tests)
// poll rapidly; production deadlines poll at DefaultPollInterval.
func PollForReadiness(ctx context.Context, deadline time.Duration, check Check) error {
	return PollUntil(ctx, deadline, pollInterval(deadline), check)
}

// WaitForResourceCreated polls check until it observes the resource or the
// deadline elapses. Unlike PollForReadiness, a timeout is not an error: the
// poller reports false and callers proceed optimistically, leaving the
// subsequent readiness wait to fail if the resource truly never appears.
func WaitForResourceCreated(
	ctx context.Context,
	deadline time.Duration,
	check Check,
) (bool, error) {
	err := PollForReadiness(ctx, deadline, check)
	if err != nil {
		if errors.Is(err, ErrTimeoutExceeded) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// pollInterval derives the polling interval from the deadline so short
// deadlines stay responsive.
func pollInterval(deadline time.Duration) time.Duration {
	interval := DefaultPollInterval
	if derived := deadline / intervalDivisor; derived < interval {
		interval = derived
	}

	if interval < minPollInterval {
		interval = minPollInterval
	}

	return interval
}
