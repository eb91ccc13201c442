// Package poll waits for eventually-consistent state by
// repeatedly invoking a probe until it succeeds or a retry budget
// is exhausted. It polls state rather than sleeping for a fixed
// duration: a passing probe returns immediately, and the full
// delay budget is only spent when the state never arrives.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"digital.vasic.harness/pkg/clock"
)

// Defaults for WaitFor.
const (
	DefaultAttempts = 5
	DefaultInterval = 250 * time.Millisecond
)

var (
	// ErrInvalidAttempts is returned when MaxAttempts is not
	// positive. The probe is never invoked.
	ErrInvalidAttempts = errors.New("poll: max attempts must be positive")

	// ErrNilProbe is returned when no probe was given.
	ErrNilProbe = errors.New("poll: nil probe")

	errConditionNotMet = errors.New("condition not met")
)

// Probe is one attempt. A nil return ends polling successfully;
// an error or a panic counts as a failed attempt.
type Probe func(ctx context.Context) error

// ExhaustedError is returned when every attempt failed. It wraps
// the error of the final attempt.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf(
		"gave up after %d attempts: %v", e.Attempts, e.Last,
	)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Policy is the retry budget and pacing.
type Policy struct {
	// MaxAttempts is the total number of probe invocations.
	MaxAttempts int

	// Interval is the delay after the first failed attempt.
	Interval time.Duration

	// Multiplier scales the delay after each further failed
	// attempt. Values <= 1 keep the delay fixed.
	Multiplier float64

	// MaxInterval caps the delay. Zero means no cap.
	MaxInterval time.Duration

	// Clock paces the delays. When nil the clock attached to
	// the context is used, falling back to the wall clock.
	Clock clock.Clock
}

// DefaultPolicy returns 5 attempts spaced 250ms apart.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultAttempts,
		Interval:    DefaultInterval,
	}
}

// Validate checks that the policy can terminate.
func (p Policy) Validate() error {
	if p.MaxAttempts <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidAttempts, p.MaxAttempts)
	}
	if p.Interval < 0 {
		return fmt.Errorf("poll: negative interval %v", p.Interval)
	}
	return nil
}

// Delay returns the wait that follows the given failed attempt
// (1-based).
func (p Policy) Delay(failed int) time.Duration {
	d := p.Interval
	if p.Multiplier > 1 {
		for i := 1; i < failed; i++ {
			d = time.Duration(float64(d) * p.Multiplier)
			if p.MaxInterval > 0 && d >= p.MaxInterval {
				break
			}
		}
	}
	if p.MaxInterval > 0 && d > p.MaxInterval {
		d = p.MaxInterval
	}
	return d
}

// Retry invokes fn until it succeeds or the policy's attempts are
// used up. On exhaustion it returns an *ExhaustedError wrapping
// the last failure. If ctx ends while waiting between attempts,
// the returned error wraps both the context error and the last
// failure.
func Retry(ctx context.Context, p Policy, fn Probe) error {
	_, err := retry(ctx, p, fn, nil)
	return err
}

func retry(
	ctx context.Context,
	p Policy,
	fn Probe,
	onRetry func(attempt int, delay time.Duration, err error),
) (int, error) {
	if fn == nil {
		return 0, ErrNilProbe
	}
	if err := p.Validate(); err != nil {
		return 0, err
	}

	clk := p.Clock
	if clk == nil {
		clk = clock.FromContext(ctx)
	}

	var last error
	for attempt := 1; ; attempt++ {
		last = invoke(ctx, fn)
		if last == nil {
			return attempt, nil
		}
		if attempt >= p.MaxAttempts {
			return attempt, &ExhaustedError{
				Attempts: attempt,
				Last:     last,
			}
		}

		delay := p.Delay(attempt)
		if onRetry != nil {
			onRetry(attempt, delay, last)
		}

		select {
		case <-clk.After(delay):
		case <-ctx.Done():
			return attempt, fmt.Errorf(
				"poll: %w after %d attempts: %w",
				ctx.Err(), attempt, last,
			)
		}
	}
}

// invoke runs one attempt, turning a panic into an error.
func invoke(ctx context.Context, fn Probe) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("probe panicked: %w", e)
				return
			}
			err = fmt.Errorf("probe panicked: %v", r)
		}
	}()
	return fn(ctx)
}
