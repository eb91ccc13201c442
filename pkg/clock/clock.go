// Package clock provides an injectable time source so that code
// under test can read time and schedule delays without touching
// process-wide state.
package clock

import (
	"context"
	"time"
)

// Clock is the time capability consumed by the runner, the
// poller and code under test.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time
	// once d has elapsed.
	After(d time.Duration) <-chan time.Time

	// Since returns the time elapsed since t.
	Since(t time.Time) time.Duration
}

// Real is the wall clock.
type Real struct{}

// Now returns time.Now.
func (Real) Now() time.Time { return time.Now() }

// After delegates to time.After.
func (Real) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Since delegates to time.Since.
func (Real) Since(t time.Time) time.Duration {
	return time.Since(t)
}

type contextKey struct{}

// WithContext returns a copy of ctx carrying c.
func WithContext(ctx context.Context, c Clock) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the clock stored in ctx, or Real if none
// was attached.
func FromContext(ctx context.Context) Clock {
	if ctx != nil {
		if c, ok := ctx.Value(contextKey{}).(Clock); ok && c != nil {
			return c
		}
	}
	return Real{}
}

// OrReal returns c, or Real when c is nil.
func OrReal(c Clock) Clock {
	if c == nil {
		return Real{}
	}
	return c
}
