// Package demo holds small pieces of code under test and the
// runs that exercise them. The harness CLI executes these runs.
package demo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"digital.vasic.harness/pkg/clock"
	"digital.vasic.harness/pkg/future"
)

// ErrNoResponse is returned by AskUser when nothing was entered.
var ErrNoResponse = errors.New("no user response provided")

// Greet returns the greeting for name.
func Greet(name string) string {
	return fmt.Sprintf("Hello, %s", name)
}

// Slots is a fixed-size list of strings safe for concurrent use.
type Slots struct {
	mu    sync.Mutex
	items []string
}

// NewSlots creates n empty slots.
func NewSlots(n int) *Slots {
	return &Slots{items: make([]string, n)}
}

// Get returns slot i.
func (s *Slots) Get(i int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[i]
}

// Set stores v in slot i.
func (s *Slots) Set(i int, v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[i] = v
}

// WriteLater stores v in slot i once delay has passed on the
// clock carried by ctx. It returns immediately; the returned
// future settles after the write, or with the context error.
func WriteLater(
	ctx context.Context,
	s *Slots,
	i int,
	v string,
	delay time.Duration,
) *future.Future[struct{}] {
	c := clock.FromContext(ctx)
	return future.Run(func() error {
		select {
		case <-c.After(delay):
			s.Set(i, v)
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// AskUser simulates prompting for input. An empty response makes
// the returned future reject with ErrNoResponse.
func AskUser(response string) *future.Future[string] {
	return future.Go(func() (string, error) {
		if response == "" {
			return "", ErrNoResponse
		}
		return response, nil
	})
}

// Stamp labels msg with the current time of the clock carried by
// ctx.
func Stamp(ctx context.Context, msg string) string {
	return fmt.Sprintf("[%s] %s",
		clock.FromContext(ctx).Now().UTC().Format(time.RFC3339), msg)
}
