package demo

import (
	"context"
	"errors"
	"time"

	"digital.vasic.harness/pkg/assertion"
	"digital.vasic.harness/pkg/clock"
	"digital.vasic.harness/pkg/poll"
	"digital.vasic.harness/pkg/registry"
	"digital.vasic.harness/pkg/suite"
	"digital.vasic.harness/pkg/testcase"
)

// WriteDelay is how long the delayed-write run waits before the
// value lands.
const WriteDelay = 300 * time.Millisecond

// FixedTime is the instant the clock run pins its clock to.
var FixedTime = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// Runs returns the demo runs. Poll options apply to every
// WaitFor call made by the runs.
func Runs(pollOpts ...poll.Option) []suite.Spec {
	return []suite.Spec{
		{Name: "greeting", Body: greetingRun},
		{Name: "wait-for", Body: waitForRun(pollOpts)},
		{Name: "rejects", Body: rejectsRun},
		{
			Name:    "fixed-clock",
			Body:    fixedClockRun,
			Options: []suite.Option{suite.WithClock(clock.NewFake(FixedTime))},
		},
	}
}

// Register adds every demo run to reg.
func Register(reg registry.Registry, pollOpts ...poll.Option) error {
	for _, spec := range Runs(pollOpts...) {
		if err := reg.Register(spec); err != nil {
			return err
		}
	}
	return nil
}

// beforeAll registers hook on r. A refused registration is
// recorded as a failed "register before-all hook" test so the run
// shows it, and false is returned.
func beforeAll(ctx context.Context, r *suite.Run, hook testcase.Hook) bool {
	err := r.BeforeAll(hook)
	if err == nil {
		return true
	}
	r.Test(ctx, "register before-all hook", func(context.Context) error {
		return err
	})
	return false
}

func greetingRun(ctx context.Context, r *suite.Run) {
	r.Test(ctx, "should return a greeting", func(context.Context) error {
		return assertion.Expect(Greet("Ian")).ToBe("Hello, Ian")
	})
	r.Test(ctx, "should not greet someone else", func(context.Context) error {
		return assertion.Expect(Greet("Ian")).Not().ToBe("Hello, Sam")
	})
}

func waitForRun(pollOpts []poll.Option) suite.Body {
	return func(ctx context.Context, r *suite.Run) {
		var slots *Slots
		if !beforeAll(ctx, r, func(context.Context) error {
			slots = NewSlots(1)
			return nil
		}) {
			return
		}

		r.Test(ctx, "direct assertion misses a delayed write", func(ctx context.Context) error {
			local := NewSlots(1)
			written := WriteLater(ctx, local, 0, "X", WriteDelay)
			err := assertion.Expect(local.Get(0)).ToBe("X")
			if _, werr := written.Await(ctx); werr != nil {
				return werr
			}
			if err == nil {
				return errors.New("expected the direct assertion to fail")
			}
			return nil
		})

		r.Test(ctx, "waitFor sees a delayed write", func(ctx context.Context) error {
			WriteLater(ctx, slots, 0, "X", WriteDelay)
			return poll.WaitFor(ctx, func(context.Context) error {
				return assertion.Expect(slots.Get(0)).ToBe("X")
			}, pollOpts...)
		})
	}
}

func rejectsRun(ctx context.Context, r *suite.Run) {
	r.Test(ctx, "rejects without a response", func(ctx context.Context) error {
		return assertion.Expect(AskUser("")).Rejects().
			ToThrow(ctx, errors.New("no user response provided"))
	})
	r.Test(ctx, "resolves with a response", func(ctx context.Context) error {
		err := assertion.Expect(AskUser("yes")).Rejects().
			ToThrow(ctx, ErrNoResponse)
		if !assertion.IsMismatch(err) {
			return errors.New("expected a resolved promise to fail rejects.toThrow")
		}
		return assertion.Expect(err.Error()).ToBe("expected promise to reject")
	})
}

func fixedClockRun(ctx context.Context, r *suite.Run) {
	var opened string
	if !beforeAll(ctx, r, func(ctx context.Context) error {
		opened = Stamp(ctx, "opened")
		return nil
	}) {
		return
	}

	r.Test(ctx, "stamps with the injected clock", func(ctx context.Context) error {
		if err := assertion.Expect(opened).ToBe("[2020-01-01T00:00:00Z] opened"); err != nil {
			return err
		}
		return assertion.Expect(Stamp(ctx, "ran")).ToBe("[2020-01-01T00:00:00Z] ran")
	})
}
