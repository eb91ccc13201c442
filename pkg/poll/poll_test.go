package poll

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"digital.vasic.harness/pkg/assertion"
	"digital.vasic.harness/pkg/clock"
	"digital.vasic.harness/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drive advances the fake clock whenever the poller is waiting
// on it, until the poller returns.
func drive(t *testing.T, fake *clock.Fake, done <-chan error) error {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case err := <-done:
			return err
		case <-deadline:
			t.Fatal("poller did not finish")
			return nil
		default:
		}
		if fake.Waiters() > 0 {
			fake.Advance(time.Hour)
			continue
		}
		time.Sleep(time.Millisecond)
	}
}

func TestWaitFor_AlwaysFailing(t *testing.T) {
	for _, maxAttempts := range []int{1, 2, 5, 8} {
		t.Run(fmt.Sprintf("attempts=%d", maxAttempts), func(t *testing.T) {
			fake := clock.NewFake(time.Unix(0, 0))
			calls := 0
			var lastErr error

			done := make(chan error, 1)
			go func() {
				done <- WaitFor(context.Background(),
					func(context.Context) error {
						calls++
						lastErr = fmt.Errorf("attempt %d", calls)
						return lastErr
					},
					WithAttempts(maxAttempts),
					WithClock(fake),
				)
			}()

			err := drive(t, fake, done)
			require.Error(t, err)
			assert.Equal(t, maxAttempts, calls)
			assert.ErrorIs(t, err, lastErr)

			var ex *ExhaustedError
			require.ErrorAs(t, err, &ex)
			assert.Equal(t, maxAttempts, ex.Attempts)
			assert.Same(t, lastErr, ex.Last)
		})
	}
}

func TestWaitFor_ExhaustedWrapsOnlyFinalError(t *testing.T) {
	attemptErrs := []error{
		errors.New("slot empty"),
		errors.New("slot stale"),
		errors.New("slot mismatched"),
	}
	fake := clock.NewFake(time.Unix(0, 0))
	calls := 0

	done := make(chan error, 1)
	go func() {
		done <- WaitFor(context.Background(),
			func(context.Context) error {
				err := attemptErrs[calls]
				calls++
				return err
			},
			WithAttempts(len(attemptErrs)),
			WithClock(fake),
		)
	}()

	err := drive(t, fake, done)
	require.Error(t, err)
	assert.Equal(t, len(attemptErrs), calls)

	assert.ErrorIs(t, err, attemptErrs[2])
	assert.NotErrorIs(t, err, attemptErrs[0])
	assert.NotErrorIs(t, err, attemptErrs[1])

	var ex *ExhaustedError
	require.ErrorAs(t, err, &ex)
	assert.Same(t, attemptErrs[2], ex.Last)
	assert.Equal(t, 3, ex.Attempts)
}

func TestWaitFor_SucceedsOnAttemptK(t *testing.T) {
	for k := 1; k <= 5; k++ {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			fake := clock.NewFake(time.Unix(0, 0))
			calls := 0

			done := make(chan error, 1)
			go func() {
				done <- WaitFor(context.Background(),
					func(context.Context) error {
						calls++
						if calls < k {
							return errors.New("not yet")
						}
						return nil
					},
					WithClock(fake),
				)
			}()

			require.NoError(t, drive(t, fake, done))
			assert.Equal(t, k, calls)
		})
	}
}

func TestWaitFor_ImmediateSuccessDoesNotWait(t *testing.T) {
	start := time.Now()
	err := WaitFor(context.Background(), func(context.Context) error {
		return nil
	})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), DefaultInterval)
}

func TestWaitFor_InvalidAttempts(t *testing.T) {
	for _, n := range []int{0, -1} {
		calls := 0
		err := WaitFor(context.Background(),
			func(context.Context) error {
				calls++
				return nil
			},
			WithAttempts(n),
		)
		assert.ErrorIs(t, err, ErrInvalidAttempts)
		assert.Equal(t, 0, calls)
	}
}

func TestWaitFor_NilProbe(t *testing.T) {
	assert.ErrorIs(t, WaitFor(context.Background(), nil), ErrNilProbe)
	assert.ErrorIs(t, Until(context.Background(), nil), ErrNilProbe)
}

func TestWaitFor_ChangingReasonSurfacesLast(t *testing.T) {
	reasons := []string{"first", "second", "third"}
	calls := 0

	err := WaitFor(context.Background(),
		func(context.Context) error {
			r := reasons[calls]
			calls++
			return errors.New(r)
		},
		WithAttempts(3),
		WithInterval(time.Millisecond),
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "third")
	assert.NotContains(t, err.Error(), "first")
}

func TestWaitFor_PanickingProbeCountsAsFailure(t *testing.T) {
	calls := 0
	err := WaitFor(context.Background(),
		func(context.Context) error {
			calls++
			if calls == 1 {
				panic("not ready")
			}
			return nil
		},
		WithInterval(time.Millisecond),
	)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWaitFor_ContextCancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithTimeout(
		context.Background(), 20*time.Millisecond,
	)
	defer cancel()

	probeErr := errors.New("still pending")
	err := WaitFor(ctx,
		func(context.Context) error { return probeErr },
		WithInterval(time.Minute),
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, probeErr)
}

func TestWaitFor_ClockFromContext(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	ctx := clock.WithContext(context.Background(), fake)
	calls := 0

	done := make(chan error, 1)
	go func() {
		done <- WaitFor(ctx, func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("not yet")
			}
			return nil
		})
	}()

	require.NoError(t, drive(t, fake, done))
	assert.Equal(t, 3, calls)
}

func TestWaitFor_RecordsMetrics(t *testing.T) {
	m := metrics.NewInMemoryMetrics()
	calls := 0

	_ = WaitFor(context.Background(),
		func(context.Context) error {
			calls++
			if calls < 2 {
				return errors.New("x")
			}
			return nil
		},
		WithInterval(time.Millisecond),
		WithMetrics(m),
	)
	_ = WaitFor(context.Background(),
		func(context.Context) error { return errors.New("never") },
		WithAttempts(2),
		WithInterval(time.Millisecond),
		WithMetrics(m),
	)

	assert.Equal(t, []int{2, 2}, m.ProbeAttempts())
	assert.Equal(t, 1, m.ProbeFailures())
}

func TestUntil(t *testing.T) {
	var mu sync.Mutex
	ready := false
	go func() {
		time.Sleep(10 * time.Millisecond)
		mu.Lock()
		ready = true
		mu.Unlock()
	}()

	err := Until(context.Background(), func() bool {
		mu.Lock()
		defer mu.Unlock()
		return ready
	}, WithInterval(5*time.Millisecond), WithAttempts(100))
	assert.NoError(t, err)

	err = Until(context.Background(), func() bool { return false },
		WithAttempts(2), WithInterval(time.Millisecond))
	assert.Contains(t, err.Error(), "condition not met")
}

func TestPolicy_Delay(t *testing.T) {
	fixed := DefaultPolicy()
	assert.Equal(t, DefaultInterval, fixed.Delay(1))
	assert.Equal(t, DefaultInterval, fixed.Delay(4))

	backoff := Policy{
		MaxAttempts: 10,
		Interval:    10 * time.Millisecond,
		Multiplier:  2,
		MaxInterval: 50 * time.Millisecond,
	}
	assert.Equal(t, 10*time.Millisecond, backoff.Delay(1))
	assert.Equal(t, 20*time.Millisecond, backoff.Delay(2))
	assert.Equal(t, 40*time.Millisecond, backoff.Delay(3))
	assert.Equal(t, 50*time.Millisecond, backoff.Delay(4))
	assert.Equal(t, 50*time.Millisecond, backoff.Delay(9))
}

func TestPolicy_Validate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())
	assert.ErrorIs(t, Policy{}.Validate(), ErrInvalidAttempts)
	assert.Error(t, Policy{MaxAttempts: 1, Interval: -1}.Validate())
}

func TestRetry_GenericBackoff(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	start := fake.Now()
	calls := 0

	done := make(chan error, 1)
	go func() {
		done <- Retry(context.Background(), Policy{
			MaxAttempts: 4,
			Interval:    time.Second,
			Multiplier:  2,
			Clock:       fake,
		}, func(context.Context) error {
			calls++
			return errors.New("down")
		})
	}()

	err := drive(t, fake, done)
	var ex *ExhaustedError
	require.ErrorAs(t, err, &ex)
	assert.Equal(t, 4, calls)
	// drive advances an hour per wait; three waits happened.
	assert.Equal(t, 3*time.Hour, fake.Since(start))
}

// A value is written 300ms after it is
// triggered. A direct assertion right after the trigger fails,
// while polling with the default budget succeeds as soon as the
// write lands.
func TestWaitFor_DelayedWriteScenario(t *testing.T) {
	tests := []struct {
		name       string
		writeDelay time.Duration
		minCalls   int
		maxCalls   int
	}{
		{"write lands before second attempt", 200 * time.Millisecond, 2, 2},
		{"write lands after 300ms", 300 * time.Millisecond, 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mu sync.Mutex
			arr := make([]string, 1)
			read := func() string {
				mu.Lock()
				defer mu.Unlock()
				return arr[0]
			}

			go func() {
				time.Sleep(tt.writeDelay)
				mu.Lock()
				arr[0] = "X"
				mu.Unlock()
			}()

			direct := assertion.Expect(read()).ToBe("X")
			require.Error(t, direct)

			calls := 0
			start := time.Now()
			err := WaitFor(context.Background(),
				func(context.Context) error {
					calls++
					return assertion.Expect(read()).ToBe("X")
				},
			)
			elapsed := time.Since(start)

			require.NoError(t, err)
			assert.GreaterOrEqual(t, calls, tt.minCalls)
			assert.LessOrEqual(t, calls, tt.maxCalls)
			assert.GreaterOrEqual(t, elapsed, tt.writeDelay-20*time.Millisecond)
			assert.Less(t, elapsed, DefaultAttempts*DefaultInterval)
		})
	}
}
