package suite

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.harness/pkg/clock"
	"digital.vasic.harness/pkg/future"
	"digital.vasic.harness/pkg/logging"
	"digital.vasic.harness/pkg/metrics"
	"digital.vasic.harness/pkg/report"
	"digital.vasic.harness/pkg/testcase"
)

// trace records the order in which hooks, actions and reporter
// callbacks happen.
type trace struct {
	mu     sync.Mutex
	events []string
}

func (t *trace) add(e string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, e)
}

func (t *trace) get() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.events...)
}

func (t *trace) hook(name string) testcase.Hook {
	return func(context.Context) error {
		t.add(name)
		return nil
	}
}

func (t *trace) ReportResult(r *testcase.Result) error {
	t.add("result:" + r.Title)
	return nil
}

func (t *trace) ReportSummary(s *testcase.Summary) error {
	t.add("summary:" + s.Run)
	return nil
}

func TestRun_HookOrdering(t *testing.T) {
	tr := &trace{}
	r := NewRun("order", WithReporter(tr))
	ctx := context.Background()

	require.NoError(t, r.BeforeAll(tr.hook("A")))
	require.NoError(t, r.BeforeAll(tr.hook("B")))
	require.NoError(t, r.AfterAll(tr.hook("C")))
	require.NoError(t, r.AfterAll(tr.hook("D")))

	res := r.Test(ctx, "T", func(context.Context) error {
		tr.add("T")
		return nil
	})
	assert.True(t, res.Passed())
	require.NoError(t, r.Teardown(ctx))

	assert.Equal(t, []string{
		"A", "B", "T", "result:T", "C", "D", "summary:order",
	}, tr.get())
}

func TestRun_FailureIsolation(t *testing.T) {
	rec := report.NewRecorder()
	r := NewRun("isolation", WithReporter(rec))
	ctx := context.Background()
	ran := 0

	t1 := r.Test(ctx, "T1", func(context.Context) error {
		ran++
		return errors.New("expected 1 to be 2")
	})
	t2 := r.It(ctx, "T2", func(context.Context) error {
		ran++
		return nil
	})

	assert.Equal(t, 2, ran)
	assert.Equal(t, testcase.StatusFailed, t1.Status)
	assert.Equal(t, "expected 1 to be 2", t1.Message)
	assert.Equal(t, testcase.StatusPassed, t2.Status)
	assert.Equal(t, 0, t1.Index)
	assert.Equal(t, 1, t2.Index)

	require.NoError(t, r.Teardown(ctx))
	results := rec.Results()
	require.Len(t, results, 2)
	assert.Equal(t, "T1", results[0].Title)
	assert.Equal(t, "T2", results[1].Title)

	summary := r.Summary()
	assert.Equal(t, 1, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, StateDone.String(), summary.State)
}

func TestRun_PanicBecomesFailure(t *testing.T) {
	r := NewRun("panic")
	ctx := context.Background()

	res := r.Test(ctx, "panics", func(context.Context) error {
		panic("boom")
	})
	next := r.Test(ctx, "after", func(context.Context) error { return nil })

	assert.False(t, res.Passed())
	assert.Contains(t, res.Message, "boom")
	var pe *future.PanicError
	assert.ErrorAs(t, res.Err, &pe)
	assert.True(t, next.Passed())
}

func TestRun_NilAction(t *testing.T) {
	r := NewRun("nil")
	res := r.Test(context.Background(), "empty", nil)
	assert.False(t, res.Passed())
	assert.ErrorIs(t, res.Err, ErrNilAction)
}

func TestRun_BeforeAllFailureAborts(t *testing.T) {
	tr := &trace{}
	m := metrics.NewInMemoryMetrics()
	r := NewRun("abort", WithReporter(tr), WithMetrics(m))
	ctx := context.Background()
	connErr := errors.New("connection refused")

	require.NoError(t, r.BeforeAll(func(context.Context) error {
		tr.add("A")
		return connErr
	}))
	require.NoError(t, r.BeforeAll(tr.hook("B")))
	require.NoError(t, r.AfterAll(tr.hook("C")))

	executed := false
	res := r.Test(ctx, "T", func(context.Context) error {
		executed = true
		return nil
	})

	assert.False(t, executed)
	assert.False(t, res.Passed())
	assert.ErrorIs(t, res.Err, ErrRunAborted)
	assert.ErrorIs(t, res.Err, connErr)
	var he *HookError
	require.ErrorAs(t, res.Err, &he)
	assert.Equal(t, PhaseBeforeAll, he.Phase)
	assert.Equal(t, 0, he.Index)

	err := r.Teardown(ctx)
	assert.ErrorIs(t, err, connErr)
	assert.Equal(t, []string{"A", "result:T", "C", "summary:abort"}, tr.get())
	assert.Contains(t, r.Summary().HookError, "connection refused")
	assert.Equal(t, 1, m.HookFailures("abort", PhaseBeforeAll))
}

func TestRun_AfterAllAllRunAndErrorsJoined(t *testing.T) {
	tr := &trace{}
	r := NewRun("teardown", WithReporter(tr))
	ctx := context.Background()
	e1 := errors.New("close db")
	e2 := errors.New("remove dir")

	require.NoError(t, r.AfterAll(func(context.Context) error {
		tr.add("C")
		return e1
	}))
	require.NoError(t, r.AfterAll(func(context.Context) error {
		panic(e2)
	}))
	require.NoError(t, r.AfterAll(tr.hook("E")))

	res := r.Test(ctx, "T", func(context.Context) error { return nil })
	require.True(t, res.Passed())

	err := r.Teardown(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, e1)
	assert.Contains(t, err.Error(), "remove dir")
	assert.Contains(t, tr.get(), "E")

	// Hook failures never rewrite recorded results.
	summary := r.Summary()
	assert.Equal(t, 1, summary.Passed)
	assert.Equal(t, 0, summary.Failed)
	assert.NotEmpty(t, summary.HookError)
	assert.False(t, summary.OK())
}

func TestRun_TeardownFiresOnce(t *testing.T) {
	tr := &trace{}
	r := NewRun("once", WithReporter(tr))
	ctx := context.Background()
	hookErr := errors.New("x")
	calls := 0
	require.NoError(t, r.AfterAll(func(context.Context) error {
		calls++
		return hookErr
	}))

	r.Test(ctx, "T", func(context.Context) error { return nil })

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = r.Teardown(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, calls)
	for _, err := range errs {
		assert.ErrorIs(t, err, hookErr)
	}
	summaries := 0
	for _, e := range tr.get() {
		if e == "summary:once" {
			summaries++
		}
	}
	assert.Equal(t, 1, summaries)
}

func TestRun_TeardownWithoutTests(t *testing.T) {
	tr := &trace{}
	r := NewRun("empty", WithReporter(tr))
	require.NoError(t, r.BeforeAll(tr.hook("open")))
	require.NoError(t, r.AfterAll(tr.hook("close")))

	require.NoError(t, r.Teardown(context.Background()))
	assert.Equal(t, []string{"open", "close", "summary:empty"}, tr.get())
	assert.Zero(t, r.Summary().Total())
}

func TestRun_LateRegistration(t *testing.T) {
	rec := report.NewRecorder()
	r := NewRun("late", WithReporter(rec))
	ctx := context.Background()
	var order []string

	r.Test(ctx, "first", func(context.Context) error { return nil })

	lateBefore := false
	err := r.BeforeAll(func(context.Context) error {
		lateBefore = true
		return nil
	})
	assert.ErrorIs(t, err, ErrHooksSealed)

	// After-all hooks may still be added while tests run.
	require.NoError(t, r.AfterAll(func(context.Context) error {
		order = append(order, "late after-all")
		return nil
	}))

	require.NoError(t, r.Teardown(ctx))
	assert.False(t, lateBefore)
	assert.Equal(t, []string{"late after-all"}, order)

	assert.ErrorIs(t, r.AfterAll(func(context.Context) error { return nil }),
		ErrRunFinished)

	executed := false
	res := r.Test(ctx, "too late", func(context.Context) error {
		executed = true
		return nil
	})
	assert.False(t, executed)
	assert.False(t, res.Passed())
	assert.ErrorIs(t, res.Err, ErrRunFinished)

	// The late result is reported but not part of the summary.
	assert.Len(t, rec.Results(), 2)
	assert.Equal(t, 1, r.Summary().Total())
}

func TestRun_RegistrationFromInsideHooks(t *testing.T) {
	r := NewRun("nested")
	ctx := context.Background()
	var sealedErr, finishedErr error

	require.NoError(t, r.BeforeAll(func(context.Context) error {
		sealedErr = r.BeforeAll(func(context.Context) error { return nil })
		return nil
	}))
	require.NoError(t, r.AfterAll(func(context.Context) error {
		finishedErr = r.AfterAll(func(context.Context) error { return nil })
		return nil
	}))

	r.Test(ctx, "T", func(context.Context) error { return nil })
	require.NoError(t, r.Teardown(ctx))

	assert.ErrorIs(t, sealedErr, ErrHooksSealed)
	assert.ErrorIs(t, finishedErr, ErrRunFinished)
}

func TestRun_NilHooks(t *testing.T) {
	r := NewRun("nil")
	assert.ErrorIs(t, r.BeforeAll(nil), ErrNilHook)
	assert.ErrorIs(t, r.AfterAll(nil), ErrNilHook)
}

func TestRun_StateTransitions(t *testing.T) {
	r := NewRun("states")
	ctx := context.Background()
	var seen []State

	require.NoError(t, r.BeforeAll(func(context.Context) error {
		seen = append(seen, r.State())
		return nil
	}))
	require.NoError(t, r.AfterAll(func(context.Context) error {
		seen = append(seen, r.State())
		return nil
	}))

	assert.Equal(t, StateNotStarted, r.State())
	r.Test(ctx, "T", func(context.Context) error {
		seen = append(seen, r.State())
		return nil
	})
	require.NoError(t, r.Teardown(ctx))
	seen = append(seen, r.State())

	assert.Equal(t, []State{
		StateBeforeAllRunning,
		StateTestsRunning,
		StateAfterAllRunning,
		StateDone,
	}, seen)
}

func TestRun_ConcurrentTestsAreSerialized(t *testing.T) {
	r := NewRun("serial")
	ctx := context.Background()

	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Test(ctx, "concurrent", func(context.Context) error {
				mu.Lock()
				inFlight++
				if inFlight > maxInFlight {
					maxInFlight = inFlight
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				inFlight--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInFlight)
	results := r.Results()
	require.Len(t, results, 10)
	for i, res := range results {
		assert.Equal(t, i, res.Index)
	}
}

func TestRun_TestTimeout(t *testing.T) {
	r := NewRun("timeout", WithTestTimeout(10*time.Millisecond))

	res := r.Test(context.Background(), "hangs", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.False(t, res.Passed())
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
}

func TestRun_TestTimeoutLeavesHooksUnbounded(t *testing.T) {
	r := NewRun("timeout", WithTestTimeout(10*time.Millisecond))

	var beforeDeadline, afterDeadline, testDeadline bool
	require.NoError(t, r.BeforeAll(func(ctx context.Context) error {
		_, beforeDeadline = ctx.Deadline()
		time.Sleep(30 * time.Millisecond)
		return ctx.Err()
	}))
	require.NoError(t, r.AfterAll(func(ctx context.Context) error {
		_, afterDeadline = ctx.Deadline()
		return nil
	}))

	res := r.Test(context.Background(), "quick", func(ctx context.Context) error {
		_, testDeadline = ctx.Deadline()
		return nil
	})
	require.NoError(t, r.Teardown(context.Background()))

	assert.True(t, res.Passed())
	assert.False(t, beforeDeadline)
	assert.False(t, afterDeadline)
	assert.True(t, testDeadline)
	assert.Empty(t, r.Summary().HookError)
}

func TestRun_InjectedClock(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	fake := clock.NewFake(fixed)
	r := NewRun("clock", WithClock(fake))

	var seen time.Time
	res := r.Test(context.Background(), "reads clock", func(ctx context.Context) error {
		seen = clock.FromContext(ctx).Now()
		fake.Advance(2 * time.Second)
		return nil
	})

	assert.Equal(t, fixed, seen)
	assert.Equal(t, fixed, res.StartTime)
	assert.Equal(t, 2*time.Second, res.Duration)

	// Nothing outside the run observes the fake clock.
	assert.IsType(t, clock.Real{}, clock.FromContext(context.Background()))
}

func TestRun_LogsAndMetrics(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewJSONLogger(logging.LoggerConfig{Output: &buf})
	require.NoError(t, err)
	m := metrics.NewInMemoryMetrics()

	r := NewRun("observed", WithLogger(logger), WithMetrics(m))
	ctx := context.Background()
	require.NoError(t, r.AfterAll(func(context.Context) error {
		return errors.New("cleanup")
	}))

	r.Test(ctx, "ok", func(context.Context) error { return nil })
	r.Test(ctx, "bad", func(context.Context) error { return errors.New("no") })
	_ = r.Teardown(ctx)

	out := buf.String()
	assert.Contains(t, out, `"message":"test_passed"`)
	assert.Contains(t, out, `"message":"test_failed"`)
	assert.Contains(t, out, `"message":"hook_failed"`)
	assert.Contains(t, out, `"message":"teardown_completed"`)
	assert.Contains(t, out, `"run":"observed"`)

	assert.Equal(t, 1, m.TestCount("observed", testcase.StatusPassed))
	assert.Equal(t, 1, m.TestCount("observed", testcase.StatusFailed))
	assert.Equal(t, 1, m.HookFailures("observed", PhaseAfterAll))
	assert.Equal(t, 1, m.RunTotal())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "not_started", StateNotStarted.String())
	assert.Equal(t, "before_all_running", StateBeforeAllRunning.String())
	assert.Equal(t, "tests_running", StateTestsRunning.String())
	assert.Equal(t, "after_all_running", StateAfterAllRunning.String())
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "unknown", State(42).String())
}
