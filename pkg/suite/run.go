// Package suite registers and executes tests within an explicit
// run context. A Run owns its hooks, its results and its
// lifecycle state; nothing is kept in package-level variables.
package suite

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"digital.vasic.harness/pkg/clock"
	"digital.vasic.harness/pkg/future"
	"digital.vasic.harness/pkg/logging"
	"digital.vasic.harness/pkg/metrics"
	"digital.vasic.harness/pkg/report"
	"digital.vasic.harness/pkg/testcase"
)

var (
	// ErrHooksSealed is returned by BeforeAll once the run has
	// started executing hooks or tests.
	ErrHooksSealed = errors.New("before-all hooks are sealed")

	// ErrRunFinished is returned for registrations and tests
	// that arrive after teardown fired.
	ErrRunFinished = errors.New("run already finished")

	// ErrRunAborted marks tests that were not executed because a
	// before-all hook failed.
	ErrRunAborted = errors.New("run aborted")

	// ErrNilHook is returned when registering a nil hook.
	ErrNilHook = errors.New("hook must not be nil")

	// ErrNilAction marks a test registered without an action.
	ErrNilAction = errors.New("test action must not be nil")
)

// Hook phases used in errors, logs and metrics.
const (
	PhaseBeforeAll = "before-all"
	PhaseAfterAll  = "after-all"
)

// HookError reports a failed lifecycle hook.
type HookError struct {
	Phase string
	Index int
	Err   error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s hook %d: %v", e.Phase, e.Index, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }

// Run is one test run: an ordered list of tests bracketed by
// before-all and after-all hooks. Test executes synchronously, so
// results are recorded in registration order. A Run is safe for
// concurrent use; concurrent Test calls are serialized. Test and
// Teardown must not be called from inside a hook or test action.
type Run struct {
	name string

	reporter    report.Reporter
	logger      logging.Logger
	metrics     metrics.Metrics
	clock       clock.Clock
	testTimeout time.Duration

	// exec serializes hook and test execution.
	exec sync.Mutex

	mu        sync.Mutex
	state     State
	beforeAll []testcase.Hook
	afterAll  []testcase.Hook
	results   []testcase.Result
	started   time.Time
	abortErr  error
	hookErrs  []error
	summary   *testcase.Summary

	teardown    sync.Once
	teardownErr error
}

// NewRun creates a Run named name.
func NewRun(name string, opts ...Option) *Run {
	r := &Run{name: name}
	for _, opt := range opts {
		opt(r)
	}
	if r.reporter == nil {
		r.reporter = report.Discard{}
	}
	r.logger = logging.OrNull(r.logger).WithFields(
		logging.StringField("run", name),
	)
	r.metrics = metrics.OrNoop(r.metrics)
	r.clock = clock.OrReal(r.clock)
	return r
}

// Name returns the run name.
func (r *Run) Name() string { return r.name }

// State returns the current lifecycle state.
func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Results returns a copy of the results recorded so far.
func (r *Run) Results() []testcase.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]testcase.Result, len(r.results))
	copy(out, r.results)
	return out
}

// BeforeAll registers a hook that runs once before the first
// test. Registration is closed as soon as the run starts; later
// calls return ErrHooksSealed and the hook never runs.
func (r *Run) BeforeAll(hook testcase.Hook) error {
	if hook == nil {
		return ErrNilHook
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateNotStarted {
		return fmt.Errorf("%w: run %q is %s", ErrHooksSealed, r.name, r.state)
	}
	r.beforeAll = append(r.beforeAll, hook)
	return nil
}

// AfterAll registers a hook that runs once at teardown. Hooks
// may be added while tests are running; once teardown fired,
// AfterAll returns ErrRunFinished.
func (r *Run) AfterAll(hook testcase.Hook) error {
	if hook == nil {
		return ErrNilHook
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state >= StateAfterAllRunning {
		return fmt.Errorf("%w: run %q is %s", ErrRunFinished, r.name, r.state)
	}
	r.afterAll = append(r.afterAll, hook)
	return nil
}

// Test executes action as the test titled title and returns its
// outcome. The first call runs the before-all hooks. Failures,
// including panics, become a failed result; they are reported
// and never propagated to the caller.
func (r *Run) Test(
	ctx context.Context,
	title string,
	action testcase.Action,
) testcase.Result {
	r.exec.Lock()
	defer r.exec.Unlock()

	ctx = clock.WithContext(ctx, r.clock)

	if err := r.start(ctx); err != nil {
		return r.record(title, r.clock.Now(), err, false)
	}

	r.mu.Lock()
	abortErr := r.abortErr
	r.mu.Unlock()
	if abortErr != nil {
		return r.record(title, r.clock.Now(), abortErr, true)
	}
	if action == nil {
		return r.record(title, r.clock.Now(), ErrNilAction, true)
	}

	if r.testTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.testTimeout)
		defer cancel()
	}

	start := r.clock.Now()
	err := r.invoke(ctx, action)
	return r.record(title, start, err, true)
}

// It is an alias for Test.
func (r *Run) It(
	ctx context.Context,
	title string,
	action testcase.Action,
) testcase.Result {
	return r.Test(ctx, title, action)
}

// Teardown fires the run-scoped teardown once: it waits for the
// test in flight, runs every after-all hook in registration order
// and reports the run summary. Every after-all hook runs even if
// an earlier one failed. The returned error joins all hook
// failures of the run; repeated calls return the same error.
func (r *Run) Teardown(ctx context.Context) error {
	r.teardown.Do(func() {
		r.teardownErr = r.finish(clock.WithContext(ctx, r.clock))
	})
	return r.teardownErr
}

// Summary returns the summary of the run. Before teardown it
// reflects the results recorded so far.
func (r *Run) Summary() *testcase.Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.summary != nil {
		return r.summary
	}
	return r.buildSummaryLocked()
}

// start moves a fresh run through its before-all hooks. It
// returns ErrRunFinished when teardown already fired. Callers
// hold r.exec.
func (r *Run) start(ctx context.Context) error {
	r.mu.Lock()
	switch r.state {
	case StateAfterAllRunning, StateDone:
		r.mu.Unlock()
		return fmt.Errorf("%w: run %q is %s", ErrRunFinished, r.name, r.state)
	case StateTestsRunning:
		r.mu.Unlock()
		return nil
	}
	r.state = StateBeforeAllRunning
	r.started = r.clock.Now()
	hooks := append([]testcase.Hook(nil), r.beforeAll...)
	r.mu.Unlock()

	var abortErr error
	for i, hook := range hooks {
		if err := r.invoke(ctx, testcase.Action(hook)); err != nil {
			herr := &HookError{Phase: PhaseBeforeAll, Index: i, Err: err}
			r.logger.Error("hook_failed",
				logging.StringField("phase", PhaseBeforeAll),
				logging.IntField("index", i),
				logging.ErrorField(err),
			)
			r.metrics.RecordHookFailure(r.name, PhaseBeforeAll)
			abortErr = fmt.Errorf("%w: %w", ErrRunAborted, herr)
			r.logger.Warn("run_aborted",
				logging.IntField("skipped_hooks", len(hooks)-i-1),
			)
			break
		}
	}

	r.mu.Lock()
	r.state = StateTestsRunning
	if abortErr != nil {
		r.abortErr = abortErr
		r.hookErrs = append(r.hookErrs, abortErr)
	}
	r.mu.Unlock()
	return nil
}

func (r *Run) finish(ctx context.Context) error {
	r.exec.Lock()
	defer r.exec.Unlock()

	// A run torn down before any test still pairs its hooks.
	_ = r.start(ctx)

	r.mu.Lock()
	r.state = StateAfterAllRunning
	hooks := append([]testcase.Hook(nil), r.afterAll...)
	r.mu.Unlock()

	var errs []error
	for i, hook := range hooks {
		if err := r.invoke(ctx, testcase.Action(hook)); err != nil {
			herr := &HookError{Phase: PhaseAfterAll, Index: i, Err: err}
			r.logger.Error("hook_failed",
				logging.StringField("phase", PhaseAfterAll),
				logging.IntField("index", i),
				logging.ErrorField(err),
			)
			r.metrics.RecordHookFailure(r.name, PhaseAfterAll)
			errs = append(errs, herr)
		}
	}

	r.mu.Lock()
	r.hookErrs = append(r.hookErrs, errs...)
	r.state = StateDone
	r.summary = r.buildSummaryLocked()
	summary := r.summary
	joined := errors.Join(r.hookErrs...)
	r.mu.Unlock()

	r.metrics.IncrementRunTotal()
	if err := r.reporter.ReportSummary(summary); err != nil {
		r.logger.Warn("report_failed", logging.ErrorField(err))
	}
	r.logger.Info("teardown_completed",
		logging.IntField("passed", summary.Passed),
		logging.IntField("failed", summary.Failed),
		logging.StringField("duration", summary.Duration.String()),
	)
	return joined
}

// invoke runs fn, converting a panic into a *future.PanicError.
func (r *Run) invoke(ctx context.Context, fn testcase.Action) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &future.PanicError{Value: v}
		}
	}()
	return fn(ctx)
}

// record stores and reports one outcome. Results of tests that
// arrive after teardown are reported but not kept, since the
// summary was already emitted.
func (r *Run) record(
	title string,
	start time.Time,
	err error,
	keep bool,
) testcase.Result {
	end := r.clock.Now()
	res := testcase.Result{
		Run:       r.name,
		Title:     title,
		Status:    testcase.StatusPassed,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
	}
	if err != nil {
		res.Status = testcase.StatusFailed
		res.Message = err.Error()
		res.Err = err
	}

	r.mu.Lock()
	res.Index = len(r.results)
	if keep {
		r.results = append(r.results, res)
	}
	r.mu.Unlock()

	r.metrics.RecordTest(r.name, res.Status, res.Duration)
	if err := r.reporter.ReportResult(&res); err != nil {
		r.logger.Warn("report_failed", logging.ErrorField(err))
	}
	if res.Passed() {
		r.logger.Info("test_passed",
			logging.StringField("title", title),
			logging.StringField("duration", res.Duration.String()),
		)
	} else {
		r.logger.Error("test_failed",
			logging.StringField("title", title),
			logging.ErrorField(err),
		)
	}
	return res
}

func (r *Run) buildSummaryLocked() *testcase.Summary {
	s := testcase.NewSummary(r.name, r.results)
	s.State = r.state.String()
	s.StartTime = r.started
	if !r.started.IsZero() {
		s.Duration = r.clock.Since(r.started)
	}
	if len(r.hookErrs) > 0 {
		s.HookError = errors.Join(r.hookErrs...).Error()
	}
	return s
}
