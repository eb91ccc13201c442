package suite

import (
	"context"
	"fmt"

	"digital.vasic.harness/pkg/future"
	"digital.vasic.harness/pkg/logging"
	"digital.vasic.harness/pkg/testcase"
)

// Body registers hooks and executes tests against a Run.
type Body func(ctx context.Context, r *Run)

// Execute creates a Run, passes it to body and fires teardown
// when body returns. Teardown also fires when body panics; the
// panic is recorded as a hook failure of the run instead of
// propagating. The returned error joins all hook failures.
func Execute(
	ctx context.Context,
	name string,
	body Body,
	opts ...Option,
) (*testcase.Summary, error) {
	r := NewRun(name, opts...)

	bodyErr := func() (err error) {
		defer func() {
			if v := recover(); v != nil {
				err = &future.PanicError{Value: v}
			}
		}()
		if body != nil {
			body(ctx, r)
		}
		return nil
	}()

	if bodyErr != nil {
		r.logger.Error("body_panicked", logging.ErrorField(bodyErr))
		r.mu.Lock()
		r.hookErrs = append(r.hookErrs,
			fmt.Errorf("run body: %w", bodyErr))
		r.mu.Unlock()
	}

	err := r.Teardown(ctx)
	return r.Summary(), err
}
