package assertion

import (
	"context"
	"fmt"

	"digital.vasic.harness/pkg/future"
)

// MatcherRejects is the matcher name used in errors raised by
// Rejection comparators.
const MatcherRejects = "rejects.to_throw"

// Rejection holds comparators for an actual value that is expected
// to be a pending asynchronous operation.
type Rejection struct {
	actual any
}

// ToThrow waits for the pending operation and checks that it
// failed with the same message as expected. It returns a
// *UsageError immediately when the actual value is not a
// future.Pending or expected is nil, a *MismatchError when the
// operation succeeded or failed with a different message, and the
// context error if ctx ends before the operation settles.
func (r *Rejection) ToThrow(
	ctx context.Context,
	expected error,
) error {
	p, ok := r.actual.(future.Pending)
	if !ok || isNil(r.actual) {
		return &UsageError{
			Matcher: MatcherRejects,
			Message: fmt.Sprintf(
				"expected a pending operation, got %T",
				r.actual,
			),
		}
	}
	if expected == nil {
		return &UsageError{
			Matcher: MatcherRejects,
			Message: "expected error must not be nil",
		}
	}

	select {
	case <-p.Done():
	case <-ctx.Done():
		return fmt.Errorf(
			"waiting for rejection: %w", ctx.Err(),
		)
	}

	got := p.Err()
	if got == nil {
		return &MismatchError{
			Matcher:  MatcherRejects,
			Expected: expected.Error(),
			Message:  "expected promise to reject",
		}
	}

	if got.Error() != expected.Error() {
		return &MismatchError{
			Matcher:  MatcherRejects,
			Actual:   got.Error(),
			Expected: expected.Error(),
			Message: fmt.Sprintf(
				"expected rejection with message %q, got %q",
				expected.Error(), got.Error(),
			),
		}
	}
	return nil
}
