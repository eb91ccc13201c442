// Package testcase defines the shared data model of a test run:
// the action and hook signatures, per-test results and the run
// summary consumed by reporters.
package testcase

import "context"

// Action is the body of a test case. A nil return means the test
// passed; any error, or a panic, means it failed. Actions that
// start asynchronous work are expected to wait for it before
// returning.
type Action func(ctx context.Context) error

// Hook is a before-all or after-all callback.
type Hook func(ctx context.Context) error

// Case is a registered test: a title and its action.
type Case struct {
	// Title is the human-readable name reported for the test.
	Title string

	// Action is executed exactly once.
	Action Action
}
