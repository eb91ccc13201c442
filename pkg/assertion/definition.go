// Package assertion provides the assertion engine of the harness:
// Expect-style comparators backed by an extensible registry of
// named matchers. Comparators return an error on mismatch instead
// of stopping the caller, so they can be used inside test actions
// and poll probes alike.
package assertion

// Definition describes a single matcher application.
type Definition struct {
	// Type is the matcher name (e.g., "to_be", "to_equal",
	// "to_contain").
	Type string `json:"type"`

	// Value is the expected value.
	Value any `json:"value,omitempty"`

	// Message overrides the failure message when set.
	Message string `json:"message,omitempty"`
}

// Result captures the outcome of evaluating a single matcher.
type Result struct {
	// Type is the matcher that was evaluated.
	Type string `json:"type"`

	// Expected is the value the matcher expected.
	Expected any `json:"expected"`

	// Actual is the value that was observed.
	Actual any `json:"actual"`

	// Passed indicates whether the matcher succeeded.
	Passed bool `json:"passed"`

	// Message is a human-readable description of the outcome.
	Message string `json:"message"`
}
