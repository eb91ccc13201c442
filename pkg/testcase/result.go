package testcase

import "time"

// Status constants for test outcomes.
const (
	StatusPassed = "passed"
	StatusFailed = "failed"
)

// Result captures the outcome of a single test execution.
type Result struct {
	// Run is the name of the run the test belongs to.
	Run string `json:"run"`

	// Index is the zero-based registration position of the
	// test within its run.
	Index int `json:"index"`

	// Title is the test title as registered.
	Title string `json:"title"`

	// Status is StatusPassed or StatusFailed.
	Status string `json:"status"`

	// Message holds the failure message. Empty on success.
	Message string `json:"message,omitempty"`

	// Err is the raised failure, kept for errors.Is/As
	// inspection. It is not serialized.
	Err error `json:"-"`

	// StartTime is when the action started.
	StartTime time.Time `json:"start_time"`

	// EndTime is when the outcome was recorded.
	EndTime time.Time `json:"end_time"`

	// Duration is EndTime minus StartTime.
	Duration time.Duration `json:"duration"`
}

// Passed reports whether the test passed.
func (r *Result) Passed() bool {
	return r.Status == StatusPassed
}

// Summary aggregates the results of one run.
type Summary struct {
	// Run is the run name.
	Run string `json:"run"`

	// Results are ordered by registration.
	Results []Result `json:"results"`

	// Passed is the number of passed tests.
	Passed int `json:"passed"`

	// Failed is the number of failed tests.
	Failed int `json:"failed"`

	// HookError describes before-all or after-all failures.
	HookError string `json:"hook_error,omitempty"`

	// State is the final run state.
	State string `json:"state"`

	// StartTime is when the run executed its first hook or
	// test.
	StartTime time.Time `json:"start_time"`

	// Duration is the wall-clock time of the whole run.
	Duration time.Duration `json:"duration"`
}

// NewSummary builds a Summary from ordered results.
func NewSummary(run string, results []Result) *Summary {
	s := &Summary{
		Run:     run,
		Results: make([]Result, len(results)),
	}
	copy(s.Results, results)

	for _, r := range results {
		if r.Passed() {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

// Total returns the number of tests in the summary.
func (s *Summary) Total() int {
	return len(s.Results)
}

// OK reports whether every test passed and no hook failed.
func (s *Summary) OK() bool {
	return s.Failed == 0 && s.HookError == ""
}

// PassRate returns the fraction of passed tests, or 0 for an
// empty run.
func (s *Summary) PassRate() float64 {
	if len(s.Results) == 0 {
		return 0
	}
	return float64(s.Passed) / float64(len(s.Results))
}
