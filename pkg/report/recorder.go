package report

import (
	"sync"

	"digital.vasic.harness/pkg/testcase"
)

// Recorder keeps every reported result and summary in memory. It
// is safe for concurrent use.
type Recorder struct {
	mu        sync.Mutex
	results   []testcase.Result
	summaries []testcase.Summary
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// ReportResult stores a copy of result.
func (r *Recorder) ReportResult(result *testcase.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, *result)
	return nil
}

// ReportSummary stores a copy of summary.
func (r *Recorder) ReportSummary(summary *testcase.Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries = append(r.summaries, *summary)
	return nil
}

// Results returns the recorded results in report order.
func (r *Recorder) Results() []testcase.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]testcase.Result, len(r.results))
	copy(out, r.results)
	return out
}

// Summaries returns the recorded summaries in report order.
func (r *Recorder) Summaries() []testcase.Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]testcase.Summary, len(r.summaries))
	copy(out, r.summaries)
	return out
}

// Failed returns the recorded results that did not pass.
func (r *Recorder) Failed() []testcase.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []testcase.Result
	for _, res := range r.results {
		if !res.Passed() {
			out = append(out, res)
		}
	}
	return out
}

// Reset clears everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = nil
	r.summaries = nil
}
