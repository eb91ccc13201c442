// Package report provides the sinks that receive test results:
// console and JSON Lines output, an in-memory recorder, and
// summary and history files.
package report

import (
	"errors"

	"digital.vasic.harness/pkg/testcase"
)

// Reporter receives exactly one result per executed test, in
// execution order, followed by one summary per run.
type Reporter interface {
	// ReportResult records a single test outcome.
	ReportResult(result *testcase.Result) error

	// ReportSummary records the aggregate of a finished run.
	ReportSummary(summary *testcase.Summary) error
}

// MultiReporter fans out to several reporters.
type MultiReporter struct {
	reporters []Reporter
}

// NewMultiReporter creates a reporter that forwards to all of
// the given reporters, skipping nil entries.
func NewMultiReporter(reporters ...Reporter) *MultiReporter {
	m := &MultiReporter{}
	for _, r := range reporters {
		if r != nil {
			m.reporters = append(m.reporters, r)
		}
	}
	return m
}

// ReportResult forwards to every reporter and joins their errors.
func (m *MultiReporter) ReportResult(result *testcase.Result) error {
	var errs []error
	for _, r := range m.reporters {
		if err := r.ReportResult(result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ReportSummary forwards to every reporter and joins their
// errors.
func (m *MultiReporter) ReportSummary(summary *testcase.Summary) error {
	var errs []error
	for _, r := range m.reporters {
		if err := r.ReportSummary(summary); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard is a Reporter that drops everything.
type Discard struct{}

func (Discard) ReportResult(*testcase.Result) error   { return nil }
func (Discard) ReportSummary(*testcase.Summary) error { return nil }
