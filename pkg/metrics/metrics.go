// Package metrics records counters about test runs: results,
// hook failures and poll attempts.
package metrics

import "time"

// Metrics defines the interface for recording run metrics.
type Metrics interface {
	// RecordTest records a test outcome.
	RecordTest(run, status string, duration time.Duration)
	// RecordHookFailure records a failed before-all or
	// after-all hook.
	RecordHookFailure(run, phase string)
	// RecordProbe records a finished WaitFor call.
	RecordProbe(attempts int, succeeded bool)
	// IncrementRunTotal increments the total run counter.
	IncrementRunTotal()
}

// NoopMetrics is a no-op implementation of Metrics used when
// metrics collection is disabled.
type NoopMetrics struct{}

func (NoopMetrics) RecordTest(_, _ string, _ time.Duration) {}
func (NoopMetrics) RecordHookFailure(_, _ string)           {}
func (NoopMetrics) RecordProbe(_ int, _ bool)               {}
func (NoopMetrics) IncrementRunTotal()                      {}

// OrNoop returns m, or NoopMetrics when m is nil.
func OrNoop(m Metrics) Metrics {
	if m == nil {
		return NoopMetrics{}
	}
	return m
}
