package suite

import (
	"time"

	"digital.vasic.harness/pkg/clock"
	"digital.vasic.harness/pkg/logging"
	"digital.vasic.harness/pkg/metrics"
	"digital.vasic.harness/pkg/report"
)

// Option configures a Run.
type Option func(*Run)

// WithReporter sets the sink that receives results and the run
// summary.
func WithReporter(r report.Reporter) Option {
	return func(run *Run) {
		run.reporter = r
	}
}

// WithLogger sets the logger used for run events.
func WithLogger(l logging.Logger) Option {
	return func(run *Run) {
		run.logger = l
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m metrics.Metrics) Option {
	return func(run *Run) {
		run.metrics = m
	}
}

// WithClock sets the clock used for timestamps. The clock is also
// attached to the context passed to hooks and test actions, where
// clock.FromContext retrieves it.
func WithClock(c clock.Clock) Option {
	return func(run *Run) {
		run.clock = c
	}
}

// WithTestTimeout bounds each test action with a context deadline.
// Before-all and after-all hooks are not bounded. Zero disables the
// bound.
func WithTestTimeout(d time.Duration) Option {
	return func(run *Run) {
		run.testTimeout = d
	}
}
