package poll

import (
	"context"
	"time"

	"digital.vasic.harness/pkg/clock"
	"digital.vasic.harness/pkg/logging"
	"digital.vasic.harness/pkg/metrics"
)

// Option configures WaitFor and Until.
type Option func(*waitConfig)

type waitConfig struct {
	policy  Policy
	logger  logging.Logger
	metrics metrics.Metrics
}

// WithAttempts sets the attempt budget.
func WithAttempts(n int) Option {
	return func(c *waitConfig) {
		c.policy.MaxAttempts = n
	}
}

// WithInterval sets the delay between attempts.
func WithInterval(d time.Duration) Option {
	return func(c *waitConfig) {
		c.policy.Interval = d
	}
}

// WithBackoff grows the delay by multiplier after each failed
// attempt, capped at ceiling when ceiling is positive.
func WithBackoff(multiplier float64, ceiling time.Duration) Option {
	return func(c *waitConfig) {
		c.policy.Multiplier = multiplier
		c.policy.MaxInterval = ceiling
	}
}

// WithClock paces the delays with clk.
func WithClock(clk clock.Clock) Option {
	return func(c *waitConfig) {
		c.policy.Clock = clk
	}
}

// WithPolicy replaces the whole policy.
func WithPolicy(p Policy) Option {
	return func(c *waitConfig) {
		c.policy = p
	}
}

// WithLogger logs each retry at debug level.
func WithLogger(l logging.Logger) Option {
	return func(c *waitConfig) {
		c.logger = l
	}
}

// WithMetrics records the attempt count of every call.
func WithMetrics(m metrics.Metrics) Option {
	return func(c *waitConfig) {
		c.metrics = m
	}
}

// WaitFor invokes probe until it returns nil, at most 5 times
// with 250ms between attempts unless configured otherwise. It
// returns nil on the first passing attempt. When every attempt
// fails it returns an *ExhaustedError wrapping the error of the
// final attempt; only that most recent failure is surfaced.
func WaitFor(ctx context.Context, probe Probe, opts ...Option) error {
	cfg := waitConfig{policy: DefaultPolicy()}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := logging.OrNull(cfg.logger)
	m := metrics.OrNoop(cfg.metrics)

	attempts, err := retry(ctx, cfg.policy, probe,
		func(attempt int, delay time.Duration, err error) {
			logger.Debug("probe_retry",
				logging.IntField("attempt", attempt),
				logging.IntField("max_attempts", cfg.policy.MaxAttempts),
				logging.StringField("delay", delay.String()),
				logging.ErrorField(err),
			)
		},
	)
	if attempts > 0 {
		m.RecordProbe(attempts, err == nil)
	}
	if err != nil && attempts > 0 {
		logger.Warn("probe_gave_up",
			logging.IntField("attempts", attempts),
			logging.ErrorField(err),
		)
	}
	return err
}

// Until polls a boolean condition with the same budget and
// pacing as WaitFor.
func Until(
	ctx context.Context,
	condition func() bool,
	opts ...Option,
) error {
	if condition == nil {
		return ErrNilProbe
	}
	return WaitFor(ctx, func(context.Context) error {
		if condition() {
			return nil
		}
		return errConditionNotMet
	}, opts...)
}
