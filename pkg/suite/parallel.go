package suite

import (
	"context"

	"golang.org/x/sync/errgroup"

	"digital.vasic.harness/pkg/testcase"
)

// Spec names one independent run for ExecuteAll.
type Spec struct {
	Name    string
	Body    Body
	Options []Option
}

// Outcome is the result of one run executed by ExecuteAll.
type Outcome struct {
	Summary *testcase.Summary
	Err     error
}

// ExecuteAll executes independent runs concurrently using at most
// maxConcurrency goroutines. Tests within one run stay sequential.
// Outcomes are returned in the same order as specs. A run's hook
// failures are kept in its Outcome and do not stop other runs.
func ExecuteAll(
	ctx context.Context,
	specs []Spec,
	maxConcurrency int,
	shared ...Option,
) []Outcome {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}

	outcomes := make([]Outcome, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)

	for i, spec := range specs {
		g.Go(func() error {
			opts := append(append([]Option(nil), shared...), spec.Options...)
			summary, err := Execute(gctx, spec.Name, spec.Body, opts...)
			outcomes[i] = Outcome{Summary: summary, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return outcomes
}
