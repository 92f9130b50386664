package harness

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Outcome pairs a scenario with its result, or with the error that kept it
// from running.
type Outcome struct {
	Scenario *Scenario
	Result   *Result
	Err      error
}

// Passed reports whether the scenario ran and every expectation held.
func (o Outcome) Passed() bool {
	return o.Err == nil && o.Result != nil && o.Result.Pass
}

// RunAll runs scenarios with at most parallel running at once (at least one).
// Outcomes are returned in input order. Per-scenario failures are reported in
// the outcomes; the returned error is non-nil only when ctx is cancelled.
func RunAll(ctx context.Context, scenarios []*Scenario, parallel int) ([]Outcome, error) {
	if parallel < 1 {
		parallel = 1
	}
	outcomes := make([]Outcome, len(scenarios))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, s := range scenarios {
		i, s := i, s
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := RunContext(ctx, s)
			outcomes[i] = Outcome{Scenario: s, Result: res, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}
