package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/roach88/quill/internal/ir"
)

// Run is one recorded invocation: its generations ordered by run index.
type Run struct {
	ID          string
	Generations []ir.Generation
}

// First returns the run's first generation, which carries the settings shared
// by the whole run.
func (r Run) First() ir.Generation {
	return r.Generations[0]
}

// Outcome is the result of regenerating one output.
type Outcome struct {
	Output string
	Error  string
}

// Regenerator reproduces a run from its recorded settings. It returns the
// current hash of the run's grammar and one outcome per recorded generation, in
// run order. An error means the run could not be attempted at all, for example
// because the grammar file is gone.
type Regenerator func(ctx context.Context, run Run) (grammarHash string, outcomes []Outcome, err error)

// Mismatch describes one way a replay diverged from the log.
type Mismatch struct {
	RunID        string `json:"run_id"`
	GenerationID string `json:"generation_id,omitempty"`
	Seq          int64  `json:"seq,omitempty"`
	Reason       string `json:"reason"`
	Expected     string `json:"expected,omitempty"`
	Actual       string `json:"actual,omitempty"`
}

// ReplayResult summarizes a replay of the log.
type ReplayResult struct {
	Runs        int        `json:"runs"`
	Generations int        `json:"generations"`
	Skipped     int        `json:"skipped"` // unseeded generations
	Mismatches  []Mismatch `json:"mismatches"`
}

// Deterministic reports whether every replayed generation matched the log.
func (r ReplayResult) Deterministic() bool {
	return len(r.Mismatches) == 0
}

// SeededRuns returns every run recorded with a seed, ordered by the seq of its
// first generation.
func (s *Store) SeededRuns(ctx context.Context) ([]Run, error) {
	gens, err := s.ReadAllGenerations(ctx)
	if err != nil {
		return nil, fmt.Errorf("seeded runs: %w", err)
	}

	var runs []Run
	index := make(map[string]int)
	for _, g := range gens {
		if !g.Replayable() {
			continue
		}
		i, ok := index[g.RunID]
		if !ok {
			i = len(runs)
			index[g.RunID] = i
			runs = append(runs, Run{ID: g.RunID})
		}
		runs[i].Generations = append(runs[i].Generations, g)
	}

	// Seq order matches run-index order for runs written by WriteRun; sort
	// anyway so hand-written logs replay correctly.
	for i := range runs {
		sortByRunIndex(runs[i].Generations)
	}
	return runs, nil
}

// Replay regenerates every seeded run with regen and compares the result with
// the log: the grammar hash must be unchanged and every output (or error) must
// be byte-identical. Unseeded generations are counted as skipped.
//
// Replay returns an error only when the log cannot be read; divergence is
// reported through ReplayResult.Mismatches.
func (s *Store) Replay(ctx context.Context, regen Regenerator) (ReplayResult, error) {
	result := ReplayResult{Mismatches: []Mismatch{}}

	all, err := s.ReadAllGenerations(ctx)
	if err != nil {
		return result, fmt.Errorf("replay: %w", err)
	}
	runs, err := s.SeededRuns(ctx)
	if err != nil {
		return result, fmt.Errorf("replay: %w", err)
	}

	for _, run := range runs {
		result.Generations += len(run.Generations)
	}
	result.Skipped = len(all) - result.Generations
	result.Runs = len(runs)

	for _, run := range runs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Mismatches = append(result.Mismatches, replayRun(ctx, run, regen)...)
	}
	return result, nil
}

func replayRun(ctx context.Context, run Run, regen Regenerator) []Mismatch {
	first := run.First()

	hash, outcomes, err := regen(ctx, run)
	if err != nil {
		return []Mismatch{{RunID: run.ID, Reason: "regenerate: " + err.Error()}}
	}
	if hash != first.GrammarHash {
		return []Mismatch{{
			RunID:    run.ID,
			Reason:   "grammar changed since recording: " + first.GrammarPath,
			Expected: first.GrammarHash,
			Actual:   hash,
		}}
	}
	if len(outcomes) != len(run.Generations) {
		return []Mismatch{{
			RunID:  run.ID,
			Reason: fmt.Sprintf("expected %d outcomes, regenerated %d", len(run.Generations), len(outcomes)),
		}}
	}

	var out []Mismatch
	for i, g := range run.Generations {
		got := outcomes[i]
		switch {
		case got.Error != g.Error:
			out = append(out, Mismatch{
				RunID: run.ID, GenerationID: g.ID, Seq: g.Seq,
				Reason: "error differs", Expected: g.Error, Actual: got.Error,
			})
		case got.Output != g.Output:
			out = append(out, Mismatch{
				RunID: run.ID, GenerationID: g.ID, Seq: g.Seq,
				Reason: "output differs", Expected: g.Output, Actual: got.Output,
			})
		}
	}
	return out
}

func sortByRunIndex(gens []ir.Generation) {
	slices.SortStableFunc(gens, func(a, b ir.Generation) int {
		return cmp.Compare(a.RunIndex, b.RunIndex)
	})
}
