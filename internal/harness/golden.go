package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/quill/internal/ir"
)

// Snapshot captures the trace of a scenario execution as canonical JSON, so
// golden files are byte-stable across runs and platforms. The grammar hash is
// left out so that reformatting a grammar does not churn its snapshots.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	trace := make(ir.IRArray, len(result.Trace))
	for i, ev := range result.Trace {
		obj := ir.IRObject{
			"seq":       ir.IRInt(ev.Seq),
			"run_id":    ir.IRString(ev.RunID),
			"run_index": ir.IRInt(ev.RunIndex),
			"output":    ir.IRString(ev.Output),
		}
		if ev.Error != "" {
			obj["error"] = ir.IRString(ev.Error)
		}
		trace[i] = obj
	}

	snap := ir.IRObject{
		"scenario_name": ir.IRString(scenarioName),
		"trace":         trace,
	}
	if result.Error != "" {
		snap["error"] = ir.IRString(result.Error)
	}
	return ir.MarshalCanonical(snap)
}

// RunWithGolden executes a scenario and compares its trace snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the trace doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
