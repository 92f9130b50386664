package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quill/internal/testutil"
)

func TestFindScenarioFiles(t *testing.T) {
	files, err := FindScenarioFiles("testdata/scenarios", "")
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.Equal(t, []string{
		"bad_weights.yaml",
		"loop_depth.yaml",
		"tavern_seeded.yaml",
		"weather_distribution.yaml",
		"zoo_articles.yaml",
	}, names, "grammars/ is skipped")

	files, err = FindScenarioFiles("testdata/scenarios", "*_seeded")
	require.NoError(t, err)
	require.Len(t, files, 1)

	_, err = FindScenarioFiles("testdata/scenarios", "[")
	assert.ErrorContains(t, err, "invalid filter pattern")

	_, err = FindScenarioFiles("testdata/absent", "")
	var nf *ScenarioNotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestLoadScenarios_CollectsFailures(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "grammars/g.yaml", "rule: {main: hi}")
	testutil.WriteFile(t, dir, "good.yaml", "name: good\ngrammar: grammars/g.yaml\n")
	bad := testutil.WriteFile(t, dir, "bad.yaml", "name: bad\n")

	scenarios, failures, err := LoadScenarios(dir, "")
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	assert.Equal(t, "good", scenarios[0].Name)
	assert.Contains(t, failures, bad)
}

func TestRunAll(t *testing.T) {
	scenarios, failures, err := LoadScenarios("testdata/scenarios", "")
	require.NoError(t, err)
	require.Empty(t, failures)

	for _, parallel := range []int{0, 1, 4} {
		outcomes, err := RunAll(context.Background(), scenarios, parallel)
		require.NoError(t, err)
		require.Len(t, outcomes, len(scenarios))
		for i, o := range outcomes {
			assert.Same(t, scenarios[i], o.Scenario, "outcomes keep input order")
			assert.True(t, o.Passed(), "%s: %v %v", o.Scenario.Name, o.Err, o.Result)
		}
	}
}

func TestRunAll_Cancelled(t *testing.T) {
	scenarios, _, err := LoadScenarios("testdata/scenarios", "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = RunAll(ctx, scenarios, 2)
	assert.ErrorIs(t, err, context.Canceled)
}
