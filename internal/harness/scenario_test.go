package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quill/internal/testutil"
)

func TestLoadScenario_ResolvesGrammarPath(t *testing.T) {
	s := loadTestScenario(t, "tavern_seeded")

	assert.Equal(t, filepath.Join("testdata", "scenarios", "grammars", "tavern.yaml"), s.Grammar)
	require.NotNil(t, s.Seed)
	assert.Equal(t, int64(2024), *s.Seed)
	require.NotNil(t, s.Modifiers)
	assert.Empty(t, *s.Modifiers)
	assert.Equal(t, 4, s.EffectiveCount())
}

func TestLoadScenarioWithBasePath(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "grammars/g.yaml", "rule: {main: hi}")
	path := testutil.WriteFile(t, dir, "elsewhere/s.yaml", "name: s\ngrammar: grammars/g.yaml\n")

	s, err := LoadScenarioWithBasePath(path, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "grammars", "g.yaml"), s.Grammar)

	_, err = LoadScenario(path)
	assert.ErrorContains(t, err, "grammar file not found")
}

func TestParseScenario_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown field", "name: s\ngrammar: g.yaml\nexpects: {}\n", "field expects not found"},
		{"missing name", "grammar: g.yaml\n", "name is required"},
		{"missing grammar", "name: s\n", "grammar is required"},
		{"negative count", "name: s\ngrammar: g\ncount: -1\n", "count must not be negative"},
		{"outputs vs count", "name: s\ngrammar: g\ncount: 3\nexpect: {outputs: [a]}\n", "expect.outputs has 1 entries but count is 3"},
		{"error and outputs", "name: s\ngrammar: g\nexpect: {outputs: [a], error: x}\n", "mutually exclusive"},
		{"assertion without type", "name: s\ngrammar: g\nassertions: [{count: 1}]\n", "assertions[0]: type is required"},
		{"unknown assertion", "name: s\ngrammar: g\nassertions: [{type: nope}]\n", `unknown assertion type "nope"`},
		{"bad pattern", "name: s\ngrammar: g\nassertions: [{type: matches, pattern: \"(\"}]\n", "invalid pattern"},
		{"one_of without values", "name: s\ngrammar: g\nassertions: [{type: one_of}]\n", "one_of requires values"},
		{"distinct without count", "name: s\ngrammar: g\nassertions: [{type: distinct}]\n", "distinct requires a positive count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestScenario_EffectiveCount(t *testing.T) {
	assert.Equal(t, 1, (&Scenario{}).EffectiveCount())
	assert.Equal(t, 7, (&Scenario{Count: 7}).EffectiveCount())
	assert.Equal(t, 2, (&Scenario{Expect: Expect{Outputs: []string{"a", "b"}}}).EffectiveCount())
}
