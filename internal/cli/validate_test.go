package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quill/internal/compiler"
)

func TestValidateValidGrammar(t *testing.T) {
	path := writeGrammar(t, "tavern.yaml", tavernGrammar)

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Grammar tavern valid (3 rules)")
}

func TestValidateValidGrammarJSON(t *testing.T) {
	path := writeGrammar(t, "zoo.cue", zooGrammar)

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.NoError(t, err)

	var result ValidationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, result.Valid)
	assert.Equal(t, "zoo", result.Grammar)
	assert.Equal(t, 2, result.Rules)
	assert.Len(t, result.GrammarHash, 64)
	require.NotNil(t, result.Report)
	assert.Empty(t, result.Report.MissingRules)
}

func TestValidateNonExistentGrammar(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/grammar.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNotFound)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "not found")
}

func TestValidateUnsupportedFormat(t *testing.T) {
	path := writeGrammar(t, "tavern.txt", "hello")

	_, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeUnsupported)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateUnparseableGrammar(t *testing.T) {
	path := writeGrammar(t, "broken.cue", "rule: main: {")

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeLoadFailed)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E004]")
}

func TestValidateDefinitionErrors(t *testing.T) {
	path := writeGrammar(t, "weather.yaml", `rule:
  sky:
    weighted:
      - {value: sunny, weight: 0.6}
      - {value: cloudy, weight: 0.3}
  main: "%sky%"
`)

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, compiler.ErrWeightSum)
	assert.Contains(t, out, "weights must sum to 1.0")
}

func TestValidateDefinitionErrorsJSON(t *testing.T) {
	path := writeGrammar(t, "bad.yaml", `options: {modifiers: [shout]}
rule:
  main: hi
`)

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result ValidationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, compiler.ErrUnknownModifier, resp.Error.Code)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
}

func TestValidateCircularReference(t *testing.T) {
	path := writeGrammar(t, "loop.yaml", loopGrammar)

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Grammar loop invalid")
	assert.Contains(t, out, "circular reference: ")
	assert.Contains(t, out, "a → b")
}

func TestValidateMissingRuleSuggestion(t *testing.T) {
	path := writeGrammar(t, "typo.yaml", `rule:
  greeting: [hello]
  main: "%greting%, world"
`)

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "missing rule: greting")
	assert.Contains(t, out, `did you mean "greeting"?`)
}

func TestValidateUnreachableIsAdvisory(t *testing.T) {
	path := writeGrammar(t, "spare.yaml", `rule:
  main: hello
  spare: [unused]
`)

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Grammar spare valid")
	assert.Contains(t, out, "unreachable: spare")
}

func TestValidateMissingArgs(t *testing.T) {
	_, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
