package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/quill/internal/ir"
)

func ptr[T any](v T) *T { return &v }

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidate_CleanGrammar(t *testing.T) {
	g, err := ParseYAML("g.yaml", []byte(fullYAML))
	assert.NoError(t, err)
	assert.Empty(t, Validate(g))
}

func TestValidate_GrammarLevel(t *testing.T) {
	g := &ir.Grammar{
		Options: ir.Options{MaxDepth: -1, Modifiers: []string{"article", "sparkle"}},
		Rules: []ir.RuleDef{
			{Name: "a", Kind: ir.KindStatic, Values: []string{"x"}, Line: 3},
			{Name: "a", Kind: ir.KindStatic, Values: []string{"y"}, Line: 4},
			{Name: "a", Kind: ir.KindTemplate, Template: "shadowed but allowed"},
		},
	}

	errs := Validate(g)
	assert.Equal(t, []string{ErrInvalidMaxDepth, ErrUnknownModifier, ErrDuplicateRule}, codes(errs))
	assert.Equal(t, 4, errs[2].Line)
	assert.Contains(t, errs[1].Message, `"sparkle"`)
}

func TestValidate_NoRules(t *testing.T) {
	assert.Equal(t, []string{ErrNoRules}, codes(Validate(&ir.Grammar{})))
}

func TestValidateRule(t *testing.T) {
	tests := []struct {
		name string
		def  ir.RuleDef
		want []string
	}{
		{"empty static is fine", ir.RuleDef{Name: "s", Kind: ir.KindStatic}, nil},
		{"blank name", ir.RuleDef{Name: " ", Kind: ir.KindTemplate}, []string{ErrEmptyRuleName}},
		{"percent in name", ir.RuleDef{Name: "a%b", Kind: ir.KindTemplate}, []string{ErrPlaceholderInKey}},
		{"function kind", ir.RuleDef{Name: "f", Kind: ir.KindFunction}, []string{ErrFunctionInFile}},
		{"unknown kind", ir.RuleDef{Name: "u", Kind: "markov"}, []string{ErrUnknownRuleKind}},

		{"weighted ok", ir.RuleDef{Name: "w", Kind: ir.KindWeighted,
			Values: []string{"a", "b", "c"}, Weights: []float64{0.5, 0.3, 0.2}}, nil},
		{"weighted empty", ir.RuleDef{Name: "w", Kind: ir.KindWeighted}, []string{ErrNoValues}},
		{"weighted count", ir.RuleDef{Name: "w", Kind: ir.KindWeighted,
			Values: []string{"a", "b"}, Weights: []float64{1}}, []string{ErrWeightCount}},
		{"weighted zero", ir.RuleDef{Name: "w", Kind: ir.KindWeighted,
			Values: []string{"a", "b"}, Weights: []float64{1, 0}}, []string{ErrWeightValue}},
		{"weighted sum", ir.RuleDef{Name: "w", Kind: ir.KindWeighted,
			Values: []string{"a", "b"}, Weights: []float64{0.5, 0.4}}, []string{ErrWeightSum}},

		{"sequence empty", ir.RuleDef{Name: "q", Kind: ir.KindSequential}, []string{ErrNoValues}},

		{"range ok", ir.RuleDef{Name: "r", Kind: ir.KindRange, Min: 1, Max: 6}, nil},
		{"range type", ir.RuleDef{Name: "r", Kind: ir.KindRange, NumberType: "decimal"}, []string{ErrRangeType}},
		{"range bounds", ir.RuleDef{Name: "r", Kind: ir.KindRange, Min: 5, Max: 1}, []string{ErrRangeBounds}},
		{"range fractional int", ir.RuleDef{Name: "r", Kind: ir.KindRange, Min: 0.5, Max: 1}, []string{ErrRangeBounds}},
		{"range negative step", ir.RuleDef{Name: "r", Kind: ir.KindRange, NumberType: "float", Max: 1, Step: -0.1},
			[]string{ErrRangeStep}},

		{"conditional empty", ir.RuleDef{Name: "c", Kind: ir.KindConditional}, []string{ErrNoCases}},
		{"conditional default only", ir.RuleDef{Name: "c", Kind: ir.KindConditional, Default: ptr("x")}, nil},
		{"conditional bad case", ir.RuleDef{Name: "c", Kind: ir.KindConditional,
			Cases: []ir.CaseDef{{When: ir.Condition{Matches: "("}, Value: "x"}}},
			[]string{ErrConditionVar, ErrConditionPattern}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateRule(tt.def)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, codes(got))
		})
	}
}

func TestValidationError_Format(t *testing.T) {
	withLine := ValidationError{Field: "rule.w", Message: "bad", Code: ErrWeightSum, Line: 7}
	assert.Equal(t, "[E113] line 7: rule.w: bad", withLine.Error())

	noLine := ValidationError{Field: "rule.w", Message: "bad", Code: ErrWeightSum}
	assert.Equal(t, "[E113] rule.w: bad", noLine.Error())
}
