package compiler

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/roach88/quill/internal/ir"
	"github.com/roach88/quill/internal/modifier"
	"github.com/roach88/quill/internal/rules"
)

// Validation error codes (E100-E199)
const (
	// Grammar-level errors (E100-E109)
	ErrNoRules          = "E100" // grammar declares no rules
	ErrInvalidMaxDepth  = "E101" // options.max_depth is negative
	ErrUnknownModifier  = "E102" // options.modifiers names an unregistered modifier
	ErrDuplicateRule    = "E103" // same name and kind declared twice
	ErrFunctionInFile   = "E104" // function rules need Go callbacks
	ErrUnknownRuleKind  = "E105" // kind outside the supported set
	ErrEmptyRuleName    = "E106" // rule name is empty or blank
	ErrPlaceholderInKey = "E107" // rule name contains %

	// Rule payload errors (E110-E119)
	ErrNoValues         = "E110" // weighted/sequential rule without values
	ErrWeightCount      = "E111" // weights and values differ in length
	ErrWeightValue      = "E112" // weight not positive and finite
	ErrWeightSum        = "E113" // weights do not sum to 1.0
	ErrRangeType        = "E114" // range type is not int or float
	ErrRangeBounds      = "E115" // min > max, or fractional int range
	ErrRangeStep        = "E116" // negative step or precision
	ErrNoCases          = "E117" // conditional rule without cases or default
	ErrConditionVar     = "E118" // case condition without var
	ErrConditionPattern = "E119" // matches is not a valid regular expression
)

// ValidationError represents one problem found in a grammar.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled grammar against the rules the resolver enforces,
// plus file-level constraints. It returns every problem found rather than
// stopping at the first.
func Validate(g *ir.Grammar) []ValidationError {
	var errs []ValidationError

	if len(g.Rules) == 0 {
		errs = append(errs, ValidationError{
			Field:   "rule",
			Message: "at least one rule is required",
			Code:    ErrNoRules,
		})
	}
	if g.Options.MaxDepth < 0 {
		errs = append(errs, ValidationError{
			Field:   "options.max_depth",
			Message: fmt.Sprintf("max_depth must not be negative, got %d", g.Options.MaxDepth),
			Code:    ErrInvalidMaxDepth,
		})
	}
	registry := modifier.NewRegistry()
	for i, name := range g.Options.Modifiers {
		if _, err := registry.Lookup(name); err != nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("options.modifiers[%d]", i),
				Message: fmt.Sprintf("unknown modifier %q (known: %s)", name, strings.Join(registry.Names(), ", ")),
				Code:    ErrUnknownModifier,
			})
		}
	}

	seen := make(map[string]bool)
	for _, def := range g.Rules {
		key := string(def.Kind) + "/" + def.Name
		if seen[key] {
			errs = append(errs, ValidationError{
				Field:   ruleField(def),
				Message: fmt.Sprintf("%s rule %q declared more than once", def.Kind, def.Name),
				Code:    ErrDuplicateRule,
				Line:    def.Line,
			})
		}
		seen[key] = true
		errs = append(errs, ValidateRule(def)...)
	}
	return errs
}

// ValidateRule checks a single rule definition.
func ValidateRule(def ir.RuleDef) []ValidationError {
	var errs []ValidationError
	add := func(code, format string, args ...any) {
		errs = append(errs, ValidationError{
			Field:   ruleField(def),
			Message: fmt.Sprintf(format, args...),
			Code:    code,
			Line:    def.Line,
		})
	}

	if strings.TrimSpace(def.Name) == "" {
		add(ErrEmptyRuleName, "rule name must be non-empty")
	}
	if strings.Contains(def.Name, "%") {
		add(ErrPlaceholderInKey, "rule name must not contain %%")
	}

	switch def.Kind {
	case ir.KindStatic, ir.KindTemplate:
		// any content is valid; emptiness is reported by the grammar validator

	case ir.KindWeighted:
		validateWeights(def, add)

	case ir.KindSequential:
		if len(def.Values) == 0 {
			add(ErrNoValues, "sequential rule requires at least one value")
		}

	case ir.KindRange:
		validateRange(def, add)

	case ir.KindConditional:
		if len(def.Cases) == 0 && def.Default == nil {
			add(ErrNoCases, "conditional rule requires at least one case or a default")
		}
		for i, c := range def.Cases {
			if strings.TrimSpace(c.When.Var) == "" {
				add(ErrConditionVar, "case %d: when.var is required", i)
			}
			if c.When.Matches != "" {
				if _, err := regexp.Compile(c.When.Matches); err != nil {
					add(ErrConditionPattern, "case %d: invalid matches pattern: %v", i, err)
				}
			}
		}

	case ir.KindFunction:
		add(ErrFunctionInFile, "function rules cannot be declared in a grammar file")

	default:
		add(ErrUnknownRuleKind, "unknown rule kind %q", def.Kind)
	}
	return errs
}

func validateWeights(def ir.RuleDef, add func(code, format string, args ...any)) {
	if len(def.Values) == 0 {
		add(ErrNoValues, "weighted rule requires at least one value")
		return
	}
	if len(def.Weights) != len(def.Values) {
		add(ErrWeightCount, "%d values but %d weights", len(def.Values), len(def.Weights))
		return
	}
	sum := 0.0
	for i, w := range def.Weights {
		if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			add(ErrWeightValue, "weight %d must be positive and finite, got %v", i, w)
			return
		}
		sum += w
	}
	if math.Abs(sum-1.0) > rules.WeightTolerance {
		add(ErrWeightSum, "weights must sum to 1.0, got %v", sum)
	}
}

func validateRange(def ir.RuleDef, add func(code, format string, args ...any)) {
	typ := def.NumberType
	if typ == "" {
		typ = string(rules.RangeInt)
	}
	if typ != string(rules.RangeInt) && typ != string(rules.RangeFloat) {
		add(ErrRangeType, "range type must be %q or %q, got %q", rules.RangeInt, rules.RangeFloat, def.NumberType)
		return
	}
	if def.Min > def.Max {
		add(ErrRangeBounds, "min %v is greater than max %v", def.Min, def.Max)
	}
	if def.Step < 0 || def.Precision < 0 {
		add(ErrRangeStep, "step and precision must not be negative")
	}
	if typ == string(rules.RangeInt) {
		for _, f := range []float64{def.Min, def.Max, def.Step} {
			if f != math.Trunc(f) {
				add(ErrRangeBounds, "int range needs whole-number min, max and step")
				break
			}
		}
	}
}

func ruleField(def ir.RuleDef) string {
	return "rule." + def.Name
}
