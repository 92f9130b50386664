package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/quill/internal/ir"
)

// ruleForm is the keyed rule shape shared by CUE and YAML grammar files.
// Exactly one field must be set. The shorthand forms (a list for static, a
// string for template) never reach this type.
type ruleForm struct {
	Static      *[]string        `json:"static" yaml:"static"`
	Template    *string          `json:"template" yaml:"template"`
	Weighted    []weightedEntry  `json:"weighted" yaml:"weighted"`
	Sequence    *sequenceForm    `json:"sequence" yaml:"sequence"`
	Range       *rangeForm       `json:"range" yaml:"range"`
	Conditional *conditionalForm `json:"conditional" yaml:"conditional"`
}

// ruleFormKeys lists the keys a keyed rule may use.
var ruleFormKeys = []string{"static", "template", "weighted", "sequence", "range", "conditional"}

type weightedEntry struct {
	Value  string  `json:"value" yaml:"value"`
	Weight float64 `json:"weight" yaml:"weight"`
}

type sequenceForm struct {
	Values []string `json:"values" yaml:"values"`
	Cycle  bool     `json:"cycle" yaml:"cycle"`
}

type rangeForm struct {
	Min       float64 `json:"min" yaml:"min"`
	Max       float64 `json:"max" yaml:"max"`
	Step      float64 `json:"step" yaml:"step"`
	Type      string  `json:"type" yaml:"type"`
	Precision int     `json:"precision" yaml:"precision"`
}

type conditionalForm struct {
	Cases   []ir.CaseDef `json:"cases" yaml:"cases"`
	Default *string      `json:"default" yaml:"default"`
}

// optionsForm mirrors ir.Options with file-level key names.
type optionsForm struct {
	MaxDepth        int       `json:"max_depth" yaml:"max_depth"`
	Seed            *int64    `json:"seed" yaml:"seed"`
	Modifiers       *[]string `json:"modifiers" yaml:"modifiers"`
	PreserveContext bool      `json:"preserve_context" yaml:"preserve_context"`
}

var optionKeys = []string{"max_depth", "seed", "modifiers", "preserve_context"}

func (o optionsForm) toOptions() ir.Options {
	opts := ir.Options{
		MaxDepth:        o.MaxDepth,
		Seed:            o.Seed,
		PreserveContext: o.PreserveContext,
	}
	if o.Modifiers != nil {
		opts.Modifiers = append([]string{}, (*o.Modifiers)...)
	}
	return opts
}

// checkKeys returns an error message naming the first key not in allowed.
func checkKeys(keys, allowed []string) string {
	for _, k := range keys {
		if !slices.Contains(allowed, k) {
			return fmt.Sprintf("unknown key %q (expected one of %s)", k, strings.Join(allowed, ", "))
		}
	}
	return ""
}

// toRuleDef converts the single populated form to a RuleDef.
func (f ruleForm) toRuleDef(name string) (ir.RuleDef, error) {
	def := ir.RuleDef{Name: name}
	set := 0
	if f.Static != nil {
		set++
		def.Kind = ir.KindStatic
		def.Values = *f.Static
	}
	if f.Template != nil {
		set++
		def.Kind = ir.KindTemplate
		def.Template = *f.Template
	}
	if f.Weighted != nil {
		set++
		def.Kind = ir.KindWeighted
		for _, e := range f.Weighted {
			def.Values = append(def.Values, e.Value)
			def.Weights = append(def.Weights, e.Weight)
		}
	}
	if f.Sequence != nil {
		set++
		def.Kind = ir.KindSequential
		def.Values = f.Sequence.Values
		def.Cycle = f.Sequence.Cycle
	}
	if f.Range != nil {
		set++
		def.Kind = ir.KindRange
		def.Min, def.Max, def.Step = f.Range.Min, f.Range.Max, f.Range.Step
		def.NumberType = f.Range.Type
		def.Precision = f.Range.Precision
	}
	if f.Conditional != nil {
		set++
		def.Kind = ir.KindConditional
		def.Cases = f.Conditional.Cases
		def.Default = f.Conditional.Default
	}
	if set != 1 {
		return def, fmt.Errorf("rule must declare exactly one of %s, found %d",
			strings.Join(ruleFormKeys, ", "), set)
	}
	return def, nil
}
