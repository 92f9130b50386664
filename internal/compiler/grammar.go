package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/quill/internal/ir"
)

// CompileGrammar parses a CUE value into a Grammar.
//
// The value holds an optional options struct, an optional name and a rule
// struct keyed by rule name:
//
//	options: {max_depth: 50, seed: 7, modifiers: ["article", "capitalize"]}
//	rule: greeting: ["hello", "hi"]
//	rule: main: "%greeting%, %name%!"
//	rule: mood: weighted: [{value: "calm", weight: 0.7}, {value: "wild", weight: 0.3}]
//
// A list is a static rule and a string is a template; everything else uses a
// single keyed form (static, template, weighted, sequence, range, conditional).
// Rules keep their declaration order.
func CompileGrammar(v cue.Value) (*ir.Grammar, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	g := &ir.Grammar{}

	if nameVal := v.LookupPath(cue.ParsePath("name")); nameVal.Exists() {
		name, err := nameVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		g.Name = name
	}

	if optsVal := v.LookupPath(cue.ParsePath("options")); optsVal.Exists() {
		opts, err := parseCUEOptions(optsVal)
		if err != nil {
			return nil, err
		}
		g.Options = opts
	}

	ruleVal := v.LookupPath(cue.ParsePath("rule"))
	if !ruleVal.Exists() {
		return nil, &CompileError{
			Field:   "rule",
			Message: "at least one rule is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := ruleVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		def, err := parseCUERule(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		g.Rules = append(g.Rules, def)
	}
	if len(g.Rules) == 0 {
		return nil, &CompileError{
			Field:   "rule",
			Message: "at least one rule is required",
			Pos:     ruleVal.Pos(),
		}
	}
	return g, nil
}

func parseCUEOptions(v cue.Value) (ir.Options, error) {
	keys, err := cueLabels(v)
	if err != nil {
		return ir.Options{}, err
	}
	if msg := checkKeys(keys, optionKeys); msg != "" {
		return ir.Options{}, &CompileError{Field: "options", Message: msg, Pos: v.Pos()}
	}
	var form optionsForm
	if err := v.Decode(&form); err != nil {
		return ir.Options{}, formatCUEError(err)
	}
	return form.toOptions(), nil
}

func parseCUERule(name string, v cue.Value) (ir.RuleDef, error) {
	field := fmt.Sprintf("rule.%s", name)
	line := v.Pos().Line()

	switch v.Kind() {
	case cue.ListKind:
		var values []string
		if err := v.Decode(&values); err != nil {
			return ir.RuleDef{}, formatCUEError(err)
		}
		if values == nil {
			values = []string{}
		}
		return ir.RuleDef{Name: name, Kind: ir.KindStatic, Values: values, Line: line}, nil

	case cue.StringKind:
		text, err := v.String()
		if err != nil {
			return ir.RuleDef{}, formatCUEError(err)
		}
		return ir.RuleDef{Name: name, Kind: ir.KindTemplate, Template: text, Line: line}, nil

	case cue.StructKind:
		keys, err := cueLabels(v)
		if err != nil {
			return ir.RuleDef{}, err
		}
		if msg := checkKeys(keys, ruleFormKeys); msg != "" {
			return ir.RuleDef{}, &CompileError{Field: field, Message: msg, Pos: v.Pos()}
		}
		var form ruleForm
		if err := v.Decode(&form); err != nil {
			return ir.RuleDef{}, formatCUEError(err)
		}
		def, err := form.toRuleDef(name)
		if err != nil {
			return ir.RuleDef{}, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
		}
		def.Line = line
		return def, nil
	}

	return ir.RuleDef{}, &CompileError{
		Field:   field,
		Message: fmt.Sprintf("rule must be a list, a string or a struct, got %s", v.IncompleteKind()),
		Pos:     v.Pos(),
	}
}

func cueLabels(v cue.Value) ([]string, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var labels []string
	for iter.Next() {
		labels = append(labels, iter.Label())
	}
	return labels, nil
}
