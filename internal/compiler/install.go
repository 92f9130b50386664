package compiler

import (
	"fmt"

	"github.com/roach88/quill/internal/ir"
	"github.com/roach88/quill/internal/rules"
)

// Install adds every rule in g to r. It stops at the first rule the resolver
// rejects; the error wraps the resolver's *rules.ConfigError.
//
// Install does not run Validate; callers that want every problem reported at
// once should validate first.
func Install(g *ir.Grammar, r *rules.Resolver) error {
	for _, def := range g.Rules {
		if err := installRule(def, r); err != nil {
			if def.Line > 0 {
				return fmt.Errorf("rule %q (line %d): %w", def.Name, def.Line, err)
			}
			return fmt.Errorf("rule %q: %w", def.Name, err)
		}
	}
	return nil
}

func installRule(def ir.RuleDef, r *rules.Resolver) error {
	switch def.Kind {
	case ir.KindStatic:
		return r.AddStatic(def.Name, def.Values)
	case ir.KindTemplate:
		return r.AddTemplate(def.Name, def.Template)
	case ir.KindWeighted:
		return r.AddWeighted(def.Name, def.Values, def.Weights)
	case ir.KindSequential:
		return r.AddSequential(def.Name, def.Values, def.Cycle)
	case ir.KindRange:
		return r.AddRange(def.Name, rules.Range{
			Min:       def.Min,
			Max:       def.Max,
			Step:      def.Step,
			Type:      rules.NumberType(def.NumberType),
			Precision: def.Precision,
		})
	case ir.KindConditional:
		cases := make([]rules.Case, 0, len(def.Cases)+1)
		for _, c := range def.Cases {
			p, err := compileCondition(c.When)
			if err != nil {
				return err
			}
			cases = append(cases, rules.When(p, c.Value))
		}
		if def.Default != nil {
			cases = append(cases, rules.Default(*def.Default))
		}
		return r.AddConditional(def.Name, cases)
	}
	return fmt.Errorf("rule kind %q cannot be declared in a grammar file", def.Kind)
}
