package ir

// RuleKind names a rule variant in grammar files. Values match rules.Kind names.
type RuleKind string

const (
	KindStatic      RuleKind = "static"
	KindFunction    RuleKind = "function"
	KindWeighted    RuleKind = "weighted"
	KindConditional RuleKind = "conditional"
	KindSequential  RuleKind = "sequential"
	KindRange       RuleKind = "range"
	KindTemplate    RuleKind = "template"
)

// FileKinds are the kinds a grammar file can declare. Function rules need Go
// callbacks and are only available through the library API.
var FileKinds = map[RuleKind]bool{
	KindStatic:      true,
	KindWeighted:    true,
	KindConditional: true,
	KindSequential:  true,
	KindRange:       true,
	KindTemplate:    true,
}

// Grammar is a compiled grammar file.
type Grammar struct {
	Name    string    `json:"name"`
	Options Options   `json:"options"`
	Rules   []RuleDef `json:"rules"`
}

// Options are the engine settings a grammar file may carry. Zero values mean
// "use the default"; CLI flags override them.
type Options struct {
	MaxDepth int    `json:"max_depth,omitempty"`
	Seed     *int64 `json:"seed,omitempty"`
	// Modifiers names the post-processing pipeline. Nil selects the default
	// pipeline; an empty, non-nil list disables modifiers.
	Modifiers       []string `json:"modifiers,omitempty"`
	PreserveContext bool     `json:"preserve_context,omitempty"`
}

// RuleDef is one rule definition. Which fields are meaningful depends on Kind.
type RuleDef struct {
	Name string   `json:"name"`
	Kind RuleKind `json:"kind"`

	// static, weighted, sequential
	Values []string `json:"values,omitempty"`

	// weighted
	Weights []float64 `json:"weights,omitempty"`

	// sequential
	Cycle bool `json:"cycle,omitempty"`

	// conditional
	Cases   []CaseDef `json:"cases,omitempty"`
	Default *string   `json:"default,omitempty"`

	// range
	Min        float64 `json:"min,omitempty"`
	Max        float64 `json:"max,omitempty"`
	Step       float64 `json:"step,omitempty"`
	NumberType string  `json:"number_type,omitempty"`
	Precision  int     `json:"precision,omitempty"`

	// template
	Template string `json:"template,omitempty"`

	// Line is the source line of the definition, when known.
	Line int `json:"-"`
}

// CaseDef is one branch of a conditional rule.
type CaseDef struct {
	When  Condition `json:"when"`
	Value string    `json:"value"`
}

// Condition tests the expansion context. Every set field must hold.
type Condition struct {
	Var       string  `json:"var" yaml:"var"`
	Equals    *string `json:"equals,omitempty" yaml:"equals"`
	NotEquals *string `json:"not_equals,omitempty" yaml:"not_equals"`
	Matches   string  `json:"matches,omitempty" yaml:"matches"` // regular expression
	Exists    *bool   `json:"exists,omitempty" yaml:"exists"`
}

// Rule returns the definition called name with kind, if present.
func (g *Grammar) Rule(name string, kind RuleKind) (RuleDef, bool) {
	for _, r := range g.Rules {
		if r.Name == name && r.Kind == kind {
			return r, true
		}
	}
	return RuleDef{}, false
}
