// Package modifier post-processes expanded text with an ordered pipeline of
// small text filters (article agreement, punctuation spacing, capitalization).
//
// Each modifier exposes a cheap Condition pre-check and a Transform. The
// pipeline runs modifiers in descending priority; modifiers with equal priority
// run in the order they were added.
package modifier

import (
	"slices"
	"sort"
)

// Modifier is a single text filter.
type Modifier interface {
	// Name uniquely identifies the modifier within a pipeline.
	Name() string

	// Priority orders execution. Higher runs first.
	Priority() int

	// Condition reports whether Transform could change text.
	Condition(text string) bool

	// Transform returns the rewritten text.
	Transform(text string) string
}

// funcModifier adapts a pair of functions to Modifier.
type funcModifier struct {
	name      string
	priority  int
	condition func(string) bool
	transform func(string) string
}

// New builds a Modifier from functions. A nil condition always applies.
func New(name string, priority int, condition func(string) bool, transform func(string) string) Modifier {
	if condition == nil {
		condition = func(string) bool { return true }
	}
	return &funcModifier{name: name, priority: priority, condition: condition, transform: transform}
}

func (m *funcModifier) Name() string                 { return m.name }
func (m *funcModifier) Priority() int                { return m.priority }
func (m *funcModifier) Condition(text string) bool   { return m.condition(text) }
func (m *funcModifier) Transform(text string) string { return m.transform(text) }

// Pipeline applies modifiers in priority order. The zero value is an empty,
// usable pipeline. A Pipeline is not safe for concurrent mutation.
type Pipeline struct {
	mods []Modifier
}

// NewPipeline returns a pipeline holding mods, added in order.
func NewPipeline(mods ...Modifier) *Pipeline {
	p := &Pipeline{}
	for _, m := range mods {
		p.Add(m)
	}
	return p
}

// Add appends m, replacing any modifier with the same name in place.
func (p *Pipeline) Add(m Modifier) {
	for i, existing := range p.mods {
		if existing.Name() == m.Name() {
			p.mods[i] = m
			return
		}
	}
	p.mods = append(p.mods, m)
}

// Remove deletes the modifier called name and reports whether it was present.
func (p *Pipeline) Remove(name string) bool {
	i := slices.IndexFunc(p.mods, func(m Modifier) bool { return m.Name() == name })
	if i < 0 {
		return false
	}
	p.mods = slices.Delete(p.mods, i, i+1)
	return true
}

// Len returns the number of modifiers.
func (p *Pipeline) Len() int {
	return len(p.mods)
}

// Names returns modifier names in execution order.
func (p *Pipeline) Names() []string {
	ordered := p.ordered()
	names := make([]string, len(ordered))
	for i, m := range ordered {
		names[i] = m.Name()
	}
	return names
}

// Apply runs every modifier whose condition holds, highest priority first.
func (p *Pipeline) Apply(text string) string {
	for _, m := range p.ordered() {
		if m.Condition(text) {
			text = m.Transform(text)
		}
	}
	return text
}

func (p *Pipeline) ordered() []Modifier {
	out := slices.Clone(p.mods)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority() > out[j].Priority()
	})
	return out
}
