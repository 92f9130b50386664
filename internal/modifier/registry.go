package modifier

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownModifier is returned when a name has no registered factory.
var ErrUnknownModifier = errors.New("unknown modifier")

// Factory constructs a fresh Modifier.
type Factory func() Modifier

// DefaultNames lists the built-ins enabled when a grammar does not choose its
// own modifiers. Title is opt-in.
var DefaultNames = []string{Whitespace, Punctuation, Article, Ordinal, Possessive, Capitalize}

// Registry maps modifier names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry holding every built-in modifier.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register(Whitespace, NewWhitespace)
	r.Register(Punctuation, NewPunctuation)
	r.Register(Article, NewArticle)
	r.Register(Ordinal, NewOrdinal)
	r.Register(Possessive, NewPossessive)
	r.Register(Capitalize, NewCapitalize)
	r.Register(Title, NewTitle)
	return r
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Lookup returns a new instance of the modifier called name.
func (r *Registry) Lookup(name string) (Modifier, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModifier, name)
	}
	return f(), nil
}

// Names returns every registered name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build returns a pipeline of the named modifiers. Unknown names fail the
// whole build.
func (r *Registry) Build(names []string) (*Pipeline, error) {
	p := NewPipeline()
	for _, name := range names {
		m, err := r.Lookup(name)
		if err != nil {
			return nil, err
		}
		p.Add(m)
	}
	return p, nil
}

// Default returns a pipeline of the DefaultNames built-ins.
func Default() *Pipeline {
	p, err := NewRegistry().Build(DefaultNames)
	if err != nil {
		panic(err) // built-ins are always registered
	}
	return p
}
