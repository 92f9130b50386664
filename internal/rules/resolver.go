package rules

import (
	"sort"

	"github.com/roach88/quill/internal/random"
)

// Resolver is a facade over the seven stores. Lookups walk the precedence order and stop
// at the first store that defines the key.
type Resolver struct {
	static      *StaticStore
	function    *FunctionStore
	weighted    *WeightedStore
	conditional *ConditionalStore
	sequential  *SequentialStore
	ranges      *RangeStore
	template    *TemplateStore

	table map[Kind]Store
}

// NewResolver returns a Resolver with seven empty stores.
func NewResolver() *Resolver {
	r := &Resolver{
		static:      NewStaticStore(),
		function:    NewFunctionStore(),
		weighted:    NewWeightedStore(),
		conditional: NewConditionalStore(),
		sequential:  NewSequentialStore(),
		ranges:      NewRangeStore(),
		template:    NewTemplateStore(),
	}
	r.table = map[Kind]Store{
		KindStatic:      r.static,
		KindFunction:    r.function,
		KindWeighted:    r.weighted,
		KindConditional: r.conditional,
		KindSequential:  r.sequential,
		KindRange:       r.ranges,
		KindTemplate:    r.template,
	}
	return r
}

func (r *Resolver) AddStatic(key string, values []string) error {
	return r.static.Add(key, values)
}

func (r *Resolver) AddFunction(key string, fn GeneratorFunc) error {
	return r.function.Add(key, fn)
}

func (r *Resolver) AddWeighted(key string, values []string, weights []float64) error {
	return r.weighted.Add(key, values, weights)
}

func (r *Resolver) AddConditional(key string, cases []Case) error {
	return r.conditional.Add(key, cases)
}

func (r *Resolver) AddSequential(key string, values []string, cycle bool) error {
	return r.sequential.Add(key, values, cycle)
}

func (r *Resolver) AddRange(key string, rng Range) error {
	return r.ranges.Add(key, rng)
}

func (r *Resolver) AddTemplate(key, text string) error {
	return r.template.Add(key, text)
}

// Store returns the store for kind.
func (r *Resolver) Store(kind Kind) Store {
	return r.table[kind]
}

// Static exposes the static store for inspection.
func (r *Resolver) Static() *StaticStore { return r.static }

// Functions exposes the function store for inspection.
func (r *Resolver) Functions() *FunctionStore { return r.function }

// Weighted exposes the weighted store for inspection.
func (r *Resolver) Weighted() *WeightedStore { return r.weighted }

// Sequential exposes the sequential store for cursor control.
func (r *Resolver) Sequential() *SequentialStore { return r.sequential }

// Ranges exposes the range store for inspection.
func (r *Resolver) Ranges() *RangeStore { return r.ranges }

// Templates exposes the template store for inspection.
func (r *Resolver) Templates() *TemplateStore { return r.template }

// lookup returns the highest-precedence store defining key.
func (r *Resolver) lookup(key string) (Store, bool) {
	for _, kind := range precedence {
		if s := r.table[kind]; s.Has(key) {
			return s, true
		}
	}
	return nil, false
}

// HasRule reports whether any store defines key.
func (r *Resolver) HasRule(key string) bool {
	_, ok := r.lookup(key)
	return ok
}

// RuleKind returns the kind that generation would use for key.
func (r *Resolver) RuleKind(key string) (Kind, bool) {
	s, ok := r.lookup(key)
	if !ok {
		return 0, false
	}
	return s.Kind(), true
}

// KindsOf lists every kind defining key, in precedence order.
func (r *Resolver) KindsOf(key string) []Kind {
	var kinds []Kind
	for _, kind := range precedence {
		if r.table[kind].Has(key) {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// RemoveRule deletes key from every store and reports whether any held it.
func (r *Resolver) RemoveRule(key string) bool {
	removed := false
	for _, kind := range precedence {
		if r.table[kind].Remove(key) {
			removed = true
		}
	}
	return removed
}

// Clear empties every store.
func (r *Resolver) Clear() {
	for _, s := range r.table {
		s.Clear()
	}
}

// Keys returns the distinct keys across all stores, sorted.
func (r *Resolver) Keys() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, kind := range precedence {
		for _, key := range r.table[kind].Keys() {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// Size returns the number of distinct keys.
func (r *Resolver) Size() int {
	return len(r.Keys())
}

// Generate produces a value for key from the highest-precedence store defining
// it. ok is false when no store defines key or the store had nothing to offer.
func (r *Resolver) Generate(key string, ctx Context, rnd *random.Source) (string, bool, error) {
	s, found := r.lookup(key)
	if !found {
		return "", false, nil
	}
	return s.Generate(key, ctx, rnd)
}

// References returns the names key's visible rule may expand into.
func (r *Resolver) References(key string) ([]string, bool) {
	s, ok := r.lookup(key)
	if !ok {
		return nil, true
	}
	return s.References(key)
}

// Reset rewinds key's sequential cursor.
func (r *Resolver) Reset(key string) bool {
	return r.sequential.Reset(key)
}

// ResetAll rewinds every sequential cursor.
func (r *Resolver) ResetAll() {
	r.sequential.ResetAll()
}

// Duplicates maps every key defined in more than one kind to those kinds, in
// precedence order. The first kind is the one generation uses.
func (r *Resolver) Duplicates() map[string][]Kind {
	dups := make(map[string][]Kind)
	for _, key := range r.Keys() {
		if kinds := r.KindsOf(key); len(kinds) > 1 {
			dups[key] = kinds
		}
	}
	return dups
}
