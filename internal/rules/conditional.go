package rules

import "github.com/roach88/quill/internal/random"

// Predicate decides whether a conditional case applies to the current expansion.
type Predicate func(ctx Context) bool

// Case is one entry of a conditional rule. A Case with a nil When is the
// default, used only when no predicate matches.
type Case struct {
	When  Predicate
	Value string
}

// Default builds the fallback Case.
func Default(value string) Case {
	return Case{Value: value}
}

// When builds a Case guarded by p.
func When(p Predicate, value string) Case {
	return Case{When: p, Value: value}
}

// Equals is a Predicate matching when name was generated with exactly value.
func Equals(name, value string) Predicate {
	return func(ctx Context) bool {
		v, ok := ctx.Get(name)
		return ok && v == value
	}
}

// Generated is a Predicate matching when name has a value in the context.
func Generated(name string) Predicate {
	return func(ctx Context) bool {
		return ctx.Has(name)
	}
}

// ConditionalStore holds rules whose value depends on the expansion context.
type ConditionalStore struct {
	keyed[[]Case]
}

// NewConditionalStore returns an empty ConditionalStore.
func NewConditionalStore() *ConditionalStore {
	return &ConditionalStore{keyed: newKeyed[[]Case]()}
}

// Kind implements Store.
func (s *ConditionalStore) Kind() Kind { return KindConditional }

// Add defines key with cases scanned in order. At most one default is allowed.
func (s *ConditionalStore) Add(key string, cases []Case) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if len(cases) == 0 {
		return configErrorf(ErrCodeConditionalCases, key, "conditional rule requires at least one case")
	}
	defaults := 0
	for _, c := range cases {
		if c.When == nil {
			defaults++
		}
	}
	if defaults > 1 {
		return configErrorf(ErrCodeConditionalCases, key, "conditional rule has %d defaults, at most one allowed", defaults)
	}
	s.put(key, append([]Case(nil), cases...))
	return nil
}

// Generate implements Store. The first matching predicate wins; otherwise the
// default case, if any.
func (s *ConditionalStore) Generate(key string, ctx Context, _ *random.Source) (string, bool, error) {
	cases, ok := s.get(key)
	if !ok {
		return "", false, nil
	}
	var fallback *Case
	for i := range cases {
		c := &cases[i]
		if c.When == nil {
			if fallback == nil {
				fallback = c
			}
			continue
		}
		if c.When(ctx) {
			return c.Value, true, nil
		}
	}
	if fallback != nil {
		return fallback.Value, true, nil
	}
	return "", false, nil
}

// References implements Store. Every case value is inspected, whichever
// predicate would select it.
func (s *ConditionalStore) References(key string) ([]string, bool) {
	cases, ok := s.get(key)
	if !ok {
		return nil, true
	}
	values := make([]string, len(cases))
	for i, c := range cases {
		values[i] = c.Value
	}
	return referencedNames(values...), true
}
