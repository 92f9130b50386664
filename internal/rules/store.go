package rules

import (
	"sort"

	"github.com/roach88/quill/internal/random"
)

// Store is the common contract of every rule store.
type Store interface {
	// Kind identifies which rule variant the store holds.
	Kind() Kind

	Has(key string) bool
	Remove(key string) bool
	Clear()
	Keys() []string
	Size() int

	// Generate produces a value for key. ok is false when the key is not
	// defined here or the rule has nothing to offer (an empty static rule, a
	// conditional with no matching case and no default).
	Generate(key string, ctx Context, rnd *random.Source) (value string, ok bool, err error)

	// References lists the placeholder names in the key's body, back-references
	// keeping their @ prefix. exhaustive is false when the list could only be
	// sampled or is unknowable without invoking caller code.
	References(key string) (refs []string, exhaustive bool)
}

// keyed is the map shared by all stores. It owns the non-generating half of the
// Store contract.
type keyed[T any] struct {
	entries map[string]T
}

func newKeyed[T any]() keyed[T] {
	return keyed[T]{entries: make(map[string]T)}
}

func (k *keyed[T]) Has(key string) bool {
	_, ok := k.entries[key]
	return ok
}

func (k *keyed[T]) Remove(key string) bool {
	if _, ok := k.entries[key]; !ok {
		return false
	}
	delete(k.entries, key)
	return true
}

func (k *keyed[T]) Clear() {
	k.entries = make(map[string]T)
}

// Keys returns the defined keys sorted, so callers iterate deterministically.
func (k *keyed[T]) Keys() []string {
	keys := make([]string, 0, len(k.entries))
	for key := range k.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (k *keyed[T]) Size() int {
	return len(k.entries)
}

func (k *keyed[T]) get(key string) (T, bool) {
	v, ok := k.entries[key]
	return v, ok
}

func (k *keyed[T]) put(key string, v T) {
	k.entries[key] = v
}

func checkKey(key string) error {
	if key == "" {
		return configErrorf(ErrCodeEmptyKey, key, "rule key must not be empty")
	}
	return nil
}
