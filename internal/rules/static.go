package rules

import (
	"strings"

	"github.com/roach88/quill/internal/random"
)

// StaticStore holds rules that pick uniformly from a fixed list.
type StaticStore struct {
	keyed[[]string]
}

// NewStaticStore returns an empty StaticStore.
func NewStaticStore() *StaticStore {
	return &StaticStore{keyed: newKeyed[[]string]()}
}

// Kind implements Store.
func (s *StaticStore) Kind() Kind { return KindStatic }

// Add defines key with the given candidates. An empty list is accepted so that
// grammars can be loaded and then diagnosed by the validator.
func (s *StaticStore) Add(key string, values []string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	s.put(key, append([]string(nil), values...))
	return nil
}

// Values returns a copy of key's candidates.
func (s *StaticStore) Values(key string) ([]string, bool) {
	v, ok := s.get(key)
	if !ok {
		return nil, false
	}
	return append([]string(nil), v...), true
}

// IsEmpty reports whether key has no candidates or only blank ones.
func (s *StaticStore) IsEmpty(key string) bool {
	values, ok := s.get(key)
	if !ok {
		return false
	}
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Generate implements Store.
func (s *StaticStore) Generate(key string, _ Context, rnd *random.Source) (string, bool, error) {
	values, ok := s.get(key)
	if !ok || len(values) == 0 {
		return "", false, nil
	}
	v, err := rnd.Choice(values)
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// References implements Store. Static rules are fully inspectable.
func (s *StaticStore) References(key string) ([]string, bool) {
	values, ok := s.get(key)
	if !ok {
		return nil, true
	}
	return referencedNames(values...), true
}
