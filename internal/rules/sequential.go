package rules

import "github.com/roach88/quill/internal/random"

type sequentialRule struct {
	values []string
	cycle  bool
	cursor int
}

// SequentialStore holds rules that step through their values in order.
//
// A cycling rule wraps to the first value after the last. A non-cycling rule
// holds: once the cursor passes the end it keeps returning the last value until
// Reset.
type SequentialStore struct {
	keyed[*sequentialRule]
}

// NewSequentialStore returns an empty SequentialStore.
func NewSequentialStore() *SequentialStore {
	return &SequentialStore{keyed: newKeyed[*sequentialRule]()}
}

// Kind implements Store.
func (s *SequentialStore) Kind() Kind { return KindSequential }

// Add defines key. Redefining a key resets its cursor.
func (s *SequentialStore) Add(key string, values []string, cycle bool) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if len(values) == 0 {
		return configErrorf(ErrCodeEmptyValues, key, "sequential rule requires at least one value")
	}
	s.put(key, &sequentialRule{values: append([]string(nil), values...), cycle: cycle})
	return nil
}

// Generate implements Store. It returns the value at the cursor and advances.
func (s *SequentialStore) Generate(key string, _ Context, _ *random.Source) (string, bool, error) {
	r, ok := s.get(key)
	if !ok {
		return "", false, nil
	}
	if r.cursor >= len(r.values) {
		if !r.cycle {
			return r.values[len(r.values)-1], true, nil
		}
		r.cursor = 0
	}
	v := r.values[r.cursor]
	r.cursor++
	if r.cycle && r.cursor == len(r.values) {
		r.cursor = 0
	}
	return v, true, nil
}

// Reset moves key's cursor back to the first value. It reports whether key exists.
func (s *SequentialStore) Reset(key string) bool {
	r, ok := s.get(key)
	if !ok {
		return false
	}
	r.cursor = 0
	return true
}

// ResetAll rewinds every cursor.
func (s *SequentialStore) ResetAll() {
	for _, r := range s.entries {
		r.cursor = 0
	}
}

// Position returns key's cursor.
func (s *SequentialStore) Position(key string) (int, bool) {
	r, ok := s.get(key)
	if !ok {
		return 0, false
	}
	return r.cursor, true
}

// Values returns a copy of key's values and its cycle flag.
func (s *SequentialStore) Values(key string) ([]string, bool, bool) {
	r, ok := s.get(key)
	if !ok {
		return nil, false, false
	}
	return append([]string(nil), r.values...), r.cycle, true
}

// References implements Store.
func (s *SequentialStore) References(key string) ([]string, bool) {
	r, ok := s.get(key)
	if !ok {
		return nil, true
	}
	return referencedNames(r.values...), true
}
