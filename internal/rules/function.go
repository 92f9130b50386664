package rules

import (
	"errors"
	"fmt"

	"github.com/roach88/quill/internal/random"
)

// GeneratorFunc produces the candidate list for a function rule at call time.
// It must not retain ctx.
type GeneratorFunc func(ctx Context) ([]string, error)

// errNoCandidates is wrapped in a FunctionError when a callback returns nothing.
var errNoCandidates = errors.New("callback returned no candidates")

// FunctionStore holds rules backed by caller-supplied callbacks. Callbacks are
// invoked on every generation; results are never cached.
type FunctionStore struct {
	keyed[GeneratorFunc]
}

// NewFunctionStore returns an empty FunctionStore.
func NewFunctionStore() *FunctionStore {
	return &FunctionStore{keyed: newKeyed[GeneratorFunc]()}
}

// Kind implements Store.
func (s *FunctionStore) Kind() Kind { return KindFunction }

// Add defines key with fn.
func (s *FunctionStore) Add(key string, fn GeneratorFunc) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if fn == nil {
		return configErrorf(ErrCodeNilFunction, key, "function rule requires a callback")
	}
	s.put(key, fn)
	return nil
}

// Generate implements Store. A callback error, panic, or empty result becomes a
// *FunctionError.
func (s *FunctionStore) Generate(key string, ctx Context, rnd *random.Source) (string, bool, error) {
	fn, ok := s.get(key)
	if !ok {
		return "", false, nil
	}
	values, err := invoke(fn, ctx)
	if err != nil {
		return "", false, &FunctionError{Rule: key, Err: err}
	}
	if len(values) == 0 {
		return "", false, &FunctionError{Rule: key, Err: errNoCandidates}
	}
	v, err := rnd.Choice(values)
	if err != nil {
		return "", false, &FunctionError{Rule: key, Err: err}
	}
	return v, true, nil
}

// Sample invokes key's callback once with an empty context. It is used by
// static analysis; errors are reported, not wrapped.
func (s *FunctionStore) Sample(key string) ([]string, error) {
	fn, ok := s.get(key)
	if !ok {
		return nil, nil
	}
	return invoke(fn, NewContext(nil))
}

// References implements Store. Function bodies are opaque without invoking them.
func (s *FunctionStore) References(key string) ([]string, bool) {
	return nil, false
}

func invoke(fn GeneratorFunc, ctx Context) (values []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			values = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}
