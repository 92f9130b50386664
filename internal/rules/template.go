package rules

import "github.com/roach88/quill/internal/random"

// TemplateStore holds rules whose body is itself a template. Generate returns
// the raw text; the engine expands its placeholders one level deeper, the same
// way it expands any generated value.
type TemplateStore struct {
	keyed[string]
}

// NewTemplateStore returns an empty TemplateStore.
func NewTemplateStore() *TemplateStore {
	return &TemplateStore{keyed: newKeyed[string]()}
}

// Kind implements Store.
func (s *TemplateStore) Kind() Kind { return KindTemplate }

// Add defines key with the template text.
func (s *TemplateStore) Add(key, text string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	s.put(key, text)
	return nil
}

// Text returns key's template.
func (s *TemplateStore) Text(key string) (string, bool) {
	return s.get(key)
}

// Generate implements Store.
func (s *TemplateStore) Generate(key string, _ Context, _ *random.Source) (string, bool, error) {
	text, ok := s.get(key)
	return text, ok, nil
}

// References implements Store.
func (s *TemplateStore) References(key string) ([]string, bool) {
	text, ok := s.get(key)
	if !ok {
		return nil, true
	}
	return referencedNames(text), true
}
