package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Scenario defines a grammar conformance scenario: a grammar, the settings to
// generate with, and what the generated outputs must look like.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Grammar is the path to a .cue, .yaml or .yml grammar (or a CUE package
	// directory). Relative paths are resolved against the scenario's base path.
	Grammar string `yaml:"grammar"`

	// Template to expand. Empty expands the grammar's entry rule.
	Template string `yaml:"template,omitempty"`

	// Seed overrides the grammar's seed. Scenarios that pin exact outputs
	// need one, here or in the grammar.
	Seed *int64 `yaml:"seed,omitempty"`

	// Count is the number of outputs to generate. Zero means one, or
	// len(expect.outputs) when exact outputs are given.
	Count int `yaml:"count,omitempty"`

	// MaxDepth overrides the grammar's max_depth when positive.
	MaxDepth int `yaml:"max_depth,omitempty"`

	// Modifiers overrides the grammar's pipeline. An empty list disables
	// modifiers; omitting the key keeps the grammar's setting.
	Modifiers *[]string `yaml:"modifiers,omitempty"`

	// RunID pins the run ID recorded in the trace. Defaults to a fixed ID.
	RunID string `yaml:"run_id,omitempty"`

	// Expect holds the common checks.
	Expect Expect `yaml:"expect"`

	// Assertions hold checks over the whole set of outputs.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// Path is the file the scenario was loaded from, if any.
	Path string `yaml:"-"`
}

// Expect specifies the expected result of a scenario.
type Expect struct {
	// Outputs are the exact outputs, in generation order.
	Outputs []string `yaml:"outputs,omitempty"`

	// Contains lists substrings every output must contain.
	Contains []string `yaml:"contains,omitempty"`

	// Error, when set, is a substring the generation (or build) error must
	// contain. Scenarios without it expect generation to succeed.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the generated outputs as a set.
type Assertion struct {
	// Type specifies the assertion type:
	// - "matches": every output matches Pattern
	// - "one_of": every output is one of Values
	// - "distinct": at least Count distinct outputs were produced
	// - "count": Value was produced exactly Count times
	Type string `yaml:"type"`

	// Pattern is a regular expression (used by matches).
	Pattern string `yaml:"pattern,omitempty"`

	// Values is the allowed output set (used by one_of).
	Values []string `yaml:"values,omitempty"`

	// Value is the output to count (used by count).
	Value string `yaml:"value,omitempty"`

	// Count is the expected number (used by distinct and count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertMatches  = "matches"
	AssertOneOf    = "one_of"
	AssertDistinct = "distinct"
	AssertCount    = "count"
)

// EffectiveCount returns how many outputs the scenario generates.
func (s *Scenario) EffectiveCount() int {
	switch {
	case s.Count > 0:
		return s.Count
	case len(s.Expect.Outputs) > 0:
		return len(s.Expect.Outputs)
	}
	return 1
}

// LoadScenario reads and parses a scenario YAML file, resolving the grammar
// path relative to the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file, resolving
// the grammar path relative to basePath.
//
// Returns an error if the file doesn't exist, is malformed, contains unknown
// fields (typos), or is missing required fields.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	scenario.Path = path

	if !filepath.IsAbs(scenario.Grammar) && basePath != "" {
		scenario.Grammar = filepath.Join(basePath, scenario.Grammar)
	}
	if _, err := os.Stat(scenario.Grammar); os.IsNotExist(err) {
		return nil, fmt.Errorf("invalid scenario: grammar file not found: %s", scenario.Grammar)
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML without touching the filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and consistent.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Grammar == "" {
		return fmt.Errorf("grammar is required")
	}
	if s.Count < 0 {
		return fmt.Errorf("count must not be negative, got %d", s.Count)
	}
	if s.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", s.MaxDepth)
	}
	if n := len(s.Expect.Outputs); n > 0 && s.Count > 0 && n != s.Count {
		return fmt.Errorf("expect.outputs has %d entries but count is %d", n, s.Count)
	}
	if s.Expect.Error != "" && len(s.Expect.Outputs) > 0 {
		return fmt.Errorf("expect.error and expect.outputs are mutually exclusive")
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertMatches:
		if a.Pattern == "" {
			return fmt.Errorf("assertions[%d]: matches requires pattern", index)
		}
		if _, err := regexp.Compile(a.Pattern); err != nil {
			return fmt.Errorf("assertions[%d]: invalid pattern: %w", index, err)
		}
	case AssertOneOf:
		if len(a.Values) == 0 {
			return fmt.Errorf("assertions[%d]: one_of requires values", index)
		}
	case AssertDistinct:
		if a.Count < 1 {
			return fmt.Errorf("assertions[%d]: distinct requires a positive count", index)
		}
	case AssertCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must not be negative", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
