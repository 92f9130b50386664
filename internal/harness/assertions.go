package harness

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the outputs to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Outputs  []string // Every output, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nOutputs:\n")
	for i, out := range e.Outputs {
		fmt.Fprintf(&buf, "  [%d] %q\n", i, out)
	}

	return buf.String()
}

// assertMatches checks that every output matches the pattern.
func assertMatches(outputs []string, a Assertion) error {
	re, err := regexp.Compile(a.Pattern)
	if err != nil {
		return fmt.Errorf("matches: invalid pattern: %w", err)
	}
	for i, out := range outputs {
		if !re.MatchString(out) {
			return &AssertionError{
				Type:     AssertMatches,
				Expected: fmt.Sprintf("every output matches /%s/", a.Pattern),
				Actual:   fmt.Sprintf("output %d is %q", i, out),
				Outputs:  outputs,
			}
		}
	}
	return nil
}

// assertOneOf checks that every output is drawn from the allowed values.
func assertOneOf(outputs []string, a Assertion) error {
	for i, out := range outputs {
		if !slices.Contains(a.Values, out) {
			return &AssertionError{
				Type:     AssertOneOf,
				Expected: fmt.Sprintf("every output in %q", a.Values),
				Actual:   fmt.Sprintf("output %d is %q", i, out),
				Outputs:  outputs,
			}
		}
	}
	return nil
}

// assertDistinct checks that at least Count different outputs were produced.
func assertDistinct(outputs []string, a Assertion) error {
	seen := make(map[string]bool, len(outputs))
	for _, out := range outputs {
		seen[out] = true
	}
	if len(seen) < a.Count {
		return &AssertionError{
			Type:     AssertDistinct,
			Expected: fmt.Sprintf("at least %d distinct outputs", a.Count),
			Actual:   fmt.Sprintf("%d distinct", len(seen)),
			Outputs:  outputs,
		}
	}
	return nil
}

// assertCount checks that Value appears exactly Count times.
func assertCount(outputs []string, a Assertion) error {
	n := 0
	for _, out := range outputs {
		if out == a.Value {
			n++
		}
	}
	if n != a.Count {
		return &AssertionError{
			Type:     AssertCount,
			Expected: fmt.Sprintf("%q exactly %d times", a.Value, a.Count),
			Actual:   fmt.Sprintf("%d times", n),
			Outputs:  outputs,
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result's outputs.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertMatches:
			err = assertMatches(result.Outputs, assertion)
		case AssertOneOf:
			err = assertOneOf(result.Outputs, assertion)
		case AssertDistinct:
			err = assertDistinct(result.Outputs, assertion)
		case AssertCount:
			err = assertCount(result.Outputs, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
