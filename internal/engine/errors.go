package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ExpansionError wraps a failure raised while generating a rule's value.
//
// It records where in the expansion tree the failure happened so callers can
// report the rule chain, and unwraps to the underlying cause (for example a
// *rules.FunctionError).
type ExpansionError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Rule is the rule whose generation failed.
	Rule string

	// Path is the chain of rules being expanded, outermost first.
	Path []string

	// Err is the underlying failure.
	Err error
}

// ErrorCode categorizes expansion errors.
type ErrorCode string

const (
	// ErrCodeDepthExceeded indicates the recursion bound was reached.
	ErrCodeDepthExceeded ErrorCode = "DEPTH_EXCEEDED"

	// ErrCodeFunctionFailed indicates a function rule's callback failed.
	ErrCodeFunctionFailed ErrorCode = "FUNCTION_FAILED"

	// ErrCodeGenerationFailed covers any other store failure.
	ErrCodeGenerationFailed ErrorCode = "GENERATION_FAILED"
)

// Error implements the error interface.
func (e *ExpansionError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("%s: %v (path=%s)", e.Code, e.Err, strings.Join(e.Path, " → "))
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

// Unwrap returns the underlying failure.
func (e *ExpansionError) Unwrap() error {
	return e.Err
}

// DepthExceededError is returned when expansion reaches the configured maximum
// depth with placeholders still unresolved. It carries the limit so callers can
// decide whether to raise it or fix the grammar.
type DepthExceededError struct {
	MaxDepth int      // the configured ceiling
	Rule     string   // innermost rule being expanded, empty at top level
	Text     string   // the text that could not be expanded further
	Path     []string // rule chain, outermost first
}

// Error implements the error interface.
func (e *DepthExceededError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("%s: maximum expansion depth %d exceeded while expanding %q",
			ErrCodeDepthExceeded, e.MaxDepth, e.Rule)
	}
	return fmt.Sprintf("%s: maximum expansion depth %d exceeded", ErrCodeDepthExceeded, e.MaxDepth)
}

// IsDepthExceeded reports whether err is (or wraps) a *DepthExceededError.
func IsDepthExceeded(err error) bool {
	var de *DepthExceededError
	return errors.As(err, &de)
}

// IsFunctionFailure reports whether err is an ExpansionError raised by a
// failing function rule.
func IsFunctionFailure(err error) bool {
	var ee *ExpansionError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeFunctionFailed
	}
	return false
}
