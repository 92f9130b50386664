package rules

import (
	"errors"
	"fmt"
)

// Configuration error codes (E2xx). Raised synchronously when a rule is defined.
const (
	ErrCodeEmptyKey         = "E201" // rule key is empty
	ErrCodeWeightLength     = "E202" // values and weights differ in length
	ErrCodeWeightValue      = "E203" // weight is zero, negative or not finite
	ErrCodeWeightSum        = "E204" // weights do not sum to 1.0
	ErrCodeRangeBounds      = "E205" // min > max or non-finite bound
	ErrCodeRangeStep        = "E206" // negative step, or fractional step/bounds on an int range
	ErrCodeEmptyValues      = "E207" // kind requires at least one value
	ErrCodeNilFunction      = "E208" // function rule without a callback
	ErrCodeConditionalCases = "E209" // conditional rule without cases, or more than one default
	ErrCodeMaxDepth         = "E210" // max depth below 1
)

// ConfigError reports a malformed rule definition or engine setting.
type ConfigError struct {
	Code    string
	Rule    string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("%s: rule %q: %s", e.Code, e.Rule, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func configErrorf(code, rule, format string, args ...any) *ConfigError {
	return &ConfigError{Code: code, Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// NewConfigError builds a ConfigError for settings validated outside this package.
func NewConfigError(code, rule, message string) *ConfigError {
	return &ConfigError{Code: code, Rule: rule, Message: message}
}

// IsConfigError reports whether err wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// FunctionError wraps a failure from a caller-supplied generator callback.
// The original error is preserved for errors.Is / errors.As.
type FunctionError struct {
	Rule string
	Err  error
}

// Error implements the error interface.
func (e *FunctionError) Error() string {
	return fmt.Sprintf("function rule %q failed: %v", e.Rule, e.Err)
}

// Unwrap returns the callback's error.
func (e *FunctionError) Unwrap() error {
	return e.Err
}

// IsFunctionError reports whether err wraps a *FunctionError.
func IsFunctionError(err error) bool {
	var fe *FunctionError
	return errors.As(err, &fe)
}
