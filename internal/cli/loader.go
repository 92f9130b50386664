package cli

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue/token"

	"github.com/roach88/quill/internal/compiler"
	"github.com/roach88/quill/internal/ir"
)

// LoadError represents an error that occurred while loading a grammar.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
	Line    int       // YAML line if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands. Grammar validation
// codes (E1xx) come from the compiler package.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeUnsupported  = "E003" // Not a .cue, .yaml or .yml grammar
	ErrCodeLoadFailed   = "E004" // Grammar could not be parsed
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeBuildFailed  = "E006" // Grammar could not be installed into an engine
	ErrCodeWriteFailed  = "E007" // File or database write error
	ErrCodeGeneration   = "E_GENERATION"
	ErrCodeDeterminism  = "E_DETERMINISM"
	ErrCodeTestFailed   = "E_TEST_FAILED"
	ErrCodeInvalidInput = "E_INVALID_INPUT"
)

// LoadGrammar reads a grammar file (or CUE package directory) and maps every
// failure to a LoadError carrying a stable code.
func LoadGrammar(path string) (*ir.Grammar, error) {
	g, err := compiler.LoadFile(path)
	if err == nil {
		return g, nil
	}

	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("grammar not found: %s", path)}
	case errors.Is(err, compiler.ErrUnsupportedFormat):
		return nil, &LoadError{Code: ErrCodeUnsupported, Message: err.Error()}
	}
	return nil, convertCompileError(err)
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeLoadFailed,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
			Line:    compileErr.Line,
		}
	}
	return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
}

// line returns the source line of a load error, or 0 when unknown.
func (e *LoadError) line() int {
	if e.Pos.IsValid() {
		return e.Pos.Line()
	}
	return e.Line
}
