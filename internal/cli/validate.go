package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/quill/internal/compiler"
	"github.com/roach88/quill/internal/ir"
	"github.com/roach88/quill/internal/validator"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool                       `json:"valid"`
	Grammar     string                     `json:"grammar,omitempty"`
	GrammarHash string                     `json:"grammar_hash,omitempty"`
	Rules       int                        `json:"rules"`
	Errors      []compiler.ValidationError `json:"errors,omitempty"`
	Report      *validator.Result          `json:"report,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <grammar>",
		Short: "Validate a grammar without generating text",
		Long: `Validate a grammar file (.cue, .yaml, .yml or a CUE package directory).

Checks every rule definition (weights, ranges, conditions, modifiers), then
analyses the installed grammar for missing rules, circular references, empty
rules and rules no entry point can reach.

Exit codes:
  0 - Grammar is valid (unreachable rules and warnings are advisory)
  1 - Grammar has errors
  2 - Command error (file not found, unparseable grammar)

Examples:
  quill validate ./grammars/tavern.cue
  quill validate ./grammars/tavern.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	g, err := LoadGrammar(path)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Loaded grammar %q with %d rule(s) from %s", g.Name, len(g.Rules), path)

	if errs := compiler.Validate(g); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	prog, err := compiler.Build(g, compiler.Overrides{Logger: opts.newLogger(cmd.ErrOrStderr())})
	if err != nil {
		return outputValidateError(formatter, ErrCodeBuildFailed, err.Error(), nil)
	}

	report := validator.Validate(prog.Engine)
	result := ValidationResult{
		Valid:       report.Valid,
		Grammar:     g.Name,
		GrammarHash: prog.Hash,
		Rules:       len(g.Rules),
		Report:      report,
	}
	if formatter.Format == "json" {
		return outputValidateJSON(formatter, result)
	}
	return outputValidateText(formatter, g, result)
}

// outputLoadError reports a grammar that could not be loaded.
func outputLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		return outputValidateError(formatter, ErrCodeGeneric, err.Error(), nil)
	}
	var details any
	if line := loadErr.line(); line > 0 {
		details = map[string]int{"line": line}
	}
	return outputValidateError(formatter, loadErr.Code, loadErr.Message, details)
}

// outputValidateError outputs a single command-level error.
func outputValidateError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	// Load errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs every definition error found in a grammar.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := formatter.encodeResponse(response); err != nil {
			return err
		}
		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	w := formatter.Writer
	fmt.Fprintln(w, formatter.Fail("Validation failed"))
	fmt.Fprintln(w)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintln(w, formatter.Dim(fmt.Sprintf("line %d", err.Line)))
		}
		fmt.Fprintf(w, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}

func outputValidateJSON(formatter *OutputFormatter, result ValidationResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if !result.Valid {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeInvalidInput,
			Message: "grammar has missing, circular or empty rules",
		}
	}
	if err := formatter.encodeResponse(response); err != nil {
		return err
	}
	if !result.Valid {
		return NewExitError(ExitFailure, "grammar is invalid")
	}
	return nil
}

func outputValidateText(formatter *OutputFormatter, g *ir.Grammar, result ValidationResult) error {
	w := formatter.Writer
	report := result.Report

	if result.Valid {
		fmt.Fprintln(w, formatter.OK(fmt.Sprintf("Grammar %s valid (%d rules)", g.Name, result.Rules)))
	} else {
		fmt.Fprintln(w, formatter.Fail(fmt.Sprintf("Grammar %s invalid", g.Name)))
	}
	formatter.VerboseLog("Grammar hash: %s", result.GrammarHash)

	for _, name := range report.MissingRules {
		fmt.Fprintf(w, "  missing rule: %s\n", name)
	}
	for _, cycle := range report.CircularReferences {
		fmt.Fprintf(w, "  circular reference: %s\n", formatCycle(cycle))
	}
	for _, name := range report.EmptyRules {
		fmt.Fprintf(w, "  empty rule: %s\n", name)
	}
	for _, name := range report.UnreachableRules {
		fmt.Fprintln(w, formatter.Dim("  unreachable: "+name))
	}
	for _, warning := range report.Warnings {
		fmt.Fprintln(w, formatter.Dim("  warning: "+warning))
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "grammar is invalid")
	}
	return nil
}

func formatCycle(cycle []string) string {
	return strings.Join(cycle, " → ")
}
