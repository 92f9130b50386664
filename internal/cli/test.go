package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/quill/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update   bool   // regenerate golden files
	Filter   string // scenario filter (glob pattern)
	Parallel int    // scenarios run at once
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run grammar conformance scenarios",
		Long: `Run every scenario file under a directory.

Each scenario names a grammar (relative to the scenario file), the settings to
generate with, and the outputs or error it expects. When golden/<name>.golden
exists next to a scenario, the generation trace must also match it byte for
byte. Scenarios run concurrently, each against its own in-memory log.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  quill test ./scenarios
  quill test ./scenarios --filter "tavern-*"
  quill test ./scenarios --update
  quill test ./scenarios --parallel 8 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().IntVar(&opts.Parallel, "parallel", 4, "number of scenarios to run at once")

	return cmd
}

// pendingScenario is a scenario file on its way through the run.
type pendingScenario struct {
	file     string
	scenario *harness.Scenario
	loadErr  error
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	scenarioFiles, err := harness.FindScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		var notFound *harness.ScenarioNotFoundError
		if errors.As(err, &notFound) {
			return NewExitError(ExitCommandError, notFound.Error())
		}
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	if len(scenarioFiles) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(formatter, TestResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintln(formatter.Writer, "No scenarios found.")
		return nil
	}

	pending := make([]pendingScenario, len(scenarioFiles))
	var runnable []*harness.Scenario
	for i, file := range scenarioFiles {
		s, err := harness.LoadScenario(file)
		pending[i] = pendingScenario{file: file, scenario: s, loadErr: err}
		if err == nil {
			runnable = append(runnable, s)
		}
	}
	formatter.VerboseLog("Running %d scenario(s), %d at a time", len(runnable), max(opts.Parallel, 1))

	outcomes, err := harness.RunAll(ctx, runnable, opts.Parallel)
	if err != nil {
		return WrapExitError(ExitCommandError, "scenario run interrupted", err)
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(pending)),
		Total:     len(pending),
	}
	next := 0
	for _, p := range pending {
		var sr ScenarioResult
		if p.loadErr != nil {
			sr = ScenarioResult{
				Name:   filepath.Base(p.file),
				Errors: []string{fmt.Sprintf("failed to load scenario: %v", p.loadErr)},
			}
		} else {
			sr = checkOutcome(outcomes[next], p.file, opts.Update)
			next++
		}

		reportScenario(formatter, sr)
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(formatter, result)
	}
	return outputTestText(formatter, result)
}

// checkOutcome turns a harness outcome into a scenario result, comparing (or
// with update, rewriting) the scenario's golden file.
func checkOutcome(o harness.Outcome, scenarioFile string, update bool) ScenarioResult {
	name := o.Scenario.Name
	if o.Err != nil {
		return ScenarioResult{Name: name, Errors: []string{fmt.Sprintf("execution failed: %v", o.Err)}}
	}

	if update {
		if err := updateGoldenFile(o.Scenario, o.Result, scenarioFile); err != nil {
			return ScenarioResult{Name: name, Errors: []string{fmt.Sprintf("failed to update golden file: %v", err)}}
		}
		return ScenarioResult{Name: name, Pass: o.Result.Pass, Errors: o.Result.Errors}
	}

	goldenPath := goldenFilePath(scenarioFile)
	if _, err := os.Stat(goldenPath); err == nil {
		match, err := compareWithGolden(o.Scenario, o.Result, goldenPath)
		if err != nil {
			return ScenarioResult{Name: name, Errors: []string{fmt.Sprintf("golden comparison failed: %v", err)}}
		}
		if !match {
			return ScenarioResult{
				Name:   name,
				Errors: append([]string{"trace does not match golden file (run with --update to regenerate)"}, o.Result.Errors...),
			}
		}
	}

	return ScenarioResult{Name: name, Pass: o.Result.Pass, Errors: o.Result.Errors}
}

// reportScenario prints one scenario's line in text mode.
func reportScenario(formatter *OutputFormatter, sr ScenarioResult) {
	if formatter.Format == "json" {
		return
	}
	w := formatter.Writer
	if sr.Pass {
		fmt.Fprintln(w, formatter.OK(sr.Name))
		return
	}
	fmt.Fprintln(w, formatter.Fail(sr.Name))
	for _, e := range sr.Errors {
		fmt.Fprintf(w, "  %s\n", strings.TrimRight(e, "\n"))
	}
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// updateGoldenFile writes the current trace as the golden file.
func updateGoldenFile(scenario *harness.Scenario, result *harness.Result, scenarioFile string) error {
	goldenPath := goldenFilePath(scenarioFile)

	if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}

	data, err := harness.Snapshot(scenario.Name, result)
	if err != nil {
		return fmt.Errorf("failed to marshal trace: %w", err)
	}

	if err := os.WriteFile(goldenPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// compareWithGolden compares the result trace against the golden file.
func compareWithGolden(scenario *harness.Scenario, result *harness.Result, goldenPath string) (bool, error) {
	goldenData, err := os.ReadFile(goldenPath)
	if err != nil {
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}

	currentData, err := harness.Snapshot(scenario.Name, result)
	if err != nil {
		return false, fmt.Errorf("failed to marshal current trace: %w", err)
	}

	return bytes.Equal(goldenData, currentData), nil
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(formatter *OutputFormatter, result TestResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeTestFailed,
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	if err := formatter.encodeResponse(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the test result as text.
func outputTestText(formatter *OutputFormatter, result TestResult) error {
	w := formatter.Writer

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, formatter.OK("All scenarios passed"))
	return nil
}
