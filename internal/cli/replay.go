package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/quill/internal/compiler"
	"github.com/roach88/quill/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// ReplayReport holds the overall replay result.
type ReplayReport struct {
	store.ReplayResult
	Deterministic bool `json:"deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay seeded generations and verify determinism",
		Long: `Re-run every seeded run in the generation log against its grammar file.

Each run is rebuilt with its recorded seed, maximum depth and modifiers and
expanded the recorded number of times. The grammar must hash to the recorded
value and every output (or error) must be byte-identical. Unseeded generations
cannot be reproduced and are counted as skipped.

Exit codes:
  0 - Every seeded run reproduced exactly
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, etc.)

Examples:
  quill replay --db ./quill.db
  quill replay --db ./quill.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)
	logger := opts.newLogger(cmd.ErrOrStderr())

	if err := requireFile(opts.Database); err != nil {
		return WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	result, err := st.Replay(ctx, regenerator(logger))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to replay generation log", err)
	}
	report := ReplayReport{ReplayResult: result, Deterministic: result.Deterministic()}

	if opts.Format == "json" {
		return outputReplayJSON(formatter, report)
	}
	return outputReplayText(formatter, report)
}

// regenerator rebuilds a recorded run from its grammar file with the run's
// recorded settings and expands its template once per recorded generation.
func regenerator(logger *slog.Logger) store.Regenerator {
	return func(ctx context.Context, run store.Run) (string, []store.Outcome, error) {
		first := run.First()
		logger.Debug("replaying run", "run_id", run.ID, "grammar", first.GrammarPath, "generations", len(run.Generations))

		g, err := compiler.LoadFile(first.GrammarPath)
		if err != nil {
			return "", nil, err
		}
		prog, err := compiler.Build(g, compiler.Overrides{
			Seed:        first.Seed,
			MaxDepth:    first.MaxDepth,
			Modifiers:   first.Modifiers,
			NoModifiers: len(first.Modifiers) == 0,
			Logger:      logger,
		})
		if err != nil {
			return "", nil, err
		}

		outcomes := make([]store.Outcome, len(run.Generations))
		for i := range outcomes {
			out, err := prog.Generate(first.Template)
			if err != nil {
				outcomes[i].Error = err.Error()
				continue
			}
			outcomes[i].Output = out
		}
		return prog.Hash, outcomes, nil
	}
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(formatter *OutputFormatter, report ReplayReport) error {
	response := CLIResponse{
		Status: "ok",
		Data:   report,
	}

	if !report.Deterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeDeterminism,
			Message: "determinism verification failed",
		}
	}

	if err := formatter.encodeResponse(response); err != nil {
		return err
	}

	if !report.Deterministic {
		// Determinism failure = exit code 1
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(formatter *OutputFormatter, report ReplayReport) error {
	w := formatter.Writer

	if report.Runs == 0 {
		fmt.Fprintf(w, "No seeded runs found in database (%d unseeded generation(s) skipped).\n", report.Skipped)
		return nil
	}

	fmt.Fprintln(w, formatter.Bold(fmt.Sprintf("Replay Summary: %d run(s), %d generation(s), %d skipped",
		report.Runs, report.Generations, report.Skipped)))
	fmt.Fprintln(w)

	for _, m := range report.Mismatches {
		label := m.RunID
		if m.GenerationID != "" {
			label = fmt.Sprintf("%s (seq %d)", m.GenerationID, m.Seq)
		}
		fmt.Fprintln(w, formatter.Fail(label+": "+m.Reason))
		if m.Expected != "" || m.Actual != "" {
			fmt.Fprintf(w, "  recorded:    %q\n", m.Expected)
			fmt.Fprintf(w, "  regenerated: %q\n", m.Actual)
		}
	}

	if report.Deterministic {
		fmt.Fprintln(w, formatter.OK("All seeded runs verified deterministic"))
		return nil
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, formatter.Fail("Determinism verification failed"))
	// Determinism failure = exit code 1
	return NewExitError(ExitFailure, "determinism verification failed")
}
