package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/quill/internal/compiler"
	"github.com/roach88/quill/internal/engine"
	"github.com/roach88/quill/internal/ir"
	"github.com/roach88/quill/internal/store"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Template    string
	Seed        int64
	Count       int
	MaxDepth    int
	Modifiers   []string
	NoModifiers bool
	Database    string

	// RunIDs allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// GenerateResult is the JSON payload of a generate run.
type GenerateResult struct {
	RunID       string   `json:"run_id,omitempty"` // set when the run was recorded
	Grammar     string   `json:"grammar"`
	GrammarHash string   `json:"grammar_hash"`
	Template    string   `json:"template"`
	Seed        *int64   `json:"seed,omitempty"`
	Outputs     []string `json:"outputs"`
	Error       string   `json:"error,omitempty"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	return newGenerateCommand(&GenerateOptions{RootOptions: rootOpts})
}

func newGenerateCommand(opts *GenerateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <grammar>",
		Short: "Generate text from a grammar",
		Long: `Expand a template against a grammar and print the result.

Without --template the grammar's entry rule is expanded (the first of main,
start, story, sentence, root and origin). Flags override the grammar's options
block. With --db every output is appended to the generation log; seeded runs
can later be checked with "quill replay".

Exit codes:
  0 - Every output generated
  1 - Generation failed (maximum expansion depth, failing function) or the
      grammar has definition errors
  2 - Command error (file not found, bad flags, database error)

Examples:
  quill generate ./grammars/tavern.cue
  quill generate ./grammars/tavern.cue --seed 42 --count 5
  quill generate ./grammars/tavern.yaml -t "%greeting%, friend" --no-modifiers
  quill generate ./grammars/tavern.cue --seed 7 --db ./quill.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Template, "template", "t", "", "template to expand (default: the grammar's entry rule)")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "seed for reproducible output (overrides the grammar)")
	cmd.Flags().IntVarP(&opts.Count, "count", "n", 1, "number of outputs to generate")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "maximum expansion depth (overrides the grammar)")
	cmd.Flags().StringSliceVar(&opts.Modifiers, "modifiers", nil, "modifier pipeline, e.g. article,capitalize,title")
	cmd.Flags().BoolVar(&opts.NoModifiers, "no-modifiers", false, "print raw expansions without modifiers")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record generations in this SQLite database")
	cmd.MarkFlagsMutuallyExclusive("modifiers", "no-modifiers")

	return cmd
}

func runGenerate(opts *GenerateOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.newLogger(cmd.ErrOrStderr())

	if opts.Count < 1 {
		return outputValidateError(formatter, ErrCodeInvalidInput, fmt.Sprintf("--count must be at least 1, got %d", opts.Count), nil)
	}

	g, err := LoadGrammar(path)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	logger.Debug("grammar loaded", "path", path, "name", g.Name, "rules", len(g.Rules))

	ov := compiler.Overrides{
		MaxDepth:    opts.MaxDepth,
		Modifiers:   opts.Modifiers,
		NoModifiers: opts.NoModifiers,
		Logger:      logger,
	}
	if cmd.Flags().Changed("seed") {
		ov.Seed = &opts.Seed
	}
	prog, err := compiler.Build(g, ov)
	if err != nil {
		var buildErr *compiler.BuildError
		if errors.As(err, &buildErr) {
			return outputValidationErrors(formatter, buildErr.Errors)
		}
		return outputValidateError(formatter, ErrCodeBuildFailed, err.Error(), nil)
	}

	template := opts.Template
	if template == "" {
		t, ok := compiler.DefaultTemplate(g)
		if !ok {
			return outputValidateError(formatter, ErrCodeInvalidInput,
				"no --template given and the grammar has no entry rule (main, start, story, sentence, root, origin)", nil)
		}
		template = t
	}

	result := GenerateResult{
		Grammar:     g.Name,
		GrammarHash: prog.Hash,
		Template:    template,
		Seed:        prog.Seed,
		Outputs:     []string{},
	}
	for i := 0; i < opts.Count; i++ {
		out, err := prog.Generate(template)
		if err != nil {
			result.Error = err.Error()
			logger.Warn("generation failed", "index", i, "error", err)
			break
		}
		result.Outputs = append(result.Outputs, out)
	}

	if opts.Database != "" {
		runID, err := recordRun(cmd.Context(), opts, path, prog, result, logger)
		if err != nil {
			return outputValidateError(formatter, ErrCodeWriteFailed, err.Error(), nil)
		}
		result.RunID = runID
		formatter.VerboseLog("Recorded run %s in %s", runID, opts.Database)
	}

	return outputGenerate(formatter, result)
}

// recordRun appends the run to the generation log. The failing generation, if
// any, is recorded with its error so replay can check it fails the same way.
func recordRun(ctx context.Context, opts *GenerateOptions, path string, prog *compiler.Program, result GenerateResult, logger *slog.Logger) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve grammar path: %w", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return "", fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	last, err := st.LastSeq(ctx)
	if err != nil {
		return "", err
	}
	clock := engine.NewClockAt(last)

	runIDs := opts.RunIDs
	if runIDs == nil {
		runIDs = engine.UUIDv7Generator{}
	}
	runID := runIDs.Generate()

	records := len(result.Outputs)
	if result.Error != "" {
		records++
	}
	gens := make([]ir.Generation, records)
	for i := range gens {
		gens[i] = ir.Generation{
			ID:            fmt.Sprintf("%s-%03d", runID, i),
			RunID:         runID,
			RunIndex:      i,
			Seq:           clock.Next(),
			GrammarHash:   prog.Hash,
			GrammarPath:   absPath,
			Template:      result.Template,
			Seed:          prog.Seed,
			MaxDepth:      prog.Engine.MaxDepth(),
			Modifiers:     prog.ModifierNames,
			EngineVersion: ir.EngineVersion,
			IRVersion:     ir.IRVersion,
		}
		if i < len(result.Outputs) {
			gens[i].Output = result.Outputs[i]
		} else {
			gens[i].Error = result.Error
		}
	}

	if err := st.WriteRun(ctx, gens); err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	logger.Info("run recorded", "run_id", runID, "generations", len(gens), "first_seq", last+1)
	return runID, nil
}

func outputGenerate(formatter *OutputFormatter, result GenerateResult) error {
	if formatter.Format == "json" {
		response := CLIResponse{Status: "ok", Data: result}
		if result.Error != "" {
			response.Status = "error"
			response.Error = &CLIError{Code: ErrCodeGeneration, Message: result.Error}
		}
		if err := formatter.encodeResponse(response); err != nil {
			return err
		}
	} else {
		for _, out := range result.Outputs {
			fmt.Fprintln(formatter.Writer, out)
		}
		if result.Error != "" {
			_ = formatter.Error(ErrCodeGeneration, result.Error, nil)
		}
	}

	if result.Error != "" {
		return NewExitError(ExitFailure, "generation failed: "+result.Error)
	}
	return nil
}
