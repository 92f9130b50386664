package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/quill/internal/ir"
	"github.com/roach88/quill/internal/query"
	"github.com/roach88/quill/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	RunID    string // optional - one run only

	// Filters, combined with AND.
	Contains    string
	GrammarHash string
	Failed      bool
	Seeded      bool
}

// filter builds the log predicate for the filter flags. Nil when none is set.
func (o *HistoryOptions) filter() query.Predicate {
	var ps []query.Predicate
	if o.RunID != "" {
		ps = append(ps, query.Equals{Field: query.FieldRunID, Value: o.RunID})
	}
	if o.GrammarHash != "" {
		ps = append(ps, query.Equals{Field: query.FieldGrammarHash, Value: o.GrammarHash})
	}
	if o.Contains != "" {
		ps = append(ps, query.Contains{Field: query.FieldOutput, Substring: o.Contains})
	}
	if o.Failed {
		ps = append(ps, query.IsSet{Field: query.FieldError})
	}
	if o.Seeded {
		ps = append(ps, query.IsSet{Field: query.FieldSeed})
	}
	if len(ps) == 0 {
		return nil
	}
	return query.And{Predicates: ps}
}

// onlyRun reports whether --run is the sole filter, in which case the whole
// run is listed in run order.
func (o *HistoryOptions) onlyRun() bool {
	return o.RunID != "" && o.GrammarHash == "" && o.Contains == "" && !o.Failed && !o.Seeded
}

// HistoryResult holds the listed generations, oldest first.
type HistoryResult struct {
	Generations []ir.Generation `json:"generations"`
	Total       int             `json:"total"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded generations",
		Long: `List the most recent generations in the generation log, oldest first.

Each line shows the record's seq, its run and position in the run, and the
output (or error). --verbose adds the seed, template and grammar hash.

Filter flags narrow the listing and combine with AND; --limit then keeps the
most recent matches.

Examples:
  quill history --db ./quill.db
  quill history --db ./quill.db --limit 50
  quill history --db ./quill.db --run 0192f0c4-...
  quill history --db ./quill.db --contains owl --seeded
  quill history --db ./quill.db --failed
  quill history --db ./quill.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "number of generations to show (0 for all)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show one run only")
	cmd.Flags().StringVar(&opts.Contains, "contains", "", "only outputs containing this text")
	cmd.Flags().StringVar(&opts.GrammarHash, "grammar-hash", "", "only generations of this grammar hash")
	cmd.Flags().BoolVar(&opts.Failed, "failed", false, "only failed generations")
	cmd.Flags().BoolVar(&opts.Seeded, "seeded", false, "only seeded generations")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := requireFile(opts.Database); err != nil {
		return WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var gens []ir.Generation
	switch f := opts.filter(); {
	case opts.onlyRun():
		gens, err = st.ReadRun(ctx, opts.RunID)
	case f != nil:
		gens, err = st.QueryGenerations(ctx, f, opts.Limit)
	default:
		gens, err = st.ListGenerations(ctx, opts.Limit)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read generation log", err)
	}

	result := HistoryResult{Generations: gens, Total: len(gens)}
	formatter := opts.formatter(cmd)
	if opts.Format == "json" {
		return formatter.encodeResponse(CLIResponse{Status: "ok", Data: result})
	}
	outputHistoryText(formatter, result)
	return nil
}

// outputHistoryText outputs the listed generations as a timeline.
func outputHistoryText(formatter *OutputFormatter, result HistoryResult) {
	w := formatter.Writer

	if result.Total == 0 {
		fmt.Fprintln(w, "No generations recorded.")
		return
	}

	for _, g := range result.Generations {
		formatGeneration(w, formatter, g)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, formatter.Dim(fmt.Sprintf("%d generation(s)", result.Total)))
}

// formatGeneration formats a single generation for text output.
func formatGeneration(w io.Writer, formatter *OutputFormatter, g ir.Generation) {
	prefix := formatter.Dim(fmt.Sprintf("[%d] %s#%d", g.Seq, truncateID(g.RunID), g.RunIndex))
	if g.Error != "" {
		fmt.Fprintf(w, "  %s %s\n", prefix, formatter.Fail(g.Error))
	} else {
		fmt.Fprintf(w, "  %s %s\n", prefix, g.Output)
	}

	if !formatter.Verbose {
		return
	}
	seed := "none"
	if g.Seed != nil {
		seed = fmt.Sprintf("%d", *g.Seed)
	}
	fmt.Fprintf(w, "       Seed: %s  Template: %s\n", seed, g.Template)
	fmt.Fprintf(w, "       Grammar: %s (%s)\n", g.GrammarPath, truncateID(g.GrammarHash))
	if len(g.Modifiers) > 0 {
		fmt.Fprintf(w, "       Modifiers: %s\n", strings.Join(g.Modifiers, ", "))
	}
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}

// requireFile reports an error when path does not exist, so read-only
// commands never create an empty database by accident.
func requireFile(path string) error {
	_, err := os.Stat(path)
	return err
}
