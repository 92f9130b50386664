package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/quill/internal/compiler"
	"github.com/roach88/quill/internal/ir"
	"github.com/roach88/quill/internal/store"
	"github.com/roach88/quill/internal/testutil"
)

// Harness runs one scenario against a private generation log.
type Harness struct {
	store  *store.Store
	clock  *testutil.DeterministicClock
	runIDs *testutil.FixedRunIDGenerator
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database with a deterministic clock
// and run ID, so the trace is identical on every run of a seeded scenario.
//
// Execution flow:
//  1. Load the grammar file
//  2. Build it with the scenario's overrides
//  3. Generate the requested number of outputs, stopping at the first error
//  4. Log every output and read the log back as the trace
//  5. Check expectations and assertions
//
// Run returns an error only when the scenario could not be executed at all:
// the grammar file is unreadable or the log fails. An invalid grammar is a
// generation error, so scenarios can expect one.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		clock:  testutil.NewDeterministicClock(),
		runIDs: testutil.NewFixedRunIDGenerator(scenario.RunID),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	return h.run(ctx, scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	g, err := compiler.LoadFile(scenario.Grammar)
	if err != nil {
		return nil, fmt.Errorf("failed to load grammar: %w", err)
	}

	result := NewResult()
	prog, err := compiler.Build(g, h.overrides(scenario))
	if err != nil {
		result.Error = err.Error()
		checkExpectations(scenario, result)
		return result, nil
	}
	result.GrammarHash = prog.Hash

	template := scenario.Template
	if template == "" {
		template, _ = compiler.DefaultTemplate(g)
	}

	gens := h.generate(prog, scenario, template, result)
	if err := h.store.WriteRun(ctx, gens); err != nil {
		return nil, fmt.Errorf("failed to log generations: %w", err)
	}
	if err := h.readTrace(ctx, result); err != nil {
		return nil, err
	}

	checkExpectations(scenario, result)
	return result, nil
}

func (h *Harness) overrides(s *Scenario) compiler.Overrides {
	ov := compiler.Overrides{
		Seed:     s.Seed,
		MaxDepth: s.MaxDepth,
		Logger:   h.logger,
	}
	if s.Modifiers != nil {
		ov.Modifiers = *s.Modifiers
		ov.NoModifiers = len(*s.Modifiers) == 0
	}
	return ov
}

// generate produces the scenario's outputs as log records. Every record of the
// run shares one run ID; seq comes from the harness clock.
func (h *Harness) generate(prog *compiler.Program, s *Scenario, template string, result *Result) []ir.Generation {
	runID := h.runIDs.Generate()
	maxDepth := prog.Engine.MaxDepth()

	var gens []ir.Generation
	for i := 0; i < s.EffectiveCount(); i++ {
		out, err := prog.Generate(template)

		// Get seq ONCE per record
		seq := h.clock.Next()
		gen := ir.Generation{
			ID:            fmt.Sprintf("%s-%03d", runID, i),
			RunID:         runID,
			RunIndex:      i,
			Seq:           seq,
			GrammarHash:   prog.Hash,
			GrammarPath:   s.Grammar,
			Template:      template,
			Seed:          prog.Seed,
			MaxDepth:      maxDepth,
			Modifiers:     prog.ModifierNames,
			Output:        out,
			EngineVersion: ir.EngineVersion,
			IRVersion:     ir.IRVersion,
		}
		if err != nil {
			gen.Error = err.Error()
			result.Error = gen.Error
			gens = append(gens, gen)
			break
		}
		result.Outputs = append(result.Outputs, out)
		gens = append(gens, gen)
	}
	return gens
}

func (h *Harness) readTrace(ctx context.Context, result *Result) error {
	gens, err := h.store.ListGenerations(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to read trace: %w", err)
	}
	for _, g := range gens {
		result.Trace = append(result.Trace, TraceEvent{
			Seq:      g.Seq,
			RunID:    g.RunID,
			RunIndex: g.RunIndex,
			Output:   g.Output,
			Error:    g.Error,
		})
	}
	return nil
}

// checkExpectations evaluates the expect clause and assertions, recording
// every failure on result.
func checkExpectations(s *Scenario, result *Result) {
	exp := s.Expect

	switch {
	case exp.Error != "" && result.Error == "":
		result.AddError(fmt.Sprintf("expected an error containing %q, generation succeeded", exp.Error))
	case exp.Error != "" && !strings.Contains(result.Error, exp.Error):
		result.AddError(fmt.Sprintf("expected an error containing %q, got %q", exp.Error, result.Error))
	case exp.Error == "" && result.Error != "":
		result.AddError(fmt.Sprintf("unexpected error: %s", result.Error))
	}
	if result.Error != "" {
		return
	}

	if len(exp.Outputs) > 0 {
		if len(exp.Outputs) != len(result.Outputs) {
			result.AddError(fmt.Sprintf("expected %d outputs, got %d", len(exp.Outputs), len(result.Outputs)))
		}
		for i := 0; i < len(exp.Outputs) && i < len(result.Outputs); i++ {
			if exp.Outputs[i] != result.Outputs[i] {
				result.AddError(fmt.Sprintf("output %d: expected %q, got %q", i, exp.Outputs[i], result.Outputs[i]))
			}
		}
	}

	for i, out := range result.Outputs {
		for _, sub := range exp.Contains {
			if !strings.Contains(out, sub) {
				result.AddError(fmt.Sprintf("output %d: %q does not contain %q", i, out, sub))
			}
		}
	}

	for _, msg := range EvaluateAssertions(result, s.Assertions) {
		result.AddError(msg)
	}
}
