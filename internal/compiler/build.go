package compiler

import (
	"fmt"
	"log/slog"

	"github.com/roach88/quill/internal/engine"
	"github.com/roach88/quill/internal/ir"
	"github.com/roach88/quill/internal/modifier"
	"github.com/roach88/quill/internal/random"
	"github.com/roach88/quill/internal/rules"
)

// entryPoints are tried in order when no template is given.
var entryPoints = []string{"main", "start", "story", "sentence", "root", "origin"}

// Overrides replace grammar options. Zero values keep the grammar's setting.
type Overrides struct {
	Seed        *int64
	MaxDepth    int
	Modifiers   []string // nil keeps the grammar's list
	NoModifiers bool
	Logger      *slog.Logger
}

// Program is a grammar installed into a ready-to-use engine.
type Program struct {
	Grammar   *ir.Grammar
	Hash      string
	Engine    *engine.Engine
	Modifiers *modifier.Pipeline

	// Seed is the effective seed, nil when generation is non-deterministic.
	Seed *int64
	// ModifierNames is the effective pipeline, in execution order.
	ModifierNames []string

	preserveContext bool
}

// Build validates g, installs it into a fresh resolver and configures an engine
// and modifier pipeline from the grammar options and ov.
//
// Validation failures are returned as a *BuildError listing every problem.
func Build(g *ir.Grammar, ov Overrides) (*Program, error) {
	if errs := Validate(g); len(errs) > 0 {
		return nil, &BuildError{Errors: errs}
	}

	hash, err := ir.GrammarHash(g)
	if err != nil {
		return nil, err
	}

	r := rules.NewResolver()
	if err := Install(g, r); err != nil {
		return nil, err
	}

	maxDepth := engine.DefaultMaxDepth
	if g.Options.MaxDepth > 0 {
		maxDepth = g.Options.MaxDepth
	}
	if ov.MaxDepth != 0 {
		maxDepth = ov.MaxDepth
	}

	seed := g.Options.Seed
	if ov.Seed != nil {
		seed = ov.Seed
	}
	src := random.New()
	if seed != nil {
		src.SetSeed(*seed)
	}

	opts := []engine.EngineOption{engine.WithMaxDepth(maxDepth), engine.WithRandom(src)}
	if ov.Logger != nil {
		opts = append(opts, engine.WithLogger(ov.Logger))
	}
	eng, err := engine.New(r, opts...)
	if err != nil {
		return nil, err
	}

	pipeline, err := buildPipeline(g.Options.Modifiers, ov)
	if err != nil {
		return nil, err
	}

	return &Program{
		Grammar:         g,
		Hash:            hash,
		Engine:          eng,
		Modifiers:       pipeline,
		Seed:            seed,
		ModifierNames:   pipeline.Names(),
		preserveContext: g.Options.PreserveContext,
	}, nil
}

func buildPipeline(fromGrammar []string, ov Overrides) (*modifier.Pipeline, error) {
	if ov.NoModifiers {
		return modifier.NewPipeline(), nil
	}
	names := fromGrammar
	if ov.Modifiers != nil {
		names = ov.Modifiers
	}
	if names == nil {
		return modifier.Default(), nil
	}
	return modifier.NewRegistry().Build(names)
}

// DefaultTemplate returns the placeholder for the grammar's entry rule: the
// first of main, start, story, sentence, root and origin that is defined.
func DefaultTemplate(g *ir.Grammar) (string, bool) {
	for _, name := range entryPoints {
		for _, def := range g.Rules {
			if def.Name == name {
				return "%" + name + "%", true
			}
		}
	}
	return "", false
}

// Generate expands template and runs the modifier pipeline over the result.
// An empty template expands the grammar's entry rule.
func (p *Program) Generate(template string) (string, error) {
	if template == "" {
		t, ok := DefaultTemplate(p.Grammar)
		if !ok {
			return "", fmt.Errorf("no template given and grammar has no entry rule (%v)", entryPoints)
		}
		template = t
	}

	var opts []engine.ExpandOption
	if p.preserveContext {
		opts = append(opts, engine.PreserveContext())
	}
	out, err := p.Engine.Expand(template, opts...)
	if err != nil {
		return "", err
	}
	return p.Modifiers.Apply(out), nil
}

// BuildError collects the validation errors that stopped a Build.
type BuildError struct {
	Errors []ValidationError
}

func (e *BuildError) Error() string {
	if len(e.Errors) == 1 {
		return "invalid grammar: " + e.Errors[0].Error()
	}
	return fmt.Sprintf("invalid grammar: %d problems, first: %s", len(e.Errors), e.Errors[0].Error())
}
