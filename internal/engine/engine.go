package engine

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/quill/internal/random"
	"github.com/roach88/quill/internal/rules"
)

// Engine expands placeholder text against a rule resolver.
//
// INVARIANTS:
//   - Every generated value is expanded before it is recorded, so the context
//     and reference table only ever hold placeholder-free text (unless the
//     value referenced an undefined rule, which stays verbatim)
//   - Depth resets to 0 at the start of every Expand call
//   - The reference table persists across calls until ClearReferences or Reset
type Engine struct {
	resolver *rules.Resolver
	rnd      *random.Source
	logger   *slog.Logger
	maxDepth int

	context    map[string]string
	references map[string]string
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMaxDepth sets the expansion depth ceiling. Values below 1 are rejected by New.
func WithMaxDepth(n int) EngineOption {
	return func(e *Engine) {
		e.maxDepth = n
	}
}

// WithRandom sets the random source shared by every rule kind.
func WithRandom(src *random.Source) EngineOption {
	return func(e *Engine) {
		if src != nil {
			e.rnd = src
		}
	}
}

// WithLogger sets the logger used for expansion tracing.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Engine over resolver. A nil resolver gets a fresh, empty one.
func New(resolver *rules.Resolver, opts ...EngineOption) (*Engine, error) {
	if resolver == nil {
		resolver = rules.NewResolver()
	}
	e := &Engine{
		resolver:   resolver,
		rnd:        random.New(),
		logger:     slog.Default(),
		maxDepth:   DefaultMaxDepth,
		context:    make(map[string]string),
		references: make(map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.maxDepth < 1 {
		return nil, rules.NewConfigError(rules.ErrCodeMaxDepth, "",
			fmt.Sprintf("max depth must be at least 1, got %d", e.maxDepth))
	}
	return e, nil
}

// ExpandOption configures a single Expand call.
type ExpandOption func(*expandConfig)

type expandConfig struct {
	preserveContext bool
}

// PreserveContext keeps the values generated by earlier Expand calls visible to
// conditional and function rules in this call.
func PreserveContext() ExpandOption {
	return func(c *expandConfig) {
		c.preserveContext = true
	}
}

// Expand replaces every placeholder in text with a generated value.
//
// Undefined names are left verbatim. A %@name% placeholder returns the value
// most recently recorded for name, or generates one if none exists yet.
//
// Errors are *DepthExceededError when recursion reaches the configured maximum
// and *ExpansionError when a rule fails to generate.
func (e *Engine) Expand(text string, opts ...ExpandOption) (string, error) {
	var cfg expandConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.preserveContext {
		e.context = make(map[string]string)
	}

	out, err := e.expand(text, scope{ctx: e.context})
	if err != nil {
		e.logger.Warn("expansion failed", "error", err)
		return "", err
	}
	return out, nil
}

// expand performs one level of substitution and recurses into each generated value.
func (e *Engine) expand(text string, sc scope) (string, error) {
	matches := rules.PlaceholderPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}
	if err := sc.checkDepth(e.maxDepth, text); err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		last = m[1]

		value, err := e.resolve(text[m[0]:m[1]], text[m[2]:m[3]], sc)
		if err != nil {
			return "", err
		}
		b.WriteString(value)
	}
	b.WriteString(text[last:])
	return b.String(), nil
}

// resolve produces the replacement for a single placeholder. raw is the full
// match, returned unchanged when no rule defines the name.
func (e *Engine) resolve(raw, name string, sc scope) (string, error) {
	key := name
	if rules.IsBackReference(name) {
		key = rules.StripBackReference(name)
		if v, ok := e.references[key]; ok {
			e.logger.Debug("back-reference hit", "rule", key, "depth", sc.depth)
			return v, nil
		}
	}

	value, ok, err := e.resolver.Generate(key, rules.NewContext(sc.ctx), e.rnd)
	if err != nil {
		return "", e.wrapGenerationError(key, sc, err)
	}
	if !ok {
		e.logger.Debug("placeholder left verbatim", "name", name, "depth", sc.depth)
		return raw, nil
	}

	expanded, err := e.expand(value, sc.enter(key))
	if err != nil {
		return "", err
	}

	sc.ctx[key] = expanded
	e.references[key] = expanded
	e.logger.Debug("resolved placeholder", "rule", key, "depth", sc.depth)
	return expanded, nil
}

func (e *Engine) wrapGenerationError(key string, sc scope, err error) error {
	code := ErrCodeGenerationFailed
	if rules.IsFunctionError(err) {
		code = ErrCodeFunctionFailed
	}
	path := make([]string, len(sc.path), len(sc.path)+1)
	copy(path, sc.path)
	return &ExpansionError{
		Code: code,
		Rule: key,
		Path: append(path, key),
		Err:  err,
	}
}

// FindVariables returns the distinct placeholder names in text, in order of
// first appearance. Back-reference names keep their @ prefix.
func (e *Engine) FindVariables(text string) []string {
	return rules.Placeholders(text)
}

// FindMissingVariables returns the names placeholders in text refer to that no
// rule defines. Back-references are never reported: an @name with nothing
// behind it is not an error.
func (e *Engine) FindMissingVariables(text string) []string {
	var missing []string
	for _, name := range rules.Placeholders(text) {
		if rules.IsBackReference(name) {
			continue
		}
		if !e.resolver.HasRule(name) && !slices.Contains(missing, name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Resolver returns the underlying rule resolver.
func (e *Engine) Resolver() *rules.Resolver { return e.resolver }

// Random returns the engine's random source.
func (e *Engine) Random() *random.Source { return e.rnd }

// MaxDepth returns the configured depth ceiling.
func (e *Engine) MaxDepth() int { return e.maxDepth }

// SetSeed switches every probabilistic rule to the deterministic stream for seed.
func (e *Engine) SetSeed(seed int64) { e.rnd.SetSeed(seed) }

// ClearSeed reverts to non-deterministic randomness.
func (e *Engine) ClearSeed() { e.rnd.ClearSeed() }

// References returns a copy of the reference table.
func (e *Engine) References() map[string]string {
	return maps.Clone(e.references)
}

// Reference returns the last value recorded for name.
func (e *Engine) Reference(name string) (string, bool) {
	v, ok := e.references[name]
	return v, ok
}

// ClearReferences empties the reference table.
func (e *Engine) ClearReferences() {
	clear(e.references)
}

// Context returns a copy of the values generated during the last Expand call
// (or calls, when PreserveContext was used).
func (e *Engine) Context() map[string]string {
	return maps.Clone(e.context)
}

// Reset clears the context, the reference table and every sequential cursor.
// Rules and the seed are kept.
func (e *Engine) Reset() {
	e.context = make(map[string]string)
	clear(e.references)
	e.resolver.ResetAll()
}
