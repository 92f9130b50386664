package testutil

import "github.com/roach88/quill/internal/engine"

// DefaultRunID is used when a scenario does not pin its own run ID.
const DefaultRunID = "test-run-default"

// FixedRunIDGenerator hands out the same run ID on every call.
//
// Unlike engine.FixedGenerator, which walks a list and panics when it runs out,
// this never runs dry, so a scenario can be run any number of times and still
// log byte-identical records.
//
// FixedRunIDGenerator is stateless and safe for concurrent use.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator returns a generator for id, or for DefaultRunID when
// id is empty.
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = DefaultRunID
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run ID. Implements engine.RunIDGenerator.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}

var _ engine.RunIDGenerator = (*FixedRunIDGenerator)(nil)
