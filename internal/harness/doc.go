// Package harness runs grammar conformance scenarios.
//
// A scenario names a grammar file, the settings to generate with, and what the
// outputs must look like. The harness builds the grammar, generates, logs every
// output to a private in-memory generation log, and checks the expectations.
//
// # Scenario Format
//
//	name: tavern_greeting
//	description: "Seeded greeting is stable"
//	grammar: grammars/tavern.yaml
//	template: "%greeting%, traveller"   # optional; defaults to the entry rule
//	seed: 42
//	count: 3
//	max_depth: 20
//	modifiers: [capitalize]            # [] disables modifiers
//	expect:
//	  outputs: ["Hello, traveller", "Hi, traveller", "Hello, traveller"]
//	  contains: ["traveller"]
//	  error: ""                         # substring of an expected failure
//	assertions:
//	  - type: one_of
//	    values: ["Hello, traveller", "Hi, traveller"]
//
// # Assertion Types
//
//   - matches: every output matches a regular expression
//   - one_of: every output is one of a fixed set
//   - distinct: at least N different outputs were produced
//   - count: a given output was produced exactly N times
//
// # Deterministic Testing
//
// Every scenario runs with a deterministic clock (testutil.DeterministicClock)
// and a fixed run ID, so seeded scenarios produce byte-identical traces
// suitable for golden comparison (see RunWithGolden and Snapshot).
//
// # Directory Layout
//
// FindScenarioFiles treats every YAML file under a directory as a scenario,
// except files under golden/ and grammars/ subdirectories, which hold golden
// snapshots and the grammars scenarios reference.
package harness
