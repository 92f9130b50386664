// Package engine implements the quill variable expander.
//
// The engine rewrites %name% and %@name% placeholders into values produced by
// a rules.Resolver, recursing into every generated value until no placeholders
// remain.
//
// ARCHITECTURE:
//
// State is split by lifetime:
//   - Per-call scope (depth counter, expansion context) is a value passed down
//     the recursion and discarded when Expand returns. The context survives
//     into the next call only when PreserveContext is requested.
//   - Durable state (reference table, sequential cursors held by the resolver,
//     random source) lives on the Engine and changes only through generation
//     or the explicit Clear/Reset methods.
//
// Expansion Flow:
//  1. Scan the text for placeholders with a stateless regexp
//  2. %@name% reads the reference table; a miss falls through to step 3
//  3. The resolver generates a value for name (precedence order)
//  4. The value is expanded one level deeper, then recorded in the context
//     and reference table
//  5. Undefined names stay verbatim in the output
//
// TERMINATION:
//
// Depth is counted per nesting level across the whole call tree of one Expand.
// Reaching the configured maximum (DefaultMaxDepth) with placeholders still to
// resolve fails with *DepthExceededError. This is the runtime guard against
// circular grammars; FindCircularReferences is the static one.
//
// An Engine is not safe for concurrent use.
package engine
