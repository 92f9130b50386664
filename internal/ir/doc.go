// Package ir holds the compiled, source-independent form of a grammar.
//
// Grammar files (CUE or YAML) compile to an ir.Grammar; the compiler installs
// it into a rules.Resolver. This package imports nothing internal so every
// other package can depend on it.
//
// Key design constraints:
//   - Rule order in a Grammar carries no meaning; hashing sorts by name and kind
//   - Canonical JSON carries no floats; numeric rule fields are hashed as their
//     shortest decimal string
//   - All JSON tags use snake_case
package ir
