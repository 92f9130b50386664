// Package query is a small predicate language for filtering the generation
// log, and its compiler to parameterized SQL.
//
// Predicate is a sealed interface: only the node types in this package
// implement it. Callers build a tree of Equals, Contains, IsSet, Not and And
// nodes over the fields listed in Fields, then hand it to the store, which
// compiles it with CompileWhere.
//
// COMPILATION RULES:
//   - Values are always bound as parameters, never interpolated into SQL.
//   - Field names are checked against a fixed allow-list and mapped to columns.
//   - An empty And (or a nil predicate) compiles to an always-true clause.
//
// Example:
//
//	p := query.And{Predicates: []query.Predicate{
//		query.Equals{Field: query.FieldGrammarHash, Value: hash},
//		query.Contains{Field: query.FieldOutput, Substring: "owl"},
//	}}
//	where, args, err := query.CompileWhere(p)
//	// where: "grammar_hash = ? AND instr(output, ?) > 0"
package query
