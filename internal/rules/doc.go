// Package rules holds the seven rule stores and the Resolver that dispatches
// across them.
//
// Each rule kind owns an independent keyed store. The Resolver queries the
// stores in a fixed precedence order (function, conditional, sequential, range,
// template, weighted, static), so a key defined in more than one kind is
// generated by the most dynamic kind and shadowed in the others. RemoveRule
// purges a key from every store.
//
// Stores validate their payloads at definition time and return *ConfigError
// for malformed input. Generation never fails for a missing key; it reports
// ok=false and leaves the decision to the caller.
//
// Nothing in this package is safe for concurrent use.
package rules
