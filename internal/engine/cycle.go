package engine

import (
	"slices"
	"strings"

	"github.com/roach88/quill/internal/rules"
)

// FindCircularReferences reports reference cycles reachable from start, or from
// every rule when start is empty. Each cycle is a chain that begins and ends
// with the same rule, e.g. [a b a], rotated so its smallest name comes first.
//
// Static, template, weighted, sequential and conditional rules are inspected
// exhaustively. Function rules are opaque: their callback is invoked once with
// an empty context and the returned candidates are scanned, so a cycle that
// only appears under some other context is not found. Callback failures count
// as no edges.
//
// Cycles here are a static warning; expansion itself is bounded by max depth.
func (e *Engine) FindCircularReferences(start string) [][]string {
	roots := e.resolver.Keys()
	if start != "" {
		if !e.resolver.HasRule(start) {
			return nil
		}
		roots = []string{start}
	}

	w := &cycleWalker{
		edges:    e.edges,
		onPath:   make(map[string]int),
		done:     make(map[string]bool),
		reported: make(map[string]bool),
	}
	for _, root := range roots {
		w.visit(root)
	}
	return w.cycles
}

// edges returns the defined rules key may expand into, in reference order.
func (e *Engine) edges(key string) []string {
	refs, exhaustive := e.resolver.References(key)
	if !exhaustive {
		refs = e.sampleFunction(key)
	}
	var out []string
	for _, ref := range refs {
		// An unset back-reference falls back to generation, so it is an edge too.
		ref = rules.StripBackReference(ref)
		if e.resolver.HasRule(ref) && !slices.Contains(out, ref) {
			out = append(out, ref)
		}
	}
	return out
}

func (e *Engine) sampleFunction(key string) []string {
	values, err := e.resolver.Functions().Sample(key)
	if err != nil {
		e.logger.Debug("function sample failed during cycle analysis", "rule", key, "error", err)
		return nil
	}
	var refs []string
	for _, v := range values {
		for _, name := range rules.Placeholders(v) {
			refs = append(refs, name)
		}
	}
	return refs
}

// cycleWalker is a depth-first search that records a cycle for every edge
// back onto the current path.
type cycleWalker struct {
	edges func(string) []string

	path     []string
	onPath   map[string]int // rule -> index in path
	done     map[string]bool
	reported map[string]bool // canonical cycle keys
	cycles   [][]string
}

func (w *cycleWalker) visit(node string) {
	if w.done[node] {
		return
	}
	w.onPath[node] = len(w.path)
	w.path = append(w.path, node)

	for _, next := range w.edges(node) {
		if idx, ok := w.onPath[next]; ok {
			w.record(w.path[idx:])
			continue
		}
		w.visit(next)
	}

	w.path = w.path[:len(w.path)-1]
	delete(w.onPath, node)
	w.done[node] = true
}

// record stores loop (without the closing repeat) once per rotation class.
func (w *cycleWalker) record(loop []string) {
	rotated := canonicalRotation(loop)
	key := strings.Join(rotated, "\x00")
	if w.reported[key] {
		return
	}
	w.reported[key] = true
	w.cycles = append(w.cycles, append(rotated, rotated[0]))
}

// canonicalRotation returns a copy of loop rotated to start at its smallest name.
func canonicalRotation(loop []string) []string {
	minIdx := 0
	for i, name := range loop {
		if name < loop[minIdx] {
			minIdx = i
		}
	}
	out := make([]string, 0, len(loop)+1)
	out = append(out, loop[minIdx:]...)
	return append(out, loop[:minIdx]...)
}
