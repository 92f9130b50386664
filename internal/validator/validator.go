// Package validator statically checks a grammar for dangling references, empty
// rules, reference cycles and rules nothing can reach.
//
// Validation never generates text (apart from sampling function rules during
// cycle analysis, see engine.FindCircularReferences) and never mutates the
// engine's durable state.
package validator

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/roach88/quill/internal/engine"
	"github.com/roach88/quill/internal/rules"
)

// EntryPointPattern matches rule names treated as roots. Entry points are never
// reported as unreachable.
var EntryPointPattern = regexp.MustCompile(`^(main|start|story|sentence|root|origin)([_-].*)?$`)

// Result is a snapshot of one validation run.
//
// Valid is true when there are no missing rules, no cycles and no empty rules.
// Unreachable rules and warnings are advisory.
type Result struct {
	Valid              bool       `json:"valid"`
	MissingRules       []string   `json:"missing_rules"`
	CircularReferences [][]string `json:"circular_references"`
	EmptyRules         []string   `json:"empty_rules"`
	UnreachableRules   []string   `json:"unreachable_rules"`
	Warnings           []string   `json:"warnings"`
}

// Validate analyses every rule visible through eng's resolver.
func Validate(eng *engine.Engine) *Result {
	res := eng.Resolver()
	keys := res.Keys()

	missing := make(map[string]bool)
	referenced := make(map[string]bool)
	var empty, opaque []string

	for _, key := range keys {
		kind, _ := res.RuleKind(key)
		if kind == rules.KindStatic && res.Static().IsEmpty(key) {
			empty = append(empty, key)
		}

		refs, exhaustive := res.References(key)
		if !exhaustive {
			opaque = append(opaque, key)
			continue
		}
		for _, ref := range refs {
			backRef := rules.IsBackReference(ref)
			ref = rules.StripBackReference(ref)
			if !res.HasRule(ref) {
				if !backRef {
					missing[ref] = true
				}
				continue
			}
			if ref != key {
				referenced[ref] = true
			}
		}
	}

	var unreachable []string
	for _, key := range keys {
		if !referenced[key] && !IsEntryPoint(key) {
			unreachable = append(unreachable, key)
		}
	}

	cycles := eng.FindCircularReferences("")
	if cycles == nil {
		cycles = [][]string{}
	}

	r := &Result{
		MissingRules:       sortedKeys(missing),
		CircularReferences: cycles,
		EmptyRules:         nonNil(empty),
		UnreachableRules:   nonNil(unreachable),
	}
	r.Warnings = nonNil(warnings(res, keys, r.MissingRules, opaque))
	r.Valid = len(r.MissingRules) == 0 && len(r.CircularReferences) == 0 && len(r.EmptyRules) == 0
	return r
}

// IsEntryPoint reports whether name matches EntryPointPattern.
func IsEntryPoint(name string) bool {
	return EntryPointPattern.MatchString(name)
}

func warnings(res *rules.Resolver, keys, missing, opaque []string) []string {
	var out []string

	dups := res.Duplicates()
	for _, key := range keys {
		kinds, ok := dups[key]
		if !ok {
			continue
		}
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = k.String()
		}
		out = append(out, fmt.Sprintf("rule %q is defined as %s; only the %s definition is used",
			key, strings.Join(names, ", "), names[0]))
	}

	for _, name := range missing {
		if s := Suggest(name, keys); s != "" {
			out = append(out, fmt.Sprintf("missing rule %q: did you mean %q?", name, s))
		}
	}

	for _, key := range opaque {
		out = append(out, fmt.Sprintf("function rule %q is opaque; its references were not checked", key))
	}
	return out
}

// Suggest returns the defined name closest to missing, or "" when nothing is
// close. A candidate qualifies when either name fuzzy-matches the other; ties
// on edit distance go to the alphabetically first name.
func Suggest(missing string, defined []string) string {
	ranks := fuzzy.RankFindFold(missing, defined)
	for _, cand := range defined {
		if fuzzy.MatchFold(cand, missing) {
			ranks = append(ranks, fuzzy.Rank{
				Source:   cand,
				Target:   cand,
				Distance: fuzzy.LevenshteinDistance(strings.ToLower(cand), strings.ToLower(missing)),
			})
		}
	}
	if len(ranks) == 0 {
		return ""
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].Target < ranks[j].Target
	})
	return ranks[0].Target
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
