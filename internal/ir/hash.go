package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Domain prefixes for content hashes. The version suffix allows the algorithm
// to change without colliding with old hashes.
const (
	DomainGrammar = "quill/grammar/v1"
	DomainOutput  = "quill/output/v1"
)

// hashWithDomain computes SHA256(domain || 0x00 || data) as lowercase hex.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// GrammarHash returns the content hash of g. Two grammars hash equally when
// they would install the same rules with the same options, regardless of rule
// order or source format. The grammar's Name is not part of the hash.
func GrammarHash(g *Grammar) (string, error) {
	canonical, err := MarshalCanonical(grammarValue(g))
	if err != nil {
		return "", fmt.Errorf("GrammarHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainGrammar, canonical), nil
}

// MustGrammarHash is like GrammarHash but panics on error.
// Use only in tests.
func MustGrammarHash(g *Grammar) string {
	h, err := GrammarHash(g)
	if err != nil {
		panic(err)
	}
	return h
}

// OutputHash returns the content hash of a generated text. NFC normalization
// applies, so canonically equivalent outputs hash equally.
func OutputHash(output string) string {
	canonical, err := MarshalCanonical(IRString(output))
	if err != nil {
		// strings always marshal
		panic(err)
	}
	return hashWithDomain(DomainOutput, canonical)
}

func grammarValue(g *Grammar) IRObject {
	opts := IRObject{
		"max_depth":        IRInt(g.Options.MaxDepth),
		"preserve_context": IRBool(g.Options.PreserveContext),
	}
	if g.Options.Seed != nil {
		opts["seed"] = IRInt(*g.Options.Seed)
	}
	if g.Options.Modifiers != nil {
		opts["modifiers"] = Strings(g.Options.Modifiers)
	}

	sorted := slices.Clone(g.Rules)
	slices.SortStableFunc(sorted, func(a, b RuleDef) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(string(a.Kind), string(b.Kind))
	})
	rules := make(IRArray, len(sorted))
	for i, r := range sorted {
		rules[i] = ruleValue(r)
	}

	return IRObject{
		"ir_version": IRString(IRVersion),
		"options":    opts,
		"rules":      rules,
	}
}

func ruleValue(r RuleDef) IRObject {
	obj := IRObject{
		"name": IRString(r.Name),
		"kind": IRString(r.Kind),
	}
	switch r.Kind {
	case KindStatic:
		obj["values"] = Strings(r.Values)
	case KindWeighted:
		obj["values"] = Strings(r.Values)
		weights := make(IRArray, len(r.Weights))
		for i, w := range r.Weights {
			weights[i] = formatFloat(w)
		}
		obj["weights"] = weights
	case KindSequential:
		obj["values"] = Strings(r.Values)
		obj["cycle"] = IRBool(r.Cycle)
	case KindConditional:
		cases := make(IRArray, len(r.Cases))
		for i, c := range r.Cases {
			cases[i] = IRObject{"when": conditionValue(c.When), "value": IRString(c.Value)}
		}
		obj["cases"] = cases
		if r.Default != nil {
			obj["default"] = IRString(*r.Default)
		}
	case KindRange:
		obj["min"] = formatFloat(r.Min)
		obj["max"] = formatFloat(r.Max)
		obj["step"] = formatFloat(r.Step)
		obj["number_type"] = IRString(r.NumberType)
		obj["precision"] = IRInt(r.Precision)
	case KindTemplate:
		obj["template"] = IRString(r.Template)
	}
	return obj
}

func conditionValue(c Condition) IRObject {
	obj := IRObject{"var": IRString(c.Var)}
	if c.Equals != nil {
		obj["equals"] = IRString(*c.Equals)
	}
	if c.NotEquals != nil {
		obj["not_equals"] = IRString(*c.NotEquals)
	}
	if c.Matches != "" {
		obj["matches"] = IRString(c.Matches)
	}
	if c.Exists != nil {
		obj["exists"] = IRBool(*c.Exists)
	}
	return obj
}

// formatFloat renders f as its shortest round-tripping decimal string.
func formatFloat(f float64) IRString {
	return IRString(strconv.FormatFloat(f, 'g', -1, 64))
}
