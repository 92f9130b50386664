package rules

import (
	"regexp"
	"strings"
)

// PlaceholderPattern matches %name% and %@name%. The first submatch is the name
// including any leading @.
//
// Only stateless methods (FindAll*, ReplaceAll*) are used on it, so each scan
// starts from a clean slate.
var PlaceholderPattern = regexp.MustCompile(`%([^%]+)%`)

// BackReferencePrefix marks a placeholder that reads the reference table.
const BackReferencePrefix = "@"

// Placeholders returns the distinct placeholder names in text, in order of first
// appearance, with any @ prefix kept.
func Placeholders(text string) []string {
	matches := PlaceholderPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	var names []string
	for _, m := range matches {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		names = append(names, m[1])
	}
	return names
}

// IsBackReference reports whether a placeholder name uses the @ form.
func IsBackReference(name string) bool {
	return strings.HasPrefix(name, BackReferencePrefix) && len(name) > len(BackReferencePrefix)
}

// StripBackReference removes the @ prefix, if present.
func StripBackReference(name string) string {
	if IsBackReference(name) {
		return name[len(BackReferencePrefix):]
	}
	return name
}

// referencedNames collects placeholder names across several texts, @ prefix
// kept, deduplicated, in first-appearance order.
func referencedNames(texts ...string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, text := range texts {
		for _, name := range Placeholders(text) {
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
