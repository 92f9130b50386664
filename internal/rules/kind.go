package rules

import (
	"fmt"
	"slices"
)

// Kind identifies one of the seven rule variants.
type Kind int

const (
	KindStatic Kind = iota
	KindFunction
	KindWeighted
	KindConditional
	KindSequential
	KindRange
	KindTemplate
)

// precedence is the order in which the Resolver consults stores. Earlier kinds
// shadow later ones when a key is defined more than once.
var precedence = []Kind{
	KindFunction,
	KindConditional,
	KindSequential,
	KindRange,
	KindTemplate,
	KindWeighted,
	KindStatic,
}

// Precedence returns a copy of the store lookup order, highest first.
func Precedence() []Kind {
	return slices.Clone(precedence)
}

var kindNames = map[Kind]string{
	KindStatic:      "static",
	KindFunction:    "function",
	KindWeighted:    "weighted",
	KindConditional: "conditional",
	KindSequential:  "sequential",
	KindRange:       "range",
	KindTemplate:    "template",
}

// String returns the lowercase kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown rule kind %q", name)
}
