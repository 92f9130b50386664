package query

// Field names a filterable attribute of a recorded generation.
type Field string

const (
	FieldRunID       Field = "run_id"
	FieldGrammarHash Field = "grammar_hash"
	FieldGrammarPath Field = "grammar_path"
	FieldTemplate    Field = "template"
	FieldSeed        Field = "seed"
	FieldOutput      Field = "output"
	FieldError       Field = "error"
)

// columns maps each Field to its column in the generations table. Anything
// not listed here is rejected at compile time.
var columns = map[Field]string{
	FieldRunID:       "run_id",
	FieldGrammarHash: "grammar_hash",
	FieldGrammarPath: "grammar_path",
	FieldTemplate:    "template",
	FieldSeed:        "seed",
	FieldOutput:      "output",
	FieldError:       "error",
}

// emptyIsUnset lists text fields whose zero value means "not recorded".
// Seed is nullable instead.
var emptyIsUnset = map[Field]bool{
	FieldOutput: true,
	FieldError:  true,
}

// Predicate is a boolean condition over one generation.
//
// The marker method keeps the set of node types closed.
type Predicate interface {
	predicateNode()
}

// Equals holds when Field equals Value exactly. Value must be a string or an
// integer type.
type Equals struct {
	Field Field
	Value any
}

func (Equals) predicateNode() {}

// Contains holds when Field contains Substring. Matching is case-sensitive.
type Contains struct {
	Field     Field
	Substring string
}

func (Contains) predicateNode() {}

// IsSet holds when Field carries a value: non-NULL for seed, non-empty for
// output and error.
type IsSet struct {
	Field Field
}

func (IsSet) predicateNode() {}

// Not negates Predicate.
type Not struct {
	Predicate Predicate
}

func (Not) predicateNode() {}

// And holds when every predicate holds. An empty And is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// All is shorthand for And over ps, skipping nil entries.
func All(ps ...Predicate) Predicate {
	kept := make([]Predicate, 0, len(ps))
	for _, p := range ps {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return And{Predicates: kept}
}
