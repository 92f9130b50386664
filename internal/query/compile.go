package query

import (
	"fmt"
	"strings"
)

// alwaysTrue is emitted for nil predicates and empty conjunctions.
const alwaysTrue = "1 = 1"

// CompileWhere translates p into a SQL boolean expression over the
// generations table plus its positional parameters.
func CompileWhere(p Predicate) (string, []any, error) {
	return compile(p)
}

func compile(p Predicate) (string, []any, error) {
	if p == nil {
		return alwaysTrue, nil, nil
	}

	switch pred := p.(type) {
	case Equals:
		return compileEquals(pred)
	case *Equals:
		return compileEquals(*pred)
	case Contains:
		return compileContains(pred)
	case *Contains:
		return compileContains(*pred)
	case IsSet:
		return compileIsSet(pred)
	case *IsSet:
		return compileIsSet(*pred)
	case Not:
		return compileNot(pred)
	case *Not:
		return compileNot(*pred)
	case And:
		return compileAnd(pred)
	case *And:
		return compileAnd(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func column(f Field) (string, error) {
	col, ok := columns[f]
	if !ok {
		return "", fmt.Errorf("unknown field %q", f)
	}
	return col, nil
}

func compileEquals(eq Equals) (string, []any, error) {
	col, err := column(eq.Field)
	if err != nil {
		return "", nil, err
	}
	param, err := toParam(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("field %s: %w", eq.Field, err)
	}
	return col + " = ?", []any{param}, nil
}

func compileContains(c Contains) (string, []any, error) {
	col, err := column(c.Field)
	if err != nil {
		return "", nil, err
	}
	if c.Field == FieldSeed {
		return "", nil, fmt.Errorf("field %s: substring match on a numeric field", c.Field)
	}
	// instr is case-sensitive and has no wildcard characters to escape,
	// unlike LIKE.
	return "instr(" + col + ", ?) > 0", []any{c.Substring}, nil
}

func compileIsSet(s IsSet) (string, []any, error) {
	col, err := column(s.Field)
	if err != nil {
		return "", nil, err
	}
	if emptyIsUnset[s.Field] {
		return col + " != ''", nil, nil
	}
	return col + " IS NOT NULL", nil, nil
}

func compileNot(n Not) (string, []any, error) {
	if n.Predicate == nil {
		return "", nil, fmt.Errorf("not: missing predicate")
	}
	sql, params, err := compile(n.Predicate)
	if err != nil {
		return "", nil, err
	}
	return "NOT (" + sql + ")", params, nil
}

func compileAnd(and And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return alwaysTrue, nil, nil
	}

	parts := make([]string, 0, len(and.Predicates))
	var params []any
	for _, p := range and.Predicates {
		sql, ps, err := compile(p)
		if err != nil {
			return "", nil, err
		}
		switch p.(type) {
		case And, *And:
			sql = "(" + sql + ")"
		}
		parts = append(parts, sql)
		params = append(params, ps...)
	}
	return strings.Join(parts, " AND "), params, nil
}

// toParam normalizes a literal to a driver value.
func toParam(v any) (any, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case nil:
		return nil, fmt.Errorf("nil value (use IsSet to test presence)")
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}
