package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/quill/internal/ir"
)

// marshalModifiers converts a modifier pipeline to canonical JSON TEXT.
// A nil list is stored as [] since the stored list is always the effective one.
func marshalModifiers(names []string) (string, error) {
	data, err := ir.MarshalCanonical(ir.Strings(names))
	if err != nil {
		return "", fmt.Errorf("marshal modifiers: %w", err)
	}
	return string(data), nil
}

// unmarshalModifiers parses stored modifier JSON. The result is never nil.
func unmarshalModifiers(data string) ([]string, error) {
	names := []string{}
	if data == "" {
		return names, nil
	}
	if err := json.Unmarshal([]byte(data), &names); err != nil {
		return nil, fmt.Errorf("unmarshal modifiers: %w", err)
	}
	return names, nil
}

func nullableSeed(seed *int64) sql.NullInt64 {
	if seed == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *seed, Valid: true}
}

func seedFromNull(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
