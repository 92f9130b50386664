package store

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/roach88/quill/internal/ir"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createMemoryStore creates a new in-memory store for testing.
func createMemoryStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedPtr(v int64) *int64 { return &v }

// createTestGeneration creates a seeded generation with minimal required fields.
func createTestGeneration(runID string, index int, seq int64, output string) ir.Generation {
	return ir.Generation{
		ID:            fmt.Sprintf("%s-%d", runID, index),
		RunID:         runID,
		RunIndex:      index,
		Seq:           seq,
		GrammarHash:   "test-hash",
		GrammarPath:   "grammars/test.yaml",
		Template:      "%main%",
		Seed:          seedPtr(42),
		MaxDepth:      100,
		Modifiers:     []string{"article", "capitalize"},
		Output:        output,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
}
