package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/roach88/quill/internal/query"
)

func TestGetGeneration_NotFound(t *testing.T) {
	s := createMemoryStore(t)

	_, err := s.GetGeneration(context.Background(), "nope")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestListGenerations_OrderAndLimit(t *testing.T) {
	s := createMemoryStore(t)
	ctx := context.Background()

	// Written out of order; reads must come back by seq.
	for _, seq := range []int64{3, 1, 5, 2, 4} {
		g := createTestGeneration("run-1", int(seq), seq, "x")
		if err := s.WriteGeneration(ctx, g); err != nil {
			t.Fatalf("write seq %d failed: %v", seq, err)
		}
	}

	tests := []struct {
		limit int
		want  []int64
	}{
		{0, []int64{1, 2, 3, 4, 5}},
		{-1, []int64{1, 2, 3, 4, 5}},
		{2, []int64{4, 5}},
		{10, []int64{1, 2, 3, 4, 5}},
	}
	for _, tt := range tests {
		gens, err := s.ListGenerations(ctx, tt.limit)
		if err != nil {
			t.Fatalf("ListGenerations(%d) failed: %v", tt.limit, err)
		}
		var got []int64
		for _, g := range gens {
			got = append(got, g.Seq)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("limit %d: seqs = %v, want %v", tt.limit, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("limit %d: seqs = %v, want %v", tt.limit, got, tt.want)
				break
			}
		}
	}
}

func TestListGenerations_EmptyIsNotNil(t *testing.T) {
	s := createMemoryStore(t)

	gens, err := s.ListGenerations(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListGenerations failed: %v", err)
	}
	if gens == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestLastSeq(t *testing.T) {
	s := createMemoryStore(t)
	ctx := context.Background()

	for _, seq := range []int64{7, 3, 12} {
		if err := s.WriteGeneration(ctx, createTestGeneration("run", int(seq), seq, "x")); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	seq, err := s.LastSeq(ctx)
	if err != nil {
		t.Fatalf("LastSeq failed: %v", err)
	}
	if seq != 12 {
		t.Errorf("LastSeq = %d, want 12", seq)
	}
}

func TestReadRun_OrdersByIndex(t *testing.T) {
	s := createMemoryStore(t)
	ctx := context.Background()

	s.WriteGeneration(ctx, createTestGeneration("run-a", 1, 2, "second"))
	s.WriteGeneration(ctx, createTestGeneration("run-b", 0, 3, "other"))
	s.WriteGeneration(ctx, createTestGeneration("run-a", 0, 1, "first"))

	gens, err := s.ReadRun(ctx, "run-a")
	if err != nil {
		t.Fatalf("ReadRun failed: %v", err)
	}
	if len(gens) != 2 || gens[0].Output != "first" || gens[1].Output != "second" {
		t.Errorf("ReadRun = %+v", gens)
	}
}

func TestQueryGenerations(t *testing.T) {
	s := createMemoryStore(t)
	ctx := context.Background()

	gens := []struct {
		run    string
		output string
		err    string
		seeded bool
	}{
		{"run-a", "a wise owl", "", true},
		{"run-a", "", "depth exceeded", true},
		{"run-b", "an owl and a fox", "", false},
		{"run-b", "a fox", "", true},
		{"run-c", "two owls", "", true},
	}
	for i, row := range gens {
		g := createTestGeneration(row.run, i, int64(i+1), row.output)
		g.Error = row.err
		if !row.seeded {
			g.Seed = nil
		}
		if err := s.WriteGeneration(ctx, g); err != nil {
			t.Fatalf("write %d failed: %v", i, err)
		}
	}

	tests := []struct {
		name   string
		filter query.Predicate
		limit  int
		want   []int64
	}{
		{"nil filter", nil, 0, []int64{1, 2, 3, 4, 5}},
		{"contains", query.Contains{Field: query.FieldOutput, Substring: "owl"}, 0, []int64{1, 3, 5}},
		{"contains with limit keeps newest", query.Contains{Field: query.FieldOutput, Substring: "owl"}, 2, []int64{3, 5}},
		{"failed only", query.IsSet{Field: query.FieldError}, 0, []int64{2}},
		{"seeded successes", query.All(
			query.IsSet{Field: query.FieldSeed},
			query.Not{Predicate: query.IsSet{Field: query.FieldError}},
		), 0, []int64{1, 4, 5}},
		{"run and substring", query.All(
			query.Equals{Field: query.FieldRunID, Value: "run-b"},
			query.Contains{Field: query.FieldOutput, Substring: "fox"},
		), 0, []int64{3, 4}},
		{"no match", query.Equals{Field: query.FieldGrammarHash, Value: "other"}, 0, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.QueryGenerations(ctx, tt.filter, tt.limit)
			if err != nil {
				t.Fatalf("QueryGenerations failed: %v", err)
			}
			seqs := make([]int64, 0, len(got))
			for _, g := range got {
				seqs = append(seqs, g.Seq)
			}
			if fmt.Sprint(seqs) != fmt.Sprint(tt.want) {
				t.Errorf("seqs = %v, want %v", seqs, tt.want)
			}
		})
	}
}

func TestQueryGenerations_BadFilter(t *testing.T) {
	s := createMemoryStore(t)

	_, err := s.QueryGenerations(context.Background(), query.Equals{Field: "nope", Value: "x"}, 0)
	if err == nil || !strings.Contains(err.Error(), "compile filter") {
		t.Errorf("err = %v, want compile filter error", err)
	}
}
