package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/quill/internal/ir"
	"github.com/roach88/quill/internal/query"
)

const generationColumns = `id, run_id, run_index, seq, grammar_hash, grammar_path, template, seed,
		max_depth, modifiers, output, error, engine_version, ir_version`

// GetGeneration retrieves a single generation by ID.
// Returns an error wrapping sql.ErrNoRows if not found.
func (s *Store) GetGeneration(ctx context.Context, id string) (ir.Generation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+generationColumns+`
		FROM generations
		WHERE id = ?
	`, id)

	g, err := scanGeneration(row)
	if err != nil {
		return ir.Generation{}, fmt.Errorf("get generation %s: %w", id, err)
	}
	return g, nil
}

// ListGenerations returns the most recent limit generations, oldest first.
// A limit of zero or less returns the whole log.
//
// Returns an empty slice (not nil) when the log is empty.
func (s *Store) ListGenerations(ctx context.Context, limit int) ([]ir.Generation, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+generationColumns+` FROM (
			SELECT * FROM generations
			ORDER BY seq DESC
			LIMIT ?
		)
		ORDER BY seq ASC
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	return collectGenerations(rows)
}

// QueryGenerations returns the most recent limit generations matching filter,
// oldest first. A nil filter matches everything; limit behaves as in
// ListGenerations.
func (s *Store) QueryGenerations(ctx context.Context, filter query.Predicate, limit int) ([]ir.Generation, error) {
	where, args, err := query.CompileWhere(filter)
	if err != nil {
		return nil, fmt.Errorf("compile filter: %w", err)
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+generationColumns+` FROM (
			SELECT * FROM generations
			WHERE `+where+`
			ORDER BY seq DESC
			LIMIT ?
		)
		ORDER BY seq ASC
	`, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("query generations: %w", err)
	}
	return collectGenerations(rows)
}

// ReadRun returns every generation of a run, ordered by run index.
func (s *Store) ReadRun(ctx context.Context, runID string) ([]ir.Generation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+generationColumns+`
		FROM generations
		WHERE run_id = ?
		ORDER BY run_index ASC, seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read run %s: %w", runID, err)
	}
	return collectGenerations(rows)
}

// ReadAllGenerations returns the whole log ordered by seq.
func (s *Store) ReadAllGenerations(ctx context.Context) ([]ir.Generation, error) {
	return s.ListGenerations(ctx, 0)
}

func collectGenerations(rows *sql.Rows) ([]ir.Generation, error) {
	defer rows.Close()

	gens := []ir.Generation{}
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		gens = append(gens, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generations: %w", err)
	}
	return gens, nil
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanGeneration(sc scanner) (ir.Generation, error) {
	var (
		g    ir.Generation
		seed sql.NullInt64
		mods string
	)
	err := sc.Scan(
		&g.ID,
		&g.RunID,
		&g.RunIndex,
		&g.Seq,
		&g.GrammarHash,
		&g.GrammarPath,
		&g.Template,
		&seed,
		&g.MaxDepth,
		&mods,
		&g.Output,
		&g.Error,
		&g.EngineVersion,
		&g.IRVersion,
	)
	if err != nil {
		return ir.Generation{}, err
	}

	g.Seed = seedFromNull(seed)
	if g.Modifiers, err = unmarshalModifiers(mods); err != nil {
		return ir.Generation{}, err
	}
	return g, nil
}
