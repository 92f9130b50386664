package store

import (
	"context"
	"fmt"

	"github.com/roach88/quill/internal/ir"
)

// WriteGeneration appends a generation record to the log.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - writing the same record
// twice is silently ignored. A different record reusing a seq, or a run index
// already taken in its run, is an error.
//
// The modifier list is serialized to canonical JSON.
func (s *Store) WriteGeneration(ctx context.Context, g ir.Generation) error {
	mods, err := marshalModifiers(g.Modifiers)
	if err != nil {
		return fmt.Errorf("write generation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO generations
		(id, run_id, run_index, seq, grammar_hash, grammar_path, template, seed,
		 max_depth, modifiers, output, error, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		g.ID,
		g.RunID,
		g.RunIndex,
		g.Seq,
		g.GrammarHash,
		g.GrammarPath,
		g.Template,
		nullableSeed(g.Seed),
		g.MaxDepth,
		mods,
		g.Output,
		g.Error,
		g.EngineVersion,
		g.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write generation: %w", err)
	}

	return nil
}

// WriteRun appends every generation of a run in one transaction, so a run is
// either fully logged or absent.
func (s *Store) WriteRun(ctx context.Context, gens []ir.Generation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, g := range gens {
		mods, err := marshalModifiers(g.Modifiers)
		if err != nil {
			return fmt.Errorf("write run: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO generations
			(id, run_id, run_index, seq, grammar_hash, grammar_path, template, seed,
			 max_depth, modifiers, output, error, engine_version, ir_version)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`,
			g.ID, g.RunID, g.RunIndex, g.Seq, g.GrammarHash, g.GrammarPath, g.Template,
			nullableSeed(g.Seed), g.MaxDepth, mods, g.Output, g.Error, g.EngineVersion, g.IRVersion,
		)
		if err != nil {
			return fmt.Errorf("write run: generation %s: %w", g.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}
