package store

import (
	"context"
	"database/sql"
	"fmt"
)

// WriteRun records a run and, for solved runs, its critical path. ID and
// Seq are assigned when zero; the stored run is returned.
//
// Uses ON CONFLICT(id) DO NOTHING: writing a run whose ID already exists
// leaves the stored run untouched and returns it with its stored Seq.
func (s *Store) WriteRun(ctx context.Context, run Run) (Run, error) {
	if run.Config == nil {
		return Run{}, fmt.Errorf("write run: missing config")
	}
	if run.Status == StatusSolved && run.Trace == nil {
		return Run{}, fmt.Errorf("write run: solved run without a trace")
	}
	if run.ID == "" {
		run.ID = s.ids.Generate()
	}

	configJSON, err := marshalConfig(run.Config)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}
	var traceJSON sql.NullString
	var finalValue sql.NullFloat64
	if run.Trace != nil {
		text, err := marshalTrace(run.Trace)
		if err != nil {
			return Run{}, fmt.Errorf("write run: %w", err)
		}
		traceJSON = sql.NullString{String: text, Valid: true}
		finalValue = sql.NullFloat64{Float64: run.FinalValue, Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var existing int64
	err = tx.QueryRowContext(ctx, `SELECT seq FROM runs WHERE id = ?`, run.ID).Scan(&existing)
	switch {
	case err == nil:
		run.Seq = existing
		return run, nil
	case err != sql.ErrNoRows:
		return Run{}, fmt.Errorf("write run: check existing: %w", err)
	}

	if run.Seq == 0 {
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
			return Run{}, fmt.Errorf("write run: next seq: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, model, target, config, config_hash, status, reason,
		 final_index, final_value, attempts, trace, trace_hash,
		 engine_version, format_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Seq,
		run.Model,
		run.Target,
		configJSON,
		run.ConfigHash,
		string(run.Status),
		string(run.Reason),
		run.FinalIndex,
		finalValue,
		run.Attempts,
		traceJSON,
		run.TraceHash,
		run.EngineVersion,
		run.FormatVersion,
	)
	if err != nil {
		return Run{}, fmt.Errorf("write run: insert: %w", err)
	}

	if run.Trace != nil {
		for _, step := range run.Trace.Path {
			inputs, err := marshalRefs(step.Inputs)
			if err != nil {
				return Run{}, fmt.Errorf("write run: %w", err)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO run_steps
				(run_id, seq, edge, node, idx, constant, value, inputs)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, run.ID, step.Seq, step.Edge, step.Node, step.Index, step.Constant, step.Value, inputs)
			if err != nil {
				return Run{}, fmt.Errorf("write run: insert step %d: %w", step.Seq, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("write run: commit: %w", err)
	}
	return run, nil
}

// DeleteRun removes a run and its steps. Deleting a missing run is not an
// error.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}
