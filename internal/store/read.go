package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/chg/internal/engine"
)

const runColumns = `id, seq, model, target, config, config_hash, status, reason,
	final_index, final_value, attempts, trace, trace_hash,
	engine_version, format_version`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// ReadRun retrieves a run by ID, including its trace.
// Returns an error wrapping sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row, true)
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns runs ordered by seq. Traces are not loaded. A positive
// limit keeps the most recent runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY seq ASC`
	args := []any{}
	if limit > 0 {
		query = `SELECT * FROM (SELECT ` + runColumns + ` FROM runs ORDER BY seq DESC LIMIT ?) ORDER BY seq ASC`
		args = append(args, limit)
	}
	return s.queryRuns(ctx, query, args...)
}

// ReadRunsByConfigHash returns every run of one configuration, ordered by
// seq. Traces are loaded.
func (s *Store) ReadRunsByConfigHash(ctx context.Context, hash string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE config_hash = ?
		ORDER BY seq ASC
	`, hash)
	if err != nil {
		return nil, fmt.Errorf("query runs by config: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows, true)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadSteps returns the critical path of a run ordered by seq. Returns an
// empty slice for runs without a solution.
func (s *Store) ReadSteps(ctx context.Context, runID string) ([]engine.Step, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.seq, s.edge, s.node, s.idx, s.constant, s.value, s.inputs
		FROM run_steps s
		WHERE s.run_id = ?
		ORDER BY s.seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	steps := []engine.Step{}
	for rows.Next() {
		var st engine.Step
		var inputs string
		if err := rows.Scan(&st.Seq, &st.Edge, &st.Node, &st.Index, &st.Constant, &st.Value, &inputs); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		if st.Inputs, err = unmarshalRefs(inputs); err != nil {
			return nil, err
		}
		steps = append(steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}
	return steps, nil
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows, false)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// scanRun scans one runs row. The trace is decoded only when withTrace is
// set.
func scanRun(row scanner, withTrace bool) (Run, error) {
	var run Run
	var configJSON, status, reason string
	var finalValue sql.NullFloat64
	var traceJSON sql.NullString

	if err := row.Scan(
		&run.ID, &run.Seq, &run.Model, &run.Target, &configJSON, &run.ConfigHash,
		&status, &reason, &run.FinalIndex, &finalValue, &run.Attempts,
		&traceJSON, &run.TraceHash, &run.EngineVersion, &run.FormatVersion,
	); err != nil {
		return Run{}, err
	}

	run.Status = Status(status)
	run.Reason = engine.Reason(reason)
	run.FinalValue = finalValue.Float64

	cfg, err := unmarshalConfig(configJSON)
	if err != nil {
		return Run{}, err
	}
	run.Config = cfg

	if withTrace && traceJSON.Valid {
		if run.Trace, err = unmarshalTrace(traceJSON.String); err != nil {
			return Run{}, err
		}
	}
	return run, nil
}
