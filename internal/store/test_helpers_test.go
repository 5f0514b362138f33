package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/chg/internal/config"
	"github.com/roach88/chg/internal/engine"
)

// createTestStore opens a store in a temp dir with fixed run IDs.
func createTestStore(t *testing.T, ids ...string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(NewFixedGenerator(ids...)))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// solveRun solves cfg and returns its unsaved run.
func solveRun(t *testing.T, cfg *config.Solve) Run {
	t.Helper()
	plan, err := cfg.Plan()
	require.NoError(t, err)

	r := engine.New(engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	trace, solveErr := r.Solve(context.Background(), plan.Registry, plan.Request)

	run, err := NewRun(cfg, plan.Request.Target, trace, solveErr)
	require.NoError(t, err)
	return run
}
