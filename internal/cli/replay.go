package cli

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/chg/internal/engine"
	"github.com/roach88/chg/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID          string       `json:"run_id"`
	Model          string       `json:"model"`
	RecordedStatus store.Status `json:"recorded_status"`
	ReplayedStatus store.Status `json:"replayed_status,omitempty"`
	RecordedHash   string       `json:"recorded_hash,omitempty"`
	ReplayedHash   string       `json:"replayed_hash,omitempty"`
	Deterministic  bool         `json:"deterministic"`
	Error          string       `json:"error,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay [run-id]...",
		Short: "Re-solve recorded runs and verify determinism",
		Long: `Re-solve the stored configuration of recorded runs and compare the
outcome and trace hash with what was recorded.

Exit codes:
  0 - All runs reproduce
  1 - One or more runs differ
  2 - Command error (database not found, etc.)

Examples:
  chg replay --db runs.db
  chg replay --db runs.db 01890a5d-ac96-774b-bcce-b302099a8057
  chg replay --db runs.db --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, ids []string, cmd *cobra.Command) error {
	st, err := openStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := commandContext(cmd)
	var runs []store.Run
	if len(ids) == 0 {
		if runs, err = st.ListRuns(ctx, 0); err != nil {
			return WrapExitError(ExitFailure, "failed to list runs", err)
		}
	}
	for _, id := range ids {
		run, err := st.ReadRun(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", id))
		}
		if err != nil {
			return WrapExitError(ExitFailure, "failed to read run", err)
		}
		runs = append(runs, run)
	}

	resolver := engine.New(engine.WithLogger(newLogger(opts.RootOptions, cmd.ErrOrStderr())))
	result := ReplayResult{Runs: []ReplayRunResult{}, AllDeterministic: true}
	for _, recorded := range runs {
		rr := replayRun(cmd, resolver, recorded)
		if !rr.Deterministic {
			result.AllDeterministic = false
		}
		result.Runs = append(result.Runs, rr)
	}
	result.TotalRuns = len(result.Runs)

	if opts.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.AllDeterministic {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeReplay, Message: "replayed runs differ from the recorded ones"}
		}
		if err := writeJSON(cmd, resp); err != nil {
			return err
		}
	} else {
		writeReplayText(cmd, result)
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "replay mismatch")
	}
	return nil
}

// replayRun solves a recorded run's configuration again. The recorded and
// replayed runs match when they share a status, and for solved runs, a
// trace hash.
func replayRun(cmd *cobra.Command, resolver *engine.Resolver, recorded store.Run) ReplayRunResult {
	rr := ReplayRunResult{
		RunID:          recorded.ID,
		Model:          recorded.Model,
		RecordedStatus: recorded.Status,
		RecordedHash:   recorded.TraceHash,
	}

	plan, err := recorded.Config.Plan()
	if err != nil {
		rr.Error = err.Error()
		return rr
	}
	trace, solveErr := resolver.Solve(commandContext(cmd), plan.Registry, plan.Request)
	replayed, err := store.NewRun(recorded.Config, plan.Request.Target, trace, solveErr)
	if err != nil {
		rr.Error = err.Error()
		return rr
	}

	rr.ReplayedStatus = replayed.Status
	rr.ReplayedHash = replayed.TraceHash
	rr.Deterministic = replayed.Status == recorded.Status &&
		replayed.TraceHash == recorded.TraceHash &&
		replayed.Reason == recorded.Reason
	return rr
}

func writeReplayText(cmd *cobra.Command, result ReplayResult) {
	w := cmd.OutOrStdout()
	if result.TotalRuns == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	for _, rr := range result.Runs {
		if rr.Deterministic {
			fmt.Fprintf(w, "\u2713 %s %s (%s)\n", rr.RunID, rr.Model, rr.RecordedStatus)
			continue
		}
		fmt.Fprintf(w, "\u2717 %s %s\n", rr.RunID, rr.Model)
		if rr.Error != "" {
			fmt.Fprintf(w, "  error: %s\n", rr.Error)
			continue
		}
		fmt.Fprintf(w, "  recorded: %s %s\n", rr.RecordedStatus, rr.RecordedHash)
		fmt.Fprintf(w, "  replayed: %s %s\n", rr.ReplayedStatus, rr.ReplayedHash)
	}

	fmt.Fprintln(w)
	if result.AllDeterministic {
		fmt.Fprintf(w, "All %d run(s) reproduce.\n", result.TotalRuns)
	} else {
		fmt.Fprintln(w, "Replay mismatch detected.")
	}
}
