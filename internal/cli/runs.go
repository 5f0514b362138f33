package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/chg/internal/config"
	"github.com/roach88/chg/internal/engine"
	"github.com/roach88/chg/internal/store"
)

// RunSummary is the JSON form of a recorded run.
type RunSummary struct {
	ID            string        `json:"id"`
	Seq           int64         `json:"seq"`
	Model         string        `json:"model"`
	Target        string        `json:"target"`
	Status        store.Status  `json:"status"`
	Reason        engine.Reason `json:"reason,omitempty"`
	FinalIndex    int           `json:"final_index"`
	FinalValue    *float64      `json:"final_value,omitempty"`
	Attempts      int           `json:"attempts"`
	ConfigHash    string        `json:"config_hash"`
	TraceHash     string        `json:"trace_hash,omitempty"`
	EngineVersion string        `json:"engine_version"`
}

// RunDetail adds the configuration and critical path to a RunSummary.
type RunDetail struct {
	RunSummary
	Config *config.Solve `json:"config"`
	Steps  []engine.Step `json:"steps"`
	Trace  *engine.Trace `json:"trace,omitempty"`
}

func summarizeRun(r store.Run) RunSummary {
	s := RunSummary{
		ID:            r.ID,
		Seq:           r.Seq,
		Model:         r.Model,
		Target:        r.Target,
		Status:        r.Status,
		Reason:        r.Reason,
		FinalIndex:    r.FinalIndex,
		Attempts:      r.Attempts,
		ConfigHash:    r.ConfigHash,
		TraceHash:     r.TraceHash,
		EngineVersion: r.EngineVersion,
	}
	if r.Status == store.StatusSolved {
		v := r.FinalValue
		s.FinalValue = &v
	}
	return s
}

// openStore opens an existing run database.
func openStore(path string) (*store.Store, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		dbPath string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs",
		Long: `List the runs recorded in a database, oldest first.

Examples:
  chg runs --db runs.db
  chg runs --db runs.db --limit 5 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListRuns(rootOpts, dbPath, limit, cmd)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVar(&limit, "limit", 0, "show only the latest N runs (0: all)")

	return cmd
}

func runListRuns(opts *RootOptions, dbPath string, limit int, cmd *cobra.Command) error {
	st, err := openStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(commandContext(cmd), limit)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to list runs", err)
	}

	summaries := make([]RunSummary, len(runs))
	for i, r := range runs {
		summaries[i] = summarizeRun(r)
	}

	if opts.Format == "json" {
		return newFormatter(opts, cmd).Success(summaries)
	}

	w := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, s := range summaries {
		outcome := string(s.Reason)
		if s.FinalValue != nil {
			outcome = s.Target + "[" + strconv.Itoa(s.FinalIndex) + "]=" + strconv.FormatFloat(*s.FinalValue, 'g', -1, 64)
		}
		fmt.Fprintf(w, "%4d  %s  %-16s %-11s %s\n", s.Seq, s.ID, s.Model, s.Status, outcome)
	}
	return nil
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, dbPath, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runShow(opts *RootOptions, dbPath, id string, cmd *cobra.Command) error {
	st, err := openStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := commandContext(cmd)
	run, err := st.ReadRun(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return NewExitError(ExitFailure, fmt.Sprintf("run not found: %s", id))
	}
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read run", err)
	}
	steps, err := st.ReadSteps(ctx, id)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read steps", err)
	}

	detail := RunDetail{RunSummary: summarizeRun(run), Config: run.Config, Steps: steps}
	if opts.Verbose {
		detail.Trace = run.Trace
	}

	if opts.Format == "json" {
		return writeJSON(cmd, CLIResponse{Status: "ok", RunID: run.ID, Data: detail})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run %s (seq %d)\n", run.ID, run.Seq)
	fmt.Fprintf(w, "  model:   %s\n", run.Model)
	fmt.Fprintf(w, "  config:  %s\n", run.ConfigHash)
	fmt.Fprintf(w, "  status:  %s\n", run.Status)
	if run.Status == store.StatusNoSolution {
		fmt.Fprintf(w, "  reason:  %s at index %d after %d attempts\n", run.Reason, run.FinalIndex, run.Attempts)
		return nil
	}
	fmt.Fprintf(w, "  trace:   %s\n", run.TraceHash)
	fmt.Fprintln(w)
	if opts.Verbose && run.Trace != nil {
		writeTrace(w, run.Trace, true)
		return nil
	}
	fmt.Fprintf(w, "%s[%d]=%v after %d attempts\n", run.Target, run.FinalIndex, run.FinalValue, run.Attempts)
	writeSteps(w, steps)
	return nil
}
