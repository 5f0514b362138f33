package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/chg/internal/config"
	"github.com/roach88/chg/internal/engine"
	"github.com/roach88/chg/internal/pendulum"
	"github.com/roach88/chg/internal/store"
)

// SolveOptions holds flags for the solve command.
type SolveOptions struct {
	*RootOptions

	Model        string
	Target       string
	Inputs       map[string]string
	MinIndex     int
	MaxIndex     int
	SearchDepth  int
	ValueAtLeast float64
	ValueAtMost  float64
	DebugNodes   []string
	DebugEdges   []string

	Database       string
	Frames         bool
	HideDisposable bool
}

// SolveResult is the JSON payload of a successful solve.
type SolveResult struct {
	Model      string           `json:"model"`
	ConfigHash string           `json:"config_hash"`
	TraceHash  string           `json:"trace_hash"`
	Trace      *engine.Trace    `json:"trace"`
	Frames     []pendulum.Frame `json:"frames,omitempty"`
}

// NoSolutionDetails is the JSON error detail of a failed solve.
type NoSolutionDetails struct {
	Reason   engine.Reason    `json:"reason"`
	Target   string           `json:"target"`
	Index    int              `json:"index"`
	Attempts int              `json:"attempts"`
	Limit    int              `json:"limit"`
	Failures []engine.Failure `json:"failures,omitempty"`
}

// NewSolveCommand creates the solve command.
func NewSolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "solve [config.cue]",
		Short: "Solve a model",
		Long: `Solve a catalog model, configured by a CUE file, flags, or both.

Flags override the configuration file. Without a file, --model is
required and every other setting takes the model's defaults.

Exit codes:
  0 - Solved
  1 - No solution found
  2 - Command error (invalid config, unknown model, etc.)

Examples:
  chg solve --model pendulum/driven
  chg solve --model clock --min-index 10 --input time=1
  chg solve run.cue --db runs.db
  chg solve --model pendulum/free --frames --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Model, "model", "m", "", "catalog model (see chg models)")
	cmd.Flags().StringVar(&opts.Target, "target", "", "target node (default: the model's)")
	cmd.Flags().StringToStringVar(&opts.Inputs, "input", nil, "seed values as node=value (repeatable)")
	cmd.Flags().IntVar(&opts.MinIndex, "min-index", 0, "lowest index the solve may end at")
	cmd.Flags().IntVar(&opts.MaxIndex, "max-index", 0, "highest index to search (0: unbounded)")
	cmd.Flags().IntVar(&opts.SearchDepth, "search-depth", 0, "firing attempt budget (0: default)")
	cmd.Flags().Float64Var(&opts.ValueAtLeast, "value-at-least", 0, "terminate once the target value reaches this")
	cmd.Flags().Float64Var(&opts.ValueAtMost, "value-at-most", 0, "terminate once the target value falls to this")
	cmd.Flags().StringSliceVar(&opts.DebugNodes, "debug-node", nil, "log attempts touching these nodes at info level")
	cmd.Flags().StringSliceVar(&opts.DebugEdges, "debug-edge", nil, "log attempts of these edges at info level")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().BoolVar(&opts.Frames, "frames", false, "print bob positions (pendulum models)")
	cmd.Flags().BoolVar(&opts.HideDisposable, "hide-disposable", false, "omit nodes only read as disposable inputs")

	return cmd
}

func runSolve(opts *SolveOptions, args []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	cfg, err := buildConfig(opts, args, cmd)
	if err != nil {
		return configError(f, err)
	}
	plan, err := cfg.Plan()
	if err != nil {
		return configError(f, err)
	}

	var frames *pendulum.FrameSpec
	if opts.Frames {
		if plan.Model.Frames == nil {
			return configError(f, fmt.Errorf("model %s has no frame layout", plan.Model.Name))
		}
		frames = plan.Model.Frames
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	r := engine.New(engine.WithLogger(newLogger(opts.RootOptions, cmd.ErrOrStderr())))
	trace, solveErr := r.Solve(ctx, plan.Registry, plan.Request)

	var ns *engine.NoSolutionError
	if solveErr != nil && !errors.As(solveErr, &ns) {
		return WrapExitError(ExitFailure, "solve failed", solveErr)
	}

	run, err := store.NewRun(cfg, plan.Request.Target, trace, solveErr)
	if err != nil {
		return WrapExitError(ExitFailure, "solve failed", err)
	}
	if opts.Database != "" {
		if run, err = recordRun(ctx, opts.Database, run); err != nil {
			if werr := f.Error(ErrCodeStore, err.Error(), nil); werr != nil {
				return werr
			}
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		f.VerboseLog("recorded run %s (seq %d)", run.ID, run.Seq)
	}

	if ns != nil {
		return reportNoSolution(f, cmd, run.ID, ns)
	}

	if opts.HideDisposable {
		trace = trace.Pruned()
	}

	var rendered []pendulum.Frame
	if frames != nil {
		if rendered, err = pendulum.Frames(trace.Values, *frames); err != nil {
			return WrapExitError(ExitFailure, "failed to render frames", err)
		}
	}

	if opts.Format == "json" {
		return writeJSON(cmd, CLIResponse{
			Status: "ok",
			RunID:  run.ID,
			Data: SolveResult{
				Model:      cfg.Model,
				ConfigHash: run.ConfigHash,
				TraceHash:  run.TraceHash,
				Trace:      trace,
				Frames:     rendered,
			},
		})
	}

	w := cmd.OutOrStdout()
	writeTrace(w, trace, opts.Verbose)
	if rendered != nil {
		writeFrames(w, rendered)
	}
	if run.ID != "" {
		fmt.Fprintf(w, "\nRun %s\n", run.ID)
	}
	return nil
}

// buildConfig loads the optional config file and applies flags set on the
// command line over it.
func buildConfig(opts *SolveOptions, args []string, cmd *cobra.Command) (*config.Solve, error) {
	cfg := &config.Solve{}
	if len(args) == 1 {
		loaded, err := config.Load(args[0])
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.Model = opts.Model
	}
	if flags.Changed("target") {
		cfg.Target = opts.Target
	}
	if flags.Changed("input") {
		if cfg.Inputs == nil {
			cfg.Inputs = make(map[string]float64, len(opts.Inputs))
		}
		for name, raw := range opts.Inputs {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, &config.Error{Field: "inputs." + name, Message: fmt.Sprintf("not a number: %q", raw)}
			}
			cfg.Inputs[name] = v
		}
	}
	if flags.Changed("min-index") {
		n := opts.MinIndex
		cfg.MinIndex = &n
	}
	if flags.Changed("max-index") {
		cfg.MaxIndex = opts.MaxIndex
	}
	if flags.Changed("search-depth") {
		cfg.SearchDepth = opts.SearchDepth
	}
	if flags.Changed("value-at-least") {
		v := opts.ValueAtLeast
		cfg.Termination.ValueAtLeast = &v
	}
	if flags.Changed("value-at-most") {
		v := opts.ValueAtMost
		cfg.Termination.ValueAtMost = &v
	}
	if flags.Changed("debug-node") {
		cfg.Debug.Nodes = opts.DebugNodes
	}
	if flags.Changed("debug-edge") {
		cfg.Debug.Edges = opts.DebugEdges
	}
	return cfg, nil
}

func recordRun(ctx context.Context, path string, run store.Run) (store.Run, error) {
	st, err := store.Open(path)
	if err != nil {
		return store.Run{}, err
	}
	defer st.Close()
	return st.WriteRun(ctx, run)
}

// configError reports an invalid configuration and returns exit code 2.
func configError(f *OutputFormatter, err error) error {
	var details any
	var cfgErr *config.Error
	if errors.As(err, &cfgErr) {
		details = map[string]string{"field": cfgErr.Field, "pos": cfgErr.Pos}
	}
	var reqErr *engine.RequestError
	if errors.As(err, &reqErr) {
		details = map[string]string{"field": reqErr.Field}
	}
	if f.Format == "json" {
		if werr := f.Error(ErrCodeConfig, err.Error(), details); werr != nil {
			return werr
		}
	}
	return WrapExitError(ExitCommandError, "invalid configuration", err)
}

func reportNoSolution(f *OutputFormatter, cmd *cobra.Command, runID string, ns *engine.NoSolutionError) error {
	if f.Format == "json" {
		details := NoSolutionDetails{
			Reason:   ns.Reason,
			Target:   ns.Target,
			Index:    ns.Index,
			Attempts: ns.Attempts,
			Limit:    ns.Limit,
		}
		for _, ce := range ns.Failures {
			details.Failures = append(details.Failures, engine.Failure{
				Edge: ce.Edge, Node: ce.Node, Index: ce.Index, Message: ce.Err.Error(),
			})
		}
		if err := writeJSON(cmd, CLIResponse{
			Status: "error",
			RunID:  runID,
			Error:  &CLIError{Code: ErrCodeNoSolution, Message: "No solutions found", Details: details},
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "no solution")
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "No solutions found")
	fmt.Fprintf(w, "  %s for %s at index %d after %d/%d attempts\n", ns.Reason, ns.Target, ns.Index, ns.Attempts, ns.Limit)
	if f.Verbose {
		for _, ce := range ns.Failures {
			fmt.Fprintf(w, "  %v\n", ce)
		}
	}
	if runID != "" {
		fmt.Fprintf(w, "\nRun %s\n", runID)
	}
	return NewExitError(ExitFailure, "no solution")
}

// writeJSON writes an indented CLIResponse to the command's output.
func writeJSON(cmd *cobra.Command, resp CLIResponse) error {
	return encodeJSON(cmd.OutOrStdout(), resp)
}
