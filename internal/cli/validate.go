package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/chg/internal/config"
)

// ValidateResult is the outcome of validating one config file.
type ValidateResult struct {
	File       string `json:"file"`
	Valid      bool   `json:"valid"`
	Model      string `json:"model,omitempty"`
	Target     string `json:"target,omitempty"`
	MinIndex   int    `json:"min_index,omitempty"`
	ConfigHash string `json:"config_hash,omitempty"`
	Error      string `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config.cue>...",
		Short: "Validate solve configurations",
		Long: `Check CUE solve configurations against the schema and the model
catalog without solving.

Exit codes:
  0 - All configurations valid
  1 - One or more configurations invalid`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, files []string, cmd *cobra.Command) error {
	results := make([]ValidateResult, 0, len(files))
	failed := 0
	for _, file := range files {
		r := validateFile(file)
		if !r.Valid {
			failed++
		}
		results = append(results, r)
	}

	if opts.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: results}
		if failed > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeConfig, Message: fmt.Sprintf("%d configuration(s) invalid", failed)}
		}
		if err := writeJSON(cmd, resp); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, r := range results {
			if r.Valid {
				fmt.Fprintf(w, "\u2713 %s: %s -> %s from index %d (config %s)\n", r.File, r.Model, r.Target, r.MinIndex, shortHash(r.ConfigHash))
			} else {
				fmt.Fprintf(w, "\u2717 %s: %s\n", r.File, r.Error)
			}
		}
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d configuration(s) invalid", failed))
	}
	return nil
}

func validateFile(file string) ValidateResult {
	r := ValidateResult{File: file}

	cfg, err := config.Load(file)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	plan, err := cfg.Plan()
	if err != nil {
		r.Error = err.Error()
		return r
	}
	hash, err := cfg.Hash()
	if err != nil {
		r.Error = err.Error()
		return r
	}

	r.Valid = true
	r.Model = cfg.Model
	r.Target = plan.Request.Target
	r.MinIndex = plan.Request.MinIndex
	r.ConfigHash = hash
	return r
}

// shortHash abbreviates a hex hash for text output.
func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
