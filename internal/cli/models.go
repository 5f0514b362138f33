package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/chg/internal/graph"
	"github.com/roach88/chg/internal/models"
)

// ModelSummary describes a catalog model.
type ModelSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Target      string `json:"target"`
	MinIndex    int    `json:"min_index"`
	Frames      bool   `json:"frames"`
}

// ModelDetail lists a model's nodes and edges.
type ModelDetail struct {
	ModelSummary
	Inputs map[string]float64 `json:"inputs"`
	Nodes  []NodeSummary      `json:"nodes"`
	Edges  []EdgeSummary      `json:"edges"`
}

// NodeSummary describes one node.
type NodeSummary struct {
	Name        string   `json:"name"`
	Units       string   `json:"units,omitempty"`
	Description string   `json:"description,omitempty"`
	Value       *float64 `json:"value,omitempty"`
}

// EdgeSummary describes one edge.
type EdgeSummary struct {
	Label    string   `json:"label"`
	Target   string   `json:"target"`
	Relation string   `json:"relation"`
	Offset   int      `json:"offset"`
	Inputs   []string `json:"inputs"`
	Validity string   `json:"validity,omitempty"`
}

// NewModelsCommand creates the models command.
func NewModelsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models [name]",
		Short: "List catalog models, or describe one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runDescribeModel(rootOpts, args[0], cmd)
			}
			return runListModels(rootOpts, cmd)
		},
	}
	return cmd
}

func summarize(m models.Model) ModelSummary {
	return ModelSummary{
		Name:        m.Name,
		Description: m.Description,
		Target:      m.Target,
		MinIndex:    m.MinIndex,
		Frames:      m.Frames != nil,
	}
}

func runListModels(opts *RootOptions, cmd *cobra.Command) error {
	all := models.All()
	summaries := make([]ModelSummary, len(all))
	for i, m := range all {
		summaries[i] = summarize(m)
	}

	if opts.Format == "json" {
		return newFormatter(opts, cmd).Success(summaries)
	}

	w := cmd.OutOrStdout()
	width := 0
	for _, s := range summaries {
		width = max(width, len(s.Name))
	}
	for _, s := range summaries {
		fmt.Fprintf(w, "%-*s  %s[%d]  %s\n", width, s.Name, s.Target, s.MinIndex, s.Description)
	}
	return nil
}

func runDescribeModel(opts *RootOptions, name string, cmd *cobra.Command) error {
	m, err := models.Lookup(name)
	if err != nil {
		return WrapExitError(ExitCommandError, "unknown model", err)
	}
	reg, err := m.Build()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to build model", err)
	}

	detail := describe(m, reg)
	if opts.Format == "json" {
		return newFormatter(opts, cmd).Success(detail)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s: %s\n", detail.Name, detail.Description)
	fmt.Fprintf(w, "target %s, min index %d\n", detail.Target, detail.MinIndex)

	fmt.Fprintln(w, "\nNodes:")
	for _, n := range detail.Nodes {
		line := "  " + n.Name
		if n.Units != "" {
			line += " [" + n.Units + "]"
		}
		if n.Value != nil {
			line += fmt.Sprintf(" = %v", *n.Value)
		} else if v, ok := detail.Inputs[n.Name]; ok {
			line += fmt.Sprintf(" (seed %v)", v)
		}
		if n.Description != "" {
			line += "  " + n.Description
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w, "\nEdges:")
	for _, e := range detail.Edges {
		fmt.Fprintf(w, "  %s: %s <- %s(%s), offset %d", e.Label, e.Target, e.Relation, strings.Join(e.Inputs, ", "), e.Offset)
		if e.Validity != "" {
			fmt.Fprintf(w, ", valid if %s", e.Validity)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func describe(m models.Model, reg *graph.Registry) ModelDetail {
	d := ModelDetail{ModelSummary: summarize(m), Inputs: m.Inputs()}

	for _, n := range reg.Nodes() {
		ns := NodeSummary{Name: n.Name, Units: n.Units, Description: n.Description}
		if v, ok := n.Constant(); ok {
			ns.Value = &v
		}
		d.Nodes = append(d.Nodes, ns)
	}

	for _, e := range reg.Edges() {
		es := EdgeSummary{
			Label:    e.Label,
			Target:   e.Target,
			Relation: e.Relation.Name(),
			Offset:   e.Offset,
		}
		for _, in := range e.Inputs {
			es.Inputs = append(es.Inputs, in.Name+"="+in.Rule.String())
		}
		if e.Validity != nil {
			es.Validity = e.Validity.String()
		}
		d.Edges = append(d.Edges, es)
	}
	return d
}
