package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/chg/internal/config"
)

// Scenario is one solve with expectations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Config is the solve to run.
	Config config.Solve `yaml:"config"`

	// Expect checks the outcome and resolved values.
	Expect Expect `yaml:"expect"`

	// Assertions check the critical path and stored rows.
	// Supported types: path_contains, path_order, path_count, final_state
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Expect describes the outcome of a solve.
type Expect struct {
	// Solved is required: whether a trace is expected.
	Solved *bool `yaml:"solved"`

	// Reason is the expected no-solution reason, when Solved is false.
	Reason string `yaml:"reason,omitempty"`

	FinalIndex *int     `yaml:"final_index,omitempty"`
	FinalValue *float64 `yaml:"final_value,omitempty"`

	// Values are expected leading values per node (a prefix match).
	Values map[string][]float64 `yaml:"values,omitempty"`

	// Tolerance for value comparison. Defaults to 1e-9.
	Tolerance float64 `yaml:"tolerance,omitempty"`
}

// Assertion validates the critical path or stored rows.
type Assertion struct {
	// Type specifies the assertion type:
	// - "path_contains": an edge fired on the critical path, optionally at Index
	// - "path_order": edges first fire in this order
	// - "path_count": an edge fires exactly Count times
	// - "final_state": query a run log table and verify expected values
	Type string `yaml:"type"`

	// Edge is the edge label (used by path_contains, path_count).
	Edge string `yaml:"edge,omitempty"`

	// Index restricts path_contains to one produced index.
	Index *int `yaml:"index,omitempty"`

	// Count is the expected number of firings (used by path_count).
	Count int `yaml:"count,omitempty"`

	// Edges is the expected firing order (used by path_order).
	Edges []string `yaml:"edges,omitempty"`

	// Table is the run log table name (used by final_state).
	Table string `yaml:"table,omitempty"`

	// Where specifies query filters (used by final_state).
	Where map[string]any `yaml:"where,omitempty"`

	// Expect contains expected column values (used by final_state).
	// Subset match - only specified columns are validated.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertPathContains = "path_contains"
	AssertPathOrder    = "path_order"
	AssertPathCount    = "path_count"
	AssertFinalState   = "final_state"
)

const defaultTolerance = 1e-9

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml file under dir, sorted by path.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		if prev, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("%s: duplicate scenario name %q (also in %s)", p, s.Name, prev)
		}
		seen[s.Name] = p
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if err := s.Config.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if s.Expect.Solved == nil {
		return fmt.Errorf("expect.solved is required")
	}
	if *s.Expect.Solved && s.Expect.Reason != "" {
		return fmt.Errorf("expect.reason only applies when solved is false")
	}
	if s.Expect.Tolerance < 0 {
		return fmt.Errorf("expect.tolerance must be non-negative")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertPathContains:
		if a.Edge == "" {
			return fmt.Errorf("assertions[%d]: edge is required for path_contains", index)
		}
	case AssertPathOrder:
		if len(a.Edges) == 0 {
			return fmt.Errorf("assertions[%d]: edges list is required for path_order", index)
		}
	case AssertPathCount:
		if a.Edge == "" {
			return fmt.Errorf("assertions[%d]: edge is required for path_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for path_count", index)
		}
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
