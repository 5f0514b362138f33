package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/chg/internal/ir"
	"github.com/roach88/chg/internal/store"
)

// Snapshot is the golden form of a scenario execution. It is serialized as
// canonical JSON so equal solves give byte-identical files.
type Snapshot struct {
	ScenarioName string
	RunID        string
	Status       store.Status
	Reason       string
	Trace        map[string]any // engine.Trace.Canonical, nil when unsolved
}

// NewSnapshot builds the snapshot of a result.
func NewSnapshot(name string, result *Result) Snapshot {
	s := Snapshot{
		ScenarioName: name,
		RunID:        result.Run.ID,
		Status:       result.Run.Status,
		Reason:       string(result.Run.Reason),
	}
	if result.Trace != nil {
		s.Trace = result.Trace.Canonical()
	}
	return s
}

func (s Snapshot) toCanonicalMap() map[string]any {
	m := map[string]any{
		"scenario_name": s.ScenarioName,
		"run_id":        s.RunID,
		"status":        string(s.Status),
	}
	if s.Reason != "" {
		m["reason"] = s.Reason
	}
	if s.Trace != nil {
		m["trace"] = s.Trace
	}
	return m
}

// Marshal returns the canonical JSON of the snapshot.
func (s Snapshot) Marshal() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already computed result against its golden
// file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(scenarioName, result).Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
