package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/rowfilter/internal/fingerprint"
)

// Snapshot is the golden view of a scenario run.
type Snapshot struct {
	ScenarioName string
	Output       string
	Report       string
	Error        string
}

func (s Snapshot) toCanonicalMap() map[string]any {
	m := map[string]any{
		"scenario_name": s.ScenarioName,
		"output":        s.Output,
		"report":        s.Report,
	}
	if s.Error != "" {
		m["error"] = s.Error
	}
	return m
}

// SnapshotOf builds the golden view of a result.
func SnapshotOf(name string, result *Result) Snapshot {
	s := Snapshot{ScenarioName: name, Output: result.Output, Error: result.Err}
	if result.Report != nil {
		s.Report = result.Report.String()
	}
	return s
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// Returns the result so callers can also check expectations. An error is
// returned only if the scenario could not run.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := fingerprint.MarshalCanonical(SnapshotOf(name, result).toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
