package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/grove/internal/canonical"
)

// RunWithGolden executes a scenario and compares its snapshot against the
// golden file testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("scenario %q failed to run: %v", scenario.Name, err)
	}
	for _, failure := range result.Failures {
		t.Errorf("scenario %q: %s", scenario.Name, failure)
	}

	data, err := canonical.Marshal(result.Snapshot)
	if err != nil {
		t.Fatalf("scenario %q: marshal snapshot: %v", scenario.Name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
}
