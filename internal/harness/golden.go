package harness

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/ez2torta/SConE/internal/player"
)

// Snapshot renders a result for golden comparison: a short header, then one
// line per emission in the frame printer's format.
//
//	scenario: qcf_c
//	total_frames: 4
//	Frame   0: [DOWN]
//	...
//	release    [RELEASE]
func Snapshot(name string, result *Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", name)
	if result.ResolveError != "" {
		fmt.Fprintf(&b, "resolve_error: %s\n", result.ResolveError)
		return []byte(b.String())
	}
	fmt.Fprintf(&b, "total_frames: %d\n", result.TotalFrames)
	for _, event := range result.Trace {
		if event.Tick == player.ReleaseTick {
			fmt.Fprintf(&b, "release    %s\n", event.Label())
			continue
		}
		fmt.Fprintf(&b, "Frame %3d: %s\n", event.Tick, event.Label())
	}
	return []byte(b.String())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the trace doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return err
	}
	AssertGolden(t, scenario.Name, result)
	return nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, Snapshot(scenarioName, result))
}
