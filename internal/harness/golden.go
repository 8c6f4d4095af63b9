package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario and compares the rendered trace
// against a golden file in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario itself fails to run; trace
// mismatches fail the test via goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, []byte(renderTrace(scenario, result)))
	return nil
}

// renderTrace produces a stable plain-text rendering of a run. One
// block per query; empty sections are omitted.
func renderTrace(scenario *Scenario, result *Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", scenario.Name)

	for _, trace := range result.Trace {
		fmt.Fprintf(&b, "\nquery: %s\n", trace.Query)
		if trace.Structured {
			fmt.Fprintf(&b, "  path: structured\n")
		} else {
			fmt.Fprintf(&b, "  path: text\n")
		}
		if len(trace.Filters) > 0 {
			fmt.Fprintf(&b, "  filters: %s\n", strings.Join(trace.Filters, ", "))
		}
		if len(trace.Students) > 0 {
			fmt.Fprintf(&b, "  students: %s\n", strings.Join(trace.Students, ", "))
		}
		if len(trace.Sessions) > 0 {
			fmt.Fprintf(&b, "  sessions: %s\n", strings.Join(trace.Sessions, ", "))
		}
		if len(trace.Commands) > 0 {
			fmt.Fprintf(&b, "  commands: %s\n", strings.Join(trace.Commands, "; "))
		}
		fmt.Fprintf(&b, "  matches: %d\n", trace.MatchCount)
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(&b, "\nerrors:\n")
		for _, e := range result.Errors {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
	}
	return b.String()
}
