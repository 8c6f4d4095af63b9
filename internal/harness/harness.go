package harness

import (
	"fmt"
	"time"

	"github.com/roach88/rollcall/internal/engine"
	"github.com/roach88/rollcall/internal/query"
	"github.com/roach88/rollcall/internal/roster"
	"github.com/roach88/rollcall/internal/search"
	"github.com/roach88/rollcall/internal/testutil"
)

// QueryTrace records what one query produced: which path it took and
// the matched entities, in result order.
type QueryTrace struct {
	Query      string   `json:"query"`
	Structured bool     `json:"structured"`
	Students   []string `json:"students,omitempty"` // student_ids
	Sessions   []string `json:"sessions,omitempty"` // names
	Commands   []string `json:"commands,omitempty"` // labels
	Filters    []string `json:"filters,omitempty"`
	MatchCount int      `json:"match_count"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true if every expect clause matched.
	Pass bool `json:"pass"`

	// Trace holds one entry per query, in scenario order. Used for
	// golden comparison.
	Trace []QueryTrace `json:"trace"`

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Run executes a scenario and returns its result.
//
// Every run is deterministic: the clock is frozen at the scenario's
// date, and command ids come from a sequential generator instead of
// UUIDs, so traces compare stably against golden files.
func Run(scenario *Scenario) (*Result, error) {
	now, err := scenario.Clock()
	if err != nil {
		return nil, err
	}
	snap, err := scenario.Snapshot()
	if err != nil {
		return nil, err
	}

	clock := testutil.NewClock(now)
	eng := search.New(
		search.WithIDs(&engine.SeqGenerator{}),
		search.WithClock(clock.Now),
	)

	result := &Result{Pass: true}
	for _, step := range scenario.Queries {
		trace, err := runQuery(eng, snap, now, step)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: query %q: %w", scenario.Name, step.Query, err)
		}
		checkExpectations(result, step, trace)
		result.Trace = append(result.Trace, trace)
	}
	return result, nil
}

// runQuery executes one query. A returned error is a contract
// violation, never a malformed query: those fall back silently inside
// the search engine.
func runQuery(eng *search.Engine, snap roster.Snapshot, now time.Time, step QueryStep) (QueryTrace, error) {
	trace := QueryTrace{Query: step.Query}

	// Re-parse for the trace: Search hides whether the structured path
	// was taken.
	if ast, err := query.ParseAt(step.Query, now); err == nil {
		trace.Structured = ast.HasAdvancedSyntax
	}

	res, err := eng.Search(step.Query, snap, 0)
	if err != nil {
		return trace, err
	}

	for _, st := range res.Students {
		trace.Students = append(trace.Students, st.StudentID)
	}
	for _, sess := range res.Sessions {
		trace.Sessions = append(trace.Sessions, sess.Name)
	}
	for _, cmd := range res.Commands {
		trace.Commands = append(trace.Commands, cmd.Label)
	}
	trace.Filters = res.Metadata.AppliedFilters
	trace.MatchCount = res.Metadata.MatchCount
	return trace, nil
}

// checkExpectations validates a trace against the step's expect clause.
func checkExpectations(result *Result, step QueryStep, trace QueryTrace) {
	expect := step.Expect
	if expect == nil {
		return
	}

	if expect.Students != nil && !equalStrings(expect.Students, trace.Students) {
		result.AddError("query %q: students = %v, want %v", step.Query, trace.Students, expect.Students)
	}
	if expect.Sessions != nil && !equalStrings(expect.Sessions, trace.Sessions) {
		result.AddError("query %q: sessions = %v, want %v", step.Query, trace.Sessions, expect.Sessions)
	}
	if expect.Commands != nil && len(trace.Commands) != *expect.Commands {
		result.AddError("query %q: %d command(s), want %d", step.Query, len(trace.Commands), *expect.Commands)
	}
	if expect.Structured != nil && trace.Structured != *expect.Structured {
		result.AddError("query %q: structured = %v, want %v", step.Query, trace.Structured, *expect.Structured)
	}
}

func equalStrings(want, got []string) bool {
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i] != got[i] {
			return false
		}
	}
	return true
}
