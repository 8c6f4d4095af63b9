package harness

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/rollcall/internal/roster"
)

// Scenario defines a conformance test scenario: a roster, a frozen
// clock, and a list of queries with expected matches.
type Scenario struct {
	// Name uniquely identifies this scenario. Doubles as the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Now is the frozen clock date (YYYY-MM-DD) used for relative date
	// resolution. Defaults to 2024-03-13 (a Wednesday) when empty.
	Now string `yaml:"now,omitempty"`

	// Roster is the dataset every query in the scenario runs against.
	Roster ScenarioRoster `yaml:"roster"`

	// Queries are executed in order against the same roster.
	Queries []QueryStep `yaml:"queries"`
}

// ScenarioRoster is the YAML form of a roster snapshot.
type ScenarioRoster struct {
	Students []ScenarioStudent `yaml:"students"`
	Sessions []ScenarioSession `yaml:"sessions,omitempty"`
}

// ScenarioStudent is one student entry in a scenario roster.
type ScenarioStudent struct {
	ID             string           `yaml:"id"`
	StudentID      string           `yaml:"student_id"`
	Name           string           `yaml:"name"`
	Email          string           `yaml:"email,omitempty"`
	CurrentStatus  string           `yaml:"current_status,omitempty"`
	History        []ScenarioRecord `yaml:"history,omitempty"`
	SessionHistory []ScenarioRecord `yaml:"session_history,omitempty"`
}

// ScenarioRecord is one attendance record. Session is set only for
// session-level records.
type ScenarioRecord struct {
	Date    string `yaml:"date"`
	Session string `yaml:"session,omitempty"`
	Status  string `yaml:"status"`
}

// ScenarioSession is one timetable slot. List order defines the
// 1-based session numbers queries may reference.
type ScenarioSession struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// QueryStep is one query with its expected outcome.
type QueryStep struct {
	// Query is the raw query string, exactly as a user would type it.
	Query string `yaml:"query"`

	// Expect validates the result. If nil, the query only has to run
	// without a contract violation.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected result of one query.
// All list matches are exact and order-sensitive.
type ExpectClause struct {
	// Students lists expected student_ids, in result order.
	Students []string `yaml:"students,omitempty"`

	// Sessions lists expected session names, in result order.
	Sessions []string `yaml:"sessions,omitempty"`

	// Commands is the expected number of palette commands. Nil skips
	// the check.
	Commands *int `yaml:"commands,omitempty"`

	// Structured asserts whether the query took the structured path.
	// Nil skips the check.
	Structured *bool `yaml:"structured,omitempty"`
}

const dateLayout = "2006-01-02"

// defaultNow is a fixed Wednesday so relative dates resolve the same
// on every run.
var defaultNow = time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	return &sc, nil
}

// Clock returns the frozen time for the scenario.
func (s *Scenario) Clock() (time.Time, error) {
	if s.Now == "" {
		return defaultNow, nil
	}
	now, err := time.Parse(dateLayout, s.Now)
	if err != nil {
		return time.Time{}, fmt.Errorf("scenario %s: invalid now %q (want YYYY-MM-DD)", s.Name, s.Now)
	}
	return now, nil
}

// Snapshot converts the YAML roster into the engine's snapshot form.
func (s *Scenario) Snapshot() (roster.Snapshot, error) {
	snap := roster.Snapshot{Current: make(map[string]roster.Status)}

	for _, ys := range s.Roster.Sessions {
		snap.Sessions = append(snap.Sessions, roster.Session{
			ID:        ys.ID,
			Name:      ys.Name,
			StartTime: ys.Start,
			EndTime:   ys.End,
		})
	}

	for _, ys := range s.Roster.Students {
		st := roster.Student{
			ID:        ys.ID,
			StudentID: ys.StudentID,
			Name:      ys.Name,
			Email:     ys.Email,
		}
		if st.ID == "" {
			st.ID = ys.StudentID
		}
		if st.ID == "" || st.Name == "" {
			return snap, fmt.Errorf("scenario %s: student %q needs an id and a name", s.Name, ys.Name)
		}

		if ys.CurrentStatus != "" {
			status, ok := roster.ParseStatus(ys.CurrentStatus)
			if !ok {
				return snap, fmt.Errorf("scenario %s: student %q: unknown status %q", s.Name, st.Name, ys.CurrentStatus)
			}
			snap.Current[st.ID] = status
		}

		for _, rec := range ys.History {
			date, status, err := s.parseRecord(rec, st.Name)
			if err != nil {
				return snap, err
			}
			st.History = append(st.History, roster.AttendanceRecord{Date: date, Status: status})
		}
		for _, rec := range ys.SessionHistory {
			date, status, err := s.parseRecord(rec, st.Name)
			if err != nil {
				return snap, err
			}
			if rec.Session == "" {
				return snap, fmt.Errorf("scenario %s: student %q: session_history entry missing session", s.Name, st.Name)
			}
			st.SessionHistory = append(st.SessionHistory, roster.SessionRecord{
				Date:      date,
				SessionID: rec.Session,
				Status:    status,
			})
		}

		snap.Students = append(snap.Students, st)
	}

	return snap, nil
}

func (s *Scenario) parseRecord(rec ScenarioRecord, student string) (time.Time, roster.Status, error) {
	date, err := time.Parse(dateLayout, rec.Date)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("scenario %s: student %q: invalid date %q", s.Name, student, rec.Date)
	}
	status, ok := roster.ParseStatus(rec.Status)
	if !ok {
		return time.Time{}, "", fmt.Errorf("scenario %s: student %q: unknown status %q", s.Name, student, rec.Status)
	}
	return date, status, nil
}
