// Package compiler turns CUE roster definitions into in-memory
// snapshots. Rosters are declared in .cue files so that typos in status
// names or malformed dates fail at load time with source positions,
// before a query ever runs.
package compiler

import (
	"fmt"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/rollcall/internal/roster"
)

const dateLayout = "2006-01-02"

// CompileRoster parses a CUE value into a Snapshot.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the roster struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`roster: { students: {...} }`)
//	snap, err := CompileRoster(v.LookupPath(cue.ParsePath("roster")))
func CompileRoster(v cue.Value) (roster.Snapshot, error) {
	snap := roster.Snapshot{Current: make(map[string]roster.Status)}

	if err := v.Err(); err != nil {
		return snap, formatCUEError(err)
	}

	sessions, err := parseSessions(v)
	if err != nil {
		return snap, err
	}
	snap.Sessions = sessions

	studentsVal := v.LookupPath(cue.ParsePath("students"))
	if !studentsVal.Exists() {
		return snap, &CompileError{
			Field:   "students",
			Message: "students is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := studentsVal.Fields()
	if err != nil {
		return snap, formatCUEError(err)
	}
	for iter.Next() {
		st, current, err := parseStudent(iter.Label(), iter.Value())
		if err != nil {
			return snap, err
		}
		if current != "" {
			status, ok := roster.ParseStatus(current)
			if !ok {
				return snap, &CompileError{
					Field:   fmt.Sprintf("students.%s.current_status", st.ID),
					Message: fmt.Sprintf("unknown status %q", current),
					Pos:     iter.Value().Pos(),
				}
			}
			snap.Current[st.ID] = status
		}
		snap.Students = append(snap.Students, st)
	}

	return snap, nil
}

// parseStudent parses one student entry. The struct label is the
// internal ID; student_id and name are required, the rest optional.
func parseStudent(id string, v cue.Value) (roster.Student, string, error) {
	st := roster.Student{ID: id}

	studentID, err := requiredString(v, "student_id", "students."+id)
	if err != nil {
		return st, "", err
	}
	st.StudentID = studentID

	name, err := requiredString(v, "name", "students."+id)
	if err != nil {
		return st, "", err
	}
	st.Name = name

	if emailVal := v.LookupPath(cue.ParsePath("email")); emailVal.Exists() {
		if st.Email, err = emailVal.String(); err != nil {
			return st, "", formatCUEError(err)
		}
	}

	var current string
	if curVal := v.LookupPath(cue.ParsePath("current_status")); curVal.Exists() {
		if current, err = curVal.String(); err != nil {
			return st, "", formatCUEError(err)
		}
	}

	if st.History, err = parseHistory(id, v); err != nil {
		return st, "", err
	}
	if st.SessionHistory, err = parseSessionHistory(id, v); err != nil {
		return st, "", err
	}
	return st, current, nil
}

// parseHistory parses the optional day-level attendance list.
func parseHistory(id string, v cue.Value) ([]roster.AttendanceRecord, error) {
	histVal := v.LookupPath(cue.ParsePath("history"))
	if !histVal.Exists() {
		return nil, nil
	}

	iter, err := histVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var records []roster.AttendanceRecord
	for iter.Next() {
		entry := iter.Value()
		field := fmt.Sprintf("students.%s.history", id)

		date, err := parseDate(entry, field)
		if err != nil {
			return nil, err
		}
		status, err := parseRecordStatus(entry, field)
		if err != nil {
			return nil, err
		}
		records = append(records, roster.AttendanceRecord{Date: date, Status: status})
	}
	return records, nil
}

// parseSessionHistory parses the optional session-level attendance list.
func parseSessionHistory(id string, v cue.Value) ([]roster.SessionRecord, error) {
	histVal := v.LookupPath(cue.ParsePath("session_history"))
	if !histVal.Exists() {
		return nil, nil
	}

	iter, err := histVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var records []roster.SessionRecord
	for iter.Next() {
		entry := iter.Value()
		field := fmt.Sprintf("students.%s.session_history", id)

		date, err := parseDate(entry, field)
		if err != nil {
			return nil, err
		}
		sessionID, err := requiredString(entry, "session", field)
		if err != nil {
			return nil, err
		}
		status, err := parseRecordStatus(entry, field)
		if err != nil {
			return nil, err
		}
		records = append(records, roster.SessionRecord{
			Date:      date,
			SessionID: sessionID,
			Status:    status,
		})
	}
	return records, nil
}

// parseSessions parses the optional timetable. List order defines the
// 1-based session numbers queries may reference.
func parseSessions(v cue.Value) ([]roster.Session, error) {
	sessVal := v.LookupPath(cue.ParsePath("sessions"))
	if !sessVal.Exists() {
		return nil, nil
	}

	iter, err := sessVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var sessions []roster.Session
	for iter.Next() {
		entry := iter.Value()

		var sess roster.Session
		if sess.ID, err = requiredString(entry, "id", "sessions"); err != nil {
			return nil, err
		}
		if sess.Name, err = requiredString(entry, "name", "sessions"); err != nil {
			return nil, err
		}
		if sess.StartTime, err = requiredString(entry, "start", "sessions"); err != nil {
			return nil, err
		}
		if sess.EndTime, err = requiredString(entry, "end", "sessions"); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

func parseDate(v cue.Value, field string) (time.Time, error) {
	raw, err := requiredString(v, "date", field)
	if err != nil {
		return time.Time{}, err
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, &CompileError{
			Field:   field + ".date",
			Message: fmt.Sprintf("invalid date %q (want YYYY-MM-DD)", raw),
			Pos:     v.Pos(),
		}
	}
	return date, nil
}

func parseRecordStatus(v cue.Value, field string) (roster.Status, error) {
	raw, err := requiredString(v, "status", field)
	if err != nil {
		return "", err
	}
	status, ok := roster.ParseStatus(raw)
	if !ok {
		return "", &CompileError{
			Field:   field + ".status",
			Message: fmt.Sprintf("unknown status %q", raw),
			Pos:     v.Pos(),
		}
	}
	return status, nil
}

func requiredString(v cue.Value, path, field string) (string, error) {
	val := v.LookupPath(cue.ParsePath(path))
	if !val.Exists() {
		return "", &CompileError{
			Field:   field + "." + path,
			Message: path + " is required",
			Pos:     v.Pos(),
		}
	}
	str, err := val.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return str, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
