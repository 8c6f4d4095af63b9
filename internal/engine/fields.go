package engine

import (
	"math"

	"github.com/roach88/rollcall/internal/query"
	"github.com/roach88/rollcall/internal/roster"
)

// evalFilter dispatches a filter clause to its field handler. Each field
// supports a fixed operator set; anything outside it is a FieldError,
// which the search entry point recovers from by falling back to fuzzy
// text matching.
//
// not_equals is handled uniformly as the complement of equals within the
// field's entity dimension (sessions for session/time, students for the
// rest).
func (e *Executor) evalFilter(node *query.FilterNode) (*Result, error) {
	switch node.Field {
	case query.FieldStudent:
		return e.filterStudent(node)
	case query.FieldEmail:
		return e.filterEmail(node)
	case query.FieldSession:
		return e.filterSession(node)
	case query.FieldStatus:
		return e.filterStatus(node)
	case query.FieldAttendance:
		return e.filterAttendance(node)
	case query.FieldDate:
		return e.filterDate(node)
	case query.FieldTime:
		return e.filterTime(node)
	default:
		// Unknown fields fail at parse time; reaching this is a bug.
		return nil, &ExecutionError{Message: "filter on unvalidated field " + string(node.Field)}
	}
}

func (e *Executor) filterStudent(node *query.FilterNode) (*Result, error) {
	value := node.Value.String()
	switch node.Op {
	case query.OpEquals:
		return &Result{Students: e.rc.StudentsByName(value)}, nil
	case query.OpContains:
		return &Result{Students: e.rc.StudentsByNameContains(value)}, nil
	case query.OpNotEquals:
		return &Result{Students: complementStudents(e.rc.Students(), e.rc.StudentsByName(value))}, nil
	default:
		return nil, unsupportedComparison(node.Field, node.Op)
	}
}

func (e *Executor) filterEmail(node *query.FilterNode) (*Result, error) {
	value := node.Value.String()
	switch node.Op {
	case query.OpEquals:
		return &Result{Students: e.rc.StudentsByEmailEquals(value)}, nil
	case query.OpContains:
		return &Result{Students: e.rc.StudentsByEmailContains(value)}, nil
	case query.OpNotEquals:
		return &Result{Students: complementStudents(e.rc.Students(), e.rc.StudentsByEmailEquals(value))}, nil
	default:
		return nil, unsupportedComparison(node.Field, node.Op)
	}
}

// filterSession looks a session up by 1-based timetable number for
// numeric values, by name substring otherwise.
func (e *Executor) filterSession(node *query.FilterNode) (*Result, error) {
	if node.Op != query.OpEquals && node.Op != query.OpNotEquals {
		return nil, unsupportedComparison(node.Field, node.Op)
	}

	var matched []roster.Session
	if n, ok := node.Value.(query.NumberValue); ok {
		if s, found := e.rc.SessionByNumber(int(math.Round(float64(n)))); found {
			matched = []roster.Session{s}
		}
	} else {
		matched = e.rc.SessionsByName(node.Value.String())
	}

	if node.Op == query.OpNotEquals {
		return &Result{Sessions: complementSessions(e.rc.Sessions(), matched)}, nil
	}
	return &Result{Sessions: matched}, nil
}

func (e *Executor) filterStatus(node *query.FilterNode) (*Result, error) {
	if node.Op != query.OpEquals && node.Op != query.OpNotEquals {
		return nil, unsupportedComparison(node.Field, node.Op)
	}
	status, ok := roster.ParseStatus(node.Value.String())
	if !ok {
		return nil, &FieldError{
			Field:   node.Field,
			Op:      node.Op,
			Message: "status must be present, absent or medical",
		}
	}

	matched := e.rc.StudentsByStatus(status)
	if node.Op == query.OpNotEquals {
		return &Result{Students: complementStudents(e.rc.Students(), matched)}, nil
	}
	return &Result{Students: matched}, nil
}

func (e *Executor) filterAttendance(node *query.FilterNode) (*Result, error) {
	target, ok := node.Value.(query.NumberValue)
	if !ok {
		return nil, &FieldError{
			Field:   node.Field,
			Op:      node.Op,
			Message: "attendance requires a numeric percentage",
		}
	}
	if node.Op == query.OpContains {
		return nil, unsupportedComparison(node.Field, node.Op)
	}
	return &Result{Students: e.rc.StudentsByAttendance(node.Op, float64(target))}, nil
}

func (e *Executor) filterDate(node *query.FilterNode) (*Result, error) {
	day, ok := node.Value.(query.DateValue)
	if !ok {
		return nil, &FieldError{
			Field:   node.Field,
			Op:      node.Op,
			Message: "date requires a calendar day",
		}
	}
	if node.Op == query.OpContains {
		return nil, unsupportedComparison(node.Field, node.Op)
	}
	return &Result{Students: e.rc.StudentsByDate(node.Op, day.Time)}, nil
}

func (e *Executor) filterTime(node *query.FilterNode) (*Result, error) {
	if node.Op == query.OpContains {
		return nil, unsupportedComparison(node.Field, node.Op)
	}
	return &Result{Sessions: e.rc.SessionsByTime(node.Op, node.Value.String())}, nil
}
