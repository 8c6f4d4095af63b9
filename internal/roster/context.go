package roster

import (
	"math"
	"strings"
	"time"

	"github.com/roach88/rollcall/internal/fuzzy"
	"github.com/roach88/rollcall/internal/query"
)

// Context is the read-only facade one query evaluates against. It wraps
// a Snapshot without copying and exposes the per-field filter
// primitives the executor dispatches to. Construct one per query
// invocation; it owns no data.
type Context struct {
	snap Snapshot
}

// NewContext wraps a snapshot for one query evaluation.
func NewContext(snap Snapshot) *Context {
	return &Context{snap: snap}
}

// Students returns the full student set of the snapshot.
func (c *Context) Students() []Student { return c.snap.Students }

// Sessions returns the full session set of the snapshot.
func (c *Context) Sessions() []Session { return c.snap.Sessions }

// CurrentStatus returns the live status of a student, if one is set.
func (c *Context) CurrentStatus(id string) (Status, bool) {
	st, ok := c.snap.Current[id]
	return st, ok
}

// FindStudent resolves a single student by identifier or name: exact ID,
// StudentID or name first (case-insensitive), then prefix, substring and
// finally character-subsequence matching of the name when fuzzy is set.
// At most one student is returned.
func (c *Context) FindStudent(ref string, fuzzyMatch bool) (Student, bool) {
	for _, s := range c.snap.Students {
		if strings.EqualFold(s.ID, ref) || strings.EqualFold(s.StudentID, ref) || strings.EqualFold(s.Name, ref) {
			return s, true
		}
	}
	if !fuzzyMatch {
		return Student{}, false
	}
	q := fuzzy.Normalize(ref)
	if q == "" {
		return Student{}, false
	}
	for _, s := range c.snap.Students {
		if strings.HasPrefix(fuzzy.Normalize(s.Name), q) {
			return s, true
		}
	}
	for _, s := range c.snap.Students {
		if strings.Contains(fuzzy.Normalize(s.Name), q) {
			return s, true
		}
	}
	for _, s := range c.snap.Students {
		if fuzzy.Subsequence(q, s.Name) {
			return s, true
		}
	}
	return Student{}, false
}

// StudentsByName implements the student field's equals semantics: every
// student whose ID, StudentID or name matches exactly, falling back to a
// single fuzzy name match when nothing matches exactly.
func (c *Context) StudentsByName(value string) []Student {
	var out []Student
	for _, s := range c.snap.Students {
		if strings.EqualFold(s.ID, value) || strings.EqualFold(s.StudentID, value) || strings.EqualFold(s.Name, value) {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		if s, ok := c.FindStudent(value, true); ok {
			out = append(out, s)
		}
	}
	return out
}

// StudentsByNameContains matches a substring over name or identifier.
func (c *Context) StudentsByNameContains(value string) []Student {
	q := fuzzy.Normalize(value)
	var out []Student
	for _, s := range c.snap.Students {
		if strings.Contains(fuzzy.Normalize(s.Name), q) ||
			strings.Contains(strings.ToLower(s.ID), q) ||
			strings.Contains(strings.ToLower(s.StudentID), q) {
			out = append(out, s)
		}
	}
	return out
}

// StudentsByText matches a free-text fragment over name, email and both
// identifiers. Used by text-search execution.
func (c *Context) StudentsByText(value string) []Student {
	q := fuzzy.Normalize(value)
	if q == "" {
		return nil
	}
	var out []Student
	for _, s := range c.snap.Students {
		if strings.Contains(fuzzy.Normalize(s.Name), q) ||
			strings.Contains(strings.ToLower(s.Email), q) ||
			strings.Contains(strings.ToLower(s.ID), q) ||
			strings.Contains(strings.ToLower(s.StudentID), q) {
			out = append(out, s)
		}
	}
	return out
}

// StudentsByEmailEquals matches the full email when the value carries a
// domain separator, and degrades to substring matching otherwise, so
// "email:jlu.edu.in" finds every student at that domain.
func (c *Context) StudentsByEmailEquals(value string) []Student {
	if strings.Contains(value, "@") {
		var out []Student
		for _, s := range c.snap.Students {
			if strings.EqualFold(s.Email, value) {
				out = append(out, s)
			}
		}
		return out
	}
	return c.StudentsByEmailContains(value)
}

// StudentsByEmailContains matches a substring anywhere in the email.
func (c *Context) StudentsByEmailContains(value string) []Student {
	q := strings.ToLower(value)
	var out []Student
	for _, s := range c.snap.Students {
		if strings.Contains(strings.ToLower(s.Email), q) {
			out = append(out, s)
		}
	}
	return out
}

// SessionByNumber looks up a session by its 1-based timetable position.
func (c *Context) SessionByNumber(n int) (Session, bool) {
	if n < 1 || n > len(c.snap.Sessions) {
		return Session{}, false
	}
	return c.snap.Sessions[n-1], true
}

// SessionsByName matches a substring over session names.
func (c *Context) SessionsByName(value string) []Session {
	q := fuzzy.Normalize(value)
	var out []Session
	for _, s := range c.snap.Sessions {
		if strings.Contains(fuzzy.Normalize(s.Name), q) {
			out = append(out, s)
		}
	}
	return out
}

// StudentsByStatus matches a student whose live status OR any historical
// record (day-level or session-level) equals the target. History is OR'd
// with the live status, never intersected: a student marked present
// today still matches status:absent if any past record was absent.
func (c *Context) StudentsByStatus(target Status) []Student {
	var out []Student
	for _, s := range c.snap.Students {
		if c.hasStatus(s, target) {
			out = append(out, s)
		}
	}
	return out
}

func (c *Context) hasStatus(s Student, target Status) bool {
	if st, ok := c.snap.Current[s.ID]; ok && st == target {
		return true
	}
	for _, rec := range s.History {
		if rec.Status == target {
			return true
		}
	}
	for _, rec := range s.SessionHistory {
		if rec.Status == target {
			return true
		}
	}
	return false
}

// AttendancePercent computes a student's attendance percentage over the
// whole history: round(100 * attended / total), where medical counts as
// attended. A student with zero historical records has percentage 0.
//
// Recomputed on every call; at classroom scale (tens to low hundreds of
// students) caching buys nothing.
func (c *Context) AttendancePercent(s Student) int {
	return c.AttendancePercentBetween(s, time.Time{}, time.Time{})
}

// AttendancePercentBetween computes the percentage over records within
// [from, to]. A zero bound is open on that side.
func (c *Context) AttendancePercentBetween(s Student, from, to time.Time) int {
	total := 0
	attended := 0
	for _, rec := range s.History {
		if !from.IsZero() && rec.Date.Before(from) {
			continue
		}
		if !to.IsZero() && rec.Date.After(to) {
			continue
		}
		total++
		if rec.Status.Counted() {
			attended++
		}
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(attended) / float64(total)))
}

// StudentsByAttendance compares each student's computed percentage
// against target. Equality is tolerance-based (±0.1) on the computed
// percentage; ordered comparisons are strict or inclusive as given.
func (c *Context) StudentsByAttendance(op query.Operator, target float64) []Student {
	var out []Student
	for _, s := range c.snap.Students {
		pct := float64(c.AttendancePercent(s))
		keep := false
		switch op {
		case query.OpEquals:
			keep = math.Abs(pct-target) <= 0.1
		case query.OpNotEquals:
			keep = math.Abs(pct-target) > 0.1
		case query.OpGreaterThan:
			keep = pct > target
		case query.OpGreaterEqual:
			keep = pct >= target
		case query.OpLessThan:
			keep = pct < target
		case query.OpLessEqual:
			keep = pct <= target
		}
		if keep {
			out = append(out, s)
		}
	}
	return out
}

// StudentsByDate compares each attendance record's date against a
// calendar day: equals matches students with a record on that exact day,
// ordered operators match any record before/after (or on-or-before /
// on-or-after) the day, and not_equals matches students with no record
// on that day.
func (c *Context) StudentsByDate(op query.Operator, day time.Time) []Student {
	var out []Student
	for _, s := range c.snap.Students {
		if studentMatchesDate(s, op, day) {
			out = append(out, s)
		}
	}
	return out
}

func studentMatchesDate(s Student, op query.Operator, day time.Time) bool {
	if op == query.OpNotEquals {
		for _, rec := range s.History {
			if sameDay(rec.Date, day) {
				return false
			}
		}
		return true
	}
	for _, rec := range s.History {
		match := false
		switch op {
		case query.OpEquals:
			match = sameDay(rec.Date, day)
		case query.OpGreaterThan:
			match = !sameDay(rec.Date, day) && rec.Date.After(day)
		case query.OpGreaterEqual:
			match = sameDay(rec.Date, day) || rec.Date.After(day)
		case query.OpLessThan:
			match = !sameDay(rec.Date, day) && rec.Date.Before(day)
		case query.OpLessEqual:
			match = sameDay(rec.Date, day) || rec.Date.Before(day)
		}
		if match {
			return true
		}
	}
	return false
}

// SessionsByTime compares session start times against an "HH:MM" value.
// Zero-padded time-of-day strings order correctly under lexicographic
// comparison, so no clock parsing is needed.
func (c *Context) SessionsByTime(op query.Operator, value string) []Session {
	var out []Session
	for _, s := range c.snap.Sessions {
		cmp := strings.Compare(s.StartTime, value)
		keep := false
		switch op {
		case query.OpEquals:
			keep = cmp == 0
		case query.OpNotEquals:
			keep = cmp != 0
		case query.OpGreaterThan:
			keep = cmp > 0
		case query.OpGreaterEqual:
			keep = cmp >= 0
		case query.OpLessThan:
			keep = cmp < 0
		case query.OpLessEqual:
			keep = cmp <= 0
		}
		if keep {
			out = append(out, s)
		}
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
