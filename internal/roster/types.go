package roster

import (
	"strings"
	"time"
)

// Status is one attendance outcome.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusMedical Status = "medical"
)

// ParseStatus maps a raw string to a Status, case-insensitively.
func ParseStatus(raw string) (Status, bool) {
	switch Status(strings.ToLower(raw)) {
	case StatusPresent, StatusAbsent, StatusMedical:
		return Status(strings.ToLower(raw)), true
	}
	return "", false
}

// Counted reports whether the status counts toward the attendance
// percentage. Medical absences count as attended.
func (s Status) Counted() bool {
	return s == StatusPresent || s == StatusMedical
}

// AttendanceRecord is one day-level attendance outcome for a student.
type AttendanceRecord struct {
	Date   time.Time
	Status Status
}

// SessionRecord is one session-level attendance outcome for a student.
type SessionRecord struct {
	Date      time.Time
	SessionID string
	Status    Status
}

// Student is a read-only roster entry. ID is the internal identity used
// for set algebra; StudentID is the institution-issued identifier
// (e.g. "UX23001") that queries may reference.
type Student struct {
	ID             string
	StudentID      string
	Name           string
	Email          string
	History        []AttendanceRecord
	SessionHistory []SessionRecord
}

// Session is a timetable slot. Start and end are local time-of-day
// strings in "HH:MM" form, which compare correctly as plain strings.
type Session struct {
	ID        string
	Name      string
	StartTime string
	EndTime   string
}

// Snapshot is the caller-supplied dataset one query evaluates against.
// The engine wraps it without copying: the caller must not mutate it
// while a query is mid-execution. Current carries the live status of the
// day, keyed by Student.ID; students without an entry have no live
// status yet.
type Snapshot struct {
	Students []Student
	Sessions []Session
	Current  map[string]Status
}
