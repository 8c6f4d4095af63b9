package roster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rollcall/internal/query"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testSnapshot() Snapshot {
	return Snapshot{
		Students: []Student{
			{
				ID: "s1", StudentID: "UX23001", Name: "Aarav Patel", Email: "aarav.patel@jlu.edu.in",
				History: []AttendanceRecord{
					{Date: day(2024, 1, 10), Status: StatusAbsent},
					{Date: day(2024, 1, 11), Status: StatusPresent},
					{Date: day(2024, 1, 12), Status: StatusPresent},
				},
			},
			{
				ID: "s2", StudentID: "UX23002", Name: "Diya Sharma", Email: "diya.sharma@gmail.com",
				History: []AttendanceRecord{
					{Date: day(2024, 1, 10), Status: StatusPresent},
					{Date: day(2024, 1, 11), Status: StatusMedical},
				},
			},
			{
				ID: "s3", StudentID: "UX23003", Name: "Rohan Mehta", Email: "rohan.mehta@jlu.edu.in",
			},
		},
		Sessions: []Session{
			{ID: "m1", Name: "Morning Block", StartTime: "09:00", EndTime: "10:15"},
			{ID: "m2", Name: "Studio", StartTime: "10:15", EndTime: "11:30"},
			{ID: "m3", Name: "Afternoon Lab", StartTime: "14:00", EndTime: "15:30"},
		},
		Current: map[string]Status{"s1": StatusPresent},
	}
}

func names(students []Student) []string {
	out := make([]string, len(students))
	for i, s := range students {
		out[i] = s.Name
	}
	return out
}

func TestFindStudent_ExactBeforeFuzzy(t *testing.T) {
	c := NewContext(testSnapshot())

	s, ok := c.FindStudent("UX23002", false)
	require.True(t, ok)
	assert.Equal(t, "Diya Sharma", s.Name)

	s, ok = c.FindStudent("aarav patel", false)
	require.True(t, ok)
	assert.Equal(t, "s1", s.ID)

	// Prefix works only on the fuzzy path.
	_, ok = c.FindStudent("Diya", false)
	assert.False(t, ok)
	s, ok = c.FindStudent("Diya", true)
	require.True(t, ok)
	assert.Equal(t, "s2", s.ID)
}

func TestFindStudent_SubsequenceFallback(t *testing.T) {
	c := NewContext(testSnapshot())
	s, ok := c.FindStudent("rhnm", true)
	require.True(t, ok)
	assert.Equal(t, "Rohan Mehta", s.Name)
}

func TestStudentsByEmail_ExactOnlyWithDomainSeparator(t *testing.T) {
	c := NewContext(testSnapshot())

	exact := c.StudentsByEmailEquals("aarav.patel@jlu.edu.in")
	assert.Equal(t, []string{"Aarav Patel"}, names(exact))

	// No '@' in the value degrades equals to substring matching.
	domain := c.StudentsByEmailEquals("jlu.edu.in")
	assert.Equal(t, []string{"Aarav Patel", "Rohan Mehta"}, names(domain))

	assert.Empty(t, c.StudentsByEmailEquals("patel@jlu.edu.in"))
}

func TestSessionByNumber_OneBased(t *testing.T) {
	c := NewContext(testSnapshot())

	s, ok := c.SessionByNumber(1)
	require.True(t, ok)
	assert.Equal(t, "Morning Block", s.Name)

	_, ok = c.SessionByNumber(0)
	assert.False(t, ok)
	_, ok = c.SessionByNumber(4)
	assert.False(t, ok)
}

func TestStudentsByStatus_HistoryOrCurrent(t *testing.T) {
	c := NewContext(testSnapshot())

	// Aarav is present today but has a historical absence: history is
	// OR'd with the live status, not intersected.
	absent := c.StudentsByStatus(StatusAbsent)
	assert.Equal(t, []string{"Aarav Patel"}, names(absent))

	medical := c.StudentsByStatus(StatusMedical)
	assert.Equal(t, []string{"Diya Sharma"}, names(medical))

	present := c.StudentsByStatus(StatusPresent)
	assert.Equal(t, []string{"Aarav Patel", "Diya Sharma"}, names(present))
}

func TestAttendancePercent(t *testing.T) {
	c := NewContext(testSnapshot())
	snap := c.Students()

	// Aarav: 2 of 3 attended -> 67 after rounding.
	assert.Equal(t, 67, c.AttendancePercent(snap[0]))
	// Diya: medical counts as attended -> 100.
	assert.Equal(t, 100, c.AttendancePercent(snap[1]))
	// Rohan: zero records -> 0.
	assert.Equal(t, 0, c.AttendancePercent(snap[2]))
}

func TestAttendancePercentBetween(t *testing.T) {
	c := NewContext(testSnapshot())
	aarav := c.Students()[0]

	// Only the absent day falls in range.
	assert.Equal(t, 0, c.AttendancePercentBetween(aarav, day(2024, 1, 10), day(2024, 1, 10)))
	// Open lower bound.
	assert.Equal(t, 50, c.AttendancePercentBetween(aarav, time.Time{}, day(2024, 1, 11)))
}

func TestStudentsByAttendance_ToleranceAndComparisons(t *testing.T) {
	c := NewContext(testSnapshot())

	eq := c.StudentsByAttendance(query.OpEquals, 67)
	assert.Equal(t, []string{"Aarav Patel"}, names(eq))

	// 66.95 is within the 0.1 tolerance of the computed 67.
	near := c.StudentsByAttendance(query.OpEquals, 66.95)
	assert.Equal(t, []string{"Aarav Patel"}, names(near))

	gt := c.StudentsByAttendance(query.OpGreaterThan, 67)
	assert.Equal(t, []string{"Diya Sharma"}, names(gt))

	ge := c.StudentsByAttendance(query.OpGreaterEqual, 67)
	assert.Equal(t, []string{"Aarav Patel", "Diya Sharma"}, names(ge))

	lt := c.StudentsByAttendance(query.OpLessThan, 50)
	assert.Equal(t, []string{"Rohan Mehta"}, names(lt))
}

func TestStudentsByDate(t *testing.T) {
	c := NewContext(testSnapshot())

	on := c.StudentsByDate(query.OpEquals, day(2024, 1, 12))
	assert.Equal(t, []string{"Aarav Patel"}, names(on))

	after := c.StudentsByDate(query.OpGreaterThan, day(2024, 1, 11))
	assert.Equal(t, []string{"Aarav Patel"}, names(after))

	onOrAfter := c.StudentsByDate(query.OpGreaterEqual, day(2024, 1, 11))
	assert.Equal(t, []string{"Aarav Patel", "Diya Sharma"}, names(onOrAfter))

	before := c.StudentsByDate(query.OpLessThan, day(2024, 1, 11))
	assert.Equal(t, []string{"Aarav Patel", "Diya Sharma"}, names(before))

	none := c.StudentsByDate(query.OpNotEquals, day(2024, 1, 12))
	assert.Equal(t, []string{"Diya Sharma", "Rohan Mehta"}, names(none))
}

func TestSessionsByTime_Lexicographic(t *testing.T) {
	c := NewContext(testSnapshot())

	exact := c.SessionsByTime(query.OpEquals, "10:15")
	require.Len(t, exact, 1)
	assert.Equal(t, "Studio", exact[0].Name)

	late := c.SessionsByTime(query.OpGreaterThan, "10:00")
	assert.Len(t, late, 2)

	early := c.SessionsByTime(query.OpLessEqual, "09:00")
	require.Len(t, early, 1)
	assert.Equal(t, "Morning Block", early[0].Name)
}

func TestStudentsByText(t *testing.T) {
	c := NewContext(testSnapshot())

	assert.Equal(t, []string{"Diya Sharma"}, names(c.StudentsByText("gmail")))
	assert.Equal(t, []string{"Rohan Mehta"}, names(c.StudentsByText("23003")))
	assert.Empty(t, c.StudentsByText(""))
}

func TestParseStatus(t *testing.T) {
	st, ok := ParseStatus("Absent")
	require.True(t, ok)
	assert.Equal(t, StatusAbsent, st)

	_, ok = ParseStatus("tardy")
	assert.False(t, ok)
}
