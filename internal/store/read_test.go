package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/rollcall/internal/roster"
)

func testSnapshot() roster.Snapshot {
	day := func(s string) time.Time {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			panic(err)
		}
		return d
	}
	return roster.Snapshot{
		Students: []roster.Student{
			{
				ID:        "s1",
				StudentID: "UX23001",
				Name:      "Aarav Patel",
				Email:     "aarav@example.edu",
				History: []roster.AttendanceRecord{
					{Date: day("2024-03-11"), Status: roster.StatusPresent},
					{Date: day("2024-03-12"), Status: roster.StatusAbsent},
				},
				SessionHistory: []roster.SessionRecord{
					{Date: day("2024-03-12"), SessionID: "sess1", Status: roster.StatusPresent},
				},
			},
			{
				ID:        "s2",
				StudentID: "UX23002",
				Name:      "Diya Sharma",
				Email:     "diya@example.edu",
				History: []roster.AttendanceRecord{
					{Date: day("2024-03-11"), Status: roster.StatusMedical},
				},
			},
		},
		Sessions: []roster.Session{
			{ID: "sess1", Name: "Morning Yoga", StartTime: "09:00", EndTime: "10:00"},
			{ID: "sess2", Name: "Calculus", StartTime: "10:15", EndTime: "11:15"},
		},
		Current: map[string]roster.Status{
			"s1": roster.StatusPresent,
		},
	}
}

func openSeeded(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "roster.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.Seed(context.Background(), testSnapshot()); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}
	return s
}

func TestSeedLoadSnapshot_Roundtrip(t *testing.T) {
	s := openSeeded(t)

	snap, err := s.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("LoadSnapshot() failed: %v", err)
	}

	if len(snap.Students) != 2 {
		t.Fatalf("got %d students, want 2", len(snap.Students))
	}
	if snap.Students[0].StudentID != "UX23001" || snap.Students[1].StudentID != "UX23002" {
		t.Errorf("students not ordered by student_id: %q, %q",
			snap.Students[0].StudentID, snap.Students[1].StudentID)
	}

	aarav := snap.Students[0]
	if aarav.Name != "Aarav Patel" || aarav.Email != "aarav@example.edu" {
		t.Errorf("student fields not preserved: %+v", aarav)
	}
	if len(aarav.History) != 2 {
		t.Fatalf("got %d day records, want 2", len(aarav.History))
	}
	if aarav.History[0].Status != roster.StatusPresent || aarav.History[1].Status != roster.StatusAbsent {
		t.Errorf("day record statuses not preserved: %+v", aarav.History)
	}
	if len(aarav.SessionHistory) != 1 {
		t.Fatalf("got %d session records, want 1", len(aarav.SessionHistory))
	}
	if aarav.SessionHistory[0].SessionID != "sess1" {
		t.Errorf("session record SessionID = %q, want sess1", aarav.SessionHistory[0].SessionID)
	}
}

func TestLoadSnapshot_SessionOrderDefinesNumbers(t *testing.T) {
	s := openSeeded(t)

	snap, err := s.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("LoadSnapshot() failed: %v", err)
	}

	if len(snap.Sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(snap.Sessions))
	}
	// Seed writes sessions in slice order as positions 1..n; LoadSnapshot
	// must return them in that order so session:1 means the first slot.
	if snap.Sessions[0].ID != "sess1" || snap.Sessions[1].ID != "sess2" {
		t.Errorf("sessions not in timetable order: %q, %q",
			snap.Sessions[0].ID, snap.Sessions[1].ID)
	}
}

func TestLoadSnapshot_CurrentStatus(t *testing.T) {
	s := openSeeded(t)

	snap, err := s.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("LoadSnapshot() failed: %v", err)
	}

	if got := snap.Current["s1"]; got != roster.StatusPresent {
		t.Errorf("Current[s1] = %q, want present", got)
	}
	if _, ok := snap.Current["s2"]; ok {
		t.Error("s2 has no live status and should not appear in Current")
	}
}

func TestSeed_ReplacesExistingData(t *testing.T) {
	s := openSeeded(t)

	replacement := roster.Snapshot{
		Students: []roster.Student{
			{ID: "s9", StudentID: "UX23009", Name: "Rohan Mehta"},
		},
		Current: map[string]roster.Status{},
	}
	if err := s.Seed(context.Background(), replacement); err != nil {
		t.Fatalf("second Seed() failed: %v", err)
	}

	snap, err := s.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("LoadSnapshot() failed: %v", err)
	}
	if len(snap.Students) != 1 || snap.Students[0].ID != "s9" {
		t.Errorf("Seed did not replace existing data: %+v", snap.Students)
	}
	if len(snap.Sessions) != 0 {
		t.Errorf("old sessions survived reseed: %+v", snap.Sessions)
	}
}

func TestLoadSnapshot_RejectsUnknownStatus(t *testing.T) {
	s := openSeeded(t)

	_, err := s.db.Exec(
		`INSERT INTO attendance_records (student_id, record_date, session_id, status) VALUES ('s2', '2024-03-13', NULL, 'tardy')`,
	)
	if err != nil {
		t.Fatalf("failed to insert record: %v", err)
	}

	if _, err := s.LoadSnapshot(context.Background()); err == nil {
		t.Error("expected error for unknown status, got nil")
	}
}
