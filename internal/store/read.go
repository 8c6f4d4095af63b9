package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/rollcall/internal/roster"
)

const dateLayout = "2006-01-02"

// LoadSnapshot reads the full roster into memory as one consistent
// snapshot for query evaluation. Students order by student_id, sessions
// by timetable position (which defines the 1-based session numbers
// queries may reference), records by date.
func (s *Store) LoadSnapshot(ctx context.Context) (roster.Snapshot, error) {
	snap := roster.Snapshot{Current: make(map[string]roster.Status)}

	students, err := s.loadStudents(ctx, &snap)
	if err != nil {
		return roster.Snapshot{}, err
	}
	snap.Students = students

	if snap.Sessions, err = s.loadSessions(ctx); err != nil {
		return roster.Snapshot{}, err
	}
	if err := s.loadRecords(ctx, &snap); err != nil {
		return roster.Snapshot{}, err
	}
	return snap, nil
}

func (s *Store) loadStudents(ctx context.Context, snap *roster.Snapshot) ([]roster.Student, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, student_id, name, email, current_status
		FROM students
		ORDER BY student_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	var students []roster.Student
	for rows.Next() {
		var st roster.Student
		var current string
		if err := rows.Scan(&st.ID, &st.StudentID, &st.Name, &st.Email, &current); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		if status, ok := roster.ParseStatus(current); ok {
			snap.Current[st.ID] = status
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

func (s *Store) loadSessions(ctx context.Context) ([]roster.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, start_time, end_time
		FROM sessions
		ORDER BY position, start_time
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []roster.Session
	for rows.Next() {
		var sess roster.Session
		if err := rows.Scan(&sess.ID, &sess.Name, &sess.StartTime, &sess.EndTime); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *Store) loadRecords(ctx context.Context, snap *roster.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT student_id, record_date, session_id, status
		FROM attendance_records
		ORDER BY record_date
	`)
	if err != nil {
		return fmt.Errorf("query attendance records: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*roster.Student, len(snap.Students))
	for i := range snap.Students {
		byID[snap.Students[i].ID] = &snap.Students[i]
	}

	for rows.Next() {
		var studentID, rawDate, rawStatus string
		var sessionID sql.NullString
		if err := rows.Scan(&studentID, &rawDate, &sessionID, &rawStatus); err != nil {
			return fmt.Errorf("scan attendance record: %w", err)
		}

		st, ok := byID[studentID]
		if !ok {
			return fmt.Errorf("attendance record references unknown student %q", studentID)
		}
		date, err := time.Parse(dateLayout, rawDate)
		if err != nil {
			return fmt.Errorf("attendance record for %q: %w", studentID, err)
		}
		status, ok := roster.ParseStatus(rawStatus)
		if !ok {
			return fmt.Errorf("attendance record for %q: unknown status %q", studentID, rawStatus)
		}

		if sessionID.Valid {
			st.SessionHistory = append(st.SessionHistory, roster.SessionRecord{
				Date:      date,
				SessionID: sessionID.String,
				Status:    status,
			})
		} else {
			st.History = append(st.History, roster.AttendanceRecord{
				Date:   date,
				Status: status,
			})
		}
	}
	return rows.Err()
}
