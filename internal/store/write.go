package store

import (
	"context"
	"fmt"

	"github.com/roach88/rollcall/internal/roster"
)

// Seed replaces the database contents with a snapshot, in one
// transaction. Used by the import command and by tests; the running
// dashboard writes through its own data-access layer.
func (s *Store) Seed(ctx context.Context, snap roster.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"attendance_records", "students", "sessions"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, sess := range snap.Sessions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sessions (id, name, start_time, end_time, position)
			VALUES (?, ?, ?, ?, ?)
		`, sess.ID, sess.Name, sess.StartTime, sess.EndTime, i+1)
		if err != nil {
			return fmt.Errorf("insert session %q: %w", sess.ID, err)
		}
	}

	for _, st := range snap.Students {
		current := ""
		if status, ok := snap.Current[st.ID]; ok {
			current = string(status)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO students (id, student_id, name, email, current_status)
			VALUES (?, ?, ?, ?, ?)
		`, st.ID, st.StudentID, st.Name, st.Email, current)
		if err != nil {
			return fmt.Errorf("insert student %q: %w", st.ID, err)
		}

		for _, rec := range st.History {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO attendance_records (student_id, record_date, session_id, status)
				VALUES (?, ?, NULL, ?)
			`, st.ID, rec.Date.Format(dateLayout), string(rec.Status))
			if err != nil {
				return fmt.Errorf("insert record for %q: %w", st.ID, err)
			}
		}
		for _, rec := range st.SessionHistory {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO attendance_records (student_id, record_date, session_id, status)
				VALUES (?, ?, ?, ?)
			`, st.ID, rec.Date.Format(dateLayout), rec.SessionID, string(rec.Status))
			if err != nil {
				return fmt.Errorf("insert session record for %q: %w", st.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}
