package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rollcall/internal/roster"
	"github.com/roach88/rollcall/internal/store"
)

const rosterYAML = `
sessions:
  - id: sess1
    name: Morning Yoga
    start: "09:00"
    end: "10:00"

students:
  - student_id: UX23001
    name: Aarav Patel
    email: aarav@example.edu
    current_status: present
    history:
      - date: "2024-03-11"
        status: present
      - date: "2024-03-12"
        status: absent
    session_history:
      - date: "2024-03-12"
        session: sess1
        status: present
  - student_id: UX23002
    name: Diya Sharma
`

func TestImportRoundtrip(t *testing.T) {
	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "roster.yaml")
	dbPath := filepath.Join(tmpDir, "roster.db")
	require.NoError(t, os.WriteFile(yamlPath, []byte(rosterYAML), 0644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewImportCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{yamlPath, "--db", dbPath})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Imported 2 student(s) and 1 session(s)")

	s, err := store.Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	snap, err := s.LoadSnapshot(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Students, 2)
	aarav := snap.Students[0]
	assert.Equal(t, "UX23001", aarav.StudentID)
	// No explicit internal id in the file: student_id doubles as id.
	assert.Equal(t, "UX23001", aarav.ID)
	assert.Len(t, aarav.History, 2)
	assert.Len(t, aarav.SessionHistory, 1)
	assert.Equal(t, roster.StatusPresent, snap.Current["UX23001"])

	require.Len(t, snap.Sessions, 1)
	assert.Equal(t, "Morning Yoga", snap.Sessions[0].Name)
}

func TestImportMissingFile(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewImportCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/roster.yaml", "--db", filepath.Join(t.TempDir(), "roster.db")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestImportMalformedYAML(t *testing.T) {
	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "roster.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("students: [unclosed"), 0644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewImportCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{yamlPath, "--db", filepath.Join(tmpDir, "roster.db")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "E105")
}

func TestImportUnknownStatus(t *testing.T) {
	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "roster.yaml")
	bad := `
students:
  - student_id: UX23001
    name: Aarav Patel
    history:
      - date: "2024-03-11"
        status: tardy
`
	require.NoError(t, os.WriteFile(yamlPath, []byte(bad), 0644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewImportCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{yamlPath, "--db", filepath.Join(tmpDir, "roster.db")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "tardy")
}
