package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeRosterCUE drops a valid CUE roster into a fresh temp dir.
func writeRosterCUE(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	src := `
package test

roster: {
	sessions: [
		{ id: "sess1", name: "Morning Yoga", start: "09:00", end: "10:00" },
		{ id: "sess2", name: "Calculus", start: "10:15", end: "11:15" },
	]

	students: {
		s1: {
			student_id: "UX23001"
			name:       "Aarav Patel"
			email:      "aarav@example.edu"
			current_status: "present"
			history: [
				{ date: "2024-03-11", status: "present" },
				{ date: "2024-03-12", status: "absent" },
			]
		}
		s2: {
			student_id: "UX23002"
			name:       "Diya Sharma"
			history: [
				{ date: "2024-03-11", status: "medical" },
			]
		}
	}
}
`
	err := os.WriteFile(filepath.Join(dir, "roster.cue"), []byte(src), 0644)
	require.NoError(t, err)
	return dir
}

func TestValidateValidRoster(t *testing.T) {
	dir := writeRosterCUE(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "✓ Roster valid")
	assert.Contains(t, output, "2 student(s)")
	assert.Contains(t, output, "2 session(s)")
}

func TestValidateValidRosterJSON(t *testing.T) {
	dir := writeRosterCUE(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
}

func TestValidateNonExistentDirectory(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/directory/path"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E005") // ErrCodeNotFound
	assert.Contains(t, buf.String(), "not found")
}

func TestValidateEmptyDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E003")
	assert.Contains(t, buf.String(), "no CUE files found")
}

func TestValidateUnknownStatus(t *testing.T) {
	tmpDir := t.TempDir()

	invalid := `
package test

roster: students: s1: {
	student_id: "UX23001"
	name:       "Aarav Patel"
	history: [{ date: "2024-03-11", status: "tardy" }]
}
`
	err := os.WriteFile(filepath.Join(tmpDir, "bad.cue"), []byte(invalid), 0644)
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err = cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "Validation failed")
	assert.Contains(t, buf.String(), "tardy")
}

func TestValidateMissingRosterStruct(t *testing.T) {
	tmpDir := t.TempDir()

	err := os.WriteFile(filepath.Join(tmpDir, "other.cue"), []byte("package test\n\nfoo: 1\n"), 0644)
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err = cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, buf.String(), "no roster struct")
}
