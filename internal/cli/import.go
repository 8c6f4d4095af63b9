package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/rollcall/internal/roster"
	"github.com/roach88/rollcall/internal/store"
)

// yamlRoster is the on-disk YAML roster format accepted by import.
type yamlRoster struct {
	Students []yamlStudent `yaml:"students"`
	Sessions []yamlSession `yaml:"sessions"`
}

type yamlStudent struct {
	ID             string       `yaml:"id"`
	StudentID      string       `yaml:"student_id"`
	Name           string       `yaml:"name"`
	Email          string       `yaml:"email"`
	CurrentStatus  string       `yaml:"current_status"`
	History        []yamlRecord `yaml:"history"`
	SessionHistory []yamlRecord `yaml:"session_history"`
}

type yamlRecord struct {
	Date    string `yaml:"date"`
	Session string `yaml:"session"`
	Status  string `yaml:"status"`
}

type yamlSession struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// ImportResult is the JSON payload of an import command.
type ImportResult struct {
	Students int    `json:"students"`
	Sessions int    `json:"sessions"`
	Database string `json:"database"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "import <roster.yaml>",
		Short: "Import a YAML roster into the database",
		Long: `Import a YAML roster file into a SQLite roster database.

The import replaces the database contents with the file's. Dates are
YYYY-MM-DD; statuses are present, absent or medical.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, cmd, args[0], dbPath)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "roster.db", "path to roster SQLite database")

	return cmd
}

func runImport(opts *RootOptions, cmd *cobra.Command, path, dbPath string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "read roster file", err)
	}

	var doc yamlRoster
	if err := yaml.Unmarshal(data, &doc); err != nil {
		_ = formatter.Error(ErrCodeYAMLMalformed, err.Error(), nil)
		return WrapExitError(ExitFailure, "parse roster file", err)
	}

	snap, err := snapshotFromYAML(doc)
	if err != nil {
		_ = formatter.Error(ErrCodeYAMLMalformed, err.Error(), nil)
		return WrapExitError(ExitFailure, "invalid roster", err)
	}
	formatter.VerboseLog("Parsed %d student(s), %d session(s) from %s",
		len(snap.Students), len(snap.Sessions), path)

	s, err := store.Open(dbPath)
	if err != nil {
		_ = formatter.Error(ErrCodeDBFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open database", err)
	}
	defer s.Close()

	if err := s.Seed(context.Background(), snap); err != nil {
		_ = formatter.Error(ErrCodeDBFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "seed database", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ImportResult{
			Students: len(snap.Students),
			Sessions: len(snap.Sessions),
			Database: dbPath,
		})
	}
	fmt.Fprintf(formatter.Writer, "Imported %d student(s) and %d session(s) into %s\n",
		len(snap.Students), len(snap.Sessions), dbPath)
	return nil
}

// snapshotFromYAML validates and converts the YAML document. Students
// without an explicit id get their student_id as internal id.
func snapshotFromYAML(doc yamlRoster) (roster.Snapshot, error) {
	snap := roster.Snapshot{Current: make(map[string]roster.Status)}

	for _, ys := range doc.Sessions {
		if ys.ID == "" || ys.Name == "" {
			return snap, fmt.Errorf("session %q: id and name are required", ys.Name)
		}
		snap.Sessions = append(snap.Sessions, roster.Session{
			ID:        ys.ID,
			Name:      ys.Name,
			StartTime: ys.Start,
			EndTime:   ys.End,
		})
	}

	for _, ys := range doc.Students {
		if ys.StudentID == "" || ys.Name == "" {
			return snap, fmt.Errorf("student %q: student_id and name are required", ys.Name)
		}
		st := roster.Student{
			ID:        ys.ID,
			StudentID: ys.StudentID,
			Name:      ys.Name,
			Email:     ys.Email,
		}
		if st.ID == "" {
			st.ID = ys.StudentID
		}

		if ys.CurrentStatus != "" {
			status, ok := roster.ParseStatus(ys.CurrentStatus)
			if !ok {
				return snap, fmt.Errorf("student %q: unknown status %q", ys.Name, ys.CurrentStatus)
			}
			snap.Current[st.ID] = status
		}

		for _, rec := range ys.History {
			date, status, err := parseYAMLRecord(rec, ys.Name)
			if err != nil {
				return snap, err
			}
			st.History = append(st.History, roster.AttendanceRecord{Date: date, Status: status})
		}
		for _, rec := range ys.SessionHistory {
			date, status, err := parseYAMLRecord(rec, ys.Name)
			if err != nil {
				return snap, err
			}
			if rec.Session == "" {
				return snap, fmt.Errorf("student %q: session_history entry missing session", ys.Name)
			}
			st.SessionHistory = append(st.SessionHistory, roster.SessionRecord{
				Date:      date,
				SessionID: rec.Session,
				Status:    status,
			})
		}

		snap.Students = append(snap.Students, st)
	}

	return snap, nil
}

func parseYAMLRecord(rec yamlRecord, student string) (time.Time, roster.Status, error) {
	date, err := time.Parse("2006-01-02", rec.Date)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("student %q: invalid date %q (want YYYY-MM-DD)", student, rec.Date)
	}
	status, ok := roster.ParseStatus(rec.Status)
	if !ok {
		return time.Time{}, "", fmt.Errorf("student %q: unknown status %q", student, rec.Status)
	}
	return date, status, nil
}
