package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rollcall/internal/engine"
	"github.com/roach88/rollcall/internal/roster"
	"github.com/roach88/rollcall/internal/search"
	"github.com/roach88/rollcall/internal/store"
)

// SearchResult is the JSON payload of a search command.
type SearchResult struct {
	Query    string       `json:"query"`
	Students []StudentRow `json:"students,omitempty"`
	Sessions []SessionRow `json:"sessions,omitempty"`
	Commands []CommandRow `json:"commands,omitempty"`
	Metadata MetadataRow  `json:"metadata"`
}

// MetadataRow mirrors engine.Metadata for JSON output.
type MetadataRow struct {
	MatchCount      int      `json:"match_count"`
	ExecutionTimeMs int64    `json:"execution_time_ms"`
	AppliedFilters  []string `json:"applied_filters,omitempty"`
}

// StudentRow is one student in CLI output.
type StudentRow struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Status    string `json:"status,omitempty"`
}

// SessionRow is one session in CLI output.
type SessionRow struct {
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// CommandRow is one palette command in CLI output.
type CommandRow struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string
	var specsDir string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a query against the roster",
		Long: `Run a structured query against the roster and print the matches.

Queries mix field filters (status:absent, attendance:<75%, session:2),
student references (@name) and boolean operators (AND, OR, NOT).
Anything that does not parse falls back to fuzzy text matching, so
plain text always works.

The roster comes from a SQLite database (--db) or a CUE directory
(--specs).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(rootOpts, cmd, args[0], dbPath, specsDir, limit)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "path to roster SQLite database")
	cmd.Flags().StringVar(&specsDir, "specs", "", "path to CUE roster directory")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results per section (0 = unlimited)")

	return cmd
}

func runSearch(opts *RootOptions, cmd *cobra.Command, query, dbPath, specsDir string, limit int) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	snap, err := loadSnapshot(formatter, dbPath, specsDir)
	if err != nil {
		return err
	}

	eng := search.New()
	res, err := eng.Search(query, snap, limit)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "search failed", err)
	}

	return outputSearchResult(formatter, query, snap, res)
}

// loadSnapshot resolves the roster source flags. Exactly one of --db
// and --specs must be given.
func loadSnapshot(formatter *OutputFormatter, dbPath, specsDir string) (roster.Snapshot, error) {
	switch {
	case dbPath != "" && specsDir != "":
		msg := "both --db and --specs given; pick one roster source"
		_ = formatter.Error(ErrCodeGeneric, msg, nil)
		return roster.Snapshot{}, NewExitError(ExitCommandError, msg)
	case dbPath != "":
		s, err := store.Open(dbPath)
		if err != nil {
			_ = formatter.Error(ErrCodeDBFailed, err.Error(), nil)
			return roster.Snapshot{}, WrapExitError(ExitCommandError, "open database", err)
		}
		defer s.Close()
		snap, err := s.LoadSnapshot(context.Background())
		if err != nil {
			_ = formatter.Error(ErrCodeDBFailed, err.Error(), nil)
			return roster.Snapshot{}, WrapExitError(ExitCommandError, "load roster", err)
		}
		formatter.VerboseLog("Loaded %d student(s), %d session(s) from %s",
			len(snap.Students), len(snap.Sessions), dbPath)
		return snap, nil
	case specsDir != "":
		result, err := LoadRoster(specsDir)
		if err != nil {
			var loadErr *LoadError
			if errors.As(err, &loadErr) {
				_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
			} else {
				_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
			}
			return roster.Snapshot{}, WrapExitError(ExitCommandError, "load roster", err)
		}
		formatter.VerboseLog("Loaded %d student(s), %d session(s) from %d CUE file(s)",
			len(result.Snapshot.Students), len(result.Snapshot.Sessions), result.FileCount)
		return result.Snapshot, nil
	default:
		msg := "no roster source: pass --db or --specs"
		_ = formatter.Error(ErrCodeNotFound, msg, nil)
		return roster.Snapshot{}, NewExitError(ExitCommandError, msg)
	}
}

func outputSearchResult(formatter *OutputFormatter, query string, snap roster.Snapshot, res *engine.Result) error {
	if formatter.Format == "json" {
		payload := SearchResult{
			Query: query,
			Metadata: MetadataRow{
				MatchCount:      res.Metadata.MatchCount,
				ExecutionTimeMs: res.Metadata.ExecutionTimeMs,
				AppliedFilters:  res.Metadata.AppliedFilters,
			},
		}
		for _, st := range res.Students {
			payload.Students = append(payload.Students, StudentRow{
				StudentID: st.StudentID,
				Name:      st.Name,
				Email:     st.Email,
				Status:    string(snap.Current[st.ID]),
			})
		}
		for _, sess := range res.Sessions {
			payload.Sessions = append(payload.Sessions, SessionRow{
				Name:  sess.Name,
				Start: sess.StartTime,
				End:   sess.EndTime,
			})
		}
		for _, cmd := range res.Commands {
			payload.Commands = append(payload.Commands, CommandRow{ID: cmd.ID, Label: cmd.Label})
		}
		return formatter.Success(payload)
	}

	w := formatter.Writer
	if res.Metadata.MatchCount == 0 && len(res.Commands) == 0 {
		fmt.Fprintln(w, "No matches.")
		return nil
	}

	if len(res.Students) > 0 {
		fmt.Fprintf(w, "Students (%d):\n", len(res.Students))
		for _, st := range res.Students {
			line := fmt.Sprintf("  %-10s %s", st.StudentID, st.Name)
			if status, ok := snap.Current[st.ID]; ok {
				line += fmt.Sprintf("  [%s]", status)
			}
			fmt.Fprintln(w, line)
		}
	}
	if len(res.Sessions) > 0 {
		fmt.Fprintf(w, "Sessions (%d):\n", len(res.Sessions))
		for _, sess := range res.Sessions {
			fmt.Fprintf(w, "  %s-%s  %s\n", sess.StartTime, sess.EndTime, sess.Name)
		}
	}
	if len(res.Commands) > 0 {
		fmt.Fprintf(w, "Commands (%d):\n", len(res.Commands))
		for _, cmd := range res.Commands {
			fmt.Fprintf(w, "  %s\n", cmd.Label)
		}
	}
	if len(res.Metadata.AppliedFilters) > 0 {
		formatter.VerboseLog("Filters: %v (%dms)", res.Metadata.AppliedFilters, res.Metadata.ExecutionTimeMs)
	}
	return nil
}
