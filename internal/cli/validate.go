package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationIssue is one problem found in a roster directory.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Files    int               `json:"files"`
	Students int               `json:"students"`
	Sessions int               `json:"sessions"`
	Issues   []ValidationIssue `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <roster-dir>",
		Short: "Validate a CUE roster directory",
		Long: `Validate CUE roster definitions without running any query.

Checks that the directory loads, that a roster struct exists, and that
every student, session and attendance record is well formed. Errors
carry source positions where CUE provides them.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd, args[0])
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command, dir string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	result, err := LoadRoster(dir)
	if err != nil {
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "load roster", err)
		}

		// Path-level problems are command errors; content problems are
		// validation failures.
		if result == nil {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
			return NewExitError(ExitCommandError, loadErr.Error())
		}

		issue := ValidationIssue{Code: loadErr.Code, Message: loadErr.Message}
		if loadErr.Pos.IsValid() {
			issue.File = loadErr.Pos.Filename()
			issue.Line = loadErr.Pos.Line()
		}
		return outputValidationFailure(formatter, result.FileCount, issue)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", result.FileCount, dir)

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{
			Valid:    true,
			Files:    result.FileCount,
			Students: len(result.Snapshot.Students),
			Sessions: len(result.Snapshot.Sessions),
		})
	}
	fmt.Fprintf(formatter.Writer, "✓ Roster valid: %d student(s), %d session(s) in %d file(s)\n",
		len(result.Snapshot.Students), len(result.Snapshot.Sessions), result.FileCount)
	return nil
}

func outputValidationFailure(formatter *OutputFormatter, files int, issue ValidationIssue) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Files:  files,
				Issues: []ValidationIssue{issue},
			},
			Error: &CLIError{Code: issue.Code, Message: issue.Message},
		}
		enc := json.NewEncoder(formatter.Writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", issue.Code, issue.Message))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	if issue.File != "" {
		fmt.Fprintf(formatter.Writer, "  %s:%d\n", issue.File, issue.Line)
	}
	fmt.Fprintf(formatter.Writer, "  %s: %s\n", issue.Code, issue.Message)
	return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", issue.Code, issue.Message))
}
