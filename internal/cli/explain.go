package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rollcall/internal/query"
)

// ExplainResult is the JSON payload of an explain command.
type ExplainResult struct {
	Query          string       `json:"query"`
	Tokens         []TokenRow   `json:"tokens"`
	Tree           string       `json:"tree,omitempty"`
	AdvancedSyntax bool         `json:"advanced_syntax"`
	Fallback       bool         `json:"fallback"`
	ParseError     *ParseErrRow `json:"parse_error,omitempty"`
}

// TokenRow is one token in CLI output.
type TokenRow struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Position int    `json:"position"`
}

// ParseErrRow carries parse error details in CLI output.
type ParseErrRow struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Position int    `json:"position"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <query>",
		Short: "Show how a query tokenizes and parses",
		Long: `Show the token stream and parse tree for a query without running it.

Useful for understanding why a query matched (or did not): whether it
took the structured path or fell back to fuzzy text matching, and how
operators grouped.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(rootOpts, cmd, args[0])
		},
	}

	return cmd
}

func runExplain(opts *RootOptions, cmd *cobra.Command, raw string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	result := ExplainResult{Query: raw}
	for _, tok := range query.Tokenize(raw) {
		if tok.Type == query.TokenEOF {
			continue
		}
		result.Tokens = append(result.Tokens, TokenRow{
			Type:     tok.Type.String(),
			Value:    tok.Value,
			Position: tok.Position,
		})
	}

	ast, err := query.Parse(raw)
	if err != nil {
		result.Fallback = true
		var perr *query.ParseError
		if errors.As(err, &perr) {
			result.ParseError = &ParseErrRow{
				Code:     string(perr.Code),
				Message:  perr.Message,
				Position: perr.Position,
			}
		} else {
			result.ParseError = &ParseErrRow{Code: string(query.ErrCodeUnexpectedToken), Message: err.Error()}
		}
	} else {
		result.AdvancedSyntax = ast.HasAdvancedSyntax
		result.Tree = nodeTreeString(ast)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Query: %s\n\n", raw)
	fmt.Fprintln(w, "Tokens:")
	for _, tok := range result.Tokens {
		fmt.Fprintf(w, "  %-14s %-20q @%d\n", tok.Type, tok.Value, tok.Position)
	}
	fmt.Fprintln(w)

	if result.Fallback {
		fmt.Fprintf(w, "Parse error [%s] at %d: %s\n", result.ParseError.Code, result.ParseError.Position, result.ParseError.Message)
		fmt.Fprintln(w, "Query would fall back to fuzzy text search.")
		return nil
	}

	if result.AdvancedSyntax {
		fmt.Fprintln(w, "Structured query.")
	} else {
		fmt.Fprintln(w, "Plain text query.")
	}
	fmt.Fprintln(w, "Tree:")
	fmt.Fprintln(w, indentTree(result.Tree))
	return nil
}

func nodeTreeString(ast *query.AST) string {
	switch node := ast.Root.(type) {
	case *query.FilterNode:
		return node.String()
	case *query.StudentRefNode:
		return node.String()
	case *query.CompoundNode:
		return node.String()
	case *query.TextSearchNode:
		return node.String()
	default:
		return "<empty>"
	}
}

func indentTree(tree string) string {
	return "  " + strings.ReplaceAll(tree, "\n", "\n  ")
}
