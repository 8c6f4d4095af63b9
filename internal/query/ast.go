package query

import (
	"fmt"
	"strings"
)

// Field identifies an attribute a filter clause can constrain.
type Field string

const (
	FieldStudent    Field = "student"
	FieldEmail      Field = "email"
	FieldSession    Field = "session"
	FieldStatus     Field = "status"
	FieldAttendance Field = "attendance"
	FieldDate       Field = "date"
	FieldTime       Field = "time"
)

// ParseField maps a raw field name to a known Field, case-insensitively.
// Unknown names are a parse-time error, reported by the caller.
func ParseField(raw string) (Field, bool) {
	switch Field(strings.ToLower(raw)) {
	case FieldStudent, FieldEmail, FieldSession, FieldStatus, FieldAttendance, FieldDate, FieldTime:
		return Field(strings.ToLower(raw)), true
	}
	return "", false
}

// Operator is the comparison applied by a filter clause.
type Operator string

const (
	OpEquals       Operator = "equals"
	OpContains     Operator = "contains"
	OpGreaterThan  Operator = "greater_than"
	OpLessThan     Operator = "less_than"
	OpGreaterEqual Operator = "greater_equal"
	OpLessEqual    Operator = "less_equal"
	OpNotEquals    Operator = "not_equals"
)

// BoolOp is a boolean combinator joining sub-expressions.
type BoolOp string

const (
	BoolAnd BoolOp = "AND"
	BoolOr  BoolOp = "OR"
	BoolNot BoolOp = "NOT"
)

// Node represents one query AST node.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in the executor.
//
// Node types:
//   - FilterNode: field:value clause with a comparison operator
//   - StudentRefNode: @name student shorthand
//   - CompoundNode: AND / OR / NOT combinator
//   - TextSearchNode: free text with no structured syntax
type Node interface {
	queryNode() // Marker method - seals interface to this package
}

var (
	_ Node = (*FilterNode)(nil)
	_ Node = (*StudentRefNode)(nil)
	_ Node = (*CompoundNode)(nil)
	_ Node = (*TextSearchNode)(nil)
)

// FilterNode constrains one field with one comparison operator and a
// coerced value. Field is always one of the seven supported fields;
// unknown names fail at parse time.
type FilterNode struct {
	Field Field
	Op    Operator
	Value Value
}

func (*FilterNode) queryNode() {}

// StudentRefNode is the @name shorthand for "find this specific student".
// Fuzzy permits subsequence name matching when no exact match exists.
type StudentRefNode struct {
	Name  string
	Fuzzy bool
}

func (*StudentRefNode) queryNode() {}

// CompoundNode joins one or two sub-expressions with a boolean operator.
// Right is nil if and only if Op is NOT.
type CompoundNode struct {
	Op    BoolOp
	Left  Node
	Right Node
}

func (*CompoundNode) queryNode() {}

// TextSearchNode carries a query (or query fragment) that has no
// structured syntax and is matched by fuzzy scoring and substring search.
type TextSearchNode struct {
	Query string
}

func (*TextSearchNode) queryNode() {}

// AST is the parse result for one query. Immutable once built; exactly
// one root per parse.
type AST struct {
	Root              Node
	OriginalQuery     string
	HasAdvancedSyntax bool
}

// Filters returns every FilterNode in the tree, walking both sides of
// every compound, in left-to-right order.
func Filters(n Node) []*FilterNode {
	var out []*FilterNode
	collectFilters(n, &out)
	return out
}

func collectFilters(n Node, out *[]*FilterNode) {
	switch node := n.(type) {
	case *FilterNode:
		*out = append(*out, node)
	case *CompoundNode:
		collectFilters(node.Left, out)
		if node.Right != nil {
			collectFilters(node.Right, out)
		}
	case *StudentRefNode, *TextSearchNode, nil:
	}
}

// String renders the node as an indented tree for debugging and the
// explain command.
func (f *FilterNode) String() string {
	return fmt.Sprintf("Filter(%s %s %s)", f.Field, f.Op, f.Value)
}

func (s *StudentRefNode) String() string {
	if s.Fuzzy {
		return fmt.Sprintf("StudentRef(%s, fuzzy)", s.Name)
	}
	return fmt.Sprintf("StudentRef(%s)", s.Name)
}

func (c *CompoundNode) String() string {
	left := indent(nodeString(c.Left))
	if c.Right == nil {
		return fmt.Sprintf("%s:\n%s", c.Op, left)
	}
	return fmt.Sprintf("%s:\n%s\n%s", c.Op, left, indent(nodeString(c.Right)))
}

func (t *TextSearchNode) String() string {
	return fmt.Sprintf("TextSearch(%q)", t.Query)
}

func nodeString(n Node) string {
	switch node := n.(type) {
	case *FilterNode:
		return node.String()
	case *StudentRefNode:
		return node.String()
	case *CompoundNode:
		return node.String()
	case *TextSearchNode:
		return node.String()
	default:
		return "<nil>"
	}
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}
