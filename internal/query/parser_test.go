package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var parseClock = time.Date(2024, 3, 13, 9, 30, 0, 0, time.UTC) // a Wednesday

func mustParse(t *testing.T, input string) *AST {
	t.Helper()
	ast, err := ParseAt(input, parseClock)
	require.NoError(t, err)
	require.NotNil(t, ast.Root)
	return ast
}

func TestParse_PlainProseSkipsStructuredParsing(t *testing.T) {
	ast := mustParse(t, "aarav attendance")
	assert.False(t, ast.HasAdvancedSyntax)
	text, ok := ast.Root.(*TextSearchNode)
	require.True(t, ok)
	assert.Equal(t, "aarav attendance", text.Query)
}

func TestParse_AdvancedSyntaxGate(t *testing.T) {
	advanced := []string{"@aarav", "status:absent", "a AND b", "attendance:>80", "(x)"}
	for _, input := range advanced {
		ast := mustParse(t, input)
		assert.True(t, ast.HasAdvancedSyntax, input)
	}
	for _, input := range []string{"hello world", `"quoted text"`, ""} {
		ast := mustParse(t, input)
		assert.False(t, ast.HasAdvancedSyntax, input)
	}
}

func TestParse_SimpleFilter(t *testing.T) {
	ast := mustParse(t, "status:absent")
	filter, ok := ast.Root.(*FilterNode)
	require.True(t, ok)
	assert.Equal(t, FieldStatus, filter.Field)
	assert.Equal(t, OpEquals, filter.Op)
	assert.Equal(t, StringValue("absent"), filter.Value)
}

func TestParse_ComparisonOperatorMapping(t *testing.T) {
	tests := []struct {
		input string
		want  Operator
	}{
		{"attendance:>80", OpGreaterThan},
		{"attendance:<80", OpLessThan},
		{"attendance:>=80", OpGreaterEqual},
		{"attendance:<=80", OpLessEqual},
		{"attendance:!=80", OpNotEquals},
	}
	for _, tc := range tests {
		ast := mustParse(t, tc.input)
		filter, ok := ast.Root.(*FilterNode)
		require.True(t, ok, tc.input)
		assert.Equal(t, tc.want, filter.Op, tc.input)
		assert.Equal(t, NumberValue(80), filter.Value, tc.input)
	}
}

func TestParse_StudentRef(t *testing.T) {
	ast := mustParse(t, "@Aarav")
	ref, ok := ast.Root.(*StudentRefNode)
	require.True(t, ok)
	assert.Equal(t, "Aarav", ref.Name)
	assert.True(t, ref.Fuzzy)
}

func TestParse_AndBindsTighterThanOr(t *testing.T) {
	// a OR b AND c parses as OR(a, AND(b, c)).
	ast := mustParse(t, "@a OR @b AND @c")
	or, ok := ast.Root.(*CompoundNode)
	require.True(t, ok)
	assert.Equal(t, BoolOr, or.Op)
	_, ok = or.Left.(*StudentRefNode)
	assert.True(t, ok)
	and, ok := or.Right.(*CompoundNode)
	require.True(t, ok)
	assert.Equal(t, BoolAnd, and.Op)
}

func TestParse_RepeatedOperatorsLeanLeft(t *testing.T) {
	// a AND b AND c parses as AND(AND(a, b), c).
	ast := mustParse(t, "@a AND @b AND @c")
	outer, ok := ast.Root.(*CompoundNode)
	require.True(t, ok)
	inner, ok := outer.Left.(*CompoundNode)
	require.True(t, ok)
	assert.Equal(t, BoolAnd, inner.Op)
	_, ok = outer.Right.(*StudentRefNode)
	assert.True(t, ok)
}

func TestParse_NotWrapsSinglePrimaryWithoutRight(t *testing.T) {
	ast := mustParse(t, "NOT status:absent")
	not, ok := ast.Root.(*CompoundNode)
	require.True(t, ok)
	assert.Equal(t, BoolNot, not.Op)
	assert.NotNil(t, not.Left)
	assert.Nil(t, not.Right)
}

func TestParse_ParensOverridePrecedence(t *testing.T) {
	// (a OR b) AND c parses as AND(OR(a, b), c).
	ast := mustParse(t, "(@a OR @b) AND @c")
	and, ok := ast.Root.(*CompoundNode)
	require.True(t, ok)
	assert.Equal(t, BoolAnd, and.Op)
	or, ok := and.Left.(*CompoundNode)
	require.True(t, ok)
	assert.Equal(t, BoolOr, or.Op)
}

func TestParse_BareTextInsideStructuredQuery(t *testing.T) {
	ast := mustParse(t, "aarav AND status:absent")
	and, ok := ast.Root.(*CompoundNode)
	require.True(t, ok)
	text, ok := and.Left.(*TextSearchNode)
	require.True(t, ok)
	assert.Equal(t, "aarav", text.Query)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  ParseErrorCode
	}{
		{"missing closing paren", "(@a OR @b", ErrCodeUnmatchedParen},
		{"stray closing paren", "@a)", ErrCodeUnexpectedToken},
		{"leading closing paren", ")@a", ErrCodeUnmatchedParen},
		{"field without value", "status:", ErrCodeMissingValue},
		{"field without value before operator", "status: AND @a", ErrCodeMissingValue},
		{"operator without operand", "AND", ErrCodeMissingOperand},
		{"trailing operator", "@a AND", ErrCodeMissingOperand},
		{"unknown field", "grade:A", ErrCodeUnknownField},
		{"unparsable date", "date:someday", ErrCodeBadValue},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAt(tc.input, parseClock)
			require.Error(t, err)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tc.code, pe.Code)
		})
	}
}

func TestParse_ErrorClassification(t *testing.T) {
	_, err := ParseAt("(@a", parseClock)
	assert.True(t, IsSyntaxError(err))
	assert.False(t, IsFieldError(err))

	_, err = ParseAt("grade:A", parseClock)
	assert.True(t, IsFieldError(err))
	assert.False(t, IsSyntaxError(err))
}

func TestParse_RelativeDatesResolveAgainstClock(t *testing.T) {
	ast := mustParse(t, "date:today")
	filter := ast.Root.(*FilterNode)
	assert.Equal(t, time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), filter.Value.(DateValue).Time)

	ast = mustParse(t, "date:yesterday")
	filter = ast.Root.(*FilterNode)
	assert.Equal(t, time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), filter.Value.(DateValue).Time)

	// Re-running the same literal query on a different day resolves
	// differently.
	later, err := ParseAt("date:today", parseClock.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC), later.Root.(*FilterNode).Value.(DateValue).Time)
}

func TestParse_WeekKeywordsResolveToMonday(t *testing.T) {
	ast := mustParse(t, "date:this-week")
	filter := ast.Root.(*FilterNode)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), filter.Value.(DateValue).Time)

	ast = mustParse(t, "date:last-week")
	filter = ast.Root.(*FilterNode)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), filter.Value.(DateValue).Time)
}

func TestFilters_WalksBothSidesOfEveryCompound(t *testing.T) {
	ast := mustParse(t, "status:absent AND (attendance:>80 OR date:2024-01-10)")
	filters := Filters(ast.Root)
	require.Len(t, filters, 3)
	assert.Equal(t, FieldStatus, filters[0].Field)
	assert.Equal(t, FieldAttendance, filters[1].Field)
	assert.Equal(t, FieldDate, filters[2].Field)
}
