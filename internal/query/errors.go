package query

import (
	"errors"
	"fmt"
)

// ParseErrorCode categorizes parse errors.
type ParseErrorCode string

const (
	// ErrCodeUnmatchedParen indicates an unbalanced '(' or ')'.
	ErrCodeUnmatchedParen ParseErrorCode = "UNMATCHED_PAREN"

	// ErrCodeMissingValue indicates a field prefix with no following value.
	ErrCodeMissingValue ParseErrorCode = "MISSING_VALUE"

	// ErrCodeMissingOperand indicates AND/OR/NOT with a missing operand.
	ErrCodeMissingOperand ParseErrorCode = "MISSING_OPERAND"

	// ErrCodeUnexpectedToken indicates a token the grammar cannot place.
	ErrCodeUnexpectedToken ParseErrorCode = "UNEXPECTED_TOKEN"

	// ErrCodeUnknownField indicates a field name outside the supported set.
	ErrCodeUnknownField ParseErrorCode = "UNKNOWN_FIELD"

	// ErrCodeBadValue indicates a value that fails coercion for its field.
	ErrCodeBadValue ParseErrorCode = "BAD_VALUE"
)

// ParseError is a structured parse failure with the offending token
// position. Parse errors never reach the end user directly: the search
// entry point recovers by falling back to fuzzy text matching.
type ParseError struct {
	Code     ParseErrorCode
	Message  string
	Position int

	// Field is set for field-level errors (unknown field, bad value).
	Field Field
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s, pos=%d)", e.Code, e.Message, e.Field, e.Position)
	}
	return fmt.Sprintf("%s: %s (pos=%d)", e.Code, e.Message, e.Position)
}

// IsSyntaxError reports whether err is a structural parse error
// (unbalanced parens, missing value or operand, misplaced token).
// Uses errors.As to handle wrapped errors.
func IsSyntaxError(err error) bool {
	var pe *ParseError
	if !errors.As(err, &pe) {
		return false
	}
	switch pe.Code {
	case ErrCodeUnmatchedParen, ErrCodeMissingValue, ErrCodeMissingOperand, ErrCodeUnexpectedToken:
		return true
	}
	return false
}

// IsFieldError reports whether err is a field-level error (unknown field
// name or a value that fails coercion). Uses errors.As to handle wrapped
// errors.
func IsFieldError(err error) bool {
	var pe *ParseError
	if !errors.As(err, &pe) {
		return false
	}
	return pe.Code == ErrCodeUnknownField || pe.Code == ErrCodeBadValue
}
