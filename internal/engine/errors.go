package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/rollcall/internal/query"
)

// ExecutionError indicates caller misuse of the executor (a nil AST, an
// unexpected node), not bad user input. It must surface loudly instead
// of degrading to fuzzy fallback.
type ExecutionError struct {
	Message string
}

func (e *ExecutionError) Error() string {
	return "engine: " + e.Message
}

// IsExecutionError reports whether err is a contract violation that must
// not be swallowed by the fallback path. Uses errors.As to handle
// wrapped errors.
func IsExecutionError(err error) bool {
	var ee *ExecutionError
	return errors.As(err, &ee)
}

// FieldError indicates a filter that cannot be evaluated as written,
// e.g. a numeric comparison against a field that only supports equality,
// or a status value outside present/absent/medical. Like parse-time
// field errors, it is recovered by the fallback path and never reaches
// the user.
type FieldError struct {
	Field   query.Field
	Op      query.Operator
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %s (operator=%s)", e.Field, e.Message, e.Op)
}

// IsFieldError reports whether err is an execution-time field error.
func IsFieldError(err error) bool {
	var fe *FieldError
	return errors.As(err, &fe)
}

func unsupportedComparison(field query.Field, op query.Operator) *FieldError {
	return &FieldError{Field: field, Op: op, Message: "unsupported comparison"}
}
