package ir

import (
	"errors"
	"fmt"
)

// StructuralErrorCode categorizes internal-consistency failures.
type StructuralErrorCode string

const (
	// ErrCodeOutOfRange indicates a child index beyond the node's arity.
	ErrCodeOutOfRange StructuralErrorCode = "OUT_OF_RANGE"

	// ErrCodeInvalidPosition indicates a position that crosses a C or AC node.
	ErrCodeInvalidPosition StructuralErrorCode = "INVALID_POSITION"

	// ErrCodeUnderflow indicates subtracting more copies than a multiset holds.
	ErrCodeUnderflow StructuralErrorCode = "UNDERFLOW"

	// ErrCodeBadVariant indicates an operation applied to the wrong node kind.
	ErrCodeBadVariant StructuralErrorCode = "BAD_VARIANT"
)

// StructuralError reports a programming or consistency error.
// These are never "no match" outcomes; callers propagate them.
type StructuralError struct {
	Code    StructuralErrorCode
	Message string
}

// Error implements the error interface.
func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsStructuralError returns true if err wraps a StructuralError with the given code.
// An empty code matches any StructuralError.
func IsStructuralError(err error, code StructuralErrorCode) bool {
	var se *StructuralError
	if !errors.As(err, &se) {
		return false
	}
	return code == "" || se.Code == code
}

func outOfRange(index, arity int) *StructuralError {
	return &StructuralError{
		Code:    ErrCodeOutOfRange,
		Message: fmt.Sprintf("child index %d out of range for arity %d", index, arity),
	}
}
