package kernel

import (
	"errors"
	"fmt"

	"github.com/LucianoXu/diracoq/internal/ir"
)

// TypingError reports a term CalcType has no rule for, or whose rule's
// precondition failed.
type TypingError struct {
	// Term is the offending sub-term.
	Term ir.Term

	// Text is Term rendered at the time of the error.
	Text string

	// Reason is the unmet expectation, as a sentence.
	Reason string
}

// Error implements the error interface.
func (e *TypingError) Error() string {
	return fmt.Sprintf("Typing error: the term '%s' is not well-typed, because %s", e.Text, e.Reason)
}

// IsTypingError returns true if err wraps a TypingError.
func IsTypingError(err error) bool {
	var te *TypingError
	return errors.As(err, &te)
}

// DeclarationErrorCode categorizes environment and context failures.
type DeclarationErrorCode string

const (
	// ErrCodeReservedSymbol indicates an attempt to declare a reserved name.
	ErrCodeReservedSymbol DeclarationErrorCode = "RESERVED_SYMBOL"

	// ErrCodeAlreadyDeclared indicates the symbol is already in the environment.
	ErrCodeAlreadyDeclared DeclarationErrorCode = "ALREADY_DECLARED"

	// ErrCodeContextNotEmpty indicates a definition made inside a binder.
	ErrCodeContextNotEmpty DeclarationErrorCode = "CONTEXT_NOT_EMPTY"

	// ErrCodeInvalidType indicates a declared type or definition that does not check.
	ErrCodeInvalidType DeclarationErrorCode = "INVALID_TYPE"

	// ErrCodeInvalidBinderType indicates a context entry whose type is not a type.
	ErrCodeInvalidBinderType DeclarationErrorCode = "INVALID_BINDER_TYPE"

	// ErrCodeEmptyEnv indicates a pop from an empty environment.
	ErrCodeEmptyEnv DeclarationErrorCode = "EMPTY_ENV"

	// ErrCodeEmptyContext indicates a pop from an empty context.
	ErrCodeEmptyContext DeclarationErrorCode = "EMPTY_CONTEXT"
)

// DeclarationError reports a rejected change to the environment or context.
type DeclarationError struct {
	Code    DeclarationErrorCode
	Symbol  string
	Message string
}

// Error implements the error interface.
func (e *DeclarationError) Error() string {
	return e.Message
}

// IsDeclarationError returns true if err wraps a DeclarationError with the
// given code. An empty code matches any DeclarationError.
func IsDeclarationError(err error, code DeclarationErrorCode) bool {
	var de *DeclarationError
	if !errors.As(err, &de) {
		return false
	}
	return code == "" || de.Code == code
}
