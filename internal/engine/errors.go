package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents a failure of a rewriting run.
//
// The only runtime error is cycle detection: a term recurs during
// RewriteToNormalForm. An exhausted step budget is a StepsExceededError,
// and "no rule applies" is never an error.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Rule is the rule whose firing triggered the error, if any.
	Rule string

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeCycleDetected indicates a term was reached twice in one run.
	ErrCodeCycleDetected RuntimeErrorCode = "CYCLE_DETECTED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("%s: %s (rule=%s)", e.Code, e.Message, e.Rule)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCycleError returns true if the error is a cycle detection error.
func IsCycleError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeCycleDetected
	}
	return false
}

// IsQuotaError returns true if the run stopped on its step budget.
func IsQuotaError(err error) bool {
	return IsStepsExceededError(err)
}

// NewCycleError creates a RuntimeError for a recurring term.
func NewCycleError(rule string, step int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeCycleDetected,
		Message: "rewriting reached a term it had already visited",
		Rule:    rule,
		Details: map[string]string{
			"step": fmt.Sprintf("%d", step),
		},
	}
}
