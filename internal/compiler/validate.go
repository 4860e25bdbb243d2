package compiler

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/samber/lo"

	"github.com/LucianoXu/diracoq/internal/syntax"
)

// Validation error codes (E100-E199)
const (
	ErrTheoryNameEmpty   = "E101" // theory has no name
	ErrInvalidIdentifier = "E102" // declared name is not an identifier
	ErrDuplicateDecl     = "E103" // name declared twice in one theory
	ErrInvalidTerm       = "E104" // term does not parse
	ErrSelfUse           = "E105" // theory lists itself in uses
	ErrDuplicateUse      = "E106" // uses lists a theory twice
)

// ValidationError is a problem found in a compiled theory.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a theory without running it. It returns every problem
// found rather than the first. Typing is left to the kernel.
func Validate(th *Theory) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(th.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "theory",
			Message: "theory name is required",
			Code:    ErrTheoryNameEmpty,
			Line:    th.Pos.Line(),
		})
	}

	if lo.Contains(th.Uses, th.Name) {
		errs = append(errs, ValidationError{
			Field:   "uses",
			Message: fmt.Sprintf("theory %s uses itself", th.Name),
			Code:    ErrSelfUse,
			Line:    th.Pos.Line(),
		})
	}
	listed := make(map[string]bool)
	for _, u := range th.Uses {
		if listed[u] {
			errs = append(errs, ValidationError{
				Field:   "uses",
				Message: fmt.Sprintf("theory %s is listed twice", u),
				Code:    ErrDuplicateUse,
				Line:    th.Pos.Line(),
			})
		}
		listed[u] = true
	}

	seen := make(map[string]int)
	for i, d := range th.Decls {
		field := fmt.Sprintf("decls[%d]", i)
		if !isIdentifier(d.Name) {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%q is not an identifier", d.Name),
				Code:    ErrInvalidIdentifier,
				Line:    d.Pos.Line(),
			})
		}
		if prev, ok := seen[d.Name]; ok {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s is already declared in decls[%d]", d.Name, prev),
				Code:    ErrDuplicateDecl,
				Line:    d.Pos.Line(),
			})
		} else {
			seen[d.Name] = i
		}
		errs = append(errs, validateTerms(field, d.Pos.Line(), d.Term, d.Type)...)
	}

	for i, c := range th.Checks {
		errs = append(errs, validateTerms(fmt.Sprintf("checks[%d]", i), c.Pos.Line(), c.Left, c.Right)...)
	}
	return errs
}

func validateTerms(field string, line int, srcs ...string) []ValidationError {
	var errs []ValidationError
	for _, src := range srcs {
		if src == "" {
			continue
		}
		if _, err := syntax.Parse(src); err != nil {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: err.Error(),
				Code:    ErrInvalidTerm,
				Line:    line,
			})
		}
	}
	return errs
}

// isIdentifier accepts the names the parser reads as a single leaf.
func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	a, err := syntax.Parse(name)
	if err != nil || !a.IsLeaf() || a.Head != name {
		return false
	}
	return !strings.ContainsFunc(name, unicode.IsSpace)
}
