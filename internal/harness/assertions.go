package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/LucianoXu/diracoq/internal/ir"
	"github.com/LucianoXu/diracoq/internal/kernel"
	"github.com/LucianoXu/diracoq/internal/prover"
	"github.com/LucianoXu/diracoq/internal/syntax"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			status := "ok"
			if !event.OK {
				status = "error"
			}
			fmt.Fprintf(&buf, "  [%d] %s%s (%s)\n", event.Seq, strings.Repeat("  ", event.Depth), event.Source, status)
		}
	}
	return buf.String()
}

// AssertionContext is the state assertions are evaluated against.
type AssertionContext struct {
	Ctx         context.Context
	Kernel      *kernel.Kernel
	Derivations []prover.DerivationRecord
}

func (a *AssertionContext) parse(src string) (ir.Term, error) {
	t, err := a.Kernel.Parse(src)
	if err != nil {
		return ir.NoTerm, fmt.Errorf("parse %q: %w", src, err)
	}
	return t, nil
}

// assertEqual checks judgemental equality, or its absence when want is
// false. Both sides must be well typed.
func assertEqual(actx *AssertionContext, assertion Assertion, want bool) error {
	left, err := actx.parse(assertion.Left)
	if err != nil {
		return err
	}
	right, err := actx.parse(assertion.Right)
	if err != nil {
		return err
	}
	for _, t := range []ir.Term{left, right} {
		if _, err := actx.Kernel.CalcType(t); err != nil {
			return &AssertionError{Type: assertion.Type, Expected: "well-typed terms", Actual: err.Error()}
		}
	}

	eq, err := actx.Kernel.IsJudgementalEq(left, right)
	if err != nil {
		return &AssertionError{Type: assertion.Type, Expected: "a decision", Actual: err.Error()}
	}
	if eq == want {
		return nil
	}
	k := actx.Kernel
	relation := map[bool]string{true: "=", false: "!="}
	return &AssertionError{
		Type:     assertion.Type,
		Expected: fmt.Sprintf("%s %s %s", k.Format(left), relation[want], k.Format(right)),
		Actual:   fmt.Sprintf("%s %s %s", k.Format(left), relation[eq], k.Format(right)),
	}
}

// assertNormalForm normalizes term with every rule and canonical ordering
// and compares the result with expect.
func assertNormalForm(actx *AssertionContext, assertion Assertion) error {
	t, err := actx.parse(assertion.Term)
	if err != nil {
		return err
	}
	want, err := actx.parse(assertion.Expect)
	if err != nil {
		return err
	}
	k := actx.Kernel
	if _, err := k.CalcType(t); err != nil {
		return &AssertionError{Type: AssertNormalForm, Expected: "a well-typed term", Actual: err.Error()}
	}

	nf, _, err := k.Normalize(actx.Ctx, t, kernel.Mode{All: true, Canonical: true}, nil)
	if err != nil {
		return &AssertionError{Type: AssertNormalForm, Expected: k.Format(want), Actual: err.Error()}
	}
	if nf != want {
		return &AssertionError{
			Type:     AssertNormalForm,
			Expected: fmt.Sprintf("%s normalizes to %s", k.Format(t), k.Format(want)),
			Actual:   k.Format(nf),
		}
	}
	return nil
}

// assertType checks that term's type is judgementally equal to expect.
func assertType(actx *AssertionContext, assertion Assertion) error {
	t, err := actx.parse(assertion.Term)
	if err != nil {
		return err
	}
	want, err := actx.parse(assertion.Expect)
	if err != nil {
		return err
	}
	k := actx.Kernel
	typ, err := k.CalcType(t)
	if err != nil {
		return &AssertionError{Type: AssertType, Expected: k.Format(want), Actual: err.Error()}
	}
	ok, err := k.IsJudgementalEq(typ, want)
	if err != nil {
		return &AssertionError{Type: AssertType, Expected: k.Format(want), Actual: err.Error()}
	}
	if !ok {
		return &AssertionError{
			Type:     AssertType,
			Expected: fmt.Sprintf("%s : %s", k.Format(t), k.Format(want)),
			Actual:   fmt.Sprintf("%s : %s", k.Format(t), k.Format(typ)),
		}
	}
	return nil
}

// assertError checks that some failed command matches. Command, when set,
// is compared after reparsing so spacing does not matter.
func assertError(trace []TraceEvent, assertion Assertion) error {
	source := ""
	if assertion.Command != "" {
		cmd, err := syntax.Parse(assertion.Command)
		if err != nil {
			return fmt.Errorf("parse %q: %w", assertion.Command, err)
		}
		source = cmd.String()
	}

	failed := lo.Filter(trace, func(e TraceEvent, _ int) bool { return !e.OK })
	for _, e := range failed {
		if source != "" && e.Source != source {
			continue
		}
		if strings.Contains(e.Output, assertion.Contains) {
			return nil
		}
	}

	expected := "a failed command"
	if source != "" {
		expected = fmt.Sprintf("command %s to fail", source)
	}
	if assertion.Contains != "" {
		expected += fmt.Sprintf(" with output containing %q", assertion.Contains)
	}
	return &AssertionError{
		Type:     AssertError,
		Expected: expected,
		Actual:   fmt.Sprintf("%d failed command(s), none matching", len(failed)),
		Trace:    trace,
	}
}

func assertOutputContains(result *Result, assertion Assertion) error {
	if strings.Contains(result.Output, assertion.Contains) {
		return nil
	}
	return &AssertionError{
		Type:     AssertOutputContains,
		Expected: fmt.Sprintf("output containing %q", assertion.Contains),
		Actual:   fmt.Sprintf("%q", result.Output),
	}
}

// assertRules finds the recorded derivation of term and compares its rule
// sequence. The last derivation of term wins.
func assertRules(actx *AssertionContext, assertion Assertion) error {
	t, err := actx.parse(assertion.Term)
	if err != nil {
		return err
	}
	input := actx.Kernel.Format(t)

	var found *prover.DerivationRecord
	for i := range actx.Derivations {
		if actx.Derivations[i].Input == input {
			found = &actx.Derivations[i]
		}
	}
	if found == nil {
		return &AssertionError{
			Type:     AssertRules,
			Expected: fmt.Sprintf("a derivation of %s", input),
			Actual:   "no Normalize or Trace of that term was recorded",
		}
	}

	got := lo.Map(found.Steps, func(s prover.StepRecord, _ int) string { return s.Rule })
	if !slices.Equal(got, assertion.Rules) {
		return &AssertionError{
			Type:     AssertRules,
			Expected: fmt.Sprintf("%s by %v", input, assertion.Rules),
			Actual:   fmt.Sprintf("%v", got),
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns one message per failed assertion.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertEqual:
			err = assertEqual(actx, assertion, true)
		case AssertNotEqual:
			err = assertEqual(actx, assertion, false)
		case AssertNormalForm:
			err = assertNormalForm(actx, assertion)
		case AssertType:
			err = assertType(actx, assertion)
		case AssertError:
			err = assertError(result.Trace, assertion)
		case AssertOutputContains:
			err = assertOutputContains(result, assertion)
		case AssertRules:
			err = assertRules(actx, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}

	return errors
}
