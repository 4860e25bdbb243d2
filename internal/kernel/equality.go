package kernel

import (
	"context"
	"fmt"

	"github.com/LucianoXu/diracoq/internal/canon"
	"github.com/LucianoXu/diracoq/internal/engine"
	"github.com/LucianoXu/diracoq/internal/ir"
)

// Mode selects how Normalize reduces a term.
type Mode struct {
	// All selects the full Dirac rule set instead of the core rules.
	All bool

	// Canonical sorts commutative arguments after rewriting.
	Canonical bool
}

func (k *Kernel) newEngine(rules engine.RuleSet) *engine.Engine {
	opts := []engine.EngineOption{
		engine.WithScoper(scoper{k}),
		engine.WithLogger(k.logger),
	}
	if k.maxSteps > 0 {
		opts = append(opts, engine.WithMaxSteps(k.maxSteps))
	}
	return engine.New(k.bank, rules, opts...)
}

// Normalize rewrites t to normal form. When trace is non-nil every step,
// including a final canonical reordering, is appended to it.
func (k *Kernel) Normalize(ctx context.Context, t ir.Term, mode Mode, trace *engine.Trace) (ir.Term, canon.Instruction, error) {
	rules := k.core
	if mode.All {
		rules = k.all
	}
	nf, err := k.newEngine(rules).RewriteToNormalForm(ctx, t, trace)
	if err != nil {
		return ir.NoTerm, canon.Instruction{}, fmt.Errorf("normalize: %w", err)
	}
	if !mode.Canonical {
		return nf, canon.Instruction{}, nil
	}
	sorted, instr := canon.SortCommutative(k.bank, nf, k.s.commutative())
	if trace != nil && !instr.IsIdentity() {
		trace.Append(engine.Record{
			Rule:        "R_C_EQ",
			Initial:     nf,
			Matched:     ir.NoTerm,
			Replacement: ir.NoTerm,
			Final:       sorted,
		})
	}
	return sorted, instr, nil
}

// normalForm is the reduct under the full rule set.
func (k *Kernel) normalForm(t ir.Term) (ir.Term, error) {
	return k.newEngine(k.all).RewriteToNormalForm(context.Background(), t, nil)
}

// IsJudgementalEq decides whether a and b have the same normal form up to
// renaming of bound variables.
func (k *Kernel) IsJudgementalEq(a, b ir.Term) (bool, error) {
	if a == b {
		return true, nil
	}
	na, err := k.normalForm(a)
	if err != nil {
		return false, fmt.Errorf("judgemental equality: %w", err)
	}
	nb, err := k.normalForm(b)
	if err != nil {
		return false, fmt.Errorf("judgemental equality: %w", err)
	}
	da, err := k.ToDeBruijn(na)
	if err != nil {
		return false, err
	}
	db, err := k.ToDeBruijn(nb)
	if err != nil {
		return false, err
	}
	return da == db, nil
}

// TypeCheck reports whether t has a type judgmentally equal to expected.
func (k *Kernel) TypeCheck(t, expected ir.Term) (bool, error) {
	typ, err := k.CalcType(t)
	if err != nil {
		return false, err
	}
	return k.IsJudgementalEq(typ, expected)
}
