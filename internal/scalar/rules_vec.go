package scalar

import (
	"slices"

	"github.com/samber/lo"

	"github.com/LucianoXu/diracoq/internal/engine"
	"github.com/LucianoXu/diracoq/internal/ir"
)

// VecRules returns the scalar rules over ordered ADDS and MULS.
// Commutativity is not handled here; see Normalize.
func VecRules(h Heads) engine.RuleSet {
	r := vecRules{h}
	return engine.RuleSet{Name: "scalar_vec", Rules: []engine.Rule{
		{Name: "R_FLATTEN", Apply: r.flatten},
		{Name: "R_ADDSID", Apply: r.unary(h.Adds)},
		{Name: "R_MULSID", Apply: r.unary(h.Muls)},
		{Name: "R_ADDS0", Apply: r.dropUnit(h.Adds, h.Zero)},
		{Name: "R_MULS0", Apply: r.muls0},
		{Name: "R_MULS1", Apply: r.dropUnit(h.Muls, h.One)},
		{Name: "R_MULS2", Apply: r.muls2},
		{Name: "R_CONJ0", Apply: conjConst(h, h.Zero)},
		{Name: "R_CONJ1", Apply: conjConst(h, h.One)},
		{Name: "R_CONJ2", Apply: r.conjOver(h.Adds)},
		{Name: "R_CONJ3", Apply: r.conjOver(h.Muls)},
		{Name: "R_CONJ4", Apply: conjConj(h)},
	}}
}

type vecRules struct {
	h Heads
}

// ADDS(a ADDS(b c)) -> ADDS(a b c), and likewise for MULS.
func (r vecRules) flatten(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	head := b.Head(t)
	if head != r.h.Adds && head != r.h.Muls {
		return ir.NoTerm, false
	}
	args, ok := engine.MatchOrdered(b, t, head)
	if !ok {
		return ir.NoTerm, false
	}
	if engine.FirstArg(args, func(a ir.Term) bool { return b.Head(a) == head && b.Kind(a) == ir.KindOrdered }) < 0 {
		return ir.NoTerm, false
	}
	flat := lo.FlatMap(args, func(a ir.Term, _ int) []ir.Term {
		if inner, ok := engine.MatchOrdered(b, a, head); ok {
			return inner
		}
		return []ir.Term{a}
	})
	return b.Ordered(head, flat...), true
}

func (r vecRules) unary(head int) engine.RuleFunc {
	return func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		args, ok := engine.MatchOrderedN(b, t, head, 1)
		if !ok {
			return ir.NoTerm, false
		}
		return args[0], true
	}
}

// dropUnit removes every unit argument of head; with nothing left the
// unit itself is the result.
func (r vecRules) dropUnit(head, unit int) engine.RuleFunc {
	return func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		args, ok := engine.MatchOrdered(b, t, head)
		u := b.Atom(unit)
		if !ok || !slices.Contains(args, u) {
			return ir.NoTerm, false
		}
		rest := lo.Filter(args, func(a ir.Term, _ int) bool { return a != u })
		if len(rest) == 0 {
			return u, true
		}
		return b.Ordered(head, rest...), true
	}
}

func (r vecRules) muls0(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	args, ok := engine.MatchOrdered(b, t, r.h.Muls)
	zero := b.Atom(r.h.Zero)
	if !ok || !slices.Contains(args, zero) {
		return ir.NoTerm, false
	}
	return zero, true
}

// MULS(a ADDS(b c) d) -> ADDS(MULS(a b d) MULS(a c d)), in place.
func (r vecRules) muls2(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	args, ok := engine.MatchOrdered(b, t, r.h.Muls)
	if !ok || len(args) < 2 {
		return ir.NoTerm, false
	}
	i := engine.FirstArg(args, func(a ir.Term) bool {
		_, isSum := engine.MatchOrdered(b, a, r.h.Adds)
		return isSum
	})
	if i < 0 {
		return ir.NoTerm, false
	}
	addends := b.Args(args[i])
	products := lo.Map(addends, func(addend ir.Term, _ int) ir.Term {
		factors := slices.Clone(args)
		factors[i] = addend
		return b.Ordered(r.h.Muls, factors...)
	})
	return b.Ordered(r.h.Adds, products...), true
}

func (r vecRules) conjOver(head int) engine.RuleFunc {
	return func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		args, ok := engine.MatchOrderedN(b, t, r.h.Conj, 1)
		if !ok {
			return ir.NoTerm, false
		}
		inner, ok := engine.MatchOrdered(b, args[0], head)
		if !ok {
			return ir.NoTerm, false
		}
		return b.Ordered(head, lo.Map(inner, func(a ir.Term, _ int) ir.Term {
			return b.Ordered(r.h.Conj, a)
		})...), true
	}
}
