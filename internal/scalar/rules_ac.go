package scalar

import (
	"github.com/LucianoXu/diracoq/internal/engine"
	"github.com/LucianoXu/diracoq/internal/ir"
)

// Rules returns the scalar rules over AC ADDS and MULS.
func Rules(h Heads) engine.RuleSet {
	r := acRules{h}
	return engine.RuleSet{Name: "scalar", Rules: []engine.Rule{
		{Name: "R_ADDSID", Apply: r.addsID},
		{Name: "R_MULSID", Apply: r.mulsID},
		{Name: "R_ADDS0", Apply: r.adds0},
		{Name: "R_MULS0", Apply: r.muls0},
		{Name: "R_MULS1", Apply: r.muls1},
		{Name: "R_MULS2", Apply: r.muls2},
		{Name: "R_CONJ0", Apply: conjConst(h, h.Zero)},
		{Name: "R_CONJ1", Apply: conjConst(h, h.One)},
		{Name: "R_CONJ2", Apply: r.conjOver(h.Adds)},
		{Name: "R_CONJ3", Apply: r.conjOver(h.Muls)},
		{Name: "R_CONJ4", Apply: conjConj(h)},
	}}
}

type acRules struct {
	h Heads
}

func (r acRules) single(b *ir.Bank, t ir.Term, head int) (ir.Term, bool) {
	ms, ok := engine.MatchMultiset(b, t, head)
	if !ok || ms.Total() != 1 {
		return ir.NoTerm, false
	}
	return ms[0].Term, true
}

// ADDS(a) -> a
func (r acRules) addsID(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	return r.single(b, t, r.h.Adds)
}

// MULS(a) -> a
func (r acRules) mulsID(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	return r.single(b, t, r.h.Muls)
}

// ADDS(a 0) -> ADDS(a); an ADDS of zeros only becomes 0.
func (r acRules) adds0(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	ms, ok := engine.MatchMultiset(b, t, r.h.Adds)
	zero := b.Atom(r.h.Zero)
	if !ok || !ms.RemoveAll(zero) {
		return ir.NoTerm, false
	}
	if len(ms) == 0 {
		return zero, true
	}
	return b.Rebuild(t, ms), true
}

// MULS(a 0) -> 0
func (r acRules) muls0(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	ms, ok := engine.MatchMultiset(b, t, r.h.Muls)
	zero := b.Atom(r.h.Zero)
	if !ok || !ms.Contains(zero) {
		return ir.NoTerm, false
	}
	return zero, true
}

// MULS(a 1) -> MULS(a); a MULS of ones only becomes 1.
func (r acRules) muls1(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	ms, ok := engine.MatchMultiset(b, t, r.h.Muls)
	one := b.Atom(r.h.One)
	if !ok || !ms.RemoveAll(one) {
		return ir.NoTerm, false
	}
	if len(ms) == 0 {
		return one, true
	}
	return b.Rebuild(t, ms), true
}

// MULS(a ADDS(b c)) -> ADDS(MULS(a b) MULS(a c))
//
// One copy of the first ADDS factor in bank order is distributed over.
func (r acRules) muls2(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	ms, ok := engine.MatchMultiset(b, t, r.h.Muls)
	if !ok || ms.Total() < 2 {
		return ir.NoTerm, false
	}
	sum, ok := engine.FirstEntry(ms, func(e ir.Entry) bool {
		_, isSum := engine.MatchMultiset(b, e.Term, r.h.Adds)
		return isSum
	})
	if !ok {
		return ir.NoTerm, false
	}
	ms.MustSubtract(sum.Term, 1)

	var products ir.Multiset
	for _, addend := range b.Entries(sum.Term) {
		factors := ms.Clone()
		factors.Add(addend.Term, 1)
		products.Add(b.AC(r.h.Muls, factors), addend.Count)
	}
	return b.AC(r.h.Adds, products), true
}

// CONJ(ADDS(a b)) -> ADDS(CONJ(a) CONJ(b)), and likewise for MULS.
func (r acRules) conjOver(head int) engine.RuleFunc {
	return func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		args, ok := engine.MatchOrderedN(b, t, r.h.Conj, 1)
		if !ok {
			return ir.NoTerm, false
		}
		ms, ok := engine.MatchMultiset(b, args[0], head)
		if !ok {
			return ir.NoTerm, false
		}
		var out ir.Multiset
		for _, e := range ms {
			out.Add(b.Ordered(r.h.Conj, e.Term), e.Count)
		}
		return b.Rebuild(args[0], out), true
	}
}

// CONJ(0) -> 0 and CONJ(1) -> 1
func conjConst(h Heads, c int) engine.RuleFunc {
	return func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		args, ok := engine.MatchOrderedN(b, t, h.Conj, 1)
		if !ok || !engine.MatchAtom(b, args[0], c) {
			return ir.NoTerm, false
		}
		return args[0], true
	}
}

// CONJ(CONJ(a)) -> a
func conjConj(h Heads) engine.RuleFunc {
	return func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		args, ok := engine.MatchOrderedN(b, t, h.Conj, 1)
		if !ok {
			return ir.NoTerm, false
		}
		inner, ok := engine.MatchOrderedN(b, args[0], h.Conj, 1)
		if !ok {
			return ir.NoTerm, false
		}
		return inner[0], true
	}
}
