package kernel

import (
	"github.com/LucianoXu/diracoq/internal/engine"
	"github.com/LucianoXu/diracoq/internal/ir"
)

// sum is the unfolded form of SUM(set fun(v typ body)).
type sum struct {
	set  ir.Term
	v    int
	typ  ir.Term
	body ir.Term
}

func (k *Kernel) matchSum(t ir.Term) (sum, bool) {
	args, ok := k.match(t, k.s.Sum, 2)
	if !ok {
		return sum{}, false
	}
	fn, ok := k.match(args[1], k.s.Fun, 3)
	if !ok || !k.bank.IsAtom(fn[0]) {
		return sum{}, false
	}
	return sum{set: args[0], v: k.bank.Head(fn[0]), typ: fn[1], body: fn[2]}, true
}

func (k *Kernel) sumTerm(sm sum) ir.Term {
	return k.mk(k.s.Sum, sm.set, k.mk(k.s.Fun, k.atom(sm.v), sm.typ, sm.body))
}

// avoiding renames the bound variable of sm when it is free in any of ts.
func (k *Kernel) avoiding(sm sum, ts ...ir.Term) sum {
	for _, t := range ts {
		if k.occursFree(t, sm.v) {
			fresh := k.freshSymbol()
			sm.body = k.Subst(sm.body, sm.v, k.atom(fresh))
			sm.v = fresh
			return sm
		}
	}
	return sm
}

// collapse builds the AC node head over ms, or its only element.
func (k *Kernel) collapse(head, unit int, ms ir.Multiset) ir.Term {
	switch ms.Total() {
	case 0:
		return k.atom(unit)
	case 1:
		return ms[0].Term
	}
	return k.bank.AC(head, ms)
}

func (k *Kernel) sumRules() engine.RuleSet {
	s := k.s
	rules := []engine.Rule{
		k.sumConst("R_SUM_CONST0", s.Zero),
		k.sumConst("R_SUM_CONST1", s.ZeroK),
		k.sumConst("R_SUM_CONST2", s.ZeroB),
		k.sumConst("R_SUM_CONST3", s.ZeroO),

		{Name: "R_SUM_ELIM0", Apply: k.ruleSumElimDelta},
		{Name: "R_SUM_ELIM1", Apply: k.ruleSumElimMuls},
		{Name: "R_SUM_ELIM2", Apply: k.ruleSumElimScr},
		{Name: "R_SUM_ELIM3", Apply: k.ruleSumElimScrMuls},

		{Name: "R_SUM_PUSH0", Apply: k.ruleSumPushMuls},
		k.sumPush("R_SUM_PUSH1", s.Conj, 1, 0),
		k.sumPush("R_SUM_PUSH2", s.Adj, 1, 0),
		k.sumPush("R_SUM_PUSH3", s.Scr, 2, 1),
		k.sumPush("R_SUM_PUSH4", s.Scr, 2, 0),
		k.sumPush("R_SUM_PUSH5", s.Dot, 2, 0),
		k.sumPush("R_SUM_PUSH6", s.Dot, 2, 1),
		k.sumPush("R_SUM_PUSH7", s.MulK, 2, 0),
		k.sumPush("R_SUM_PUSH8", s.MulK, 2, 1),
		k.sumPush("R_SUM_PUSH9", s.MulB, 2, 0),
		k.sumPush("R_SUM_PUSH10", s.MulB, 2, 1),
		k.sumPush("R_SUM_PUSH11", s.Outer, 2, 0),
		k.sumPush("R_SUM_PUSH12", s.Outer, 2, 1),
		k.sumPush("R_SUM_PUSH13", s.MulO, 2, 0),
		k.sumPush("R_SUM_PUSH14", s.MulO, 2, 1),
		k.sumPush("R_SUM_PUSH15", s.Tsr, 2, 0),
		k.sumPush("R_SUM_PUSH16", s.Tsr, 2, 1),

		{Name: "R_SUM_ADDS0", Apply: k.ruleSumSplit(s.Adds)},
		{Name: "R_SUM_ADD0", Apply: k.ruleSumSplit(s.Add)},

		{Name: "R_SUM_SWAP", Apply: k.ruleSumSwap},
	}
	return engine.RuleSet{Name: "sum", Rules: rules}
}

// sumConst drops a sum whose body is a zero not depending on the index.
func (k *Kernel) sumConst(name string, zeroHead int) engine.Rule {
	return engine.Rule{Name: name, Apply: func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		sm, ok := k.matchSum(t)
		if !ok || b.Kind(sm.body) != ir.KindOrdered || b.Head(sm.body) != zeroHead {
			return ir.NoTerm, false
		}
		if k.occursFree(sm.body, sm.v) {
			return ir.NoTerm, false
		}
		return sm.body, true
	}}
}

// matchElim matches a sum over a universal set.
func (k *Kernel) matchElim(t ir.Term) (sum, bool) {
	sm, ok := k.matchSum(t)
	if !ok {
		return sum{}, false
	}
	if _, ok := k.match(sm.set, k.s.USet, 1); !ok {
		return sum{}, false
	}
	return sm, true
}

// deltaPartner returns j when d is DELTA(v j) and v is not free in j.
func (k *Kernel) deltaPartner(d ir.Term, v int) (ir.Term, bool) {
	ms, ok := engine.MatchMultiset(k.bank, d, k.s.Delta)
	if !ok || len(ms) != 2 {
		return ir.NoTerm, false
	}
	x := k.atom(v)
	for i, e := range ms {
		if e.Term != x {
			continue
		}
		j := ms[1-i].Term
		if k.occursFree(j, v) {
			return ir.NoTerm, false
		}
		return j, true
	}
	return ir.NoTerm, false
}

// splitDelta removes one DELTA(v j) factor from a MULS body.
func (k *Kernel) splitDelta(t ir.Term, v int) (j, rest ir.Term, ok bool) {
	ms, ok := engine.MatchMultiset(k.bank, t, k.s.Muls)
	if !ok {
		return ir.NoTerm, ir.NoTerm, false
	}
	for _, e := range ms {
		if j, ok := k.deltaPartner(e.Term, v); ok {
			ms.MustSubtract(e.Term, 1)
			return j, k.collapse(k.s.Muls, k.s.One, ms), true
		}
	}
	return ir.NoTerm, ir.NoTerm, false
}

// SUM(USET(A) fun(i T DELTA(i j))) -> 1
func (k *Kernel) ruleSumElimDelta(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	sm, ok := k.matchElim(t)
	if !ok {
		return ir.NoTerm, false
	}
	if _, ok := k.deltaPartner(sm.body, sm.v); !ok {
		return ir.NoTerm, false
	}
	return k.atom(k.s.One), true
}

// SUM(USET(A) fun(i T MULS(DELTA(i j) a...))) -> MULS(a...)[i:=j]
func (k *Kernel) ruleSumElimMuls(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	sm, ok := k.matchElim(t)
	if !ok {
		return ir.NoTerm, false
	}
	j, rest, ok := k.splitDelta(sm.body, sm.v)
	if !ok {
		return ir.NoTerm, false
	}
	return k.Subst(rest, sm.v, j), true
}

// SUM(USET(A) fun(i T SCR(DELTA(i j) X))) -> X[i:=j]
func (k *Kernel) ruleSumElimScr(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	sm, ok := k.matchElim(t)
	if !ok {
		return ir.NoTerm, false
	}
	args, ok := k.match(sm.body, k.s.Scr, 2)
	if !ok {
		return ir.NoTerm, false
	}
	j, ok := k.deltaPartner(args[0], sm.v)
	if !ok {
		return ir.NoTerm, false
	}
	return k.Subst(args[1], sm.v, j), true
}

// SUM(USET(A) fun(i T SCR(MULS(DELTA(i j) a...) X))) -> SCR(MULS(a...) X)[i:=j]
func (k *Kernel) ruleSumElimScrMuls(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	sm, ok := k.matchElim(t)
	if !ok {
		return ir.NoTerm, false
	}
	args, ok := k.match(sm.body, k.s.Scr, 2)
	if !ok {
		return ir.NoTerm, false
	}
	j, rest, ok := k.splitDelta(args[0], sm.v)
	if !ok {
		return ir.NoTerm, false
	}
	return k.Subst(k.mk(k.s.Scr, rest, args[1]), sm.v, j), true
}

// MULS(SUM(s fun(i T a)) b...) -> SUM(s fun(i T MULS(a b...)))
func (k *Kernel) ruleSumPushMuls(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	ms, ok := engine.MatchMultiset(b, t, k.s.Muls)
	if !ok {
		return ir.NoTerm, false
	}
	for _, e := range ms {
		sm, ok := k.matchSum(e.Term)
		if !ok {
			continue
		}
		ms.MustSubtract(e.Term, 1)
		sm = k.avoiding(sm, ms.Terms()...)
		ms.Add(sm.body, 1)
		sm.body = b.AC(k.s.Muls, ms)
		return k.sumTerm(sm), true
	}
	return ir.NoTerm, false
}

// sumPush moves head(..., SUM(s fun(i T x)), ...) with the sum at side into
// the sum body: SUM(s fun(i T head(..., x, ...))).
func (k *Kernel) sumPush(name string, head, n, side int) engine.Rule {
	return engine.Rule{Name: name, Apply: func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		args, ok := k.match(t, head, n)
		if !ok {
			return ir.NoTerm, false
		}
		sm, ok := k.matchSum(args[side])
		if !ok {
			return ir.NoTerm, false
		}
		others := make([]ir.Term, 0, n-1)
		for i, a := range args {
			if i != side {
				others = append(others, a)
			}
		}
		sm = k.avoiding(sm, others...)
		args[side] = sm.body
		sm.body = k.mk(head, args...)
		return k.sumTerm(sm), true
	}}
}

// ruleSumSplit distributes a sum over an AC body with the given head.
//
//	SUM(s fun(i T ADD(a b))) -> ADD(SUM(s fun(i T a)) SUM(s fun(i T b)))
func (k *Kernel) ruleSumSplit(head int) engine.RuleFunc {
	return func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		sm, ok := k.matchSum(t)
		if !ok {
			return ir.NoTerm, false
		}
		ms, ok := engine.MatchMultiset(b, sm.body, head)
		if !ok {
			return ir.NoTerm, false
		}
		return k.mapEntries(head, ms, func(x ir.Term) ir.Term {
			part := sm
			part.body = x
			return k.sumTerm(part)
		}), true
	}
}

// SUM(s1 fun(i T1 SUM(s2 fun(j T2 X)))) -> SUM(s2 fun(j T2 SUM(s1 fun(i T1 X))))
//
// Only fires when neither domain mentions the other variable and the result
// is smaller in de Bruijn form, so nested sums settle on one order.
func (k *Kernel) ruleSumSwap(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	outer, ok := k.matchSum(t)
	if !ok {
		return ir.NoTerm, false
	}
	inner, ok := k.matchSum(outer.body)
	if !ok {
		return ir.NoTerm, false
	}
	if inner.v == outer.v {
		// The inner binder shadows the outer one, so the outer variable
		// is not free in the inner body.
		fresh := k.freshSymbol()
		inner.body = k.Subst(inner.body, inner.v, k.atom(fresh))
		inner.v = fresh
	}
	if k.occursFree(inner.set, outer.v) || k.occursFree(inner.typ, outer.v) {
		return ir.NoTerm, false
	}
	if k.occursFree(outer.set, inner.v) || k.occursFree(outer.typ, inner.v) {
		return ir.NoTerm, false
	}
	swapped := inner
	swapped.body = k.sumTerm(sum{set: outer.set, v: outer.v, typ: outer.typ, body: inner.body})
	result := k.sumTerm(swapped)

	from, err := k.ToDeBruijn(t)
	if err != nil {
		return ir.NoTerm, false
	}
	to, err := k.ToDeBruijn(result)
	if err != nil {
		return ir.NoTerm, false
	}
	if b.Compare(to, from) >= 0 {
		return ir.NoTerm, false
	}
	return result, true
}
