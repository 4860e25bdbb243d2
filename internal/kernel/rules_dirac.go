package kernel

import (
	"slices"

	"github.com/LucianoXu/diracoq/internal/engine"
	"github.com/LucianoXu/diracoq/internal/ir"
)

// zeroOf returns the zero of a linear type: 0, 0K(A), 0B(A) or 0O(A B).
func (k *Kernel) zeroOf(typ ir.Term) (ir.Term, bool) {
	s := k.s
	l := k.linearOf(typ)
	switch l.head {
	case s.SType:
		return k.atom(s.Zero), true
	case s.KType:
		return k.mk(s.ZeroK, l.idx[0]), true
	case s.BType:
		return k.mk(s.ZeroB, l.idx[0]), true
	case s.OType:
		return k.mk(s.ZeroO, l.idx[0], l.idx[1]), true
	}
	return ir.NoTerm, false
}

// zeroLike is the zero of t's own type.
func (k *Kernel) zeroLike(t ir.Term) (ir.Term, bool) {
	typ, ok := k.typeOf(t)
	if !ok {
		return ir.NoTerm, false
	}
	return k.zeroOf(typ)
}

func (k *Kernel) diracRules() engine.RuleSet {
	s := k.s
	scr := func(a, x ir.Term) ir.Term { return k.mk(s.Scr, a, x) }
	muls := func(a, x ir.Term) ir.Term { return k.ac(s.Muls, a, x) }

	rules := []engine.Rule{
		{Name: "R_CONJ5", Apply: k.ruleConjDelta},
		{Name: "R_CONJ6", Apply: k.ruleConjDot},

		k.annihilated("R_DOT0", s.Dot, 0, s.ZeroB),
		k.annihilated("R_DOT1", s.Dot, 1, s.ZeroK),
		k.scaled("R_DOT2", s.Dot, 0, muls),
		k.scaled("R_DOT3", s.Dot, 1, muls),
		k.distributed("R_DOT4", s.Dot, 0, s.Adds),
		k.distributed("R_DOT5", s.Dot, 1, s.Adds),
		k.both("R_DOT6", s.Dot, s.Bra, 1, s.Ket, 1, func(x, y []ir.Term) ir.Term {
			return k.delta(x[0], y[0])
		}),
		{Name: "R_DOT7", Apply: k.ruleSplitPair(s.Dot, 0, s.Ket, func(x, y ir.Term) ir.Term {
			return k.ac(s.Muls, x, y)
		})},
		{Name: "R_DOT8", Apply: k.ruleSplitPair(s.Dot, 1, s.Bra, func(x, y ir.Term) ir.Term {
			return k.ac(s.Muls, x, y)
		})},
		k.both("R_DOT9", s.Dot, s.Tsr, 2, s.Tsr, 2, func(x, y []ir.Term) ir.Term {
			return k.ac(s.Muls, k.mk(s.Dot, x[0], y[0]), k.mk(s.Dot, x[1], y[1]))
		}),
		k.leftNested("R_DOT10", s.Dot, s.MulB, func(inner []ir.Term, right ir.Term) ir.Term {
			return k.mk(s.Dot, inner[0], k.mk(s.MulK, inner[1], right))
		}),

		{Name: "R_DELTA0", Apply: k.ruleDeltaSame},
		{Name: "R_DELTA1", Apply: k.ruleDeltaPair},
		{Name: "R_BIT_DELTA", Apply: k.ruleDeltaBits},

		{Name: "R_SCR0", Apply: k.ruleScrOne},
		{Name: "R_SCR1", Apply: k.ruleScrScr},
		k.distributed("R_SCR2", s.Scr, 1, s.Add),
		k.scrZero("R_SCRK0", s.KType),
		k.scrZero("R_SCRB0", s.BType),
		k.scrZero("R_SCRO0", s.OType),
		k.annihilated("R_SCRK1", s.Scr, 1, s.ZeroK),
		k.annihilated("R_SCRB1", s.Scr, 1, s.ZeroB),
		k.annihilated("R_SCRO1", s.Scr, 1, s.ZeroO),

		{Name: "R_ADDID", Apply: k.ruleAddID},
		{Name: "R_ADD0", Apply: k.ruleAddRepeated},
		{Name: "R_ADD1", Apply: k.ruleAddScaledPlain},
		{Name: "R_ADD2", Apply: k.ruleAddScaledScaled},
		k.addZero("R_ADDK0", s.ZeroK),
		k.addZero("R_ADDB0", s.ZeroB),
		k.addZero("R_ADDO0", s.ZeroO),

		k.adjOf("R_ADJ0", s.Adj, 1, func(x []ir.Term) ir.Term { return x[0] }),
		k.adjOf("R_ADJ1", s.Scr, 2, func(x []ir.Term) ir.Term {
			return k.mk(s.Scr, k.mk(s.Conj, x[0]), k.mk(s.Adj, x[1]))
		}),
		{Name: "R_ADJ2", Apply: k.ruleAdjAdd},
		k.adjOf("R_ADJ3", s.Tsr, 2, func(x []ir.Term) ir.Term {
			return k.mk(s.Tsr, k.mk(s.Adj, x[0]), k.mk(s.Adj, x[1]))
		}),
		k.adjOf("R_ADJK0", s.ZeroB, 1, func(x []ir.Term) ir.Term { return k.mk(s.ZeroK, x[0]) }),
		k.adjOf("R_ADJK1", s.Bra, 1, func(x []ir.Term) ir.Term { return k.mk(s.Ket, x[0]) }),
		k.adjOf("R_ADJK2", s.MulB, 2, func(x []ir.Term) ir.Term {
			return k.mk(s.MulK, k.mk(s.Adj, x[1]), k.mk(s.Adj, x[0]))
		}),
		k.adjOf("R_ADJB0", s.ZeroK, 1, func(x []ir.Term) ir.Term { return k.mk(s.ZeroB, x[0]) }),
		k.adjOf("R_ADJB1", s.Ket, 1, func(x []ir.Term) ir.Term { return k.mk(s.Bra, x[0]) }),
		k.adjOf("R_ADJB2", s.MulK, 2, func(x []ir.Term) ir.Term {
			return k.mk(s.MulB, k.mk(s.Adj, x[1]), k.mk(s.Adj, x[0]))
		}),
		k.adjOf("R_ADJO0", s.ZeroO, 2, func(x []ir.Term) ir.Term { return k.mk(s.ZeroO, x[1], x[0]) }),
		k.adjOf("R_ADJO1", s.OneO, 1, func(x []ir.Term) ir.Term { return k.mk(s.OneO, x[0]) }),
		k.adjOf("R_ADJO2", s.Outer, 2, func(x []ir.Term) ir.Term {
			return k.mk(s.Outer, k.mk(s.Adj, x[1]), k.mk(s.Adj, x[0]))
		}),
		k.adjOf("R_ADJO3", s.MulO, 2, func(x []ir.Term) ir.Term {
			return k.mk(s.MulO, k.mk(s.Adj, x[1]), k.mk(s.Adj, x[0]))
		}),

		k.scaled("R_TSR0", s.Tsr, 0, scr),
		k.scaled("R_TSR1", s.Tsr, 1, scr),
		k.distributed("R_TSR2", s.Tsr, 0, s.Add),
		k.distributed("R_TSR3", s.Tsr, 1, s.Add),
		k.annihilated("R_TSRK0", s.Tsr, 0, s.ZeroK),
		k.annihilated("R_TSRK1", s.Tsr, 1, s.ZeroK),
		k.both("R_TSRK2", s.Tsr, s.Ket, 1, s.Ket, 1, func(x, y []ir.Term) ir.Term {
			return k.mk(s.Ket, k.mk(s.Pair, x[0], y[0]))
		}),
		k.annihilated("R_TSRB0", s.Tsr, 0, s.ZeroB),
		k.annihilated("R_TSRB1", s.Tsr, 1, s.ZeroB),
		k.both("R_TSRB2", s.Tsr, s.Bra, 1, s.Bra, 1, func(x, y []ir.Term) ir.Term {
			return k.mk(s.Bra, k.mk(s.Pair, x[0], y[0]))
		}),
		k.annihilated("R_TSRO0", s.Tsr, 0, s.ZeroO),
		k.annihilated("R_TSRO1", s.Tsr, 1, s.ZeroO),
		k.both("R_TSRO2", s.Tsr, s.OneO, 1, s.OneO, 1, func(x, y []ir.Term) ir.Term {
			return k.mk(s.OneO, k.mk(s.Prod, x[0], y[0]))
		}),
		k.both("R_TSRO3", s.Tsr, s.Outer, 2, s.Outer, 2, func(x, y []ir.Term) ir.Term {
			return k.mk(s.Outer, k.mk(s.Tsr, x[0], y[0]), k.mk(s.Tsr, x[1], y[1]))
		}),

		k.annihilated("R_MULK0", s.MulK, 0, s.ZeroO),
		k.annihilated("R_MULK1", s.MulK, 1, s.ZeroK),
		k.unit("R_MULK2", s.MulK, 0),
		k.scaled("R_MULK3", s.MulK, 0, scr),
		k.scaled("R_MULK4", s.MulK, 1, scr),
		k.distributed("R_MULK5", s.MulK, 0, s.Add),
		k.distributed("R_MULK6", s.MulK, 1, s.Add),
		k.leftNested("R_MULK7", s.MulK, s.Outer, func(inner []ir.Term, right ir.Term) ir.Term {
			return k.mk(s.Scr, k.mk(s.Dot, inner[1], right), inner[0])
		}),
		k.leftNested("R_MULK8", s.MulK, s.MulO, func(inner []ir.Term, right ir.Term) ir.Term {
			return k.mk(s.MulK, inner[0], k.mk(s.MulK, inner[1], right))
		}),
		k.both("R_MULK9", s.MulK, s.Tsr, 2, s.Tsr, 2, func(x, y []ir.Term) ir.Term {
			return k.mk(s.Tsr, k.mk(s.MulK, x[0], y[0]), k.mk(s.MulK, x[1], y[1]))
		}),
		{Name: "R_MULK10", Apply: k.ruleSplitPair(s.MulK, 0, s.Ket, func(x, y ir.Term) ir.Term {
			return k.mk(s.Tsr, x, y)
		})},

		k.annihilated("R_MULB0", s.MulB, 1, s.ZeroO),
		k.annihilated("R_MULB1", s.MulB, 0, s.ZeroB),
		k.unit("R_MULB2", s.MulB, 1),
		k.scaled("R_MULB3", s.MulB, 0, scr),
		k.scaled("R_MULB4", s.MulB, 1, scr),
		k.distributed("R_MULB5", s.MulB, 0, s.Add),
		k.distributed("R_MULB6", s.MulB, 1, s.Add),
		k.rightNested("R_MULB7", s.MulB, s.Outer, func(left ir.Term, inner []ir.Term) ir.Term {
			return k.mk(s.Scr, k.mk(s.Dot, left, inner[0]), inner[1])
		}),
		k.rightNested("R_MULB8", s.MulB, s.MulO, func(left ir.Term, inner []ir.Term) ir.Term {
			return k.mk(s.MulB, k.mk(s.MulB, left, inner[0]), inner[1])
		}),
		k.both("R_MULB9", s.MulB, s.Tsr, 2, s.Tsr, 2, func(x, y []ir.Term) ir.Term {
			return k.mk(s.Tsr, k.mk(s.MulB, x[0], y[0]), k.mk(s.MulB, x[1], y[1]))
		}),
		{Name: "R_MULB10", Apply: k.ruleSplitPair(s.MulB, 1, s.Bra, func(x, y ir.Term) ir.Term {
			return k.mk(s.Tsr, x, y)
		})},

		k.annihilated("R_OUTER0", s.Outer, 0, s.ZeroK),
		k.annihilated("R_OUTER1", s.Outer, 1, s.ZeroB),
		k.scaled("R_OUTER2", s.Outer, 0, scr),
		k.scaled("R_OUTER3", s.Outer, 1, scr),
		k.distributed("R_OUTER4", s.Outer, 0, s.Add),
		k.distributed("R_OUTER5", s.Outer, 1, s.Add),

		k.annihilated("R_MULO0", s.MulO, 0, s.ZeroO),
		k.annihilated("R_MULO1", s.MulO, 1, s.ZeroO),
		k.unit("R_MULO2", s.MulO, 0),
		k.unit("R_MULO3", s.MulO, 1),
		k.leftNested("R_MULO4", s.MulO, s.Outer, func(inner []ir.Term, right ir.Term) ir.Term {
			return k.mk(s.Outer, inner[0], k.mk(s.MulB, inner[1], right))
		}),
		k.rightNested("R_MULO5", s.MulO, s.Outer, func(left ir.Term, inner []ir.Term) ir.Term {
			return k.mk(s.Outer, k.mk(s.MulK, left, inner[0]), inner[1])
		}),
		k.scaled("R_MULO6", s.MulO, 0, scr),
		k.scaled("R_MULO7", s.MulO, 1, scr),
		k.distributed("R_MULO8", s.MulO, 0, s.Add),
		k.distributed("R_MULO9", s.MulO, 1, s.Add),
		k.leftNested("R_MULO10", s.MulO, s.MulO, func(inner []ir.Term, right ir.Term) ir.Term {
			return k.mk(s.MulO, inner[0], k.mk(s.MulO, inner[1], right))
		}),
		k.both("R_MULO11", s.MulO, s.Tsr, 2, s.Tsr, 2, func(x, y []ir.Term) ir.Term {
			return k.mk(s.Tsr, k.mk(s.MulO, x[0], y[0]), k.mk(s.MulO, x[1], y[1]))
		}),

		k.both("R_SET0", s.CatProd, s.USet, 1, s.USet, 1, func(x, y []ir.Term) ir.Term {
			return k.mk(s.USet, k.mk(s.Prod, x[0], y[0]))
		}),
	}
	return engine.RuleSet{Name: "dirac", Rules: rules}
}

// annihilated rewrites head(x y) to the zero of its type when the operand
// at side has zeroHead.
func (k *Kernel) annihilated(name string, head, side, zeroHead int) engine.Rule {
	return engine.Rule{Name: name, Apply: func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		args, ok := k.match(t, head, 2)
		if !ok || b.Kind(args[side]) != ir.KindOrdered || b.Head(args[side]) != zeroHead {
			return ir.NoTerm, false
		}
		return k.zeroLike(t)
	}}
}

// unit rewrites head(1O(A) x) or head(x 1O(A)) to x.
func (k *Kernel) unit(name string, head, side int) engine.Rule {
	return engine.Rule{Name: name, Apply: func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		args, ok := k.match(t, head, 2)
		if !ok {
			return ir.NoTerm, false
		}
		if _, ok := k.match(args[side], k.s.OneO, 1); !ok {
			return ir.NoTerm, false
		}
		return args[1-side], true
	}}
}

// scaled pulls the scalar out of an SCR operand at side:
// head(SCR(a x) y) -> wrap(a, head(x y)).
func (k *Kernel) scaled(name string, head, side int, wrap func(a, inner ir.Term) ir.Term) engine.Rule {
	return engine.Rule{Name: name, Apply: func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		args, ok := k.match(t, head, 2)
		if !ok {
			return ir.NoTerm, false
		}
		inner, ok := k.match(args[side], k.s.Scr, 2)
		if !ok {
			return ir.NoTerm, false
		}
		args[side] = inner[1]
		return wrap(inner[0], k.mk(head, args...)), true
	}}
}

// distributed splits head(x y) over an ADD operand at side, collecting the
// results under sum.
func (k *Kernel) distributed(name string, head, side, sum int) engine.Rule {
	return engine.Rule{Name: name, Apply: func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		args, ok := k.match(t, head, 2)
		if !ok {
			return ir.NoTerm, false
		}
		ms, ok := engine.MatchMultiset(b, args[side], k.s.Add)
		if !ok {
			return ir.NoTerm, false
		}
		return k.mapEntries(sum, ms, func(x ir.Term) ir.Term {
			split := slices.Clone(args)
			split[side] = x
			return k.mk(head, split...)
		}), true
	}}
}

// both matches head(l(x...) r(y...)).
func (k *Kernel) both(name string, head, l, ln, r, rn int, build func(x, y []ir.Term) ir.Term) engine.Rule {
	return engine.Rule{Name: name, Apply: func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		args, ok := k.match(t, head, 2)
		if !ok {
			return ir.NoTerm, false
		}
		x, ok := k.match(args[0], l, ln)
		if !ok {
			return ir.NoTerm, false
		}
		y, ok := k.match(args[1], r, rn)
		if !ok {
			return ir.NoTerm, false
		}
		return build(x, y), true
	}}
}

// leftNested matches head(inner(x1 x2) y).
func (k *Kernel) leftNested(name string, head, inner int, build func(x []ir.Term, y ir.Term) ir.Term) engine.Rule {
	return engine.Rule{Name: name, Apply: func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		args, ok := k.match(t, head, 2)
		if !ok {
			return ir.NoTerm, false
		}
		x, ok := k.match(args[0], inner, 2)
		if !ok {
			return ir.NoTerm, false
		}
		return build(x, args[1]), true
	}}
}

// rightNested matches head(x inner(y1 y2)).
func (k *Kernel) rightNested(name string, head, inner int, build func(x ir.Term, y []ir.Term) ir.Term) engine.Rule {
	return engine.Rule{Name: name, Apply: func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		args, ok := k.match(t, head, 2)
		if !ok {
			return ir.NoTerm, false
		}
		y, ok := k.match(args[1], inner, 2)
		if !ok {
			return ir.NoTerm, false
		}
		return build(args[0], y), true
	}}
}

// ruleSplitPair splits a product of a tensor with a basis vector on a pair.
// With the tensor at side 0:
//
//	head(TSR(x1 x2) vec(PAIR(s t))) -> join(head(x1 vec(s)), head(x2 vec(t)))
//
// and mirrored for side 1.
func (k *Kernel) ruleSplitPair(head, tsrSide, vec int, join func(x, y ir.Term) ir.Term) engine.RuleFunc {
	return func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		args, ok := k.match(t, head, 2)
		if !ok {
			return ir.NoTerm, false
		}
		tsr, ok := k.match(args[tsrSide], k.s.Tsr, 2)
		if !ok {
			return ir.NoTerm, false
		}
		v, ok := k.match(args[1-tsrSide], vec, 1)
		if !ok {
			return ir.NoTerm, false
		}
		pair, ok := k.match(v[0], k.s.Pair, 2)
		if !ok {
			return ir.NoTerm, false
		}
		part := func(i int) ir.Term {
			if tsrSide == 0 {
				return k.mk(head, tsr[i], k.mk(vec, pair[i]))
			}
			return k.mk(head, k.mk(vec, pair[i]), tsr[i])
		}
		return join(part(0), part(1)), true
	}
}

// adjOf matches ADJ(inner(x...)).
func (k *Kernel) adjOf(name string, inner, n int, build func(x []ir.Term) ir.Term) engine.Rule {
	return engine.Rule{Name: name, Apply: func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		args, ok := k.match(t, k.s.Adj, 1)
		if !ok {
			return ir.NoTerm, false
		}
		x, ok := k.match(args[0], inner, n)
		if !ok {
			return ir.NoTerm, false
		}
		return build(x), true
	}}
}

// CONJ(DELTA(s t)) -> DELTA(s t)
func (k *Kernel) ruleConjDelta(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	args, ok := k.match(t, k.s.Conj, 1)
	if !ok || b.Head(args[0]) != k.s.Delta {
		return ir.NoTerm, false
	}
	return args[0], true
}

// CONJ(DOT(B K)) -> DOT(ADJ(K) ADJ(B))
func (k *Kernel) ruleConjDot(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	args, ok := k.match(t, k.s.Conj, 1)
	if !ok {
		return ir.NoTerm, false
	}
	dot, ok := k.match(args[0], k.s.Dot, 2)
	if !ok {
		return ir.NoTerm, false
	}
	return k.mk(k.s.Dot, k.mk(k.s.Adj, dot[1]), k.mk(k.s.Adj, dot[0])), true
}

// DELTA(s s) -> 1
func (k *Kernel) ruleDeltaSame(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	ms, ok := engine.MatchMultiset(b, t, k.s.Delta)
	if !ok || len(ms) != 1 || ms[0].Count != 2 {
		return ir.NoTerm, false
	}
	return k.atom(k.s.One), true
}

// DELTA(PAIR(a b) PAIR(c d)) -> MULS(DELTA(a c) DELTA(b d))
func (k *Kernel) ruleDeltaPair(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	ms, ok := engine.MatchMultiset(b, t, k.s.Delta)
	if !ok || len(ms) != 2 {
		return ir.NoTerm, false
	}
	x, ok := k.match(ms[0].Term, k.s.Pair, 2)
	if !ok {
		return ir.NoTerm, false
	}
	y, ok := k.match(ms[1].Term, k.s.Pair, 2)
	if !ok {
		return ir.NoTerm, false
	}
	return k.ac(k.s.Muls, k.delta(x[0], y[0]), k.delta(x[1], y[1])), true
}

// DELTA(#0 #1) -> 0
func (k *Kernel) ruleDeltaBits(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	ms, ok := engine.MatchMultiset(b, t, k.s.Delta)
	if !ok || len(ms) != 2 {
		return ir.NoTerm, false
	}
	if !ms.Contains(k.atom(k.s.Basis0)) || !ms.Contains(k.atom(k.s.Basis1)) {
		return ir.NoTerm, false
	}
	return k.atom(k.s.Zero), true
}

// SCR(1 X) -> X
func (k *Kernel) ruleScrOne(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	args, ok := k.match(t, k.s.Scr, 2)
	if !ok || !engine.MatchAtom(b, args[0], k.s.One) {
		return ir.NoTerm, false
	}
	return args[1], true
}

// SCR(a SCR(b X)) -> SCR(MULS(a b) X)
func (k *Kernel) ruleScrScr(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	args, ok := k.match(t, k.s.Scr, 2)
	if !ok {
		return ir.NoTerm, false
	}
	inner, ok := k.match(args[1], k.s.Scr, 2)
	if !ok {
		return ir.NoTerm, false
	}
	return k.mk(k.s.Scr, k.ac(k.s.Muls, args[0], inner[0]), inner[1]), true
}

// scrZero rewrites SCR(0 X) to the zero of X's type when that type has typeHead.
func (k *Kernel) scrZero(name string, typeHead int) engine.Rule {
	return engine.Rule{Name: name, Apply: func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		args, ok := k.match(t, k.s.Scr, 2)
		if !ok || !engine.MatchAtom(b, args[0], k.s.Zero) {
			return ir.NoTerm, false
		}
		typ, ok := k.typeOf(args[1])
		if !ok || b.Head(typ) != typeHead {
			return ir.NoTerm, false
		}
		return k.zeroOf(typ)
	}}
}

// ADD(X) -> X
func (k *Kernel) ruleAddID(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	ms, ok := engine.MatchMultiset(b, t, k.s.Add)
	if !ok || ms.Total() != 1 {
		return ir.NoTerm, false
	}
	return ms[0].Term, true
}

// ADD(X X ...) -> ADD(SCR(ADDS(1 1) X) ...), collecting every copy of the
// first repeated entry.
func (k *Kernel) ruleAddRepeated(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	ms, ok := engine.MatchMultiset(b, t, k.s.Add)
	if !ok {
		return ir.NoTerm, false
	}
	e, ok := engine.FirstEntry(ms, func(e ir.Entry) bool { return e.Count >= 2 })
	if !ok {
		return ir.NoTerm, false
	}
	var ones ir.Multiset
	ones.Add(k.atom(k.s.One), e.Count)
	ms.RemoveAll(e.Term)
	ms.Add(k.mk(k.s.Scr, b.AC(k.s.Adds, ones), e.Term), 1)
	return b.AC(k.s.Add, ms), true
}

// ADD(SCR(a X) X ...) -> ADD(SCR(ADDS(a 1) X) ...)
func (k *Kernel) ruleAddScaledPlain(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	ms, ok := engine.MatchMultiset(b, t, k.s.Add)
	if !ok {
		return ir.NoTerm, false
	}
	e, ok := engine.FirstEntry(ms, func(e ir.Entry) bool {
		args, ok := k.match(e.Term, k.s.Scr, 2)
		return ok && ms.Contains(args[1])
	})
	if !ok {
		return ir.NoTerm, false
	}
	args := b.Args(e.Term)
	ms.MustSubtract(e.Term, 1)
	ms.MustSubtract(args[1], 1)
	ms.Add(k.mk(k.s.Scr, k.ac(k.s.Adds, args[0], k.atom(k.s.One)), args[1]), 1)
	return b.AC(k.s.Add, ms), true
}

// ADD(SCR(a X) SCR(b X) ...) -> ADD(SCR(ADDS(a b) X) ...)
func (k *Kernel) ruleAddScaledScaled(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	ms, ok := engine.MatchMultiset(b, t, k.s.Add)
	if !ok {
		return ir.NoTerm, false
	}
	for i, ei := range ms {
		x, ok := k.match(ei.Term, k.s.Scr, 2)
		if !ok {
			continue
		}
		for _, ej := range ms[i+1:] {
			y, ok := k.match(ej.Term, k.s.Scr, 2)
			if !ok || y[1] != x[1] {
				continue
			}
			out := ms.Clone()
			out.MustSubtract(ei.Term, 1)
			out.MustSubtract(ej.Term, 1)
			out.Add(k.mk(k.s.Scr, k.ac(k.s.Adds, x[0], y[0]), x[1]), 1)
			return b.AC(k.s.Add, out), true
		}
	}
	return ir.NoTerm, false
}

// addZero drops the zeroHead entries of an ADD with other entries.
func (k *Kernel) addZero(name string, zeroHead int) engine.Rule {
	return engine.Rule{Name: name, Apply: func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		ms, ok := engine.MatchMultiset(b, t, k.s.Add)
		if !ok {
			return ir.NoTerm, false
		}
		isZero := func(e ir.Entry) bool {
			return b.Kind(e.Term) == ir.KindOrdered && b.Head(e.Term) == zeroHead
		}
		zero, ok := engine.FirstEntry(ms, isZero)
		if !ok {
			return ir.NoTerm, false
		}
		rest := make(ir.Multiset, 0, len(ms))
		for _, e := range ms {
			if !isZero(e) {
				rest = append(rest, e)
			}
		}
		if len(rest) == 0 {
			return zero.Term, true
		}
		return b.AC(k.s.Add, rest), true
	}}
}

// ADJ(ADD(X ...)) -> ADD(ADJ(X) ...)
func (k *Kernel) ruleAdjAdd(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	args, ok := k.match(t, k.s.Adj, 1)
	if !ok {
		return ir.NoTerm, false
	}
	ms, ok := engine.MatchMultiset(b, args[0], k.s.Add)
	if !ok {
		return ir.NoTerm, false
	}
	return k.mapEntries(k.s.Add, ms, func(x ir.Term) ir.Term { return k.mk(k.s.Adj, x) }), true
}
