package kernel

import (
	"github.com/LucianoXu/diracoq/internal/engine"
	"github.com/LucianoXu/diracoq/internal/ir"
	"github.com/LucianoXu/diracoq/internal/scalar"
)

// typeOf is CalcType for rules: an ill-typed term never matches.
func (k *Kernel) typeOf(t ir.Term) (ir.Term, bool) {
	typ, err := k.CalcType(t)
	if err != nil {
		return ir.NoTerm, false
	}
	return typ, true
}

// sortOf classifies the type of t. The head is -1 when t is ill-typed or
// not a linear term.
func (k *Kernel) sortOf(t ir.Term) linear {
	typ, ok := k.typeOf(t)
	if !ok {
		return linear{head: -1}
	}
	return k.linearOf(typ)
}

func (k *Kernel) match(t ir.Term, head, n int) ([]ir.Term, bool) {
	return engine.MatchOrderedN(k.bank, t, head, n)
}

func (k *Kernel) ac(head int, ts ...ir.Term) ir.Term {
	return k.bank.AC(head, ir.MultisetOf(ts...))
}

func (k *Kernel) delta(x, y ir.Term) ir.Term {
	return k.bank.Commutative(k.s.Delta, ir.MultisetOf(x, y))
}

// mapEntries rebuilds the AC node head with f applied to every entry,
// keeping multiplicities.
func (k *Kernel) mapEntries(head int, ms ir.Multiset, f func(ir.Term) ir.Term) ir.Term {
	out := make(ir.Multiset, 0, len(ms))
	for _, e := range ms {
		out = append(out, ir.Entry{Term: f(e.Term), Count: e.Count})
	}
	return k.bank.AC(head, out)
}

func (k *Kernel) coreRules() engine.RuleSet {
	s := k.s
	rules := []engine.Rule{
		{Name: "R_DELTA", Apply: k.ruleUnfold},
		{Name: "R_BETA_ARROW", Apply: k.ruleBeta(s.Fun)},
		{Name: "R_BETA_INDEX", Apply: k.ruleBeta(s.Idx)},
		{Name: "R_ETA", Apply: k.ruleEta},

		k.compo("R_COMPO_SS", s.SType, s.SType, func(a, b ir.Term) ir.Term { return k.ac(s.Muls, a, b) }),
		k.compo("R_COMPO_SK", s.SType, s.KType, func(a, b ir.Term) ir.Term { return k.mk(s.Scr, a, b) }),
		k.compo("R_COMPO_SB", s.SType, s.BType, func(a, b ir.Term) ir.Term { return k.mk(s.Scr, a, b) }),
		k.compo("R_COMPO_SO", s.SType, s.OType, func(a, b ir.Term) ir.Term { return k.mk(s.Scr, a, b) }),
		k.compo("R_COMPO_KS", s.KType, s.SType, func(a, b ir.Term) ir.Term { return k.mk(s.Scr, b, a) }),
		k.compo("R_COMPO_KK", s.KType, s.KType, func(a, b ir.Term) ir.Term { return k.mk(s.Tsr, a, b) }),
		k.compo("R_COMPO_KB", s.KType, s.BType, func(a, b ir.Term) ir.Term { return k.mk(s.Outer, a, b) }),
		k.compo("R_COMPO_BS", s.BType, s.SType, func(a, b ir.Term) ir.Term { return k.mk(s.Scr, b, a) }),
		k.compo("R_COMPO_BK", s.BType, s.KType, func(a, b ir.Term) ir.Term { return k.mk(s.Dot, a, b) }),
		k.compo("R_COMPO_BB", s.BType, s.BType, func(a, b ir.Term) ir.Term { return k.mk(s.Tsr, a, b) }),
		k.compo("R_COMPO_BO", s.BType, s.OType, func(a, b ir.Term) ir.Term { return k.mk(s.MulB, a, b) }),
		k.compo("R_COMPO_OS", s.OType, s.SType, func(a, b ir.Term) ir.Term { return k.mk(s.Scr, b, a) }),
		k.compo("R_COMPO_OK", s.OType, s.KType, func(a, b ir.Term) ir.Term { return k.mk(s.MulK, a, b) }),
		k.compo("R_COMPO_OO", s.OType, s.OType, func(a, b ir.Term) ir.Term { return k.mk(s.MulO, a, b) }),
		{Name: "R_COMPO_ARROW", Apply: k.ruleCompoApply(s.Arrow)},
		{Name: "R_COMPO_FORALL", Apply: k.ruleCompoApply(s.Forall)},

		{Name: "R_STAR_PROD", Apply: k.ruleStarProd},
		{Name: "R_STAR_MULS", Apply: k.ruleStarMuls},
		{Name: "R_STAR_TSRO", Apply: k.ruleStarPair(s.OType, s.Tsr)},
		{Name: "R_STAR_CATPROD", Apply: k.ruleStarPair(s.Set, s.CatProd)},
		{Name: "R_ADDG_ADDS", Apply: k.ruleAddG(true)},
		{Name: "R_ADDG_ADD", Apply: k.ruleAddG(false)},
		{Name: "R_SSUM", Apply: k.ruleSSum},

		k.dotAs("R_DOT_MULK", s.OType, s.KType, s.MulK),
		k.dotAs("R_DOT_MULB", s.BType, s.OType, s.MulB),
		k.dotAs("R_DOT_OUTER", s.KType, s.BType, s.Outer),
		k.dotAs("R_DOT_MULO", s.OType, s.OType, s.MulO),
	}
	return engine.Join("core", engine.RuleSet{Name: "core", Rules: rules}, scalar.Rules(s.scalar))
}

// x -> value, for a definition x := value in the environment.
func (k *Kernel) ruleUnfold(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	if !b.IsAtom(t) {
		return ir.NoTerm, false
	}
	dec, ok := k.FindDec(b.Head(t))
	if !ok || !dec.IsDef() {
		return ir.NoTerm, false
	}
	return dec.Value, true
}

// apply(fun(x T body) a) -> body[x:=a], and apply(idx(x body) a) likewise.
func (k *Kernel) ruleBeta(binder int) engine.RuleFunc {
	return func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		args, ok := k.match(t, k.s.Apply, 2)
		if !ok || b.Head(args[0]) != binder {
			return ir.NoTerm, false
		}
		v, body, ok := k.binder(args[0])
		if !ok {
			return ir.NoTerm, false
		}
		return k.Subst(b.Args(args[0])[body], v, args[1]), true
	}
}

// fun(x T apply(f x)) -> f and idx(x apply(f x)) -> f, when x is not free in f.
func (k *Kernel) ruleEta(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	if b.Head(t) != k.s.Fun && b.Head(t) != k.s.Idx {
		return ir.NoTerm, false
	}
	v, body, ok := k.binder(t)
	if !ok {
		return ir.NoTerm, false
	}
	app, ok := k.match(b.Args(t)[body], k.s.Apply, 2)
	if !ok || !engine.MatchAtom(b, app[1], v) || k.occursFree(app[0], v) {
		return ir.NoTerm, false
	}
	return app[0], true
}

// compo rewrites a well-typed a @ b whose operands have the given sorts.
func (k *Kernel) compo(name string, left, right int, build func(a, b ir.Term) ir.Term) engine.Rule {
	return engine.Rule{Name: name, Apply: func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		args, ok := k.match(t, k.s.Compo, 2)
		if !ok {
			return ir.NoTerm, false
		}
		if _, ok := k.typeOf(t); !ok {
			return ir.NoTerm, false
		}
		if k.sortOf(args[0]).head != left || k.sortOf(args[1]).head != right {
			return ir.NoTerm, false
		}
		return build(args[0], args[1]), true
	}}
}

// f @ a -> apply(f a) when f has an Arrow or Forall type.
func (k *Kernel) ruleCompoApply(typeHead int) engine.RuleFunc {
	return func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		args, ok := k.match(t, k.s.Compo, 2)
		if !ok {
			return ir.NoTerm, false
		}
		if _, ok := k.typeOf(t); !ok {
			return ir.NoTerm, false
		}
		typ, ok := k.typeOf(args[0])
		if !ok || b.Head(typ) != typeHead {
			return ir.NoTerm, false
		}
		return k.mk(k.s.Apply, args[0], args[1]), true
	}
}

// STAR(A B) -> Prod(A B) for indices.
func (k *Kernel) ruleStarProd(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	args, ok := k.match(t, k.s.Star, 2)
	if !ok {
		return ir.NoTerm, false
	}
	typ, ok := k.typeOf(t)
	if !ok || !engine.MatchAtom(b, typ, k.s.Index) {
		return ir.NoTerm, false
	}
	return k.mk(k.s.Prod, args...), true
}

// STAR(a b ...) -> MULS(a b ...) for scalars.
func (k *Kernel) ruleStarMuls(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	args, ok := engine.MatchOrdered(b, t, k.s.Star)
	if !ok {
		return ir.NoTerm, false
	}
	typ, ok := k.typeOf(t)
	if !ok || !engine.MatchAtom(b, typ, k.s.SType) {
		return ir.NoTerm, false
	}
	return k.ac(k.s.Muls, args...), true
}

// STAR(x y) -> head(x y) when the operands' types have typeHead.
func (k *Kernel) ruleStarPair(typeHead, head int) engine.RuleFunc {
	return func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		args, ok := k.match(t, k.s.Star, 2)
		if !ok {
			return ir.NoTerm, false
		}
		if _, ok := k.typeOf(t); !ok {
			return ir.NoTerm, false
		}
		typ, ok := k.typeOf(args[0])
		if !ok || b.Head(typ) != typeHead {
			return ir.NoTerm, false
		}
		return k.mk(head, args...), true
	}
}

// ADDG(...) -> ADDS(...) for scalars, ADD(...) otherwise.
func (k *Kernel) ruleAddG(scalars bool) engine.RuleFunc {
	return func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		args, ok := engine.MatchOrdered(b, t, k.s.AddG)
		if !ok {
			return ir.NoTerm, false
		}
		typ, ok := k.typeOf(t)
		if !ok {
			return ir.NoTerm, false
		}
		isScalar := engine.MatchAtom(b, typ, k.s.SType)
		if isScalar != scalars {
			return ir.NoTerm, false
		}
		if scalars {
			return k.ac(k.s.Adds, args...), true
		}
		return k.ac(k.s.Add, args...), true
	}
}

// SSUM(i s body) -> SUM(s fun(i Basis(A) body)) where s : Set(A).
func (k *Kernel) ruleSSum(b *ir.Bank, t ir.Term) (ir.Term, bool) {
	args, ok := k.match(t, k.s.SSum, 3)
	if !ok {
		return ir.NoTerm, false
	}
	if _, ok := k.typeOf(t); !ok {
		return ir.NoTerm, false
	}
	setType, ok := k.typeOf(args[1])
	if !ok {
		return ir.NoTerm, false
	}
	set, ok := k.typeArgs(setType, k.s.Set, 1)
	if !ok {
		return ir.NoTerm, false
	}
	fn := k.mk(k.s.Fun, args[0], k.mk(k.s.Basis, set[0]), args[2])
	return k.mk(k.s.Sum, args[1], fn), true
}

// dotAs rewrites DOT(x y) to head(x y) when the operands have the given sorts.
func (k *Kernel) dotAs(name string, left, right, head int) engine.Rule {
	return engine.Rule{Name: name, Apply: func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		args, ok := k.match(t, k.s.Dot, 2)
		if !ok {
			return ir.NoTerm, false
		}
		if _, ok := k.typeOf(t); !ok {
			return ir.NoTerm, false
		}
		if k.sortOf(args[0]).head != left || k.sortOf(args[1]).head != right {
			return ir.NoTerm, false
		}
		return k.mk(head, args...), true
	}}
}
