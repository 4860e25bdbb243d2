package kernel

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/LucianoXu/diracoq/internal/engine"
	"github.com/LucianoXu/diracoq/internal/ir"
)

func (k *Kernel) mk(head int, args ...ir.Term) ir.Term {
	return k.bank.Ordered(head, args...)
}

func (k *Kernel) atom(head int) ir.Term {
	return k.bank.Atom(head)
}

func (k *Kernel) sType() ir.Term {
	return k.bank.Atom(k.s.SType)
}

// operands lists the arguments of t. Multiset entries are repeated by
// their multiplicity, in bank order.
func (k *Kernel) operands(t ir.Term) []ir.Term {
	if !k.bank.Kind(t).IsMultiset() {
		return k.bank.Args(t)
	}
	return lo.FlatMap(k.bank.Entries(t), func(e ir.Entry, _ int) []ir.Term {
		copies := make([]ir.Term, e.Count)
		for i := range copies {
			copies[i] = e.Term
		}
		return copies
	})
}

// typeArgs matches a type term head(args) with exactly n arguments.
func (k *Kernel) typeArgs(typ ir.Term, head, n int) ([]ir.Term, bool) {
	return engine.MatchOrderedN(k.bank, typ, head, n)
}

func (k *Kernel) typingError(t ir.Term, format string, args ...any) error {
	return &TypingError{Term: t, Text: k.Format(t), Reason: fmt.Sprintf(format, args...)}
}

func (k *Kernel) checkArity(t ir.Term, args []ir.Term, n int) error {
	if len(args) != n {
		return k.typingError(t, "it has %d arguments but %d are expected.", len(args), n)
	}
	return nil
}

// IsIndex reports whether the type of t is Index.
func (k *Kernel) IsIndex(t ir.Term) (bool, error) {
	typ, err := k.CalcType(t)
	if err != nil {
		return false, err
	}
	return k.bank.Head(typ) == k.s.Index, nil
}

// IsType reports whether the type of t is Type.
func (k *Kernel) IsType(t ir.Term) (bool, error) {
	typ, err := k.CalcType(t)
	if err != nil {
		return false, err
	}
	return k.bank.Head(typ) == k.s.Type, nil
}

// requireIndex fails with reason unless arg is an index.
func (k *Kernel) requireIndex(t, arg ir.Term, reason string) error {
	ok, err := k.IsIndex(arg)
	if err != nil {
		return err
	}
	if !ok {
		return k.typingError(t, "%s", reason)
	}
	return nil
}

func (k *Kernel) requireType(t, arg ir.Term, reason string) error {
	ok, err := k.IsType(arg)
	if err != nil {
		return err
	}
	if !ok {
		return k.typingError(t, "%s", reason)
	}
	return nil
}

// withBinder runs fn with sym bound to typ in the context. The binding is
// removed on every path out of fn.
func (k *Kernel) withBinder(sym int, typ ir.Term, fn func() (ir.Term, error)) (ir.Term, error) {
	k.ctx = append(k.ctx, Binding{Symbol: sym, Declaration: Declaration{Value: ir.NoTerm, Type: typ}})
	defer k.popContext()
	return fn()
}

func (k *Kernel) popContext() {
	k.ctx = k.ctx[:len(k.ctx)-1]
}

// CalcType computes the type of t under the current environment and
// context.
func (k *Kernel) CalcType(t ir.Term) (ir.Term, error) {
	b := k.bank
	s := k.s
	args := k.operands(t)

	switch b.Head(t) {
	case s.Compo:
		return k.typeCompo(t, args)
	case s.Star:
		return k.typeStar(t, args)
	case s.AddG:
		return k.typeAddG(t, args)
	case s.SSum:
		return k.typeSSum(t, args)

	case s.Prod:
		if err := k.checkArity(t, args, 2); err != nil {
			return ir.NoTerm, err
		}
		if err := k.requireIndex(t, args[0], fmt.Sprintf("the first argument %s is not an index.", k.Format(args[0]))); err != nil {
			return ir.NoTerm, err
		}
		if err := k.requireIndex(t, args[1], fmt.Sprintf("the second argument %s is not an index.", k.Format(args[1]))); err != nil {
			return ir.NoTerm, err
		}
		return k.atom(s.Index), nil
	case s.Qbit:
		if err := k.checkArity(t, args, 0); err != nil {
			return ir.NoTerm, err
		}
		return k.atom(s.Index), nil
	case s.Basis0, s.Basis1:
		if err := k.checkArity(t, args, 0); err != nil {
			return ir.NoTerm, err
		}
		return k.mk(s.Basis, k.atom(s.Qbit)), nil

	case s.Arrow:
		if err := k.checkArity(t, args, 2); err != nil {
			return ir.NoTerm, err
		}
		if err := k.requireType(t, args[0], fmt.Sprintf("the type of the argument %s is not a well-typed type.", k.Format(args[0]))); err != nil {
			return ir.NoTerm, err
		}
		if err := k.requireType(t, args[1], fmt.Sprintf("the type of the body %s is not a well-typed type.", k.Format(args[1]))); err != nil {
			return ir.NoTerm, err
		}
		return k.atom(s.Type), nil
	case s.Forall:
		return k.typeForall(t, args)
	case s.Basis, s.KType, s.BType, s.Set:
		if err := k.checkArity(t, args, 1); err != nil {
			return ir.NoTerm, err
		}
		if err := k.requireIndex(t, args[0], fmt.Sprintf("the argument %s is not an index.", k.Format(args[0]))); err != nil {
			return ir.NoTerm, err
		}
		return k.atom(s.Type), nil
	case s.OType:
		if err := k.checkArity(t, args, 2); err != nil {
			return ir.NoTerm, err
		}
		reason := fmt.Sprintf("the arguments %s and %s are not indices.", k.Format(args[0]), k.Format(args[1]))
		if err := k.requireIndex(t, args[0], reason); err != nil {
			return ir.NoTerm, err
		}
		if err := k.requireIndex(t, args[1], reason); err != nil {
			return ir.NoTerm, err
		}
		return k.atom(s.Type), nil
	case s.SType:
		if err := k.checkArity(t, args, 0); err != nil {
			return ir.NoTerm, err
		}
		return k.atom(s.Type), nil

	case s.Fun:
		return k.typeFun(t, args)
	case s.Idx:
		return k.typeIdx(t, args)
	case s.Apply:
		return k.typeApply(t, args)
	case s.Pair:
		return k.typePair(t, args)

	case s.Zero, s.One:
		if err := k.checkArity(t, args, 0); err != nil {
			return ir.NoTerm, err
		}
		return k.sType(), nil
	case s.Delta:
		return k.typeDelta(t, args)
	case s.Adds, s.Muls:
		return k.typeScalarOp(t, args)
	case s.Conj:
		if err := k.checkArity(t, args, 1); err != nil {
			return ir.NoTerm, err
		}
		if err := k.requireScalar(t, args[0]); err != nil {
			return ir.NoTerm, err
		}
		return k.sType(), nil

	case s.Adj:
		return k.typeAdj(t, args)
	case s.Scr:
		return k.typeScr(t, args)
	case s.Add:
		return k.typeAdd(t, args)
	case s.Tsr:
		return k.typeTsr(t, args)
	case s.Dot:
		return k.typeDot(t, args)
	case s.MulK, s.MulB, s.Outer, s.MulO:
		return k.typeProduct(t, args)

	case s.ZeroK, s.ZeroB, s.OneO:
		return k.typeConstant(t, args)
	case s.ZeroO:
		if err := k.checkArity(t, args, 2); err != nil {
			return ir.NoTerm, err
		}
		reason := fmt.Sprintf("the arguments %s and %s are not indices.", k.Format(args[0]), k.Format(args[1]))
		if err := k.requireIndex(t, args[0], reason); err != nil {
			return ir.NoTerm, err
		}
		if err := k.requireIndex(t, args[1], reason); err != nil {
			return ir.NoTerm, err
		}
		return k.mk(s.OType, args[0], args[1]), nil
	case s.Ket, s.Bra:
		return k.typeBasisVector(t, args)

	case s.USet:
		if err := k.checkArity(t, args, 1); err != nil {
			return ir.NoTerm, err
		}
		if err := k.requireIndex(t, args[0], fmt.Sprintf("the argument %s is not an index.", k.Format(args[0]))); err != nil {
			return ir.NoTerm, err
		}
		return k.mk(s.Set, args[0]), nil
	case s.CatProd:
		return k.typeCatProd(t, args)
	case s.Sum:
		return k.typeSum(t, args)
	}

	if b.IsAtom(t) {
		if dec, ok := k.FindDec(b.Head(t)); ok {
			return dec.Type, nil
		}
	}
	// Foreign symbols are uninterpreted scalars.
	return k.sType(), nil
}

func (k *Kernel) typeForall(t ir.Term, args []ir.Term) (ir.Term, error) {
	if err := k.checkArity(t, args, 2); err != nil {
		return ir.NoTerm, err
	}
	if !k.bank.IsAtom(args[0]) {
		return ir.NoTerm, k.typingError(t, "the first argument %s is not a variable.", k.Format(args[0]))
	}
	return k.withBinder(k.bank.Head(args[0]), k.atom(k.s.Index), func() (ir.Term, error) {
		if err := k.requireType(t, args[1], fmt.Sprintf("the type of the body %s is not a well-typed type.", k.Format(args[1]))); err != nil {
			return ir.NoTerm, err
		}
		return k.atom(k.s.Type), nil
	})
}

func (k *Kernel) typeFun(t ir.Term, args []ir.Term) (ir.Term, error) {
	if err := k.checkArity(t, args, 3); err != nil {
		return ir.NoTerm, err
	}
	if !k.bank.IsAtom(args[0]) {
		return ir.NoTerm, k.typingError(t, "the first argument %s is not a variable.", k.Format(args[0]))
	}
	if err := k.requireType(t, args[1], fmt.Sprintf("the type of the argument %s is not a well-typed type.", k.Format(args[0]))); err != nil {
		return ir.NoTerm, err
	}
	return k.withBinder(k.bank.Head(args[0]), args[1], func() (ir.Term, error) {
		body, err := k.CalcType(args[2])
		if err != nil {
			return ir.NoTerm, err
		}
		if err := k.requireType(t, body, fmt.Sprintf("the type of the body %s is not a well-typed type.", k.Format(args[2]))); err != nil {
			return ir.NoTerm, err
		}
		return k.mk(k.s.Arrow, args[1], body), nil
	})
}

func (k *Kernel) typeIdx(t ir.Term, args []ir.Term) (ir.Term, error) {
	if err := k.checkArity(t, args, 2); err != nil {
		return ir.NoTerm, err
	}
	if !k.bank.IsAtom(args[0]) {
		return ir.NoTerm, k.typingError(t, "the first argument %s is not a variable.", k.Format(args[0]))
	}
	return k.withBinder(k.bank.Head(args[0]), k.atom(k.s.Index), func() (ir.Term, error) {
		body, err := k.CalcType(args[1])
		if err != nil {
			return ir.NoTerm, err
		}
		if err := k.requireType(t, body, fmt.Sprintf("the type of the body %s is not a well-typed type.", k.Format(args[1]))); err != nil {
			return ir.NoTerm, err
		}
		return k.mk(k.s.Forall, args[0], body), nil
	})
}

func (k *Kernel) typeApply(t ir.Term, args []ir.Term) (ir.Term, error) {
	if err := k.checkArity(t, args, 2); err != nil {
		return ir.NoTerm, err
	}
	typeF, err := k.CalcType(args[0])
	if err != nil {
		return ir.NoTerm, err
	}
	if arrow, ok := k.typeArgs(typeF, k.s.Arrow, 2); ok {
		ok, err := k.TypeCheck(args[1], arrow[0])
		if err != nil {
			return ir.NoTerm, err
		}
		if !ok {
			return ir.NoTerm, k.typingError(t, "the type of the argument %s does not match the type of the function argument %s.",
				k.Format(args[1]), k.Format(arrow[0]))
		}
		return arrow[1], nil
	}
	if forall, ok := k.typeArgs(typeF, k.s.Forall, 2); ok {
		if err := k.requireIndex(t, args[1], fmt.Sprintf("the type of the argument %s is not an index.", k.Format(args[1]))); err != nil {
			return ir.NoTerm, err
		}
		return k.Subst(forall[1], k.bank.Head(forall[0]), args[1]), nil
	}
	return ir.NoTerm, k.typingError(t, "the type of the function %s is not an arrow type or forall type.", k.Format(args[0]))
}

func (k *Kernel) typePair(t ir.Term, args []ir.Term) (ir.Term, error) {
	if err := k.checkArity(t, args, 2); err != nil {
		return ir.NoTerm, err
	}
	typeA, err := k.CalcType(args[0])
	if err != nil {
		return ir.NoTerm, err
	}
	typeB, err := k.CalcType(args[1])
	if err != nil {
		return ir.NoTerm, err
	}
	a, okA := k.typeArgs(typeA, k.s.Basis, 1)
	bb, okB := k.typeArgs(typeB, k.s.Basis, 1)
	if !okA || !okB {
		return ir.NoTerm, k.typingError(t, "the types of the arguments %s and %s are not of type BASIS.",
			k.Format(args[0]), k.Format(args[1]))
	}
	return k.mk(k.s.Basis, k.mk(k.s.Prod, a[0], bb[0])), nil
}

func (k *Kernel) requireScalar(t, arg ir.Term) error {
	ok, err := k.TypeCheck(arg, k.sType())
	if err != nil {
		return err
	}
	if !ok {
		return k.typingError(t, "the argument %s is not of type STYPE.", k.Format(arg))
	}
	return nil
}

func (k *Kernel) typeDelta(t ir.Term, args []ir.Term) (ir.Term, error) {
	if err := k.checkArity(t, args, 2); err != nil {
		return ir.NoTerm, err
	}
	typeA, err := k.CalcType(args[0])
	if err != nil {
		return ir.NoTerm, err
	}
	if _, ok := k.typeArgs(typeA, k.s.Basis, 1); !ok {
		return ir.NoTerm, k.typingError(t, "the first argument %s is not of type BASIS.", k.Format(args[0]))
	}
	ok, err := k.TypeCheck(args[1], typeA)
	if err != nil {
		return ir.NoTerm, err
	}
	if !ok {
		return ir.NoTerm, k.typingError(t, "the second argument %s is not of type %s.", k.Format(args[1]), k.Format(typeA))
	}
	return k.sType(), nil
}

func (k *Kernel) typeScalarOp(t ir.Term, args []ir.Term) (ir.Term, error) {
	if len(args) == 0 {
		return ir.NoTerm, k.typingError(t, "it has no arguments.")
	}
	for _, a := range args {
		if err := k.requireScalar(t, a); err != nil {
			return ir.NoTerm, err
		}
	}
	return k.sType(), nil
}

func (k *Kernel) typeSSum(t ir.Term, args []ir.Term) (ir.Term, error) {
	if err := k.checkArity(t, args, 3); err != nil {
		return ir.NoTerm, err
	}
	typeS, err := k.CalcType(args[1])
	if err != nil {
		return ir.NoTerm, err
	}
	set, ok := k.typeArgs(typeS, k.s.Set, 1)
	if !ok {
		return ir.NoTerm, k.typingError(t, "the second argument %s is not of type SET.", k.Format(args[1]))
	}
	fn := k.mk(k.s.Fun, args[0], k.mk(k.s.Basis, set[0]), args[2])
	typeF, err := k.CalcType(fn)
	if err != nil {
		return ir.NoTerm, err
	}
	arrow, ok := k.typeArgs(typeF, k.s.Arrow, 2)
	if !ok {
		return ir.NoTerm, k.typingError(t, "the function %s is not of type ARROW.", k.Format(fn))
	}
	if !k.isLinearType(arrow[1]) {
		return ir.NoTerm, k.typingError(t, "the body %s is not a scalar, a ket, a bra, or an operator.", k.Format(args[2]))
	}
	return arrow[1], nil
}

// isLinearType reports whether typ is SType, KType, BType or OType.
func (k *Kernel) isLinearType(typ ir.Term) bool {
	switch k.bank.Head(typ) {
	case k.s.SType, k.s.KType, k.s.BType, k.s.OType:
		return true
	}
	return false
}

func (k *Kernel) typeCatProd(t ir.Term, args []ir.Term) (ir.Term, error) {
	if err := k.checkArity(t, args, 2); err != nil {
		return ir.NoTerm, err
	}
	typeA, err := k.CalcType(args[0])
	if err != nil {
		return ir.NoTerm, err
	}
	typeB, err := k.CalcType(args[1])
	if err != nil {
		return ir.NoTerm, err
	}
	a, okA := k.typeArgs(typeA, k.s.Set, 1)
	bb, okB := k.typeArgs(typeB, k.s.Set, 1)
	if !okA || !okB {
		return ir.NoTerm, k.typingError(t, "the arguments %s and %s are not of type SET.", k.Format(args[0]), k.Format(args[1]))
	}
	return k.mk(k.s.Set, k.mk(k.s.Prod, a[0], bb[0])), nil
}

func (k *Kernel) typeSum(t ir.Term, args []ir.Term) (ir.Term, error) {
	if err := k.checkArity(t, args, 2); err != nil {
		return ir.NoTerm, err
	}
	typeS, err := k.CalcType(args[0])
	if err != nil {
		return ir.NoTerm, err
	}
	set, ok := k.typeArgs(typeS, k.s.Set, 1)
	if !ok {
		return ir.NoTerm, k.typingError(t, "the first argument %s is not of type SET.", k.Format(args[0]))
	}
	typeF, err := k.CalcType(args[1])
	if err != nil {
		return ir.NoTerm, err
	}
	arrow, ok := k.typeArgs(typeF, k.s.Arrow, 2)
	if !ok {
		return ir.NoTerm, k.typingError(t, "the second argument %s is not of type ARROW.", k.Format(args[1]))
	}
	basis, ok := k.typeArgs(arrow[0], k.s.Basis, 1)
	if !ok {
		return ir.NoTerm, k.typingError(t, "the first argument of the second argument %s is not of type BASIS.", k.Format(args[1]))
	}
	eq, err := k.IsJudgementalEq(set[0], basis[0])
	if err != nil {
		return ir.NoTerm, err
	}
	if !eq {
		return ir.NoTerm, k.typingError(t, "the index of the first argument %s is not the same as the index of the first argument of the second argument %s.",
			k.Format(args[0]), k.Format(args[1]))
	}
	if !k.isLinearType(arrow[1]) {
		return ir.NoTerm, k.typingError(t, "the second argument %s is not of type STYPE, KTYPE, BTYPE or OTYPE.", k.Format(args[1]))
	}
	return arrow[1], nil
}
