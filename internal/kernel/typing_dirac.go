package kernel

import (
	"github.com/LucianoXu/diracoq/internal/engine"
	"github.com/LucianoXu/diracoq/internal/ir"
)

// linear is a type sorted by the Dirac sort it denotes.
type linear struct {
	head int       // SType, KType, BType or OType; -1 otherwise
	idx  []ir.Term // the index arguments
}

func (k *Kernel) linearOf(typ ir.Term) linear {
	s := k.s
	if engine.MatchAtom(k.bank, typ, s.SType) {
		return linear{head: s.SType}
	}
	for _, c := range []struct{ head, n int }{{s.KType, 1}, {s.BType, 1}, {s.OType, 2}} {
		if args, ok := k.typeArgs(typ, c.head, c.n); ok {
			return linear{head: c.head, idx: args}
		}
	}
	return linear{head: -1}
}

// requireEq fails with reason unless x and y are judgmentally equal.
func (k *Kernel) requireEq(t, x, y ir.Term, format string, args ...any) error {
	ok, err := k.IsJudgementalEq(x, y)
	if err != nil {
		return err
	}
	if !ok {
		return k.typingError(t, format, args...)
	}
	return nil
}

func (k *Kernel) typeBoth(args []ir.Term) (ir.Term, ir.Term, error) {
	typeA, err := k.CalcType(args[0])
	if err != nil {
		return ir.NoTerm, ir.NoTerm, err
	}
	typeB, err := k.CalcType(args[1])
	if err != nil {
		return ir.NoTerm, ir.NoTerm, err
	}
	return typeA, typeB, nil
}

func (k *Kernel) indexMismatch(t, x, y ir.Term) (ir.Term, error) {
	return ir.NoTerm, k.typingError(t, "the argument %s of the first term is not equal to the argument %s of the second term.",
		k.Format(x), k.Format(y))
}

// typeCompo types the overloaded composition a @ b.
func (k *Kernel) typeCompo(t ir.Term, args []ir.Term) (ir.Term, error) {
	s := k.s
	if err := k.checkArity(t, args, 2); err != nil {
		return ir.NoTerm, err
	}
	typeA, typeB, err := k.typeBoth(args)
	if err != nil {
		return ir.NoTerm, err
	}
	la, lb := k.linearOf(typeA), k.linearOf(typeB)

	switch {
	case la.head == s.SType && lb.head == s.SType:
		return k.sType(), nil
	case la.head == s.SType && lb.head != -1:
		return typeB, nil
	case lb.head == s.SType && la.head != -1:
		return typeA, nil

	case la.head == s.KType && lb.head == s.KType:
		return k.mk(s.KType, k.mk(s.Prod, la.idx[0], lb.idx[0])), nil
	case la.head == s.KType && lb.head == s.BType:
		return k.mk(s.OType, la.idx[0], lb.idx[0]), nil

	case la.head == s.BType && lb.head == s.KType:
		eq, err := k.IsJudgementalEq(la.idx[0], lb.idx[0])
		if err != nil {
			return ir.NoTerm, err
		}
		if !eq {
			return k.indexMismatch(t, la.idx[0], lb.idx[0])
		}
		return k.sType(), nil
	case la.head == s.BType && lb.head == s.BType:
		return k.mk(s.BType, k.mk(s.Prod, la.idx[0], lb.idx[0])), nil
	case la.head == s.BType && lb.head == s.OType:
		eq, err := k.IsJudgementalEq(la.idx[0], lb.idx[0])
		if err != nil {
			return ir.NoTerm, err
		}
		if !eq {
			return k.indexMismatch(t, la.idx[0], lb.idx[0])
		}
		return k.mk(s.BType, lb.idx[1]), nil

	case la.head == s.OType && lb.head == s.KType:
		eq, err := k.IsJudgementalEq(la.idx[1], lb.idx[0])
		if err != nil {
			return ir.NoTerm, err
		}
		if !eq {
			return k.indexMismatch(t, la.idx[1], lb.idx[0])
		}
		return k.mk(s.KType, la.idx[0]), nil
	case la.head == s.OType && lb.head == s.OType:
		eq, err := k.IsJudgementalEq(la.idx[1], lb.idx[0])
		if err != nil {
			return ir.NoTerm, err
		}
		if !eq {
			return k.indexMismatch(t, la.idx[1], lb.idx[0])
		}
		return k.mk(s.OType, la.idx[0], lb.idx[1]), nil
	}

	if arrow, ok := k.typeArgs(typeA, s.Arrow, 2); ok {
		eq, err := k.IsJudgementalEq(arrow[0], typeB)
		if err != nil {
			return ir.NoTerm, err
		}
		if !eq {
			return ir.NoTerm, k.typingError(t, "the argument %s of the first term is not equal to the second term.", k.Format(arrow[0]))
		}
		return arrow[1], nil
	}
	if forall, ok := k.typeArgs(typeA, s.Forall, 2); ok {
		isIdx, err := k.IsIndex(args[1])
		if err != nil {
			return ir.NoTerm, err
		}
		if !isIdx {
			return ir.NoTerm, k.typingError(t, "the second term is not an index.")
		}
		return k.Subst(forall[1], k.bank.Head(forall[0]), args[1]), nil
	}
	return ir.NoTerm, k.typingError(t, "the composition of %s and %s is invalid.", k.Format(typeA), k.Format(typeB))
}

// typeStar types the overloaded product STAR.
func (k *Kernel) typeStar(t ir.Term, args []ir.Term) (ir.Term, error) {
	s := k.s
	if len(args) < 2 {
		return ir.NoTerm, k.typingError(t, "the argument number is less than 2.")
	}
	first, err := k.CalcType(args[0])
	if err != nil {
		return ir.NoTerm, err
	}
	b := k.bank

	switch {
	case engine.MatchAtom(b, first, s.SType):
		for _, a := range args[1:] {
			typ, err := k.CalcType(a)
			if err != nil {
				return ir.NoTerm, err
			}
			if !engine.MatchAtom(b, typ, s.SType) {
				return ir.NoTerm, k.typingError(t, "the argument %s is not a scalar.", k.Format(a))
			}
		}
		return k.sType(), nil

	case b.Head(first) == s.Index:
		if err := k.checkArity(t, args, 2); err != nil {
			return ir.NoTerm, err
		}
		second, err := k.CalcType(args[1])
		if err != nil {
			return ir.NoTerm, err
		}
		if b.Head(second) != s.Index {
			return ir.NoTerm, k.typingError(t, "the argument %s is not an index.", k.Format(args[1]))
		}
		return k.atom(s.Index), nil
	}

	if o1, ok := k.typeArgs(first, s.OType, 2); ok {
		if err := k.checkArity(t, args, 2); err != nil {
			return ir.NoTerm, err
		}
		second, err := k.CalcType(args[1])
		if err != nil {
			return ir.NoTerm, err
		}
		o2, ok := k.typeArgs(second, s.OType, 2)
		if !ok {
			return ir.NoTerm, k.typingError(t, "the argument %s is not an operator.", k.Format(args[1]))
		}
		return k.mk(s.OType, k.mk(s.Prod, o1[0], o2[0]), k.mk(s.Prod, o1[1], o2[1])), nil
	}
	if s1, ok := k.typeArgs(first, s.Set, 1); ok {
		if err := k.checkArity(t, args, 2); err != nil {
			return ir.NoTerm, err
		}
		second, err := k.CalcType(args[1])
		if err != nil {
			return ir.NoTerm, err
		}
		s2, ok := k.typeArgs(second, s.Set, 1)
		if !ok {
			return ir.NoTerm, k.typingError(t, "the argument %s is not a set.", k.Format(args[1]))
		}
		return k.mk(s.Set, k.mk(s.Prod, s1[0], s2[0])), nil
	}
	return ir.NoTerm, k.typingError(t, "the argument %s is not a scalar, an index, or a set.", k.Format(args[0]))
}

// typeAddG types the overloaded sum ADDG.
func (k *Kernel) typeAddG(t ir.Term, args []ir.Term) (ir.Term, error) {
	s := k.s
	if len(args) < 2 {
		return ir.NoTerm, k.typingError(t, "the argument number is less than 2.")
	}
	first, err := k.CalcType(args[0])
	if err != nil {
		return ir.NoTerm, err
	}
	switch k.linearOf(first).head {
	case s.SType:
		for _, a := range args[1:] {
			typ, err := k.CalcType(a)
			if err != nil {
				return ir.NoTerm, err
			}
			if !engine.MatchAtom(k.bank, typ, s.SType) {
				return ir.NoTerm, k.typingError(t, "the argument %s is not a scalar.", k.Format(a))
			}
		}
		return k.sType(), nil
	case s.KType, s.BType, s.OType:
		for _, a := range args[1:] {
			typ, err := k.CalcType(a)
			if err != nil {
				return ir.NoTerm, err
			}
			if err := k.requireEq(t, first, typ, "the argument %s is not equal to the first argument %s.",
				k.Format(a), k.Format(args[0])); err != nil {
				return ir.NoTerm, err
			}
		}
		return first, nil
	}
	return ir.NoTerm, k.typingError(t, "the argument %s is not a scalar, a ket, a bra, or an operator.", k.Format(args[0]))
}

func (k *Kernel) typeAdj(t ir.Term, args []ir.Term) (ir.Term, error) {
	s := k.s
	if err := k.checkArity(t, args, 1); err != nil {
		return ir.NoTerm, err
	}
	typ, err := k.CalcType(args[0])
	if err != nil {
		return ir.NoTerm, err
	}
	l := k.linearOf(typ)
	switch l.head {
	case s.BType:
		return k.mk(s.KType, l.idx[0]), nil
	case s.KType:
		return k.mk(s.BType, l.idx[0]), nil
	case s.OType:
		return k.mk(s.OType, l.idx[1], l.idx[0]), nil
	}
	return ir.NoTerm, k.typingError(t, "the argument %s is not of type BTYPE, KTYPE or OTYPE.", k.Format(args[0]))
}

func (k *Kernel) typeScr(t ir.Term, args []ir.Term) (ir.Term, error) {
	s := k.s
	if err := k.checkArity(t, args, 2); err != nil {
		return ir.NoTerm, err
	}
	typeA, err := k.CalcType(args[0])
	if err != nil {
		return ir.NoTerm, err
	}
	if !engine.MatchAtom(k.bank, typeA, s.SType) {
		return ir.NoTerm, k.typingError(t, "the first argument %s is not of type STYPE.", k.Format(args[0]))
	}
	typeX, err := k.CalcType(args[1])
	if err != nil {
		return ir.NoTerm, err
	}
	switch k.linearOf(typeX).head {
	case s.KType, s.BType, s.OType:
		return typeX, nil
	}
	return ir.NoTerm, k.typingError(t, "the second argument %s is not of type KTYPE, BTYPE or OTYPE.", k.Format(args[1]))
}

func (k *Kernel) typeAdd(t ir.Term, args []ir.Term) (ir.Term, error) {
	s := k.s
	if len(args) == 0 {
		return ir.NoTerm, k.typingError(t, "it has no arguments.")
	}
	first, err := k.CalcType(args[0])
	if err != nil {
		return ir.NoTerm, err
	}
	switch k.linearOf(first).head {
	case s.KType, s.BType, s.OType:
	default:
		return ir.NoTerm, k.typingError(t, "the first argument %s is not of type BTYPE, KTYPE or OTYPE.", k.Format(args[0]))
	}
	for _, a := range args[1:] {
		typ, err := k.CalcType(a)
		if err != nil {
			return ir.NoTerm, err
		}
		if err := k.requireEq(t, typ, first, "the argument %s is not of the same type as the first argument %s.",
			k.Format(a), k.Format(args[0])); err != nil {
			return ir.NoTerm, err
		}
	}
	return first, nil
}

func (k *Kernel) typeTsr(t ir.Term, args []ir.Term) (ir.Term, error) {
	s := k.s
	if err := k.checkArity(t, args, 2); err != nil {
		return ir.NoTerm, err
	}
	typeA, typeB, err := k.typeBoth(args)
	if err != nil {
		return ir.NoTerm, err
	}
	la, lb := k.linearOf(typeA), k.linearOf(typeB)
	if la.head == lb.head {
		switch la.head {
		case s.KType, s.BType:
			return k.mk(la.head, k.mk(s.Prod, la.idx[0], lb.idx[0])), nil
		case s.OType:
			return k.mk(s.OType, k.mk(s.Prod, la.idx[0], lb.idx[0]), k.mk(s.Prod, la.idx[1], lb.idx[1])), nil
		}
	}
	return ir.NoTerm, k.typingError(t, "the arguments %s and %s are not of type KTYPE, BTYPE or OTYPE.", k.Format(args[0]), k.Format(args[1]))
}

// typeDot types the overloaded product DOT.
func (k *Kernel) typeDot(t ir.Term, args []ir.Term) (ir.Term, error) {
	s := k.s
	if err := k.checkArity(t, args, 2); err != nil {
		return ir.NoTerm, err
	}
	typeA, typeB, err := k.typeBoth(args)
	if err != nil {
		return ir.NoTerm, err
	}
	la, lb := k.linearOf(typeA), k.linearOf(typeB)
	x, y := k.Format(args[0]), k.Format(args[1])

	switch {
	case la.head == s.BType && lb.head == s.KType:
		if err := k.requireEq(t, la.idx[0], lb.idx[0],
			"the index of the first argument %s is not the same as the index of the second argument %s.", x, y); err != nil {
			return ir.NoTerm, err
		}
		return k.sType(), nil
	case la.head == s.OType && lb.head == s.KType:
		if err := k.requireEq(t, la.idx[1], lb.idx[0],
			"the second index of the first argument %s is not the same as the index of the second argument %s.", x, y); err != nil {
			return ir.NoTerm, err
		}
		return k.mk(s.KType, la.idx[0]), nil
	case la.head == s.BType && lb.head == s.OType:
		if err := k.requireEq(t, la.idx[0], lb.idx[0],
			"the index of the first argument %s is not the same as the first index of the second argument %s.", x, y); err != nil {
			return ir.NoTerm, err
		}
		return k.mk(s.BType, lb.idx[1]), nil
	case la.head == s.KType && lb.head == s.BType:
		return k.mk(s.OType, la.idx[0], lb.idx[0]), nil
	case la.head == s.OType && lb.head == s.OType:
		if err := k.requireEq(t, la.idx[1], lb.idx[0],
			"the second index of the first argument %s is not the same as the index of the second argument %s.", x, y); err != nil {
			return ir.NoTerm, err
		}
		return k.mk(s.OType, la.idx[0], lb.idx[1]), nil
	}
	return ir.NoTerm, k.typingError(t, "the arguments %s and %s are not of type KTYPE, BTYPE or OTYPE.", x, y)
}

// typeProduct types MULK, MULB, OUTER and MULO, the explicit forms of the
// DOT overloads.
func (k *Kernel) typeProduct(t ir.Term, args []ir.Term) (ir.Term, error) {
	s := k.s
	if err := k.checkArity(t, args, 2); err != nil {
		return ir.NoTerm, err
	}
	typeA, typeB, err := k.typeBoth(args)
	if err != nil {
		return ir.NoTerm, err
	}
	la, lb := k.linearOf(typeA), k.linearOf(typeB)
	x, y := k.Format(args[0]), k.Format(args[1])

	switch k.bank.Head(t) {
	case s.MulK:
		if la.head == s.OType && lb.head == s.KType {
			if err := k.requireEq(t, la.idx[1], lb.idx[0],
				"the second index of the first argument %s is not the same as the index of the second argument %s.", x, y); err != nil {
				return ir.NoTerm, err
			}
			return k.mk(s.KType, la.idx[0]), nil
		}
		return ir.NoTerm, k.typingError(t, "the arguments %s and %s are not of type OTYPE and KTYPE.", x, y)
	case s.MulB:
		if la.head == s.BType && lb.head == s.OType {
			if err := k.requireEq(t, la.idx[0], lb.idx[0],
				"the index of the first argument %s is not the same as the first index of the second argument %s.", x, y); err != nil {
				return ir.NoTerm, err
			}
			return k.mk(s.BType, lb.idx[1]), nil
		}
		return ir.NoTerm, k.typingError(t, "the arguments %s and %s are not of type BTYPE and OTYPE.", x, y)
	case s.Outer:
		if la.head == s.KType && lb.head == s.BType {
			return k.mk(s.OType, la.idx[0], lb.idx[0]), nil
		}
		return ir.NoTerm, k.typingError(t, "the arguments %s and %s are not of type KTYPE and BTYPE.", x, y)
	default:
		if la.head == s.OType && lb.head == s.OType {
			if err := k.requireEq(t, la.idx[1], lb.idx[0],
				"the second index of the first argument %s is not the same as the index of the second argument %s.", x, y); err != nil {
				return ir.NoTerm, err
			}
			return k.mk(s.OType, la.idx[0], lb.idx[1]), nil
		}
		return ir.NoTerm, k.typingError(t, "the arguments %s and %s are not of type OTYPE.", x, y)
	}
}

// typeConstant types 0K(A), 0B(A) and 1O(A).
func (k *Kernel) typeConstant(t ir.Term, args []ir.Term) (ir.Term, error) {
	s := k.s
	if err := k.checkArity(t, args, 1); err != nil {
		return ir.NoTerm, err
	}
	ok, err := k.IsIndex(args[0])
	if err != nil {
		return ir.NoTerm, err
	}
	if !ok {
		return ir.NoTerm, k.typingError(t, "the argument %s is not an index.", k.Format(args[0]))
	}
	switch k.bank.Head(t) {
	case s.ZeroK:
		return k.mk(s.KType, args[0]), nil
	case s.ZeroB:
		return k.mk(s.BType, args[0]), nil
	default:
		return k.mk(s.OType, args[0], args[0]), nil
	}
}

// typeBasisVector types KET(t) and BRA(t).
func (k *Kernel) typeBasisVector(t ir.Term, args []ir.Term) (ir.Term, error) {
	s := k.s
	if err := k.checkArity(t, args, 1); err != nil {
		return ir.NoTerm, err
	}
	typ, err := k.CalcType(args[0])
	if err != nil {
		return ir.NoTerm, err
	}
	basis, ok := k.typeArgs(typ, s.Basis, 1)
	if !ok {
		return ir.NoTerm, k.typingError(t, "the argument %s is not of type Base.", k.Format(args[0]))
	}
	if k.bank.Head(t) == s.Ket {
		return k.mk(s.KType, basis[0]), nil
	}
	return k.mk(s.BType, basis[0]), nil
}
