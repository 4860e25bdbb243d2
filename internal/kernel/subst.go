package kernel

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/go-set/v3"

	"github.com/LucianoXu/diracoq/internal/ir"
)

// binder reports whether t binds a variable. It returns the bound symbol
// and the index of the child the binding scopes over. The variable is
// always child 0.
//
//	fun(x T body)   body is child 2
//	idx(x body)     body is child 1
//	Forall(x T)     T is child 1
//	SSUM(i s body)  body is child 2
func (k *Kernel) binder(t ir.Term) (sym, body int, ok bool) {
	b := k.bank
	if b.Kind(t) != ir.KindOrdered {
		return 0, 0, false
	}
	switch n := b.Arity(t); b.Head(t) {
	case k.s.Fun, k.s.SSum:
		if n != 3 {
			return 0, 0, false
		}
		body = 2
	case k.s.Idx, k.s.Forall:
		if n != 2 {
			return 0, 0, false
		}
		body = 1
	default:
		return 0, 0, false
	}
	v := b.Args(t)[0]
	if !b.IsAtom(v) {
		return 0, 0, false
	}
	return b.Head(v), body, true
}

// FreeVars returns the symbols occurring in t outside the scope of a
// binder for them.
func (k *Kernel) FreeVars(t ir.Term) *set.Set[int] {
	out := set.New[int](0)
	k.collectFree(t, make(map[int]int), out)
	return out
}

func (k *Kernel) collectFree(t ir.Term, bound map[int]int, out *set.Set[int]) {
	b := k.bank
	if b.IsAtom(t) {
		if bound[b.Head(t)] == 0 {
			out.Insert(b.Head(t))
		}
		return
	}
	if v, body, ok := k.binder(t); ok {
		for i, a := range b.Args(t) {
			switch i {
			case 0:
			case body:
				bound[v]++
				k.collectFree(a, bound, out)
				bound[v]--
			default:
				k.collectFree(a, bound, out)
			}
		}
		return
	}
	for _, c := range b.Children(t) {
		k.collectFree(c, bound, out)
	}
}

// occursFree reports whether sym is free in t.
func (k *Kernel) occursFree(t ir.Term, sym int) bool {
	if !k.bank.Occurs(k.atom(sym), t) {
		return false
	}
	return k.FreeVars(t).Contains(sym)
}

// freshSymbol registers a new symbol @N that has never been used.
func (k *Kernel) freshSymbol() int {
	for {
		name := "@" + strconv.Itoa(k.fresh)
		k.fresh++
		if _, taken := k.sig.Lookup(name); !taken {
			return k.sig.Register(name)
		}
	}
}

// Subst replaces the free occurrences of sym in t by u. Binders whose
// variable is free in u are renamed to fresh symbols first.
func (k *Kernel) Subst(t ir.Term, sym int, u ir.Term) ir.Term {
	return k.subst(t, sym, u, k.FreeVars(u))
}

func (k *Kernel) subst(t ir.Term, sym int, u ir.Term, fv *set.Set[int]) ir.Term {
	b := k.bank
	if !b.Occurs(k.atom(sym), t) {
		return t
	}
	if b.IsAtom(t) {
		return u
	}

	if v, body, ok := k.binder(t); ok {
		args := b.Args(t)
		for i := range args {
			if i != 0 && i != body {
				args[i] = k.subst(args[i], sym, u, fv)
			}
		}
		if v != sym {
			if fv.Contains(v) && k.occursFree(args[body], sym) {
				fresh := k.freshSymbol()
				args[body] = k.Subst(args[body], v, k.atom(fresh))
				args[0] = k.atom(fresh)
			}
			args[body] = k.subst(args[body], sym, u, fv)
		}
		return b.Ordered(b.Head(t), args...)
	}

	switch b.Kind(t) {
	case ir.KindOrdered:
		args := b.Args(t)
		for i, a := range args {
			args[i] = k.subst(a, sym, u, fv)
		}
		return b.Ordered(b.Head(t), args...)
	default:
		ms := b.Entries(t)
		for i, e := range ms {
			ms[i].Term = k.subst(e.Term, sym, u, fv)
		}
		return b.Rebuild(t, ms)
	}
}

// ToDeBruijn renames every bound variable to $level, where level counts
// the binders enclosing it. Alpha-equivalent terms get the same handle.
func (k *Kernel) ToDeBruijn(t ir.Term) (ir.Term, error) {
	return k.toDeBruijn(t, 0)
}

func (k *Kernel) toDeBruijn(t ir.Term, level int) (ir.Term, error) {
	b := k.bank
	if b.IsAtom(t) {
		return t, nil
	}

	if v, body, ok := k.binder(t); ok {
		if level >= DeBruijnCount {
			return ir.NoTerm, fmt.Errorf("de Bruijn conversion: binder depth %d exceeds %d", level, DeBruijnCount)
		}
		args := b.Args(t)
		for i := range args {
			if i == 0 || i == body {
				continue
			}
			a, err := k.toDeBruijn(args[i], level)
			if err != nil {
				return ir.NoTerm, err
			}
			args[i] = a
		}
		name := k.atom(deBruijn(level))
		renamed, err := k.toDeBruijn(k.Subst(args[body], v, name), level+1)
		if err != nil {
			return ir.NoTerm, err
		}
		args[0] = name
		args[body] = renamed
		return b.Ordered(b.Head(t), args...), nil
	}

	switch b.Kind(t) {
	case ir.KindOrdered:
		args := b.Args(t)
		for i, a := range args {
			c, err := k.toDeBruijn(a, level)
			if err != nil {
				return ir.NoTerm, err
			}
			args[i] = c
		}
		return b.Ordered(b.Head(t), args...), nil
	default:
		ms := b.Entries(t)
		for i, e := range ms {
			c, err := k.toDeBruijn(e.Term, level)
			if err != nil {
				return ir.NoTerm, err
			}
			ms[i].Term = c
		}
		return b.Rebuild(t, ms), nil
	}
}
