package kernel

import (
	"github.com/LucianoXu/diracoq/internal/engine"
	"github.com/LucianoXu/diracoq/internal/ir"
)

// scoper pushes binder variables onto the kernel context while the engine
// rewrites below a binder, so typed rules see them.
type scoper struct {
	k *Kernel
}

var _ engine.Scoper = scoper{}

func noRelease() {}

// Enter binds the variable of t when the engine descends into the body of
// a binder. The variable slot itself is never rewritten. The pushed type
// is not checked; a term whose binder type does not make sense simply
// leaves typed rules without a match.
func (sc scoper) Enter(b *ir.Bank, t ir.Term, i int) (func(), bool) {
	k := sc.k
	v, body, ok := k.binder(t)
	if !ok {
		return noRelease, true
	}
	if i == 0 {
		return noRelease, false
	}
	if i != body {
		return noRelease, true
	}
	args := b.Args(t)

	var typ ir.Term
	switch b.Head(t) {
	case k.s.Fun:
		typ = args[1]
	case k.s.Idx, k.s.Forall:
		typ = k.atom(k.s.Index)
	case k.s.SSum:
		setType, err := k.CalcType(args[1])
		if err != nil {
			return noRelease, true
		}
		set, ok := k.typeArgs(setType, k.s.Set, 1)
		if !ok {
			return noRelease, true
		}
		typ = k.mk(k.s.Basis, set[0])
	default:
		return noRelease, true
	}

	k.ctx = append(k.ctx, Binding{Symbol: v, Declaration: Declaration{Value: ir.NoTerm, Type: typ}})
	return k.popContext, true
}
