package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LucianoXu/diracoq/internal/ir"
	"github.com/LucianoXu/diracoq/internal/syntax"
)

// world is a tiny signature with AC ADDS and MULS for exercising the engine.
type world struct {
	sig  *ir.Signature
	bank *ir.Bank
	adds int
	muls int
	zero ir.Term
}

func newWorld() *world {
	sig := ir.NewSignature()
	w := &world{
		sig:  sig,
		bank: ir.NewBank(),
		adds: sig.Declare("ADDS", ir.KindAC),
		muls: sig.Declare("MULS", ir.KindAC),
	}
	w.zero = w.bank.Atom(sig.Register("0"))
	return w
}

func (w *world) parse(t *testing.T, src string) ir.Term {
	t.Helper()
	a, err := syntax.Parse(src)
	require.NoError(t, err)
	return syntax.ToTerm(w.sig, w.bank, a)
}

func (w *world) printer() ir.Printer {
	return ir.Printer{Sig: w.sig, Bank: w.bank}
}

// addZero removes every 0 from an ADDS node: a + 0 -> a.
func (w *world) addZero() Rule {
	return Rule{Name: "ADD_ZERO", Apply: func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		ms, ok := MatchMultiset(b, t, w.adds)
		if !ok || !ms.RemoveAll(w.zero) {
			return ir.NoTerm, false
		}
		return b.AC(w.adds, ms), true
	}}
}

// distribute rewrites a * (b + c) -> a*b + a*c on the first ADDS factor.
func (w *world) distribute() Rule {
	return Rule{Name: "DISTRIBUTE", Apply: func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		ms, ok := MatchMultiset(b, t, w.muls)
		if !ok || ms.Total() < 2 {
			return ir.NoTerm, false
		}
		sum, ok := FirstEntry(ms, func(e ir.Entry) bool { return b.Head(e.Term) == w.adds && b.Kind(e.Term) == ir.KindAC })
		if !ok {
			return ir.NoTerm, false
		}
		ms.MustSubtract(sum.Term, 1)
		var out ir.Multiset
		for _, addend := range b.Entries(sum.Term) {
			factors := ms.Clone()
			factors.Add(addend.Term, 1)
			out.Add(b.AC(w.muls, factors), addend.Count)
		}
		return b.AC(w.adds, out), true
	}}
}

// rename rewrites the atom from into the atom to.
func (w *world) rename(from, to string) Rule {
	return Rule{Name: from + "_TO_" + to, Apply: func(b *ir.Bank, t ir.Term) (ir.Term, bool) {
		if !MatchAtom(b, t, w.sig.Register(from)) {
			return ir.NoTerm, false
		}
		return b.Atom(w.sig.Register(to)), true
	}}
}
