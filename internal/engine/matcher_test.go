package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucianoXu/diracoq/internal/ir"
)

func TestMatchOrdered(t *testing.T) {
	w := newWorld()
	f := w.sig.Register("f")
	term := w.parse(t, "f(a b)")

	args, ok := MatchOrdered(w.bank, term, f)
	require.True(t, ok)
	assert.Equal(t, []ir.Term{w.parse(t, "a"), w.parse(t, "b")}, args)

	args[0] = w.zero
	again, _ := MatchOrdered(w.bank, term, f)
	assert.Equal(t, w.parse(t, "a"), again[0], "returned slice is a copy")

	_, ok = MatchOrdered(w.bank, term, w.sig.Register("g"))
	assert.False(t, ok, "wrong head")

	_, ok = MatchOrdered(w.bank, w.parse(t, "ADDS(a b)"), w.adds)
	assert.False(t, ok, "wrong variant")

	_, ok = MatchOrderedN(w.bank, term, f, 3)
	assert.False(t, ok, "wrong arity")
	_, ok = MatchOrderedN(w.bank, term, f, 2)
	assert.True(t, ok)
}

func TestMatchAtom(t *testing.T) {
	w := newWorld()
	zero := w.sig.MustLookup("0")
	assert.True(t, MatchAtom(w.bank, w.zero, zero))
	assert.False(t, MatchAtom(w.bank, w.parse(t, "0(a)"), zero))
}

func TestMatchMultiset(t *testing.T) {
	w := newWorld()

	x := w.parse(t, "ADDS(a b a)")
	y := w.parse(t, "ADDS(b a a)")

	mx, ok := MatchMultiset(w.bank, x, w.adds)
	require.True(t, ok)
	my, ok := MatchMultiset(w.bank, y, w.adds)
	require.True(t, ok)
	assert.Equal(t, mx, my, "argument order is irrelevant")
	assert.Equal(t, 2, mx.Count(w.parse(t, "a")))

	mx.Add(w.zero, 1)
	fresh, _ := MatchMultiset(w.bank, x, w.adds)
	assert.False(t, fresh.Contains(w.zero), "returned multiset is a copy")

	_, ok = MatchMultiset(w.bank, x, w.muls)
	assert.False(t, ok)
	_, ok = MatchMultiset(w.bank, w.parse(t, "f(a)"), w.sig.Register("f"))
	assert.False(t, ok, "ordered nodes never match")
}

func TestFirstEntry(t *testing.T) {
	w := newWorld()
	ms, _ := MatchMultiset(w.bank, w.parse(t, "ADDS(f(a) b f(c))"), w.adds)
	f := w.sig.Register("f")

	isF := func(e ir.Entry) bool { return w.bank.Head(e.Term) == f }
	first, ok := FirstEntry(ms, isF)
	require.True(t, ok)

	// The pick is the first f-headed entry in bank order.
	for _, e := range ms {
		if isF(e) {
			assert.Equal(t, e, first)
			break
		}
	}

	_, ok = FirstEntry(ms, func(ir.Entry) bool { return false })
	assert.False(t, ok)

	args := []ir.Term{w.parse(t, "a"), w.zero, w.zero}
	assert.Equal(t, 1, FirstArg(args, func(x ir.Term) bool { return x == w.zero }))
	assert.Equal(t, -1, FirstArg(args, func(ir.Term) bool { return false }))
}
