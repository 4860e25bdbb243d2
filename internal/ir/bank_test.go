package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture registers a small signature: f and g ordered, ADD AC, EQ commutative.
type fixture struct {
	sig  *Signature
	bank *Bank
	f    int
	g    int
	add  int
	eq   int
	a    Term
	b    Term
	c    Term
}

func newFixture() *fixture {
	sig := NewSignature()
	fx := &fixture{
		sig:  sig,
		bank: NewBank(),
		f:    sig.Declare("f", KindOrdered),
		g:    sig.Declare("g", KindOrdered),
		add:  sig.Declare("ADD", KindAC),
		eq:   sig.Declare("EQ", KindC),
	}
	fx.a = fx.bank.Atom(sig.Register("a"))
	fx.b = fx.bank.Atom(sig.Register("b"))
	fx.c = fx.bank.Atom(sig.Register("c"))
	return fx
}

func (fx *fixture) format(t Term) string {
	return Printer{Sig: fx.sig, Bank: fx.bank}.Format(t)
}

func TestHashConsingIdentity(t *testing.T) {
	fx := newFixture()
	b := fx.bank

	tests := []struct {
		name  string
		build func() Term
	}{
		{"atom", func() Term { return b.Atom(fx.f) }},
		{"ordered", func() Term { return b.Ordered(fx.f, fx.a, b.Ordered(fx.g, fx.b)) }},
		{"commutative", func() Term { return b.Commutative(fx.eq, MultisetOf(fx.a, fx.b)) }},
		{"ac", func() Term { return b.AC(fx.add, MultisetOf(fx.a, fx.b, fx.b)) }},
		{"build ordered", func() Term { return b.Build(KindOrdered, fx.g, fx.c) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := b.Len()
			first := tt.build()
			afterFirst := b.Len()
			second := tt.build()

			assert.Equal(t, first, second, "structurally equal terms must share a handle")
			assert.Equal(t, afterFirst, b.Len(), "second build must not allocate")
			assert.GreaterOrEqual(t, afterFirst, before)
		})
	}
}

func TestOrderedArgumentOrderMatters(t *testing.T) {
	fx := newFixture()
	x := fx.bank.Ordered(fx.f, fx.a, fx.b)
	y := fx.bank.Ordered(fx.f, fx.b, fx.a)
	assert.NotEqual(t, x, y)
}

func TestCommutativeOrderIndependence(t *testing.T) {
	fx := newFixture()
	b := fx.bank

	x := b.Commutative(fx.eq, Multiset{{fx.a, 1}, {fx.b, 1}})
	y := b.Commutative(fx.eq, Multiset{{fx.b, 1}, {fx.a, 1}})
	assert.Equal(t, x, y)

	t.Run("duplicates merge", func(t *testing.T) {
		z := b.Commutative(fx.eq, Multiset{{fx.a, 1}, {fx.a, 1}})
		assert.Equal(t, 2, b.Entries(z).Count(fx.a))
		assert.Equal(t, 1, b.Arity(z))
	})

	t.Run("no flattening for C heads", func(t *testing.T) {
		inner := b.Commutative(fx.eq, MultisetOf(fx.a, fx.b))
		outer := b.Commutative(fx.eq, MultisetOf(inner, fx.c))
		assert.True(t, b.Entries(outer).Contains(inner))
		assert.Equal(t, 2, b.Arity(outer))
	})
}

func TestACFlattening(t *testing.T) {
	fx := newFixture()
	b := fx.bank

	inner := b.AC(fx.add, MultisetOf(fx.a, fx.b))
	nested := b.AC(fx.add, MultisetOf(inner, fx.c))
	flat := b.AC(fx.add, MultisetOf(fx.a, fx.b, fx.c))

	assert.Equal(t, flat, nested)

	t.Run("multiplicities multiply", func(t *testing.T) {
		twice := b.AC(fx.add, Multiset{{inner, 2}, {fx.a, 1}})
		ms := b.Entries(twice)
		assert.Equal(t, 3, ms.Count(fx.a))
		assert.Equal(t, 2, ms.Count(fx.b))
		assert.False(t, ms.Contains(inner))
	})

	t.Run("other heads are kept", func(t *testing.T) {
		other := b.Commutative(fx.eq, MultisetOf(fx.a, fx.b))
		wrapped := b.AC(fx.add, MultisetOf(other, fx.c))
		assert.True(t, b.Entries(wrapped).Contains(other))
	})

	t.Run("zero counts dropped", func(t *testing.T) {
		x := b.AC(fx.add, Multiset{{fx.a, 1}, {fx.b, 0}})
		assert.False(t, b.Entries(x).Contains(fx.b))
	})
}

func TestEntriesAreSortedByCompare(t *testing.T) {
	fx := newFixture()
	b := fx.bank

	terms := []Term{fx.c, b.Ordered(fx.f, fx.a), fx.a, b.Ordered(fx.g, fx.b), fx.b}
	x := b.AC(fx.add, MultisetOf(terms...))
	ms := b.Entries(x)
	require.Len(t, ms, len(terms))
	for i := 1; i < len(ms); i++ {
		assert.Negative(t, b.Compare(ms[i-1].Term, ms[i].Term), "entries must be strictly increasing")
	}

	// Any permutation of the input yields the same node.
	reversed := make([]Term, len(terms))
	for i, tm := range terms {
		reversed[len(terms)-1-i] = tm
	}
	assert.Equal(t, x, b.AC(fx.add, MultisetOf(reversed...)))
}

func TestCompareIsTotalOrder(t *testing.T) {
	fx := newFixture()
	b := fx.bank

	terms := []Term{
		fx.a, fx.b, fx.c,
		b.Ordered(fx.f, fx.a),
		b.Ordered(fx.f, fx.b),
		b.Ordered(fx.g, fx.a),
		b.AC(fx.add, MultisetOf(fx.a, fx.b)),
		b.AC(fx.add, MultisetOf(fx.a, fx.a)),
		b.Commutative(fx.eq, MultisetOf(fx.a, fx.b)),
	}

	for _, x := range terms {
		assert.Zero(t, b.Compare(x, x))
		for _, y := range terms {
			if x == y {
				continue
			}
			cxy, cyx := b.Compare(x, y), b.Compare(y, x)
			assert.NotZero(t, cxy)
			assert.Equal(t, -cxy, cyx, "antisymmetry")
			for _, z := range terms {
				if b.Less(x, y) && b.Less(y, z) {
					assert.True(t, b.Less(x, z), "transitivity")
				}
			}
		}
	}
}

func TestAccessors(t *testing.T) {
	fx := newFixture()
	b := fx.bank

	ord := b.Ordered(fx.f, fx.a, fx.b)
	ac := b.AC(fx.add, MultisetOf(fx.a, fx.b))

	assert.Equal(t, KindOrdered, b.Kind(ord))
	assert.Equal(t, KindAC, b.Kind(ac))
	assert.Equal(t, fx.f, b.Head(ord))
	assert.Equal(t, 2, b.Arity(ord))
	assert.Equal(t, []Term{fx.a, fx.b}, b.Args(ord))
	assert.Nil(t, b.Args(ac))
	assert.Nil(t, b.Entries(ord))
	assert.True(t, b.IsAtom(fx.a))
	assert.False(t, b.IsAtom(ord))

	t.Run("Args returns a copy", func(t *testing.T) {
		args := b.Args(ord)
		args[0] = fx.c
		assert.Equal(t, fx.a, b.Args(ord)[0])
	})

	t.Run("Arg out of range", func(t *testing.T) {
		_, err := b.Arg(ord, 2)
		require.Error(t, err)
		assert.True(t, IsStructuralError(err, ErrCodeOutOfRange))
	})

	t.Run("Arg on multiset", func(t *testing.T) {
		_, err := b.Arg(ac, 0)
		require.Error(t, err)
		assert.True(t, IsStructuralError(err, ErrCodeInvalidPosition))
	})

	t.Run("Rebuild ordered panics", func(t *testing.T) {
		assert.Panics(t, func() { b.Rebuild(ord, MultisetOf(fx.a)) })
	})

	t.Run("foreign handle panics", func(t *testing.T) {
		assert.Panics(t, func() { b.Head(Term(b.Len() + 10)) })
	})
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "ordered", KindOrdered.String())
	assert.Equal(t, "c", KindC.String())
	assert.Equal(t, "ac", KindAC.String())
	assert.Panics(t, func() { _ = Kind(9).String() })
	assert.False(t, KindOrdered.IsMultiset())
	assert.True(t, KindAC.IsMultiset())
}
