package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstitute(t *testing.T) {
	fx := newFixture()
	b := fx.bank

	shared := b.Ordered(fx.g, fx.a)
	root := b.Ordered(fx.f, shared, shared, fx.b)

	t.Run("replaces every occurrence", func(t *testing.T) {
		got := b.Substitute(root, map[Term]Term{fx.a: fx.c})
		assert.Equal(t, "f(g(c) g(c) b)", fx.format(got))
	})

	t.Run("no match returns the same handle", func(t *testing.T) {
		before := b.Len()
		got := b.Substitute(root, map[Term]Term{fx.c: fx.a})
		assert.Equal(t, root, got)
		assert.Equal(t, before, b.Len(), "nothing rebuilt")
	})

	t.Run("empty mapping", func(t *testing.T) {
		assert.Equal(t, root, b.Substitute(root, nil))
	})

	t.Run("whole sub-term replacement", func(t *testing.T) {
		got := b.Substitute(root, map[Term]Term{shared: fx.c})
		assert.Equal(t, "f(c c b)", fx.format(got))
	})

	t.Run("replacements are not searched", func(t *testing.T) {
		got := b.Substitute(fx.a, map[Term]Term{fx.a: shared})
		assert.Equal(t, shared, got)
	})

	t.Run("AC children are re-flattened", func(t *testing.T) {
		sum := b.AC(fx.add, MultisetOf(fx.a, fx.c))
		inner := b.AC(fx.add, MultisetOf(fx.b, fx.b))
		got := b.Substitute(sum, map[Term]Term{fx.c: inner})
		assert.Equal(t, b.AC(fx.add, Multiset{{fx.a, 1}, {fx.b, 2}}), got)
	})

	t.Run("C children are re-sorted", func(t *testing.T) {
		eq := b.Commutative(fx.eq, MultisetOf(fx.a, fx.b))
		got := b.Substitute(eq, map[Term]Term{fx.a: fx.c})
		assert.Equal(t, b.Commutative(fx.eq, MultisetOf(fx.b, fx.c)), got)
	})
}

func TestSizeCountsDistinctNodes(t *testing.T) {
	fx := newFixture()
	b := fx.bank

	shared := b.Ordered(fx.g, fx.a)
	root := b.Ordered(fx.f, shared, shared)

	assert.Equal(t, 3, b.Size(root), "f, g(a) and a")
	assert.Equal(t, 3, b.Size(root), "cached size is stable")
	assert.Equal(t, 1, b.Size(fx.a))
	assert.True(t, b.IsAtomic(fx.a))
	assert.False(t, b.IsAtomic(shared))

	ac := b.AC(fx.add, Multiset{{fx.a, 3}})
	assert.Equal(t, 2, b.Size(ac), "multiplicity does not add nodes")

	assert.True(t, b.Occurs(fx.a, root))
	assert.False(t, b.Occurs(fx.b, root))
	assert.True(t, b.Reachable(root).Contains(shared))
}
