package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrinterFormat(t *testing.T) {
	fx := newFixture()
	b := fx.bank

	assert.Equal(t, "a", fx.format(fx.a))
	assert.Equal(t, "f(a g(b))", fx.format(b.Ordered(fx.f, fx.a, b.Ordered(fx.g, fx.b))))
	assert.Equal(t, "ADD(c c)", fx.format(b.AC(fx.add, Multiset{{fx.c, 2}})))
	assert.Equal(t, "?99", fx.sig.Name(99))

	p := Printer{Sig: fx.sig, Bank: b}
	assert.Equal(t, "a b", p.FormatAll([]Term{fx.a, fx.b}))
}

func TestPrinterExport(t *testing.T) {
	fx := newFixture()
	b := fx.bank
	p := Printer{Sig: fx.sig, Bank: b}

	assert.Equal(t, "a", p.Export(fx.a))

	ord := p.Export(b.Ordered(fx.f, fx.a))
	assert.Equal(t, map[string]any{
		"head": "f",
		"kind": "ordered",
		"args": []any{"a"},
	}, ord)

	ac := p.Export(b.AC(fx.add, Multiset{{fx.b, 2}}))
	assert.Equal(t, map[string]any{
		"head":    "ADD",
		"kind":    "ac",
		"entries": []any{map[string]any{"term": "b", "count": 2}},
	}, ac)

	data, err := MarshalCanonical(ac)
	require.NoError(t, err)
	assert.Equal(t, `{"entries":[{"count":2,"term":"b"}],"head":"ADD","kind":"ac"}`, string(data))
}

func TestSignature(t *testing.T) {
	sig := NewSignature()
	x := sig.Register("x")
	assert.Equal(t, x, sig.Register("x"))

	// "é" precomposed and decomposed resolve to one id.
	pre := sig.Register("\u00e9")
	dec := sig.Register("e\u0301")
	assert.Equal(t, pre, dec)

	sig.MarkReserved()
	y := sig.Declare("PLUS", KindAC)
	assert.True(t, sig.IsReserved(x))
	assert.False(t, sig.IsReserved(y))
	assert.Equal(t, KindAC, sig.KindOf(y))
	assert.Equal(t, KindOrdered, sig.KindOf(x))

	_, ok := sig.Lookup("missing")
	assert.False(t, ok)
	assert.Panics(t, func() { sig.MustLookup("missing") })
	assert.Equal(t, 3, sig.Len())
}
