package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCycleDetector_Visit(t *testing.T) {
	w := newWorld()
	a := w.parse(t, "a")
	b := w.parse(t, "f(a)")

	c := NewCycleDetector()
	assert.False(t, c.Visit(a), "first visit")
	assert.False(t, c.Visit(b))
	assert.True(t, c.Visit(a), "second visit of the same handle")
	assert.True(t, c.Visit(b))
	assert.Equal(t, 2, c.Size())

	c.Reset()
	assert.Equal(t, 0, c.Size())
	assert.False(t, c.Visit(a), "history was cleared")
}

func TestCycleDetector_StructuralIdentity(t *testing.T) {
	w := newWorld()
	c := NewCycleDetector()

	// Two parses of the same AC term are one handle, so the second is a revisit.
	assert.False(t, c.Visit(w.parse(t, "ADDS(a b)")))
	assert.True(t, c.Visit(w.parse(t, "ADDS(b a)")))
}
