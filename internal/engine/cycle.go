package engine

import (
	"github.com/hashicorp/go-set/v3"

	"github.com/LucianoXu/diracoq/internal/ir"
)

// CycleDetector remembers the roots visited during one rewriting run.
//
// Handles are hash-consed, so a recurring handle is a recurring term.
// A shipped rule set never revisits a term; when one does, it would loop
// forever.
type CycleDetector struct {
	seen *set.Set[ir.Term]
}

// NewCycleDetector creates an empty detector.
func NewCycleDetector() *CycleDetector {
	return &CycleDetector{seen: set.New[ir.Term](0)}
}

// Visit records t and reports whether it had been visited before.
func (c *CycleDetector) Visit(t ir.Term) bool {
	return !c.seen.Insert(t)
}

// Reset clears the history.
func (c *CycleDetector) Reset() {
	c.seen = set.New[ir.Term](0)
}

// Size returns the number of distinct roots visited.
func (c *CycleDetector) Size() int {
	return c.seen.Size()
}
