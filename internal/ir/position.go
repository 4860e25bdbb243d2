package ir

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Position is a path of child indices from the root.
type Position []int

// String renders "()" for the root and "(0, 2)" otherwise.
func (p Position) String() string {
	if len(p) == 0 {
		return "()"
	}
	parts := make([]string, len(p))
	for i, idx := range p {
		parts[i] = strconv.Itoa(idx)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Child returns a new position extended by index i.
func (p Position) Child(i int) Position {
	out := make(Position, len(p), len(p)+1)
	copy(out, p)
	return append(out, i)
}

// Subterm returns the sub-term of t at pos.
// Only ordered nodes have addressable children.
func (b *Bank) Subterm(t Term, pos Position) (Term, error) {
	cur := t
	for depth, idx := range pos {
		next, err := b.Arg(cur, idx)
		if err != nil {
			return NoTerm, fmt.Errorf("subterm at %s (depth %d): %w", pos, depth, err)
		}
		cur = next
	}
	return cur, nil
}

// ReplaceAt returns t with the sub-term at pos replaced by sub.
// The path must run through ordered nodes; a C or AC node on the path
// is an INVALID_POSITION error.
func (b *Bank) ReplaceAt(t Term, pos Position, sub Term) (Term, error) {
	if len(pos) == 0 {
		return sub, nil
	}
	child, err := b.Arg(t, pos[0])
	if err != nil {
		return NoTerm, fmt.Errorf("replace at %s: %w", pos, err)
	}
	replaced, err := b.ReplaceAt(child, pos[1:], sub)
	if err != nil {
		return NoTerm, err
	}
	if replaced == child {
		return t, nil
	}
	n := b.at(t)
	args := slices.Clone(n.args)
	args[pos[0]] = replaced
	return b.intern(KindOrdered, n.head, args, nil), nil
}
