package ir

import (
	"fmt"
	"slices"

	"github.com/hashicorp/go-set/v3"
)

// Substitute replaces whole sub-terms by handle identity.
//
// Every node reachable from t is visited at most once per call. Nodes are
// rebuilt bottom-up only where a descendant changed, so t itself is
// returned when nothing in mapping occurs in it. Replacements are not
// themselves searched.
func (b *Bank) Substitute(t Term, mapping map[Term]Term) Term {
	if len(mapping) == 0 {
		return t
	}
	memo := make(map[Term]Term)
	return b.substitute(t, mapping, memo)
}

func (b *Bank) substitute(t Term, mapping, memo map[Term]Term) Term {
	if r, ok := memo[t]; ok {
		return r
	}
	if r, ok := mapping[t]; ok {
		memo[t] = r
		return r
	}

	n := b.at(t)
	kind, head := n.kind, n.head
	res := t
	switch kind {
	case KindOrdered:
		args := n.args
		var rebuilt []Term
		for i, a := range args {
			r := b.substitute(a, mapping, memo)
			if r != a && rebuilt == nil {
				rebuilt = slices.Clone(args)
			}
			if rebuilt != nil {
				rebuilt[i] = r
			}
		}
		if rebuilt != nil {
			res = b.intern(KindOrdered, head, rebuilt, nil)
		}
	case KindC, KindAC:
		ms := n.ms
		changed := false
		rebuilt := make(Multiset, 0, len(ms))
		for _, e := range ms {
			r := b.substitute(e.Term, mapping, memo)
			if r != e.Term {
				changed = true
			}
			rebuilt = append(rebuilt, Entry{Term: r, Count: e.Count})
		}
		if changed {
			if kind == KindC {
				res = b.Commutative(head, rebuilt)
			} else {
				res = b.AC(head, rebuilt)
			}
		}
	default:
		panic(fmt.Sprintf("ir: unknown kind %d", uint8(kind)))
	}

	memo[t] = res
	return res
}

// Reachable returns the set of distinct nodes reachable from t, t included.
func (b *Bank) Reachable(t Term) *set.Set[Term] {
	seen := set.New[Term](0)
	stack := []Term{t}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !seen.Insert(cur) {
			continue
		}
		stack = append(stack, b.Children(cur)...)
	}
	return seen
}

// Size counts the distinct nodes reachable from t; shared sub-terms count once.
func (b *Bank) Size(t Term) int {
	if s := b.at(t).size; s > 0 {
		return s
	}
	s := b.Reachable(t).Size()
	b.at(t).size = s
	return s
}

// IsAtomic reports whether t is a single node.
func (b *Bank) IsAtomic(t Term) bool {
	return b.Size(t) == 1
}

// Occurs reports whether needle is reachable from t.
func (b *Bank) Occurs(needle, t Term) bool {
	return b.Reachable(t).Contains(needle)
}
