package ir

import (
	"cmp"
	"fmt"
	"slices"
)

const (
	fnvOffset uint64 = 14695981039346656037
	fnvPrime  uint64 = 1099511628211
)

// mix folds the eight bytes of v into an FNV-1a state.
func mix(h, v uint64) uint64 {
	for i := 0; i < 8; i++ {
		h ^= v & 0xff
		h *= fnvPrime
		v >>= 8
	}
	return h
}

// Bank is the only authority allowed to construct terms.
//
// It interns nodes by (kind, head, children) so that two structurally
// equal terms are always the same handle. A Bank is not safe for
// concurrent use; it is owned by a single kernel or session.
type Bank struct {
	nodes   []node
	buckets map[uint64][]Term
}

// NewBank creates an empty bank.
func NewBank() *Bank {
	return &Bank{
		buckets: make(map[uint64][]Term),
	}
}

// Len returns the number of interned nodes.
func (b *Bank) Len() int {
	return len(b.nodes)
}

func (b *Bank) at(t Term) *node {
	if t < 0 || int(t) >= len(b.nodes) {
		panic(fmt.Sprintf("ir: term handle %d does not belong to this bank", t))
	}
	return &b.nodes[t]
}

// Atom returns the ordered term with no children for head.
func (b *Bank) Atom(head int) Term {
	return b.intern(KindOrdered, head, nil, nil)
}

// Ordered returns the ordered term head(args...).
func (b *Bank) Ordered(head int, args ...Term) Term {
	for _, a := range args {
		b.at(a)
	}
	return b.intern(KindOrdered, head, slices.Clone(args), nil)
}

// Commutative returns the C term head{ms}. The input order is irrelevant.
func (b *Bank) Commutative(head int, ms Multiset) Term {
	return b.intern(KindC, head, nil, b.normalize(ms))
}

// AC returns the AC term head{ms}, merging any child that is itself an AC
// node with the same head. A merged child's entries are scaled by the
// child's own multiplicity.
func (b *Bank) AC(head int, ms Multiset) Term {
	var flat Multiset
	for _, e := range ms {
		n := b.at(e.Term)
		if n.kind == KindAC && n.head == head {
			for _, inner := range n.ms {
				flat.Add(inner.Term, inner.Count*e.Count)
			}
			continue
		}
		flat.Add(e.Term, e.Count)
	}
	return b.intern(KindAC, head, nil, b.normalize(flat))
}

// Build constructs a node of the given kind. Ordered kinds use args,
// multiset kinds count each arg once.
func (b *Bank) Build(kind Kind, head int, args ...Term) Term {
	switch kind {
	case KindOrdered:
		return b.Ordered(head, args...)
	case KindC:
		return b.Commutative(head, MultisetOf(args...))
	case KindAC:
		return b.AC(head, MultisetOf(args...))
	default:
		panic(fmt.Sprintf("ir: unknown kind %d", uint8(kind)))
	}
}

// Rebuild constructs a node with the same kind and head as t but a new
// multiset. t must be a C or AC node.
func (b *Bank) Rebuild(t Term, ms Multiset) Term {
	n := b.at(t)
	switch n.kind {
	case KindOrdered:
		panic(&StructuralError{Code: ErrCodeBadVariant, Message: "Rebuild called on an ordered term"})
	case KindC:
		return b.Commutative(n.head, ms)
	case KindAC:
		return b.AC(n.head, ms)
	default:
		panic(fmt.Sprintf("ir: unknown kind %d", uint8(n.kind)))
	}
}

// normalize merges duplicates, drops empty entries and sorts by Compare.
func (b *Bank) normalize(ms Multiset) Multiset {
	out := make(Multiset, 0, len(ms))
	for _, e := range ms {
		b.at(e.Term)
		if e.Count < 0 {
			panic(fmt.Sprintf("ir: negative multiplicity %d", e.Count))
		}
		out.Add(e.Term, e.Count)
	}
	slices.SortFunc(out, func(x, y Entry) int {
		return b.Compare(x.Term, y.Term)
	})
	return out
}

func (b *Bank) structuralHash(kind Kind, head int, args []Term, ms Multiset) uint64 {
	h := mix(fnvOffset, uint64(kind))
	h = mix(h, uint64(head))
	switch kind {
	case KindOrdered:
		h = mix(h, uint64(len(args)))
		for _, a := range args {
			h = mix(h, b.nodes[a].hash)
		}
	case KindC, KindAC:
		h = mix(h, uint64(len(ms)))
		for _, e := range ms {
			h = mix(h, b.nodes[e.Term].hash)
			h = mix(h, uint64(e.Count))
		}
	default:
		panic(fmt.Sprintf("ir: unknown kind %d", uint8(kind)))
	}
	return h
}

func (b *Bank) sameNode(t Term, kind Kind, head int, args []Term, ms Multiset) bool {
	n := &b.nodes[t]
	if n.kind != kind || n.head != head {
		return false
	}
	switch kind {
	case KindOrdered:
		return slices.Equal(n.args, args)
	case KindC, KindAC:
		return slices.Equal(n.ms, ms)
	default:
		panic(fmt.Sprintf("ir: unknown kind %d", uint8(kind)))
	}
}

// intern returns the existing handle for the node or allocates a new one.
// args and ms must already be owned by the caller (not aliased elsewhere).
func (b *Bank) intern(kind Kind, head int, args []Term, ms Multiset) Term {
	h := b.structuralHash(kind, head, args, ms)
	for _, cand := range b.buckets[h] {
		if b.sameNode(cand, kind, head, args, ms) {
			return cand
		}
	}
	t := Term(len(b.nodes))
	b.nodes = append(b.nodes, node{
		kind: kind,
		head: head,
		args: args,
		ms:   ms,
		hash: h,
	})
	b.buckets[h] = append(b.buckets[h], t)
	return t
}

// Kind returns the variant of t.
func (b *Bank) Kind(t Term) Kind {
	return b.at(t).kind
}

// Head returns the head symbol id of t.
func (b *Bank) Head(t Term) int {
	return b.at(t).head
}

// Hash returns the structural hash of t.
func (b *Bank) Hash(t Term) uint64 {
	return b.at(t).hash
}

// Arity returns the number of ordered children or distinct multiset entries.
func (b *Bank) Arity(t Term) int {
	n := b.at(t)
	if n.kind.IsMultiset() {
		return len(n.ms)
	}
	return len(n.args)
}

// Args returns a copy of the children of an ordered term (nil otherwise).
func (b *Bank) Args(t Term) []Term {
	n := b.at(t)
	if n.kind != KindOrdered {
		return nil
	}
	return slices.Clone(n.args)
}

// Entries returns a copy of the multiset of a C or AC term (nil otherwise).
func (b *Bank) Entries(t Term) Multiset {
	n := b.at(t)
	if !n.kind.IsMultiset() {
		return nil
	}
	return n.ms.Clone()
}

// Children returns the distinct children of t in traversal order.
func (b *Bank) Children(t Term) []Term {
	n := b.at(t)
	if n.kind.IsMultiset() {
		return n.ms.Terms()
	}
	return slices.Clone(n.args)
}

// Arg returns child i of an ordered term.
func (b *Bank) Arg(t Term, i int) (Term, error) {
	n := b.at(t)
	if n.kind != KindOrdered {
		return NoTerm, &StructuralError{
			Code:    ErrCodeInvalidPosition,
			Message: fmt.Sprintf("%s node has no indexed children", n.kind),
		}
	}
	if i < 0 || i >= len(n.args) {
		return NoTerm, outOfRange(i, len(n.args))
	}
	return n.args[i], nil
}

// IsAtom reports whether t is an ordered node without children.
func (b *Bank) IsAtom(t Term) bool {
	n := b.at(t)
	return n.kind == KindOrdered && len(n.args) == 0
}

// Compare is the strict total order on terms: structural hash, then kind,
// then head, then arity, then children lexicographically.
// It returns 0 only for identical handles.
func (b *Bank) Compare(x, y Term) int {
	if x == y {
		return 0
	}
	nx, ny := b.at(x), b.at(y)
	if c := cmp.Compare(nx.hash, ny.hash); c != 0 {
		return c
	}
	if c := cmp.Compare(nx.kind, ny.kind); c != 0 {
		return c
	}
	if c := cmp.Compare(nx.head, ny.head); c != 0 {
		return c
	}
	switch nx.kind {
	case KindOrdered:
		if c := cmp.Compare(len(nx.args), len(ny.args)); c != 0 {
			return c
		}
		for i := range nx.args {
			if c := b.Compare(nx.args[i], ny.args[i]); c != 0 {
				return c
			}
		}
	case KindC, KindAC:
		if c := cmp.Compare(len(nx.ms), len(ny.ms)); c != 0 {
			return c
		}
		for i := range nx.ms {
			if c := b.Compare(nx.ms[i].Term, ny.ms[i].Term); c != 0 {
				return c
			}
			if c := cmp.Compare(nx.ms[i].Count, ny.ms[i].Count); c != 0 {
				return c
			}
		}
	default:
		panic(fmt.Sprintf("ir: unknown kind %d", uint8(nx.kind)))
	}
	// Distinct handles are structurally distinct.
	panic(fmt.Sprintf("ir: distinct handles %d and %d compare equal", x, y))
}

// Less reports whether x sorts before y.
func (b *Bank) Less(x, y Term) bool {
	return b.Compare(x, y) < 0
}
