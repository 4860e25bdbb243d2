package ir

import "fmt"

// Term is a handle to a node interned in a Bank.
// Handles are only meaningful for the Bank that produced them.
type Term int32

// NoTerm is the zero handle returned alongside failures.
const NoTerm Term = -1

// Valid reports whether t refers to a node at all.
func (t Term) Valid() bool {
	return t >= 0
}

// Kind is the node variant.
type Kind uint8

const (
	// KindOrdered is a head applied to an ordered list of children.
	KindOrdered Kind = iota

	// KindC is a commutative head over a multiset of children.
	KindC

	// KindAC is an associative-commutative head over a multiset of children.
	// AC nodes flatten same-head AC children on construction.
	KindAC
)

// String returns the lowercase variant name used in exports.
func (k Kind) String() string {
	switch k {
	case KindOrdered:
		return "ordered"
	case KindC:
		return "c"
	case KindAC:
		return "ac"
	default:
		panic(fmt.Sprintf("ir: unknown kind %d", uint8(k)))
	}
}

// IsMultiset reports whether nodes of this kind carry a multiset.
func (k Kind) IsMultiset() bool {
	switch k {
	case KindOrdered:
		return false
	case KindC, KindAC:
		return true
	default:
		panic(fmt.Sprintf("ir: unknown kind %d", uint8(k)))
	}
}

// node is the arena record behind a Term.
// args is set for ordered nodes, ms for C and AC nodes.
type node struct {
	kind Kind
	head int
	args []Term
	ms   Multiset
	hash uint64
	size int // distinct reachable nodes; 0 until first computed
}
