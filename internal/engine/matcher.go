package engine

import "github.com/LucianoXu/diracoq/internal/ir"

// MatchOrdered succeeds when t is an ordered node with the given head and
// returns a copy of its children.
func MatchOrdered(b *ir.Bank, t ir.Term, head int) ([]ir.Term, bool) {
	if b.Kind(t) != ir.KindOrdered || b.Head(t) != head {
		return nil, false
	}
	return b.Args(t), true
}

// MatchOrderedN is MatchOrdered restricted to exactly n children.
func MatchOrderedN(b *ir.Bank, t ir.Term, head, n int) ([]ir.Term, bool) {
	args, ok := MatchOrdered(b, t, head)
	if !ok || len(args) != n {
		return nil, false
	}
	return args, true
}

// MatchAtom reports whether t is the childless ordered node head.
func MatchAtom(b *ir.Bank, t ir.Term, head int) bool {
	return b.IsAtom(t) && b.Head(t) == head
}

// MatchMultiset succeeds when t is a C or AC node with the given head,
// regardless of the order its arguments were supplied in. The returned
// multiset is a copy in bank order.
func MatchMultiset(b *ir.Bank, t ir.Term, head int) (ir.Multiset, bool) {
	if !b.Kind(t).IsMultiset() || b.Head(t) != head {
		return nil, false
	}
	return b.Entries(t), true
}

// FirstEntry returns the first entry of ms, in order, that satisfies pred.
// Rules that pick one argument out of a multiset use it so the choice
// follows the bank order.
func FirstEntry(ms ir.Multiset, pred func(ir.Entry) bool) (ir.Entry, bool) {
	for _, e := range ms {
		if pred(e) {
			return e, true
		}
	}
	return ir.Entry{}, false
}

// FirstArg is FirstEntry for ordered argument lists. It returns the index
// of the first argument satisfying pred, or -1.
func FirstArg(args []ir.Term, pred func(ir.Term) bool) int {
	for i, a := range args {
		if pred(a) {
			return i
		}
	}
	return -1
}
