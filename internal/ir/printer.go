package ir

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Printer renders terms for diagnostics and REPL output.
// It is never used for comparisons.
type Printer struct {
	Sig  *Signature
	Bank *Bank
}

// Format renders t in prefix syntax, e.g. "ADDS(x y)". Multiset entries
// are repeated by multiplicity, in bank order.
func (p Printer) Format(t Term) string {
	var sb strings.Builder
	p.write(&sb, t)
	return sb.String()
}

// FormatAll renders a list of terms separated by single spaces.
func (p Printer) FormatAll(ts []Term) string {
	return strings.Join(lo.Map(ts, func(t Term, _ int) string { return p.Format(t) }), " ")
}

func (p Printer) write(sb *strings.Builder, t Term) {
	n := p.Bank.at(t)
	sb.WriteString(p.Sig.Name(n.head))
	switch n.kind {
	case KindOrdered:
		if len(n.args) == 0 {
			return
		}
		sb.WriteByte('(')
		for i, a := range n.args {
			if i > 0 {
				sb.WriteByte(' ')
			}
			p.write(sb, a)
		}
		sb.WriteByte(')')
	case KindC, KindAC:
		children := lo.FlatMap(n.ms, func(e Entry, _ int) []Term {
			copies := make([]Term, e.Count)
			for i := range copies {
				copies[i] = e.Term
			}
			return copies
		})
		sb.WriteByte('(')
		for i, c := range children {
			if i > 0 {
				sb.WriteByte(' ')
			}
			p.write(sb, c)
		}
		sb.WriteByte(')')
	default:
		panic(fmt.Sprintf("ir: unknown kind %d", uint8(n.kind)))
	}
}

// Export converts t into a JSON-ready tree of strings, slices and maps.
// Atoms become their name; compound nodes become objects with "head",
// "kind" and either "args" or "entries".
func (p Printer) Export(t Term) any {
	n := p.Bank.at(t)
	name := p.Sig.Name(n.head)
	switch n.kind {
	case KindOrdered:
		if len(n.args) == 0 {
			return name
		}
		return map[string]any{
			"head": name,
			"kind": n.kind.String(),
			"args": lo.Map(n.args, func(a Term, _ int) any { return p.Export(a) }),
		}
	case KindC, KindAC:
		return map[string]any{
			"head": name,
			"kind": n.kind.String(),
			"entries": lo.Map(n.ms, func(e Entry, _ int) any {
				return map[string]any{"term": p.Export(e.Term), "count": e.Count}
			}),
		}
	default:
		panic(fmt.Sprintf("ir: unknown kind %d", uint8(n.kind)))
	}
}
