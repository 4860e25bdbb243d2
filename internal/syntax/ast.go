// Package syntax reads the prefix notation used by theory files, scenario
// files and the REPL.
//
// A term is an identifier optionally followed by a parenthesised list of
// sub-terms: f(a g(b c)). Arguments are separated by whitespace or commas,
// square brackets may stand in for parentheses, and // starts a comment
// that runs to the end of the line.
package syntax

import (
	"fmt"
	"strings"

	"github.com/LucianoXu/diracoq/internal/ir"
)

// Pos is a 1-based source location.
type Pos struct {
	Line int
	Col  int
}

// String renders "line:col".
func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// AST is a parsed prefix expression.
type AST struct {
	Head     string
	Children []AST
	Pos      Pos
}

// String renders the AST in canonical prefix form, e.g. "f(a b)".
func (a AST) String() string {
	var sb strings.Builder
	a.write(&sb)
	return sb.String()
}

func (a AST) write(sb *strings.Builder) {
	sb.WriteString(a.Head)
	if len(a.Children) == 0 {
		return
	}
	sb.WriteByte('(')
	for i, c := range a.Children {
		if i > 0 {
			sb.WriteByte(' ')
		}
		c.write(sb)
	}
	sb.WriteByte(')')
}

// IsLeaf reports whether a has no children.
func (a AST) IsLeaf() bool {
	return len(a.Children) == 0
}

// ToTerm builds a term for a through bank. Each head is registered in sig
// and built with the variant sig records for it.
func ToTerm(sig *ir.Signature, bank *ir.Bank, a AST) ir.Term {
	id := sig.Register(a.Head)
	args := make([]ir.Term, len(a.Children))
	for i, c := range a.Children {
		args[i] = ToTerm(sig, bank, c)
	}
	return bank.Build(sig.KindOf(id), id, args...)
}
