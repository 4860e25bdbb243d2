// Package scalar holds the rewriting rules of the symbolic scalar algebra:
// 0, 1, addition (ADDS), multiplication (MULS) and conjugation (CONJ).
//
// Two renditions exist. Rules works on AC nodes, where associativity and
// commutativity live in the term representation. VecRules works on ordered
// nodes: associativity is a flattening rule and commutativity is left to
// canon.SortCommutative, which Normalize runs after rewriting.
package scalar

import (
	"context"
	"fmt"

	"github.com/LucianoXu/diracoq/internal/canon"
	"github.com/LucianoXu/diracoq/internal/engine"
	"github.com/LucianoXu/diracoq/internal/ir"
)

// Heads are the symbol ids of the scalar constructors.
type Heads struct {
	Zero int
	One  int
	Conj int
	Adds int
	Muls int
}

// Declare registers the scalar symbols in sig and returns their ids.
// ADDS and MULS are declared with kind; symbols already registered keep
// their ids.
func Declare(sig *ir.Signature, kind ir.Kind) Heads {
	return Heads{
		Zero: sig.Register("0"),
		One:  sig.Register("1"),
		Conj: sig.Register("CONJ"),
		Adds: sig.Declare("ADDS", kind),
		Muls: sig.Declare("MULS", kind),
	}
}

// Commutative lists the heads the canonicalizer should sort.
func (h Heads) Commutative() []int {
	return []int{h.Adds, h.Muls}
}

// Normalize rewrites t to normal form under VecRules and then sorts the
// arguments of ADDS and MULS. When the sort changes the term and trace is
// non-nil, an R_C_EQ record is appended for it.
func Normalize(ctx context.Context, b *ir.Bank, h Heads, t ir.Term, trace *engine.Trace, opts ...engine.EngineOption) (ir.Term, canon.Instruction, error) {
	e := engine.New(b, VecRules(h), opts...)
	nf, err := e.RewriteToNormalForm(ctx, t, trace)
	if err != nil {
		return ir.NoTerm, canon.Instruction{}, fmt.Errorf("scalar normalize: %w", err)
	}
	sorted, instr := canon.SortCommutative(b, nf, h.Commutative())
	if trace != nil && !instr.IsIdentity() {
		trace.Append(engine.Record{
			Rule:        "R_C_EQ",
			Initial:     nf,
			Matched:     ir.NoTerm,
			Replacement: ir.NoTerm,
			Final:       sorted,
		})
	}
	return sorted, instr, nil
}
