package kernel

import (
	"fmt"
	"strconv"

	"github.com/LucianoXu/diracoq/internal/ir"
	"github.com/LucianoXu/diracoq/internal/scalar"
)

// DeBruijnCount is the number of reserved de Bruijn names $0 ... $1023.
// They are registered first, so $n has symbol id n.
const DeBruijnCount = 1024

// CommandNames are reserved so declarations cannot shadow prover commands.
var CommandNames = []string{
	"Group", "Def", "Var", "Check", "Show", "ShowAll", "Normalize", "Trace", "CheckEq", "Pop",
}

var typeNames = []string{
	"Index", "Type", "Prod", "Qbit", "Basis", "SType", "KType", "BType", "OType", "Arrow", "Forall", "Set",
}

var termNames = []string{
	"PAIR", "fun", "idx", "apply", "#0", "#1",
	"0", "1", "ADDS", "MULS", "CONJ", "DELTA", "DOT",
	"0K", "0B", "0O", "1O", "KET", "BRA", "ADJ", "SCR", "ADD", "TSR",
	"MULK", "MULB", "OUTER", "MULO",
	"USET", "CATPROD", "SUM", "SSUM", "@", "STAR", "ADDG",
}

// symbols holds the head ids of the calculus.
type symbols struct {
	Index, Type, Prod, Qbit, Basis int
	SType, KType, BType, OType      int
	Arrow, Forall, Set              int

	Pair, Fun, Idx, Apply, Basis0, Basis1 int

	Zero, One, Adds, Muls, Conj, Delta, Dot int

	ZeroK, ZeroB, ZeroO, OneO, Ket, Bra, Adj, Scr, Add, Tsr int
	MulK, MulB, Outer, MulO                                 int

	USet, CatProd, Sum, SSum, Compo, Star, AddG int

	scalar scalar.Heads
}

// newSignature registers every reserved name in a fixed order, declares
// the AC and C heads, and marks the lot reserved.
func newSignature() (*ir.Signature, symbols) {
	sig := ir.NewSignature()
	for i := 0; i < DeBruijnCount; i++ {
		if id := sig.Register("$" + strconv.Itoa(i)); id != i {
			panic(fmt.Sprintf("kernel: de Bruijn name $%d registered as %d", i, id))
		}
	}
	for _, group := range [][]string{CommandNames, typeNames, termNames} {
		for _, name := range group {
			sig.Register(name)
		}
	}

	s := symbols{
		Index:  sig.MustLookup("Index"),
		Type:   sig.MustLookup("Type"),
		Prod:   sig.MustLookup("Prod"),
		Qbit:   sig.MustLookup("Qbit"),
		Basis:  sig.MustLookup("Basis"),
		SType:  sig.MustLookup("SType"),
		KType:  sig.MustLookup("KType"),
		BType:  sig.MustLookup("BType"),
		OType:  sig.MustLookup("OType"),
		Arrow:  sig.MustLookup("Arrow"),
		Forall: sig.MustLookup("Forall"),
		Set:    sig.MustLookup("Set"),

		Pair:   sig.MustLookup("PAIR"),
		Fun:    sig.MustLookup("fun"),
		Idx:    sig.MustLookup("idx"),
		Apply:  sig.MustLookup("apply"),
		Basis0: sig.MustLookup("#0"),
		Basis1: sig.MustLookup("#1"),

		Zero:  sig.MustLookup("0"),
		One:   sig.MustLookup("1"),
		Conj:  sig.MustLookup("CONJ"),
		Delta: sig.Declare("DELTA", ir.KindC),
		Dot:   sig.MustLookup("DOT"),

		ZeroK: sig.MustLookup("0K"),
		ZeroB: sig.MustLookup("0B"),
		ZeroO: sig.MustLookup("0O"),
		OneO:  sig.MustLookup("1O"),
		Ket:   sig.MustLookup("KET"),
		Bra:   sig.MustLookup("BRA"),
		Adj:   sig.MustLookup("ADJ"),
		Scr:   sig.MustLookup("SCR"),
		Add:   sig.Declare("ADD", ir.KindAC),
		Tsr:   sig.MustLookup("TSR"),
		MulK:  sig.MustLookup("MULK"),
		MulB:  sig.MustLookup("MULB"),
		Outer: sig.MustLookup("OUTER"),
		MulO:  sig.MustLookup("MULO"),

		USet:    sig.MustLookup("USET"),
		CatProd: sig.MustLookup("CATPROD"),
		Sum:     sig.MustLookup("SUM"),
		SSum:    sig.MustLookup("SSUM"),
		Compo:   sig.MustLookup("@"),
		Star:    sig.MustLookup("STAR"),
		AddG:    sig.MustLookup("ADDG"),
	}
	s.scalar = scalar.Declare(sig, ir.KindAC)
	s.Adds = s.scalar.Adds
	s.Muls = s.scalar.Muls

	sig.MarkReserved()
	return sig, s
}

// commutative lists the heads canonicalization sorts.
func (s symbols) commutative() []int {
	return []int{s.Adds, s.Muls, s.Delta, s.Add}
}

// deBruijn returns the symbol id of $level.
func deBruijn(level int) int {
	return level
}
