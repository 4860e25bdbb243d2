package scalar

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucianoXu/diracoq/internal/engine"
	"github.com/LucianoXu/diracoq/internal/ir"
	"github.com/LucianoXu/diracoq/internal/syntax"
)

type algebra struct {
	sig   *ir.Signature
	bank  *ir.Bank
	heads Heads
}

func newAlgebra(kind ir.Kind) *algebra {
	sig := ir.NewSignature()
	return &algebra{sig: sig, bank: ir.NewBank(), heads: Declare(sig, kind)}
}

func (a *algebra) parse(t *testing.T, src string) ir.Term {
	t.Helper()
	ast, err := syntax.Parse(src)
	require.NoError(t, err)
	return syntax.ToTerm(a.sig, a.bank, ast)
}

func (a *algebra) normalize(t *testing.T, rules engine.RuleSet, src string) ir.Term {
	t.Helper()
	out, err := engine.New(a.bank, rules).RewriteToNormalForm(context.Background(), a.parse(t, src), nil)
	require.NoError(t, err)
	return out
}

func (a *algebra) format(t ir.Term) string {
	return ir.Printer{Sig: a.sig, Bank: a.bank}.Format(t)
}

type reduction struct {
	name  string
	rules []string // empty means the full rule set
	in    string
	want  string
}

var reductions = []reduction{
	{"adds0 drops zero", []string{"R_ADDS0"}, "ADDS(0 a b)", "ADDS(a b)"},
	{"adds0 then identity", nil, "ADDS(0 b)", "b"},
	{"adds0 only zeros", []string{"R_ADDS0"}, "ADDS(0 0)", "0"},
	{"muls0", []string{"R_MULS0"}, "MULS(0 a b)", "0"},
	{"muls1", []string{"R_MULS1"}, "MULS(1 a 1 b 1)", "MULS(a b)"},
	{"muls1 only ones", []string{"R_MULS1"}, "MULS(1 1)", "1"},
	{"muls2", []string{"R_MULS2"}, "MULS(a ADDS(b c))", "ADDS(MULS(a b) MULS(a c))"},
	{"muls2 keeps other factors", []string{"R_MULS2"}, "MULS(a ADDS(b c) b)", "ADDS(MULS(a b b) MULS(a c b))"},
	{"muls2 single factor", []string{"R_MULS2"}, "MULS(ADDS(b c))", "MULS(ADDS(b c))"},
	{"conj0", []string{"R_CONJ0"}, "CONJ(0)", "0"},
	{"conj1", []string{"R_CONJ1"}, "CONJ(1)", "1"},
	{"conj2", []string{"R_CONJ2"}, "CONJ(ADDS(a b))", "ADDS(CONJ(a) CONJ(b))"},
	{"conj3", []string{"R_CONJ3"}, "CONJ(MULS(a b))", "MULS(CONJ(a) CONJ(b))"},
	{"conj4", []string{"R_CONJ4"}, "CONJ(CONJ(a))", "a"},
	{"identity", []string{"R_ADDSID", "R_MULSID"}, "ADDS(MULS(a))", "a"},
	{"conj of sum with vanishing product", nil, "CONJ(ADDS(a MULS(b 0)))", "CONJ(a)"},
	{"double conj of zero product", nil, "CONJ(CONJ(MULS(b 0)))", "0"},
}

func TestRules(t *testing.T) {
	for _, tt := range reductions {
		t.Run(tt.name, func(t *testing.T) {
			a := newAlgebra(ir.KindAC)
			rules := Rules(a.heads)
			if len(tt.rules) > 0 {
				rules = rules.Only(tt.rules...)
			}
			got := a.normalize(t, rules, tt.in)
			want := a.parse(t, tt.want)
			assert.Equal(t, want, got, "got %s, want %s", a.format(got), a.format(want))
		})
	}
}

func TestRules_AddsRepeatedAddendKeepsCount(t *testing.T) {
	a := newAlgebra(ir.KindAC)
	got := a.normalize(t, Rules(a.heads), "MULS(c ADDS(a a b))")
	assert.Equal(t, a.parse(t, "ADDS(MULS(c a) MULS(c a) MULS(c b))"), got)
}

func TestRules_ConjKeepsMultiplicity(t *testing.T) {
	a := newAlgebra(ir.KindAC)
	got := a.normalize(t, Rules(a.heads).Only("R_CONJ2"), "CONJ(ADDS(a a))")
	assert.Equal(t, a.parse(t, "ADDS(CONJ(a) CONJ(a))"), got)
}

func TestRules_Names(t *testing.T) {
	a := newAlgebra(ir.KindAC)
	assert.Equal(t, []string{
		"R_ADDSID", "R_MULSID", "R_ADDS0", "R_MULS0", "R_MULS1", "R_MULS2",
		"R_CONJ0", "R_CONJ1", "R_CONJ2", "R_CONJ3", "R_CONJ4",
	}, Rules(a.heads).Names())
	assert.Equal(t, "R_FLATTEN", VecRules(a.heads).Names()[0])
}

func TestVecRules(t *testing.T) {
	tests := []reduction{
		{"flatten", []string{"R_FLATTEN"}, "ADDS(a ADDS(b c) d)", "ADDS(a b c d)"},
		{"flatten nested", []string{"R_FLATTEN"}, "MULS(MULS(a MULS(b)) c)", "MULS(a b c)"},
		{"adds0", []string{"R_ADDS0"}, "ADDS(a 0 b 0)", "ADDS(a b)"},
		{"muls1", []string{"R_MULS1"}, "MULS(1 a 1 b 1)", "MULS(a b)"},
		{"muls2 in place", []string{"R_MULS2"}, "MULS(a ADDS(b c) d)", "ADDS(MULS(a b d) MULS(a c d))"},
		{"muls2 single factor", []string{"R_MULS2"}, "MULS(ADDS(b c))", "MULS(ADDS(b c))"},
		{"conj2", []string{"R_CONJ2"}, "CONJ(ADDS(a b))", "ADDS(CONJ(a) CONJ(b))"},
		{"conj4", []string{"R_CONJ4"}, "CONJ(CONJ(a))", "a"},
		{"full", nil, "CONJ(ADDS(a MULS(b 0)))", "CONJ(a)"},
		{"full distribute", nil, "MULS(ADDS(a 0) ADDS(b c))", "ADDS(MULS(a b) MULS(a c))"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAlgebra(ir.KindOrdered)
			rules := VecRules(a.heads)
			if len(tt.rules) > 0 {
				rules = rules.Only(tt.rules...)
			}
			got := a.normalize(t, rules, tt.in)
			// Ordered heads print in argument order, so strings are stable.
			assert.Equal(t, tt.want, a.format(got))
		})
	}
}

func TestNormalize_CommutativityInvariance(t *testing.T) {
	pairs := [][2]string{
		{"ADDS(a b)", "ADDS(b a)"},
		{"MULS(a ADDS(b c))", "MULS(ADDS(c b) a)"},
		{"ADDS(MULS(b a) c)", "ADDS(c MULS(a b))"},
		{"CONJ(MULS(a ADDS(b 0)))", "MULS(CONJ(b) CONJ(a))"},
	}
	for _, p := range pairs {
		t.Run(p[0], func(t *testing.T) {
			a := newAlgebra(ir.KindOrdered)
			x, _, err := Normalize(context.Background(), a.bank, a.heads, a.parse(t, p[0]), nil)
			require.NoError(t, err)
			y, _, err := Normalize(context.Background(), a.bank, a.heads, a.parse(t, p[1]), nil)
			require.NoError(t, err)
			assert.Equal(t, x, y, "%s vs %s", a.format(x), a.format(y))
		})
	}
}

func TestNormalize_RecordsSort(t *testing.T) {
	a := newAlgebra(ir.KindOrdered)
	ab := a.parse(t, "ADDS(a b)")
	ba := a.parse(t, "ADDS(b a)")

	// Exactly one of the two orders needs sorting.
	var traces [2]engine.Trace
	for i, in := range []ir.Term{ab, ba} {
		_, instr, err := Normalize(context.Background(), a.bank, a.heads, in, &traces[i])
		require.NoError(t, err)
		assert.Equal(t, instr.IsIdentity(), traces[i].Len() == 0)
	}
	assert.Equal(t, 1, traces[0].Len()+traces[1].Len())

	sorted := traces[0]
	if sorted.Len() == 0 {
		sorted = traces[1]
	}
	assert.Equal(t, []string{"R_C_EQ"}, sorted.Rules())
	assert.False(t, sorted.Records[0].Matched.Valid())
}

// The AC rule set reaches the same normal form whichever rule is tried
// first at a position.
func TestRules_OrderIndependent(t *testing.T) {
	inputs := []string{
		"CONJ(ADDS(a MULS(b 0)))",
		"MULS(ADDS(a 0) ADDS(b c))",
		"CONJ(MULS(a ADDS(b 1)))",
		"MULS(0 ADDS(b c))",
		"ADDS(CONJ(CONJ(MULS(1 a))) MULS(b ADDS(0 c)))",
	}
	a := newAlgebra(ir.KindAC)
	base := Rules(a.heads).Rules

	orders := [][]engine.Rule{base}
	for i := 1; i < len(base); i++ {
		orders = append(orders, append(append([]engine.Rule{}, base[i:]...), base[:i]...))
	}
	reversed := make([]engine.Rule, len(base))
	for i, r := range base {
		reversed[len(base)-1-i] = r
	}
	orders = append(orders, reversed)

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			want := a.normalize(t, engine.RuleSet{Name: "scalar", Rules: base}, in)
			for _, rules := range orders {
				got := a.normalize(t, engine.RuleSet{Name: "scalar", Rules: rules}, in)
				assert.Equal(t, want, got, "%s vs %s starting with %s", a.format(want), a.format(got), rules[0].Name)
			}
		})
	}
}
