package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalcType(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{"T", "Index"},
		{"Qbit", "Index"},
		{"Prod(T Qbit)", "Index"},
		{"Basis(T)", "Type"},
		{"KType(Prod(T T))", "Type"},
		{"OType(T Qbit)", "Type"},
		{"SType", "Type"},
		{"#0", "Basis(Qbit)"},
		{"PAIR(a #1)", "Basis(Prod(T Qbit))"},
		{"c", "SType"},
		{"DELTA(a b)", "SType"},
		{"ADDS(c 1 DELTA(a b))", "SType"},
		{"CONJ(c)", "SType"},
		{"KET(a)", "KType(T)"},
		{"BRA(#0)", "BType(Qbit)"},
		{"0K(T)", "KType(T)"},
		{"0O(T Qbit)", "OType(T Qbit)"},
		{"1O(T)", "OType(T T)"},
		{"ADJ(K)", "BType(T)"},
		{"ADJ(O)", "OType(T T)"},
		{"SCR(c K)", "KType(T)"},
		{"ADD(K KET(a))", "KType(T)"},
		{"TSR(K KET(#0))", "KType(Prod(T Qbit))"},
		{"DOT(B K)", "SType"},
		{"DOT(O K)", "KType(T)"},
		{"DOT(K B)", "OType(T T)"},
		{"MULK(O K)", "KType(T)"},
		{"MULB(B O)", "BType(T)"},
		{"OUTER(K B)", "OType(T T)"},
		{"MULO(O O)", "OType(T T)"},
		{"@(B K)", "SType"},
		{"@(c K)", "KType(T)"},
		{"@(K B)", "OType(T T)"},
		{"USET(T)", "Set(T)"},
		{"CATPROD(USET(T) USET(Qbit))", "Set(Prod(T Qbit))"},
		{"fun(x Basis(T) KET(x))", "Arrow(Basis(T) KType(T))"},
		{"idx(X 0K(X))", "Forall(X KType(X))"},
		{"apply(idx(X 0K(X)) T)", "KType(T)"},
		{"apply(fun(x Basis(T) KET(x)) a)", "KType(T)"},
		{"SUM(USET(T) fun(i Basis(T) KET(i)))", "KType(T)"},
		{"SSUM(i USET(T) BRA(i))", "BType(T)"},
	}

	k := dirac(t)
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got, err := k.CalcType(k.MustParse(tt.term))
			require.NoError(t, err)
			want := k.MustParse(tt.want)
			assert.Equal(t, want, got, "got %s", k.Format(got))
			assert.Zero(t, k.ContextSize())
		})
	}
}

func TestCalcTypeErrors(t *testing.T) {
	tests := []struct {
		term   string
		reason string
	}{
		{"Basis(a)", "the argument a is not an index."},
		{"KET(T)", ""},
		{"PAIR(a c)", "the types of the arguments a and c are not of type BASIS."},
		{"DELTA(a #0)", ""},
		{"ADD(K B)", ""},
		{"DOT(K K)", ""},
		{"MULK(K O)", "the arguments K and O are not of type OTYPE and KTYPE."},
		{"apply(c a)", "the type of the function c is not an arrow type or forall type."},
		{"apply(fun(x Basis(T) KET(x)) #0)", ""},
		{"fun(x Basis(T) apply(x x))", "the type of the function x is not an arrow type or forall type."},
		{"SUM(USET(Qbit) fun(i Basis(T) KET(i)))", ""},
		{"SSUM(i a KET(i))", "the second argument a is not of type SET."},
	}

	k := dirac(t)
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			_, err := k.CalcType(k.MustParse(tt.term))
			require.Error(t, err)
			require.True(t, IsTypingError(err), "unexpected error %v", err)
			if tt.reason != "" {
				var te *TypingError
				require.ErrorAs(t, err, &te)
				assert.Equal(t, tt.reason, te.Reason)
			}
			assert.Zero(t, k.ContextSize(), "context must be balanced after a typing error")
		})
	}
}

func TestTypingErrorMessage(t *testing.T) {
	k := dirac(t)
	_, err := k.CalcType(k.MustParse("apply(c a)"))
	require.Error(t, err)
	assert.EqualError(t, err,
		"Typing error: the term 'apply(c a)' is not well-typed, because the type of the function c is not an arrow type or forall type.")
}

func TestContextBalanceInNestedBinders(t *testing.T) {
	k := newKernel(t, [2]string{"T", "Type"})
	require.NoError(t, k.ContextPush("y", k.MustParse("T")))

	_, err := k.CalcType(k.MustParse("fun(x T idx(X apply(x X)))"))
	require.Error(t, err)
	assert.Equal(t, 1, k.ContextSize())

	require.NoError(t, k.ContextPop())
	assert.Zero(t, k.ContextSize())
}

func TestTypeCheck(t *testing.T) {
	k := dirac(t)

	ok, err := k.TypeCheck(k.MustParse("KET(a)"), k.MustParse("KType(T)"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = k.TypeCheck(k.MustParse("KET(a)"), k.MustParse("BType(T)"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = k.TypeCheck(k.MustParse("KET(T)"), k.MustParse("KType(T)"))
	assert.True(t, IsTypingError(err))
}

func TestIsIndexIsType(t *testing.T) {
	k := dirac(t)

	ok, err := k.IsIndex(k.MustParse("Prod(T T)"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = k.IsType(k.MustParse("Prod(T T)"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = k.IsType(k.MustParse("Arrow(Basis(T) SType)"))
	require.NoError(t, err)
	assert.True(t, ok)
}
