package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclarationErrors(t *testing.T) {
	tests := []struct {
		name    string
		run     func(k *Kernel) error
		code    DeclarationErrorCode
		message string
	}{
		{
			name:    "assum reserved",
			run:     func(k *Kernel) error { return k.Assum("Type", k.MustParse("Index")) },
			code:    ErrCodeReservedSymbol,
			message: "The symbol 'Type' is reserved.",
		},
		{
			name:    "def reserved",
			run:     func(k *Kernel) error { return k.Def("KET", k.MustParse("#0"), nil) },
			code:    ErrCodeReservedSymbol,
			message: "The symbol 'KET' is reserved.",
		},
		{
			name:    "assum twice",
			run:     func(k *Kernel) error { return k.Assum("T", k.MustParse("Index")) },
			code:    ErrCodeAlreadyDeclared,
			message: "The symbol 'T' is already in the environment.",
		},
		{
			name:    "assum non-type",
			run:     func(k *Kernel) error { return k.Assum("x", k.MustParse("KET(#0)")) },
			code:    ErrCodeInvalidType,
			message: "The type of the symbol 'x' is not a well-typed type.",
		},
		{
			name: "def inside binder",
			run: func(k *Kernel) error {
				if err := k.ContextPush("i", k.MustParse("Index")); err != nil {
					return err
				}
				return k.Def("d", k.MustParse("#0"), nil)
			},
			code:    ErrCodeContextNotEmpty,
			message: "The context is not empty.",
		},
		{
			name: "def with wrong type",
			run: func(k *Kernel) error {
				typ := k.MustParse("Basis(T)")
				return k.Def("d", k.MustParse("#0"), &typ)
			},
			code:    ErrCodeInvalidType,
			message: "The term '#0' is not well-typed with the type 'Basis(T)'.",
		},
		{
			name:    "context push non-type",
			run:     func(k *Kernel) error { return k.ContextPush("i", k.MustParse("#0")) },
			code:    ErrCodeInvalidBinderType,
			message: "The term '#0' is not a valid type for bound index.",
		},
		{
			name:    "context pop empty",
			run:     func(k *Kernel) error { return k.ContextPop() },
			code:    ErrCodeEmptyContext,
			message: "The context is empty.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := newKernel(t, [2]string{"T", "Index"})
			envBefore := k.EnvToString()

			err := tt.run(k)
			require.Error(t, err)
			assert.True(t, IsDeclarationError(err, tt.code), "got %v", err)
			assert.True(t, IsDeclarationError(err, ""))
			assert.EqualError(t, err, tt.message)
			assert.Equal(t, envBefore, k.EnvToString())
		})
	}
}

func TestAssumWrapsTypingError(t *testing.T) {
	k := newKernel(t, [2]string{"T", "Index"})

	err := k.Assum("x", k.MustParse("KType(#0)"))
	require.Error(t, err)
	assert.True(t, IsTypingError(err))
	assert.False(t, IsDeclarationError(err, ""))
	assert.Contains(t, err.Error(), "assum x: Typing error:")
}

func TestDefRecordsType(t *testing.T) {
	k := newKernel(t, [2]string{"T", "Index"})

	require.NoError(t, k.Def("k0", k.MustParse("KET(#0)"), nil))
	dec, ok := k.FindInEnv(k.Register("k0"))
	require.True(t, ok)
	assert.Equal(t, k.MustParse("KType(Qbit)"), dec.Type)

	typ := k.MustParse("Basis(Qbit)")
	require.NoError(t, k.Def("zero", k.MustParse("#0"), &typ))
	dec, ok = k.FindInEnv(k.Register("zero"))
	require.True(t, ok)
	assert.Equal(t, typ, dec.Type)
	assert.Equal(t, k.MustParse("#0"), dec.Value)
}

func TestDefAcceptsIndexValue(t *testing.T) {
	k := newKernel(t, [2]string{"T", "Index"})

	require.NoError(t, k.Def("TT", k.MustParse("Prod(T T)"), nil))
	ok, err := k.IsIndex(k.MustParse("TT"))
	require.NoError(t, err)
	assert.True(t, ok)

	eq, err := k.IsJudgementalEq(k.MustParse("Basis(TT)"), k.MustParse("Basis(Prod(T T))"))
	require.NoError(t, err)
	assert.True(t, eq)
}
