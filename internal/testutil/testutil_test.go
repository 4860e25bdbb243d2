package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedSessionGenerator_ReturnsSameID(t *testing.T) {
	gen := NewFixedSessionGenerator("session-123")

	assert.Equal(t, "session-123", gen.Generate())
	assert.Equal(t, "session-123", gen.Generate())
}

func TestFixedSessionGenerator_EmptyIDDefault(t *testing.T) {
	assert.Equal(t, "test-session-default", NewFixedSessionGenerator("").Generate())
}

func TestFixedSessionGenerator_ThreadSafe(t *testing.T) {
	gen := NewFixedSessionGenerator("shared")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, "shared", gen.Generate())
			}
		}()
	}
	wg.Wait()
}

func TestNewKernelDeclaresInOrder(t *testing.T) {
	k := NewKernel(t, Basis("a", "b")...)

	assert.Equal(t, "T : Index\na : Basis(T)\nb : Basis(T)\n", k.EnvToString())

	typ, err := k.CalcType(Term(t, k, "DELTA(a b)"))
	require.NoError(t, err)
	assert.Equal(t, "SType", k.Format(typ))
}
