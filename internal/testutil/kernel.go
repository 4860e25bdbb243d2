package testutil

import (
	"testing"

	"github.com/LucianoXu/diracoq/internal/ir"
	"github.com/LucianoXu/diracoq/internal/kernel"
)

// Decl is an assumption: a symbol and its type in prefix syntax.
type Decl struct {
	Name string
	Type string
}

// NewKernel returns a kernel with decls assumed in order. Any failure
// stops the test.
func NewKernel(t testing.TB, decls ...Decl) *kernel.Kernel {
	t.Helper()
	k := kernel.New()
	for _, d := range decls {
		typ, err := k.Parse(d.Type)
		if err != nil {
			t.Fatalf("parse type of %s: %v", d.Name, err)
		}
		if err := k.Assum(d.Name, typ); err != nil {
			t.Fatalf("assume %s: %v", d.Name, err)
		}
	}
	return k
}

// Term parses src in k, stopping the test on a syntax error.
func Term(t testing.TB, k *kernel.Kernel, src string) ir.Term {
	t.Helper()
	term, err := k.Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return term
}

// Basis is the declaration list T : Index followed by each name as a
// Basis(T).
func Basis(names ...string) []Decl {
	decls := []Decl{{Name: "T", Type: "Index"}}
	for _, n := range names {
		decls = append(decls, Decl{Name: n, Type: "Basis(T)"})
	}
	return decls
}
