package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const layered = `
theory: Kets: {
	uses: ["Base"]
	decls: [{def: "k", term: "KET(a)"}]
	checks: [{normalize: "ADJ(ADJ(k))"}]
}

theory: Base: {
	decls: [
		{var: "T", type: "Index"},
		{var: "a", type: "Basis(T)"},
	]
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileOrdersTheories(t *testing.T) {
	path := writeFile(t, t.TempDir(), "layered.cue", layered)

	ths, err := Load(path)
	require.NoError(t, err)
	require.Len(t, ths, 2)
	assert.Equal(t, "Base", ths[0].Name)
	assert.Equal(t, "Kets", ths[1].Name)

	cmds, err := Program(ths)
	require.NoError(t, err)
	got := make([]string, len(cmds))
	for i, c := range cmds {
		got[i] = c.String()
	}
	assert.Equal(t, []string{
		"Var(T Index)",
		"Var(a Basis(T))",
		"Def(k KET(a))",
		"Normalize(ADJ(ADJ(k)))",
	}, got)
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.cue", "package theories\n\ntheory: Base: decls: [{var: \"T\", type: \"Index\"}]\n")
	writeFile(t, dir, "more.cue", "package theories\n\ntheory: More: {\n\tuses: [\"Base\"]\n\tdecls: [{var: \"a\", type: \"Basis(T)\"}]\n}\n")

	ths, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, ths, 2)
	assert.Equal(t, "Base", ths[0].Name)
	assert.Equal(t, "More", ths[1].Name)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing path", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.cue"))
		assert.Error(t, err)
	})

	t.Run("invalid CUE", func(t *testing.T) {
		path := writeFile(t, dir, "bad.cue", "theory: {\n")
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("unknown dependency", func(t *testing.T) {
		path := writeFile(t, dir, "unknown.cue", "theory: A: uses: [\"Missing\"]\n")
		_, err := Load(path)
		var unknown *UnknownTheoryError
		assert.ErrorAs(t, err, &unknown)
	})

	t.Run("bad term", func(t *testing.T) {
		path := writeFile(t, dir, "term.cue", "theory: A: decls: [{var: \"x\", type: \"f(\"}]\n")
		ths, err := Load(path)
		require.NoError(t, err)
		_, err = Program(ths)
		var compileErr *CompileError
		require.ErrorAs(t, err, &compileErr)
		assert.Equal(t, "theory.A.decls[0]", compileErr.Field)
	})
}
