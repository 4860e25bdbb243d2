package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const baseTheory = `
theory: Base: {
	description: "one index with a basis element"
	decls: [
		{var: "T", type: "Index"},
		{var: "a", type: "Basis(T)"},
		{var: "b", type: "Basis(T)"},
	]
}
`

const layeredTheory = `
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

const unfoldScript = `Var(T Index)
Var(a Basis(T))
Def(k KET(a))
Normalize(ADJ(ADJ(k)))
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs cmd with args and returns what it wrote to stdout. Logs
// go to a separate buffer.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// recordScript runs script through the run command into a database and
// returns the database path.
func recordScript(t *testing.T, dir, script string) string {
	t.Helper()
	dbPath := filepath.Join(dir, "diracoq.db")
	scriptPath := writeFile(t, dir, "script.dirac", script)
	_, err := execute(NewRunCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--label", "unfold", scriptPath)
	require.NoError(t, err)
	return dbPath
}
