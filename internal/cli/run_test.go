package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucianoXu/diracoq/internal/store"
)

func TestRunScript(t *testing.T) {
	path := writeFile(t, t.TempDir(), "unfold.dirac", unfoldScript)

	out, err := execute(NewRunCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Equal(t, "KET(a)\n", out)
}

func TestRunSeveralScriptsShareOneKernel(t *testing.T) {
	dir := t.TempDir()
	decls := writeFile(t, dir, "decls.dirac", "Var(T Index) Var(a Basis(T))")
	checks := writeFile(t, dir, "checks.dirac", "Check(KET(a))")

	out, err := execute(NewRunCommand(&RootOptions{Format: "text"}), decls, checks)
	require.NoError(t, err)
	assert.Equal(t, "KET(a) : KType(T)\n", out)
}

func TestRunFromStdin(t *testing.T) {
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	cmd.SetIn(strings.NewReader("Var(T Index) Var(a Basis(T)) CheckEq(ADJ(BRA(a)) KET(a))"))

	out, err := execute(cmd)
	require.NoError(t, err)
	assert.Equal(t, "ADJ(BRA(a)) = KET(a)\n", out)
}

func TestRunFailedCommandContinues(t *testing.T) {
	path := writeFile(t, t.TempDir(), "dup.dirac", "Var(T Index) Var(T Index) Var(a Basis(T)) Check(KET(a))")

	out, err := execute(NewRunCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 command(s) failed")
	assert.Contains(t, out, "Error: The symbol 'T' is already in the environment.")
	assert.Contains(t, out, "KET(a) : KType(T)\n")
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing script", []string{filepath.Join(dir, "nope.dirac")}, "failed to read script"},
		{"parse error", []string{writeFile(t, dir, "bad.dirac", "Var(T Index")}, "failed to parse"},
		{"missing theory", []string{"--theory", filepath.Join(dir, "nope.cue"), writeFile(t, dir, "ok.dirac", "ShowAll")}, "failed to load theories"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(NewRunCommand(&RootOptions{Format: "text"}), tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRunWithTheory(t *testing.T) {
	dir := t.TempDir()
	theory := writeFile(t, dir, "kets.cue", layeredTheory)
	script := writeFile(t, dir, "check.dirac", "Check(k)")

	out, err := execute(NewRunCommand(&RootOptions{Format: "text"}), "--theory", theory, script)
	require.NoError(t, err)
	assert.Equal(t, "k : KType(T)\n", out, "theory commands print nothing")
}

func TestRunTheoryFailure(t *testing.T) {
	dir := t.TempDir()
	theory := writeFile(t, dir, "bad.cue", `theory: Bad: decls: [{var: "T", type: "Index"}, {def: "k", term: "KET(T)"}]`)
	script := writeFile(t, dir, "s.dirac", "ShowAll")

	_, err := execute(NewRunCommand(&RootOptions{Format: "text"}), "--theory", theory, script)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "command Def(k KET(T)) failed")
	assert.Contains(t, err.Error(), "Typing error")
}

func TestRunRecordsSession(t *testing.T) {
	dir := t.TempDir()
	dbPath := recordScript(t, dir, unfoldScript)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	sessions, err := st.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "unfold", sessions[0].Label)

	state, err := st.GetSessionState(ctx, sessions[0].ID)
	require.NoError(t, err)
	assert.Len(t, state.Commands, 4)
	assert.Len(t, state.Declarations, 3)
	require.Len(t, state.Derivations, 1)
	assert.Equal(t, "KET(a)", state.Derivations[0].Result)
}

func TestRunJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "unfold.dirac", unfoldScript)

	out, err := execute(NewRunCommand(&RootOptions{Format: "json"}), path)
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   RunResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 4, resp.Data.Commands)
	assert.Equal(t, 0, resp.Data.Failed)
	assert.Equal(t, "KET(a)\n", resp.Data.Output)
	assert.Empty(t, resp.Data.SessionID)
}

func TestRunJSONReportsFailures(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pop.dirac", "Pop")

	out, err := execute(NewRunCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_COMMAND_FAILED", resp.Error.Code)
}
