package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const addsZeroScenario = `
name: adds_zero
description: "zero is the unit of scalar addition"
setup:
  - Var(x SType)
steps:
  - command: Normalize(ADDS(x 0))
    expect: {case: ok}
assertions:
  - {type: equal, left: ADDS(x 0), right: x}
`

const wrongTypeScenario = `
name: wrong_type
description: "a ket is not a bra"
setup:
  - Var(T Index)
  - Var(a Basis(T))
assertions:
  - {type: type, term: KET(a), expect: BType(T)}
`

func newTestCmd(format string) *cobra.Command {
	return NewTestCommand(&RootOptions{Format: format})
}

func TestTestCommandPasses(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "adds_zero.yaml", addsZeroScenario)

	out, err := execute(newTestCmd("text"), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ adds_zero\n")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total\n")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommandFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "adds_zero.yaml", addsZeroScenario)
	writeFile(t, dir, "wrong_type.yaml", wrongTypeScenario)

	out, err := execute(newTestCmd("text"), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✓ adds_zero\n")
	assert.Contains(t, out, "✗ wrong_type\n")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total\n")
}

func TestTestCommandFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "adds_zero.yaml", addsZeroScenario)
	writeFile(t, dir, "wrong_type.yaml", wrongTypeScenario)

	out, err := execute(newTestCmd("text"), dir, "--filter", "adds*")
	require.NoError(t, err)
	assert.NotContains(t, out, "wrong_type")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total\n")

	out, err = execute(newTestCmd("text"), dir, "--filter", "nothing*")
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", out)

	_, err = execute(newTestCmd("text"), dir, "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandGolden(t *testing.T) {
	dir := t.TempDir()
	scenario := writeFile(t, dir, "adds_zero.yaml", addsZeroScenario)
	golden := goldenFilePath(scenario)
	assert.Equal(t, filepath.Join(dir, "golden", "adds_zero.golden"), golden)

	_, err := execute(newTestCmd("text"), dir, "--update")
	require.NoError(t, err)
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Normalize(ADDS(x 0))")

	out, err := execute(newTestCmd("text"), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ adds_zero\n")

	require.NoError(t, os.WriteFile(golden, []byte("{}\n"), 0644))
	out, err = execute(newTestCmd("text"), dir)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file (run with --update to regenerate)")
}

func TestTestCommandJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "adds_zero.yaml", addsZeroScenario)
	writeFile(t, dir, "wrong_type.yaml", wrongTypeScenario)

	out, err := execute(newTestCmd("json"), dir)
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Passed)
	require.Len(t, resp.Data.Scenarios, 2)
	assert.Equal(t, "adds_zero", resp.Data.Scenarios[0].Name)
	assert.True(t, resp.Data.Scenarios[0].Pass)
	assert.NotEmpty(t, resp.Data.Scenarios[1].Errors)
}

func TestTestCommandErrors(t *testing.T) {
	_, err := execute(newTestCmd("text"), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err := execute(newTestCmd("text"), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", out)

	out, err = execute(newTestCmd("json"), t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, `"total": 0`)
}
