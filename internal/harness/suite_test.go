package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindScenarios(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	writeScenario(t, dir, "b.yaml", validScenario)
	writeScenario(t, dir, "a.yml", validScenario)
	writeScenario(t, filepath.Join(dir, "nested"), "c.yaml", validScenario)
	writeScenario(t, dir, "notes.txt", "ignored")

	files, err := FindScenarios(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "nested", "c.yaml"),
	}, files)
}

func TestFindScenariosMissingDir(t *testing.T) {
	_, err := FindScenarios(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestRunSuite(t *testing.T) {
	dir := t.TempDir()
	good := writeScenario(t, dir, "good.yaml", validScenario)
	bad := writeScenario(t, dir, "bad.yaml", `
name: bad
description: "KET(a) is not a bra"
setup:
  - Var(T Index)
  - Var(a Basis(T))
assertions:
  - {type: type, term: KET(a), expect: BType(T)}
`)
	broken := writeScenario(t, dir, "broken.yaml", "name: broken\n")

	suite := RunSuite([]string{good, bad, broken}, "")
	assert.Equal(t, 3, suite.Total)
	assert.Equal(t, 1, suite.Passed)
	assert.Equal(t, 2, suite.Failed)
	require.Len(t, suite.Failures, 2)
	assert.Equal(t, "bad", suite.Failures[0].Name)
	assert.Equal(t, broken, suite.Failures[1].Path)
	assert.Len(t, suite.Results, 2)

	filtered := RunSuite([]string{good, bad}, "delta_symmetry")
	assert.Equal(t, 1, filtered.Total)
	assert.Equal(t, 1, filtered.Passed)
}
