package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	theory := writeFile(t, t.TempDir(), "base.cue", baseTheory)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"all rules", []string{"--theory", theory, "ADJ(ADJ(KET(a)))"}, "KET(a)\n"},
		{"core rules keep the Dirac algebra", []string{"--theory", theory, "--rules", "core", "ADJ(ADJ(KET(a)))"}, "ADJ(ADJ(KET(a)))\n"},
		{"scalars without a theory", []string{"MULS(x 0)"}, "0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(NewNormalizeCommand(&RootOptions{Format: "text"}), tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestNormalizeTrace(t *testing.T) {
	theory := writeFile(t, t.TempDir(), "base.cue", baseTheory)

	out, err := execute(NewNormalizeCommand(&RootOptions{Format: "text"}), "--theory", theory, "--trace", "ADJ(ADJ(KET(a)))")
	require.NoError(t, err)
	assert.Contains(t, out, "[Step]\t\tR_ADJ0\n")
	assert.Contains(t, out, "[Initial Term]\tADJ(ADJ(KET(a)))\n")
	assert.True(t, strings.HasSuffix(out, "Normal form: KET(a)\n"), "got %q", out)
}

func TestNormalizeJSON(t *testing.T) {
	theory := writeFile(t, t.TempDir(), "base.cue", baseTheory)

	out, err := execute(NewNormalizeCommand(&RootOptions{Format: "json"}), "--theory", theory, "--trace", "ADJ(ADJ(KET(a)))")
	require.NoError(t, err)

	var resp struct {
		Status string          `json:"status"`
		Data   NormalizeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ADJ(ADJ(KET(a)))", resp.Data.Input)
	assert.Equal(t, "KType(T)", resp.Data.Type)
	assert.Equal(t, "KET(a)", resp.Data.NormalForm)
	assert.Contains(t, resp.Data.Rules, "R_ADJ0")
}

func TestNormalizeErrors(t *testing.T) {
	theory := writeFile(t, t.TempDir(), "base.cue", baseTheory)

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"unknown rule set", []string{"--rules", "some", "a"}, ErrCodeInvalidRules},
		{"parse error", []string{"KET(a"}, ErrCodeInvalidTerm},
		{"ill-typed term", []string{"--theory", theory, "KET(T)"}, ErrCodeInvalidTerm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(NewNormalizeCommand(&RootOptions{Format: "text"}), tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, "Error ["+tt.code+"]")
		})
	}
}
