package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unfoldScenario = `
name: adjoint_unfold
description: "a double adjoint cancels before the definition unfolds"
setup:
  - Var(T Index)
  - Var(a Basis(T))
  - Def(k KET(a))
steps:
  - command: Normalize(ADJ(ADJ(k)))
    expect: {case: ok}
assertions:
  - {type: rules, term: ADJ(ADJ(k)), rules: [R_ADJ0, R_DELTA]}
`

func TestRunWithGolden(t *testing.T) {
	result, err := RunWithGolden(t, parse(t, unfoldScenario))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestMarshalTraceIsStable(t *testing.T) {
	first, err := Run(parse(t, unfoldScenario))
	require.NoError(t, err)
	second, err := Run(parse(t, unfoldScenario))
	require.NoError(t, err)

	a, err := MarshalTrace("x", first)
	require.NoError(t, err)
	b, err := MarshalTrace("x", second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestMarshalTraceOmitsEmptyFields(t *testing.T) {
	result := NewResult()
	result.Trace = append(result.Trace, TraceEvent{Seq: 1, Head: "Pop", Source: "Pop", OK: false, Output: "Error: The environment is empty.\n"})

	data, err := MarshalTrace("pop", result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"scenario_name":"pop","trace":[{"head":"Pop","ok":false,"output":"Error: The environment is empty.\n","seq":1,"source":"Pop"}]}`,
		string(data))
}
