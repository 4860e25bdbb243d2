package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, content string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(content))
	require.NoError(t, err)
	return s
}

func TestRunScenarios(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero is dropped from a scalar sum", `
name: adds_zero
description: "ADDS(0 x y) reduces to ADDS(x y)"
assertions:
  - {type: normal_form, term: ADDS(0 x y), expect: ADDS(x y)}
`},
		{"multiplication distributes over addition", `
name: muls_distributes
description: "MULS(a ADDS(b c)) distributes"
assertions:
  - {type: normal_form, term: MULS(a ADDS(b c)), expect: ADDS(MULS(a b) MULS(a c))}
`},
		{"conjugation", `
name: conj
description: "CONJ is an involution and vanishing products drop out"
assertions:
  - {type: normal_form, term: CONJ(CONJ(a)), expect: a}
  - {type: normal_form, term: CONJ(ADDS(a MULS(b 0))), expect: CONJ(a)}
`},
		{"delta symmetry", validScenario},
		{"sum swap", `
name: sum_swap
description: "nested sums over independent domains commute"
setup:
  - Var(T Index)
  - Var(M Index)
steps:
  - command: CheckEq(SSUM(i USET(T) SSUM(j USET(M) 1)) SSUM(j USET(M) SSUM(i USET(T) 1)))
    expect: {case: ok}
assertions:
  - type: equal
    left: SSUM(i USET(T) SSUM(j USET(M) 1))
    right: SSUM(j USET(M) SSUM(i USET(T) 1))
`},
		{"typing", `
name: typing
description: "kets and scalars are typed"
setup:
  - Var(T Index)
  - Var(a Basis(T))
assertions:
  - {type: type, term: KET(a), expect: KType(T)}
  - {type: type, term: DELTA(a a), expect: SType}
  - {type: not_equal, left: KET(a), right: ADJ(KET(a))}
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Run(parse(t, tt.content))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRunRecordsTrace(t *testing.T) {
	result, err := Run(parse(t, `
name: unfold
description: "definitions unfold during normalization"
setup:
  - Var(T Index)
  - Var(a Basis(T))
  - Def(k KET(a))
steps:
  - command: Normalize(ADJ(ADJ(k)))
    expect: {case: ok, output: "KET(a)\n"}
  - command: Var(T Index)
    expect: {case: error}
assertions:
  - {type: rules, term: ADJ(ADJ(k)), rules: [R_ADJ0, R_DELTA]}
  - {type: error, command: Var(T  Index), contains: already in the environment}
  - {type: output_contains, contains: KET(a)}
`))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Trace, 5)
	assert.Equal(t, int64(4), result.Trace[3].Seq)
	assert.Equal(t, []string{"R_ADJ0", "R_DELTA"}, result.Trace[3].Rules)
	assert.False(t, result.Trace[4].OK)
	assert.Nil(t, result.Trace[0].Rules)
}

func TestRunReportsFailedExpectations(t *testing.T) {
	result, err := Run(parse(t, `
name: wrong
description: "every expectation here is wrong"
setup:
  - Var(T Index)
  - Var(a Basis(T))
  - Var(b Basis(T))
steps:
  - command: CheckEq(KET(a) KET(b))
    expect: {case: ok}
  - command: Check(KET(a))
    expect: {case: ok, output: "KET(a) : BType(T)\n"}
assertions:
  - {type: equal, left: KET(a), right: KET(b)}
  - {type: normal_form, term: ADJ(ADJ(KET(a))), expect: KET(b)}
  - {type: type, term: BRA(a), expect: KType(T)}
  - {type: rules, term: KET(a)}
  - {type: output_contains, contains: never printed}
  - {type: error, contains: no such failure}
`))
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 8)
	assert.Contains(t, result.Errors[0], "steps[0]")
	assert.Contains(t, result.Errors[1], `expected output "KET(a) : BType(T)\n"`)
}

func TestRunIllTypedAssertion(t *testing.T) {
	result, err := Run(parse(t, `
name: ill_typed
description: "ill-typed terms fail assertions"
setup:
  - Var(T Index)
assertions:
  - {type: equal, left: KET(T), right: KET(T)}
`))
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Typing error")
}

func TestRunSetupFailure(t *testing.T) {
	_, err := Run(parse(t, `
name: bad_setup
description: "setup must succeed"
setup:
  - Var(T Index)
  - Var(T Index)
assertions:
  - {type: output_contains, contains: x}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup[1]")
	assert.Contains(t, err.Error(), "already in the environment")
}

func TestRunStepParseError(t *testing.T) {
	_, err := Run(parse(t, `
name: bad_step
description: "steps must parse"
steps:
  - command: Check(a
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps[0]")
}

func TestRunLoadsTheories(t *testing.T) {
	dir := t.TempDir()
	theory := filepath.Join(dir, "base.cue")
	require.NoError(t, os.WriteFile(theory, []byte(`
theory: Base: decls: [
	{var: "T", type: "Index"},
	{var: "a", type: "Basis(T)"},
	{def: "k", term: "KET(a)"},
]
`), 0o644))

	s := parse(t, `
name: with_theory
description: "theory declarations are visible"
assertions:
  - {type: normal_form, term: ADJ(ADJ(k)), expect: KET(a)}
  - {type: type, term: k, expect: KType(T)}
`)
	s.Theories = []string{theory}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 3)
	assert.Equal(t, "Def(k KET(a))", result.Trace[2].Source)
}

func TestRunAtomicScenario(t *testing.T) {
	result, err := Run(parse(t, `
name: atomic
description: "atomic groups roll back"
atomic: true
steps:
  - command: Group(Var(T Index) Var(T Index))
    expect: {case: error}
assertions:
  - {type: error, command: Group(Var(T Index) Var(T Index)), contains: rolled back}
`))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 3)
	assert.Equal(t, 1, result.Trace[1].Depth)
}
