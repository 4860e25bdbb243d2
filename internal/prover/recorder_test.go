package prover

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRecorder struct {
	commands     []CommandRecord
	declarations []DeclarationRecord
	derivations  []DerivationRecord
	err          error
}

func (m *memRecorder) RecordCommand(_ context.Context, c CommandRecord) error {
	m.commands = append(m.commands, c)
	return m.err
}

func (m *memRecorder) RecordDeclaration(_ context.Context, d DeclarationRecord) error {
	m.declarations = append(m.declarations, d)
	return m.err
}

func (m *memRecorder) RecordDerivation(_ context.Context, d DerivationRecord) error {
	m.derivations = append(m.derivations, d)
	return m.err
}

func TestRecorderReceivesSession(t *testing.T) {
	rec := &memRecorder{}
	_, _, ok := run(t, `
Var(T Index)
Var(a Basis(T))
Def(k KET(a))
Normalize(ADJ(ADJ(k)))
Pop
`, WithRecorder(rec))
	require.True(t, ok)

	require.Len(t, rec.commands, 5)
	for i, c := range rec.commands {
		assert.Equal(t, int64(i+1), c.Seq)
		assert.True(t, c.OK)
	}
	assert.Equal(t, "Normalize", rec.commands[3].Head)
	assert.Equal(t, "Normalize(ADJ(ADJ(k)))", rec.commands[3].Source)
	assert.Equal(t, "KET(a)\n", rec.commands[3].Output)

	require.Len(t, rec.declarations, 3)
	assert.Equal(t, DeclarationRecord{Seq: 1, Symbol: "T", Type: "Index"}, rec.declarations[0])
	assert.False(t, rec.declarations[1].IsDef())
	assert.Equal(t, DeclarationRecord{Seq: 3, Symbol: "k", Type: "KType(T)", Value: "KET(a)"}, rec.declarations[2])
	assert.True(t, rec.declarations[2].IsDef())

	require.Len(t, rec.derivations, 1)
	d := rec.derivations[0]
	assert.Equal(t, int64(4), d.Seq)
	assert.Equal(t, "ADJ(ADJ(k))", d.Input)
	assert.Equal(t, "KET(a)", d.Result)
	assert.Len(t, d.Digest, 64)
	require.Len(t, d.Steps, 2)
	assert.Equal(t, StepRecord{
		Rule:        "R_ADJ0",
		Position:    "()",
		Initial:     "ADJ(ADJ(k))",
		Matched:     "ADJ(ADJ(k))",
		Replacement: "k",
		Final:       "k",
	}, d.Steps[0])
	assert.Equal(t, "R_DELTA", d.Steps[1].Rule)
}

func TestDerivationDigestIgnoresSession(t *testing.T) {
	src := "Var(T Index) Var(a Basis(T)) Normalize(ADJ(BRA(a)))"
	first, second := &memRecorder{}, &memRecorder{}

	run(t, src, WithRecorder(first))
	run(t, "Var(M Index) "+src, WithRecorder(second))

	require.Len(t, first.derivations, 1)
	require.Len(t, second.derivations, 1)
	assert.Equal(t, first.derivations[0].Digest, second.derivations[0].Digest)
	assert.NotEqual(t, first.derivations[0].Seq, second.derivations[0].Seq)
}

func TestRecorderErrorsDoNotFailCommands(t *testing.T) {
	rec := &memRecorder{err: errors.New("disk full")}
	_, out, ok := run(t, "Var(T Index) Check(T)", WithRecorder(rec))

	assert.True(t, ok)
	assert.Equal(t, "T : Index\n", out)
	assert.Len(t, rec.commands, 2)
}
