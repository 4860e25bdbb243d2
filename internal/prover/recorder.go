package prover

import (
	"context"

	"github.com/samber/lo"

	"github.com/LucianoXu/diracoq/internal/engine"
	"github.com/LucianoXu/diracoq/internal/ir"
)

// Recorder receives the effects of processed commands.
//
// Recording is best effort: the prover logs a recorder error and carries
// on, since the kernel state is already updated by then.
type Recorder interface {
	RecordCommand(ctx context.Context, c CommandRecord) error
	RecordDeclaration(ctx context.Context, d DeclarationRecord) error
	RecordDerivation(ctx context.Context, d DerivationRecord) error
}

// CommandRecord is one processed command and what it printed. Depth is
// zero for commands given to the prover directly and one more than the
// enclosing Group's depth otherwise.
type CommandRecord struct {
	Seq    int64
	Depth  int
	Head   string
	Source string
	OK     bool
	Output string
}

// DeclarationRecord is a symbol added to the environment by Def or Var.
// Value is empty for assumptions.
type DeclarationRecord struct {
	Seq    int64
	Symbol string
	Type   string
	Value  string
}

// IsDef reports whether the declaration is a definition.
func (d DeclarationRecord) IsDef() bool {
	return d.Value != ""
}

// DerivationRecord is a normalization run by Normalize or Trace.
type DerivationRecord struct {
	Seq    int64
	Input  string
	Result string
	Digest string
	Steps  []StepRecord
}

// StepRecord is an engine.Record rendered to text.
type StepRecord struct {
	Rule        string
	Position    string
	Initial     string
	Matched     string
	Replacement string
	Final       string
}

func formatOptional(p ir.Printer, t ir.Term) string {
	if !t.Valid() {
		return ""
	}
	return p.Format(t)
}

// newDerivation renders a normalization of input to result. The digest
// covers the input, the result and the rule sequence, so two sessions that
// derive the same thing the same way share it.
func newDerivation(p ir.Printer, seq int64, input, result ir.Term, tr *engine.Trace) (DerivationRecord, error) {
	steps := lo.Map(tr.Records, func(r engine.Record, _ int) StepRecord {
		return StepRecord{
			Rule:        r.Rule,
			Position:    r.Position.String(),
			Initial:     p.Format(r.Initial),
			Matched:     formatOptional(p, r.Matched),
			Replacement: formatOptional(p, r.Replacement),
			Final:       p.Format(r.Final),
		}
	})
	digest, err := ir.Digest(ir.DomainDerivation, map[string]any{
		"input":  p.Export(input),
		"result": p.Export(result),
		"rules":  tr.Rules(),
	})
	if err != nil {
		return DerivationRecord{}, err
	}
	return DerivationRecord{
		Seq:    seq,
		Input:  p.Format(input),
		Result: p.Format(result),
		Digest: digest,
		Steps:  steps,
	}, nil
}
