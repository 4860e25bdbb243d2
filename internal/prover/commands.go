package prover

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/LucianoXu/diracoq/internal/canon"
	"github.com/LucianoXu/diracoq/internal/engine"
	"github.com/LucianoXu/diracoq/internal/ir"
	"github.com/LucianoXu/diracoq/internal/kernel"
	"github.com/LucianoXu/diracoq/internal/syntax"
)

// errRejected marks a command that ran and printed its own verdict, such
// as a failed Check(t T). Process reports failure without an error line.
var errRejected = errors.New("rejected")

// commandError is a malformed command. It prints with the offending
// command so the user can find it in a longer script.
type commandError struct {
	Message string
	Command syntax.AST
}

func (e *commandError) Error() string {
	return e.Message + "\nIn the command: " + e.Command.String()
}

func invalid(msg string, cmd syntax.AST) error {
	return &commandError{Message: msg, Command: cmd}
}

// IsCommandError reports whether err is a malformed command.
func IsCommandError(err error) bool {
	var ce *commandError
	return errors.As(err, &ce)
}

func identifier(a syntax.AST, cmd syntax.AST) (string, error) {
	if !a.IsLeaf() {
		return "", invalid(fmt.Sprintf("the symbol %s is not an identifier.", a), cmd)
	}
	return a.Head, nil
}

var normalMode = kernel.Mode{All: true, Canonical: true}

func (p *Prover) def(ctx context.Context, seq int64, cmd syntax.AST) error {
	name, err := identifier(cmd.Children[0], cmd)
	if err != nil {
		return err
	}
	term := p.k.FromAST(cmd.Children[1])
	var typ *ir.Term
	if len(cmd.Children) == 3 {
		t := p.k.FromAST(cmd.Children[2])
		typ = &t
	}
	if err := p.k.Def(name, term, typ); err != nil {
		return err
	}
	p.recordDeclaration(ctx, seq, name)
	return nil
}

func (p *Prover) assum(ctx context.Context, seq int64, cmd syntax.AST) error {
	name, err := identifier(cmd.Children[0], cmd)
	if err != nil {
		return err
	}
	if err := p.k.Assum(name, p.k.FromAST(cmd.Children[1])); err != nil {
		return err
	}
	p.recordDeclaration(ctx, seq, name)
	return nil
}

func (p *Prover) recordDeclaration(ctx context.Context, seq int64, name string) {
	dec, ok := p.k.FindInEnv(p.k.Register(name))
	if !ok {
		return
	}
	rec := DeclarationRecord{
		Seq:    seq,
		Symbol: name,
		Type:   p.k.Format(dec.Type),
	}
	if dec.IsDef() {
		rec.Value = p.k.Format(dec.Value)
	}
	p.record(ctx, "declaration", func(r Recorder) error {
		return r.RecordDeclaration(ctx, rec)
	})
}

func (p *Prover) check(w io.Writer, a syntax.AST) error {
	t := p.k.FromAST(a)
	typ, err := p.k.CalcType(t)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s : %s\n", p.k.Format(t), p.k.Format(typ))
	return nil
}

func (p *Prover) checkAgainst(w io.Writer, a, b syntax.AST) error {
	t := p.k.FromAST(a)
	typ := p.k.FromAST(b)
	ok, err := p.k.TypeCheck(t, typ)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(w, "The term %s is not well-typed with the type %s\n", p.k.Format(t), p.k.Format(typ))
		return errRejected
	}
	fmt.Fprintf(w, "%s : %s\n", p.k.Format(t), p.k.Format(typ))
	return nil
}

func (p *Prover) show(w io.Writer, cmd syntax.AST) error {
	name, err := identifier(cmd.Children[0], cmd)
	if err != nil {
		return err
	}
	sym := p.k.Register(name)
	dec, ok := p.k.FindDec(sym)
	if !ok {
		return fmt.Errorf("the symbol '%s' is not declared.", name)
	}
	fmt.Fprintln(w, p.k.DeclarationToString(sym, dec))
	return nil
}

// reduce typechecks t and normalizes it with every rule and canonical
// ordering, recording the derivation.
func (p *Prover) reduce(ctx context.Context, seq int64, t ir.Term) (ir.Term, canon.Instruction, *engine.Trace, error) {
	if _, err := p.k.CalcType(t); err != nil {
		return ir.NoTerm, canon.Instruction{}, nil, err
	}
	tr := &engine.Trace{}
	nf, instr, err := p.k.Normalize(ctx, t, normalMode, tr)
	if err != nil {
		return ir.NoTerm, canon.Instruction{}, nil, err
	}
	if p.recorder != nil {
		d, err := newDerivation(p.k.Printer(), seq, t, nf, tr)
		if err != nil {
			p.logger.Warn("failed to digest derivation", "seq", seq, "error", err)
		} else {
			p.record(ctx, "derivation", func(r Recorder) error {
				return r.RecordDerivation(ctx, d)
			})
		}
	}
	return nf, instr, tr, nil
}

func (p *Prover) printInstruction(w io.Writer, label string, instr canon.Instruction) {
	if instr.IsIdentity() {
		return
	}
	fmt.Fprintf(w, "Canonical reordering%s:\n%s\n", label, instr.Format(p.k.Sig()))
}

func (p *Prover) normalize(ctx context.Context, w io.Writer, seq int64, a syntax.AST) error {
	nf, instr, _, err := p.reduce(ctx, seq, p.k.FromAST(a))
	if err != nil {
		return err
	}
	fmt.Fprintln(w, p.k.Format(nf))
	p.printInstruction(w, "", instr)
	return nil
}

func (p *Prover) trace(ctx context.Context, w io.Writer, seq int64, a syntax.AST) error {
	nf, _, tr, err := p.reduce(ctx, seq, p.k.FromAST(a))
	if err != nil {
		return err
	}
	if tr.Len() > 0 {
		fmt.Fprintln(w, engine.FormatTrace(p.k.Printer(), tr))
	}
	fmt.Fprintf(w, "Normal form: %s\n", p.k.Format(nf))
	return nil
}

func (p *Prover) checkEq(ctx context.Context, w io.Writer, a, b syntax.AST) error {
	x := p.k.FromAST(a)
	y := p.k.FromAST(b)
	for i, t := range []ir.Term{x, y} {
		if _, err := p.k.CalcType(t); err != nil {
			return err
		}
		_, instr, err := p.k.Normalize(ctx, t, normalMode, nil)
		if err != nil {
			return err
		}
		p.printInstruction(w, []string{" (left)", " (right)"}[i], instr)
	}
	eq, err := p.k.IsJudgementalEq(x, y)
	if err != nil {
		return err
	}
	if !eq {
		fmt.Fprintf(w, "The terms %s and %s are not judgementally equal.\n", p.k.Format(x), p.k.Format(y))
		return errRejected
	}
	fmt.Fprintf(w, "%s = %s\n", p.k.Format(x), p.k.Format(y))
	return nil
}
