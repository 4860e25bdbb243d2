// Package kernel is the typing kernel of the Dirac calculus.
//
// A Kernel owns a signature, a bank, an environment of global declarations
// and a context of bound variables. It computes types (CalcType), decides
// judgmental equality by normalization (IsJudgementalEq) and records
// declarations (Assum, Def). Nothing is global: each Kernel is independent.
//
// KERNEL DISCIPLINE:
//
// Every operation either succeeds or returns an error and leaves the
// environment and the context exactly as they were. Binder cases in
// CalcType push onto the context and pop with defer, so the context size is
// restored on every path.
//
// A Kernel is not safe for concurrent use.
package kernel

import (
	"log/slog"

	"github.com/benbjohnson/immutable"

	"github.com/LucianoXu/diracoq/internal/engine"
	"github.com/LucianoXu/diracoq/internal/ir"
	"github.com/LucianoXu/diracoq/internal/syntax"
)

// Kernel holds the state of one typing session.
type Kernel struct {
	sig  *ir.Signature
	bank *ir.Bank
	s    symbols

	env *immutable.List // of Binding
	ctx []Binding

	fresh    int
	maxSteps int
	logger   *slog.Logger

	core engine.RuleSet
	all  engine.RuleSet
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithLogger sets the logger for declarations and normalization.
// Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(k *Kernel) {
		k.logger = l
	}
}

// WithMaxSteps bounds every normalization the kernel runs. Zero means
// unbounded.
func WithMaxSteps(n int) Option {
	return func(k *Kernel) {
		k.maxSteps = n
	}
}

// New creates a kernel with an empty environment and context.
func New(opts ...Option) *Kernel {
	sig, s := newSignature()
	k := &Kernel{
		sig:    sig,
		bank:   ir.NewBank(),
		s:      s,
		env:    immutable.NewList(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(k)
	}
	k.core = k.coreRules()
	k.all = engine.Join("all", k.core, k.diracRules(), k.sumRules())
	return k
}

// Sig returns the kernel's signature.
func (k *Kernel) Sig() *ir.Signature {
	return k.sig
}

// Bank returns the kernel's bank.
func (k *Kernel) Bank() *ir.Bank {
	return k.bank
}

// Printer returns a printer over the kernel's signature and bank.
func (k *Kernel) Printer() ir.Printer {
	return ir.Printer{Sig: k.sig, Bank: k.bank}
}

// Format renders t.
func (k *Kernel) Format(t ir.Term) string {
	return k.Printer().Format(t)
}

// Register returns the symbol id for name.
func (k *Kernel) Register(name string) int {
	return k.sig.Register(name)
}

// FromAST builds the term for a parsed expression.
func (k *Kernel) FromAST(a syntax.AST) ir.Term {
	return syntax.ToTerm(k.sig, k.bank, a)
}

// Parse reads one term in prefix syntax.
func (k *Kernel) Parse(src string) (ir.Term, error) {
	a, err := syntax.Parse(src)
	if err != nil {
		return ir.NoTerm, err
	}
	return k.FromAST(a), nil
}

// MustParse is Parse for sources known to be well formed.
func (k *Kernel) MustParse(src string) ir.Term {
	t, err := k.Parse(src)
	if err != nil {
		panic(err)
	}
	return t
}

// CoreRules returns the rules used for reduction without the Dirac algebra.
func (k *Kernel) CoreRules() engine.RuleSet {
	return k.core
}

// AllRules returns the full rule set used by judgmental equality.
func (k *Kernel) AllRules() engine.RuleSet {
	return k.all
}

// Snapshot captures the environment.
type Snapshot struct {
	env *immutable.List
}

// Snapshot returns the current environment. Restoring it later undoes any
// declaration made in between in constant time.
func (k *Kernel) Snapshot() Snapshot {
	return Snapshot{env: k.env}
}

// Restore resets the environment to s and empties the context.
func (k *Kernel) Restore(s Snapshot) {
	k.env = s.env
	k.ctx = nil
}
