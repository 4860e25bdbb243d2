package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LucianoXu/diracoq/internal/ir"
)

// Scoper is notified when the traversal is about to descend into child i
// of the ordered node t. When descend is false the child is left alone and
// release is not called. Otherwise release is called on the way back up,
// on every path.
type Scoper interface {
	Enter(b *ir.Bank, t ir.Term, i int) (release func(), descend bool)
}

// Step is the outcome of one successful RewriteStep.
type Step struct {
	Term   ir.Term
	Record Record
}

// Engine rewrites terms of one bank with one rule set.
//
// An Engine is not safe for concurrent use; it shares the bank's
// single-owner discipline.
type Engine struct {
	bank         *ir.Bank
	rules        RuleSet
	maxSteps     int // 0 means unbounded
	detectCycles bool
	scoper       Scoper
	logger       *slog.Logger
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithMaxSteps bounds RewriteToNormalForm to n steps. A value of zero or
// less removes the bound.
func WithMaxSteps(n int) EngineOption {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// WithCycleDetection makes RewriteToNormalForm fail with CYCLE_DETECTED
// when a root term recurs.
func WithCycleDetection() EngineOption {
	return func(e *Engine) {
		e.detectCycles = true
	}
}

// WithScoper installs a binder hook.
func WithScoper(s Scoper) EngineOption {
	return func(e *Engine) {
		e.scoper = s
	}
}

// WithLogger sets the logger for fired rules. Defaults to slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine over bank with the given rules.
// The rule slice is copied so later edits by the caller cannot reorder it.
func New(bank *ir.Bank, rules RuleSet, opts ...EngineOption) *Engine {
	e := &Engine{
		bank:   bank,
		rules:  RuleSet{Name: rules.Name, Rules: append([]Rule(nil), rules.Rules...)},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules returns the rule set in use.
func (e *Engine) Rules() RuleSet {
	return e.rules
}

// RewriteStep performs the first applicable rewrite in pre-order.
func (e *Engine) RewriteStep(t ir.Term) (Step, bool) {
	out, rec, ok := e.step(t, ir.Position{})
	if !ok {
		return Step{}, false
	}
	rec.Initial = t
	rec.Final = out
	return Step{Term: out, Record: rec}, true
}

// step rewrites the first match inside t (t included) and returns the
// rebuilt t.
func (e *Engine) step(t ir.Term, pos ir.Position) (ir.Term, Record, bool) {
	b := e.bank
	for _, r := range e.rules.Rules {
		if out, ok := TryRuleAtRoot(b, r, t); ok {
			return out, Record{
				Rule:        r.Name,
				Position:    pos,
				Matched:     t,
				Replacement: out,
			}, true
		}
	}

	switch b.Kind(t) {
	case ir.KindOrdered:
		args := b.Args(t)
		for i, a := range args {
			out, rec, ok := e.stepChild(t, i, a, pos.Child(i))
			if ok {
				args[i] = out
				return b.Ordered(b.Head(t), args...), rec, true
			}
		}
	case ir.KindC, ir.KindAC:
		ms := b.Entries(t)
		for i, en := range ms {
			out, rec, ok := e.step(en.Term, pos.Child(i))
			if ok {
				ms.MustSubtract(en.Term, 1)
				ms.Add(out, 1)
				return b.Rebuild(t, ms), rec, true
			}
		}
	default:
		panic(fmt.Sprintf("engine: unknown kind %d", uint8(b.Kind(t))))
	}
	return ir.NoTerm, Record{}, false
}

func (e *Engine) stepChild(parent ir.Term, i int, child ir.Term, pos ir.Position) (ir.Term, Record, bool) {
	if e.scoper != nil {
		release, descend := e.scoper.Enter(e.bank, parent, i)
		if !descend {
			return ir.NoTerm, Record{}, false
		}
		defer release()
	}
	return e.step(child, pos)
}

// RewriteToNormalForm applies RewriteStep until no rule fires anywhere.
// When trace is non-nil every step is appended to it. On error no term is
// returned.
func (e *Engine) RewriteToNormalForm(ctx context.Context, t ir.Term, trace *Trace) (ir.Term, error) {
	var quota *QuotaEnforcer
	if e.maxSteps > 0 {
		quota = NewQuotaEnforcer(e.maxSteps)
	}
	var cycles *CycleDetector
	if e.detectCycles {
		cycles = NewCycleDetector()
		cycles.Visit(t)
	}

	cur := t
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return ir.NoTerm, fmt.Errorf("rewrite with %s: %w", e.rules.Name, err)
		}

		st, ok := e.RewriteStep(cur)
		if !ok {
			return cur, nil
		}

		if quota != nil {
			if err := quota.Check(); err != nil {
				e.logger.Warn("max steps quota exceeded",
					"rules", e.rules.Name,
					"steps", quota.Current(),
					"limit", quota.MaxSteps(),
				)
				return ir.NoTerm, fmt.Errorf("rewrite with %s: %w", e.rules.Name, err)
			}
		}
		if cycles != nil && cycles.Visit(st.Term) {
			return ir.NoTerm, fmt.Errorf("rewrite with %s: %w", e.rules.Name, NewCycleError(st.Record.Rule, n))
		}

		e.logger.Debug("rule fired",
			"rules", e.rules.Name,
			"rule", st.Record.Rule,
			"position", st.Record.Position.String(),
			"step", n,
		)
		if trace != nil {
			trace.Append(st.Record)
		}
		cur = st.Term
	}
}
