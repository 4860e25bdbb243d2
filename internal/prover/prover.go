// Package prover interprets commands against a typing kernel.
//
// A command is a prefix expression such as Def(x KET(#0)) or CheckEq(a b).
// Process runs one command, writes what it prints to the configured
// writer and reports whether it succeeded. The prover is the only place
// kernel errors are caught: a failed command prints "Error: <message>",
// leaves the kernel unchanged and processing continues with the next one.
//
// Commands:
//
//	Group(c1 c2 ...)   run each command in order
//	Def(x t)           define x as t with its computed type
//	Def(x t T)         define x as t, checked against T
//	Var(x T)           assume x of type T
//	Check(t)           print the type of t
//	Check(t T)         check t against T
//	Show(x)            print the declaration of x
//	ShowAll            print the environment and the context
//	Normalize(t)       print the canonical normal form of t
//	Trace(t)           print every rewriting step of the normalization
//	CheckEq(a b)       decide judgmental equality
//	Pop                remove the latest declaration
package prover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/LucianoXu/diracoq/internal/kernel"
	"github.com/LucianoXu/diracoq/internal/syntax"
)

// Prover processes commands for one session.
type Prover struct {
	k        *kernel.Kernel
	out      io.Writer
	clock    *Clock
	logger   *slog.Logger
	recorder Recorder
	atomic   bool
	depth    int
}

// Option configures a Prover.
type Option func(*Prover)

// WithKernel sets the kernel commands run against. Defaults to a fresh
// kernel.New().
func WithKernel(k *kernel.Kernel) Option {
	return func(p *Prover) {
		p.k = k
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Prover) {
		p.logger = l
	}
}

// WithRecorder sends every processed command, declaration and derivation
// to r.
func WithRecorder(r Recorder) Option {
	return func(p *Prover) {
		p.recorder = r
	}
}

// WithClock sets the clock that stamps commands.
func WithClock(c *Clock) Option {
	return func(p *Prover) {
		p.clock = c
	}
}

// WithAtomic makes Group all-or-nothing: when any command in a group
// fails, the environment is restored to its state before the group.
func WithAtomic(atomic bool) Option {
	return func(p *Prover) {
		p.atomic = atomic
	}
}

// New creates a prover that prints to out.
func New(out io.Writer, opts ...Option) *Prover {
	p := &Prover{
		out:    out,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.k == nil {
		p.k = kernel.New(kernel.WithLogger(p.logger))
	}
	if p.clock == nil {
		p.clock = NewClock()
	}
	return p
}

// Kernel returns the kernel the prover runs against.
func (p *Prover) Kernel() *kernel.Kernel {
	return p.k
}

// Seq returns the sequence number of the last processed command.
func (p *Prover) Seq() int64 {
	return p.clock.Current()
}

// ProcessSource parses src as a sequence of commands and processes each.
// It reports whether every command succeeded. A parse error is printed
// and nothing is run.
func (p *Prover) ProcessSource(ctx context.Context, src string) bool {
	cmds, err := syntax.ParseAll(src)
	if err != nil {
		fmt.Fprintf(p.out, "Error: %v\n", err)
		return false
	}
	ok := true
	for _, cmd := range cmds {
		if !p.Process(ctx, cmd) {
			ok = false
		}
	}
	return ok
}

// Process runs one command and reports whether it succeeded.
func (p *Prover) Process(ctx context.Context, cmd syntax.AST) bool {
	seq := p.clock.Next()
	depth := p.depth

	var buf bytes.Buffer
	err := p.dispatch(ctx, &buf, seq, cmd)
	switch {
	case err == nil:
	case errors.Is(err, errRejected):
	default:
		fmt.Fprintf(&buf, "Error: %v\n", err)
	}
	ok := err == nil

	if _, werr := p.out.Write(buf.Bytes()); werr != nil {
		p.logger.Warn("failed to write command output", "seq", seq, "error", werr)
	}
	p.logger.Debug("command processed",
		"seq", seq,
		"command", cmd.Head,
		"ok", ok,
	)
	p.record(ctx, "command", func(r Recorder) error {
		return r.RecordCommand(ctx, CommandRecord{
			Seq:    seq,
			Depth:  depth,
			Head:   cmd.Head,
			Source: cmd.String(),
			OK:     ok,
			Output: buf.String(),
		})
	})
	return ok
}

func (p *Prover) record(ctx context.Context, what string, fn func(Recorder) error) {
	if p.recorder == nil {
		return
	}
	if err := fn(p.recorder); err != nil {
		p.logger.Warn("failed to record "+what, "seq", p.clock.Current(), "error", err)
	}
}

func (p *Prover) dispatch(ctx context.Context, w io.Writer, seq int64, cmd syntax.AST) error {
	args := cmd.Children
	switch cmd.Head {
	case "Group":
		return p.group(ctx, cmd)
	case "Def":
		if len(args) != 2 && len(args) != 3 {
			return invalid("the definition is not valid.", cmd)
		}
		return p.def(ctx, seq, cmd)
	case "Var":
		if len(args) != 2 {
			return invalid("the assumption is not valid.", cmd)
		}
		return p.assum(ctx, seq, cmd)
	case "Check":
		switch len(args) {
		case 1:
			return p.check(w, args[0])
		case 2:
			return p.checkAgainst(w, args[0], args[1])
		}
	case "Show":
		if len(args) == 1 {
			return p.show(w, cmd)
		}
	case "ShowAll":
		if len(args) == 0 {
			fmt.Fprintf(w, "Environment:\n%s\nContext:\n%s\n", p.k.EnvToString(), p.k.ContextToString())
			return nil
		}
	case "Normalize":
		if len(args) == 1 {
			return p.normalize(ctx, w, seq, args[0])
		}
	case "Trace":
		if len(args) == 1 {
			return p.trace(ctx, w, seq, args[0])
		}
	case "CheckEq":
		if len(args) == 2 {
			return p.checkEq(ctx, w, args[0], args[1])
		}
	case "Pop":
		if len(args) == 0 {
			return p.k.EnvPop()
		}
	}
	return invalid("the command is not valid.", cmd)
}

// group runs each child as its own command. Under WithAtomic a failed
// child rolls the whole group back.
func (p *Prover) group(ctx context.Context, cmd syntax.AST) error {
	snap := p.k.Snapshot()
	failed := 0
	p.depth++
	for _, c := range cmd.Children {
		if !p.Process(ctx, c) {
			failed++
		}
	}
	p.depth--
	if !p.atomic || failed == 0 {
		return nil
	}
	p.k.Restore(snap)
	return fmt.Errorf("%d command(s) in the group failed; the group was rolled back.", failed)
}
