package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/samber/lo"

	"github.com/LucianoXu/diracoq/internal/compiler"
	"github.com/LucianoXu/diracoq/internal/kernel"
	"github.com/LucianoXu/diracoq/internal/prover"
	"github.com/LucianoXu/diracoq/internal/store"
	"github.com/LucianoXu/diracoq/internal/syntax"
	"github.com/LucianoXu/diracoq/internal/testutil"
)

// Harness runs one scenario against a fresh prover that records into an
// in-memory store.
type Harness struct {
	store   *store.Store
	session *store.SessionRecorder
	prover  *prover.Prover
	out     *bytes.Buffer
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Create a fresh in-memory database and a session with a fixed id
//  2. Load the scenario's theories and run their commands
//  3. Run setup commands, failing the run if any of them fails
//  4. Run steps and check their expect clauses
//  5. Evaluate assertions
//
// An error means the scenario could not run at all; failed expectations
// are reported in the result.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	session, err := st.NewSession(ctx,
		testutil.NewFixedSessionGenerator("scenario-"+scenario.Name),
		store.Session{Label: scenario.Name, Atomic: scenario.Atomic, MaxSteps: scenario.MaxSteps},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	out := &bytes.Buffer{}
	k := kernel.New(kernel.WithLogger(logger), kernel.WithMaxSteps(scenario.MaxSteps))
	h := &Harness{
		store:   st,
		session: session,
		out:     out,
		logger:  logger,
		prover: prover.New(out,
			prover.WithKernel(k),
			prover.WithLogger(logger),
			prover.WithRecorder(session),
			prover.WithAtomic(scenario.Atomic),
		),
	}

	if err := h.loadTheories(ctx, scenario.Theories); err != nil {
		return nil, fmt.Errorf("failed to load theories: %w", err)
	}
	if err := h.executeSetup(ctx, scenario.Setup); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}
	seqs, err := h.executeSteps(ctx, scenario.Steps)
	if err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	result := NewResult()
	result.Output = out.String()
	derivations, err := h.collectTrace(ctx, result)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}

	for i, step := range scenario.Steps {
		if step.Expect == nil {
			continue
		}
		event, _ := result.event(seqs[i])
		if msg := checkExpect(i, event, step.Expect); msg != "" {
			result.AddError(msg)
		}
	}

	actx := &AssertionContext{
		Ctx:         ctx,
		Kernel:      k,
		Derivations: derivations,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

// loadTheories runs the commands of every theory file. Each must succeed.
func (h *Harness) loadTheories(ctx context.Context, paths []string) error {
	for _, path := range paths {
		theories, err := compiler.Load(path)
		if err != nil {
			return err
		}
		cmds, err := compiler.Program(theories)
		if err != nil {
			return err
		}
		for _, cmd := range cmds {
			if err := h.mustProcess(ctx, cmd); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}
		h.logger.Info("theories loaded", "path", path, "theories", len(theories), "commands", len(cmds))
	}
	return nil
}

// executeSetup runs setup commands. Setup is assumed to succeed, so a
// failing command aborts the scenario.
func (h *Harness) executeSetup(ctx context.Context, setup []string) error {
	for i, src := range setup {
		cmd, err := syntax.Parse(src)
		if err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
		if err := h.mustProcess(ctx, cmd); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
	}
	return nil
}

func (h *Harness) mustProcess(ctx context.Context, cmd syntax.AST) error {
	before := h.out.Len()
	if !h.prover.Process(ctx, cmd) {
		return fmt.Errorf("command %s failed: %s", cmd, bytes.TrimSpace(h.out.Bytes()[before:]))
	}
	return nil
}

// executeSteps runs every step and returns the seq each was recorded at.
// A grouped step's children follow its own seq.
func (h *Harness) executeSteps(ctx context.Context, steps []Step) ([]int64, error) {
	seqs := make([]int64, len(steps))
	for i, step := range steps {
		cmd, err := syntax.Parse(step.Command)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		seqs[i] = h.prover.Seq() + 1
		ok := h.prover.Process(ctx, cmd)
		h.logger.Info("step processed", "step", i, "seq", seqs[i], "command", cmd.String(), "ok", ok)
	}
	return seqs, nil
}

// collectTrace reads the session back from the store into result.Trace.
func (h *Harness) collectTrace(ctx context.Context, result *Result) ([]prover.DerivationRecord, error) {
	id := h.session.Session().ID
	commands, err := h.store.ReadCommands(ctx, id)
	if err != nil {
		return nil, err
	}
	derivations, err := h.store.ReadDerivations(ctx, id)
	if err != nil {
		return nil, err
	}

	rules := make(map[int64][]string, len(derivations))
	for _, d := range derivations {
		rules[d.Seq] = lo.Map(d.Steps, func(s prover.StepRecord, _ int) string { return s.Rule })
	}
	for _, c := range commands {
		result.Trace = append(result.Trace, TraceEvent{
			Seq:    c.Seq,
			Depth:  c.Depth,
			Head:   c.Head,
			Source: c.Source,
			OK:     c.OK,
			Output: c.Output,
			Rules:  rules[c.Seq],
		})
	}
	return derivations, nil
}

// checkExpect compares a step's record with its expect clause and returns
// a failure message, or "" when it matches.
func checkExpect(index int, event TraceEvent, expect *ExpectClause) string {
	got := CaseOK
	if !event.OK {
		got = CaseError
	}
	if got != expect.Case {
		return fmt.Sprintf("steps[%d] %s: expected case %s, got %s\n  output: %q", index, event.Source, expect.Case, got, event.Output)
	}
	if expect.Output != "" && expect.Output != event.Output {
		return fmt.Sprintf("steps[%d] %s: expected output %q, got %q", index, event.Source, expect.Output, event.Output)
	}
	return ""
}
