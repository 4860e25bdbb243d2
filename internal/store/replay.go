package store

import (
	"context"
	"fmt"
	"io"

	"github.com/LucianoXu/diracoq/internal/kernel"
	"github.com/LucianoXu/diracoq/internal/prover"
	"github.com/LucianoXu/diracoq/internal/syntax"
)

// SessionState summarizes a recorded session.
type SessionState struct {
	Session      Session
	Commands     []prover.CommandRecord
	Declarations []prover.DeclarationRecord
	Derivations  []prover.DerivationRecord
	LastSeq      int64
	Failed       int // commands that did not succeed
}

// GetSessionState reads everything recorded for a session.
func (s *Store) GetSessionState(ctx context.Context, sessionID string) (SessionState, error) {
	var state SessionState
	var err error

	if state.Session, err = s.ReadSession(ctx, sessionID); err != nil {
		return state, fmt.Errorf("get session state: %w", err)
	}
	if state.Commands, err = s.ReadCommands(ctx, sessionID); err != nil {
		return state, fmt.Errorf("get session state: %w", err)
	}
	if state.Declarations, err = s.ReadDeclarations(ctx, sessionID); err != nil {
		return state, fmt.Errorf("get session state: %w", err)
	}
	if state.Derivations, err = s.ReadDerivations(ctx, sessionID); err != nil {
		return state, fmt.Errorf("get session state: %w", err)
	}

	for _, c := range state.Commands {
		state.LastSeq = max(state.LastSeq, c.Seq)
		if !c.OK {
			state.Failed++
		}
	}
	return state, nil
}

// Mismatch is a command whose replay differs from its recording.
type Mismatch struct {
	Seq      int64
	Recorded prover.CommandRecord
	Replayed prover.CommandRecord
	Missing  bool // the replay produced no command at Seq
}

// ReplayResult compares a recorded session with a fresh run of its
// top-level commands.
type ReplayResult struct {
	SessionID  string
	Commands   int
	Mismatches []Mismatch
}

// Deterministic reports whether the replay reproduced every command.
func (r *ReplayResult) Deterministic() bool {
	return len(r.Mismatches) == 0
}

// capture is an in-memory prover.Recorder for replays.
type capture struct {
	commands map[int64]prover.CommandRecord
}

func (c *capture) RecordCommand(_ context.Context, rec prover.CommandRecord) error {
	c.commands[rec.Seq] = rec
	return nil
}

func (c *capture) RecordDeclaration(context.Context, prover.DeclarationRecord) error { return nil }

func (c *capture) RecordDerivation(context.Context, prover.DerivationRecord) error { return nil }

// Replay runs the top-level commands of a session against a fresh kernel
// configured like the original and compares every command record,
// grouped children included. The prover's logical clock makes the
// sequence numbers line up.
func (s *Store) Replay(ctx context.Context, sessionID string, opts ...prover.Option) (*ReplayResult, error) {
	sess, err := s.ReadSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	recorded, err := s.ReadCommands(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	captured := &capture{commands: make(map[int64]prover.CommandRecord)}
	base := []prover.Option{
		prover.WithKernel(kernel.New(kernel.WithMaxSteps(sess.MaxSteps))),
		prover.WithAtomic(sess.Atomic),
	}
	p := prover.New(io.Discard, append(append(base, opts...), prover.WithRecorder(captured))...)

	for _, rec := range recorded {
		if rec.Depth > 0 {
			continue
		}
		cmd, err := syntax.Parse(rec.Source)
		if err != nil {
			return nil, fmt.Errorf("replay: command %d: %w", rec.Seq, err)
		}
		p.Process(ctx, cmd)
	}

	result := &ReplayResult{SessionID: sessionID, Commands: len(recorded)}
	for _, rec := range recorded {
		got, ok := captured.commands[rec.Seq]
		switch {
		case !ok:
			result.Mismatches = append(result.Mismatches, Mismatch{Seq: rec.Seq, Recorded: rec, Missing: true})
		case got != rec:
			result.Mismatches = append(result.Mismatches, Mismatch{Seq: rec.Seq, Recorded: rec, Replayed: got})
		}
	}
	return result, nil
}
