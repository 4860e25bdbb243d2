package store

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/LucianoXu/diracoq/internal/prover"
)

// Session is one recorded run of the prover. Atomic and MaxSteps are the
// prover and kernel options the session ran with, so a replay can use the
// same ones.
type Session struct {
	ID       string
	Label    string
	Atomic   bool
	MaxSteps int
}

// WriteSession inserts a session. Uses ON CONFLICT(id) DO NOTHING, so
// writing the same session twice is a no-op.
func (s *Store) WriteSession(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, label, atomic, max_steps)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, sess.ID, sess.Label, sess.Atomic, sess.MaxSteps)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteCommand inserts a processed command. Duplicate (session, seq) pairs
// are ignored.
//
// Note: The session must exist (foreign key constraint).
func (s *Store) WriteCommand(ctx context.Context, sessionID string, c prover.CommandRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO commands (session_id, seq, depth, head, source, ok, output)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`, sessionID, c.Seq, c.Depth, c.Head, c.Source, c.OK, c.Output)
	if err != nil {
		return fmt.Errorf("write command: %w", err)
	}
	return nil
}

// WriteDeclaration inserts a declaration made by the command at d.Seq.
func (s *Store) WriteDeclaration(ctx context.Context, sessionID string, d prover.DeclarationRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO declarations (session_id, seq, symbol, type, value)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`, sessionID, d.Seq, d.Symbol, d.Type, d.Value)
	if err != nil {
		return fmt.Errorf("write declaration: %w", err)
	}
	return nil
}

// WriteDerivation inserts a derivation and its steps in one transaction.
// A derivation already stored for (session, seq) is left as it is.
func (s *Store) WriteDerivation(ctx context.Context, sessionID string, d prover.DerivationRecord) error {
	rules, err := marshalRules(lo.Map(d.Steps, func(st prover.StepRecord, _ int) string { return st.Rule }))
	if err != nil {
		return fmt.Errorf("write derivation: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write derivation: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO derivations (session_id, seq, input, result, digest, rules)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`, sessionID, d.Seq, d.Input, d.Result, d.Digest, rules)
	if err != nil {
		return fmt.Errorf("write derivation: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("write derivation: rows affected: %w", err)
	}
	if inserted == 0 {
		return nil
	}

	for i, st := range d.Steps {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO derivation_steps
			(session_id, seq, step, rule, position, initial_term, matched_term, replacement, final_term)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, sessionID, d.Seq, i, st.Rule, st.Position, st.Initial, st.Matched, st.Replacement, st.Final)
		if err != nil {
			return fmt.Errorf("write derivation step %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write derivation: commit: %w", err)
	}
	return nil
}
