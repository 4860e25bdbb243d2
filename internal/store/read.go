package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/LucianoXu/diracoq/internal/prover"
)

// ErrSessionNotFound is returned by ReadSession for an unknown id.
var ErrSessionNotFound = errors.New("session not found")

// ReadSession returns the session with the given id.
func (s *Store) ReadSession(ctx context.Context, id string) (Session, error) {
	var sess Session
	err := s.db.QueryRowContext(ctx, `
		SELECT id, label, atomic, max_steps FROM sessions WHERE id = ?
	`, id).Scan(&sess.ID, &sess.Label, &sess.Atomic, &sess.MaxSteps)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("read session %s: %w", id, ErrSessionNotFound)
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session %s: %w", id, err)
	}
	return sess, nil
}

// ListSessions returns every session ordered by id, which for UUIDv7 ids is
// creation order.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, atomic, max_steps FROM sessions
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Label, &sess.Atomic, &sess.MaxSteps); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadCommands returns the commands of a session in seq order.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ReadCommands(ctx context.Context, sessionID string) ([]prover.CommandRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, depth, head, source, ok, output
		FROM commands
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query commands: %w", err)
	}
	defer rows.Close()

	cmds := []prover.CommandRecord{}
	for rows.Next() {
		var c prover.CommandRecord
		if err := rows.Scan(&c.Seq, &c.Depth, &c.Head, &c.Source, &c.OK, &c.Output); err != nil {
			return nil, fmt.Errorf("scan command: %w", err)
		}
		cmds = append(cmds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commands: %w", err)
	}
	return cmds, nil
}

// ReadDeclarations returns the declarations of a session in seq order.
func (s *Store) ReadDeclarations(ctx context.Context, sessionID string) ([]prover.DeclarationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, symbol, type, value
		FROM declarations
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query declarations: %w", err)
	}
	defer rows.Close()

	decls := []prover.DeclarationRecord{}
	for rows.Next() {
		var d prover.DeclarationRecord
		if err := rows.Scan(&d.Seq, &d.Symbol, &d.Type, &d.Value); err != nil {
			return nil, fmt.Errorf("scan declaration: %w", err)
		}
		decls = append(decls, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate declarations: %w", err)
	}
	return decls, nil
}

// ReadDerivations returns the derivations of a session, steps included, in
// seq order.
func (s *Store) ReadDerivations(ctx context.Context, sessionID string) ([]prover.DerivationRecord, error) {
	return s.queryDerivations(ctx, `
		SELECT session_id, seq, input, result, digest
		FROM derivations
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
}

// FindDerivations returns every stored derivation with the given digest,
// across sessions, ordered by session id then seq.
func (s *Store) FindDerivations(ctx context.Context, digest string) ([]prover.DerivationRecord, error) {
	return s.queryDerivations(ctx, `
		SELECT session_id, seq, input, result, digest
		FROM derivations
		WHERE digest = ?
		ORDER BY session_id COLLATE BINARY ASC, seq ASC
	`, digest)
}

type derivationKey struct {
	session string
	seq     int64
}

func (s *Store) queryDerivations(ctx context.Context, query string, arg any) ([]prover.DerivationRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query derivations: %w", err)
	}

	var keys []derivationKey
	out := []prover.DerivationRecord{}
	for rows.Next() {
		var (
			key derivationKey
			d   prover.DerivationRecord
		)
		if err := rows.Scan(&key.session, &d.Seq, &d.Input, &d.Result, &d.Digest); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan derivation: %w", err)
		}
		key.seq = d.Seq
		keys = append(keys, key)
		out = append(out, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate derivations: %w", err)
	}

	// The single connection is free again once rows is closed.
	for i, key := range keys {
		steps, err := s.readSteps(ctx, key)
		if err != nil {
			return nil, err
		}
		out[i].Steps = steps
	}
	return out, nil
}

func (s *Store) readSteps(ctx context.Context, key derivationKey) ([]prover.StepRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rule, position, initial_term, matched_term, replacement, final_term
		FROM derivation_steps
		WHERE session_id = ? AND seq = ?
		ORDER BY step ASC
	`, key.session, key.seq)
	if err != nil {
		return nil, fmt.Errorf("query derivation steps: %w", err)
	}
	defer rows.Close()

	steps := []prover.StepRecord{}
	for rows.Next() {
		var st prover.StepRecord
		if err := rows.Scan(&st.Rule, &st.Position, &st.Initial, &st.Matched, &st.Replacement, &st.Final); err != nil {
			return nil, fmt.Errorf("scan derivation step: %w", err)
		}
		steps = append(steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate derivation steps: %w", err)
	}
	return steps, nil
}

// DerivationRules returns the rule sequence stored for a derivation without
// reading its steps.
func (s *Store) DerivationRules(ctx context.Context, sessionID string, seq int64) ([]string, error) {
	var rules string
	err := s.db.QueryRowContext(ctx, `
		SELECT rules FROM derivations WHERE session_id = ? AND seq = ?
	`, sessionID, seq).Scan(&rules)
	if err != nil {
		return nil, fmt.Errorf("read derivation rules: %w", err)
	}
	return unmarshalRules(rules)
}
