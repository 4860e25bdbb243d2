package store

import (
	"context"

	"github.com/LucianoXu/diracoq/internal/prover"
)

// SessionRecorder writes what a prover does into one session.
type SessionRecorder struct {
	store   *Store
	session Session
}

var _ prover.Recorder = (*SessionRecorder)(nil)

// NewSession creates a session with an id from gen and returns a recorder
// for it.
func (s *Store) NewSession(ctx context.Context, gen IDGenerator, sess Session) (*SessionRecorder, error) {
	sess.ID = gen.Generate()
	if err := s.WriteSession(ctx, sess); err != nil {
		return nil, err
	}
	return &SessionRecorder{store: s, session: sess}, nil
}

// Session returns the session being recorded.
func (r *SessionRecorder) Session() Session {
	return r.session
}

// RecordCommand implements prover.Recorder.
func (r *SessionRecorder) RecordCommand(ctx context.Context, c prover.CommandRecord) error {
	return r.store.WriteCommand(ctx, r.session.ID, c)
}

// RecordDeclaration implements prover.Recorder.
func (r *SessionRecorder) RecordDeclaration(ctx context.Context, d prover.DeclarationRecord) error {
	return r.store.WriteDeclaration(ctx, r.session.ID, d)
}

// RecordDerivation implements prover.Recorder.
func (r *SessionRecorder) RecordDerivation(ctx context.Context, d prover.DerivationRecord) error {
	return r.store.WriteDerivation(ctx, r.session.ID, d)
}
