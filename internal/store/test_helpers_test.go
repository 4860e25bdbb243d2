package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/LucianoXu/diracoq/internal/prover"
)

// createTestStore opens a fresh database in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSession writes a session with a fixed id.
func createTestSession(t *testing.T, s *Store, id string) *SessionRecorder {
	t.Helper()
	rec, err := s.NewSession(context.Background(), NewFixedGenerator(id), Session{Label: "test"})
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}
	return rec
}

// createTestCommand returns a successful top-level command record.
func createTestCommand(seq int64, source string) prover.CommandRecord {
	return prover.CommandRecord{Seq: seq, Head: "Check", Source: source, OK: true, Output: source + " : SType\n"}
}
