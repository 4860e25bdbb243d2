package testutil

// FixedSessionGenerator returns the same session id every time, so a
// scenario recorded twice produces byte-identical rows.
//
// Unlike store.FixedGenerator, which hands out a list of ids in order,
// this generator never runs out. It is stateless and safe for concurrent
// use.
type FixedSessionGenerator struct {
	id string
}

// NewFixedSessionGenerator creates a generator for id. An empty id
// becomes "test-session-default".
func NewFixedSessionGenerator(id string) *FixedSessionGenerator {
	if id == "" {
		id = "test-session-default"
	}
	return &FixedSessionGenerator{id: id}
}

// Generate returns the fixed id. Implements store.IDGenerator.
func (g *FixedSessionGenerator) Generate() string {
	return g.id
}
