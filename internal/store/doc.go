// Package store provides SQLite-backed storage for prover sessions.
//
// A session is one run of the prover. The store keeps:
//   - Sessions: id, label and the prover options needed to replay it
//   - Commands: every processed command with its output
//   - Declarations: symbols added by Def and Var
//   - Derivations: normalizations with their rewriting steps
//
// # Ordering
//
// Rows are ordered by seq, the prover's logical clock, never by
// timestamps. Every query orders by seq so reads are identical across
// replays.
//
// # Identity
//
// Session ids are UUIDv7. Derivations also carry a content digest
// (ir.DomainDerivation over canonical JSON) that is equal for equal
// derivations in different sessions.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
