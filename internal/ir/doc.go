// Package ir provides the hash-consed term representation for diracoq.
//
// All other internal packages import ir; ir imports nothing internal. Terms
// are built exclusively through a Bank, which interns every node so that
// structurally equal terms share one handle.
//
// Key design constraints:
//   - Term handles are indices into the owning Bank, never pointers
//   - Node variants form a closed set: Ordered, C (commutative) and AC
//   - Structural hashes are computed from head ids and child hashes only,
//     so the total order on terms is reproducible across runs
//   - Nodes are immutable; every change goes through the Bank
package ir
