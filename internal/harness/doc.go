// Package harness runs conformance scenarios against the prover.
//
// A scenario loads optional CUE theories, runs a list of prover commands
// and then evaluates assertions against the resulting kernel, the command
// output and the recorded derivations.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: sum_swap
//	description: "nested sums over independent domains commute"
//	theories:
//	  - theories/base.cue
//	setup:
//	  - Var(M Index)
//	steps:
//	  - command: CheckEq(SSUM(i USET(T) SSUM(j USET(M) 1)) SSUM(j USET(M) SSUM(i USET(T) 1)))
//	    expect:
//	      case: ok
//	assertions:
//	  - type: equal
//	    left: DELTA(a b)
//	    right: DELTA(b a)
//
// Setup commands must succeed. Steps may fail; a step's expect clause
// says whether it should ("ok" or "error") and, optionally, the exact
// output it prints.
//
// # Assertion Types
//
//   - equal / not_equal: left and right are (not) judgementally equal
//   - normal_form: term normalizes to expect
//   - type: term has type expect
//   - error: some command failed with output containing contains
//   - output_contains: the session output contains contains
//   - rules: the derivation of term fired exactly rules, in order
//
// # Determinism
//
// Every scenario runs in a fresh in-memory SQLite store under a fixed
// session id, and the prover numbers commands with its logical clock, so
// the same scenario always yields the same trace. RunWithGolden compares
// that trace against testdata/golden/<name>.golden.
package harness
