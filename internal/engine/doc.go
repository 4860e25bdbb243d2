// Package engine implements positional term rewriting over an ir.Bank.
//
// A Rule is a pure function from a candidate term to an optional
// replacement. "No match" is the boolean false returned by the rule, never
// an error; errors are reserved for broken invariants and for the safety
// limits below.
//
// TRAVERSAL:
//
// RewriteStep visits positions in pre-order: the root first, then the
// children left to right. At each position every rule of the RuleSet is
// tried in list order and the first success wins. Children of C and AC
// nodes are visited in bank order (the ir total order), so the choice is
// reproducible across runs. Rewriting such a child replaces a single copy
// in the multiset and rebuilds the parent through the bank.
//
// NORMAL FORMS:
//
// RewriteToNormalForm repeats RewriteStep until nothing fires. The engine
// places no cap on the number of steps unless WithMaxSteps is given, and
// only tracks visited terms when WithCycleDetection is given. Both are
// safety nets for hosted use; termination is a property of the rule set.
//
// BINDERS:
//
// Rules that need typing information below a binder get it through a
// Scoper, which the engine calls whenever it descends into a child of an
// ordered node. The Scoper can also keep the engine out of a child, such
// as the variable slot of a binder.
package engine
