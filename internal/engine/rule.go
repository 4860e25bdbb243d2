package engine

import (
	"github.com/samber/lo"

	"github.com/LucianoXu/diracoq/internal/ir"
)

// RuleFunc inspects t and returns its replacement. Returning false means
// the rule does not apply.
type RuleFunc func(b *ir.Bank, t ir.Term) (ir.Term, bool)

// Rule is a named rewriting rule.
type Rule struct {
	Name  string
	Apply RuleFunc
}

// RuleSet is an ordered list of rules. Order is significant: at each
// position the first rule that fires wins.
type RuleSet struct {
	Name  string
	Rules []Rule
}

// Join concatenates rule sets in order under a new name.
func Join(name string, sets ...RuleSet) RuleSet {
	return RuleSet{
		Name:  name,
		Rules: lo.FlatMap(sets, func(s RuleSet, _ int) []Rule { return s.Rules }),
	}
}

// Names lists the rule names in order.
func (s RuleSet) Names() []string {
	return lo.Map(s.Rules, func(r Rule, _ int) string { return r.Name })
}

// Only returns the subset of s whose names are listed, keeping s's order.
func (s RuleSet) Only(names ...string) RuleSet {
	return RuleSet{
		Name:  s.Name,
		Rules: lo.Filter(s.Rules, func(r Rule, _ int) bool { return lo.Contains(names, r.Name) }),
	}
}

// TryRuleAtRoot applies rule once to t, without descending into children.
// A rule that hands back t itself has not fired.
func TryRuleAtRoot(b *ir.Bank, rule Rule, t ir.Term) (ir.Term, bool) {
	out, ok := rule.Apply(b, t)
	if !ok || out == t {
		return ir.NoTerm, false
	}
	return out, true
}
