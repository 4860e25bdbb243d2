// Package canon puts commutative arguments into the bank's total order and
// records the reordering it applied.
//
// Multiset nodes are already sorted by the bank; for them canonicalization
// only has to rebuild after children change. Ordered nodes whose head is
// declared commutative by the caller (the vector scalar rules keep ADDS and
// MULS ordered) are stably sorted here.
package canon

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/hashicorp/go-set/v3"
	"github.com/samber/lo"

	"github.com/LucianoXu/diracoq/internal/ir"
)

// Step is one reordering. Targets[i] is the new index of old argument i.
// Two old indices sharing a target means their entries merged.
type Step struct {
	Position ir.Position
	Head     int
	Targets  []int
}

// Instruction is the list of reorderings in bottom-up order.
type Instruction struct {
	Steps []Step
}

// IsIdentity reports whether canonicalization changed nothing.
func (in Instruction) IsIdentity() bool {
	return len(in.Steps) == 0
}

// String renders one line per step with numeric heads.
func (in Instruction) String() string {
	return in.render(func(h int) string { return "#" + strconv.Itoa(h) })
}

// Format renders one line per step with head names taken from sig.
func (in Instruction) Format(sig *ir.Signature) string {
	return in.render(sig.Name)
}

func (in Instruction) render(name func(int) string) string {
	lines := lo.Map(in.Steps, func(s Step, _ int) string {
		targets := lo.Map(s.Targets, func(t int, _ int) string { return strconv.Itoa(t) })
		return fmt.Sprintf("%s %s [%s]", s.Position, name(s.Head), strings.Join(targets, " "))
	})
	return strings.Join(lines, "\n")
}

type sorter struct {
	bank  *ir.Bank
	heads *set.Set[int]
	steps []Step
}

// SortCommutative canonicalizes t bottom-up. Ordered nodes with a head in
// heads have their arguments stably sorted by Compare; C and AC nodes are
// rebuilt through the bank once their children are canonical.
func SortCommutative(b *ir.Bank, t ir.Term, heads []int) (ir.Term, Instruction) {
	s := &sorter{bank: b, heads: set.From(heads)}
	out := s.sort(t, ir.Position{})
	return out, Instruction{Steps: s.steps}
}

func (s *sorter) sort(t ir.Term, pos ir.Position) ir.Term {
	b := s.bank
	switch b.Kind(t) {
	case ir.KindOrdered:
		args := b.Args(t)
		changed := false
		for i, a := range args {
			if c := s.sort(a, pos.Child(i)); c != a {
				args[i] = c
				changed = true
			}
		}
		if s.heads.Contains(b.Head(t)) && len(args) > 1 {
			order := make([]int, len(args))
			for i := range order {
				order[i] = i
			}
			slices.SortStableFunc(order, func(x, y int) int {
				return b.Compare(args[x], args[y])
			})
			targets := make([]int, len(args))
			for newIdx, oldIdx := range order {
				targets[oldIdx] = newIdx
			}
			if !isIdentity(targets) {
				sorted := make([]ir.Term, len(args))
				for oldIdx, newIdx := range targets {
					sorted[newIdx] = args[oldIdx]
				}
				args = sorted
				changed = true
				s.steps = append(s.steps, Step{Position: pos, Head: b.Head(t), Targets: targets})
			}
		}
		if !changed {
			return t
		}
		return b.Ordered(b.Head(t), args...)

	case ir.KindC, ir.KindAC:
		ms := b.Entries(t)
		changed := false
		for i, e := range ms {
			if c := s.sort(e.Term, pos.Child(i)); c != e.Term {
				ms[i].Term = c
				changed = true
			}
		}
		if !changed {
			return t
		}
		out := b.Rebuild(t, ms)
		rebuilt := b.Entries(out)
		targets := lo.Map(ms, func(e ir.Entry, _ int) int {
			return slices.IndexFunc(rebuilt, func(r ir.Entry) bool { return r.Term == e.Term })
		})
		if !isIdentity(targets) || len(rebuilt) != len(ms) {
			s.steps = append(s.steps, Step{Position: pos, Head: b.Head(t), Targets: targets})
		}
		return out

	default:
		panic(fmt.Sprintf("canon: unknown kind %d", uint8(b.Kind(t))))
	}
}

func isIdentity(targets []int) bool {
	for i, t := range targets {
		if i != t {
			return false
		}
	}
	return true
}
