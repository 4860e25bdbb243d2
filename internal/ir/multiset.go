package ir

import "fmt"

// Entry is one element of a multiset with its multiplicity.
type Entry struct {
	Term  Term
	Count int
}

// Multiset is a list of (term, multiplicity) entries.
//
// A Multiset returned by a Bank is normalized: no duplicate terms, every
// count positive, entries sorted by the Bank's total order. Multisets built
// by callers keep insertion order until they are handed back to the Bank.
type Multiset []Entry

// MultisetOf builds a multiset counting each occurrence of terms once.
func MultisetOf(terms ...Term) Multiset {
	var m Multiset
	for _, t := range terms {
		m.Add(t, 1)
	}
	return m
}

// Clone returns an independent copy.
func (m Multiset) Clone() Multiset {
	if m == nil {
		return nil
	}
	out := make(Multiset, len(m))
	copy(out, m)
	return out
}

func (m Multiset) index(t Term) int {
	for i, e := range m {
		if e.Term == t {
			return i
		}
	}
	return -1
}

// Count returns the multiplicity of t (0 if absent).
func (m Multiset) Count(t Term) int {
	if i := m.index(t); i >= 0 {
		return m[i].Count
	}
	return 0
}

// Contains reports whether t occurs at least once.
func (m Multiset) Contains(t Term) bool {
	return m.index(t) >= 0
}

// Total returns the sum of all multiplicities.
func (m Multiset) Total() int {
	n := 0
	for _, e := range m {
		n += e.Count
	}
	return n
}

// Terms returns the distinct terms in entry order.
func (m Multiset) Terms() []Term {
	out := make([]Term, len(m))
	for i, e := range m {
		out[i] = e.Term
	}
	return out
}

// Add adds k copies of t. Adding zero copies is a no-op.
func (m *Multiset) Add(t Term, k int) {
	if k < 0 {
		panic(fmt.Sprintf("ir: Multiset.Add with negative count %d", k))
	}
	if k == 0 {
		return
	}
	if i := m.index(t); i >= 0 {
		(*m)[i].Count += k
		return
	}
	*m = append(*m, Entry{Term: t, Count: k})
}

// Subtract removes k copies of t. The entry disappears when its count
// reaches zero. Removing more copies than present is an UNDERFLOW error
// and leaves the multiset unchanged.
func (m *Multiset) Subtract(t Term, k int) error {
	if k < 0 {
		panic(fmt.Sprintf("ir: Multiset.Subtract with negative count %d", k))
	}
	i := m.index(t)
	have := 0
	if i >= 0 {
		have = (*m)[i].Count
	}
	if have < k {
		return &StructuralError{
			Code:    ErrCodeUnderflow,
			Message: fmt.Sprintf("cannot subtract %d copies of term %d, only %d present", k, t, have),
		}
	}
	if k == 0 {
		return nil
	}
	if have == k {
		*m = append((*m)[:i], (*m)[i+1:]...)
		return nil
	}
	(*m)[i].Count -= k
	return nil
}

// MustSubtract is Subtract for callers that have already established the
// copies exist. It panics on underflow.
func (m *Multiset) MustSubtract(t Term, k int) {
	if err := m.Subtract(t, k); err != nil {
		panic(err)
	}
}

// RemoveAll deletes every copy of t and reports whether any were present.
func (m *Multiset) RemoveAll(t Term) bool {
	i := m.index(t)
	if i < 0 {
		return false
	}
	*m = append((*m)[:i], (*m)[i+1:]...)
	return true
}
