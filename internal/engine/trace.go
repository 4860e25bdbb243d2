package engine

import (
	"strings"

	"github.com/LucianoXu/diracoq/internal/ir"
)

// Record describes one rewriting step.
//
// Matched and Replacement are ir.NoTerm for steps that are not a single
// positional replacement (for example a canonical reordering).
type Record struct {
	Rule        string
	Position    ir.Position
	Initial     ir.Term
	Matched     ir.Term
	Replacement ir.Term
	Final       ir.Term
}

// Trace accumulates records in step order.
type Trace struct {
	Records []Record
}

// Append adds a record.
func (tr *Trace) Append(r Record) {
	tr.Records = append(tr.Records, r)
}

// Len returns the number of recorded steps.
func (tr *Trace) Len() int {
	if tr == nil {
		return 0
	}
	return len(tr.Records)
}

// Rules lists the rule names in step order.
func (tr *Trace) Rules() []string {
	out := make([]string, len(tr.Records))
	for i, r := range tr.Records {
		out[i] = r.Rule
	}
	return out
}

// FormatRecord renders r as a block of tab-aligned lines:
//
//	[Step]		R_BETA_ARROW
//	[Position]	()
//	[Initial Term]	apply(fun(x T x) a)
//	[Matched Term]	apply(fun(x T x) a)
//	[Replacement]	a
//	[Final Term]	a
func FormatRecord(p ir.Printer, r Record) string {
	var sb strings.Builder
	sb.WriteString("[Step]\t\t" + r.Rule + "\n")
	sb.WriteString("[Position]\t" + r.Position.String() + "\n")
	sb.WriteString("[Initial Term]\t" + p.Format(r.Initial) + "\n")
	if r.Matched.Valid() {
		sb.WriteString("[Matched Term]\t" + p.Format(r.Matched) + "\n")
	}
	if r.Replacement.Valid() {
		sb.WriteString("[Replacement]\t" + p.Format(r.Replacement) + "\n")
	}
	sb.WriteString("[Final Term]\t" + p.Format(r.Final) + "\n")
	return sb.String()
}

// FormatTrace renders every record, separated by blank lines.
func FormatTrace(p ir.Printer, tr *Trace) string {
	if tr.Len() == 0 {
		return ""
	}
	blocks := make([]string, len(tr.Records))
	for i, r := range tr.Records {
		blocks[i] = FormatRecord(p, r)
	}
	return strings.Join(blocks, "\n")
}
