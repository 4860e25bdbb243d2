package harness

// TraceEvent is one processed command as the store recorded it. Rules is
// the rule sequence of the command's derivation, if it produced one.
type TraceEvent struct {
	Seq    int64    `json:"seq"`
	Depth  int      `json:"depth,omitempty"`
	Head   string   `json:"head"`
	Source string   `json:"source"`
	OK     bool     `json:"ok"`
	Output string   `json:"output,omitempty"`
	Rules  []string `json:"rules,omitempty"`
}

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when every step matched its expect clause and every
	// assertion held.
	Pass bool `json:"pass"`

	// Trace lists every command, setup included, in seq order.
	Trace []TraceEvent `json:"trace"`

	// Output is everything the prover printed.
	Output string `json:"output"`

	// Errors holds one message per failed expectation.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// event returns the trace event recorded at seq.
func (r *Result) event(seq int64) (TraceEvent, bool) {
	for _, e := range r.Trace {
		if e.Seq == seq {
			return e, true
		}
	}
	return TraceEvent{}, false
}
