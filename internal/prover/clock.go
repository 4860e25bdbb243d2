package prover

import "sync/atomic"

// Clock stamps processed commands with strictly increasing sequence numbers.
//
// Sequence numbers order commands within a session without reference to
// wall time, so a replayed session produces the same numbering. Clock is
// safe for concurrent use.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock whose first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock positioned at start. Used to continue a
// recorded session after its last command.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
