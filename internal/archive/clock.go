package archive

import "sync/atomic"

// Clock issues the seq positions revisions are journaled at.
//
// Positions are a strictly increasing logical counter, never wall
// time, so history reads replay in the same order regardless of when
// or where the commits happened.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock resuming from a known position,
// usually LastSeq of an archive being reopened.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next position and advances the clock.
// Each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the clock position without advancing it.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
