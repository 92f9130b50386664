package engine

import "sync/atomic"

// Clock is a monotonic logical clock for ordering generation records.
//
// Every recorded generation is stamped with a strictly increasing seq from
// this clock, so history lists and replays in a stable order regardless of
// wall-clock resolution.
//
// Clock is safe for concurrent use.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that resumes after start, typically the last seq
// already present in the generation log.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next increments the clock and returns the new value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the clock's position without advancing it.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
