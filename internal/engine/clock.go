package engine

import (
	"sync/atomic"
	"time"
)

// Clock issues the logical timestamps stamped on ball events.
//
// Timestamps are a strictly increasing counter, never wall-clock time, so
// that replaying the same commands produces identical logs. Clock is safe
// for concurrent use, though only the engine's single writer calls Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that resumes after start. Used when an engine
// is restored from a persisted snapshot.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next timestamp and advances the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued timestamp without advancing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// Rewind moves the clock back to seq. Undo uses it so that a command
// applied after an undo reuses the timestamp of the discarded event.
func (c *Clock) Rewind(seq int64) {
	c.seq.Store(seq)
}

// WallClock reads the system time. The innings timer is the only consumer;
// scoring never depends on it.
type WallClock func() time.Time

// SystemClock is the default WallClock.
func SystemClock() time.Time { return time.Now() }
