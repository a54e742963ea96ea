package testfixtures

import (
	"sync"
	"time"
)

// Clock is a manually driven time source. Tests inject it where production
// code takes a now function, then move it explicitly.
type Clock struct {
	mu      sync.Mutex
	instant time.Time
}

// NewClock builds a clock frozen at start. A zero start falls back to the
// shared ReferenceTime so fixtures and clocks agree on the same day.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{instant: start}
}

// Now reports the instant the clock is currently frozen at.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.instant
}

// NowFunc adapts the clock to the now-function shape services accept. A nil
// clock degrades to the real time source.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set freezes the clock at t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.instant = t
	c.mu.Unlock()
}

// Advance moves the frozen instant forward by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	c.instant = c.instant.Add(d)
	updated := c.instant
	c.mu.Unlock()
	return updated
}

// Current is a read-only alias for Now, for assertions that want to make the
// lack of time progression explicit.
func (c *Clock) Current() time.Time {
	return c.Now()
}
