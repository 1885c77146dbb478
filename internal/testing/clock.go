package testing

import (
	"sync"
	"time"
)

// ManualClock is a clock that only moves when told to. The engine reads it
// for receipt timestamps.
type ManualClock struct {
	mu      sync.RWMutex
	current time.Time
}

// NewManualClock returns a clock set to 2024-01-01 00:00:00 UTC.
func NewManualClock() *ManualClock {
	return &ManualClock{current: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the current time on the clock.
func (c *ManualClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}
