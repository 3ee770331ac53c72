// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"sync"
	"time"
)

// Clock abstracts wall-clock reads so token expiry and duration accounting
// can be tested deterministically. Production code uses RealClock; tests
// use FakeClock.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// Since returns the time elapsed since t.
	Since(t time.Time) time.Duration
}

// RealClock reads the system clock. The zero value is ready to use.
type RealClock struct{}

func (RealClock) Now() time.Time                  { return time.Now() }
func (RealClock) Since(t time.Time) time.Duration { return time.Since(t) }

// FakeClock is a Clock under manual control. Time moves only through
// Advance or Set.
type FakeClock struct {
	mu      sync.RWMutex
	current time.Time
}

// NewFakeClock creates a FakeClock initialized to initial. A zero initial
// falls back to a fixed reference time so tests stay reproducible.
func NewFakeClock(initial time.Time) *FakeClock {
	c := &FakeClock{current: initial}
	if initial.IsZero() {
		c.current = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return c
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Since returns the fake time elapsed since t.
func (c *FakeClock) Since(t time.Time) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.Sub(t)
}

// Advance moves the fake time forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// Set pins the fake time to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}
