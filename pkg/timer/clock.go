package timer

import (
	"sync"
	"time"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock returns a Clock backed by time.Now.
func RealClock() Clock { return realClock{} }

// ManagedClock is a hand-driven Clock for tests. It only moves forward.
type ManagedClock struct {
	mu     sync.Mutex
	start  time.Time
	offset time.Duration
}

// NewManagedClock returns a ManagedClock positioned at start.
func NewManagedClock(start time.Time) *ManagedClock {
	return &ManagedClock{start: start}
}

func (c *ManagedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.start.Add(c.offset)
}

// WarpForward moves the clock by d and returns the new time.
func (c *ManagedClock) WarpForward(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset += d
	return c.start.Add(c.offset)
}
