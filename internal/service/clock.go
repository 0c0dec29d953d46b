package service

import (
	"sync"
	"time"
)

// SystemClock produces strictly increasing UTC timestamps. Two calls in
// the same wall-clock instant are separated by a microsecond so recency
// ordering stays total even on coarse clocks.
type SystemClock struct {
	mu   sync.Mutex
	last time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

func (c *SystemClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UTC()
	if !now.After(c.last) {
		now = c.last.Add(time.Microsecond)
	}
	c.last = now
	return now
}
