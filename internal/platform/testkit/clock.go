package testkit

import (
	"context"
	"sync"
	"time"
)

// Clock is a manual clock for time driven code
// Sleep advances the clock instead of blocking and records the requested durations
type Clock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
	onTick func(time.Time)
}

// NewClock returns a clock frozen at start
func NewClock(start time.Time) *Clock { return &Clock{now: start} }

// Now returns the current fake time
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now, fn := c.now, c.onTick
	c.mu.Unlock()
	if fn != nil {
		fn(now)
	}
}

// Sleep advances the clock by d unless ctx is already done
func (c *Clock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.mu.Unlock()
	c.Advance(d)
	return nil
}

// Sleeps returns a copy of every duration passed to Sleep
func (c *Clock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

// OnTick registers fn to run after every advance
func (c *Clock) OnTick(fn func(time.Time)) {
	c.mu.Lock()
	c.onTick = fn
	c.mu.Unlock()
}
