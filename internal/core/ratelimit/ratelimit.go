// Package ratelimit admits outbound search requests through a sliding window
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Defaults match what the search backend tolerates with a 2s page delay
const (
	DefaultMaxRequests = 30
	DefaultWindow      = time.Minute
)

// Config tunes the limiter; zero fields take the defaults
type Config struct {
	MaxRequests int
	Window      time.Duration

	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// Limiter allows at most MaxRequests admissions in any Window
// it never drops a caller, Admit waits until a slot frees up
type Limiter struct {
	mu    sync.Mutex
	max   int
	win   time.Duration
	stamp []time.Time // admission times, oldest first
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New builds a Limiter from cfg
func New(cfg Config) *Limiter {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = DefaultMaxRequests
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Sleep == nil {
		cfg.Sleep = SleepCtx
	}
	return &Limiter{
		max:   cfg.MaxRequests,
		win:   cfg.Window,
		stamp: make([]time.Time, 0, cfg.MaxRequests),
		now:   cfg.Now,
		sleep: cfg.Sleep,
	}
}

// Admit blocks until the caller may issue one request
// only ctx cancellation makes it return an error
func (l *Limiter) Admit(ctx context.Context) error {
	for {
		wait, ok := l.try()
		if ok {
			return nil
		}
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// try prunes expired admissions and either records one or reports how long until the oldest expires
func (l *Limiter) try() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	keep := 0
	for _, t := range l.stamp {
		if now.Sub(t) < l.win {
			l.stamp[keep] = t
			keep++
		}
	}
	l.stamp = l.stamp[:keep]

	if len(l.stamp) < l.max {
		l.stamp = append(l.stamp, now)
		return 0, true
	}
	return l.win - now.Sub(l.stamp[0]), false
}

// SleepCtx waits for d or until ctx is done
func SleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
