package testkit

import (
	"context"
	"testing"
	"time"
)

var hook = func() string { return "real" }

func TestAsserts(t *testing.T) {
	MustPanic(t, func() { panic("boom") })
	MustNotPanic(t, func() {})
	MustContain(t, "alpha beta", "beta")
	MustNotContain(t, "alpha beta", "gamma")
}

func TestSwapRestores(t *testing.T) {
	t.Run("swapped", func(t *testing.T) {
		Swap(t, &hook, func() string { return "fake" })
		if hook() != "fake" {
			t.Fatalf("swap not applied")
		}
	})
	if hook() != "real" {
		t.Fatalf("swap not restored")
	}
}

func TestClock(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := NewClock(start)

	var ticks int
	c.OnTick(func(time.Time) { ticks++ })

	if err := c.Sleep(context.Background(), 5*time.Second); err != nil {
		t.Fatalf("Sleep: %v", err)
	}
	c.Advance(time.Minute)

	if got := c.Now().Sub(start); got != time.Minute+5*time.Second {
		t.Fatalf("elapsed = %v", got)
	}
	if s := c.Sleeps(); len(s) != 1 || s[0] != 5*time.Second {
		t.Fatalf("sleeps = %v", s)
	}
	if ticks != 2 {
		t.Fatalf("ticks = %d", ticks)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Sleep(ctx, time.Hour); err == nil {
		t.Fatalf("Sleep on canceled ctx must fail")
	}
}
