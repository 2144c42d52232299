package service

import (
	"sync"
	"testing"
	"time"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/logger"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/services/importer/domain"
)

func TestEmitter_DropsProgressWhenFullButKeepsTerminal(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	var mu sync.Mutex
	var got []domain.Event
	sink := func(e domain.Event) {
		<-release
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	}

	em := newEmitter(2, time.Second, sink, logger.Nop())
	for i := range 10 {
		em.Progress(float64(i), "tick")
	}
	done := make(chan struct{})
	go func() {
		em.Emit(domain.Event{Type: domain.EventComplete, Message: "ok"})
		close(done)
	}()
	close(release)
	<-done
	em.Close()

	if len(got) < 2 || len(got) > 4 {
		t.Fatalf("delivered %d events, want the buffered few plus the terminal", len(got))
	}
	if last := got[len(got)-1]; last.Type != domain.EventComplete {
		t.Fatalf("last=%+v", last)
	}
}

func TestEmitter_SinkPanicIsContained(t *testing.T) {
	t.Parallel()

	n := 0
	em := newEmitter(4, 0, func(e domain.Event) {
		n++
		if e.Status == "bad" {
			panic("sink")
		}
	}, logger.Nop())
	em.Progress(1, "bad")
	em.Emit(domain.Event{Type: domain.EventError, Error: "x"})
	em.Close()

	if n != 2 {
		t.Fatalf("sink calls=%d want 2", n)
	}
}

func TestEmitter_NilSink(t *testing.T) {
	t.Parallel()

	em := newEmitter(0, 0, nil, logger.Nop())
	em.Progress(20, "x")
	em.Emit(domain.Event{Type: domain.EventComplete})
	em.Close()
}

func TestEmitter_StalledSinkIsBounded(t *testing.T) {
	t.Parallel()

	stuck := make(chan struct{})
	t.Cleanup(func() { close(stuck) })

	em := newEmitter(1, 20*time.Millisecond, func(domain.Event) { <-stuck }, logger.Nop())
	em.Progress(10, "first")  // taken by the sink, which never returns
	em.Progress(20, "second") // fills the buffer

	finished := make(chan bool, 1)
	go func() {
		em.Emit(domain.Event{Type: domain.EventComplete, Message: "ok"})
		finished <- em.Close()
	}()

	select {
	case delivered := <-finished:
		if delivered {
			t.Fatal("Close reported delivery to a stalled sink")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("terminal emit and close did not give up on a stalled sink")
	}
}
