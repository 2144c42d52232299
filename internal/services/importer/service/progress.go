package service

import (
	"time"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/logger"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/services/importer/domain"
)

const (
	defaultProgressBuffer = 128
	defaultFlushTimeout   = 5 * time.Second
)

// emitter decouples the pipeline from the event consumer
// progress events are dropped when the buffer is full; terminal events and Close
// wait at most flush for a stalled sink, then give up
type emitter struct {
	ch    chan domain.Event
	done  chan struct{}
	flush time.Duration
	log   logger.Logger
}

func newEmitter(buf int, flush time.Duration, sink func(domain.Event), log logger.Logger) *emitter {
	if buf <= 0 {
		buf = defaultProgressBuffer
	}
	if flush <= 0 {
		flush = defaultFlushTimeout
	}
	e := &emitter{
		ch:    make(chan domain.Event, buf),
		done:  make(chan struct{}),
		flush: flush,
		log:   log,
	}
	go e.drain(sink)
	return e
}

func (e *emitter) drain(sink func(domain.Event)) {
	defer close(e.done)
	for ev := range e.ch {
		if sink != nil {
			e.deliver(sink, ev)
		}
	}
}

func (e *emitter) deliver(sink func(domain.Event), ev domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Str("event", string(ev.Type)).Msg("progress sink panicked")
		}
	}()
	sink(ev)
}

// Emit queues ev; only a terminal event waits for room, and never longer than flush
func (e *emitter) Emit(ev domain.Event) {
	select {
	case e.ch <- ev:
		return
	default:
	}
	if !ev.Terminal() {
		e.log.Debug().Float64("progress", ev.Progress).Str("status", ev.Status).Msg("progress event dropped")
		return
	}

	t := time.NewTimer(e.flush)
	defer t.Stop()
	select {
	case e.ch <- ev:
	case <-t.C:
		e.log.Warn().Str("event", string(ev.Type)).Dur("waited", e.flush).Msg("progress listener stalled, terminal event dropped")
	}
}

// Progress is sugar for a PROGRESS_UPDATE
func (e *emitter) Progress(pct float64, status string) {
	e.Emit(domain.Event{Type: domain.EventProgress, Progress: pct, Status: status})
}

// Close flushes queued events, waiting at most flush for the sink
// it reports whether every queued event was delivered
func (e *emitter) Close() bool {
	close(e.ch)
	t := time.NewTimer(e.flush)
	defer t.Stop()
	select {
	case <-e.done:
		return true
	case <-t.C:
		e.log.Warn().Dur("waited", e.flush).Msg("progress listener stalled, undelivered events abandoned")
		return false
	}
}
