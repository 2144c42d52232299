package http

import (
	"encoding/json"
	"fmt"
	stdhttp "net/http"
	"strings"
)

// EventStream writes Server-Sent Events on a response
type EventStream struct {
	w  stdhttp.ResponseWriter
	rc *stdhttp.ResponseController
}

// NewEventStream sets stream headers and commits a 200
func NewEventStream(w stdhttp.ResponseWriter) *EventStream {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(stdhttp.StatusOK)

	s := &EventStream{w: w, rc: stdhttp.NewResponseController(w)}
	_ = s.rc.Flush()
	return s
}

// Send writes one event with a JSON data line and flushes it
func (s *EventStream) Send(id, event string, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var sb strings.Builder
	if id != "" {
		fmt.Fprintf(&sb, "id: %s\n", id)
	}
	if event != "" {
		fmt.Fprintf(&sb, "event: %s\n", event)
	}
	fmt.Fprintf(&sb, "data: %s\n\n", b)
	if _, err := s.w.Write([]byte(sb.String())); err != nil {
		return err
	}
	return s.flush()
}

// Comment writes a comment line, used as a keepalive
func (s *EventStream) Comment(text string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return err
	}
	return s.flush()
}

func (s *EventStream) flush() error {
	if err := s.rc.Flush(); err != nil && err != stdhttp.ErrNotSupported {
		return err
	}
	return nil
}
