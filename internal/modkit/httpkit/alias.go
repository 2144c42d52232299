// Package httpkit provides handler and routing helpers that alias the platform http package
// use these from modules so they do not import internal/platform/net/http directly
package httpkit

import (
	"net/http"

	phttp "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/net/http"
)

type (
	// Envelope is the transport envelope type
	Envelope = phttp.Envelope

	// Response is the HTTP response type
	Response = phttp.Response

	// Handler is the platform handler type
	Handler = phttp.Handler

	// Router is a re-export of the platform router seam
	Router = phttp.Router

	// EventStream is a server-sent events writer
	EventStream = phttp.EventStream
)

// OK returns a 200 response
func OK(data any) Response { return phttp.OK(data) }

// NoContent returns a 204 response
func NoContent() Response { return phttp.NoContent() }

// Error returns a response that maps an error to status and envelope
func Error(err error) Response { return phttp.Error(err) }

// JSON binds and validates T from the body before calling fn
func JSON[T any](fn func(*http.Request, T) (any, error)) Handler { return phttp.JSONHandler(fn) }

// Call adapts a handler that takes no JSON body
func Call(fn func(*http.Request) (any, error)) Handler { return phttp.JSONHandlerNoBody(fn) }

// Handle adapts a Response-returning function
func Handle(fn func(*http.Request) Response) Handler { return phttp.Handle(fn) }

// Stream binds T, opens an event stream and hands both to fn
// bind errors are answered as a JSON envelope before any stream bytes are written
func Stream[T any](fn func(*http.Request, T, *EventStream)) Handler {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := phttp.Bind[T](r)
		if err != nil {
			phttp.RespondError(w, r, err)
			return
		}
		fn(r, in, phttp.NewEventStream(w))
	}
}
