package http

import (
	"net/http"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/net/http/bind"
)

// JSONHandler binds and validates T from the body, then wraps fn's result
// a Response returned from fn is written as is
func JSONHandler[T any](fn func(*http.Request, T) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := bind.ParseJSON[T](r)
		if err != nil {
			return Error(err)
		}
		return wrap(fn(r, in))
	})
}

// JSONHandlerNoBody calls fn without reading a body
func JSONHandlerNoBody(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response { return wrap(fn(r)) })
}

func wrap(out any, err error) Response {
	if err != nil {
		return Error(err)
	}
	if resp, ok := out.(Response); ok {
		return resp
	}
	return OK(out)
}

// Bind decodes and validates T from r with the default bind options
func Bind[T any](r *http.Request) (T, error) { return bind.ParseJSON[T](r) }
