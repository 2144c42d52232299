// Package net holds request scoped context helpers shared by transports
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const keyClientID ctxKey = "client_id"

// WithRequest stores reqID where chi's RequestID middleware would
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, reqID)
}

// RequestID returns the request id on ctx, if any
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// WithClient stores the authenticated API client id
func WithClient(ctx context.Context, clientID string) context.Context {
	if clientID == "" {
		return ctx
	}
	return context.WithValue(ctx, keyClientID, clientID)
}

// ClientID returns the authenticated API client id, if any
func ClientID(ctx context.Context) string {
	s, _ := ctx.Value(keyClientID).(string)
	return s
}
