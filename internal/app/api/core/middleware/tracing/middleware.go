// Package tracing implements a middleware that assigns a unique id to each
// request. The id is stored in the request context and echoed in the response
// header so that log lines and client reports can be correlated.
package tracing

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

// Middleware assigns a request id to each request.
type Middleware struct {
	header     string
	contextKey contextKey
}

// Option allows customization of the tracing middleware.
type Option func(*Middleware)

// WithHeaderIdentifier sets the response header that carries the request id.
func WithHeaderIdentifier(header string) Option {
	return func(m *Middleware) {
		m.header = header
	}
}

// WithContextIdentifier sets the context key that carries the request id.
func WithContextIdentifier(key string) Option {
	return func(m *Middleware) {
		m.contextKey = contextKey(key)
	}
}

// New returns a new tracing middleware with the provided options.
func New(opts ...Option) *Middleware {
	m := &Middleware{
		header:     "X-Request-ID",
		contextKey: "X-Request-ID",
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Handler returns the tracing middleware handler.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(m.header)
		if id == "" {
			id = uuid.New().String()
		}

		w.Header().Set(m.header, id)
		r = r.WithContext(context.WithValue(r.Context(), m.contextKey, id))

		next.ServeHTTP(w, r)
	})
}

// RequestId returns the request id stored in the given context, or an empty
// string if the context carries none.
func RequestId(ctx context.Context, key string) string {
	id, _ := ctx.Value(contextKey(key)).(string)
	return id
}
