// Package cors implements a CORS middleware. It adds Cross-Origin Resource
// Sharing headers to the response and short-circuits preflight requests.
package cors

import (
	"net/http"
	"slices"
)

// Middleware adds CORS headers to the response. It should be used early in the
// middleware chain so that preflight requests never reach the handlers.
type Middleware struct {
	allowedOrigins   []string
	allowCredentials bool

	allOrigins bool
}

// Option allows customization of the CORS middleware.
type Option func(*Middleware)

// WithAllowedOrigins restricts the allowed origins. The default allows all.
func WithAllowedOrigins(origins ...string) Option {
	return func(m *Middleware) {
		m.allowedOrigins = origins
	}
}

// WithCredentials enables the Access-Control-Allow-Credentials header.
func WithCredentials() Option {
	return func(m *Middleware) {
		m.allowCredentials = true
	}
}

// New returns a new CORS middleware with the provided options.
func New(opts ...Option) *Middleware {
	m := &Middleware{
		allowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(m)
	}

	if len(m.allowedOrigins) == 1 && m.allowedOrigins[0] == "*" {
		m.allOrigins = true
	}

	return m
}

// Handler returns the CORS middleware handler.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Handle preflight requests and stop the chain as some other
		// middleware may not handle OPTIONS requests correctly.
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			m.writeHeaders(w, r)
			w.Header().Set("Access-Control-Allow-Methods", r.Header.Get("Access-Control-Request-Method"))
			if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
				w.Header().Set("Access-Control-Allow-Headers", reqHeaders)
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		m.writeHeaders(w, r)
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) writeHeaders(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Vary", "Origin")

	origin := r.Header.Get("Origin")
	if origin == "" {
		return // not a CORS request
	}

	switch {
	case m.allOrigins:
		w.Header().Set("Access-Control-Allow-Origin", "*")
	case slices.Contains(m.allowedOrigins, origin):
		w.Header().Set("Access-Control-Allow-Origin", origin)
	default:
		return // origin not allowed, no CORS headers
	}

	if m.allowCredentials {
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
}
