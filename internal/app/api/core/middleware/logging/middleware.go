// Package logging implements a request logging middleware on top of slog.
package logging

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Middleware logs information about each request.
type Middleware struct {
	level slog.Level
}

// Option allows customization of the logging middleware.
type Option func(*Middleware)

// WithLevel sets the log level for the request log lines.
func WithLevel(level slog.Level) Option {
	return func(m *Middleware) {
		m.level = level
	}
}

// New returns a new logging middleware with the provided options.
func New(opts ...Option) *Middleware {
	m := &Middleware{
		level: slog.LevelDebug,
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Handler returns the logging middleware handler.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := &writerWrapper{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		defer func() {
			slog.Default().Log(r.Context(), m.level, "request handled",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.status,
				"duration", time.Since(start).String(),
				"clientIP", clientIp(r),
				"userAgent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// writerWrapper captures the status code written by the handler chain.
type writerWrapper struct {
	http.ResponseWriter
	status int
}

func (w *writerWrapper) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func clientIp(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}

	// strip the port from the remote address
	lastColonIndex := strings.LastIndex(r.RemoteAddr, ":")
	if lastColonIndex == -1 {
		return r.RemoteAddr
	}
	return r.RemoteAddr[:lastColonIndex]
}
