// Package recovery implements a middleware that recovers from panics in the
// handler chain and returns an Internal Server Error response instead.
package recovery

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Middleware recovers from panics. It should be the first middleware in the
// chain, so that it can recover from panics in other middlewares.
type Middleware struct{}

// New returns a new recovery middleware.
func New() *Middleware {
	return &Middleware{}
}

// Handler returns the recovery middleware handler.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				realErr, ok := err.(error)
				if !ok {
					realErr = fmt.Errorf("%v", err)
				}

				slog.Error("recovered from panic",
					"error", realErr,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"Code":    http.StatusInternalServerError,
					"Message": "internal server error",
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
