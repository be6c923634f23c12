package handlers

import (
	"errors"
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/prepcheck/prepcheck/internal/app/api/core"
	"github.com/prepcheck/prepcheck/internal/app/api/core/respond"
	"github.com/prepcheck/prepcheck/internal/app/api/v0/model"
	"github.com/prepcheck/prepcheck/internal/domain"
)

type Handler interface {
	// GetName returns the name of the handler.
	GetName() string
	// RegisterRoutes registers the routes for the handler.
	RegisterRoutes(g *routegroup.Bundle)
}

// SessionMiddleware loads and persists the cookie-backed session state that
// the navigation guard endpoints operate on.
type SessionMiddleware interface {
	// LoadAndSave is a middleware that loads the session data for the given
	// request and saves it after the request is finished.
	LoadAndSave(next http.Handler) http.Handler
}

func NewRestApi(
	session SessionMiddleware,
	handlers ...Handler,
) core.ApiEndpointSetupFunc {
	return func() (core.ApiVersion, core.GroupSetupFn) {
		return "v0", func(group *routegroup.Bundle) {
			group.Use(session.LoadAndSave)

			// Handler functions
			for _, h := range handlers {
				h.RegisterRoutes(group)
			}
		}
	}
}

// region handler-interfaces

type Authenticator interface {
	// LoggedIn checks if a user is logged in. If scopes are given, they are validated as well.
	LoggedIn(scopes ...Scope) func(next http.Handler) http.Handler
	// UserIdMatch checks if the user id in the request matches the authenticated user. If not, the request is aborted.
	UserIdMatch(idParameter string) func(next http.Handler) http.Handler
}

type Validator interface {
	// Struct validates the given struct.
	Struct(s interface{}) error
}

// endregion handler-interfaces

// respondError writes the matching error response for a service error.
func respondError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrNoPermission):
		code = http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidData):
		code = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotUnique):
		code = http.StatusConflict
	}

	respond.JSON(w, code, model.Error{Code: code, Message: err.Error()})
}
