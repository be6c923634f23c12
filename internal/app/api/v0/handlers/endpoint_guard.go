package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/prepcheck/prepcheck/internal/app"
	"github.com/prepcheck/prepcheck/internal/app/api/core/request"
	"github.com/prepcheck/prepcheck/internal/app/api/core/respond"
	"github.com/prepcheck/prepcheck/internal/app/api/v0/model"
	"github.com/prepcheck/prepcheck/internal/app/session"
	"github.com/prepcheck/prepcheck/internal/domain"
)

// GuardEndpoint exposes the navigation guard of the web frontend. All state
// lives in the cookie-backed session store, the endpoints evaluate navigation
// attempts against the locally cached credential without extra database hits.
type GuardEndpoint struct {
	session  *session.Manager
	validate Validator
}

func NewGuardEndpoint(app *app.App, sessionStore session.Store, validator Validator) GuardEndpoint {
	manager := session.NewManager(sessionStore, guardAuthService{app: app}, nil)

	return GuardEndpoint{
		session:  manager,
		validate: validator,
	}
}

func (e GuardEndpoint) GetName() string {
	return "GuardEndpoint"
}

func (e GuardEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	apiGroup := g.Mount("/guard")

	apiGroup.HandleFunc("GET /state", e.handleStateGet())
	apiGroup.HandleFunc("POST /login", e.handleLoginPost())
	apiGroup.HandleFunc("POST /register", e.handleRegisterPost())
	apiGroup.HandleFunc("POST /logout", e.handleLogoutPost())
	apiGroup.HandleFunc("POST /refresh", e.handleRefreshPost())
	apiGroup.HandleFunc("POST /evaluate", e.handleEvaluatePost())
	apiGroup.HandleFunc("POST /unauthorized", e.handleUnauthorizedPost())
}

// handleStateGet returns the current session state and the cached profile.
func (e GuardEndpoint) handleStateGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := e.session.State(r.Context())

		response := struct {
			State   string         `json:"State"`
			Profile *model.Profile `json:"Profile,omitempty"`
		}{
			State: string(state),
		}

		if profile := e.session.CachedProfile(r.Context()); profile != nil && state == session.StateAuthenticated {
			p := model.NewProfile(*profile)
			response.Profile = &p
		}

		respond.JSON(w, http.StatusOK, response)
	}
}

// handleLoginPost authenticates and stores the credential in the session.
func (e GuardEndpoint) handleLoginPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.LoginRequest
		if err := request.BodyJson(r, &req); err != nil {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}
		if err := e.validate.Struct(req); err != nil {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}

		profile, err := e.session.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			respond.JSON(w, http.StatusUnauthorized,
				model.Error{Code: http.StatusUnauthorized, Message: "login failed"})
			return
		}

		respond.JSON(w, http.StatusOK, model.NewProfile(*profile))
	}
}

// handleRegisterPost creates a new account and logs the session in.
func (e GuardEndpoint) handleRegisterPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.RegistrationRequest
		if err := request.BodyJson(r, &req); err != nil {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}
		if err := e.validate.Struct(req); err != nil {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}

		profile, err := e.session.Register(r.Context(), session.RegistrationData{
			Email:    req.Email,
			FullName: req.FullName,
			Password: req.Password,
		})
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusCreated, model.NewProfile(*profile))
	}
}

// handleLogoutPost destroys the session. It always succeeds.
func (e GuardEndpoint) handleLogoutPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e.session.Logout(r.Context())

		respond.Status(w, http.StatusNoContent)
	}
}

// handleRefreshPost re-validates the cached credential against the backend and
// returns the refreshed profile. An invalid credential collapses the session.
func (e GuardEndpoint) handleRefreshPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := e.session.Refresh(r.Context())
		if err != nil {
			respond.JSON(w, http.StatusUnauthorized,
				model.Error{Code: http.StatusUnauthorized, Message: "session no longer available"})
			return
		}

		respond.JSON(w, http.StatusOK, model.NewProfile(*profile))
	}
}

// handleEvaluatePost evaluates a navigation attempt against the session state.
func (e GuardEndpoint) handleEvaluatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.GuardRouteRequest
		if err := request.BodyJson(r, &req); err != nil {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}

		decision := e.session.Evaluate(r.Context(), session.Route{
			Path:          req.Path,
			RequiresAuth:  req.RequiresAuth,
			RequiresAdmin: req.RequiresAdmin,
			GuestOnly:     req.GuestOnly,
		})

		respond.JSON(w, http.StatusOK, model.GuardDecision{
			Proceed:    !decision.ShouldRedirect(),
			RedirectTo: decision.Target,
		})
	}
}

// handleUnauthorizedPost reacts to an observed unauthorized response: the
// session is destroyed and the client is pointed to the login page.
func (e GuardEndpoint) handleUnauthorizedPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.GuardRouteRequest
		if err := request.BodyJson(r, &req); err != nil {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}

		decision := e.session.HandleUnauthorized(r.Context(), req.Path)

		respond.JSON(w, http.StatusOK, model.GuardDecision{
			Proceed:    !decision.ShouldRedirect(),
			RedirectTo: decision.Target,
		})
	}
}

// guardAuthService bridges the session manager to the application backend.
type guardAuthService struct {
	app *app.App
}

func (s guardAuthService) Login(ctx context.Context, email, password string) (string, domain.Profile, error) {
	user, token, err := s.app.PlainLogin(ctx, email, password)
	if err != nil {
		return "", domain.Profile{}, fmt.Errorf("%w: %v", session.ErrUnauthorized, err)
	}

	return token, user.ToProfile(), nil
}

func (s guardAuthService) Register(
	ctx context.Context,
	registration session.RegistrationData,
) (string, domain.Profile, error) {
	user, token, err := s.app.Register(ctx, registration.Email, registration.FullName, registration.Password)
	if err != nil {
		return "", domain.Profile{}, err
	}

	return token, user.ToProfile(), nil
}

func (s guardAuthService) Logout(ctx context.Context, token string) error {
	return s.app.Logout(ctx, token)
}

func (s guardAuthService) GetProfile(ctx context.Context, token string) (domain.Profile, error) {
	_, user, err := s.app.AuthenticateContext(ctx, token)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("%w: %v", session.ErrUnauthorized, err)
	}

	return user.ToProfile(), nil
}
