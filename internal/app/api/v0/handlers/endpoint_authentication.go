package handlers

import (
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/prepcheck/prepcheck/internal/app"
	"github.com/prepcheck/prepcheck/internal/app/api/core/request"
	"github.com/prepcheck/prepcheck/internal/app/api/core/respond"
	"github.com/prepcheck/prepcheck/internal/app/api/v0/model"
	"github.com/prepcheck/prepcheck/internal/domain"
)

type AuthEndpoint struct {
	app           *app.App
	authenticator Authenticator
	validate      Validator
}

func NewAuthEndpoint(app *app.App, authenticator Authenticator, validator Validator) AuthEndpoint {
	return AuthEndpoint{
		app:           app,
		authenticator: authenticator,
		validate:      validator,
	}
}

func (e AuthEndpoint) GetName() string {
	return "AuthEndpoint"
}

func (e AuthEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	apiGroup := g.Mount("/auth")

	apiGroup.HandleFunc("GET /settings", e.handleSettingsGet())
	apiGroup.HandleFunc("POST /login", e.handleLoginPost())
	apiGroup.HandleFunc("POST /register", e.handleRegisterPost())
	apiGroup.With(e.authenticator.LoggedIn()).HandleFunc("POST /logout", e.handleLogoutPost())
	apiGroup.With(e.authenticator.LoggedIn()).HandleFunc("GET /session", e.handleSessionInfoGet())
	apiGroup.With(e.authenticator.LoggedIn()).HandleFunc("POST /password", e.handlePasswordPost())
}

// handleSettingsGet returns the authentication related settings of the portal.
func (e AuthEndpoint) handleSettingsGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, model.Settings{
			SelfRegistrationAllowed: e.app.Config.Core.SelfRegistrationAllowed,
			MinPasswordLength:       e.app.Config.Auth.MinPasswordLength,
		})
	}
}

// handleLoginPost authenticates with email and password and returns a bearer
// token together with the user profile.
func (e AuthEndpoint) handleLoginPost() http.HandlerFunc {
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

		user, token, err := e.app.PlainLogin(r.Context(), req.Email, req.Password)
		if err != nil {
			respond.JSON(w, http.StatusUnauthorized,
				model.Error{Code: http.StatusUnauthorized, Message: "login failed"})
			return
		}

		respond.JSON(w, http.StatusOK, model.AuthResponse{
			Token: token,
			User:  model.NewProfile(user.ToProfile()),
		})
	}
}

// handleRegisterPost creates a new account and immediately logs it in.
func (e AuthEndpoint) handleRegisterPost() http.HandlerFunc {
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

		user, token, err := e.app.Register(r.Context(), req.Email, req.FullName, req.Password)
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusCreated, model.AuthResponse{
			Token: token,
			User:  model.NewProfile(user.ToProfile()),
		})
	}
}

// handleLogoutPost records the logout of the presented token. Tokens are
// stateless, the client is expected to discard its copy.
func (e AuthEndpoint) handleLogoutPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := e.app.Logout(r.Context(), request.BearerToken(r)); err != nil {
			respondError(w, err)
			return
		}

		respond.Status(w, http.StatusNoContent)
	}
}

// handleSessionInfoGet returns information about the currently logged-in user.
func (e AuthEndpoint) handleSessionInfoGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info := domain.GetUserInfo(r.Context())

		uid := string(info.Id)
		sessionInfo := model.SessionInfo{
			LoggedIn:       true,
			IsAdmin:        info.IsAdmin,
			UserIdentifier: &uid,
		}

		if user, err := e.app.GetUser(r.Context(), info.Id); err == nil {
			sessionInfo.UserFullName = &user.FullName
			sessionInfo.UserEmail = &user.Email
		}

		respond.JSON(w, http.StatusOK, sessionInfo)
	}
}

// handlePasswordPost changes the password of the current user.
func (e AuthEndpoint) handlePasswordPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.PasswordChangeRequest
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

		info := domain.GetUserInfo(r.Context())
		if err := e.app.ChangePassword(r.Context(), info.Id, req.OldPassword, req.NewPassword); err != nil {
			respondError(w, err)
			return
		}

		respond.Status(w, http.StatusNoContent)
	}
}
