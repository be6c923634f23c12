package handlers

import (
	"net/http"

	"github.com/go-pkgz/routegroup"

	"github.com/prepcheck/prepcheck/internal/app"
	"github.com/prepcheck/prepcheck/internal/app/api/core/request"
	"github.com/prepcheck/prepcheck/internal/app/api/core/respond"
	"github.com/prepcheck/prepcheck/internal/app/api/v0/model"
	"github.com/prepcheck/prepcheck/internal/app/tableview"
	"github.com/prepcheck/prepcheck/internal/domain"
)

type NotificationEndpoint struct {
	app           *app.App
	authenticator Authenticator
	validate      Validator
}

func NewNotificationEndpoint(app *app.App, authenticator Authenticator, validator Validator) NotificationEndpoint {
	return NotificationEndpoint{
		app:           app,
		authenticator: authenticator,
		validate:      validator,
	}
}

func (e NotificationEndpoint) GetName() string {
	return "NotificationEndpoint"
}

func (e NotificationEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	apiGroup := g.Mount("/notification")
	apiGroup.Use(e.authenticator.LoggedIn())

	apiGroup.HandleFunc("GET /all", e.handleAllGet())
	apiGroup.With(e.authenticator.LoggedIn(ScopeAdmin)).HandleFunc("POST /new", e.handleCreatePost())
	apiGroup.HandleFunc("POST /{id}/read", e.handleReadPost())
	apiGroup.HandleFunc("DELETE /{id}", e.handleDelete())
}

// handleAllGet returns the notification feed of the current user, newest
// first, optionally as a single page. Expired entries are filtered out.
func (e NotificationEndpoint) handleAllGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info := domain.GetUserInfo(r.Context())

		notifications, err := e.app.GetUserNotifications(r.Context(), info.Id)
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, pagedResponse(r, model.NewNotifications(notifications), tableview.Options{}))
	}
}

// handleCreatePost sends a notification to a user.
func (e NotificationEndpoint) handleCreatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.NotificationRequest
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

		notification, err := e.app.Notify(r.Context(), model.NewDomainNotification(&req))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusCreated, model.NewNotification(notification))
	}
}

// handleReadPost marks a notification as read. Marking an already read
// notification again is a no-op.
func (e NotificationEndpoint) handleReadPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "missing id parameter"})
			return
		}

		if err := e.app.MarkRead(r.Context(), domain.NotificationIdentifier(id)); err != nil {
			respondError(w, err)
			return
		}

		respond.Status(w, http.StatusNoContent)
	}
}

// handleDelete dismisses a notification from the feed.
func (e NotificationEndpoint) handleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "missing id parameter"})
			return
		}

		if err := e.app.Dismiss(r.Context(), domain.NotificationIdentifier(id)); err != nil {
			respondError(w, err)
			return
		}

		respond.Status(w, http.StatusNoContent)
	}
}
