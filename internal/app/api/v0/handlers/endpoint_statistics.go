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

type StatisticsEndpoint struct {
	app           *app.App
	authenticator Authenticator
}

func NewStatisticsEndpoint(app *app.App, authenticator Authenticator) StatisticsEndpoint {
	return StatisticsEndpoint{
		app:           app,
		authenticator: authenticator,
	}
}

func (e StatisticsEndpoint) GetName() string {
	return "StatisticsEndpoint"
}

func (e StatisticsEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	apiGroup := g.Mount("/stats")
	apiGroup.Use(e.authenticator.LoggedIn())

	apiGroup.HandleFunc("GET /me", e.handleOwnStatsGet())
	apiGroup.With(e.authenticator.UserIdMatch("id")).HandleFunc("GET /user/{id}", e.handleUserStatsGet())
	apiGroup.With(e.authenticator.LoggedIn(ScopeAdmin)).HandleFunc("GET /overview", e.handleOverviewGet())
}

// handleOwnStatsGet returns the attempt statistics of the current user.
func (e StatisticsEndpoint) handleOwnStatsGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info := domain.GetUserInfo(r.Context())

		stats, err := e.app.GetUserStatistics(r.Context(), info.Id)
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewUserStatistics(stats))
	}
}

// handleUserStatsGet returns the attempt statistics of the given user.
func (e StatisticsEndpoint) handleUserStatsGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := Base64UrlDecode(request.Path(r, "id"))
		if id == "" {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "missing id parameter"})
			return
		}

		stats, err := e.app.GetUserStatistics(r.Context(), domain.UserIdentifier(id))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewUserStatistics(stats))
	}
}

// handleOverviewGet returns the portal-wide counters for the admin dashboard.
func (e StatisticsEndpoint) handleOverviewGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		overview, err := e.app.GetAdminOverview(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewAdminOverview(overview))
	}
}
