package handlers

import (
	"net/http"
	"time"

	"github.com/go-pkgz/routegroup"

	"github.com/prepcheck/prepcheck/internal/app"
	"github.com/prepcheck/prepcheck/internal/app/api/core/request"
	"github.com/prepcheck/prepcheck/internal/app/api/core/respond"
	"github.com/prepcheck/prepcheck/internal/app/api/v0/model"
	"github.com/prepcheck/prepcheck/internal/app/tableview"
	"github.com/prepcheck/prepcheck/internal/domain"
)

// TestEndpoint covers the candidate-facing exam flow: generating mock tests,
// starting attempts and submitting answers for grading.
type TestEndpoint struct {
	app           *app.App
	authenticator Authenticator
	validate      Validator
}

func NewTestEndpoint(app *app.App, authenticator Authenticator, validator Validator) TestEndpoint {
	return TestEndpoint{
		app:           app,
		authenticator: authenticator,
		validate:      validator,
	}
}

func (e TestEndpoint) GetName() string {
	return "TestEndpoint"
}

func (e TestEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	apiGroup := g.Mount("/test")
	apiGroup.Use(e.authenticator.LoggedIn())

	apiGroup.HandleFunc("POST /generate", e.handleGeneratePost())
	apiGroup.HandleFunc("GET /my", e.handleMyTestsGet())
	apiGroup.HandleFunc("GET /{id}", e.handleSingleGet())
	apiGroup.HandleFunc("POST /{id}/attempt", e.handleAttemptStartPost())

	attemptGroup := g.Mount("/attempt")
	attemptGroup.Use(e.authenticator.LoggedIn())

	attemptGroup.HandleFunc("GET /my", e.handleMyAttemptsGet())
	attemptGroup.HandleFunc("GET /{id}", e.handleAttemptGet())
	attemptGroup.HandleFunc("POST /{id}/submit", e.handleAttemptSubmitPost())
}

// handleGeneratePost generates a new mock test for the current user. Questions
// are drawn from the subject's chapters according to their weightage.
func (e TestEndpoint) handleGeneratePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.TestGenerationRequest
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

		spec := domain.TestSpec{
			SubjectId:     domain.SubjectIdentifier(req.SubjectId),
			Title:         req.Title,
			QuestionCount: req.QuestionCount,
			Duration:      time.Duration(req.DurationMinutes) * time.Minute,
		}
		if len(req.Weightage) > 0 {
			spec.Weightage = make(map[domain.ChapterIdentifier]int, len(req.Weightage))
			for id, weightage := range req.Weightage {
				spec.Weightage[domain.ChapterIdentifier(id)] = weightage
			}
		}

		test, err := e.app.GenerateMockTest(r.Context(), spec)
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusCreated, model.NewMockTest(test))
	}
}

// handleMyTestsGet returns the mock tests generated by the current user.
func (e TestEndpoint) handleMyTestsGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info := domain.GetUserInfo(r.Context())

		tests, err := e.app.GetUserMockTests(r.Context(), info.Id)
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewMockTests(tests))
	}
}

// handleSingleGet returns a mock test with its questions. The solution fields
// are never included.
func (e TestEndpoint) handleSingleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "missing id parameter"})
			return
		}

		test, err := e.app.GetMockTest(r.Context(), domain.MockTestIdentifier(id))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewMockTest(test))
	}
}

// handleAttemptStartPost starts a new attempt on the given mock test.
func (e TestEndpoint) handleAttemptStartPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "missing id parameter"})
			return
		}

		attempt, err := e.app.StartAttempt(r.Context(), domain.MockTestIdentifier(id))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusCreated, model.NewAttempt(attempt))
	}
}

// handleMyAttemptsGet returns the attempt history of the current user,
// optionally as a single page.
func (e TestEndpoint) handleMyAttemptsGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info := domain.GetUserInfo(r.Context())

		attempts, err := e.app.GetUserAttempts(r.Context(), info.Id)
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, pagedResponse(r, model.NewAttempts(attempts), tableview.Options{
			DefaultSort: "StartedAt",
		}))
	}
}

// handleAttemptGet returns a single attempt including the grading results.
func (e TestEndpoint) handleAttemptGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "missing id parameter"})
			return
		}

		attempt, err := e.app.GetAttempt(r.Context(), domain.AttemptIdentifier(id))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewAttempt(attempt))
	}
}

// handleAttemptSubmitPost submits the answers of an attempt for grading.
func (e TestEndpoint) handleAttemptSubmitPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "missing id parameter"})
			return
		}

		var req model.AnswerSubmission
		if err := request.BodyJson(r, &req); err != nil {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}

		answers := make(domain.AnswerSet, len(req.Answers))
		for questionId, option := range req.Answers {
			answers[domain.QuestionIdentifier(questionId)] = option
		}

		attempt, err := e.app.SubmitAttempt(r.Context(), domain.AttemptIdentifier(id), answers)
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewAttempt(attempt))
	}
}
