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

// QuestionEndpoint manages the question bank. All routes are restricted to
// administrators, candidates only ever see questions through generated tests.
type QuestionEndpoint struct {
	app           *app.App
	authenticator Authenticator
	validate      Validator
}

func NewQuestionEndpoint(app *app.App, authenticator Authenticator, validator Validator) QuestionEndpoint {
	return QuestionEndpoint{
		app:           app,
		authenticator: authenticator,
		validate:      validator,
	}
}

func (e QuestionEndpoint) GetName() string {
	return "QuestionEndpoint"
}

func (e QuestionEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	apiGroup := g.Mount("/question")
	apiGroup.Use(e.authenticator.LoggedIn(ScopeAdmin))

	apiGroup.HandleFunc("GET /subject/{id}", e.handleSubjectQuestionsGet())
	apiGroup.HandleFunc("POST /new", e.handleCreatePost())
	apiGroup.HandleFunc("GET /{id}", e.handleSingleGet())
	apiGroup.HandleFunc("PUT /{id}", e.handleUpdatePut())
	apiGroup.HandleFunc("DELETE /{id}", e.handleDelete())
}

// handleSubjectQuestionsGet returns the questions of a subject, including the
// solution fields, optionally as a single filtered page.
func (e QuestionEndpoint) handleSubjectQuestionsGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "missing id parameter"})
			return
		}

		questions, err := e.app.GetSubjectQuestions(r.Context(), domain.SubjectIdentifier(id))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, pagedResponse(r, model.NewQuestions(questions, true), tableview.Options{}))
	}
}

// handleSingleGet returns a single question including the solution fields.
func (e QuestionEndpoint) handleSingleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "missing id parameter"})
			return
		}

		question, err := e.app.GetQuestion(r.Context(), domain.QuestionIdentifier(id))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewQuestion(question, true))
	}
}

// handleCreatePost adds a new question to the question bank.
func (e QuestionEndpoint) handleCreatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var question model.Question
		if err := request.BodyJson(r, &question); err != nil {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}

		newQuestion, err := e.app.CreateQuestion(r.Context(), model.NewDomainQuestion(&question))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusCreated, model.NewQuestion(newQuestion, true))
	}
}

// handleUpdatePut updates an existing question.
func (e QuestionEndpoint) handleUpdatePut() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")

		var question model.Question
		if err := request.BodyJson(r, &question); err != nil {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}

		if id != question.Identifier {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "question id mismatch"})
			return
		}

		updatedQuestion, err := e.app.UpdateQuestion(r.Context(), model.NewDomainQuestion(&question))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewQuestion(updatedQuestion, true))
	}
}

// handleDelete removes a question from the question bank.
func (e QuestionEndpoint) handleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "missing id parameter"})
			return
		}

		if err := e.app.DeleteQuestion(r.Context(), domain.QuestionIdentifier(id)); err != nil {
			respondError(w, err)
			return
		}

		respond.Status(w, http.StatusNoContent)
	}
}
