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

type SubjectEndpoint struct {
	app           *app.App
	authenticator Authenticator
	validate      Validator
}

func NewSubjectEndpoint(app *app.App, authenticator Authenticator, validator Validator) SubjectEndpoint {
	return SubjectEndpoint{
		app:           app,
		authenticator: authenticator,
		validate:      validator,
	}
}

func (e SubjectEndpoint) GetName() string {
	return "SubjectEndpoint"
}

func (e SubjectEndpoint) RegisterRoutes(g *routegroup.Bundle) {
	apiGroup := g.Mount("/subject")
	apiGroup.Use(e.authenticator.LoggedIn())

	apiGroup.HandleFunc("GET /all", e.handleAllGet())
	apiGroup.With(e.authenticator.LoggedIn(ScopeAdmin)).HandleFunc("POST /new", e.handleCreatePost())
	apiGroup.HandleFunc("GET /{id}", e.handleSingleGet())
	apiGroup.With(e.authenticator.LoggedIn(ScopeAdmin)).HandleFunc("PUT /{id}", e.handleUpdatePut())
	apiGroup.With(e.authenticator.LoggedIn(ScopeAdmin)).HandleFunc("DELETE /{id}", e.handleDelete())
	apiGroup.HandleFunc("GET /{id}/chapters", e.handleChaptersGet())

	chapterGroup := g.Mount("/chapter")
	chapterGroup.Use(e.authenticator.LoggedIn())

	chapterGroup.With(e.authenticator.LoggedIn(ScopeAdmin)).HandleFunc("POST /new", e.handleChapterCreatePost())
	chapterGroup.With(e.authenticator.LoggedIn(ScopeAdmin)).HandleFunc("PUT /{id}", e.handleChapterUpdatePut())
	chapterGroup.With(e.authenticator.LoggedIn(ScopeAdmin)).HandleFunc("DELETE /{id}", e.handleChapterDelete())
	chapterGroup.HandleFunc("GET /{id}/materials", e.handleMaterialsGet())

	materialGroup := g.Mount("/material")
	materialGroup.Use(e.authenticator.LoggedIn())

	materialGroup.With(e.authenticator.LoggedIn(ScopeAdmin)).HandleFunc("POST /new", e.handleMaterialCreatePost())
	materialGroup.With(e.authenticator.LoggedIn(ScopeAdmin)).HandleFunc("DELETE /{id}", e.handleMaterialDelete())
}

// handleAllGet returns all subjects.
func (e SubjectEndpoint) handleAllGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjects, err := e.app.GetAllSubjects(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewSubjects(subjects))
	}
}

// handleSingleGet returns a single subject.
func (e SubjectEndpoint) handleSingleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "missing id parameter"})
			return
		}

		subject, err := e.app.GetSubject(r.Context(), domain.SubjectIdentifier(id))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewSubject(subject))
	}
}

// handleCreatePost creates a new subject.
func (e SubjectEndpoint) handleCreatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var subject model.Subject
		if err := request.BodyJson(r, &subject); err != nil {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}

		newSubject, err := e.app.CreateSubject(r.Context(), model.NewDomainSubject(&subject))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusCreated, model.NewSubject(newSubject))
	}
}

// handleUpdatePut updates an existing subject.
func (e SubjectEndpoint) handleUpdatePut() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")

		var subject model.Subject
		if err := request.BodyJson(r, &subject); err != nil {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}

		if id != subject.Identifier {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "subject id mismatch"})
			return
		}

		updatedSubject, err := e.app.UpdateSubject(r.Context(), model.NewDomainSubject(&subject))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewSubject(updatedSubject))
	}
}

// handleDelete removes a subject together with its chapters and questions.
func (e SubjectEndpoint) handleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "missing id parameter"})
			return
		}

		if err := e.app.DeleteSubject(r.Context(), domain.SubjectIdentifier(id)); err != nil {
			respondError(w, err)
			return
		}

		respond.Status(w, http.StatusNoContent)
	}
}

// handleChaptersGet returns the chapters of a subject, ordered by their
// position in the syllabus.
func (e SubjectEndpoint) handleChaptersGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "missing id parameter"})
			return
		}

		chapters, err := e.app.GetSubjectChapters(r.Context(), domain.SubjectIdentifier(id))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewChapters(chapters))
	}
}

// handleChapterCreatePost creates a new chapter.
func (e SubjectEndpoint) handleChapterCreatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var chapter model.Chapter
		if err := request.BodyJson(r, &chapter); err != nil {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}

		newChapter, err := e.app.CreateChapter(r.Context(), model.NewDomainChapter(&chapter))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusCreated, model.NewChapter(newChapter))
	}
}

// handleChapterUpdatePut updates an existing chapter.
func (e SubjectEndpoint) handleChapterUpdatePut() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")

		var chapter model.Chapter
		if err := request.BodyJson(r, &chapter); err != nil {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}

		if id != chapter.Identifier {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "chapter id mismatch"})
			return
		}

		updatedChapter, err := e.app.UpdateChapter(r.Context(), model.NewDomainChapter(&chapter))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewChapter(updatedChapter))
	}
}

// handleChapterDelete removes a chapter together with its questions.
func (e SubjectEndpoint) handleChapterDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "missing id parameter"})
			return
		}

		if err := e.app.DeleteChapter(r.Context(), domain.ChapterIdentifier(id)); err != nil {
			respondError(w, err)
			return
		}

		respond.Status(w, http.StatusNoContent)
	}
}

// handleMaterialsGet returns the study materials of a chapter.
func (e SubjectEndpoint) handleMaterialsGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "missing id parameter"})
			return
		}

		materials, err := e.app.GetChapterMaterials(r.Context(), domain.ChapterIdentifier(id))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, model.NewStudyMaterials(materials))
	}
}

// handleMaterialCreatePost attaches a new study material to a chapter.
func (e SubjectEndpoint) handleMaterialCreatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var material model.StudyMaterial
		if err := request.BodyJson(r, &material); err != nil {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: err.Error()})
			return
		}

		newMaterial, err := e.app.CreateStudyMaterial(r.Context(), model.NewDomainStudyMaterial(&material))
		if err != nil {
			respondError(w, err)
			return
		}

		respond.JSON(w, http.StatusCreated, model.NewStudyMaterial(newMaterial))
	}
}

// handleMaterialDelete removes a study material.
func (e SubjectEndpoint) handleMaterialDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := request.Path(r, "id")
		if id == "" {
			respond.JSON(w, http.StatusBadRequest,
				model.Error{Code: http.StatusBadRequest, Message: "missing id parameter"})
			return
		}

		if err := e.app.DeleteStudyMaterial(r.Context(), domain.StudyMaterialIdentifier(id)); err != nil {
			respondError(w, err)
			return
		}

		respond.Status(w, http.StatusNoContent)
	}
}
