package quiz

import (
	"context"

	"github.com/prepcheck/prepcheck/internal/domain"
)

type SubjectDatabaseRepo interface {
	GetSubject(ctx context.Context, id domain.SubjectIdentifier) (*domain.Subject, error)
	GetAllSubjects(ctx context.Context) ([]domain.Subject, error)
	SaveSubject(
		ctx context.Context,
		id domain.SubjectIdentifier,
		updateFunc func(s *domain.Subject) (*domain.Subject, error),
	) error
	DeleteSubject(ctx context.Context, id domain.SubjectIdentifier) error

	GetChapter(ctx context.Context, id domain.ChapterIdentifier) (*domain.Chapter, error)
	GetSubjectChapters(ctx context.Context, id domain.SubjectIdentifier) ([]domain.Chapter, error)
	SaveChapter(
		ctx context.Context,
		id domain.ChapterIdentifier,
		updateFunc func(c *domain.Chapter) (*domain.Chapter, error),
	) error
	DeleteChapter(ctx context.Context, id domain.ChapterIdentifier) error

	GetStudyMaterial(ctx context.Context, id domain.StudyMaterialIdentifier) (*domain.StudyMaterial, error)
	GetChapterMaterials(ctx context.Context, id domain.ChapterIdentifier) ([]domain.StudyMaterial, error)
	SaveStudyMaterial(
		ctx context.Context,
		id domain.StudyMaterialIdentifier,
		updateFunc func(m *domain.StudyMaterial) (*domain.StudyMaterial, error),
	) error
	DeleteStudyMaterial(ctx context.Context, id domain.StudyMaterialIdentifier) error
}

type QuestionDatabaseRepo interface {
	GetQuestion(ctx context.Context, id domain.QuestionIdentifier) (*domain.Question, error)
	GetSubjectQuestions(ctx context.Context, id domain.SubjectIdentifier) ([]domain.Question, error)
	GetChapterQuestions(ctx context.Context, id domain.ChapterIdentifier) ([]domain.Question, error)
	SaveQuestion(
		ctx context.Context,
		id domain.QuestionIdentifier,
		updateFunc func(q *domain.Question) (*domain.Question, error),
	) error
	DeleteQuestion(ctx context.Context, id domain.QuestionIdentifier) error
}

type TestDatabaseRepo interface {
	GetMockTest(ctx context.Context, id domain.MockTestIdentifier) (*domain.MockTest, error)
	GetUserMockTests(ctx context.Context, id domain.UserIdentifier) ([]domain.MockTest, error)
	SaveMockTest(
		ctx context.Context,
		id domain.MockTestIdentifier,
		updateFunc func(t *domain.MockTest) (*domain.MockTest, error),
	) error
	DeleteMockTest(ctx context.Context, id domain.MockTestIdentifier) error

	GetAttempt(ctx context.Context, id domain.AttemptIdentifier) (*domain.Attempt, error)
	GetUserAttempts(ctx context.Context, id domain.UserIdentifier) ([]domain.Attempt, error)
	GetAllAttempts(ctx context.Context) ([]domain.Attempt, error)
	SaveAttempt(
		ctx context.Context,
		id domain.AttemptIdentifier,
		updateFunc func(a *domain.Attempt) (*domain.Attempt, error),
	) error
}
