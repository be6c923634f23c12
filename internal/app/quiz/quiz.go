// Package quiz contains the exam preparation core: subject and chapter
// management, the question bank, weightage based mock test generation and
// attempt grading.
package quiz

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	evbus "github.com/vardius/message-bus"

	"github.com/prepcheck/prepcheck/internal/config"
	"github.com/prepcheck/prepcheck/internal/domain"
)

type Manager struct {
	cfg *config.Config
	bus evbus.MessageBus

	subjects  SubjectDatabaseRepo
	questions QuestionDatabaseRepo
	tests     TestDatabaseRepo
}

func NewQuizManager(
	cfg *config.Config,
	bus evbus.MessageBus,
	subjects SubjectDatabaseRepo,
	questions QuestionDatabaseRepo,
	tests TestDatabaseRepo,
) (*Manager, error) {
	m := &Manager{
		cfg: cfg,
		bus: bus,

		subjects:  subjects,
		questions: questions,
		tests:     tests,
	}
	return m, nil
}

// region subjects

func (m Manager) GetSubject(ctx context.Context, id domain.SubjectIdentifier) (*domain.Subject, error) {
	subject, err := m.subjects.GetSubject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("unable to load subject %s: %w", id, err)
	}

	questions, _ := m.questions.GetSubjectQuestions(ctx, id) // ignore error, count will be 0 in error case
	subject.QuestionCount = len(questions)

	return subject, nil
}

func (m Manager) GetAllSubjects(ctx context.Context) ([]domain.Subject, error) {
	subjects, err := m.subjects.GetAllSubjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load subjects: %w", err)
	}

	return subjects, nil
}

func (m Manager) CreateSubject(ctx context.Context, subject *domain.Subject) (*domain.Subject, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	if subject.Name == "" {
		return nil, fmt.Errorf("missing subject name: %w", domain.ErrInvalidData)
	}
	if subject.Identifier == "" {
		subject.Identifier = domain.SubjectIdentifier(uuid.New().String())
	}

	existing, err := m.subjects.GetSubject(ctx, subject.Identifier)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("unable to load existing subject %s: %w", subject.Identifier, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("subject %s already exists: %w", subject.Identifier, domain.ErrNotUnique)
	}

	err = m.subjects.SaveSubject(ctx, subject.Identifier, func(s *domain.Subject) (*domain.Subject, error) {
		s.Identifier = subject.Identifier
		s.Name = subject.Name
		s.Description = subject.Description
		s.SubjectCode = subject.SubjectCode
		s.PaperType = subject.PaperType
		return s, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save subject: %w", err)
	}

	return subject, nil
}

func (m Manager) UpdateSubject(ctx context.Context, subject *domain.Subject) (*domain.Subject, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	existing, err := m.subjects.GetSubject(ctx, subject.Identifier)
	if err != nil {
		return nil, fmt.Errorf("unable to load existing subject %s: %w", subject.Identifier, err)
	}

	err = m.subjects.SaveSubject(ctx, existing.Identifier, func(s *domain.Subject) (*domain.Subject, error) {
		s.Name = subject.Name
		s.Description = subject.Description
		s.SubjectCode = subject.SubjectCode
		s.PaperType = subject.PaperType
		s.Disabled = subject.Disabled
		return s, nil
	})
	if err != nil {
		return nil, fmt.Errorf("update failure: %w", err)
	}

	return subject, nil
}

func (m Manager) DeleteSubject(ctx context.Context, id domain.SubjectIdentifier) error {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return err
	}

	if _, err := m.subjects.GetSubject(ctx, id); err != nil {
		return fmt.Errorf("unable to find subject %s: %w", id, err)
	}

	if err := m.subjects.DeleteSubject(ctx, id); err != nil {
		return fmt.Errorf("deletion failure: %w", err)
	}

	return nil
}

// endregion subjects

// region chapters

func (m Manager) GetSubjectChapters(ctx context.Context, id domain.SubjectIdentifier) ([]domain.Chapter, error) {
	chapters, err := m.subjects.GetSubjectChapters(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("unable to load chapters of subject %s: %w", id, err)
	}

	return chapters, nil
}

func (m Manager) CreateChapter(ctx context.Context, chapter *domain.Chapter) (*domain.Chapter, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	if chapter.Name == "" {
		return nil, fmt.Errorf("missing chapter name: %w", domain.ErrInvalidData)
	}
	if chapter.Weightage < 0 || chapter.Weightage > 100 {
		return nil, fmt.Errorf("weightage must be between 0 and 100: %w", domain.ErrInvalidData)
	}
	if _, err := m.subjects.GetSubject(ctx, chapter.SubjectId); err != nil {
		return nil, fmt.Errorf("unable to find subject %s: %w", chapter.SubjectId, err)
	}
	if chapter.Identifier == "" {
		chapter.Identifier = domain.ChapterIdentifier(uuid.New().String())
	}

	err := m.subjects.SaveChapter(ctx, chapter.Identifier, func(c *domain.Chapter) (*domain.Chapter, error) {
		c.Identifier = chapter.Identifier
		c.SubjectId = chapter.SubjectId
		c.Name = chapter.Name
		c.Description = chapter.Description
		c.Weightage = chapter.Weightage
		c.ChapterOrder = chapter.ChapterOrder
		return c, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save chapter: %w", err)
	}

	return chapter, nil
}

func (m Manager) UpdateChapter(ctx context.Context, chapter *domain.Chapter) (*domain.Chapter, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	if chapter.Weightage < 0 || chapter.Weightage > 100 {
		return nil, fmt.Errorf("weightage must be between 0 and 100: %w", domain.ErrInvalidData)
	}

	existing, err := m.subjects.GetChapter(ctx, chapter.Identifier)
	if err != nil {
		return nil, fmt.Errorf("unable to load existing chapter %s: %w", chapter.Identifier, err)
	}

	err = m.subjects.SaveChapter(ctx, existing.Identifier, func(c *domain.Chapter) (*domain.Chapter, error) {
		c.Name = chapter.Name
		c.Description = chapter.Description
		c.Weightage = chapter.Weightage
		c.ChapterOrder = chapter.ChapterOrder
		c.Disabled = chapter.Disabled
		return c, nil
	})
	if err != nil {
		return nil, fmt.Errorf("update failure: %w", err)
	}

	return chapter, nil
}

func (m Manager) DeleteChapter(ctx context.Context, id domain.ChapterIdentifier) error {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return err
	}

	if _, err := m.subjects.GetChapter(ctx, id); err != nil {
		return fmt.Errorf("unable to find chapter %s: %w", id, err)
	}

	if err := m.subjects.DeleteChapter(ctx, id); err != nil {
		return fmt.Errorf("deletion failure: %w", err)
	}

	return nil
}

// endregion chapters

// region study-materials

func (m Manager) GetChapterMaterials(
	ctx context.Context,
	id domain.ChapterIdentifier,
) ([]domain.StudyMaterial, error) {
	materials, err := m.subjects.GetChapterMaterials(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("unable to load materials of chapter %s: %w", id, err)
	}

	return materials, nil
}

func (m Manager) CreateStudyMaterial(
	ctx context.Context,
	material *domain.StudyMaterial,
) (*domain.StudyMaterial, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	if material.Title == "" {
		return nil, fmt.Errorf("missing material title: %w", domain.ErrInvalidData)
	}
	if _, err := m.subjects.GetChapter(ctx, material.ChapterId); err != nil {
		return nil, fmt.Errorf("unable to find chapter %s: %w", material.ChapterId, err)
	}
	if material.Identifier == "" {
		material.Identifier = domain.StudyMaterialIdentifier(uuid.New().String())
	}

	err := m.subjects.SaveStudyMaterial(ctx, material.Identifier,
		func(sm *domain.StudyMaterial) (*domain.StudyMaterial, error) {
			sm.Identifier = material.Identifier
			sm.ChapterId = material.ChapterId
			sm.Title = material.Title
			sm.Description = material.Description
			sm.Content = material.Content
			sm.MaterialType = material.MaterialType
			sm.Url = material.Url
			return sm, nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to save material: %w", err)
	}

	return material, nil
}

func (m Manager) DeleteStudyMaterial(ctx context.Context, id domain.StudyMaterialIdentifier) error {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return err
	}

	if _, err := m.subjects.GetStudyMaterial(ctx, id); err != nil {
		return fmt.Errorf("unable to find material %s: %w", id, err)
	}

	if err := m.subjects.DeleteStudyMaterial(ctx, id); err != nil {
		return fmt.Errorf("deletion failure: %w", err)
	}

	return nil
}

// endregion study-materials

// region questions

func (m Manager) GetQuestion(ctx context.Context, id domain.QuestionIdentifier) (*domain.Question, error) {
	question, err := m.questions.GetQuestion(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("unable to load question %s: %w", id, err)
	}

	return question, nil
}

func (m Manager) GetSubjectQuestions(
	ctx context.Context,
	id domain.SubjectIdentifier,
) ([]domain.Question, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	questions, err := m.questions.GetSubjectQuestions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("unable to load questions of subject %s: %w", id, err)
	}

	return questions, nil
}

func (m Manager) CreateQuestion(ctx context.Context, question *domain.Question) (*domain.Question, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	if err := question.Validate(); err != nil {
		return nil, fmt.Errorf("invalid question: %w", err)
	}
	chapter, err := m.subjects.GetChapter(ctx, question.ChapterId)
	if err != nil {
		return nil, fmt.Errorf("unable to find chapter %s: %w", question.ChapterId, err)
	}
	if question.Identifier == "" {
		question.Identifier = domain.QuestionIdentifier(uuid.New().String())
	}
	if question.Source == "" {
		question.Source = domain.QuestionSourceManual
	}
	question.SubjectId = chapter.SubjectId

	err = m.questions.SaveQuestion(ctx, question.Identifier, func(q *domain.Question) (*domain.Question, error) {
		q.Identifier = question.Identifier
		q.SubjectId = question.SubjectId
		q.ChapterId = question.ChapterId
		q.Text = question.Text
		q.OptionA = question.OptionA
		q.OptionB = question.OptionB
		q.OptionC = question.OptionC
		q.OptionD = question.OptionD
		q.CorrectOption = question.CorrectOption
		q.Explanation = question.Explanation
		q.Topic = question.Topic
		q.Difficulty = question.Difficulty
		q.Marks = question.Marks
		q.Source = question.Source
		q.Year = question.Year
		return q, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save question: %w", err)
	}

	return question, nil
}

func (m Manager) UpdateQuestion(ctx context.Context, question *domain.Question) (*domain.Question, error) {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return nil, err
	}

	if err := question.Validate(); err != nil {
		return nil, fmt.Errorf("invalid question: %w", err)
	}

	existing, err := m.questions.GetQuestion(ctx, question.Identifier)
	if err != nil {
		return nil, fmt.Errorf("unable to load existing question %s: %w", question.Identifier, err)
	}

	err = m.questions.SaveQuestion(ctx, existing.Identifier, func(q *domain.Question) (*domain.Question, error) {
		q.Text = question.Text
		q.OptionA = question.OptionA
		q.OptionB = question.OptionB
		q.OptionC = question.OptionC
		q.OptionD = question.OptionD
		q.CorrectOption = question.CorrectOption
		q.Explanation = question.Explanation
		q.Topic = question.Topic
		q.Difficulty = question.Difficulty
		q.Marks = question.Marks
		q.Year = question.Year
		q.Verified = question.Verified
		q.Disabled = question.Disabled
		return q, nil
	})
	if err != nil {
		return nil, fmt.Errorf("update failure: %w", err)
	}

	return question, nil
}

func (m Manager) DeleteQuestion(ctx context.Context, id domain.QuestionIdentifier) error {
	if err := domain.ValidateAdminAccessRights(ctx); err != nil {
		return err
	}

	if _, err := m.questions.GetQuestion(ctx, id); err != nil {
		return fmt.Errorf("unable to find question %s: %w", id, err)
	}

	if err := m.questions.DeleteQuestion(ctx, id); err != nil {
		return fmt.Errorf("deletion failure: %w", err)
	}

	return nil
}

// endregion questions
