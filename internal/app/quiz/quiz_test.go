package quiz

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	evbus "github.com/vardius/message-bus"

	"github.com/prepcheck/prepcheck/internal/config"
	"github.com/prepcheck/prepcheck/internal/domain"
)

// region in-memory repos

type memQuizRepo struct {
	subjects  map[domain.SubjectIdentifier]*domain.Subject
	chapters  map[domain.ChapterIdentifier]*domain.Chapter
	materials map[domain.StudyMaterialIdentifier]*domain.StudyMaterial
	questions map[domain.QuestionIdentifier]*domain.Question
	tests     map[domain.MockTestIdentifier]*domain.MockTest
	attempts  map[domain.AttemptIdentifier]*domain.Attempt
}

func newMemQuizRepo() *memQuizRepo {
	return &memQuizRepo{
		subjects:  make(map[domain.SubjectIdentifier]*domain.Subject),
		chapters:  make(map[domain.ChapterIdentifier]*domain.Chapter),
		materials: make(map[domain.StudyMaterialIdentifier]*domain.StudyMaterial),
		questions: make(map[domain.QuestionIdentifier]*domain.Question),
		tests:     make(map[domain.MockTestIdentifier]*domain.MockTest),
		attempts:  make(map[domain.AttemptIdentifier]*domain.Attempt),
	}
}

func (r *memQuizRepo) GetSubject(_ context.Context, id domain.SubjectIdentifier) (*domain.Subject, error) {
	if s, ok := r.subjects[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memQuizRepo) GetAllSubjects(_ context.Context) ([]domain.Subject, error) {
	all := make([]domain.Subject, 0, len(r.subjects))
	for _, s := range r.subjects {
		all = append(all, *s)
	}
	return all, nil
}

func (r *memQuizRepo) SaveSubject(
	_ context.Context,
	id domain.SubjectIdentifier,
	updateFunc func(s *domain.Subject) (*domain.Subject, error),
) error {
	s, ok := r.subjects[id]
	if !ok {
		s = &domain.Subject{Identifier: id}
	}
	updated, err := updateFunc(s)
	if err != nil {
		return err
	}
	r.subjects[id] = updated
	return nil
}

func (r *memQuizRepo) DeleteSubject(_ context.Context, id domain.SubjectIdentifier) error {
	delete(r.subjects, id)
	return nil
}

func (r *memQuizRepo) GetChapter(_ context.Context, id domain.ChapterIdentifier) (*domain.Chapter, error) {
	if c, ok := r.chapters[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memQuizRepo) GetSubjectChapters(
	_ context.Context,
	id domain.SubjectIdentifier,
) ([]domain.Chapter, error) {
	var chapters []domain.Chapter
	for _, c := range r.chapters {
		if c.SubjectId == id {
			chapters = append(chapters, *c)
		}
	}
	return chapters, nil
}

func (r *memQuizRepo) SaveChapter(
	_ context.Context,
	id domain.ChapterIdentifier,
	updateFunc func(c *domain.Chapter) (*domain.Chapter, error),
) error {
	c, ok := r.chapters[id]
	if !ok {
		c = &domain.Chapter{Identifier: id}
	}
	updated, err := updateFunc(c)
	if err != nil {
		return err
	}
	r.chapters[id] = updated
	return nil
}

func (r *memQuizRepo) DeleteChapter(_ context.Context, id domain.ChapterIdentifier) error {
	delete(r.chapters, id)
	return nil
}

func (r *memQuizRepo) GetStudyMaterial(
	_ context.Context,
	id domain.StudyMaterialIdentifier,
) (*domain.StudyMaterial, error) {
	if m, ok := r.materials[id]; ok {
		copied := *m
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memQuizRepo) GetChapterMaterials(
	_ context.Context,
	id domain.ChapterIdentifier,
) ([]domain.StudyMaterial, error) {
	var materials []domain.StudyMaterial
	for _, m := range r.materials {
		if m.ChapterId == id {
			materials = append(materials, *m)
		}
	}
	return materials, nil
}

func (r *memQuizRepo) SaveStudyMaterial(
	_ context.Context,
	id domain.StudyMaterialIdentifier,
	updateFunc func(m *domain.StudyMaterial) (*domain.StudyMaterial, error),
) error {
	m, ok := r.materials[id]
	if !ok {
		m = &domain.StudyMaterial{Identifier: id}
	}
	updated, err := updateFunc(m)
	if err != nil {
		return err
	}
	r.materials[id] = updated
	return nil
}

func (r *memQuizRepo) DeleteStudyMaterial(_ context.Context, id domain.StudyMaterialIdentifier) error {
	delete(r.materials, id)
	return nil
}

func (r *memQuizRepo) GetQuestion(_ context.Context, id domain.QuestionIdentifier) (*domain.Question, error) {
	if q, ok := r.questions[id]; ok {
		copied := *q
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memQuizRepo) GetSubjectQuestions(
	_ context.Context,
	id domain.SubjectIdentifier,
) ([]domain.Question, error) {
	var questions []domain.Question
	for _, q := range r.questions {
		if q.SubjectId == id {
			questions = append(questions, *q)
		}
	}
	return questions, nil
}

func (r *memQuizRepo) GetChapterQuestions(
	_ context.Context,
	id domain.ChapterIdentifier,
) ([]domain.Question, error) {
	var questions []domain.Question
	for _, q := range r.questions {
		if q.ChapterId == id {
			questions = append(questions, *q)
		}
	}
	return questions, nil
}

func (r *memQuizRepo) SaveQuestion(
	_ context.Context,
	id domain.QuestionIdentifier,
	updateFunc func(q *domain.Question) (*domain.Question, error),
) error {
	q, ok := r.questions[id]
	if !ok {
		q = &domain.Question{Identifier: id}
	}
	updated, err := updateFunc(q)
	if err != nil {
		return err
	}
	r.questions[id] = updated
	return nil
}

func (r *memQuizRepo) DeleteQuestion(_ context.Context, id domain.QuestionIdentifier) error {
	delete(r.questions, id)
	return nil
}

func (r *memQuizRepo) GetMockTest(_ context.Context, id domain.MockTestIdentifier) (*domain.MockTest, error) {
	if t, ok := r.tests[id]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memQuizRepo) GetUserMockTests(
	_ context.Context,
	id domain.UserIdentifier,
) ([]domain.MockTest, error) {
	var tests []domain.MockTest
	for _, t := range r.tests {
		if t.CreatedBy == string(id) {
			tests = append(tests, *t)
		}
	}
	return tests, nil
}

func (r *memQuizRepo) SaveMockTest(
	_ context.Context,
	id domain.MockTestIdentifier,
	updateFunc func(t *domain.MockTest) (*domain.MockTest, error),
) error {
	t, ok := r.tests[id]
	if !ok {
		t = &domain.MockTest{Identifier: id}
	}
	updated, err := updateFunc(t)
	if err != nil {
		return err
	}
	r.tests[id] = updated
	return nil
}

func (r *memQuizRepo) DeleteMockTest(_ context.Context, id domain.MockTestIdentifier) error {
	delete(r.tests, id)
	return nil
}

func (r *memQuizRepo) GetAttempt(_ context.Context, id domain.AttemptIdentifier) (*domain.Attempt, error) {
	if a, ok := r.attempts[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memQuizRepo) GetUserAttempts(
	_ context.Context,
	id domain.UserIdentifier,
) ([]domain.Attempt, error) {
	var attempts []domain.Attempt
	for _, a := range r.attempts {
		if a.UserId == id {
			attempts = append(attempts, *a)
		}
	}
	return attempts, nil
}

func (r *memQuizRepo) GetAllAttempts(_ context.Context) ([]domain.Attempt, error) {
	all := make([]domain.Attempt, 0, len(r.attempts))
	for _, a := range r.attempts {
		all = append(all, *a)
	}
	return all, nil
}

func (r *memQuizRepo) SaveAttempt(
	_ context.Context,
	id domain.AttemptIdentifier,
	updateFunc func(a *domain.Attempt) (*domain.Attempt, error),
) error {
	a, ok := r.attempts[id]
	if !ok {
		a = &domain.Attempt{Identifier: id}
	}
	updated, err := updateFunc(a)
	if err != nil {
		return err
	}
	r.attempts[id] = updated
	return nil
}

// endregion in-memory repos

func quizTestManager(t *testing.T) (*Manager, *memQuizRepo) {
	t.Helper()

	repo := newMemQuizRepo()
	m, err := NewQuizManager(&config.Config{}, evbus.New(10), repo, repo, repo)
	require.NoError(t, err)
	return m, repo
}

func adminCtx() context.Context {
	return domain.SetUserInfo(context.Background(), domain.SystemAdminContextUserInfo())
}

func userCtx(id domain.UserIdentifier) context.Context {
	return domain.SetUserInfo(context.Background(), &domain.ContextUserInfo{Id: id})
}

// seedSubject creates a subject with the given chapters (weightage values) and
// question counts per chapter.
func seedSubject(
	t *testing.T,
	m *Manager,
	weightages []int,
	questionsPerChapter int,
) (domain.SubjectIdentifier, []domain.ChapterIdentifier) {
	t.Helper()
	ctx := adminCtx()

	subject, err := m.CreateSubject(ctx, &domain.Subject{Name: "Computer Science"})
	require.NoError(t, err)

	var chapterIds []domain.ChapterIdentifier
	for i, weightage := range weightages {
		chapter, err := m.CreateChapter(ctx, &domain.Chapter{
			SubjectId:    subject.Identifier,
			Name:         fmt.Sprintf("Chapter %d", i+1),
			Weightage:    weightage,
			ChapterOrder: i + 1,
		})
		require.NoError(t, err)
		chapterIds = append(chapterIds, chapter.Identifier)

		for j := 0; j < questionsPerChapter; j++ {
			_, err := m.CreateQuestion(ctx, &domain.Question{
				ChapterId:     chapter.Identifier,
				Text:          fmt.Sprintf("Question %d-%d?", i+1, j+1),
				OptionA:       "A",
				OptionB:       "B",
				OptionC:       "C",
				OptionD:       "D",
				CorrectOption: "A",
				Difficulty:    domain.DifficultyMedium,
			})
			require.NoError(t, err)
		}
	}

	return subject.Identifier, chapterIds
}

func TestAllocateQuestions(t *testing.T) {
	chapter := func(id string, weightage int) domain.Chapter {
		return domain.Chapter{Identifier: domain.ChapterIdentifier(id), Weightage: weightage}
	}

	t.Run("proportional to weightage", func(t *testing.T) {
		allocation := allocateQuestions([]domain.Chapter{
			chapter("a", 50), chapter("b", 30), chapter("c", 20),
		}, 10)
		assert.Equal(t, 5, allocation["a"])
		assert.Equal(t, 3, allocation["b"])
		assert.Equal(t, 2, allocation["c"])
	})

	t.Run("rounding leftovers go to heavy chapters", func(t *testing.T) {
		allocation := allocateQuestions([]domain.Chapter{
			chapter("a", 50), chapter("b", 30), chapter("c", 20),
		}, 7)
		total := allocation["a"] + allocation["b"] + allocation["c"]
		assert.Equal(t, 7, total)
		assert.GreaterOrEqual(t, allocation["a"], allocation["b"])
		assert.GreaterOrEqual(t, allocation["b"], allocation["c"])
	})

	t.Run("no weightage means equal split", func(t *testing.T) {
		allocation := allocateQuestions([]domain.Chapter{
			chapter("a", 0), chapter("b", 0), chapter("c", 0),
		}, 8)
		total := allocation["a"] + allocation["b"] + allocation["c"]
		assert.Equal(t, 8, total)
		for _, count := range allocation {
			assert.GreaterOrEqual(t, count, 2)
			assert.LessOrEqual(t, count, 3)
		}
	})

	t.Run("zero weightage chapter gets nothing", func(t *testing.T) {
		allocation := allocateQuestions([]domain.Chapter{
			chapter("a", 100), chapter("b", 0),
		}, 5)
		assert.Equal(t, 5, allocation["a"])
		assert.Equal(t, 0, allocation["b"])
	})
}

func TestGenerateMockTest(t *testing.T) {
	t.Run("respects question count and weightage", func(t *testing.T) {
		m, _ := quizTestManager(t)
		subjectId, chapterIds := seedSubject(t, m, []int{60, 40}, 20)

		test, err := m.GenerateMockTest(userCtx("user@x.io"), domain.TestSpec{
			SubjectId:     subjectId,
			QuestionCount: 10,
		})
		require.NoError(t, err)
		assert.Len(t, test.Questions, 10)
		assert.Equal(t, 10, test.TotalMarks)
		assert.Equal(t, defaultTestDuration, test.Duration)
		assert.NotEmpty(t, test.Title)

		perChapter := make(map[domain.ChapterIdentifier]int)
		for _, tq := range test.Questions {
			require.NotNil(t, tq.Question)
			perChapter[tq.Question.ChapterId]++
		}
		assert.Equal(t, 6, perChapter[chapterIds[0]])
		assert.Equal(t, 4, perChapter[chapterIds[1]])

		// positions are a 1-based sequence
		for i, tq := range test.Questions {
			assert.Equal(t, i+1, tq.Position)
		}
	})

	t.Run("falls back to other chapters when a pool is too small", func(t *testing.T) {
		m, _ := quizTestManager(t)
		subjectId, _ := seedSubject(t, m, []int{90, 10}, 5)

		test, err := m.GenerateMockTest(userCtx("user@x.io"), domain.TestSpec{
			SubjectId:     subjectId,
			QuestionCount: 10,
		})
		require.NoError(t, err)
		assert.Len(t, test.Questions, 10)
	})

	t.Run("caps at the available question count", func(t *testing.T) {
		m, _ := quizTestManager(t)
		subjectId, _ := seedSubject(t, m, []int{100}, 3)

		test, err := m.GenerateMockTest(userCtx("user@x.io"), domain.TestSpec{
			SubjectId:     subjectId,
			QuestionCount: 10,
		})
		require.NoError(t, err)
		assert.Len(t, test.Questions, 3)
	})

	t.Run("weightage override restricts chapters", func(t *testing.T) {
		m, _ := quizTestManager(t)
		subjectId, chapterIds := seedSubject(t, m, []int{50, 50}, 10)

		test, err := m.GenerateMockTest(userCtx("user@x.io"), domain.TestSpec{
			SubjectId:     subjectId,
			QuestionCount: 5,
			Weightage:     map[domain.ChapterIdentifier]int{chapterIds[0]: 100},
		})
		require.NoError(t, err)
		for _, tq := range test.Questions {
			assert.Equal(t, chapterIds[0], tq.Question.ChapterId)
		}
	})

	t.Run("fails without questions", func(t *testing.T) {
		m, _ := quizTestManager(t)
		subjectId, _ := seedSubject(t, m, []int{100}, 0)

		_, err := m.GenerateMockTest(userCtx("user@x.io"), domain.TestSpec{
			SubjectId:     subjectId,
			QuestionCount: 5,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidData)
	})

	t.Run("fails for an unknown subject", func(t *testing.T) {
		m, _ := quizTestManager(t)

		_, err := m.GenerateMockTest(userCtx("user@x.io"), domain.TestSpec{
			SubjectId:     "missing",
			QuestionCount: 5,
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestSubmitAttempt(t *testing.T) {
	m, repo := quizTestManager(t)
	subjectId, _ := seedSubject(t, m, []int{100}, 10)
	ctx := userCtx("user@x.io")

	test, err := m.GenerateMockTest(ctx, domain.TestSpec{SubjectId: subjectId, QuestionCount: 4})
	require.NoError(t, err)

	attempt, err := m.StartAttempt(ctx, test.Identifier)
	require.NoError(t, err)
	assert.False(t, attempt.IsCompleted())

	// answer the first two correctly, the third wrong, leave the fourth blank
	answers := domain.AnswerSet{
		test.Questions[0].QuestionId: "A",
		test.Questions[1].QuestionId: "a", // case-insensitive
		test.Questions[2].QuestionId: "B",
	}

	graded, err := m.SubmitAttempt(ctx, attempt.Identifier, answers)
	require.NoError(t, err)
	assert.True(t, graded.IsCompleted())
	assert.Equal(t, 2, graded.Score)
	assert.Equal(t, 4, graded.MaxScore)
	assert.Equal(t, 2, graded.CorrectCount)
	assert.Equal(t, 2, graded.WrongCount)
	assert.InDelta(t, 50.0, graded.Percentage, 0.001)

	require.Len(t, graded.Breakdown, 1)
	assert.Equal(t, 4, graded.Breakdown[0].Total)
	assert.Equal(t, 2, graded.Breakdown[0].Correct)

	// question usage statistics were updated
	q := repo.questions[test.Questions[0].QuestionId]
	assert.Equal(t, 1, q.AttemptCount)

	t.Run("double submission is rejected", func(t *testing.T) {
		_, err := m.SubmitAttempt(ctx, attempt.Identifier, answers)
		assert.ErrorIs(t, err, domain.ErrInvalidData)
	})

	t.Run("foreign attempts are not accessible", func(t *testing.T) {
		_, err := m.GetAttempt(userCtx("other@x.io"), attempt.Identifier)
		assert.ErrorIs(t, err, domain.ErrNoPermission)
	})
}

func TestGetUserStatistics(t *testing.T) {
	m, _ := quizTestManager(t)
	subjectId, _ := seedSubject(t, m, []int{100}, 10)
	ctx := userCtx("user@x.io")

	test, err := m.GenerateMockTest(ctx, domain.TestSpec{SubjectId: subjectId, QuestionCount: 2})
	require.NoError(t, err)

	// one perfect attempt, one with half the answers
	for _, answers := range []domain.AnswerSet{
		{test.Questions[0].QuestionId: "A", test.Questions[1].QuestionId: "A"},
		{test.Questions[0].QuestionId: "A"},
	} {
		attempt, err := m.StartAttempt(ctx, test.Identifier)
		require.NoError(t, err)
		_, err = m.SubmitAttempt(ctx, attempt.Identifier, answers)
		require.NoError(t, err)
	}

	// one open attempt
	_, err = m.StartAttempt(ctx, test.Identifier)
	require.NoError(t, err)

	stats, err := m.GetUserStatistics(ctx, "user@x.io")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.AttemptCount)
	assert.Equal(t, 2, stats.CompletedCount)
	assert.InDelta(t, 75.0, stats.AverageScore, 0.001)
	assert.InDelta(t, 100.0, stats.BestPercentage, 0.001)
	assert.NotNil(t, stats.LastAttemptAt)
	require.Len(t, stats.SubjectBreakdown, 1)
	assert.Equal(t, 2, stats.SubjectBreakdown[0].Attempts)

	t.Run("foreign statistics are not accessible", func(t *testing.T) {
		_, err := m.GetUserStatistics(userCtx("other@x.io"), "user@x.io")
		assert.ErrorIs(t, err, domain.ErrNoPermission)
	})
}

func TestSubjectCrud(t *testing.T) {
	m, _ := quizTestManager(t)
	ctx := adminCtx()

	subject, err := m.CreateSubject(ctx, &domain.Subject{Name: "Mathematics", SubjectCode: "MATH"})
	require.NoError(t, err)

	subject.Description = "All about numbers"
	_, err = m.UpdateSubject(ctx, subject)
	require.NoError(t, err)

	got, err := m.GetSubject(ctx, subject.Identifier)
	require.NoError(t, err)
	assert.Equal(t, "All about numbers", got.Description)

	t.Run("non-admins cannot create subjects", func(t *testing.T) {
		_, err := m.CreateSubject(userCtx("user@x.io"), &domain.Subject{Name: "Nope"})
		assert.ErrorIs(t, err, domain.ErrNoPermission)
	})

	t.Run("chapter weightage is validated", func(t *testing.T) {
		_, err := m.CreateChapter(ctx, &domain.Chapter{
			SubjectId: subject.Identifier,
			Name:      "Bad",
			Weightage: 150,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidData)
	})

	require.NoError(t, m.DeleteSubject(ctx, subject.Identifier))
	_, err = m.GetSubject(ctx, subject.Identifier)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
