package quiz

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prepcheck/prepcheck/internal/app"
	"github.com/prepcheck/prepcheck/internal/domain"
)

func (m Manager) GetMockTest(ctx context.Context, id domain.MockTestIdentifier) (*domain.MockTest, error) {
	test, err := m.tests.GetMockTest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("unable to load mock test %s: %w", id, err)
	}

	return test, nil
}

func (m Manager) GetUserMockTests(
	ctx context.Context,
	id domain.UserIdentifier,
) ([]domain.MockTest, error) {
	if err := domain.ValidateUserAccessRights(ctx, id); err != nil {
		return nil, err
	}

	tests, err := m.tests.GetUserMockTests(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("unable to load mock tests of user %s: %w", id, err)
	}

	return tests, nil
}

// StartAttempt opens a new attempt for the given mock test on behalf of the
// context user.
func (m Manager) StartAttempt(ctx context.Context, testId domain.MockTestIdentifier) (*domain.Attempt, error) {
	currentUser := domain.GetUserInfo(ctx)
	if currentUser.Id == domain.CtxUnknownUserId {
		return nil, fmt.Errorf("unknown user: %w", domain.ErrNoPermission)
	}

	if _, err := m.tests.GetMockTest(ctx, testId); err != nil {
		return nil, fmt.Errorf("unable to find mock test %s: %w", testId, err)
	}

	attempt := &domain.Attempt{
		Identifier: domain.AttemptIdentifier(uuid.New().String()),
		TestId:     testId,
		UserId:     currentUser.Id,
		StartedAt:  time.Now(),
	}

	err := m.tests.SaveAttempt(ctx, attempt.Identifier, func(a *domain.Attempt) (*domain.Attempt, error) {
		a.Identifier = attempt.Identifier
		a.TestId = attempt.TestId
		a.UserId = attempt.UserId
		a.StartedAt = attempt.StartedAt
		return a, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save attempt: %w", err)
	}

	return attempt, nil
}

// SubmitAttempt grades the given answers and completes the attempt. Submitting
// a completed attempt again is rejected.
func (m Manager) SubmitAttempt(
	ctx context.Context,
	id domain.AttemptIdentifier,
	answers domain.AnswerSet,
) (*domain.Attempt, error) {
	attempt, err := m.tests.GetAttempt(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("unable to load attempt %s: %w", id, err)
	}

	if err := domain.ValidateUserAccessRights(ctx, attempt.UserId); err != nil {
		return nil, err
	}
	if attempt.IsCompleted() {
		return nil, fmt.Errorf("attempt %s is already completed: %w", id, domain.ErrInvalidData)
	}

	test, err := m.tests.GetMockTest(ctx, attempt.TestId)
	if err != nil {
		return nil, fmt.Errorf("unable to load mock test %s: %w", attempt.TestId, err)
	}

	attempt.Answers = answers
	m.grade(ctx, attempt, test)

	now := time.Now()
	attempt.CompletedAt = &now

	err = m.tests.SaveAttempt(ctx, attempt.Identifier, func(a *domain.Attempt) (*domain.Attempt, error) {
		a.Answers = attempt.Answers
		a.CompletedAt = attempt.CompletedAt
		a.Score = attempt.Score
		a.MaxScore = attempt.MaxScore
		a.Percentage = attempt.Percentage
		a.CorrectCount = attempt.CorrectCount
		a.WrongCount = attempt.WrongCount
		a.Breakdown = attempt.Breakdown
		return a, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save attempt: %w", err)
	}

	m.bus.Publish(app.TopicAttemptGraded, attempt)

	return attempt, nil
}

func (m Manager) GetAttempt(ctx context.Context, id domain.AttemptIdentifier) (*domain.Attempt, error) {
	attempt, err := m.tests.GetAttempt(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("unable to load attempt %s: %w", id, err)
	}

	if err := domain.ValidateUserAccessRights(ctx, attempt.UserId); err != nil {
		return nil, err
	}

	return attempt, nil
}

func (m Manager) GetUserAttempts(ctx context.Context, id domain.UserIdentifier) ([]domain.Attempt, error) {
	if err := domain.ValidateUserAccessRights(ctx, id); err != nil {
		return nil, err
	}

	attempts, err := m.tests.GetUserAttempts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("unable to load attempts of user %s: %w", id, err)
	}

	return attempts, nil
}

// grade evaluates the answers of an attempt against the test's questions and
// fills in score, counters and the per-chapter breakdown. Question usage
// statistics are updated on a best-effort basis.
func (m Manager) grade(ctx context.Context, attempt *domain.Attempt, test *domain.MockTest) {
	chapterResults := make(map[domain.ChapterIdentifier]*domain.ChapterResult)
	var chapterOrder []domain.ChapterIdentifier

	attempt.Score = 0
	attempt.MaxScore = 0
	attempt.CorrectCount = 0
	attempt.WrongCount = 0

	for _, testQuestion := range test.Questions {
		question := testQuestion.Question
		if question == nil {
			continue
		}

		result, ok := chapterResults[question.ChapterId]
		if !ok {
			result = &domain.ChapterResult{ChapterId: question.ChapterId}
			if chapter, err := m.subjects.GetChapter(ctx, question.ChapterId); err == nil {
				result.ChapterName = chapter.Name
			}
			chapterResults[question.ChapterId] = result
			chapterOrder = append(chapterOrder, question.ChapterId)
		}

		marks := question.GetMarks()
		attempt.MaxScore += marks
		result.Total++
		result.MaximumMarks += marks

		answer := attempt.AnswerFor(question.Identifier)
		correct := answer != "" && question.IsCorrect(answer)
		if correct {
			attempt.Score += marks
			attempt.CorrectCount++
			result.Correct++
			result.ScoredMarks += marks
		} else {
			attempt.WrongCount++
		}

		m.updateQuestionStats(ctx, question.Identifier, correct)
	}

	if attempt.MaxScore > 0 {
		attempt.Percentage = float64(attempt.Score) / float64(attempt.MaxScore) * 100
	}

	attempt.Breakdown = make([]domain.ChapterResult, 0, len(chapterOrder))
	for _, chapterId := range chapterOrder {
		attempt.Breakdown = append(attempt.Breakdown, *chapterResults[chapterId])
	}
}

func (m Manager) updateQuestionStats(ctx context.Context, id domain.QuestionIdentifier, correct bool) {
	_ = m.questions.SaveQuestion(ctx, id, func(q *domain.Question) (*domain.Question, error) {
		successes := q.SuccessRate * float64(q.AttemptCount)
		if correct {
			successes++
		}
		q.AttemptCount++
		q.SuccessRate = successes / float64(q.AttemptCount)
		return q, nil
	})
}
