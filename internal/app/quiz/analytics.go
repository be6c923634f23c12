package quiz

import (
	"context"
	"fmt"

	"github.com/prepcheck/prepcheck/internal/domain"
)

// GetUserStatistics aggregates the attempt history of a single user into the
// numbers shown on the personal dashboard.
func (m Manager) GetUserStatistics(
	ctx context.Context,
	id domain.UserIdentifier,
) (*domain.UserStatistics, error) {
	if err := domain.ValidateUserAccessRights(ctx, id); err != nil {
		return nil, err
	}

	attempts, err := m.tests.GetUserAttempts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("unable to load attempts of user %s: %w", id, err)
	}

	stats := &domain.UserStatistics{UserId: id}
	subjectScores := make(map[domain.SubjectIdentifier]*domain.SubjectScore)
	var subjectOrder []domain.SubjectIdentifier

	var percentageSum float64
	for i := range attempts {
		attempt := &attempts[i]
		stats.AttemptCount++
		if stats.LastAttemptAt == nil || attempt.StartedAt.After(*stats.LastAttemptAt) {
			startedAt := attempt.StartedAt
			stats.LastAttemptAt = &startedAt
		}

		if !attempt.IsCompleted() {
			continue
		}
		stats.CompletedCount++
		percentageSum += attempt.Percentage
		if attempt.Percentage > stats.BestPercentage {
			stats.BestPercentage = attempt.Percentage
		}

		test, err := m.tests.GetMockTest(ctx, attempt.TestId)
		if err != nil {
			continue // test was deleted, skip subject aggregation
		}
		score, ok := subjectScores[test.SubjectId]
		if !ok {
			score = &domain.SubjectScore{SubjectId: test.SubjectId}
			if subject, err := m.subjects.GetSubject(ctx, test.SubjectId); err == nil {
				score.SubjectName = subject.Name
			}
			subjectScores[test.SubjectId] = score
			subjectOrder = append(subjectOrder, test.SubjectId)
		}
		score.AveragePct = (score.AveragePct*float64(score.Attempts) + attempt.Percentage) /
			float64(score.Attempts+1)
		score.Attempts++
	}

	if stats.CompletedCount > 0 {
		stats.AverageScore = percentageSum / float64(stats.CompletedCount)
	}
	stats.SubjectBreakdown = make([]domain.SubjectScore, 0, len(subjectOrder))
	for _, subjectId := range subjectOrder {
		stats.SubjectBreakdown = append(stats.SubjectBreakdown, *subjectScores[subjectId])
	}

	return stats, nil
}
