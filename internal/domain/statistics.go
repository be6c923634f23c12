package domain

import "time"

// UserStatistics aggregates the attempt history of a single user.
type UserStatistics struct {
	UserId           UserIdentifier `json:"user_id"`
	AttemptCount     int            `json:"attempt_count"`
	CompletedCount   int            `json:"completed_count"`
	AverageScore     float64        `json:"average_score"`
	BestPercentage   float64        `json:"best_percentage"`
	LastAttemptAt    *time.Time     `json:"last_attempt_at"`
	SubjectBreakdown []SubjectScore `json:"subject_breakdown"`
}

// SubjectScore is the average attempt result for one subject.
type SubjectScore struct {
	SubjectId   SubjectIdentifier `json:"subject_id"`
	SubjectName string            `json:"subject_name"`
	Attempts    int               `json:"attempts"`
	AveragePct  float64           `json:"average_pct"`
}

// AdminOverview holds the portal-wide counters shown on the admin dashboard.
type AdminOverview struct {
	UserCount         int `json:"user_count"`
	SubjectCount      int `json:"subject_count"`
	QuestionCount     int `json:"question_count"`
	MockTestCount     int `json:"mock_test_count"`
	AttemptCount      int `json:"attempt_count"`
	NotificationCount int `json:"notification_count"`
}
