package model

import (
	"time"

	"github.com/prepcheck/prepcheck/internal/domain"
)

type UserStatistics struct {
	UserId           string         `json:"UserId"`
	AttemptCount     int            `json:"AttemptCount"`
	CompletedCount   int            `json:"CompletedCount"`
	AverageScore     float64        `json:"AverageScore"`
	BestPercentage   float64        `json:"BestPercentage"`
	LastAttemptAt    *time.Time     `json:"LastAttemptAt,omitempty"`
	SubjectBreakdown []SubjectScore `json:"SubjectBreakdown,omitempty"`
}

type SubjectScore struct {
	SubjectId   string  `json:"SubjectId"`
	SubjectName string  `json:"SubjectName"`
	Attempts    int     `json:"Attempts"`
	AveragePct  float64 `json:"AveragePct"`
}

func NewUserStatistics(src *domain.UserStatistics) *UserStatistics {
	stats := &UserStatistics{
		UserId:         string(src.UserId),
		AttemptCount:   src.AttemptCount,
		CompletedCount: src.CompletedCount,
		AverageScore:   src.AverageScore,
		BestPercentage: src.BestPercentage,
		LastAttemptAt:  src.LastAttemptAt,
	}

	for _, score := range src.SubjectBreakdown {
		stats.SubjectBreakdown = append(stats.SubjectBreakdown, SubjectScore{
			SubjectId:   string(score.SubjectId),
			SubjectName: score.SubjectName,
			Attempts:    score.Attempts,
			AveragePct:  score.AveragePct,
		})
	}

	return stats
}

type AdminOverview struct {
	UserCount         int `json:"UserCount"`
	SubjectCount      int `json:"SubjectCount"`
	QuestionCount     int `json:"QuestionCount"`
	MockTestCount     int `json:"MockTestCount"`
	AttemptCount      int `json:"AttemptCount"`
	NotificationCount int `json:"NotificationCount"`
}

func NewAdminOverview(src *domain.AdminOverview) *AdminOverview {
	return &AdminOverview{
		UserCount:         src.UserCount,
		SubjectCount:      src.SubjectCount,
		QuestionCount:     src.QuestionCount,
		MockTestCount:     src.MockTestCount,
		AttemptCount:      src.AttemptCount,
		NotificationCount: src.NotificationCount,
	}
}
