package model

import (
	"time"

	"github.com/prepcheck/prepcheck/internal/domain"
)

// TestGenerationRequest is the payload for generating a new mock test.
type TestGenerationRequest struct {
	SubjectId     string `json:"SubjectId" validate:"required"`
	Title         string `json:"Title"`
	QuestionCount int    `json:"QuestionCount" validate:"required,gt=0"`
	// DurationMinutes of the test, 0 selects the default duration.
	DurationMinutes int `json:"DurationMinutes" validate:"gte=0"`
	// Weightage optionally overrides the chapter weightages, keyed by chapter
	// identifier. Chapters that are missing from a non-empty map are excluded.
	Weightage map[string]int `json:"Weightage,omitempty"`
}

type MockTest struct {
	Identifier      string `json:"Identifier"`
	SubjectId       string `json:"SubjectId"`
	Title           string `json:"Title"`
	DurationMinutes int    `json:"DurationMinutes"`
	TotalMarks      int    `json:"TotalMarks"`
	QuestionCount   int    `json:"QuestionCount"`

	Questions []TestQuestion `json:"Questions,omitempty"`
}

type TestQuestion struct {
	Position int       `json:"Position"`
	Question *Question `json:"Question,omitempty"`
}

// NewMockTest converts a mock test for API exposure. The linked questions are
// included without their solution fields, candidates answer them blind.
func NewMockTest(src *domain.MockTest) *MockTest {
	t := &MockTest{
		Identifier:      string(src.Identifier),
		SubjectId:       string(src.SubjectId),
		Title:           src.Title,
		DurationMinutes: int(src.Duration.Minutes()),
		TotalMarks:      src.TotalMarks,
		QuestionCount:   src.QuestionCount(),
	}

	for _, link := range src.Questions {
		tq := TestQuestion{Position: link.Position}
		if link.Question != nil {
			tq.Question = NewQuestion(link.Question, false)
		}
		t.Questions = append(t.Questions, tq)
	}

	return t
}

func NewMockTests(src []domain.MockTest) []MockTest {
	results := make([]MockTest, len(src))
	for i := range src {
		results[i] = *NewMockTest(&src[i])
		results[i].Questions = nil // list views carry no question payload
	}

	return results
}

// AnswerSubmission is the payload for submitting a completed attempt. Answers
// map question identifiers to the selected option.
type AnswerSubmission struct {
	Answers map[string]string `json:"Answers" validate:"required"`
}

type Attempt struct {
	Identifier string `json:"Identifier"`
	TestId     string `json:"TestId"`
	UserId     string `json:"UserId"`

	StartedAt   time.Time  `json:"StartedAt"`
	CompletedAt *time.Time `json:"CompletedAt,omitempty"`
	Completed   bool       `json:"Completed"`

	Score        int             `json:"Score"`
	MaxScore     int             `json:"MaxScore"`
	Percentage   float64         `json:"Percentage"`
	CorrectCount int             `json:"CorrectCount"`
	WrongCount   int             `json:"WrongCount"`
	Breakdown    []ChapterResult `json:"Breakdown,omitempty"`
}

type ChapterResult struct {
	ChapterId    string `json:"ChapterId"`
	ChapterName  string `json:"ChapterName"`
	Total        int    `json:"Total"`
	Correct      int    `json:"Correct"`
	ScoredMarks  int    `json:"ScoredMarks"`
	MaximumMarks int    `json:"MaximumMarks"`
}

func NewAttempt(src *domain.Attempt) *Attempt {
	a := &Attempt{
		Identifier:   string(src.Identifier),
		TestId:       string(src.TestId),
		UserId:       string(src.UserId),
		StartedAt:    src.StartedAt,
		CompletedAt:  src.CompletedAt,
		Completed:    src.IsCompleted(),
		Score:        src.Score,
		MaxScore:     src.MaxScore,
		Percentage:   src.Percentage,
		CorrectCount: src.CorrectCount,
		WrongCount:   src.WrongCount,
	}

	for _, result := range src.Breakdown {
		a.Breakdown = append(a.Breakdown, ChapterResult{
			ChapterId:    string(result.ChapterId),
			ChapterName:  result.ChapterName,
			Total:        result.Total,
			Correct:      result.Correct,
			ScoredMarks:  result.ScoredMarks,
			MaximumMarks: result.MaximumMarks,
		})
	}

	return a
}

func NewAttempts(src []domain.Attempt) []Attempt {
	results := make([]Attempt, len(src))
	for i := range src {
		results[i] = *NewAttempt(&src[i])
	}

	return results
}
