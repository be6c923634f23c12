package domain

import (
	"errors"
	"strings"
	"time"
)

type QuestionIdentifier string

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type QuestionSource string

const (
	QuestionSourceManual       QuestionSource = "manual"
	QuestionSourceImported     QuestionSource = "imported"
	QuestionSourcePreviousYear QuestionSource = "previous_year"
)

// Question is a single-choice question in the question bank.
type Question struct {
	BaseModel

	Identifier QuestionIdentifier `gorm:"primaryKey;column:identifier"`
	SubjectId  SubjectIdentifier  `gorm:"index;column:subject_id"`
	ChapterId  ChapterIdentifier  `gorm:"index;column:chapter_id"`

	Text          string `form:"text" binding:"required"`
	OptionA       string `form:"option_a" binding:"required"`
	OptionB       string `form:"option_b" binding:"required"`
	OptionC       string `form:"option_c" binding:"required"`
	OptionD       string `form:"option_d" binding:"required"`
	CorrectOption string `form:"correct_option" binding:"required,oneof=A B C D"`
	Explanation   string `form:"explanation" binding:"omitempty"`

	Topic      string         `form:"topic" binding:"omitempty"`
	Difficulty Difficulty     `form:"difficulty" binding:"required,oneof=easy medium hard"`
	Marks      int            `form:"marks" binding:"omitempty,gte=1"`
	Source     QuestionSource `gorm:"column:source"`
	Year       int            `form:"year" binding:"omitempty"`

	// usage statistics, updated on grading
	AttemptCount int     `gorm:"column:attempt_count"`
	SuccessRate  float64 `gorm:"column:success_rate"`

	Verified *time.Time `gorm:"column:verified"`
	Disabled *time.Time `gorm:"index;column:disabled"`
}

func (q *Question) IsDisabled() bool {
	return q.Disabled != nil
}

func (q *Question) IsVerified() bool {
	return q.Verified != nil
}

// IsCorrect checks the given answer option against the stored solution.
// The comparison ignores case and surrounding whitespace.
func (q *Question) IsCorrect(option string) bool {
	return strings.EqualFold(strings.TrimSpace(option), q.CorrectOption)
}

// Validate performs basic integrity checks before a question is persisted.
func (q *Question) Validate() error {
	if q.Text == "" {
		return errors.New("missing question text")
	}
	if q.OptionA == "" || q.OptionB == "" || q.OptionC == "" || q.OptionD == "" {
		return errors.New("all four options are required")
	}
	switch strings.ToUpper(q.CorrectOption) {
	case "A", "B", "C", "D":
	default:
		return errors.New("correct option must be one of A, B, C or D")
	}
	switch q.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return errors.New("invalid difficulty")
	}

	return nil
}

// GetMarks returns the marks awarded for a correct answer, at least 1.
func (q *Question) GetMarks() int {
	if q.Marks < 1 {
		return 1
	}
	return q.Marks
}
