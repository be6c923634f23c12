package domain

import (
	"time"
)

type MockTestIdentifier string

// TestSpec describes the mock test that should be generated.
type TestSpec struct {
	SubjectId     SubjectIdentifier
	Title         string
	QuestionCount int
	Duration      time.Duration
	// Weightage optionally overrides the chapter weightage stored in the
	// database. Keys are chapter identifiers, values are 0-100.
	Weightage map[ChapterIdentifier]int
}

// MockTest is a generated exam: an ordered selection of questions from the
// question bank of one subject.
type MockTest struct {
	BaseModel

	Identifier MockTestIdentifier `gorm:"primaryKey;column:identifier"`
	SubjectId  SubjectIdentifier  `gorm:"index;column:subject_id"`
	Title      string
	// Duration the candidate has to complete the test.
	Duration   time.Duration
	TotalMarks int

	Questions []TestQuestion `gorm:"foreignKey:TestId"`
}

// QuestionCount returns the number of questions linked to the test.
func (t *MockTest) QuestionCount() int {
	return len(t.Questions)
}

// TestQuestion links a question to a mock test at a fixed position.
type TestQuestion struct {
	TestId     MockTestIdentifier `gorm:"primaryKey;column:test_id"`
	QuestionId QuestionIdentifier `gorm:"primaryKey;column:question_id"`
	Position   int                `gorm:"column:position"`

	Question *Question `gorm:"foreignKey:Identifier;references:QuestionId"`
}

type AttemptIdentifier string

// Attempt is one run of a user through a mock test. Answers map question
// identifiers to the selected option.
type Attempt struct {
	BaseModel

	Identifier AttemptIdentifier  `gorm:"primaryKey;column:identifier"`
	TestId     MockTestIdentifier `gorm:"index;column:test_id"`
	UserId     UserIdentifier     `gorm:"index;column:user_id"`

	Answers AnswerSet `gorm:"column:answers;serializer:json"`

	StartedAt   time.Time
	CompletedAt *time.Time `gorm:"column:completed_at"`

	// grading results, populated when the attempt is completed
	Score        int
	MaxScore     int
	Percentage   float64
	CorrectCount int
	WrongCount   int
	Breakdown    []ChapterResult `gorm:"column:breakdown;serializer:json"`
}

type AnswerSet map[QuestionIdentifier]string

// ChapterResult is the per-chapter grading breakdown of an attempt.
type ChapterResult struct {
	ChapterId    ChapterIdentifier `json:"chapter_id"`
	ChapterName  string            `json:"chapter_name"`
	Total        int               `json:"total"`
	Correct      int               `json:"correct"`
	ScoredMarks  int               `json:"scored_marks"`
	MaximumMarks int               `json:"maximum_marks"`
}

// IsCompleted returns true once the attempt has been submitted and graded.
func (a *Attempt) IsCompleted() bool {
	return a.CompletedAt != nil
}

// AnswerFor returns the selected option for the given question, or an empty
// string if the question was left unanswered.
func (a *Attempt) AnswerFor(id QuestionIdentifier) string {
	if a.Answers == nil {
		return ""
	}
	return a.Answers[id]
}
