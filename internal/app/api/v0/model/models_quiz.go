package model

import (
	"time"

	"github.com/prepcheck/prepcheck/internal/domain"
)

type Subject struct {
	Identifier  string `json:"Identifier"`
	Name        string `json:"Name"`
	Description string `json:"Description"`
	SubjectCode string `json:"SubjectCode"`
	PaperType   string `json:"PaperType"`
	Disabled    bool   `json:"Disabled"`

	// Calculated

	QuestionCount int `json:"QuestionCount"`
}

func NewSubject(src *domain.Subject) *Subject {
	return &Subject{
		Identifier:    string(src.Identifier),
		Name:          src.Name,
		Description:   src.Description,
		SubjectCode:   src.SubjectCode,
		PaperType:     string(src.PaperType),
		Disabled:      src.IsDisabled(),
		QuestionCount: src.QuestionCount,
	}
}

func NewSubjects(src []domain.Subject) []Subject {
	results := make([]Subject, len(src))
	for i := range src {
		results[i] = *NewSubject(&src[i])
	}

	return results
}

func NewDomainSubject(src *Subject) *domain.Subject {
	now := time.Now()
	res := &domain.Subject{
		Identifier:  domain.SubjectIdentifier(src.Identifier),
		Name:        src.Name,
		Description: src.Description,
		SubjectCode: src.SubjectCode,
		PaperType:   domain.PaperType(src.PaperType),
	}

	if src.Disabled {
		res.Disabled = &now
	}

	return res
}

type Chapter struct {
	Identifier   string `json:"Identifier"`
	SubjectId    string `json:"SubjectId"`
	Name         string `json:"Name"`
	Description  string `json:"Description"`
	Weightage    int    `json:"Weightage"`
	ChapterOrder int    `json:"ChapterOrder"`
	Disabled     bool   `json:"Disabled"`
}

func NewChapter(src *domain.Chapter) *Chapter {
	return &Chapter{
		Identifier:   string(src.Identifier),
		SubjectId:    string(src.SubjectId),
		Name:         src.Name,
		Description:  src.Description,
		Weightage:    src.Weightage,
		ChapterOrder: src.ChapterOrder,
		Disabled:     src.IsDisabled(),
	}
}

func NewChapters(src []domain.Chapter) []Chapter {
	results := make([]Chapter, len(src))
	for i := range src {
		results[i] = *NewChapter(&src[i])
	}

	return results
}

func NewDomainChapter(src *Chapter) *domain.Chapter {
	now := time.Now()
	res := &domain.Chapter{
		Identifier:   domain.ChapterIdentifier(src.Identifier),
		SubjectId:    domain.SubjectIdentifier(src.SubjectId),
		Name:         src.Name,
		Description:  src.Description,
		Weightage:    src.Weightage,
		ChapterOrder: src.ChapterOrder,
	}

	if src.Disabled {
		res.Disabled = &now
	}

	return res
}

type StudyMaterial struct {
	Identifier   string `json:"Identifier"`
	ChapterId    string `json:"ChapterId"`
	Title        string `json:"Title"`
	Description  string `json:"Description"`
	Content      string `json:"Content"`
	MaterialType string `json:"MaterialType"`
	Url          string `json:"Url"`
}

func NewStudyMaterial(src *domain.StudyMaterial) *StudyMaterial {
	return &StudyMaterial{
		Identifier:   string(src.Identifier),
		ChapterId:    string(src.ChapterId),
		Title:        src.Title,
		Description:  src.Description,
		Content:      src.Content,
		MaterialType: string(src.MaterialType),
		Url:          src.Url,
	}
}

func NewStudyMaterials(src []domain.StudyMaterial) []StudyMaterial {
	results := make([]StudyMaterial, len(src))
	for i := range src {
		results[i] = *NewStudyMaterial(&src[i])
	}

	return results
}

func NewDomainStudyMaterial(src *StudyMaterial) *domain.StudyMaterial {
	return &domain.StudyMaterial{
		Identifier:   domain.StudyMaterialIdentifier(src.Identifier),
		ChapterId:    domain.ChapterIdentifier(src.ChapterId),
		Title:        src.Title,
		Description:  src.Description,
		Content:      src.Content,
		MaterialType: domain.MaterialType(src.MaterialType),
		Url:          src.Url,
	}
}

type Question struct {
	Identifier string `json:"Identifier"`
	SubjectId  string `json:"SubjectId"`
	ChapterId  string `json:"ChapterId"`

	Text    string `json:"Text"`
	OptionA string `json:"OptionA"`
	OptionB string `json:"OptionB"`
	OptionC string `json:"OptionC"`
	OptionD string `json:"OptionD"`

	// solution fields, only populated for administrative views
	CorrectOption string `json:"CorrectOption,omitempty"`
	Explanation   string `json:"Explanation,omitempty"`

	Topic      string `json:"Topic"`
	Difficulty string `json:"Difficulty"`
	Marks      int    `json:"Marks"`
	Source     string `json:"Source"`
	Year       int    `json:"Year"`

	AttemptCount int     `json:"AttemptCount"`
	SuccessRate  float64 `json:"SuccessRate"`

	Verified bool `json:"Verified"`
	Disabled bool `json:"Disabled"`
}

// NewQuestion converts a question for API exposure. The solution fields are
// only included if exposeSolution is set, candidate-facing views must never
// contain them.
func NewQuestion(src *domain.Question, exposeSolution bool) *Question {
	q := &Question{
		Identifier:   string(src.Identifier),
		SubjectId:    string(src.SubjectId),
		ChapterId:    string(src.ChapterId),
		Text:         src.Text,
		OptionA:      src.OptionA,
		OptionB:      src.OptionB,
		OptionC:      src.OptionC,
		OptionD:      src.OptionD,
		Topic:        src.Topic,
		Difficulty:   string(src.Difficulty),
		Marks:        src.GetMarks(),
		Source:       string(src.Source),
		Year:         src.Year,
		AttemptCount: src.AttemptCount,
		SuccessRate:  src.SuccessRate,
		Verified:     src.IsVerified(),
		Disabled:     src.IsDisabled(),
	}

	if exposeSolution {
		q.CorrectOption = src.CorrectOption
		q.Explanation = src.Explanation
	}

	return q
}

func NewQuestions(src []domain.Question, exposeSolution bool) []Question {
	results := make([]Question, len(src))
	for i := range src {
		results[i] = *NewQuestion(&src[i], exposeSolution)
	}

	return results
}

func NewDomainQuestion(src *Question) *domain.Question {
	now := time.Now()
	res := &domain.Question{
		Identifier:    domain.QuestionIdentifier(src.Identifier),
		SubjectId:     domain.SubjectIdentifier(src.SubjectId),
		ChapterId:     domain.ChapterIdentifier(src.ChapterId),
		Text:          src.Text,
		OptionA:       src.OptionA,
		OptionB:       src.OptionB,
		OptionC:       src.OptionC,
		OptionD:       src.OptionD,
		CorrectOption: src.CorrectOption,
		Explanation:   src.Explanation,
		Topic:         src.Topic,
		Difficulty:    domain.Difficulty(src.Difficulty),
		Marks:         src.Marks,
		Source:        domain.QuestionSource(src.Source),
		Year:          src.Year,
	}

	if src.Verified {
		res.Verified = &now
	}
	if src.Disabled {
		res.Disabled = &now
	}

	return res
}
