package domain

import "time"

type SubjectIdentifier string

type PaperType string

const (
	PaperTypeOne PaperType = "paper1"
	PaperTypeTwo PaperType = "paper2"
)

// Subject is an exam subject, e.g. "Computer Science". Questions, chapters and
// mock tests are always linked to a subject.
type Subject struct {
	BaseModel

	Identifier  SubjectIdentifier `gorm:"primaryKey;column:identifier"`
	Name        string            `form:"name" binding:"required"`
	Description string            `form:"description" binding:"omitempty"`
	SubjectCode string            `form:"subject_code" binding:"omitempty"`
	PaperType   PaperType         `form:"paper_type" binding:"omitempty"`
	Disabled    *time.Time        `gorm:"index;column:disabled"`

	Chapters []Chapter `gorm:"foreignKey:SubjectId"`

	QuestionCount int `gorm:"-"`
}

func (s *Subject) IsDisabled() bool {
	return s.Disabled != nil
}

type ChapterIdentifier string

// Chapter is a syllabus unit of a subject. The weightage steers how many
// questions a generated mock test draws from the chapter.
type Chapter struct {
	BaseModel

	Identifier  ChapterIdentifier `gorm:"primaryKey;column:identifier"`
	SubjectId   SubjectIdentifier `gorm:"index;column:subject_id"`
	Name        string            `form:"name" binding:"required"`
	Description string            `form:"description" binding:"omitempty"`
	// Weightage of the chapter within the subject, 0-100.
	Weightage    int `form:"weightage" binding:"omitempty,gte=0,lte=100"`
	ChapterOrder int
	Disabled     *time.Time `gorm:"index;column:disabled"`
}

func (c *Chapter) IsDisabled() bool {
	return c.Disabled != nil
}

type StudyMaterialIdentifier string

type MaterialType string

const (
	MaterialTypeDocument MaterialType = "document"
	MaterialTypeVideo    MaterialType = "video"
	MaterialTypeLink     MaterialType = "link"
	MaterialTypeText     MaterialType = "text"
)

// StudyMaterial is supplementary learning content attached to a chapter.
type StudyMaterial struct {
	BaseModel

	Identifier   StudyMaterialIdentifier `gorm:"primaryKey;column:identifier"`
	ChapterId    ChapterIdentifier       `gorm:"index;column:chapter_id"`
	Title        string                  `form:"title" binding:"required"`
	Description  string                  `form:"description" binding:"omitempty"`
	Content      string                  `form:"content" binding:"omitempty"`
	MaterialType MaterialType            `form:"material_type" binding:"required"`
	Url          string                  `form:"url" binding:"omitempty,url"`
	Disabled     *time.Time              `gorm:"index;column:disabled"`
}
