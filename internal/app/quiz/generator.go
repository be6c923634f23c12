package quiz

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/prepcheck/prepcheck/internal/app"
	"github.com/prepcheck/prepcheck/internal/domain"
)

const defaultTestDuration = 3 * time.Hour

// GenerateMockTest assembles a new mock test for the requesting user. Questions
// are distributed over the subject's chapters proportionally to their
// weightage and picked randomly within each chapter.
func (m Manager) GenerateMockTest(ctx context.Context, spec domain.TestSpec) (*domain.MockTest, error) {
	if spec.QuestionCount < 1 {
		return nil, fmt.Errorf("question count must be positive: %w", domain.ErrInvalidData)
	}

	subject, err := m.subjects.GetSubject(ctx, spec.SubjectId)
	if err != nil {
		return nil, fmt.Errorf("unable to find subject %s: %w", spec.SubjectId, err)
	}

	chapters, err := m.subjects.GetSubjectChapters(ctx, spec.SubjectId)
	if err != nil {
		return nil, fmt.Errorf("unable to load chapters of subject %s: %w", spec.SubjectId, err)
	}
	chapters = activeChapters(chapters, spec.Weightage)
	if len(chapters) == 0 {
		return nil, fmt.Errorf("subject %s has no usable chapters: %w", spec.SubjectId, domain.ErrInvalidData)
	}

	allocation := allocateQuestions(chapters, spec.QuestionCount)

	var selected []domain.Question
	var leftovers []domain.Question
	for _, chapter := range chapters {
		pool, err := m.questions.GetChapterQuestions(ctx, chapter.Identifier)
		if err != nil {
			return nil, fmt.Errorf("unable to load questions of chapter %s: %w", chapter.Identifier, err)
		}
		pool = activeQuestions(pool)
		rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

		want := allocation[chapter.Identifier]
		if want > len(pool) {
			want = len(pool)
		}
		selected = append(selected, pool[:want]...)
		leftovers = append(leftovers, pool[want:]...)
	}

	// fill up from other chapters if some chapter pools were too small
	if missing := spec.QuestionCount - len(selected); missing > 0 {
		rand.Shuffle(len(leftovers), func(i, j int) { leftovers[i], leftovers[j] = leftovers[j], leftovers[i] })
		if missing > len(leftovers) {
			missing = len(leftovers)
		}
		selected = append(selected, leftovers[:missing]...)
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no questions available for subject %s: %w", spec.SubjectId, domain.ErrInvalidData)
	}

	test := &domain.MockTest{
		Identifier: domain.MockTestIdentifier(uuid.New().String()),
		SubjectId:  subject.Identifier,
		Title:      spec.Title,
		Duration:   spec.Duration,
	}
	if test.Title == "" {
		test.Title = fmt.Sprintf("%s Mock Test", subject.Name)
	}
	if test.Duration <= 0 {
		test.Duration = defaultTestDuration
	}

	rand.Shuffle(len(selected), func(i, j int) { selected[i], selected[j] = selected[j], selected[i] })
	for i := range selected {
		question := selected[i]
		test.TotalMarks += question.GetMarks()
		test.Questions = append(test.Questions, domain.TestQuestion{
			TestId:     test.Identifier,
			QuestionId: question.Identifier,
			Position:   i + 1,
			Question:   &question,
		})
	}

	err = m.tests.SaveMockTest(ctx, test.Identifier, func(t *domain.MockTest) (*domain.MockTest, error) {
		t.Identifier = test.Identifier
		t.SubjectId = test.SubjectId
		t.Title = test.Title
		t.Duration = test.Duration
		t.TotalMarks = test.TotalMarks
		t.Questions = test.Questions
		return t, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save mock test: %w", err)
	}

	m.bus.Publish(app.TopicTestGenerated, test.Identifier)

	return test, nil
}

// activeChapters filters out disabled chapters and, when an override is given,
// chapters that are not part of the override.
func activeChapters(chapters []domain.Chapter, override map[domain.ChapterIdentifier]int) []domain.Chapter {
	active := make([]domain.Chapter, 0, len(chapters))
	for _, chapter := range chapters {
		if chapter.IsDisabled() {
			continue
		}
		if override != nil {
			weightage, ok := override[chapter.Identifier]
			if !ok {
				continue
			}
			chapter.Weightage = weightage
		}
		active = append(active, chapter)
	}
	return active
}

func activeQuestions(questions []domain.Question) []domain.Question {
	active := make([]domain.Question, 0, len(questions))
	for _, question := range questions {
		if question.IsDisabled() {
			continue
		}
		active = append(active, question)
	}
	return active
}

// allocateQuestions distributes the total question count over the chapters
// proportionally to their weightage. Chapters without any weightage share the
// total equally. Rounding leftovers go to the chapters with the highest
// weightage first.
func allocateQuestions(chapters []domain.Chapter, total int) map[domain.ChapterIdentifier]int {
	allocation := make(map[domain.ChapterIdentifier]int, len(chapters))

	totalWeightage := 0
	for _, chapter := range chapters {
		if chapter.Weightage > 0 {
			totalWeightage += chapter.Weightage
		}
	}

	if totalWeightage == 0 {
		base := total / len(chapters)
		rest := total % len(chapters)
		for i, chapter := range chapters {
			allocation[chapter.Identifier] = base
			if i < rest {
				allocation[chapter.Identifier]++
			}
		}
		return allocation
	}

	ordered := make([]domain.Chapter, len(chapters))
	copy(ordered, chapters)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Weightage > ordered[j].Weightage
	})

	allocated := 0
	for _, chapter := range ordered {
		if chapter.Weightage <= 0 {
			allocation[chapter.Identifier] = 0
			continue
		}
		count := chapter.Weightage * total / totalWeightage
		allocation[chapter.Identifier] = count
		allocated += count
	}

	for i := 0; allocated < total; i = (i + 1) % len(ordered) {
		if ordered[i].Weightage <= 0 {
			continue
		}
		allocation[ordered[i].Identifier]++
		allocated++
	}

	return allocation
}
