package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/prepcheck/prepcheck/internal/domain"
)

// region subjects

// GetSubject returns the subject with the given id.
// If no subject is found, an error domain.ErrNotFound is returned.
func (r *SqlRepo) GetSubject(ctx context.Context, id domain.SubjectIdentifier) (*domain.Subject, error) {
	var subject domain.Subject

	err := r.db.WithContext(ctx).Preload("Chapters").First(&subject, "identifier = ?", id).Error

	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &subject, nil
}

// GetAllSubjects returns all subjects.
func (r *SqlRepo) GetAllSubjects(ctx context.Context) ([]domain.Subject, error) {
	var subjects []domain.Subject

	err := r.db.WithContext(ctx).Preload("Chapters").Find(&subjects).Error
	if err != nil {
		return nil, err
	}

	return subjects, nil
}

// SaveSubject updates the subject with the given id, creating it on first use.
func (r *SqlRepo) SaveSubject(
	ctx context.Context,
	id domain.SubjectIdentifier,
	updateFunc func(s *domain.Subject) (*domain.Subject, error),
) error {
	userInfo := domain.GetUserInfo(ctx)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var subject domain.Subject
		err := tx.Attrs(domain.Subject{
			BaseModel:  newBaseModel(userInfo),
			Identifier: id,
		}).FirstOrCreate(&subject, "identifier = ?", id).Error
		if err != nil {
			return err
		}

		updated, err := updateFunc(&subject)
		if err != nil {
			return err
		}

		updated.UpdatedBy = userInfo.UserId()
		updated.UpdatedAt = time.Now()

		return tx.Omit("Chapters").Save(updated).Error
	})
}

// DeleteSubject removes the subject with the given id including its chapters, materials and questions.
func (r *SqlRepo) DeleteSubject(ctx context.Context, id domain.SubjectIdentifier) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var chapters []domain.Chapter
		if err := tx.Where("subject_id = ?", id).Find(&chapters).Error; err != nil {
			return err
		}
		for _, chapter := range chapters {
			if err := tx.Where("chapter_id = ?", chapter.Identifier).
				Delete(&domain.StudyMaterial{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("subject_id = ?", id).Delete(&domain.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Where("subject_id = ?", id).Delete(&domain.Chapter{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Subject{}, "identifier = ?", id).Error
	})
}

// endregion subjects

// region chapters

// GetChapter returns the chapter with the given id.
// If no chapter is found, an error domain.ErrNotFound is returned.
func (r *SqlRepo) GetChapter(ctx context.Context, id domain.ChapterIdentifier) (*domain.Chapter, error) {
	var chapter domain.Chapter

	err := r.db.WithContext(ctx).First(&chapter, "identifier = ?", id).Error

	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &chapter, nil
}

// GetSubjectChapters returns all chapters of a subject, ordered by their position in the syllabus.
func (r *SqlRepo) GetSubjectChapters(
	ctx context.Context,
	id domain.SubjectIdentifier,
) ([]domain.Chapter, error) {
	var chapters []domain.Chapter

	err := r.db.WithContext(ctx).
		Where("subject_id = ?", id).
		Order("chapter_order asc").
		Find(&chapters).Error
	if err != nil {
		return nil, err
	}

	return chapters, nil
}

// SaveChapter updates the chapter with the given id, creating it on first use.
func (r *SqlRepo) SaveChapter(
	ctx context.Context,
	id domain.ChapterIdentifier,
	updateFunc func(c *domain.Chapter) (*domain.Chapter, error),
) error {
	userInfo := domain.GetUserInfo(ctx)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var chapter domain.Chapter
		err := tx.Attrs(domain.Chapter{
			BaseModel:  newBaseModel(userInfo),
			Identifier: id,
		}).FirstOrCreate(&chapter, "identifier = ?", id).Error
		if err != nil {
			return err
		}

		updated, err := updateFunc(&chapter)
		if err != nil {
			return err
		}

		updated.UpdatedBy = userInfo.UserId()
		updated.UpdatedAt = time.Now()

		return tx.Save(updated).Error
	})
}

// DeleteChapter removes the chapter with the given id including its study materials and questions.
func (r *SqlRepo) DeleteChapter(ctx context.Context, id domain.ChapterIdentifier) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chapter_id = ?", id).Delete(&domain.StudyMaterial{}).Error; err != nil {
			return err
		}
		if err := tx.Where("chapter_id = ?", id).Delete(&domain.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Chapter{}, "identifier = ?", id).Error
	})
}

// endregion chapters

// region study-materials

func (r *SqlRepo) GetStudyMaterial(
	ctx context.Context,
	id domain.StudyMaterialIdentifier,
) (*domain.StudyMaterial, error) {
	var material domain.StudyMaterial

	err := r.db.WithContext(ctx).First(&material, "identifier = ?", id).Error

	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &material, nil
}

func (r *SqlRepo) GetChapterMaterials(
	ctx context.Context,
	id domain.ChapterIdentifier,
) ([]domain.StudyMaterial, error) {
	var materials []domain.StudyMaterial

	err := r.db.WithContext(ctx).Where("chapter_id = ?", id).Find(&materials).Error
	if err != nil {
		return nil, err
	}

	return materials, nil
}

func (r *SqlRepo) SaveStudyMaterial(
	ctx context.Context,
	id domain.StudyMaterialIdentifier,
	updateFunc func(m *domain.StudyMaterial) (*domain.StudyMaterial, error),
) error {
	userInfo := domain.GetUserInfo(ctx)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var material domain.StudyMaterial
		err := tx.Attrs(domain.StudyMaterial{
			BaseModel:  newBaseModel(userInfo),
			Identifier: id,
		}).FirstOrCreate(&material, "identifier = ?", id).Error
		if err != nil {
			return err
		}

		updated, err := updateFunc(&material)
		if err != nil {
			return err
		}

		updated.UpdatedBy = userInfo.UserId()
		updated.UpdatedAt = time.Now()

		return tx.Save(updated).Error
	})
}

func (r *SqlRepo) DeleteStudyMaterial(ctx context.Context, id domain.StudyMaterialIdentifier) error {
	return r.db.WithContext(ctx).Delete(&domain.StudyMaterial{}, "identifier = ?", id).Error
}

// endregion study-materials

// region questions

// GetQuestion returns the question with the given id.
// If no question is found, an error domain.ErrNotFound is returned.
func (r *SqlRepo) GetQuestion(ctx context.Context, id domain.QuestionIdentifier) (*domain.Question, error) {
	var question domain.Question

	err := r.db.WithContext(ctx).First(&question, "identifier = ?", id).Error

	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &question, nil
}

func (r *SqlRepo) GetSubjectQuestions(
	ctx context.Context,
	id domain.SubjectIdentifier,
) ([]domain.Question, error) {
	var questions []domain.Question

	err := r.db.WithContext(ctx).Where("subject_id = ?", id).Find(&questions).Error
	if err != nil {
		return nil, err
	}

	return questions, nil
}

func (r *SqlRepo) GetChapterQuestions(
	ctx context.Context,
	id domain.ChapterIdentifier,
) ([]domain.Question, error) {
	var questions []domain.Question

	err := r.db.WithContext(ctx).Where("chapter_id = ?", id).Find(&questions).Error
	if err != nil {
		return nil, err
	}

	return questions, nil
}

func (r *SqlRepo) SaveQuestion(
	ctx context.Context,
	id domain.QuestionIdentifier,
	updateFunc func(q *domain.Question) (*domain.Question, error),
) error {
	userInfo := domain.GetUserInfo(ctx)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var question domain.Question
		err := tx.Attrs(domain.Question{
			BaseModel:  newBaseModel(userInfo),
			Identifier: id,
		}).FirstOrCreate(&question, "identifier = ?", id).Error
		if err != nil {
			return err
		}

		updated, err := updateFunc(&question)
		if err != nil {
			return err
		}

		updated.UpdatedBy = userInfo.UserId()
		updated.UpdatedAt = time.Now()

		return tx.Save(updated).Error
	})
}

func (r *SqlRepo) DeleteQuestion(ctx context.Context, id domain.QuestionIdentifier) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&domain.TestQuestion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Question{}, "identifier = ?", id).Error
	})
}

// endregion questions

// region mock-tests

// GetMockTest returns the mock test with the given id including its questions.
// If no test is found, an error domain.ErrNotFound is returned.
func (r *SqlRepo) GetMockTest(ctx context.Context, id domain.MockTestIdentifier) (*domain.MockTest, error) {
	var test domain.MockTest

	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Questions.Question").
		First(&test, "identifier = ?", id).Error

	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &test, nil
}

// GetUserMockTests returns all mock tests generated by the given user, newest first.
func (r *SqlRepo) GetUserMockTests(
	ctx context.Context,
	id domain.UserIdentifier,
) ([]domain.MockTest, error) {
	var tests []domain.MockTest

	err := r.db.WithContext(ctx).
		Where("created_by = ?", string(id)).
		Order("created_at desc").
		Find(&tests).Error
	if err != nil {
		return nil, err
	}

	return tests, nil
}

func (r *SqlRepo) SaveMockTest(
	ctx context.Context,
	id domain.MockTestIdentifier,
	updateFunc func(t *domain.MockTest) (*domain.MockTest, error),
) error {
	userInfo := domain.GetUserInfo(ctx)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var test domain.MockTest
		err := tx.Attrs(domain.MockTest{
			BaseModel:  newBaseModel(userInfo),
			Identifier: id,
		}).FirstOrCreate(&test, "identifier = ?", id).Error
		if err != nil {
			return err
		}

		updated, err := updateFunc(&test)
		if err != nil {
			return err
		}

		updated.UpdatedBy = userInfo.UserId()
		updated.UpdatedAt = time.Now()

		if err := tx.Omit("Questions").Save(updated).Error; err != nil {
			return err
		}

		// replace the question links
		if err := tx.Where("test_id = ?", id).Delete(&domain.TestQuestion{}).Error; err != nil {
			return err
		}
		for i := range updated.Questions {
			link := updated.Questions[i]
			link.Question = nil
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *SqlRepo) DeleteMockTest(ctx context.Context, id domain.MockTestIdentifier) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_id = ?", id).Delete(&domain.TestQuestion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.MockTest{}, "identifier = ?", id).Error
	})
}

// endregion mock-tests

// region attempts

func (r *SqlRepo) GetAttempt(ctx context.Context, id domain.AttemptIdentifier) (*domain.Attempt, error) {
	var attempt domain.Attempt

	err := r.db.WithContext(ctx).First(&attempt, "identifier = ?", id).Error

	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &attempt, nil
}

// GetUserAttempts returns all attempts of a user, newest first.
func (r *SqlRepo) GetUserAttempts(ctx context.Context, id domain.UserIdentifier) ([]domain.Attempt, error) {
	var attempts []domain.Attempt

	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		Order("started_at desc").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}

	return attempts, nil
}

func (r *SqlRepo) GetAllAttempts(ctx context.Context) ([]domain.Attempt, error) {
	var attempts []domain.Attempt

	err := r.db.WithContext(ctx).Find(&attempts).Error
	if err != nil {
		return nil, err
	}

	return attempts, nil
}

func (r *SqlRepo) SaveAttempt(
	ctx context.Context,
	id domain.AttemptIdentifier,
	updateFunc func(a *domain.Attempt) (*domain.Attempt, error),
) error {
	userInfo := domain.GetUserInfo(ctx)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var attempt domain.Attempt
		err := tx.Attrs(domain.Attempt{
			BaseModel:  newBaseModel(userInfo),
			Identifier: id,
		}).FirstOrCreate(&attempt, "identifier = ?", id).Error
		if err != nil {
			return err
		}

		updated, err := updateFunc(&attempt)
		if err != nil {
			return err
		}

		updated.UpdatedBy = userInfo.UserId()
		updated.UpdatedAt = time.Now()

		return tx.Save(updated).Error
	})
}

// endregion attempts

func newBaseModel(ui *domain.ContextUserInfo) domain.BaseModel {
	return domain.BaseModel{
		CreatedBy: ui.UserId(),
		UpdatedBy: ui.UserId(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}
