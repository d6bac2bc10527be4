package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
)

type LessonRepository interface {
	Create(ctx context.Context, lesson *entity.Lesson) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Lesson, error)
	FindByCourse(ctx context.Context, courseID uuid.UUID) ([]entity.Lesson, error)
	IDsByCourse(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error)
	Update(ctx context.Context, lesson *entity.Lesson) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type lessonRepository struct {
	db *gorm.DB
}

func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

// Create appends the lesson after the existing ones of its course.
func (r *lessonRepository) Create(ctx context.Context, lesson *entity.Lesson) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entity.Lesson{}).Where("course_id = ?", lesson.CourseID).Count(&count).Error; err != nil {
			return err
		}
		lesson.Position = int(count)
		return tx.Create(lesson).Error
	})
}

func (r *lessonRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Lesson, error) {
	var lesson entity.Lesson
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&lesson).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *lessonRepository) FindByCourse(ctx context.Context, courseID uuid.UUID) ([]entity.Lesson, error) {
	var lessons []entity.Lesson
	err := orderedLessons(r.db.WithContext(ctx)).Where("course_id = ?", courseID).Find(&lessons).Error
	return lessons, err
}

func (r *lessonRepository) IDsByCourse(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&entity.Lesson{}).Where("course_id = ?", courseID).Pluck("id", &ids).Error
	return ids, err
}

func (r *lessonRepository) Update(ctx context.Context, lesson *entity.Lesson) error {
	return r.db.WithContext(ctx).Save(lesson).Error
}

// Delete removes the lesson and detaches its attachments.
func (r *lessonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Attachment{}).Where("lesson_id = ?", id).Update("lesson_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.Lesson{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
