package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
)

type ProgressRepository interface {
	FindEnrollment(ctx context.Context, studentID, courseID uuid.UUID) (*entity.Enrollment, error)
	Upsert(ctx context.Context, record *entity.Progress, withScore bool) error
	Find(ctx context.Context, studentID, courseID uuid.UUID) (*entity.Progress, error)
	FindByStudent(ctx context.Context, studentID uuid.UUID) ([]entity.Progress, error)
	FindByCourse(ctx context.Context, courseID uuid.UUID) ([]entity.Progress, error)
}

type progressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) FindEnrollment(ctx context.Context, studentID, courseID uuid.UUID) (*entity.Enrollment, error) {
	var enrollment entity.Enrollment
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Upsert creates or updates the record for the pair. The score column is
// only overwritten when withScore is set.
func (r *progressRepository) Upsert(ctx context.Context, record *entity.Progress, withScore bool) error {
	columns := []string{"completed", "updated_at"}
	if withScore {
		columns = append(columns, "score")
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(record).Error
}

func (r *progressRepository) Find(ctx context.Context, studentID, courseID uuid.UUID) (*entity.Progress, error) {
	var record entity.Progress
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *progressRepository) FindByStudent(ctx context.Context, studentID uuid.UUID) ([]entity.Progress, error) {
	var records []entity.Progress
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("student_id = ?", studentID).
		Order("updated_at DESC").
		Find(&records).Error
	return records, err
}

func (r *progressRepository) FindByCourse(ctx context.Context, courseID uuid.UUID) ([]entity.Progress, error) {
	var records []entity.Progress
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("course_id = ?", courseID).
		Order("updated_at DESC").
		Find(&records).Error
	return records, err
}
