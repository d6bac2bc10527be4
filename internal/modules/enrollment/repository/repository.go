package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
)

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *entity.Enrollment) error
	Find(ctx context.Context, studentID, courseID uuid.UUID) (*entity.Enrollment, error)
	FindByStudent(ctx context.Context, studentID uuid.UUID) ([]entity.Enrollment, error)
	FindByCourse(ctx context.Context, courseID uuid.UUID) ([]entity.Enrollment, error)
	UpdateProgress(ctx context.Context, studentID, courseID uuid.UUID, apply func(*entity.Enrollment) error) (*entity.Enrollment, error)
	SetCertificateURL(ctx context.Context, id uuid.UUID, url string) (bool, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *entity.Enrollment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(enrollment).Error; err != nil {
			return err
		}
		return upsertCompleted(tx, enrollment)
	})
}

// Find loads the enrollment of a student in a course together with both sides.
func (r *enrollmentRepository) Find(ctx context.Context, studentID, courseID uuid.UUID) (*entity.Enrollment, error) {
	var enrollment entity.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Course").
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) FindByStudent(ctx context.Context, studentID uuid.UUID) ([]entity.Enrollment, error) {
	var enrollments []entity.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Course.Instructor").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *enrollmentRepository) FindByCourse(ctx context.Context, courseID uuid.UUID) ([]entity.Enrollment, error) {
	var enrollments []entity.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&enrollments).Error
	return enrollments, err
}

// UpdateProgress reloads the enrollment inside a transaction, lets apply
// mutate it, then writes the progress columns and mirrors the completed flag
// onto the course-level progress record. On postgres the row is locked so
// concurrent completions of different lessons do not lose each other.
func (r *enrollmentRepository) UpdateProgress(ctx context.Context, studentID, courseID uuid.UUID, apply func(*entity.Enrollment) error) (*entity.Enrollment, error) {
	var enrollment entity.Enrollment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := query.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&enrollment).Error; err != nil {
			return err
		}

		if err := apply(&enrollment); err != nil {
			return err
		}

		if err := tx.Model(&entity.Enrollment{}).
			Where("id = ?", enrollment.ID).
			Updates(map[string]any{
				"progress":             enrollment.Progress,
				"completed_lesson_ids": enrollment.CompletedLessonIDs,
				"completed_at":         enrollment.CompletedAt,
			}).Error; err != nil {
			return err
		}
		return upsertCompleted(tx, &enrollment)
	})
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// SetCertificateURL stores url only when none is stored yet and reports
// whether this call won.
func (r *enrollmentRepository) SetCertificateURL(ctx context.Context, id uuid.UUID, url string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.Enrollment{}).
		Where("id = ? AND certificate_url IS NULL", id).
		Update("certificate_url", url)
	return res.RowsAffected > 0, res.Error
}

func upsertCompleted(tx *gorm.DB, enrollment *entity.Enrollment) error {
	record := entity.Progress{
		StudentID: enrollment.StudentID,
		CourseID:  enrollment.CourseID,
		Completed: enrollment.IsComplete(),
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "updated_at"}),
	}).Create(&record).Error
}
