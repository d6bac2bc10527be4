package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
)

// ErrStatusMismatch is returned when a guarded write finds the course in a
// status it does not allow.
var ErrStatusMismatch = errors.New("course status does not allow this change")

type CourseFilter struct {
	Status       *entity.CourseStatus
	InstructorID *uuid.UUID
	Search       string
	Limit        int
}

type CourseRepository interface {
	Create(ctx context.Context, course *entity.Course) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Course, error)
	FindAll(ctx context.Context, filter CourseFilter) ([]entity.Course, error)
	Update(ctx context.Context, course *entity.Course, lessons []entity.Lesson) error
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.CourseStatus) (bool, error)
	Delete(ctx context.Context, id uuid.UUID, allowed ...entity.CourseStatus) error
	CountEnrollments(ctx context.Context, courseID uuid.UUID) (int64, error)
	EnrolledCourseIDs(ctx context.Context, studentID uuid.UUID) ([]uuid.UUID, error)
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func orderedLessons(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC").Order("created_at ASC")
}

func (r *courseRepository) Create(ctx context.Context, course *entity.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	var course entity.Course
	if err := r.db.WithContext(ctx).
		Preload("Instructor").
		Preload("Category").
		Preload("Lessons", orderedLessons).
		Where("id = ?", id).
		First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByIDs returns the courses in the order of ids; unknown ids are skipped.
func (r *courseRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Course, error) {
	if len(ids) == 0 {
		return []entity.Course{}, nil
	}

	var courses []entity.Course
	if err := r.db.WithContext(ctx).
		Preload("Instructor").
		Preload("Category").
		Preload("Lessons", orderedLessons).
		Where("id IN ?", ids).
		Find(&courses).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]entity.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}
	ordered := make([]entity.Course, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered, nil
}

func (r *courseRepository) FindAll(ctx context.Context, filter CourseFilter) ([]entity.Course, error) {
	query := r.db.WithContext(ctx).
		Preload("Instructor").
		Preload("Category").
		Preload("Lessons", orderedLessons)

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.InstructorID != nil {
		query = query.Where("instructor_id = ?", *filter.InstructorID)
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?)", like, like)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var courses []entity.Course
	if err := query.Order("created_at DESC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

// Update writes the editable course columns and upserts the given lessons in
// one transaction. Status is never written here; it only moves through
// TransitionStatus. Lessons with an id must already belong to the course.
func (r *courseRepository) Update(ctx context.Context, course *entity.Course, lessons []entity.Lesson) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		course.UpdatedAt = time.Now()
		if course.Prerequisites == nil {
			course.Prerequisites = datatypes.JSONSlice[string]{}
		}
		if err := tx.Model(&entity.Course{}).
			Where("id = ?", course.ID).
			Updates(map[string]any{
				"title":         course.Title,
				"description":   course.Description,
				"category_id":   course.CategoryID,
				"prerequisites": course.Prerequisites,
				"updated_at":    course.UpdatedAt,
			}).Error; err != nil {
			return err
		}

		var position int64
		if err := tx.Model(&entity.Lesson{}).Where("course_id = ?", course.ID).Count(&position).Error; err != nil {
			return err
		}

		for i := range lessons {
			lesson := &lessons[i]
			if lesson.ID == uuid.Nil {
				lesson.CourseID = course.ID
				lesson.Position = int(position)
				position++
				if err := tx.Create(lesson).Error; err != nil {
					return err
				}
				continue
			}

			res := tx.Model(&entity.Lesson{}).
				Where("id = ? AND course_id = ?", lesson.ID, course.ID).
				Updates(map[string]any{
					"title":          lesson.Title,
					"content":        lesson.Content,
					"video_url":      lesson.VideoURL,
					"attachment_url": lesson.AttachmentURL,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
}

// TransitionStatus moves the course from one status to another only if it is
// still in the expected status. It reports whether a row changed.
func (r *courseRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.CourseStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.Course{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the course with its lessons, enrollments and progress records.
// Attachments of the removed lessons are detached so the cleanup job sweeps them.
// When allowed is not empty the course must be in one of those statuses at
// delete time, otherwise ErrStatusMismatch is returned and nothing is removed.
func (r *courseRepository) Delete(ctx context.Context, id uuid.UUID, allowed ...entity.CourseStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(allowed) > 0 {
			if err := guardStatus(tx, id, allowed); err != nil {
				return err
			}
		}

		lessonIDs := tx.Model(&entity.Lesson{}).Select("id").Where("course_id = ?", id)
		if err := tx.Model(&entity.Attachment{}).
			Where("lesson_id IN (?)", lessonIDs).
			Update("lesson_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&entity.Progress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&entity.Enrollment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&entity.Lesson{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&entity.Notification{}).Where("course_id = ?", id).Update("course_id", nil).Error; err != nil {
			return err
		}

		res := tx.Delete(&entity.Course{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// guardStatus touches the course row only while it is in an allowed status.
// The write holds the row until the transaction ends, so a concurrent
// TransitionStatus cannot slip in between the check and the delete.
func guardStatus(tx *gorm.DB, id uuid.UUID, allowed []entity.CourseStatus) error {
	res := tx.Model(&entity.Course{}).
		Where("id = ? AND status IN ?", id, allowed).
		Update("updated_at", time.Now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&entity.Course{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return ErrStatusMismatch
}

func (r *courseRepository) CountEnrollments(ctx context.Context, courseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Enrollment{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func (r *courseRepository) EnrolledCourseIDs(ctx context.Context, studentID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&entity.Enrollment{}).Where("student_id = ?", studentID).Pluck("course_id", &ids).Error
	return ids, err
}
