package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
)

type InstructorCourseCount struct {
	InstructorID   uuid.UUID
	InstructorName string
	CourseCount    int64
}

type CourseStudentCount struct {
	CourseID     uuid.UUID
	CourseTitle  string
	StudentCount int64
}

type StatusCount struct {
	Status entity.CourseStatus
	Count  int64
}

// CourseStats is one row of the per-course progress report.
type CourseStats struct {
	CourseID       uuid.UUID
	Title          string
	Status         entity.CourseStatus
	InstructorName string
	Enrollments    int64
	Completed      int64
	Lessons        int64
}

type AnalyticsRepository interface {
	CountCourses(ctx context.Context) (int64, error)
	CountUsersByRole(ctx context.Context, role entity.Role) (int64, error)
	CoursesPerInstructor(ctx context.Context) ([]InstructorCourseCount, error)
	StudentsPerCourse(ctx context.Context) ([]CourseStudentCount, error)
	StatusDistribution(ctx context.Context) ([]StatusCount, error)
	CourseExists(ctx context.Context, courseID uuid.UUID) (bool, error)
	CountEnrollments(ctx context.Context, courseID uuid.UUID) (int64, error)
	CountCompleted(ctx context.Context, courseID uuid.UUID) (int64, error)
	CourseStats(ctx context.Context, instructorID *uuid.UUID) ([]CourseStats, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) CountCourses(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Course{}).Count(&count).Error
	return count, err
}

func (r *analyticsRepository) CountUsersByRole(ctx context.Context, role entity.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

func (r *analyticsRepository) CoursesPerInstructor(ctx context.Context) ([]InstructorCourseCount, error) {
	var rows []InstructorCourseCount
	err := r.db.WithContext(ctx).
		Table("courses").
		Select("courses.instructor_id AS instructor_id, COALESCE(NULLIF(users.name, ''), users.email) AS instructor_name, COUNT(courses.id) AS course_count").
		Joins("JOIN users ON users.id = courses.instructor_id").
		Group("courses.instructor_id, users.name, users.email").
		Order("course_count DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepository) StudentsPerCourse(ctx context.Context) ([]CourseStudentCount, error) {
	var rows []CourseStudentCount
	err := r.db.WithContext(ctx).
		Table("enrollments").
		Select("enrollments.course_id AS course_id, courses.title AS course_title, COUNT(enrollments.id) AS student_count").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Group("enrollments.course_id, courses.title").
		Order("student_count DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepository) StatusDistribution(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).
		Model(&entity.Course{}).
		Select("status, COUNT(id) AS count").
		Group("status").
		Order("status").
		Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepository) CourseExists(ctx context.Context, courseID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Course{}).Where("id = ?", courseID).Count(&count).Error
	return count > 0, err
}

func (r *analyticsRepository) CountEnrollments(ctx context.Context, courseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Enrollment{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

// CountCompleted counts enrollments at 100%, the single source of completion.
func (r *analyticsRepository) CountCompleted(ctx context.Context, courseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Enrollment{}).
		Where("course_id = ? AND progress >= ?", courseID, 100).
		Count(&count).Error
	return count, err
}

// CourseStats aggregates enrollments, completions and lessons per course in
// one query. A nil instructorID covers every course.
func (r *analyticsRepository) CourseStats(ctx context.Context, instructorID *uuid.UUID) ([]CourseStats, error) {
	enrollments := r.db.Table("enrollments").
		Select("course_id, COUNT(*) AS total, SUM(CASE WHEN progress >= 100 THEN 1 ELSE 0 END) AS completed").
		Group("course_id")
	lessons := r.db.Table("lessons").
		Select("course_id, COUNT(*) AS total").
		Group("course_id")

	query := r.db.WithContext(ctx).
		Table("courses").
		Select(`courses.id AS course_id, courses.title AS title, courses.status AS status,
			COALESCE(NULLIF(users.name, ''), users.email) AS instructor_name,
			COALESCE(e.total, 0) AS enrollments, COALESCE(e.completed, 0) AS completed,
			COALESCE(l.total, 0) AS lessons`).
		Joins("JOIN users ON users.id = courses.instructor_id").
		Joins("LEFT JOIN (?) AS e ON e.course_id = courses.id", enrollments).
		Joins("LEFT JOIN (?) AS l ON l.course_id = courses.id", lessons).
		Order("courses.created_at DESC")
	if instructorID != nil {
		query = query.Where("courses.instructor_id = ?", *instructorID)
	}

	var rows []CourseStats
	err := query.Scan(&rows).Error
	return rows, err
}
