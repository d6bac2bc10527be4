package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
)

type CompleteLessonRequest struct {
	LessonID string `json:"lessonId" binding:"required,uuid"`
}

type EnrollmentResponse struct {
	ID          uuid.UUID  `json:"id"`
	StudentID   uuid.UUID  `json:"studentId"`
	CourseID    uuid.UUID  `json:"courseId"`
	Progress    int        `json:"progress"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func NewEnrollmentResponse(e *entity.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:          e.ID,
		StudentID:   e.StudentID,
		CourseID:    e.CourseID,
		Progress:    e.Progress,
		CompletedAt: e.CompletedAt,
		CreatedAt:   e.CreatedAt,
	}
}

type ProgressResponse struct {
	Progress    int        `json:"progress"`
	CompletedAt *time.Time `json:"completedAt"`
}

type CertificateResponse struct {
	CertificateURL string `json:"certificateUrl"`
}

type PersonSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

func newPersonSummary(u *entity.User) *PersonSummary {
	if u == nil {
		return nil
	}
	return &PersonSummary{ID: u.ID, Name: u.DisplayName(), Email: u.Email}
}

// MyCourseResponse is one row of a student's enrolled courses.
type MyCourseResponse struct {
	ID             uuid.UUID      `json:"id"`
	Title          string         `json:"title"`
	Description    *string        `json:"description"`
	Instructor     *PersonSummary `json:"instructor"`
	Progress       int            `json:"progress"`
	CompletedAt    *time.Time     `json:"completedAt"`
	CertificateURL *string        `json:"certificateUrl"`
}

func NewMyCourseResponse(e *entity.Enrollment) MyCourseResponse {
	resp := MyCourseResponse{
		ID:             e.CourseID,
		Progress:       e.Progress,
		CompletedAt:    e.CompletedAt,
		CertificateURL: e.CertificateURL,
	}
	if e.Course != nil {
		resp.Title = e.Course.Title
		resp.Description = e.Course.Description
		resp.Instructor = newPersonSummary(e.Course.Instructor)
	}
	return resp
}

type LessonProgress struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Content       *string   `json:"content"`
	VideoURL      *string   `json:"videoUrl"`
	AttachmentURL *string   `json:"attachmentUrl"`
	Completed     bool      `json:"completed"`
}

type CourseDetailsResponse struct {
	ID             uuid.UUID        `json:"id"`
	Title          string           `json:"title"`
	Description    *string          `json:"description"`
	Instructor     *PersonSummary   `json:"instructor"`
	Prerequisites  []string         `json:"prerequisites"`
	Lessons        []LessonProgress `json:"lessons"`
	Progress       int              `json:"progress"`
	CompletedAt    *time.Time       `json:"completedAt"`
	CertificateURL *string          `json:"certificateUrl"`
}

func NewCourseDetailsResponse(course *entity.Course, e *entity.Enrollment) CourseDetailsResponse {
	lessons := make([]LessonProgress, 0, len(course.Lessons))
	for _, l := range course.Lessons {
		lessons = append(lessons, LessonProgress{
			ID:            l.ID,
			Title:         l.Title,
			Content:       l.Content,
			VideoURL:      l.VideoURL,
			AttachmentURL: l.AttachmentURL,
			Completed:     e.HasCompletedLesson(l.ID),
		})
	}

	prerequisites := []string(course.Prerequisites)
	if prerequisites == nil {
		prerequisites = []string{}
	}

	return CourseDetailsResponse{
		ID:             course.ID,
		Title:          course.Title,
		Description:    course.Description,
		Instructor:     newPersonSummary(course.Instructor),
		Prerequisites:  prerequisites,
		Lessons:        lessons,
		Progress:       e.Progress,
		CompletedAt:    e.CompletedAt,
		CertificateURL: e.CertificateURL,
	}
}

type EnrolledStudentResponse struct {
	EnrollmentID uuid.UUID      `json:"enrollmentId"`
	Student      *PersonSummary `json:"student"`
	Progress     int            `json:"progress"`
	CompletedAt  *time.Time     `json:"completedAt"`
	EnrolledAt   time.Time      `json:"enrolledAt"`
}

func NewEnrolledStudentResponse(e *entity.Enrollment) EnrolledStudentResponse {
	return EnrolledStudentResponse{
		EnrollmentID: e.ID,
		Student:      newPersonSummary(e.Student),
		Progress:     e.Progress,
		CompletedAt:  e.CompletedAt,
		EnrolledAt:   e.CreatedAt,
	}
}
