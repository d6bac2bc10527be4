package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
)

type LessonInput struct {
	ID            *uuid.UUID `json:"id"`
	Title         string     `json:"title" binding:"max=255"`
	Content       *string    `json:"content"`
	VideoURL      *string    `json:"videoUrl"`
	AttachmentURL *string    `json:"attachmentUrl"`
}

type CreateCourseRequest struct {
	Title           string        `json:"title" binding:"required,max=255"`
	Description     *string       `json:"description"`
	CategoryID      *uuid.UUID    `json:"categoryId"`
	Prerequisites   []string      `json:"prerequisites"`
	Lessons         []LessonInput `json:"lessons" binding:"omitempty,dive"`
	SubmitForReview bool          `json:"submitForReview"`
}

// UpdateCourseRequest is a patch. Lessons carrying an id are updated in place,
// the rest are appended. Lessons missing from the list are kept.
type UpdateCourseRequest struct {
	Title         *string       `json:"title" binding:"omitempty,min=1,max=255"`
	Description   *string       `json:"description"`
	CategoryID    *uuid.UUID    `json:"categoryId"`
	Prerequisites []string      `json:"prerequisites"`
	Lessons       []LessonInput `json:"lessons" binding:"omitempty,dive"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type AddPrerequisiteRequest struct {
	PrerequisiteName string `json:"prerequisiteName" binding:"required,max=255"`
}

// LessonForm is the multipart variant of lesson create/update; files travel
// alongside as videoFile and attachmentFile.
type LessonForm struct {
	Title    string  `form:"title" json:"title"`
	Content  *string `form:"content" json:"content"`
	VideoURL *string `form:"videoUrl" json:"videoUrl"`
}

func (f LessonForm) Input() LessonInput {
	return LessonInput{Title: f.Title, Content: f.Content, VideoURL: f.VideoURL}
}

type InstructorSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type CategorySummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

type LessonResponse struct {
	ID            uuid.UUID `json:"id"`
	CourseID      uuid.UUID `json:"courseId"`
	Title         string    `json:"title"`
	Content       *string   `json:"content"`
	VideoURL      *string   `json:"videoUrl"`
	AttachmentURL *string   `json:"attachmentUrl"`
	Position      int       `json:"position"`
	CreatedAt     time.Time `json:"createdAt"`
}

type CourseResponse struct {
	ID              uuid.UUID           `json:"id"`
	Title           string              `json:"title"`
	Description     *string             `json:"description"`
	Status          entity.CourseStatus `json:"status"`
	InstructorID    uuid.UUID           `json:"instructorId"`
	Instructor      *InstructorSummary  `json:"instructor,omitempty"`
	CategoryID      *uuid.UUID          `json:"categoryId"`
	Category        *CategorySummary    `json:"category,omitempty"`
	Prerequisites   []string            `json:"prerequisites"`
	LessonCount     int                 `json:"lessonCount"`
	Lessons         []LessonResponse    `json:"lessons,omitempty"`
	EnrollmentCount *int64              `json:"enrollmentCount,omitempty"`
	Enrolled        *bool               `json:"enrolled,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

func NewLessonResponse(l *entity.Lesson) LessonResponse {
	return LessonResponse{
		ID:            l.ID,
		CourseID:      l.CourseID,
		Title:         l.Title,
		Content:       l.Content,
		VideoURL:      l.VideoURL,
		AttachmentURL: l.AttachmentURL,
		Position:      l.Position,
		CreatedAt:     l.CreatedAt,
	}
}

// NewCourseResponse maps a course. Lessons are included only when withLessons is set.
func NewCourseResponse(c *entity.Course, withLessons bool) CourseResponse {
	resp := CourseResponse{
		ID:            c.ID,
		Title:         c.Title,
		Description:   c.Description,
		Status:        c.Status,
		InstructorID:  c.InstructorID,
		CategoryID:    c.CategoryID,
		Prerequisites: []string(c.Prerequisites),
		LessonCount:   len(c.Lessons),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	if resp.Prerequisites == nil {
		resp.Prerequisites = []string{}
	}
	if c.Instructor != nil {
		resp.Instructor = &InstructorSummary{
			ID:    c.Instructor.ID,
			Name:  c.Instructor.DisplayName(),
			Email: c.Instructor.Email,
		}
	}
	if c.Category != nil {
		resp.Category = &CategorySummary{ID: c.Category.ID, Name: c.Category.Name, Slug: c.Category.Slug}
	}
	if withLessons {
		resp.Lessons = make([]LessonResponse, 0, len(c.Lessons))
		for i := range c.Lessons {
			resp.Lessons = append(resp.Lessons, NewLessonResponse(&c.Lessons[i]))
		}
	}
	return resp
}
