package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
)

type UpsertProgressRequest struct {
	Completed *bool    `json:"completed"`
	Score     *float64 `json:"score" binding:"omitempty,gte=0,lte=100"`
}

type CourseSummary struct {
	ID     uuid.UUID           `json:"id"`
	Title  string              `json:"title"`
	Status entity.CourseStatus `json:"status"`
}

type StudentSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type ProgressResponse struct {
	ID        uuid.UUID       `json:"id"`
	StudentID uuid.UUID       `json:"studentId"`
	CourseID  uuid.UUID       `json:"courseId"`
	Completed bool            `json:"completed"`
	Score     *float64        `json:"score"`
	Course    *CourseSummary  `json:"course,omitempty"`
	Student   *StudentSummary `json:"student,omitempty"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func NewProgressResponse(p *entity.Progress) ProgressResponse {
	resp := ProgressResponse{
		ID:        p.ID,
		StudentID: p.StudentID,
		CourseID:  p.CourseID,
		Completed: p.Completed,
		Score:     p.Score,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Course != nil {
		resp.Course = &CourseSummary{ID: p.Course.ID, Title: p.Course.Title, Status: p.Course.Status}
	}
	if p.Student != nil {
		resp.Student = &StudentSummary{ID: p.Student.ID, Name: p.Student.DisplayName(), Email: p.Student.Email}
	}
	return resp
}
