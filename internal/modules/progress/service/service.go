package progress

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
	courseRepo "github.com/prajaktamali15/e-learning-platform/internal/modules/course/repository"
	"github.com/prajaktamali15/e-learning-platform/internal/modules/progress/dto"
	"github.com/prajaktamali15/e-learning-platform/internal/modules/progress/repository"
	"github.com/prajaktamali15/e-learning-platform/pkg/apperror"
)

type ProgressService interface {
	Upsert(ctx context.Context, studentID, courseID uuid.UUID, req dto.UpsertProgressRequest) (*dto.ProgressResponse, error)
	GetStudentProgress(ctx context.Context, studentID uuid.UUID) ([]dto.ProgressResponse, error)
	GetCourseProgress(ctx context.Context, courseID uuid.UUID) ([]dto.ProgressResponse, error)
}

type progressService struct {
	repo    repository.ProgressRepository
	courses courseRepo.CourseRepository
}

func NewProgressService(repo repository.ProgressRepository, courses courseRepo.CourseRepository) ProgressService {
	return &progressService{repo: repo, courses: courses}
}

// Upsert records a score for an enrolled student. The completed flag always
// follows the enrollment; a request that contradicts it is rejected.
func (s *progressService) Upsert(ctx context.Context, studentID, courseID uuid.UUID, req dto.UpsertProgressRequest) (*dto.ProgressResponse, error) {
	if req.Score != nil && (*req.Score < 0 || *req.Score > 100) {
		return nil, fmt.Errorf("score must be between 0 and 100: %w", apperror.ErrBadRequest)
	}

	enrollment, err := s.repo.FindEnrollment(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("not enrolled in this course: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if req.Completed != nil && *req.Completed != enrollment.IsComplete() {
		if *req.Completed {
			return nil, fmt.Errorf("course not completed yet: %w", apperror.ErrBadRequest)
		}
		return nil, fmt.Errorf("course is already completed: %w", apperror.ErrBadRequest)
	}

	record := &entity.Progress{
		StudentID: studentID,
		CourseID:  courseID,
		Completed: enrollment.IsComplete(),
		Score:     req.Score,
	}
	if err := s.repo.Upsert(ctx, record, req.Score != nil); err != nil {
		return nil, err
	}

	stored, err := s.repo.Find(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewProgressResponse(stored)
	return &resp, nil
}

func (s *progressService) GetStudentProgress(ctx context.Context, studentID uuid.UUID) ([]dto.ProgressResponse, error) {
	records, err := s.repo.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return toResponses(records), nil
}

func (s *progressService) GetCourseProgress(ctx context.Context, courseID uuid.UUID) ([]dto.ProgressResponse, error) {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	records, err := s.repo.FindByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return toResponses(records), nil
}

func toResponses(records []entity.Progress) []dto.ProgressResponse {
	out := make([]dto.ProgressResponse, 0, len(records))
	for i := range records {
		out = append(out, dto.NewProgressResponse(&records[i]))
	}
	return out
}
