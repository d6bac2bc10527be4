package course

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
	"github.com/prajaktamali15/e-learning-platform/internal/modules/course/dto"
	"github.com/prajaktamali15/e-learning-platform/pkg/apperror"
)

// transition moves course from the required status to next. The update is
// conditional on the stored status, so a concurrent change fails the same way
// as a stale one.
func (s *courseService) transition(ctx context.Context, course *entity.Course, from, next entity.CourseStatus, rule string) error {
	if course.Status != from || !from.CanTransitionTo(next) {
		return fmt.Errorf("%s: %w", rule, apperror.ErrBadRequest)
	}

	ok, err := s.repo.TransitionStatus(ctx, course.ID, from, next)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", rule, apperror.ErrBadRequest)
	}

	course.Status = next
	return nil
}

func statusResponse(course *entity.Course) *dto.CourseResponse {
	resp := dto.NewCourseResponse(course, false)
	return &resp
}

func (s *courseService) RequestPublish(ctx context.Context, instructorID, courseID uuid.UUID) (*dto.CourseResponse, error) {
	course, err := s.ownedCourse(ctx, instructorID, courseID)
	if err != nil {
		return nil, err
	}

	if err := s.transition(ctx, course, entity.CourseDraft, entity.CoursePending, "only draft courses can be requested for publish"); err != nil {
		return nil, err
	}

	s.notify(ctx, course, instructorID, entity.NotificationCourseSubmitted)
	return statusResponse(course), nil
}

func (s *courseService) CancelPublishRequest(ctx context.Context, instructorID, courseID uuid.UUID) (*dto.CourseResponse, error) {
	course, err := s.ownedCourse(ctx, instructorID, courseID)
	if err != nil {
		return nil, err
	}

	if err := s.transition(ctx, course, entity.CoursePending, entity.CourseDraft, "only pending courses can cancel the publish request"); err != nil {
		return nil, err
	}
	return statusResponse(course), nil
}

// UpdateStatusByInstructor maps the generic status endpoint onto the two moves
// an instructor is allowed to make.
func (s *courseService) UpdateStatusByInstructor(ctx context.Context, instructorID, courseID uuid.UUID, status string) (*dto.CourseResponse, error) {
	target, ok := entity.ParseCourseStatus(status)
	if !ok {
		return nil, fmt.Errorf("invalid status %q: %w", status, apperror.ErrBadRequest)
	}

	switch target {
	case entity.CoursePending:
		return s.RequestPublish(ctx, instructorID, courseID)
	case entity.CourseDraft:
		return s.CancelPublishRequest(ctx, instructorID, courseID)
	default:
		return nil, fmt.Errorf("instructors cannot set status %s: %w", target, apperror.ErrBadRequest)
	}
}

func (s *courseService) Approve(ctx context.Context, adminID, courseID uuid.UUID) (*dto.CourseResponse, error) {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if err := s.transition(ctx, course, entity.CoursePending, entity.CoursePublished, "only pending courses can be approved"); err != nil {
		return nil, err
	}

	s.notify(ctx, course, adminID, entity.NotificationCourseApproved)
	s.syncIndex(ctx, course)
	return statusResponse(course), nil
}

func (s *courseService) Reject(ctx context.Context, adminID, courseID uuid.UUID) (*dto.CourseResponse, error) {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if err := s.transition(ctx, course, entity.CoursePending, entity.CourseRejected, "only pending courses can be rejected"); err != nil {
		return nil, err
	}

	s.notify(ctx, course, adminID, entity.NotificationCourseRejected)
	return statusResponse(course), nil
}
