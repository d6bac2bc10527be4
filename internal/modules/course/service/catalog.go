package course

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
	"github.com/prajaktamali15/e-learning-platform/internal/modules/course/dto"
	"github.com/prajaktamali15/e-learning-platform/internal/modules/course/repository"
	"github.com/prajaktamali15/e-learning-platform/pkg/apperror"
)

var errNotDeletable = fmt.Errorf("only pending or draft courses can be deleted: %w", apperror.ErrBadRequest)

func (s *courseService) Create(ctx context.Context, instructorID uuid.UUID, req dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required: %w", apperror.ErrBadRequest)
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	lessons := make([]entity.Lesson, 0, len(req.Lessons))
	for i, in := range req.Lessons {
		lessonTitle := strings.TrimSpace(in.Title)
		if lessonTitle == "" {
			return nil, fmt.Errorf("each lesson must have a title: %w", apperror.ErrBadRequest)
		}
		lessons = append(lessons, entity.Lesson{
			Title:         lessonTitle,
			Content:       s.sanitize(in.Content),
			VideoURL:      in.VideoURL,
			AttachmentURL: in.AttachmentURL,
			Position:      i,
		})
	}

	status := entity.CourseDraft
	if req.SubmitForReview {
		status = entity.CoursePending
	}

	course := &entity.Course{
		Title:         title,
		Description:   req.Description,
		InstructorID:  instructorID,
		CategoryID:    req.CategoryID,
		Status:        status,
		Prerequisites: entity.NormalizePrerequisites(req.Prerequisites),
		Lessons:       lessons,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, err
	}

	for i := range course.Lessons {
		s.linkMedia(ctx, instructorID, &course.Lessons[i])
	}
	if course.Status == entity.CoursePending {
		s.notify(ctx, course, instructorID, entity.NotificationCourseSubmitted)
	}

	created, err := s.loadCourse(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewCourseResponse(created, true)
	return &resp, nil
}

func (s *courseService) Update(ctx context.Context, instructorID, courseID uuid.UUID, req dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	course, err := s.ownedCourse(ctx, instructorID, courseID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("title cannot be empty: %w", apperror.ErrBadRequest)
		}
		course.Title = title
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.CategoryID != nil {
		if err := s.checkCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		course.CategoryID = req.CategoryID
	}
	if req.Prerequisites != nil {
		course.Prerequisites = entity.NormalizePrerequisites(req.Prerequisites)
	}

	existing := make(map[uuid.UUID]entity.Lesson, len(course.Lessons))
	for _, l := range course.Lessons {
		existing[l.ID] = l
	}

	upserts := make([]entity.Lesson, 0, len(req.Lessons))
	for _, in := range req.Lessons {
		if in.ID == nil {
			title := strings.TrimSpace(in.Title)
			if title == "" {
				return nil, fmt.Errorf("new lesson must have a title: %w", apperror.ErrBadRequest)
			}
			upserts = append(upserts, entity.Lesson{
				Title:         title,
				Content:       s.sanitize(in.Content),
				VideoURL:      in.VideoURL,
				AttachmentURL: in.AttachmentURL,
			})
			continue
		}

		lesson, ok := existing[*in.ID]
		if !ok {
			return nil, fmt.Errorf("lesson %s does not belong to this course: %w", *in.ID, apperror.ErrBadRequest)
		}
		if title := strings.TrimSpace(in.Title); title != "" {
			lesson.Title = title
		}
		if in.Content != nil {
			lesson.Content = s.sanitize(in.Content)
		}
		if in.VideoURL != nil {
			lesson.VideoURL = in.VideoURL
		}
		if in.AttachmentURL != nil {
			lesson.AttachmentURL = in.AttachmentURL
		}
		upserts = append(upserts, lesson)
	}

	course.Lessons = nil
	if err := s.repo.Update(ctx, course, upserts); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lesson not found in this course: %w", apperror.ErrBadRequest)
		}
		return nil, err
	}
	for i := range upserts {
		s.linkMedia(ctx, instructorID, &upserts[i])
	}

	updated, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if updated.Status == entity.CoursePublished {
		s.syncIndex(ctx, updated)
	}

	resp := dto.NewCourseResponse(updated, true)
	return &resp, nil
}

// GetByID returns the course with lessons and its enrollment count.
func (s *courseService) GetByID(ctx context.Context, courseID uuid.UUID) (*dto.CourseResponse, error) {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountEnrollments(ctx, courseID)
	if err != nil {
		return nil, err
	}

	resp := dto.NewCourseResponse(course, true)
	resp.EnrollmentCount = &count
	return &resp, nil
}

// ListPublished lists the catalog newest first. With a viewer, each course
// carries whether the viewer is enrolled.
func (s *courseService) ListPublished(ctx context.Context, viewerID *uuid.UUID) ([]dto.CourseResponse, error) {
	status := entity.CoursePublished
	courses, err := s.repo.FindAll(ctx, repository.CourseFilter{Status: &status})
	if err != nil {
		return nil, err
	}

	if viewerID == nil {
		return toResponses(courses, nil), nil
	}

	ids, err := s.repo.EnrolledCourseIDs(ctx, *viewerID)
	if err != nil {
		return nil, err
	}
	enrolled := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		enrolled[id] = true
	}
	return toResponses(courses, enrolled), nil
}

func (s *courseService) ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]dto.CourseResponse, error) {
	courses, err := s.repo.FindAll(ctx, repository.CourseFilter{InstructorID: &instructorID})
	if err != nil {
		return nil, err
	}
	return toResponses(courses, nil), nil
}

func (s *courseService) ListPendingByInstructor(ctx context.Context, instructorID uuid.UUID) ([]dto.CourseResponse, error) {
	status := entity.CoursePending
	courses, err := s.repo.FindAll(ctx, repository.CourseFilter{InstructorID: &instructorID, Status: &status})
	if err != nil {
		return nil, err
	}
	return toResponses(courses, nil), nil
}

// ListAll is the admin view; status optionally narrows it.
func (s *courseService) ListAll(ctx context.Context, status string) ([]dto.CourseResponse, error) {
	filter := repository.CourseFilter{}
	if status != "" {
		st, ok := entity.ParseCourseStatus(status)
		if !ok {
			return nil, fmt.Errorf("invalid status %q: %w", status, apperror.ErrBadRequest)
		}
		filter.Status = &st
	}

	courses, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toResponses(courses, nil), nil
}

func (s *courseService) SearchOwn(ctx context.Context, instructorID uuid.UUID, query string) ([]dto.CourseResponse, error) {
	if strings.TrimSpace(query) == "" {
		return []dto.CourseResponse{}, nil
	}

	courses, err := s.repo.FindAll(ctx, repository.CourseFilter{InstructorID: &instructorID, Search: query})
	if err != nil {
		return nil, err
	}
	return toResponses(courses, nil), nil
}

// PublicSearch queries the search index and falls back to a database title
// search when the index is unavailable.
func (s *courseService) PublicSearch(ctx context.Context, query string, limit int) ([]dto.CourseResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []dto.CourseResponse{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	if s.indexer != nil {
		ids, err := s.indexer.SearchCourses(ctx, query, limit)
		if err == nil {
			courses, err := s.repo.FindByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			published := courses[:0]
			for _, c := range courses {
				if c.Status == entity.CoursePublished {
					published = append(published, c)
				}
			}
			return toResponses(published, nil), nil
		}
		s.log.Warn("search index unavailable, falling back to database", "error", err)
	}

	status := entity.CoursePublished
	courses, err := s.repo.FindAll(ctx, repository.CourseFilter{Status: &status, Search: query, Limit: limit})
	if err != nil {
		return nil, err
	}
	return toResponses(courses, nil), nil
}

func (s *courseService) AddPrerequisite(ctx context.Context, instructorID, courseID uuid.UUID, name string) (*dto.CourseResponse, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("prerequisite name is required: %w", apperror.ErrBadRequest)
	}

	course, err := s.ownedCourse(ctx, instructorID, courseID)
	if err != nil {
		return nil, err
	}

	if course.AddPrerequisite(name) {
		lessons := course.Lessons
		course.Lessons = nil
		if err := s.repo.Update(ctx, course, nil); err != nil {
			return nil, err
		}
		course.Lessons = lessons
		if course.Status == entity.CoursePublished {
			s.syncIndex(ctx, course)
		}
	}

	resp := dto.NewCourseResponse(course, true)
	return &resp, nil
}

func (s *courseService) Delete(ctx context.Context, instructorID, courseID uuid.UUID) error {
	course, err := s.ownedCourse(ctx, instructorID, courseID)
	if err != nil {
		return err
	}
	if !course.Status.DeletableByInstructor() {
		return errNotDeletable
	}
	// The repository re-checks the status inside the delete transaction.
	return s.remove(ctx, course.ID, entity.CourseDraft, entity.CoursePending)
}

func (s *courseService) AdminDelete(ctx context.Context, courseID uuid.UUID) error {
	if _, err := s.loadCourse(ctx, courseID); err != nil {
		return err
	}
	return s.remove(ctx, courseID)
}

func (s *courseService) remove(ctx context.Context, courseID uuid.UUID, allowed ...entity.CourseStatus) error {
	if err := s.repo.Delete(ctx, courseID, allowed...); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("course not found: %w", apperror.ErrNotFound)
		}
		if errors.Is(err, repository.ErrStatusMismatch) {
			return errNotDeletable
		}
		return err
	}
	s.unindex(ctx, courseID)
	return nil
}
