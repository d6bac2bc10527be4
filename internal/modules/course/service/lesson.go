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
	"github.com/prajaktamali15/e-learning-platform/pkg/apperror"
)

func (s *courseService) loadLesson(ctx context.Context, lessonID uuid.UUID) (*entity.Lesson, error) {
	lesson, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lesson not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return lesson, nil
}

// ownedLesson loads a lesson and checks that its course belongs to the instructor.
func (s *courseService) ownedLesson(ctx context.Context, instructorID, lessonID uuid.UUID, action string) (*entity.Lesson, *entity.Course, error) {
	lesson, err := s.loadLesson(ctx, lessonID)
	if err != nil {
		return nil, nil, err
	}
	course, err := s.loadCourse(ctx, lesson.CourseID)
	if err != nil {
		return nil, nil, err
	}
	if course.InstructorID != instructorID {
		return nil, nil, fmt.Errorf("you do not have permission to %s this lesson: %w", action, apperror.ErrForbidden)
	}
	return lesson, course, nil
}

// upload stores the multipart files of a lesson request and returns their URLs.
func (s *courseService) upload(ctx context.Context, userID uuid.UUID, files LessonFiles) (video, doc *string, err error) {
	if (files.Video != nil || files.Attachment != nil) && s.media == nil {
		return nil, nil, fmt.Errorf("file uploads are not configured: %w", apperror.ErrInternal)
	}
	if files.Video != nil {
		att, err := s.media.UploadLessonFile(ctx, userID, entity.AttachmentVideo, files.Video)
		if err != nil {
			return nil, nil, err
		}
		video = &att.FileURL
	}
	if files.Attachment != nil {
		att, err := s.media.UploadLessonFile(ctx, userID, entity.AttachmentDocument, files.Attachment)
		if err != nil {
			return nil, nil, err
		}
		doc = &att.FileURL
	}
	return video, doc, nil
}

func (s *courseService) AddLesson(ctx context.Context, instructorID, courseID uuid.UUID, input dto.LessonInput, files LessonFiles) (*dto.LessonResponse, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("lesson must have a title: %w", apperror.ErrBadRequest)
	}

	course, err := s.ownedCourse(ctx, instructorID, courseID)
	if err != nil {
		return nil, err
	}

	video, doc, err := s.upload(ctx, instructorID, files)
	if err != nil {
		return nil, err
	}

	lesson := &entity.Lesson{
		CourseID:      course.ID,
		Title:         title,
		Content:       s.sanitize(input.Content),
		VideoURL:      input.VideoURL,
		AttachmentURL: input.AttachmentURL,
	}
	if video != nil {
		lesson.VideoURL = video
	}
	if doc != nil {
		lesson.AttachmentURL = doc
	}

	if err := s.lessons.Create(ctx, lesson); err != nil {
		return nil, err
	}
	s.linkMedia(ctx, instructorID, lesson)

	if course.Status == entity.CoursePublished {
		course.Lessons = append(course.Lessons, *lesson)
		s.syncIndex(ctx, course)
	}

	resp := dto.NewLessonResponse(lesson)
	return &resp, nil
}

// UpdateLesson patches a lesson. A replaced file is released back to the
// orphan pool instead of being deleted right away.
func (s *courseService) UpdateLesson(ctx context.Context, instructorID, lessonID uuid.UUID, input dto.LessonInput, files LessonFiles) (*dto.LessonResponse, error) {
	lesson, course, err := s.ownedLesson(ctx, instructorID, lessonID, "update")
	if err != nil {
		return nil, err
	}

	video, doc, err := s.upload(ctx, instructorID, files)
	if err != nil {
		return nil, err
	}

	prevVideo, prevDoc := lesson.VideoURL, lesson.AttachmentURL

	if title := strings.TrimSpace(input.Title); title != "" {
		lesson.Title = title
	}
	if input.Content != nil {
		lesson.Content = s.sanitize(input.Content)
	}
	if input.VideoURL != nil {
		lesson.VideoURL = input.VideoURL
	}
	if input.AttachmentURL != nil {
		lesson.AttachmentURL = input.AttachmentURL
	}
	if video != nil {
		lesson.VideoURL = video
	}
	if doc != nil {
		lesson.AttachmentURL = doc
	}

	if err := s.lessons.Update(ctx, lesson); err != nil {
		return nil, err
	}
	s.linkMedia(ctx, instructorID, lesson)
	s.releaseIfReplaced(ctx, lesson.ID, prevVideo, lesson.VideoURL)
	s.releaseIfReplaced(ctx, lesson.ID, prevDoc, lesson.AttachmentURL)

	if course.Status == entity.CoursePublished {
		if fresh, err := s.loadCourse(ctx, course.ID); err == nil {
			s.syncIndex(ctx, fresh)
		}
	}

	resp := dto.NewLessonResponse(lesson)
	return &resp, nil
}

func (s *courseService) releaseIfReplaced(ctx context.Context, lessonID uuid.UUID, prev, current *string) {
	if s.media == nil || prev == nil || *prev == "" {
		return
	}
	if current != nil && *current == *prev {
		return
	}
	if err := s.media.Release(ctx, lessonID, *prev); err != nil {
		s.log.Warn("failed to release lesson media", "lesson_id", lessonID, "url", *prev, "error", err)
	}
}

func (s *courseService) DeleteLesson(ctx context.Context, instructorID, lessonID uuid.UUID) error {
	lesson, course, err := s.ownedLesson(ctx, instructorID, lessonID, "delete")
	if err != nil {
		return err
	}

	if err := s.lessons.Delete(ctx, lesson.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("lesson not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if course.Status == entity.CoursePublished {
		if fresh, err := s.loadCourse(ctx, course.ID); err == nil {
			s.syncIndex(ctx, fresh)
		}
	}
	return nil
}
