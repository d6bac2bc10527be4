package course

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
	attachment "github.com/prajaktamali15/e-learning-platform/internal/modules/attachment/service"
	category "github.com/prajaktamali15/e-learning-platform/internal/modules/category/service"
	"github.com/prajaktamali15/e-learning-platform/internal/modules/course/dto"
	"github.com/prajaktamali15/e-learning-platform/internal/modules/course/repository"
	notification "github.com/prajaktamali15/e-learning-platform/internal/modules/notification/service"
	search "github.com/prajaktamali15/e-learning-platform/internal/modules/search/service"
	"github.com/prajaktamali15/e-learning-platform/pkg/apperror"
	"github.com/prajaktamali15/e-learning-platform/pkg/logger"
)

// LessonFiles are the optional uploads sent with a multipart lesson request.
type LessonFiles struct {
	Video      *multipart.FileHeader
	Attachment *multipart.FileHeader
}

type CourseService interface {
	Create(ctx context.Context, instructorID uuid.UUID, req dto.CreateCourseRequest) (*dto.CourseResponse, error)
	Update(ctx context.Context, instructorID, courseID uuid.UUID, req dto.UpdateCourseRequest) (*dto.CourseResponse, error)
	GetByID(ctx context.Context, courseID uuid.UUID) (*dto.CourseResponse, error)
	ListPublished(ctx context.Context, viewerID *uuid.UUID) ([]dto.CourseResponse, error)
	ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]dto.CourseResponse, error)
	ListPendingByInstructor(ctx context.Context, instructorID uuid.UUID) ([]dto.CourseResponse, error)
	ListAll(ctx context.Context, status string) ([]dto.CourseResponse, error)
	SearchOwn(ctx context.Context, instructorID uuid.UUID, query string) ([]dto.CourseResponse, error)
	PublicSearch(ctx context.Context, query string, limit int) ([]dto.CourseResponse, error)
	AddPrerequisite(ctx context.Context, instructorID, courseID uuid.UUID, name string) (*dto.CourseResponse, error)
	Delete(ctx context.Context, instructorID, courseID uuid.UUID) error
	AdminDelete(ctx context.Context, courseID uuid.UUID) error

	RequestPublish(ctx context.Context, instructorID, courseID uuid.UUID) (*dto.CourseResponse, error)
	CancelPublishRequest(ctx context.Context, instructorID, courseID uuid.UUID) (*dto.CourseResponse, error)
	UpdateStatusByInstructor(ctx context.Context, instructorID, courseID uuid.UUID, status string) (*dto.CourseResponse, error)
	Approve(ctx context.Context, adminID, courseID uuid.UUID) (*dto.CourseResponse, error)
	Reject(ctx context.Context, adminID, courseID uuid.UUID) (*dto.CourseResponse, error)

	AddLesson(ctx context.Context, instructorID, courseID uuid.UUID, input dto.LessonInput, files LessonFiles) (*dto.LessonResponse, error)
	UpdateLesson(ctx context.Context, instructorID, lessonID uuid.UUID, input dto.LessonInput, files LessonFiles) (*dto.LessonResponse, error)
	DeleteLesson(ctx context.Context, instructorID, lessonID uuid.UUID) error
}

type courseService struct {
	repo       repository.CourseRepository
	lessons    repository.LessonRepository
	categories category.CategoryService
	media      attachment.AttachmentService
	notifier   notification.NotificationService
	indexer    search.CourseIndexer
	policy     *bluemonday.Policy
	log        *logger.Logger
}

// NewCourseService wires the catalog. indexer may be nil when meilisearch is
// not configured; search then falls back to the database.
func NewCourseService(
	repo repository.CourseRepository,
	lessons repository.LessonRepository,
	categories category.CategoryService,
	media attachment.AttachmentService,
	notifier notification.NotificationService,
	indexer search.CourseIndexer,
	log *logger.Logger,
) CourseService {
	return &courseService{
		repo:       repo,
		lessons:    lessons,
		categories: categories,
		media:      media,
		notifier:   notifier,
		indexer:    indexer,
		policy:     bluemonday.UGCPolicy(),
		log:        log,
	}
}

func (s *courseService) loadCourse(ctx context.Context, courseID uuid.UUID) (*entity.Course, error) {
	course, err := s.repo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return course, nil
}

func (s *courseService) ownedCourse(ctx context.Context, instructorID, courseID uuid.UUID) (*entity.Course, error) {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.InstructorID != instructorID {
		return nil, fmt.Errorf("you do not own this course: %w", apperror.ErrForbidden)
	}
	return course, nil
}

func (s *courseService) sanitize(content *string) *string {
	if content == nil {
		return nil
	}
	clean := s.policy.Sanitize(*content)
	return &clean
}

func (s *courseService) checkCategory(ctx context.Context, categoryID *uuid.UUID) error {
	if categoryID == nil || s.categories == nil {
		return nil
	}
	return s.categories.Exists(ctx, *categoryID)
}

// syncIndex pushes a published course to the search index. Index failures are
// logged; the nightly reindex repairs drift.
func (s *courseService) syncIndex(ctx context.Context, course *entity.Course) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexCourse(ctx, course); err != nil {
		s.log.Warn("failed to index course", "course_id", course.ID, "error", err)
	}
}

func (s *courseService) unindex(ctx context.Context, courseID uuid.UUID) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.RemoveCourse(ctx, courseID); err != nil {
		s.log.Warn("failed to remove course from index", "course_id", courseID, "error", err)
	}
}

func (s *courseService) notify(ctx context.Context, course *entity.Course, actorID uuid.UUID, notificationType string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyCourseEvent(ctx, course, actorID, notificationType); err != nil {
		s.log.Warn("failed to send course notification", "course_id", course.ID, "type", notificationType, "error", err)
	}
}

// linkMedia lets the lesson claim uploads referenced by its URLs so the orphan
// sweep leaves them alone.
func (s *courseService) linkMedia(ctx context.Context, userID uuid.UUID, lesson *entity.Lesson) {
	if s.media == nil {
		return
	}
	var urls []string
	if lesson.VideoURL != nil {
		urls = append(urls, *lesson.VideoURL)
	}
	if lesson.AttachmentURL != nil {
		urls = append(urls, *lesson.AttachmentURL)
	}
	if len(urls) == 0 {
		return
	}
	if err := s.media.LinkToLesson(ctx, userID, lesson.ID, urls...); err != nil {
		s.log.Warn("failed to link lesson media", "lesson_id", lesson.ID, "error", err)
	}
}

func toResponses(courses []entity.Course, enrolled map[uuid.UUID]bool) []dto.CourseResponse {
	out := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		resp := dto.NewCourseResponse(&courses[i], false)
		if enrolled != nil {
			flag := enrolled[courses[i].ID]
			resp.Enrolled = &flag
		}
		out = append(out, resp)
	}
	return out
}
