package enrollment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
	certificate "github.com/prajaktamali15/e-learning-platform/internal/modules/certificate/service"
	courseRepo "github.com/prajaktamali15/e-learning-platform/internal/modules/course/repository"
	"github.com/prajaktamali15/e-learning-platform/internal/modules/enrollment/dto"
	"github.com/prajaktamali15/e-learning-platform/internal/modules/enrollment/repository"
	notification "github.com/prajaktamali15/e-learning-platform/internal/modules/notification/service"
	"github.com/prajaktamali15/e-learning-platform/pkg/apperror"
	"github.com/prajaktamali15/e-learning-platform/pkg/logger"
	"github.com/prajaktamali15/e-learning-platform/pkg/ratelimiter"
)

type EnrollmentService interface {
	Enroll(ctx context.Context, studentID, courseID uuid.UUID) (*dto.EnrollmentResponse, error)
	CompleteLesson(ctx context.Context, studentID, courseID, lessonID uuid.UUID) (*dto.ProgressResponse, error)
	GenerateCertificate(ctx context.Context, studentID, courseID uuid.UUID) (*dto.CertificateResponse, error)
	MyCourses(ctx context.Context, studentID uuid.UUID) ([]dto.MyCourseResponse, error)
	CourseDetails(ctx context.Context, studentID, courseID uuid.UUID) (*dto.CourseDetailsResponse, error)
	EnrolledStudents(ctx context.Context, courseID uuid.UUID) ([]dto.EnrolledStudentResponse, error)
}

type enrollmentService struct {
	repo         repository.EnrollmentRepository
	courses      courseRepo.CourseRepository
	lessons      courseRepo.LessonRepository
	certificates certificate.CertificateService
	notifier     notification.NotificationService
	redisClient  *redis.Client
	lockTTL      time.Duration
	log          *logger.Logger
	now          func() time.Time
}

// NewEnrollmentService wires the progress engine. redisClient may be nil, in
// which case certificate generation relies on the conditional update alone.
func NewEnrollmentService(
	repo repository.EnrollmentRepository,
	courses courseRepo.CourseRepository,
	lessons courseRepo.LessonRepository,
	certificates certificate.CertificateService,
	notifier notification.NotificationService,
	redisClient *redis.Client,
	lockTTL time.Duration,
	log *logger.Logger,
) EnrollmentService {
	return &enrollmentService{
		repo:         repo,
		courses:      courses,
		lessons:      lessons,
		certificates: certificates,
		notifier:     notifier,
		redisClient:  redisClient,
		lockTTL:      lockTTL,
		log:          log,
		now:          time.Now,
	}
}

func (s *enrollmentService) loadCourse(ctx context.Context, courseID uuid.UUID) (*entity.Course, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return course, nil
}

func (s *enrollmentService) loadEnrollment(ctx context.Context, studentID, courseID uuid.UUID) (*entity.Enrollment, error) {
	enrollment, err := s.repo.Find(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("enrollment not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return enrollment, nil
}

func (s *enrollmentService) Enroll(ctx context.Context, studentID, courseID uuid.UUID) (*dto.EnrollmentResponse, error) {
	if _, err := s.loadCourse(ctx, courseID); err != nil {
		return nil, err
	}

	if _, err := s.repo.Find(ctx, studentID, courseID); err == nil {
		return nil, fmt.Errorf("already enrolled in this course: %w", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	enrollment := &entity.Enrollment{StudentID: studentID, CourseID: courseID}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("already enrolled in this course: %w", apperror.ErrConflict)
		}
		return nil, err
	}

	resp := dto.NewEnrollmentResponse(enrollment)
	return &resp, nil
}

// CompleteLesson marks lessonID done and recomputes progress against the
// lessons the course has right now.
func (s *enrollmentService) CompleteLesson(ctx context.Context, studentID, courseID, lessonID uuid.UUID) (*dto.ProgressResponse, error) {
	if lessonID == uuid.Nil {
		return nil, fmt.Errorf("lesson id is required: %w", apperror.ErrBadRequest)
	}

	lessonIDs, err := s.lessons.IDsByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	belongs := false
	for _, id := range lessonIDs {
		if id == lessonID {
			belongs = true
			break
		}
	}

	enrollment, err := s.repo.UpdateProgress(ctx, studentID, courseID, func(e *entity.Enrollment) error {
		if !belongs {
			return fmt.Errorf("lesson does not belong to this course: %w", apperror.ErrBadRequest)
		}
		e.CompleteLesson(lessonID, lessonIDs, s.now())
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("enrollment not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	return &dto.ProgressResponse{Progress: enrollment.Progress, CompletedAt: enrollment.CompletedAt}, nil
}

func (s *enrollmentService) MyCourses(ctx context.Context, studentID uuid.UUID) ([]dto.MyCourseResponse, error) {
	enrollments, err := s.repo.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.MyCourseResponse, 0, len(enrollments))
	for i := range enrollments {
		out = append(out, dto.NewMyCourseResponse(&enrollments[i]))
	}
	return out, nil
}

func (s *enrollmentService) CourseDetails(ctx context.Context, studentID, courseID uuid.UUID) (*dto.CourseDetailsResponse, error) {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrollment, err := s.repo.Find(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course not found or you are not enrolled: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	resp := dto.NewCourseDetailsResponse(course, enrollment)
	return &resp, nil
}

func (s *enrollmentService) EnrolledStudents(ctx context.Context, courseID uuid.UUID) ([]dto.EnrolledStudentResponse, error) {
	if _, err := s.loadCourse(ctx, courseID); err != nil {
		return nil, err
	}

	enrollments, err := s.repo.FindByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.EnrolledStudentResponse, 0, len(enrollments))
	for i := range enrollments {
		out = append(out, dto.NewEnrolledStudentResponse(&enrollments[i]))
	}
	return out, nil
}

func lockSubject(studentID, courseID uuid.UUID) string {
	return studentID.String() + ":" + courseID.String()
}

// GenerateCertificate issues the certificate once per enrollment. A stored
// URL is returned unchanged; concurrent callers converge on whichever URL
// the conditional update stored first.
func (s *enrollmentService) GenerateCertificate(ctx context.Context, studentID, courseID uuid.UUID) (*dto.CertificateResponse, error) {
	enrollment, err := s.loadEnrollment(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrollment.IsComplete() {
		return nil, fmt.Errorf("course not completed yet: %w", apperror.ErrBadRequest)
	}
	if enrollment.CertificateURL != nil {
		return &dto.CertificateResponse{CertificateURL: *enrollment.CertificateURL}, nil
	}

	release, ok, err := ratelimiter.TryLock(ctx, s.redisClient, ratelimiter.ScopeCertificate, lockSubject(studentID, courseID), s.lockTTL)
	if err != nil {
		s.log.Warn("certificate lock unavailable, relying on conditional update", "student_id", studentID, "course_id", courseID, "error", err)
		release, ok = func() {}, true
	}
	if !ok {
		return s.storedCertificate(ctx, studentID, courseID)
	}
	defer release()

	studentName, courseTitle := "", ""
	if enrollment.Student != nil {
		studentName = enrollment.Student.DisplayName()
	}
	if enrollment.Course != nil {
		courseTitle = enrollment.Course.Title
	}

	issuedAt := s.now()
	if enrollment.CompletedAt != nil {
		issuedAt = *enrollment.CompletedAt
	}

	url, err := s.certificates.Issue(ctx, studentID, courseID, studentName, courseTitle, issuedAt)
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.SetCertificateURL(ctx, enrollment.ID, url)
	if err != nil {
		return nil, err
	}
	if !stored {
		return s.storedCertificate(ctx, studentID, courseID)
	}

	s.notifyCertificate(ctx, studentID, courseID, courseTitle)
	return &dto.CertificateResponse{CertificateURL: url}, nil
}

// storedCertificate re-reads the enrollment after losing a race. If the
// winner has not stored its URL yet the caller is asked to retry.
func (s *enrollmentService) storedCertificate(ctx context.Context, studentID, courseID uuid.UUID) (*dto.CertificateResponse, error) {
	enrollment, err := s.loadEnrollment(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	if enrollment.CertificateURL == nil {
		return nil, fmt.Errorf("certificate is being generated, try again shortly: %w", apperror.ErrConflict)
	}
	return &dto.CertificateResponse{CertificateURL: *enrollment.CertificateURL}, nil
}

func (s *enrollmentService) notifyCertificate(ctx context.Context, studentID, courseID uuid.UUID, courseTitle string) {
	if s.notifier == nil {
		return
	}
	n := &entity.Notification{
		UserID:   studentID,
		CourseID: &courseID,
		Type:     entity.NotificationCertificate,
		Message:  fmt.Sprintf("Your certificate for %q is ready", courseTitle),
	}
	if err := s.notifier.CreateNotification(ctx, n); err != nil {
		s.log.Warn("failed to send certificate notification", "student_id", studentID, "course_id", courseID, "error", err)
	}
}
