package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
	"github.com/prajaktamali15/e-learning-platform/internal/modules/analytics/dto"
	"github.com/prajaktamali15/e-learning-platform/internal/modules/analytics/repository"
	"github.com/prajaktamali15/e-learning-platform/pkg/apperror"
	"github.com/prajaktamali15/e-learning-platform/pkg/logger"
)

const dashboardCacheKey = "analytics:admin_dashboard"

type AnalyticsService interface {
	AdminDashboard(ctx context.Context) (*dto.DashboardResponse, error)
	TotalStudents(ctx context.Context, courseID uuid.UUID) (*dto.TotalStudentsResponse, error)
	CompletionRate(ctx context.Context, courseID uuid.UUID) (*dto.CompletionRateResponse, error)
	CoursesProgress(ctx context.Context, callerID uuid.UUID, callerRole string) ([]dto.CourseProgressResponse, error)
	InstructorCourses(ctx context.Context, instructorID uuid.UUID) ([]dto.CourseProgressResponse, error)
}

type analyticsService struct {
	repo        repository.AnalyticsRepository
	redisClient *redis.Client
	cacheTTL    time.Duration
	log         *logger.Logger
}

// NewAnalyticsService builds the reporting service. The admin dashboard is
// cached in redis for cacheTTL when a client is given and the TTL is positive.
func NewAnalyticsService(repo repository.AnalyticsRepository, redisClient *redis.Client, cacheTTL time.Duration, log *logger.Logger) AnalyticsService {
	return &analyticsService{repo: repo, redisClient: redisClient, cacheTTL: cacheTTL, log: log}
}

// round2 rounds a percentage to two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func completionRate(completed, total int64) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(completed) * 100 / float64(total))
}

func (s *analyticsService) cacheEnabled() bool {
	return s.redisClient != nil && s.cacheTTL > 0
}

func (s *analyticsService) AdminDashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	if s.cacheEnabled() {
		cached, err := s.redisClient.Get(ctx, dashboardCacheKey).Bytes()
		if err == nil {
			var res dto.DashboardResponse
			if err := json.Unmarshal(cached, &res); err == nil {
				return &res, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn("failed to read dashboard cache", "error", err)
		}
	}

	res, err := s.buildDashboard(ctx)
	if err != nil {
		return nil, err
	}

	if s.cacheEnabled() {
		if payload, err := json.Marshal(res); err == nil {
			if err := s.redisClient.Set(ctx, dashboardCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.log.Warn("failed to write dashboard cache", "error", err)
			}
		}
	}
	return res, nil
}

func (s *analyticsService) buildDashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	var (
		res          dto.DashboardResponse
		perInstr     []repository.InstructorCourseCount
		perCourse    []repository.CourseStudentCount
		distribution []repository.StatusCount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		res.TotalCourses, err = s.repo.CountCourses(gctx)
		return err
	})
	g.Go(func() (err error) {
		res.TotalStudents, err = s.repo.CountUsersByRole(gctx, entity.RoleStudent)
		return err
	})
	g.Go(func() (err error) {
		res.TotalInstructors, err = s.repo.CountUsersByRole(gctx, entity.RoleInstructor)
		return err
	})
	g.Go(func() (err error) {
		perInstr, err = s.repo.CoursesPerInstructor(gctx)
		return err
	})
	g.Go(func() (err error) {
		perCourse, err = s.repo.StudentsPerCourse(gctx)
		return err
	})
	g.Go(func() (err error) {
		distribution, err = s.repo.StatusDistribution(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}

	res.CoursesPerInstructor = make([]dto.InstructorCourseCount, 0, len(perInstr))
	for _, row := range perInstr {
		res.CoursesPerInstructor = append(res.CoursesPerInstructor, dto.InstructorCourseCount{
			InstructorName: row.InstructorName,
			CourseCount:    row.CourseCount,
		})
	}
	res.StudentsPerCourse = make([]dto.CourseStudentCount, 0, len(perCourse))
	for _, row := range perCourse {
		res.StudentsPerCourse = append(res.StudentsPerCourse, dto.CourseStudentCount{
			CourseTitle:  row.CourseTitle,
			StudentCount: row.StudentCount,
		})
	}
	res.CourseStatusDistribution = make([]dto.StatusCount, 0, len(distribution))
	for _, row := range distribution {
		res.CourseStatusDistribution = append(res.CourseStatusDistribution, dto.StatusCount{
			Status: row.Status,
			Count:  row.Count,
		})
	}
	return &res, nil
}

func (s *analyticsService) requireCourse(ctx context.Context, courseID uuid.UUID) error {
	ok, err := s.repo.CourseExists(ctx, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("course not found: %w", apperror.ErrNotFound)
	}
	return nil
}

func (s *analyticsService) TotalStudents(ctx context.Context, courseID uuid.UUID) (*dto.TotalStudentsResponse, error) {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return nil, err
	}

	total, err := s.repo.CountEnrollments(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return &dto.TotalStudentsResponse{CourseID: courseID, TotalStudents: total}, nil
}

func (s *analyticsService) CompletionRate(ctx context.Context, courseID uuid.UUID) (*dto.CompletionRateResponse, error) {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return nil, err
	}

	var total, completed int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, err = s.repo.CountEnrollments(gctx, courseID)
		return err
	})
	g.Go(func() (err error) {
		completed, err = s.repo.CountCompleted(gctx, courseID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &dto.CompletionRateResponse{CourseID: courseID, CompletionRate: completionRate(completed, total)}, nil
}

// CoursesProgress reports every course to admins and only their own courses
// to instructors.
func (s *analyticsService) CoursesProgress(ctx context.Context, callerID uuid.UUID, callerRole string) ([]dto.CourseProgressResponse, error) {
	role, _ := entity.ParseRole(callerRole)
	switch role {
	case entity.RoleAdmin:
		return s.courseStats(ctx, nil, true)
	case entity.RoleInstructor:
		return s.courseStats(ctx, &callerID, false)
	default:
		return nil, fmt.Errorf("analytics are only available to admins and instructors: %w", apperror.ErrForbidden)
	}
}

func (s *analyticsService) InstructorCourses(ctx context.Context, instructorID uuid.UUID) ([]dto.CourseProgressResponse, error) {
	return s.courseStats(ctx, &instructorID, false)
}

func (s *analyticsService) courseStats(ctx context.Context, instructorID *uuid.UUID, withInstructor bool) ([]dto.CourseProgressResponse, error) {
	rows, err := s.repo.CourseStats(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.CourseProgressResponse, 0, len(rows))
	for _, row := range rows {
		item := dto.CourseProgressResponse{
			CourseID:       row.CourseID,
			Title:          row.Title,
			Status:         row.Status,
			TotalStudents:  row.Enrollments,
			CompletionRate: completionRate(row.Completed, row.Enrollments),
			LessonsCount:   row.Lessons,
		}
		if withInstructor {
			item.Instructor = row.InstructorName
		}
		out = append(out, item)
	}
	return out, nil
}
