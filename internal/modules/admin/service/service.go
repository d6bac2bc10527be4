package admin

import (
	"context"
	"strings"

	"github.com/prajaktamali15/e-learning-platform/internal/modules/admin/dto"
	courseRepo "github.com/prajaktamali15/e-learning-platform/internal/modules/course/repository"
	userRepo "github.com/prajaktamali15/e-learning-platform/internal/modules/user/repository"
)

const searchLimit = 20

type AdminService interface {
	Search(ctx context.Context, query string) ([]dto.SearchResult, error)
}

type adminService struct {
	courses courseRepo.CourseRepository
	users   userRepo.UserRepository
}

func NewAdminService(courses courseRepo.CourseRepository, users userRepo.UserRepository) AdminService {
	return &adminService{courses: courses, users: users}
}

// Search matches course titles and user names. Courses come first.
func (s *adminService) Search(ctx context.Context, query string) ([]dto.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []dto.SearchResult{}, nil
	}

	courses, err := s.courses.FindAll(ctx, courseRepo.CourseFilter{Search: query, Limit: searchLimit})
	if err != nil {
		return nil, err
	}
	users, err := s.users.SearchByName(ctx, query, searchLimit)
	if err != nil {
		return nil, err
	}

	results := make([]dto.SearchResult, 0, len(courses)+len(users))
	for _, c := range courses {
		extra := "N/A"
		if c.Instructor != nil {
			extra = c.Instructor.DisplayName()
		}
		results = append(results, dto.SearchResult{ID: c.ID, Type: dto.SearchTypeCourse, Name: c.Title, Extra: extra})
	}
	for _, u := range users {
		results = append(results, dto.SearchResult{ID: u.ID, Type: dto.SearchTypeUser, Name: u.DisplayName(), Extra: string(u.Role)})
	}
	return results, nil
}
