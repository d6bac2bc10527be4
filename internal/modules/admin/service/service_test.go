package admin

import (
	"context"
	"testing"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
	"github.com/prajaktamali15/e-learning-platform/internal/modules/admin/dto"
	courseRepo "github.com/prajaktamali15/e-learning-platform/internal/modules/course/repository"
	userRepo "github.com/prajaktamali15/e-learning-platform/internal/modules/user/repository"
	"github.com/prajaktamali15/e-learning-platform/internal/testutil"
)

func TestSearch(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAdminService(courseRepo.NewCourseRepository(db), userRepo.NewUserRepository(db))
	ctx := context.Background()

	grace := &entity.User{Email: "grace@example.com", Name: "Grace Hopper", PasswordHash: "x", Role: entity.RoleInstructor}
	if err := db.Create(grace).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	course := &entity.Course{Title: "COBOL for Graceful Systems", InstructorID: grace.ID}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}

	empty, err := svc.Search(ctx, "   ")
	if err != nil || len(empty) != 0 {
		t.Fatalf("blank query: got=%v err=%v", empty, err)
	}

	res, err := svc.Search(ctx, "grace")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("results: want=2 got=%+v", res)
	}
	if res[0].Type != dto.SearchTypeCourse || res[0].ID != course.ID || res[0].Extra != "Grace Hopper" {
		t.Fatalf("course hit: got=%+v", res[0])
	}
	if res[1].Type != dto.SearchTypeUser || res[1].ID != grace.ID || res[1].Extra != string(entity.RoleInstructor) {
		t.Fatalf("user hit: got=%+v", res[1])
	}
}
