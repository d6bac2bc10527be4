package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
	"github.com/prajaktamali15/e-learning-platform/internal/modules/analytics/repository"
	"github.com/prajaktamali15/e-learning-platform/internal/testutil"
	"github.com/prajaktamali15/e-learning-platform/pkg/apperror"
	"github.com/prajaktamali15/e-learning-platform/pkg/logger"
)

type world struct {
	db      *gorm.DB
	svc     AnalyticsService
	ada     *entity.User
	linus   *entity.User
	go101   *entity.Course
	rust    *entity.Course
	drafted *entity.Course
}

func newWorld(t *testing.T) *world {
	t.Helper()
	db := testutil.NewDB(t)
	w := &world{db: db, svc: NewAnalyticsService(repository.NewAnalyticsRepository(db), nil, 0, logger.Nop())}

	w.ada = w.user(t, "ada@example.com", "Ada", entity.RoleInstructor)
	w.linus = w.user(t, "linus@example.com", "Linus", entity.RoleInstructor)
	w.go101 = w.course(t, "Go 101", w.ada, entity.CoursePublished, 2)
	w.rust = w.course(t, "Rust", w.ada, entity.CoursePublished, 1)
	w.drafted = w.course(t, "Kernels", w.linus, entity.CourseDraft, 0)

	s1 := w.user(t, "s1@example.com", "S1", entity.RoleStudent)
	s2 := w.user(t, "s2@example.com", "S2", entity.RoleStudent)
	s3 := w.user(t, "s3@example.com", "S3", entity.RoleStudent)
	w.enroll(t, s1, w.go101, 100)
	w.enroll(t, s2, w.go101, 50)
	w.enroll(t, s3, w.go101, 0)
	w.enroll(t, s1, w.rust, 100)
	return w
}

func (w *world) user(t *testing.T, email, name string, role entity.Role) *entity.User {
	t.Helper()
	u := &entity.User{Email: email, Name: name, PasswordHash: "x", Role: role}
	if err := w.db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (w *world) course(t *testing.T, title string, owner *entity.User, status entity.CourseStatus, lessons int) *entity.Course {
	t.Helper()
	c := &entity.Course{Title: title, InstructorID: owner.ID, Status: status}
	for i := 0; i < lessons; i++ {
		c.Lessons = append(c.Lessons, entity.Lesson{Title: "L", Position: i})
	}
	if err := w.db.Create(c).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}
	return c
}

func (w *world) enroll(t *testing.T, student *entity.User, course *entity.Course, progress int) {
	t.Helper()
	e := &entity.Enrollment{StudentID: student.ID, CourseID: course.ID, Progress: progress}
	if err := w.db.Create(e).Error; err != nil {
		t.Fatalf("create enrollment: %v", err)
	}
}

func TestCompletionRate(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	cases := []struct {
		course *entity.Course
		want   float64
	}{
		{w.go101, 33.33},
		{w.rust, 100},
		{w.drafted, 0},
	}
	for _, tc := range cases {
		res, err := w.svc.CompletionRate(ctx, tc.course.ID)
		if err != nil {
			t.Fatalf("%s: %v", tc.course.Title, err)
		}
		if res.CompletionRate != tc.want {
			t.Fatalf("%s: want=%v got=%v", tc.course.Title, tc.want, res.CompletionRate)
		}
	}

	if _, err := w.svc.CompletionRate(ctx, uuid.New()); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("missing course: want=ErrNotFound got=%v", err)
	}
}

func TestTotalStudents(t *testing.T) {
	w := newWorld(t)

	res, err := w.svc.TotalStudents(context.Background(), w.go101.ID)
	if err != nil {
		t.Fatalf("total students: %v", err)
	}
	if res.TotalStudents != 3 {
		t.Fatalf("total: want=3 got=%d", res.TotalStudents)
	}
}

func TestAdminDashboard(t *testing.T) {
	w := newWorld(t)

	res, err := w.svc.AdminDashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if res.TotalCourses != 3 || res.TotalStudents != 3 || res.TotalInstructors != 2 {
		t.Fatalf("totals: got=%+v", res)
	}
	if len(res.CoursesPerInstructor) != 2 || res.CoursesPerInstructor[0].InstructorName != "Ada" || res.CoursesPerInstructor[0].CourseCount != 2 {
		t.Fatalf("courses per instructor: got=%+v", res.CoursesPerInstructor)
	}
	if len(res.StudentsPerCourse) != 2 || res.StudentsPerCourse[0].CourseTitle != "Go 101" || res.StudentsPerCourse[0].StudentCount != 3 {
		t.Fatalf("students per course: got=%+v", res.StudentsPerCourse)
	}

	byStatus := map[entity.CourseStatus]int64{}
	for _, row := range res.CourseStatusDistribution {
		byStatus[row.Status] = row.Count
	}
	if byStatus[entity.CoursePublished] != 2 || byStatus[entity.CourseDraft] != 1 {
		t.Fatalf("status distribution: got=%v", byStatus)
	}
}

func TestCoursesProgressScope(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	all, err := w.svc.CoursesProgress(ctx, uuid.New(), string(entity.RoleAdmin))
	if err != nil {
		t.Fatalf("admin: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("admin sees: want=3 got=%d", len(all))
	}
	for _, row := range all {
		if row.Instructor == "" {
			t.Fatalf("admin rows carry the instructor: got=%+v", row)
		}
	}

	own, err := w.svc.CoursesProgress(ctx, w.ada.ID, string(entity.RoleInstructor))
	if err != nil {
		t.Fatalf("instructor: %v", err)
	}
	if len(own) != 2 {
		t.Fatalf("instructor sees: want=2 got=%d", len(own))
	}
	for _, row := range own {
		if row.CourseID == w.go101.ID && (row.TotalStudents != 3 || row.LessonsCount != 2 || row.CompletionRate != 33.33) {
			t.Fatalf("go101 stats: got=%+v", row)
		}
	}

	if _, err := w.svc.CoursesProgress(ctx, uuid.New(), string(entity.RoleStudent)); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("student: want=ErrForbidden got=%v", err)
	}
}
