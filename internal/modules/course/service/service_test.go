package course

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
	"github.com/prajaktamali15/e-learning-platform/internal/modules/course/dto"
	"github.com/prajaktamali15/e-learning-platform/pkg/apperror"
)

func strPtr(s string) *string { return &s }

func (f *fixture) createCourse(t *testing.T, req dto.CreateCourseRequest) *dto.CourseResponse {
	t.Helper()
	res, err := f.svc.Create(context.Background(), f.owner.ID, req)
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	return res
}

func TestCreateCourse(t *testing.T) {
	f := newFixture(t)

	res := f.createCourse(t, dto.CreateCourseRequest{
		Title:         "  Go Fundamentals ",
		Prerequisites: []string{"Basic CLI", " ", "Basic CLI", "Git"},
		Lessons: []dto.LessonInput{
			{Title: "Setup", Content: strPtr("<p>Install Go</p><script>alert(1)</script>")},
			{Title: "Hello", VideoURL: strPtr("/uploads/lessons/hello.mp4")},
		},
	})

	if res.Status != entity.CourseDraft {
		t.Fatalf("status: want=%s got=%s", entity.CourseDraft, res.Status)
	}
	if res.Title != "Go Fundamentals" {
		t.Fatalf("title: got=%q", res.Title)
	}
	if strings.Join(res.Prerequisites, ",") != "Basic CLI,Git" {
		t.Fatalf("prerequisites: got=%v", res.Prerequisites)
	}
	if len(res.Lessons) != 2 || res.Lessons[0].Title != "Setup" || res.Lessons[1].Position != 1 {
		t.Fatalf("lessons: got=%+v", res.Lessons)
	}
	if c := *res.Lessons[0].Content; strings.Contains(c, "script") {
		t.Fatalf("content not sanitized: %q", c)
	}
	if f.media.linked["/uploads/lessons/hello.mp4"] != res.Lessons[1].ID {
		t.Fatalf("video url was not linked to its lesson")
	}
	if len(f.notifier.sent) != 0 {
		t.Fatalf("draft should not notify: got=%v", f.notifier.kinds())
	}
}

func TestCreateCourseValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.owner.ID, dto.CreateCourseRequest{Title: "T", Lessons: []dto.LessonInput{{Title: " "}}})
	if !errors.Is(err, apperror.ErrBadRequest) {
		t.Fatalf("untitled lesson: want=%v got=%v", apperror.ErrBadRequest, err)
	}

	missing := uuid.New()
	_, err = f.svc.Create(ctx, f.owner.ID, dto.CreateCourseRequest{Title: "T", CategoryID: &missing})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("unknown category: want=%v got=%v", apperror.ErrNotFound, err)
	}
}

func TestCreateSubmittedCourseNotifiesAdmins(t *testing.T) {
	f := newFixture(t)

	res := f.createCourse(t, dto.CreateCourseRequest{Title: "Rust", SubmitForReview: true})

	if res.Status != entity.CoursePending {
		t.Fatalf("status: want=%s got=%s", entity.CoursePending, res.Status)
	}
	if got := f.notifier.kinds(); len(got) != 1 || got[0] != entity.NotificationCourseSubmitted {
		t.Fatalf("notifications: got=%v", got)
	}
}

func TestStatusMachine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createCourse(t, dto.CreateCourseRequest{Title: "Kubernetes"})

	if _, err := f.svc.CancelPublishRequest(ctx, f.owner.ID, c.ID); !errors.Is(err, apperror.ErrBadRequest) {
		t.Fatalf("cancel draft: want=%v got=%v", apperror.ErrBadRequest, err)
	}
	if _, err := f.svc.Approve(ctx, f.admin.ID, c.ID); !errors.Is(err, apperror.ErrBadRequest) {
		t.Fatalf("approve draft: want=%v got=%v", apperror.ErrBadRequest, err)
	}

	res, err := f.svc.RequestPublish(ctx, f.owner.ID, c.ID)
	if err != nil {
		t.Fatalf("request publish: %v", err)
	}
	if res.Status != entity.CoursePending {
		t.Fatalf("after request: want=%s got=%s", entity.CoursePending, res.Status)
	}
	if _, err := f.svc.RequestPublish(ctx, f.owner.ID, c.ID); !errors.Is(err, apperror.ErrBadRequest) {
		t.Fatalf("request twice: want=%v got=%v", apperror.ErrBadRequest, err)
	}

	res, err = f.svc.Approve(ctx, f.admin.ID, c.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if res.Status != entity.CoursePublished {
		t.Fatalf("after approve: want=%s got=%s", entity.CoursePublished, res.Status)
	}
	if f.indexer.indexed[c.ID] != entity.CoursePublished {
		t.Fatalf("approved course should be indexed")
	}

	if _, err := f.svc.Reject(ctx, f.admin.ID, c.ID); !errors.Is(err, apperror.ErrBadRequest) {
		t.Fatalf("reject published: want=%v got=%v", apperror.ErrBadRequest, err)
	}
	if _, err := f.svc.CancelPublishRequest(ctx, f.owner.ID, c.ID); !errors.Is(err, apperror.ErrBadRequest) {
		t.Fatalf("cancel published: want=%v got=%v", apperror.ErrBadRequest, err)
	}

	want := []string{entity.NotificationCourseSubmitted, entity.NotificationCourseApproved}
	if got := f.notifier.kinds(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("notifications: want=%v got=%v", want, got)
	}
}

func TestRejectIsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createCourse(t, dto.CreateCourseRequest{Title: "Terraform", SubmitForReview: true})

	if _, err := f.svc.Reject(ctx, f.admin.ID, c.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := f.svc.RequestPublish(ctx, f.owner.ID, c.ID); !errors.Is(err, apperror.ErrBadRequest) {
		t.Fatalf("resubmit rejected: want=%v got=%v", apperror.ErrBadRequest, err)
	}
	if _, err := f.svc.Approve(ctx, f.admin.ID, c.ID); !errors.Is(err, apperror.ErrBadRequest) {
		t.Fatalf("approve rejected: want=%v got=%v", apperror.ErrBadRequest, err)
	}
}

func TestUpdateStatusByInstructor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createCourse(t, dto.CreateCourseRequest{Title: "Docker"})

	tests := []struct {
		name   string
		status string
		want   entity.CourseStatus
		err    error
	}{
		{name: "publish is admin only", status: "PUBLISHED", err: apperror.ErrBadRequest},
		{name: "unknown status", status: "ARCHIVED", err: apperror.ErrBadRequest},
		{name: "submit", status: "pending", want: entity.CoursePending},
		{name: "withdraw", status: "DRAFT", want: entity.CourseDraft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.svc.UpdateStatusByInstructor(ctx, f.owner.ID, c.ID, tt.status)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("want=%v got=%v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Status != tt.want {
				t.Fatalf("status: want=%s got=%s", tt.want, res.Status)
			}
		})
	}
}

func TestOwnershipIsEnforced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createCourse(t, dto.CreateCourseRequest{Title: "Owned", Lessons: []dto.LessonInput{{Title: "L1"}}})

	if _, err := f.svc.Update(ctx, f.other.ID, c.ID, dto.UpdateCourseRequest{Title: strPtr("Stolen")}); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("update: want=%v got=%v", apperror.ErrForbidden, err)
	}
	if _, err := f.svc.RequestPublish(ctx, f.other.ID, c.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("request publish: want=%v got=%v", apperror.ErrForbidden, err)
	}
	if err := f.svc.Delete(ctx, f.other.ID, c.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("delete: want=%v got=%v", apperror.ErrForbidden, err)
	}
	if _, err := f.svc.UpdateLesson(ctx, f.other.ID, c.Lessons[0].ID, dto.LessonInput{Title: "x"}, LessonFiles{}); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("update lesson: want=%v got=%v", apperror.ErrForbidden, err)
	}
	if _, err := f.svc.GetByID(ctx, c.ID); err != nil {
		t.Fatalf("course should still exist: %v", err)
	}
	if _, err := f.svc.Update(ctx, f.owner.ID, uuid.New(), dto.UpdateCourseRequest{}); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("missing course: want=%v got=%v", apperror.ErrNotFound, err)
	}
}

func TestDeleteCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft := f.createCourse(t, dto.CreateCourseRequest{Title: "Draft", Lessons: []dto.LessonInput{{Title: "L1"}}})
	f.db.Create(&entity.Enrollment{StudentID: f.student.ID, CourseID: draft.ID})
	f.db.Create(&entity.Progress{StudentID: f.student.ID, CourseID: draft.ID})

	if err := f.svc.Delete(ctx, f.owner.ID, draft.ID); err != nil {
		t.Fatalf("delete draft: %v", err)
	}
	if _, err := f.svc.GetByID(ctx, draft.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("deleted course: want=%v got=%v", apperror.ErrNotFound, err)
	}
	var remaining int64
	f.db.Model(&entity.Enrollment{}).Where("course_id = ?", draft.ID).Count(&remaining)
	if remaining != 0 {
		t.Fatalf("enrollments left behind: %d", remaining)
	}
	f.db.Model(&entity.Lesson{}).Where("course_id = ?", draft.ID).Count(&remaining)
	if remaining != 0 {
		t.Fatalf("lessons left behind: %d", remaining)
	}

	live := f.createCourse(t, dto.CreateCourseRequest{Title: "Live", SubmitForReview: true})
	if _, err := f.svc.Approve(ctx, f.admin.ID, live.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := f.svc.Delete(ctx, f.owner.ID, live.ID); !errors.Is(err, apperror.ErrBadRequest) {
		t.Fatalf("delete published: want=%v got=%v", apperror.ErrBadRequest, err)
	}
	if err := f.svc.AdminDelete(ctx, live.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, ok := f.indexer.indexed[live.ID]; ok {
		t.Fatalf("deleted course still indexed")
	}
}

func TestAddPrerequisiteIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createCourse(t, dto.CreateCourseRequest{Title: "Algorithms", Prerequisites: []string{"Math"}})

	for _, name := range []string{"Go", "Math", "Go"} {
		if _, err := f.svc.AddPrerequisite(ctx, f.owner.ID, c.ID, name); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}

	got, err := f.svc.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if strings.Join(got.Prerequisites, ",") != "Math,Go" {
		t.Fatalf("prerequisites: want=Math,Go got=%v", got.Prerequisites)
	}

	if _, err := f.svc.AddPrerequisite(ctx, f.owner.ID, c.ID, "  "); !errors.Is(err, apperror.ErrBadRequest) {
		t.Fatalf("blank name: want=%v got=%v", apperror.ErrBadRequest, err)
	}
}

func TestUpdateCourseUpsertsLessons(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createCourse(t, dto.CreateCourseRequest{Title: "Networking", Lessons: []dto.LessonInput{{Title: "TCP"}}})
	foreign := f.createCourse(t, dto.CreateCourseRequest{Title: "Other", Lessons: []dto.LessonInput{{Title: "X"}}})

	existing := c.Lessons[0].ID
	res, err := f.svc.Update(ctx, f.owner.ID, c.ID, dto.UpdateCourseRequest{
		Description: strPtr("Packets and sockets"),
		Lessons: []dto.LessonInput{
			{ID: &existing, Content: strPtr("Handshakes")},
			{Title: "UDP"},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.Title != "Networking" || *res.Description != "Packets and sockets" {
		t.Fatalf("patch fields: got=%q/%v", res.Title, res.Description)
	}
	if len(res.Lessons) != 2 {
		t.Fatalf("lessons: want=2 got=%d", len(res.Lessons))
	}
	if res.Lessons[0].Title != "TCP" || *res.Lessons[0].Content != "Handshakes" {
		t.Fatalf("existing lesson: got=%+v", res.Lessons[0])
	}
	if res.Lessons[1].Title != "UDP" || res.Lessons[1].Position != 1 {
		t.Fatalf("new lesson: got=%+v", res.Lessons[1])
	}

	other := foreign.Lessons[0].ID
	_, err = f.svc.Update(ctx, f.owner.ID, c.ID, dto.UpdateCourseRequest{Lessons: []dto.LessonInput{{ID: &other, Title: "hijack"}}})
	if !errors.Is(err, apperror.ErrBadRequest) {
		t.Fatalf("foreign lesson: want=%v got=%v", apperror.ErrBadRequest, err)
	}
}

func TestLessonLifecycleWithFiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createCourse(t, dto.CreateCourseRequest{Title: "Video course"})

	video := &multipart.FileHeader{Filename: "intro.mp4", Size: 10}
	lesson, err := f.svc.AddLesson(ctx, f.owner.ID, c.ID, dto.LessonInput{Title: "Intro"}, LessonFiles{Video: video})
	if err != nil {
		t.Fatalf("add lesson: %v", err)
	}
	if lesson.VideoURL == nil || *lesson.VideoURL != "/uploads/lessons/intro.mp4" {
		t.Fatalf("video url: got=%v", lesson.VideoURL)
	}
	if f.media.linked["/uploads/lessons/intro.mp4"] != lesson.ID {
		t.Fatalf("uploaded video not linked")
	}

	replacement := &multipart.FileHeader{Filename: "intro-v2.mp4", Size: 12}
	updated, err := f.svc.UpdateLesson(ctx, f.owner.ID, lesson.ID, dto.LessonInput{}, LessonFiles{Video: replacement})
	if err != nil {
		t.Fatalf("update lesson: %v", err)
	}
	if *updated.VideoURL != "/uploads/lessons/intro-v2.mp4" || updated.Title != "Intro" {
		t.Fatalf("updated lesson: got=%+v", updated)
	}
	if len(f.media.released) != 1 || f.media.released[0] != "/uploads/lessons/intro.mp4" {
		t.Fatalf("replaced video not released: got=%v", f.media.released)
	}

	if _, err := f.svc.AddLesson(ctx, f.owner.ID, c.ID, dto.LessonInput{Title: ""}, LessonFiles{}); !errors.Is(err, apperror.ErrBadRequest) {
		t.Fatalf("untitled lesson: want=%v got=%v", apperror.ErrBadRequest, err)
	}

	if err := f.svc.DeleteLesson(ctx, f.other.ID, lesson.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("foreign delete: want=%v got=%v", apperror.ErrForbidden, err)
	}
	if err := f.svc.DeleteLesson(ctx, f.owner.ID, lesson.ID); err != nil {
		t.Fatalf("delete lesson: %v", err)
	}
	if err := f.svc.DeleteLesson(ctx, f.owner.ID, lesson.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("delete twice: want=%v got=%v", apperror.ErrNotFound, err)
	}
}

func TestListPublishedMarksEnrollment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.createCourse(t, dto.CreateCourseRequest{Title: "A", SubmitForReview: true})
	b := f.createCourse(t, dto.CreateCourseRequest{Title: "B", SubmitForReview: true})
	f.createCourse(t, dto.CreateCourseRequest{Title: "Hidden draft"})
	for _, id := range []uuid.UUID{a.ID, b.ID} {
		if _, err := f.svc.Approve(ctx, f.admin.ID, id); err != nil {
			t.Fatalf("approve: %v", err)
		}
	}
	f.db.Create(&entity.Enrollment{StudentID: f.student.ID, CourseID: a.ID})

	anon, err := f.svc.ListPublished(ctx, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(anon) != 2 || anon[0].Enrolled != nil {
		t.Fatalf("anonymous list: got=%d courses, enrolled=%v", len(anon), anon[0].Enrolled)
	}

	mine, err := f.svc.ListPublished(ctx, &f.student.ID)
	if err != nil {
		t.Fatalf("list for student: %v", err)
	}
	for _, c := range mine {
		want := c.ID == a.ID
		if c.Enrolled == nil || *c.Enrolled != want {
			t.Fatalf("course %s enrolled: want=%v got=%v", c.Title, want, c.Enrolled)
		}
	}
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.createCourse(t, dto.CreateCourseRequest{Title: "Advanced PostgreSQL", Description: strPtr("Indexes and plans"), SubmitForReview: true})
	if _, err := f.svc.Approve(ctx, f.admin.ID, c.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	f.createCourse(t, dto.CreateCourseRequest{Title: "PostgreSQL draft"})

	own, err := f.svc.SearchOwn(ctx, f.owner.ID, "postgresql")
	if err != nil {
		t.Fatalf("search own: %v", err)
	}
	if len(own) != 2 {
		t.Fatalf("own search: want=2 got=%d", len(own))
	}
	if empty, _ := f.svc.SearchOwn(ctx, f.owner.ID, " "); len(empty) != 0 {
		t.Fatalf("blank query should return nothing")
	}

	f.indexer.searchIDs = []uuid.UUID{c.ID, uuid.New()}
	hits, err := f.svc.PublicSearch(ctx, "postgres", 10)
	if err != nil {
		t.Fatalf("public search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != c.ID {
		t.Fatalf("index hits: got=%+v", hits)
	}

	f.indexer.searchErr = errors.New("meilisearch down")
	hits, err = f.svc.PublicSearch(ctx, "indexes", 10)
	if err != nil {
		t.Fatalf("fallback search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != c.ID {
		t.Fatalf("fallback should only return published matches: got=%+v", hits)
	}
}
