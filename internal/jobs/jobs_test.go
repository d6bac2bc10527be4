package jobs

import (
	"context"
	"mime/multipart"
	"testing"

	"github.com/google/uuid"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
	courseRepo "github.com/prajaktamali15/e-learning-platform/internal/modules/course/repository"
	"github.com/prajaktamali15/e-learning-platform/internal/testutil"
	"github.com/prajaktamali15/e-learning-platform/pkg/logger"
)

type recordingIndexer struct {
	reindexed []uuid.UUID
}

func (r *recordingIndexer) IndexCourse(context.Context, *entity.Course) error { return nil }

func (r *recordingIndexer) RemoveCourse(context.Context, uuid.UUID) error { return nil }

func (r *recordingIndexer) SearchCourses(context.Context, string, int) ([]uuid.UUID, error) {
	return nil, nil
}

func (r *recordingIndexer) Reindex(_ context.Context, courses []entity.Course) error {
	for _, c := range courses {
		r.reindexed = append(r.reindexed, c.ID)
	}
	return nil
}

type countingMedia struct {
	runs int
}

func (c *countingMedia) UploadLessonFile(context.Context, uuid.UUID, string, *multipart.FileHeader) (*entity.Attachment, error) {
	return nil, nil
}

func (c *countingMedia) LinkToLesson(context.Context, uuid.UUID, uuid.UUID, ...string) error {
	return nil
}

func (c *countingMedia) Release(context.Context, uuid.UUID, string) error { return nil }

func (c *countingMedia) CleanupOrphanAttachments(context.Context) (int, error) {
	c.runs++
	return 2, nil
}

func TestReindexJobIndexesPublishedOnly(t *testing.T) {
	db := testutil.NewDB(t)
	owner := &entity.User{Email: "o@example.com", PasswordHash: "x", Role: entity.RoleInstructor}
	if err := db.Create(owner).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	published := &entity.Course{Title: "Live", InstructorID: owner.ID, Status: entity.CoursePublished}
	draft := &entity.Course{Title: "WIP", InstructorID: owner.ID, Status: entity.CourseDraft}
	for _, c := range []*entity.Course{published, draft} {
		if err := db.Create(c).Error; err != nil {
			t.Fatalf("create course: %v", err)
		}
	}

	indexer := &recordingIndexer{}
	job := NewReindexJob("@daily", courseRepo.NewCourseRepository(db), indexer, logger.Nop())
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(indexer.reindexed) != 1 || indexer.reindexed[0] != published.ID {
		t.Fatalf("reindexed: want=[%s] got=%v", published.ID, indexer.reindexed)
	}
}

func TestScheduler(t *testing.T) {
	media := &countingMedia{}
	s := NewScheduler(logger.Nop())

	if err := s.Register(NewMediaCleanupJob("@every 12h", media, logger.Nop())); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := s.Register(NewMediaCleanupJob("not a schedule", media, logger.Nop())); err == nil {
		t.Fatalf("invalid schedule: want error")
	}

	if err := s.RunByName(context.Background(), MediaCleanupJobName); err != nil {
		t.Fatalf("run by name: %v", err)
	}
	if media.runs != 1 {
		t.Fatalf("runs: want=1 got=%d", media.runs)
	}
	if err := s.RunByName(context.Background(), "missing"); err == nil {
		t.Fatalf("unknown job: want error")
	}

	s.Start()
	s.Stop(context.Background())
}
