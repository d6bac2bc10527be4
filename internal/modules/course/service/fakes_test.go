package course

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
	categoryRepo "github.com/prajaktamali15/e-learning-platform/internal/modules/category/repository"
	category "github.com/prajaktamali15/e-learning-platform/internal/modules/category/service"
	"github.com/prajaktamali15/e-learning-platform/internal/modules/course/repository"
	notifDto "github.com/prajaktamali15/e-learning-platform/internal/modules/notification/dto"
	"github.com/prajaktamali15/e-learning-platform/internal/testutil"
	"github.com/prajaktamali15/e-learning-platform/pkg/logger"
)

type sentNotification struct {
	courseID uuid.UUID
	actorID  uuid.UUID
	kind     string
}

type fakeNotifier struct {
	sent []sentNotification
}

func (f *fakeNotifier) CreateNotification(context.Context, *entity.Notification) error { return nil }

func (f *fakeNotifier) NotifyCourseEvent(_ context.Context, c *entity.Course, actorID uuid.UUID, kind string) error {
	f.sent = append(f.sent, sentNotification{courseID: c.ID, actorID: actorID, kind: kind})
	return nil
}

func (f *fakeNotifier) GetNotifications(context.Context, uuid.UUID, int, int) ([]notifDto.NotificationResponse, error) {
	return nil, nil
}

func (f *fakeNotifier) MarkAsRead(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (f *fakeNotifier) MarkAllAsRead(context.Context, uuid.UUID) error { return nil }

func (f *fakeNotifier) UnreadCount(context.Context, uuid.UUID) (int64, error) { return 0, nil }

func (f *fakeNotifier) kinds() []string {
	out := make([]string, 0, len(f.sent))
	for _, n := range f.sent {
		out = append(out, n.kind)
	}
	return out
}

type fakeIndexer struct {
	indexed   map[uuid.UUID]entity.CourseStatus
	removed   []uuid.UUID
	searchIDs []uuid.UUID
	searchErr error
}

func newFakeIndexer() *fakeIndexer {
	return &fakeIndexer{indexed: map[uuid.UUID]entity.CourseStatus{}}
}

func (f *fakeIndexer) IndexCourse(_ context.Context, c *entity.Course) error {
	f.indexed[c.ID] = c.Status
	return nil
}

func (f *fakeIndexer) RemoveCourse(_ context.Context, id uuid.UUID) error {
	f.removed = append(f.removed, id)
	delete(f.indexed, id)
	return nil
}

func (f *fakeIndexer) SearchCourses(context.Context, string, int) ([]uuid.UUID, error) {
	return f.searchIDs, f.searchErr
}

func (f *fakeIndexer) Reindex(context.Context, []entity.Course) error { return nil }

type fakeMedia struct {
	uploads  []string
	linked   map[string]uuid.UUID
	released []string
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{linked: map[string]uuid.UUID{}}
}

func (f *fakeMedia) UploadLessonFile(_ context.Context, userID uuid.UUID, kind string, file *multipart.FileHeader) (*entity.Attachment, error) {
	if file.Size == 0 {
		return nil, errors.New("empty file")
	}
	url := "/uploads/lessons/" + file.Filename
	f.uploads = append(f.uploads, url)
	return &entity.Attachment{UserID: userID, Kind: kind, FileURL: url, Size: file.Size}, nil
}

func (f *fakeMedia) LinkToLesson(_ context.Context, _ uuid.UUID, lessonID uuid.UUID, urls ...string) error {
	for _, u := range urls {
		f.linked[u] = lessonID
	}
	return nil
}

func (f *fakeMedia) Release(_ context.Context, _ uuid.UUID, url string) error {
	f.released = append(f.released, url)
	delete(f.linked, url)
	return nil
}

func (f *fakeMedia) CleanupOrphanAttachments(context.Context) (int, error) { return 0, nil }

type fixture struct {
	db       *gorm.DB
	svc      CourseService
	notifier *fakeNotifier
	indexer  *fakeIndexer
	media    *fakeMedia
	owner    *entity.User
	other    *entity.User
	admin    *entity.User
	student  *entity.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithRepo(t, func(r repository.CourseRepository) repository.CourseRepository { return r })
}

// newFixtureWithRepo lets a test wrap the course repository, e.g. to run a
// competing write right before the service's own.
func newFixtureWithRepo(t *testing.T, wrap func(repository.CourseRepository) repository.CourseRepository) *fixture {
	t.Helper()
	db := testutil.NewDB(t)

	f := &fixture{
		db:       db,
		notifier: &fakeNotifier{},
		indexer:  newFakeIndexer(),
		media:    newFakeMedia(),
	}
	f.svc = NewCourseService(
		wrap(repository.NewCourseRepository(db)),
		repository.NewLessonRepository(db),
		category.NewCategoryService(categoryRepo.NewCategoryRepository(db)),
		f.media,
		f.notifier,
		f.indexer,
		logger.Nop(),
	)

	f.owner = f.user(t, "owner@example.com", entity.RoleInstructor)
	f.other = f.user(t, "other@example.com", entity.RoleInstructor)
	f.admin = f.user(t, "admin@example.com", entity.RoleAdmin)
	f.student = f.user(t, "student@example.com", entity.RoleStudent)
	return f
}

func (f *fixture) user(t *testing.T, email string, role entity.Role) *entity.User {
	t.Helper()
	u := &entity.User{Email: email, PasswordHash: "x", Name: email, Role: role}
	if err := f.db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}
