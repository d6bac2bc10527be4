package attachment

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
	"github.com/prajaktamali15/e-learning-platform/internal/modules/attachment/repository"
	"github.com/prajaktamali15/e-learning-platform/pkg/apperror"
	"github.com/prajaktamali15/e-learning-platform/pkg/logger"
	"github.com/prajaktamali15/e-learning-platform/pkg/storage"
)

const (
	lessonFolder = "lessons"
	orphanMaxAge = 24 * time.Hour
)

// allowed maps an attachment kind to the single file extension and content type it accepts.
var allowed = map[string]struct {
	ext         string
	contentType string
}{
	entity.AttachmentVideo:    {ext: ".mp4", contentType: "video/mp4"},
	entity.AttachmentDocument: {ext: ".pdf", contentType: "application/pdf"},
}

type AttachmentService interface {
	UploadLessonFile(ctx context.Context, userID uuid.UUID, kind string, file *multipart.FileHeader) (*entity.Attachment, error)
	LinkToLesson(ctx context.Context, userID, lessonID uuid.UUID, fileURLs ...string) error
	Release(ctx context.Context, lessonID uuid.UUID, fileURL string) error
	CleanupOrphanAttachments(ctx context.Context) (int, error)
}

type attachmentService struct {
	repo     repository.AttachmentRepository
	files    storage.FileStorage
	maxBytes int64
	log      *logger.Logger
	now      func() time.Time
}

func NewAttachmentService(repo repository.AttachmentRepository, files storage.FileStorage, maxBytes int64, log *logger.Logger) AttachmentService {
	return &attachmentService{
		repo:     repo,
		files:    files,
		maxBytes: maxBytes,
		log:      log,
		now:      time.Now,
	}
}

// KindForExt returns the attachment kind accepted for a file extension.
func KindForExt(name string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	for kind, rule := range allowed {
		if rule.ext == ext {
			return kind, true
		}
	}
	return "", false
}

func (s *attachmentService) validate(kind string, file *multipart.FileHeader) (string, error) {
	rule, ok := allowed[kind]
	if !ok {
		return "", fmt.Errorf("unknown attachment kind %q: %w", kind, apperror.ErrBadRequest)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType := strings.ToLower(file.Header.Get("Content-Type"))
	if ext != rule.ext || (contentType != "" && contentType != rule.contentType && contentType != "application/octet-stream") {
		return "", fmt.Errorf("only PDF and MP4 files are allowed, %s expects %s: %w", kind, rule.ext, apperror.ErrBadRequest)
	}
	if s.maxBytes > 0 && file.Size > s.maxBytes {
		return "", apperror.New(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds %d MB", s.maxBytes>>20), apperror.ErrBadRequest)
	}
	return rule.contentType, nil
}

func (s *attachmentService) UploadLessonFile(ctx context.Context, userID uuid.UUID, kind string, file *multipart.FileHeader) (*entity.Attachment, error) {
	if file == nil {
		return nil, fmt.Errorf("file is required: %w", apperror.ErrBadRequest)
	}

	contentType, err := s.validate(kind, file)
	if err != nil {
		return nil, err
	}

	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fileName := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	url, err := s.files.Upload(ctx, f, lessonFolder, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	attachment := &entity.Attachment{
		UserID:   userID,
		Kind:     kind,
		FileURL:  url,
		FileType: contentType,
		Size:     file.Size,
		// LessonID stays nil until the lesson claims the file
	}
	if err := s.repo.Create(ctx, attachment); err != nil {
		_ = s.files.Delete(ctx, url)
		return nil, err
	}
	return attachment, nil
}

func (s *attachmentService) LinkToLesson(ctx context.Context, userID, lessonID uuid.UUID, fileURLs ...string) error {
	urls := make([]string, 0, len(fileURLs))
	for _, u := range fileURLs {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return s.repo.LinkToLesson(ctx, urls, lessonID, userID)
}

func (s *attachmentService) Release(ctx context.Context, lessonID uuid.UUID, fileURL string) error {
	if fileURL == "" {
		return nil
	}
	return s.repo.Release(ctx, lessonID, fileURL)
}

// CleanupOrphanAttachments deletes files that no lesson claimed within a day.
// Failures are logged and retried on the next run.
func (s *attachmentService) CleanupOrphanAttachments(ctx context.Context) (int, error) {
	orphans, err := s.repo.FindOrphans(ctx, s.now().Add(-orphanMaxAge))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, orphan := range orphans {
		if err := s.files.Delete(ctx, orphan.FileURL); err != nil {
			s.log.Warn("failed to delete orphan file", "attachment_id", orphan.ID, "url", orphan.FileURL, "error", err)
			continue
		}
		if err := s.repo.Delete(ctx, orphan.ID); err != nil {
			s.log.Warn("failed to delete orphan attachment", "attachment_id", orphan.ID, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}
