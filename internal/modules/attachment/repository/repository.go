package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
)

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *entity.Attachment) error
	LinkToLesson(ctx context.Context, fileURLs []string, lessonID uuid.UUID, userID uuid.UUID) error
	Release(ctx context.Context, lessonID uuid.UUID, fileURL string) error
	FindOrphans(ctx context.Context, cutoffTime time.Time) ([]entity.Attachment, error)
	Delete(ctx context.Context, id uint) error
}

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *entity.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

// LinkToLesson claims uploads by URL. Only rows owned by userID that are still
// unattached (or already on this lesson) are touched.
func (r *attachmentRepository) LinkToLesson(ctx context.Context, fileURLs []string, lessonID uuid.UUID, userID uuid.UUID) error {
	if len(fileURLs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.Attachment{}).
		Where("file_url IN ? AND user_id = ?", fileURLs, userID).
		Where("lesson_id IS NULL OR lesson_id = ?", lessonID).
		Update("lesson_id", lessonID).Error
}

// Release turns the lesson's attachment for fileURL back into an orphan.
func (r *attachmentRepository) Release(ctx context.Context, lessonID uuid.UUID, fileURL string) error {
	return r.db.WithContext(ctx).Model(&entity.Attachment{}).
		Where("lesson_id = ? AND file_url = ?", lessonID, fileURL).
		Update("lesson_id", nil).Error
}

func (r *attachmentRepository) FindOrphans(ctx context.Context, cutoffTime time.Time) ([]entity.Attachment, error) {
	var attachments []entity.Attachment
	err := r.db.WithContext(ctx).
		Where("lesson_id IS NULL AND created_at < ?", cutoffTime).
		Find(&attachments).Error
	return attachments, err
}

func (r *attachmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.Attachment{}, id).Error
}
