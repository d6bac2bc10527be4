package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	AttachmentVideo    = "video"
	AttachmentDocument = "document"
)

// Attachment tracks an uploaded lesson file. Rows whose LessonID is nil are
// orphans and get swept by the cleanup job.
type Attachment struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	LessonID  *uuid.UUID `gorm:"type:uuid;index" json:"lessonId,omitempty"`
	Kind      string     `gorm:"size:20;not null" json:"kind"`
	FileURL   string     `gorm:"type:text;not null" json:"fileUrl"`
	FileType  string     `gorm:"size:100" json:"fileType"`
	Size      int64      `json:"size"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
}
