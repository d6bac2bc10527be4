package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationCourseSubmitted = "course_submitted"
	NotificationCourseApproved  = "course_approved"
	NotificationCourseRejected  = "course_rejected"
	NotificationCertificate     = "certificate_issued"
)

type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"` // recipient
	ActorID   *uuid.UUID `gorm:"type:uuid" json:"actorId"`
	CourseID  *uuid.UUID `gorm:"type:uuid;index" json:"courseId"`
	Type      string     `gorm:"size:50;not null" json:"type"`
	Message   string     `gorm:"type:text" json:"message"`
	IsRead    bool       `gorm:"not null;default:false" json:"isRead"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"createdAt"`

	Actor *User `gorm:"foreignKey:ActorID;constraint:OnDelete:SET NULL" json:"actor,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}
