package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
)

type ActorSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type NotificationResponse struct {
	ID        uuid.UUID     `json:"id"`
	Type      string        `json:"type"`
	Message   string        `json:"message"`
	CourseID  *uuid.UUID    `json:"courseId"`
	IsRead    bool          `json:"isRead"`
	Actor     *ActorSummary `json:"actor,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

func NewNotificationResponse(n *entity.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Message:   n.Message,
		CourseID:  n.CourseID,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
	if n.Actor != nil {
		resp.Actor = &ActorSummary{ID: n.Actor.ID, Name: n.Actor.DisplayName()}
	}
	return resp
}
