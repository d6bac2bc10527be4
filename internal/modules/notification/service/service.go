package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
	"github.com/prajaktamali15/e-learning-platform/internal/modules/notification/dto"
	notifRepo "github.com/prajaktamali15/e-learning-platform/internal/modules/notification/repository"
	"github.com/prajaktamali15/e-learning-platform/pkg/apperror"
	"github.com/prajaktamali15/e-learning-platform/pkg/logger"
)

type NotificationService interface {
	CreateNotification(ctx context.Context, notification *entity.Notification) error
	NotifyCourseEvent(ctx context.Context, course *entity.Course, actorID uuid.UUID, notificationType string) error
	GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]dto.NotificationResponse, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
	log         *logger.Logger
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client, log *logger.Logger) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
		log:         log,
	}
}

// Channel is the redis pub/sub channel carrying a user's notifications.
func Channel(userID string) string {
	return fmt.Sprintf("user_notifications:%s", userID)
}

func (s *notificationService) CreateNotification(ctx context.Context, notification *entity.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	if s.redisClient != nil {
		payload, err := json.Marshal(dto.NewNotificationResponse(notification))
		if err == nil {
			if err := s.redisClient.Publish(ctx, Channel(notification.UserID.String()), payload).Err(); err != nil {
				s.log.Warn("failed to publish notification", "user_id", notification.UserID, "error", err)
			}
		}
	}

	return nil
}

func courseMessage(notificationType, title string) (string, bool) {
	switch notificationType {
	case entity.NotificationCourseSubmitted:
		return fmt.Sprintf("Course %q was submitted for review", title), true
	case entity.NotificationCourseApproved:
		return fmt.Sprintf("Your course %q has been approved and published", title), true
	case entity.NotificationCourseRejected:
		return fmt.Sprintf("Your course %q has been rejected", title), true
	case entity.NotificationCertificate:
		return fmt.Sprintf("Your certificate for %q is ready", title), true
	}
	return "", false
}

// NotifyCourseEvent fans a course event out to its audience: submissions go to
// every admin, review outcomes go to the course instructor.
func (s *notificationService) NotifyCourseEvent(ctx context.Context, course *entity.Course, actorID uuid.UUID, notificationType string) error {
	message, ok := courseMessage(notificationType, course.Title)
	if !ok {
		return fmt.Errorf("unknown notification type %q: %w", notificationType, apperror.ErrBadRequest)
	}

	var recipients []uuid.UUID
	if notificationType == entity.NotificationCourseSubmitted {
		admins, err := s.repo.AdminIDs(ctx)
		if err != nil {
			return err
		}
		recipients = admins
	} else {
		recipients = []uuid.UUID{course.InstructorID}
	}

	courseID := course.ID
	for _, recipient := range recipients {
		if recipient == actorID {
			continue
		}
		actor := actorID
		n := &entity.Notification{
			UserID:   recipient,
			ActorID:  &actor,
			CourseID: &courseID,
			Type:     notificationType,
			Message:  message,
		}
		if err := s.CreateNotification(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]dto.NotificationResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	notifications, err := s.repo.GetByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		resp = append(resp, dto.NewNotificationResponse(&notifications[i]))
	}
	return resp, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	updated, err := s.repo.MarkAsRead(ctx, userID, id)
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("notification not found: %w", apperror.ErrNotFound)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
