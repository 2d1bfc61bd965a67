package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"stepRivalsAPI/internal/apperr"
	"stepRivalsAPI/internal/repository"
	"stepRivalsAPI/internal/types/notification"
)

// NotificationService exposes the pending-notification inbox written by the
// lifecycle and streak engines.
type NotificationService struct {
	notifications repository.NotificationRepository
}

func NewNotificationService(notificationsRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notificationsRepo}
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*notification.Notification, error) {
	list, err := s.notifications.ListForUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if list == nil {
		list = []*notification.Notification{}
	}
	return list, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.notifications.UnreadCount(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	found, err := s.notifications.MarkRead(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: notification", apperr.ErrNotFound)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.notifications.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
