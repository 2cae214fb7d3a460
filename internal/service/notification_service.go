package service

import (
	"context"

	"soundbite/internal/models"
	"soundbite/internal/repository"
)

type NotificationService struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// List returns the recipient's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, recipientHandle string, limit int) ([]*models.Notification, error) {
	return s.notificationRepo.ListByRecipient(ctx, recipientHandle, clampLimit(limit))
}

// MarkRead marks the given notifications as read. Only the recipient's own
// notifications are affected; foreign ids in the list are silently skipped.
func (s *NotificationService) MarkRead(ctx context.Context, recipientHandle string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, models.NewValidationError("ids is required")
	}
	return s.notificationRepo.MarkRead(ctx, recipientHandle, ids)
}
