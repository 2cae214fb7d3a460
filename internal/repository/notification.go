package repository

import (
	"context"

	"soundbite/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines the interface for derived notification records.
//
// Create and DeleteByID are both idempotent: the fan-out handlers that call
// them run at-least-once, so a redelivered event must not fail or duplicate.
type NotificationRepository interface {
	// Create inserts the notification, keyed by the triggering record's id.
	// It reports false when a notification with that id already exists.
	Create(ctx context.Context, notification *models.Notification) (bool, error)
	// DeleteByID removes the notification; deleting an absent id is not an error.
	DeleteByID(ctx context.Context, id string) error
	ListByRecipient(ctx context.Context, recipientHandle string, limit int) ([]*models.Notification, error)
	// MarkRead marks the given notification ids read, restricted to the
	// recipient's own records, and returns how many rows changed.
	MarkRead(ctx context.Context, recipientHandle string, ids []string) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO notifications (id, recipient_handle, sender_handle, type, snippet_id, read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO NOTHING`,
		notification.ID, notification.RecipientHandle, notification.SenderHandle,
		notification.Type, notification.SnippetID, notification.Read, notification.CreatedAt,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *notificationRepository) DeleteByID(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Notification{}).Error
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientHandle string, limit int) ([]*models.Notification, error) {
	var notifications []*models.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_handle = ?", recipientHandle).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, recipientHandle string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_handle = ? AND id IN ?", recipientHandle, ids).
		UpdateColumn("read", true)
	return res.RowsAffected, res.Error
}
