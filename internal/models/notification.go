package models

import "time"

// NotificationType identifies what kind of engagement produced a notification.
type NotificationType string

const (
	// NotificationLike is produced when someone likes a snippet.
	NotificationLike NotificationType = "like"
	// NotificationComment is produced when someone comments on a snippet.
	NotificationComment NotificationType = "comment"
)

// Notification is a derived record fanned out from a like or comment.
//
// ID is the id of the triggering like or comment, not a fresh one. Sharing
// the id makes retraction on unlike a direct delete instead of a reverse
// lookup, and makes the fan-out handler idempotent under redelivery.
type Notification struct {
	ID              string           `gorm:"type:uuid;primaryKey" json:"id"`
	RecipientHandle string           `gorm:"size:60;not null;index" json:"recipient_handle"`
	SenderHandle    string           `gorm:"size:60;not null" json:"sender_handle"`
	Type            NotificationType `gorm:"size:10;not null" json:"type"`
	SnippetID       string           `gorm:"type:uuid;not null;index" json:"snippet_id"`
	Read            bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt       time.Time        `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}
