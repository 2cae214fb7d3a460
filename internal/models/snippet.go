// Package models contains data structures for the application's domain models.
package models

import "time"

// Snippet represents a shared audio clip with its denormalized counters.
//
// PlayCount, LikeCount and CommentCount mirror the number of engagement and
// comment records referencing this snippet. They are only ever modified
// through atomic column updates (see repository.CounterRepository), never
// through read-modify-write.
type Snippet struct {
	ID             string `gorm:"type:uuid;primaryKey" json:"id"`
	Body           string `gorm:"type:text;not null" json:"body"`
	AudioURL       string `gorm:"not null" json:"audio_url"`
	Genre          string `gorm:"size:60;index" json:"genre"`
	OwnerHandle    string `gorm:"size:60;not null;index" json:"owner_handle"`
	OwnerImageURL  string `json:"owner_image_url"`
	PlayCount      int    `gorm:"not null;default:0" json:"play_count"`
	LikeCount      int    `gorm:"not null;default:0" json:"like_count"`
	CommentCount   int    `gorm:"not null;default:0" json:"comment_count"`
	// CreatedAt is the feed sort and cursor key.
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	// Comments is populated on the detail endpoint only; not persisted here.
	Comments []*Comment `gorm:"-" json:"comments,omitempty"`
}

// TableName specifies the table name for GORM.
func (Snippet) TableName() string {
	return "snippets"
}
