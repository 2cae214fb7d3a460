package models

import "time"

// Comment represents a comment on a snippet.
//
// Comments are never deleted on their own; they only disappear when the
// parent snippet's cascade delete removes them.
type Comment struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"id"`
	SnippetID      string    `gorm:"type:uuid;not null;index" json:"snippet_id"`
	Body           string    `gorm:"type:text;not null" json:"body"`
	AuthorHandle   string    `gorm:"size:60;not null" json:"author_handle"`
	AuthorImageURL string    `json:"author_image_url"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Comment) TableName() string {
	return "comments"
}
