package models

import "time"

// EngagementKind distinguishes the two user-to-snippet engagement records.
type EngagementKind string

const (
	// EngagementLike is a like record; deleting it retracts the paired notification.
	EngagementLike EngagementKind = "like"
	// EngagementPlay is a listen record for an authenticated user.
	EngagementPlay EngagementKind = "play"
)

// Engagement links one user to one snippet, at most once per kind.
//
// The unique index backstops the guard's query-then-write pre-check: two
// racing registrations for the same (kind, user, snippet) cannot both insert.
type Engagement struct {
	ID         string         `gorm:"type:uuid;primaryKey" json:"id"`
	Kind       EngagementKind `gorm:"size:10;not null;uniqueIndex:idx_engagement_identity" json:"kind"`
	UserHandle string         `gorm:"size:60;not null;uniqueIndex:idx_engagement_identity" json:"user_handle"`
	SnippetID  string         `gorm:"type:uuid;not null;uniqueIndex:idx_engagement_identity;index" json:"snippet_id"`
	CreatedAt  time.Time      `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Engagement) TableName() string {
	return "engagements"
}

// CounterField returns the snippet counter column this engagement kind feeds.
func (k EngagementKind) CounterField() CounterField {
	if k == EngagementPlay {
		return CounterPlays
	}
	return CounterLikes
}
