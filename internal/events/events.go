// Package events defines the change-capture events that drive reactive
// fan-out, and their Redis pub/sub transport.
package events

import (
	"encoding/json"
	"fmt"
)

// Event type constants prevent typos in event names.
const (
	TypeLikeCreated    = "like_created"
	TypeLikeDeleted    = "like_deleted"
	TypeCommentCreated = "comment_created"
	TypeSnippetDeleted = "snippet_deleted"
	TypeUserUpdated    = "user_updated"
)

// Channels carrying change-capture events, one per source collection.
const (
	ChannelLikes    = "events:likes"
	ChannelComments = "events:comments"
	ChannelSnippets = "events:snippets"
	ChannelUsers    = "events:users"

	// CapturePattern matches every change-capture channel.
	CapturePattern = "events:*"
)

// Envelope is the wire form of a change-capture event.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// LikeCreated is emitted after a like record is stored.
type LikeCreated struct {
	LikeID       string `json:"like_id"`
	SnippetID    string `json:"snippet_id"`
	SenderHandle string `json:"sender_handle"`
}

// LikeDeleted is emitted after a like record is removed.
type LikeDeleted struct {
	LikeID string `json:"like_id"`
}

// CommentCreated is emitted after a comment record is stored.
type CommentCreated struct {
	CommentID    string `json:"comment_id"`
	SnippetID    string `json:"snippet_id"`
	SenderHandle string `json:"sender_handle"`
}

// SnippetDeleted is emitted after a snippet is removed; the handler re-runs
// the referencing-record sweep so a partially applied cascade converges.
type SnippetDeleted struct {
	SnippetID string `json:"snippet_id"`
}

// UserUpdated carries the before/after image URL of a profile update.
type UserUpdated struct {
	Handle         string `json:"handle"`
	BeforeImageURL string `json:"before_image_url"`
	AfterImageURL  string `json:"after_image_url"`
}

// NewEnvelope wraps a typed payload for publishing.
func NewEnvelope(eventType string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Envelope{Type: eventType, Payload: raw}, nil
}

// ChannelFor maps an event type onto its source-collection channel.
func ChannelFor(eventType string) string {
	switch eventType {
	case TypeLikeCreated, TypeLikeDeleted:
		return ChannelLikes
	case TypeCommentCreated:
		return ChannelComments
	case TypeSnippetDeleted:
		return ChannelSnippets
	case TypeUserUpdated:
		return ChannelUsers
	}
	return ChannelSnippets
}
