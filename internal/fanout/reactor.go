// Package fanout derives secondary records from change-capture events:
// notifications from likes and comments, cascade sweeps from snippet
// deletions, and denormalized image propagation from profile updates.
package fanout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"soundbite/internal/events"
	"soundbite/internal/middleware"
	"soundbite/internal/models"
	"soundbite/internal/observability"
	"soundbite/internal/repository"

	"gorm.io/gorm"
)

// UserPusher delivers a realtime payload to a user's push channel.
type UserPusher interface {
	PublishUser(ctx context.Context, handle string, payload string) error
}

// Reactor handles change-capture events. The dispatcher delivers events
// at-least-once, so every handler tolerates redelivery: creates are
// insert-if-absent, deletes tolerate absence, sweeps converge on re-run.
type Reactor struct {
	snippets      repository.SnippetRepository
	notifications repository.NotificationRepository
	push          UserPusher
}

// NewReactor creates a reactor over the given repositories. push may be nil
// when realtime delivery is unavailable.
func NewReactor(snippets repository.SnippetRepository, notifications repository.NotificationRepository, push UserPusher) *Reactor {
	return &Reactor{
		snippets:      snippets,
		notifications: notifications,
		push:          push,
	}
}

// Name returns a human-readable identifier for wiring logs.
func (r *Reactor) Name() string { return "fanout reactor" }

// StartWiring subscribes the reactor to the change-capture channels.
func (r *Reactor) StartWiring(ctx context.Context, n *events.Notifier) error {
	return n.StartCaptureSubscriber(ctx, func(env events.Envelope) {
		if err := r.Dispatch(ctx, env); err != nil {
			observability.FanoutEvents.WithLabelValues(env.Type, "error").Inc()
			middleware.Logger.ErrorContext(ctx, "fanout handler failed",
				slog.String("event", env.Type),
				slog.String("error", err.Error()),
			)
		}
	})
}

// Dispatch decodes the envelope and runs the matching handler.
func (r *Reactor) Dispatch(ctx context.Context, env events.Envelope) error {
	switch env.Type {
	case events.TypeLikeCreated:
		var ev events.LikeCreated
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return r.HandleLikeCreated(ctx, ev)
	case events.TypeLikeDeleted:
		var ev events.LikeDeleted
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return r.HandleLikeDeleted(ctx, ev)
	case events.TypeCommentCreated:
		var ev events.CommentCreated
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return r.HandleCommentCreated(ctx, ev)
	case events.TypeSnippetDeleted:
		var ev events.SnippetDeleted
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return r.HandleSnippetDeleted(ctx, ev)
	case events.TypeUserUpdated:
		var ev events.UserUpdated
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return r.HandleUserUpdated(ctx, ev)
	default:
		observability.FanoutEvents.WithLabelValues(env.Type, "unknown").Inc()
		return nil
	}
}

// HandleLikeCreated stores a like notification for the snippet owner. The
// notification reuses the like's id, so retraction on unlike is a direct
// delete and redelivery of this event inserts nothing new. Self-likes and
// likes on snippets that vanished in the meantime produce nothing.
func (r *Reactor) HandleLikeCreated(ctx context.Context, ev events.LikeCreated) error {
	return r.notifyEngagement(ctx, ev.LikeID, ev.SnippetID, ev.SenderHandle, models.NotificationLike, events.TypeLikeCreated)
}

// HandleCommentCreated stores a comment notification for the snippet owner,
// keyed by the comment's id. Comment notifications are never retracted
// because comments are only removed by the snippet cascade, which sweeps
// notifications along with them.
func (r *Reactor) HandleCommentCreated(ctx context.Context, ev events.CommentCreated) error {
	return r.notifyEngagement(ctx, ev.CommentID, ev.SnippetID, ev.SenderHandle, models.NotificationComment, events.TypeCommentCreated)
}

func (r *Reactor) notifyEngagement(ctx context.Context, sourceID, snippetID, senderHandle string, kind models.NotificationType, eventType string) error {
	snippet, err := r.snippets.GetByID(ctx, snippetID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		observability.FanoutEvents.WithLabelValues(eventType, "orphaned").Inc()
		return nil
	}
	if err != nil {
		return err
	}

	if snippet.OwnerHandle == senderHandle {
		observability.FanoutEvents.WithLabelValues(eventType, "self").Inc()
		return nil
	}

	notification := &models.Notification{
		ID:              sourceID,
		RecipientHandle: snippet.OwnerHandle,
		SenderHandle:    senderHandle,
		Type:            kind,
		SnippetID:       snippetID,
		Read:            false,
		CreatedAt:       time.Now().UTC(),
	}
	created, err := r.notifications.Create(ctx, notification)
	if err != nil {
		return err
	}
	if !created {
		observability.FanoutEvents.WithLabelValues(eventType, "duplicate").Inc()
		return nil
	}
	observability.FanoutEvents.WithLabelValues(eventType, "created").Inc()

	r.pushNotification(ctx, notification)
	return nil
}

// HandleLikeDeleted retracts the notification paired with the deleted like.
func (r *Reactor) HandleLikeDeleted(ctx context.Context, ev events.LikeDeleted) error {
	if err := r.notifications.DeleteByID(ctx, ev.LikeID); err != nil {
		return err
	}
	observability.FanoutEvents.WithLabelValues(events.TypeLikeDeleted, "deleted").Inc()
	return nil
}

// HandleSnippetDeleted re-runs the referencing-record sweep for the deleted
// snippet. The request path already cascaded in its own transaction; this
// makes a redelivered or raced deletion converge to zero referencing records.
func (r *Reactor) HandleSnippetDeleted(ctx context.Context, ev events.SnippetDeleted) error {
	_, err := r.snippets.DeleteCascade(ctx, ev.SnippetID)
	if err != nil {
		return err
	}
	observability.FanoutEvents.WithLabelValues(events.TypeSnippetDeleted, "swept").Inc()
	return nil
}

// HandleUserUpdated propagates a changed profile image to the denormalized
// owner image on all of the user's snippets.
func (r *Reactor) HandleUserUpdated(ctx context.Context, ev events.UserUpdated) error {
	if ev.BeforeImageURL == ev.AfterImageURL {
		observability.FanoutEvents.WithLabelValues(events.TypeUserUpdated, "unchanged").Inc()
		return nil
	}
	updated, err := r.snippets.UpdateOwnerImage(ctx, ev.Handle, ev.AfterImageURL)
	if err != nil {
		return err
	}
	observability.FanoutEvents.WithLabelValues(events.TypeUserUpdated, "propagated").Inc()
	middleware.Logger.InfoContext(ctx, "propagated profile image",
		slog.String("handle", ev.Handle),
		slog.Int64("snippets", updated),
	)
	return nil
}

func (r *Reactor) pushNotification(ctx context.Context, notification *models.Notification) {
	if r.push == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"type":    "notification",
		"payload": notification,
	})
	if err != nil {
		return
	}
	if err := r.push.PublishUser(ctx, notification.RecipientHandle, string(payload)); err != nil {
		middleware.Logger.WarnContext(ctx, "realtime notification push failed",
			slog.String("recipient", notification.RecipientHandle),
			slog.String("error", err.Error()),
		)
	}
}
