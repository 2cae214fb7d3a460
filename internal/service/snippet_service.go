// Package service implements the application's business rules on top of the
// repository layer. Services validate input, enforce ownership, keep the
// denormalized counters in step with their backing records, and publish
// change-capture events for the fan-out reactor.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"soundbite/internal/events"
	"soundbite/internal/middleware"
	"soundbite/internal/models"
	"soundbite/internal/observability"
	"soundbite/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Publisher emits change-capture events. Satisfied by events.Notifier.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// publish hands an event to the publisher. The triggering write has already
// committed, so a failed publish does not fail the operation; it is logged
// and counted instead.
func publish(ctx context.Context, p Publisher, eventType string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, eventType, payload); err != nil {
		observability.EventPublishFailures.WithLabelValues(eventType).Inc()
		middleware.Logger.ErrorContext(ctx, "event publish failed",
			slog.String("event", eventType),
			slog.String("error", err.Error()),
		)
	}
}

type SnippetService struct {
	snippetRepo repository.SnippetRepository
	commentRepo repository.CommentRepository
	publisher   Publisher
}

type CreateSnippetInput struct {
	OwnerHandle   string
	OwnerImageURL string
	Body          string
	AudioURL      string
	Genre         string
}

type FeedInput struct {
	Genre string
	Limit int
	After time.Time
}

func NewSnippetService(
	snippetRepo repository.SnippetRepository,
	commentRepo repository.CommentRepository,
	publisher Publisher,
) *SnippetService {
	return &SnippetService{
		snippetRepo: snippetRepo,
		commentRepo: commentRepo,
		publisher:   publisher,
	}
}

const (
	maxBodyLen    = 1000
	maxCommentLen = 2000

	defaultPageSize = 20
	maxPageSize     = 100
)

func (s *SnippetService) CreateSnippet(ctx context.Context, in CreateSnippetInput) (*models.Snippet, error) {
	if strings.TrimSpace(in.Body) == "" {
		return nil, models.NewValidationError("Body is required")
	}
	if len(in.Body) > maxBodyLen {
		return nil, models.NewValidationError("Body too long (max 1000 characters)")
	}
	if strings.TrimSpace(in.AudioURL) == "" {
		return nil, models.NewValidationError("audio_url is required")
	}

	snippet := &models.Snippet{
		ID:            uuid.NewString(),
		Body:          in.Body,
		AudioURL:      in.AudioURL,
		Genre:         in.Genre,
		OwnerHandle:   in.OwnerHandle,
		OwnerImageURL: in.OwnerImageURL,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.snippetRepo.Create(ctx, snippet); err != nil {
		return nil, err
	}
	return snippet, nil
}

// GetSnippet returns a snippet with its comments attached, newest first.
func (s *SnippetService) GetSnippet(ctx context.Context, id string) (*models.Snippet, error) {
	snippet, err := s.snippetRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Snippet", id)
	}
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListBySnippet(ctx, id)
	if err != nil {
		return nil, err
	}
	snippet.Comments = comments
	return snippet, nil
}

func (s *SnippetService) Feed(ctx context.Context, in FeedInput) ([]*models.Snippet, error) {
	return s.snippetRepo.ListFeed(ctx, repository.FeedQuery{
		Genre: in.Genre,
		Limit: clampLimit(in.Limit),
		After: in.After,
	})
}

func (s *SnippetService) ListByOwner(ctx context.Context, ownerHandle string, limit int, after time.Time) ([]*models.Snippet, error) {
	return s.snippetRepo.ListByOwner(ctx, ownerHandle, clampLimit(limit), after)
}

// DeleteSnippet removes a snippet together with every comment, like, and
// notification referencing it, in one transaction. Only the owner may delete.
// The published event lets the reactor converge a raced or replayed delete.
func (s *SnippetService) DeleteSnippet(ctx context.Context, id, requesterHandle string) error {
	snippet, err := s.snippetRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError("Snippet", id)
	}
	if err != nil {
		return err
	}

	if snippet.OwnerHandle != requesterHandle {
		return models.NewForbiddenError("You can only delete your own snippets")
	}

	if _, err := s.snippetRepo.DeleteCascade(ctx, id); err != nil {
		return err
	}

	publish(ctx, s.publisher, events.TypeSnippetDeleted, events.SnippetDeleted{SnippetID: id})
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}
