package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"soundbite/internal/events"
	"soundbite/internal/models"
	"soundbite/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	snippetRepo repository.SnippetRepository
	counterRepo repository.CounterRepository
	publisher   Publisher
}

type AddCommentInput struct {
	SnippetID      string
	Body           string
	AuthorHandle   string
	AuthorImageURL string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	snippetRepo repository.SnippetRepository,
	counterRepo repository.CounterRepository,
	publisher Publisher,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		snippetRepo: snippetRepo,
		counterRepo: counterRepo,
		publisher:   publisher,
	}
}

// AddComment appends a comment to a snippet and bumps its comment counter.
// Comments have no standalone deletion; they only go away when the snippet's
// cascade removes them.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	if strings.TrimSpace(in.Body) == "" {
		return nil, models.NewValidationError("Body is required")
	}
	if len(in.Body) > maxCommentLen {
		return nil, models.NewValidationError("Body too long (max 2000 characters)")
	}

	if _, err := s.snippetRepo.GetByID(ctx, in.SnippetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Snippet", in.SnippetID)
		}
		return nil, err
	}

	comment := &models.Comment{
		ID:             uuid.NewString(),
		SnippetID:      in.SnippetID,
		Body:           in.Body,
		AuthorHandle:   in.AuthorHandle,
		AuthorImageURL: in.AuthorImageURL,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if err := s.counterRepo.Increment(ctx, in.SnippetID, models.CounterComments, 1); err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, events.TypeCommentCreated, events.CommentCreated{
		CommentID:    comment.ID,
		SnippetID:    in.SnippetID,
		SenderHandle: in.AuthorHandle,
	})
	return comment, nil
}
