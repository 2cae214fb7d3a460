package service

import (
	"context"
	"errors"
	"time"

	"soundbite/internal/events"
	"soundbite/internal/models"
	"soundbite/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EngagementService enforces the at-most-one-per-pair rule for likes and
// plays. The dedup query handles the common case; the unique index behind
// repository.EngagementRepository.Create closes the race window between
// concurrent requests for the same pair.
type EngagementService struct {
	snippetRepo    repository.SnippetRepository
	engagementRepo repository.EngagementRepository
	counterRepo    repository.CounterRepository
	publisher      Publisher
}

func NewEngagementService(
	snippetRepo repository.SnippetRepository,
	engagementRepo repository.EngagementRepository,
	counterRepo repository.CounterRepository,
	publisher Publisher,
) *EngagementService {
	return &EngagementService{
		snippetRepo:    snippetRepo,
		engagementRepo: engagementRepo,
		counterRepo:    counterRepo,
		publisher:      publisher,
	}
}

// Like registers a like for (userHandle, snippetID) and returns the updated
// snippet. A duplicate like is a conflict, never a second record.
func (s *EngagementService) Like(ctx context.Context, userHandle, snippetID string) (*models.Snippet, error) {
	engagement, err := s.register(ctx, models.EngagementLike, userHandle, snippetID, "Snippet already liked")
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, events.TypeLikeCreated, events.LikeCreated{
		LikeID:       engagement.ID,
		SnippetID:    snippetID,
		SenderHandle: userHandle,
	})
	return s.refreshed(ctx, snippetID)
}

// Unlike removes the user's like and its paired notification. Unliking a
// snippet that was never liked is a conflict.
func (s *EngagementService) Unlike(ctx context.Context, userHandle, snippetID string) (*models.Snippet, error) {
	existing, err := s.engagementRepo.Find(ctx, models.EngagementLike, userHandle, snippetID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewConflictError("Snippet not liked")
	}
	if err != nil {
		return nil, err
	}

	if err := s.engagementRepo.Delete(ctx, existing.ID); err != nil {
		return nil, err
	}
	if err := s.counterRepo.Increment(ctx, snippetID, models.CounterLikes, -1); err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, events.TypeLikeDeleted, events.LikeDeleted{LikeID: existing.ID})
	return s.refreshed(ctx, snippetID)
}

// Play registers a play for an authenticated user. Replays are conflicts, so
// each user counts once toward the play counter.
func (s *EngagementService) Play(ctx context.Context, userHandle, snippetID string) (*models.Snippet, error) {
	if _, err := s.register(ctx, models.EngagementPlay, userHandle, snippetID, "Snippet already played"); err != nil {
		return nil, err
	}
	return s.refreshed(ctx, snippetID)
}

// PlayAnonymous counts a play without identity: no dedup and no engagement
// record, just the counter. Unauthenticated playback tracking accepts
// overcounting from repeat listens.
func (s *EngagementService) PlayAnonymous(ctx context.Context, snippetID string) (*models.Snippet, error) {
	if _, err := s.snippetRepo.GetByID(ctx, snippetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Snippet", snippetID)
		}
		return nil, err
	}

	if err := s.counterRepo.Increment(ctx, snippetID, models.CounterPlays, 1); err != nil {
		return nil, err
	}
	return s.refreshed(ctx, snippetID)
}

func (s *EngagementService) register(ctx context.Context, kind models.EngagementKind, userHandle, snippetID, conflictMsg string) (*models.Engagement, error) {
	if _, err := s.snippetRepo.GetByID(ctx, snippetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Snippet", snippetID)
		}
		return nil, err
	}

	_, err := s.engagementRepo.Find(ctx, kind, userHandle, snippetID)
	if err == nil {
		return nil, models.NewConflictError(conflictMsg)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	engagement := &models.Engagement{
		ID:         uuid.NewString(),
		Kind:       kind,
		UserHandle: userHandle,
		SnippetID:  snippetID,
		CreatedAt:  time.Now().UTC(),
	}
	created, err := s.engagementRepo.Create(ctx, engagement)
	if err != nil {
		return nil, err
	}
	if !created {
		// Lost the race to a concurrent request for the same pair.
		return nil, models.NewConflictError(conflictMsg)
	}

	if err := s.counterRepo.Increment(ctx, snippetID, kind.CounterField(), 1); err != nil {
		return nil, err
	}
	return engagement, nil
}

func (s *EngagementService) refreshed(ctx context.Context, snippetID string) (*models.Snippet, error) {
	snippet, err := s.snippetRepo.GetByID(ctx, snippetID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Snippet", snippetID)
	}
	if err != nil {
		return nil, err
	}
	return snippet, nil
}
