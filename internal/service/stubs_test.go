package service

import (
	"context"
	"testing"
	"time"

	"soundbite/internal/models"
	"soundbite/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// snippetRepoStub is a stub for repository.SnippetRepository.
type snippetRepoStub struct {
	createFn           func(context.Context, *models.Snippet) error
	getByIDFn          func(context.Context, string) (*models.Snippet, error)
	listFeedFn         func(context.Context, repository.FeedQuery) ([]*models.Snippet, error)
	listByOwnerFn      func(context.Context, string, int, time.Time) ([]*models.Snippet, error)
	deleteCascadeFn    func(context.Context, string) (repository.CascadeResult, error)
	updateOwnerImageFn func(context.Context, string, string) (int64, error)
}

func (s *snippetRepoStub) Create(ctx context.Context, snippet *models.Snippet) error {
	return s.createFn(ctx, snippet)
}
func (s *snippetRepoStub) GetByID(ctx context.Context, id string) (*models.Snippet, error) {
	return s.getByIDFn(ctx, id)
}
func (s *snippetRepoStub) ListFeed(ctx context.Context, q repository.FeedQuery) ([]*models.Snippet, error) {
	return s.listFeedFn(ctx, q)
}
func (s *snippetRepoStub) ListByOwner(ctx context.Context, ownerHandle string, limit int, after time.Time) ([]*models.Snippet, error) {
	return s.listByOwnerFn(ctx, ownerHandle, limit, after)
}
func (s *snippetRepoStub) DeleteCascade(ctx context.Context, id string) (repository.CascadeResult, error) {
	return s.deleteCascadeFn(ctx, id)
}
func (s *snippetRepoStub) UpdateOwnerImage(ctx context.Context, ownerHandle, imageURL string) (int64, error) {
	return s.updateOwnerImageFn(ctx, ownerHandle, imageURL)
}

func noopSnippetRepo() *snippetRepoStub {
	return &snippetRepoStub{
		createFn: func(_ context.Context, _ *models.Snippet) error { return nil },
		getByIDFn: func(_ context.Context, id string) (*models.Snippet, error) {
			return &models.Snippet{ID: id, OwnerHandle: "owner"}, nil
		},
		listFeedFn: func(_ context.Context, _ repository.FeedQuery) ([]*models.Snippet, error) {
			return nil, nil
		},
		listByOwnerFn: func(_ context.Context, _ string, _ int, _ time.Time) ([]*models.Snippet, error) {
			return nil, nil
		},
		deleteCascadeFn: func(_ context.Context, _ string) (repository.CascadeResult, error) {
			return repository.CascadeResult{}, nil
		},
		updateOwnerImageFn: func(_ context.Context, _, _ string) (int64, error) { return 0, nil },
	}
}

// engagementRepoStub is a stub for repository.EngagementRepository.
type engagementRepoStub struct {
	findFn   func(context.Context, models.EngagementKind, string, string) (*models.Engagement, error)
	createFn func(context.Context, *models.Engagement) (bool, error)
	deleteFn func(context.Context, string) error
}

func (s *engagementRepoStub) Find(ctx context.Context, kind models.EngagementKind, userHandle, snippetID string) (*models.Engagement, error) {
	return s.findFn(ctx, kind, userHandle, snippetID)
}
func (s *engagementRepoStub) Create(ctx context.Context, engagement *models.Engagement) (bool, error) {
	return s.createFn(ctx, engagement)
}
func (s *engagementRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func noopEngagementRepo() *engagementRepoStub {
	return &engagementRepoStub{
		findFn: func(_ context.Context, _ models.EngagementKind, _, _ string) (*models.Engagement, error) {
			return nil, gorm.ErrRecordNotFound
		},
		createFn: func(_ context.Context, _ *models.Engagement) (bool, error) { return true, nil },
		deleteFn: func(_ context.Context, _ string) error { return nil },
	}
}

// counterRepoStub is a stub for repository.CounterRepository.
type counterRepoStub struct {
	incrementFn func(context.Context, string, models.CounterField, int) error
}

func (s *counterRepoStub) Increment(ctx context.Context, snippetID string, field models.CounterField, delta int) error {
	return s.incrementFn(ctx, snippetID, field, delta)
}

func noopCounterRepo() *counterRepoStub {
	return &counterRepoStub{
		incrementFn: func(_ context.Context, _ string, _ models.CounterField, _ int) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn        func(context.Context, *models.Comment) error
	listBySnippetFn func(context.Context, string) ([]*models.Comment, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) ListBySnippet(ctx context.Context, snippetID string) ([]*models.Comment, error) {
	return s.listBySnippetFn(ctx, snippetID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:        func(_ context.Context, _ *models.Comment) error { return nil },
		listBySnippetFn: func(_ context.Context, _ string) ([]*models.Comment, error) { return nil, nil },
	}
}

// notificationRepoStub is a stub for repository.NotificationRepository.
type notificationRepoStub struct {
	createFn          func(context.Context, *models.Notification) (bool, error)
	deleteByIDFn      func(context.Context, string) error
	listByRecipientFn func(context.Context, string, int) ([]*models.Notification, error)
	markReadFn        func(context.Context, string, []string) (int64, error)
}

func (s *notificationRepoStub) Create(ctx context.Context, notification *models.Notification) (bool, error) {
	return s.createFn(ctx, notification)
}
func (s *notificationRepoStub) DeleteByID(ctx context.Context, id string) error {
	return s.deleteByIDFn(ctx, id)
}
func (s *notificationRepoStub) ListByRecipient(ctx context.Context, recipientHandle string, limit int) ([]*models.Notification, error) {
	return s.listByRecipientFn(ctx, recipientHandle, limit)
}
func (s *notificationRepoStub) MarkRead(ctx context.Context, recipientHandle string, ids []string) (int64, error) {
	return s.markReadFn(ctx, recipientHandle, ids)
}

func noopNotificationRepo() *notificationRepoStub {
	return &notificationRepoStub{
		createFn:     func(_ context.Context, _ *models.Notification) (bool, error) { return true, nil },
		deleteByIDFn: func(_ context.Context, _ string) error { return nil },
		listByRecipientFn: func(_ context.Context, _ string, _ int) ([]*models.Notification, error) {
			return nil, nil
		},
		markReadFn: func(_ context.Context, _ string, _ []string) (int64, error) { return 0, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByHandleFn func(context.Context, string) (*models.User, error)
	updateFn      func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByHandle(ctx context.Context, handle string) (*models.User, error) {
	return s.getByHandleFn(ctx, handle)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByHandleFn: func(_ context.Context, handle string) (*models.User, error) {
			return &models.User{Handle: handle}, nil
		},
		updateFn: func(_ context.Context, _ *models.User) error { return nil },
	}
}

// publisherStub records published events. Setting err makes every publish
// attempt fail.
type publisherStub struct {
	types    []string
	payloads []any
	err      error
}

func (p *publisherStub) Publish(_ context.Context, eventType string, payload any) error {
	if p.err != nil {
		return p.err
	}
	p.types = append(p.types, eventType)
	p.payloads = append(p.payloads, payload)
	return nil
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok, "expected *models.AppError, got %T", err)
	require.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func assertConflictError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "CONFLICT")
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "NOT_FOUND")
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "FORBIDDEN")
}
