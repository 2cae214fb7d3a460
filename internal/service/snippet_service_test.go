package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"soundbite/internal/events"
	"soundbite/internal/models"
	"soundbite/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSnippetService_CreateSnippet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("valid input", func(t *testing.T) {
		t.Parallel()
		var created *models.Snippet
		snippetRepo := noopSnippetRepo()
		snippetRepo.createFn = func(_ context.Context, s *models.Snippet) error {
			created = s
			return nil
		}
		svc := NewSnippetService(snippetRepo, noopCommentRepo(), nil)

		snippet, err := svc.CreateSnippet(ctx, CreateSnippetInput{
			OwnerHandle:   "ada",
			OwnerImageURL: "https://img.example/ada.png",
			Body:          "first take",
			AudioURL:      "https://cdn.example/a.mp3",
			Genre:         "jazz",
		})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.NotEmpty(t, snippet.ID)
		assert.Equal(t, "ada", snippet.OwnerHandle)
		assert.Zero(t, snippet.LikeCount)
		assert.Zero(t, snippet.PlayCount)
		assert.Zero(t, snippet.CommentCount)
		assert.False(t, snippet.CreatedAt.IsZero())
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()
		svc := NewSnippetService(noopSnippetRepo(), noopCommentRepo(), nil)
		_, err := svc.CreateSnippet(ctx, CreateSnippetInput{OwnerHandle: "ada", AudioURL: "a.mp3"})
		assertValidationError(t, err)
	})

	t.Run("body too long", func(t *testing.T) {
		t.Parallel()
		svc := NewSnippetService(noopSnippetRepo(), noopCommentRepo(), nil)
		_, err := svc.CreateSnippet(ctx, CreateSnippetInput{
			OwnerHandle: "ada",
			Body:        strings.Repeat("x", maxBodyLen+1),
			AudioURL:    "a.mp3",
		})
		assertValidationError(t, err)
	})

	t.Run("missing audio url", func(t *testing.T) {
		t.Parallel()
		svc := NewSnippetService(noopSnippetRepo(), noopCommentRepo(), nil)
		_, err := svc.CreateSnippet(ctx, CreateSnippetInput{OwnerHandle: "ada", Body: "hi"})
		assertValidationError(t, err)
	})
}

func TestSnippetService_GetSnippet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("attaches comments", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.listBySnippetFn = func(_ context.Context, snippetID string) ([]*models.Comment, error) {
			return []*models.Comment{{ID: "c1", SnippetID: snippetID}}, nil
		}
		svc := NewSnippetService(noopSnippetRepo(), commentRepo, nil)

		snippet, err := svc.GetSnippet(ctx, "snip-1")
		require.NoError(t, err)
		require.Len(t, snippet.Comments, 1)
		assert.Equal(t, "c1", snippet.Comments[0].ID)
	})

	t.Run("missing snippet is not found", func(t *testing.T) {
		t.Parallel()
		snippetRepo := noopSnippetRepo()
		snippetRepo.getByIDFn = func(_ context.Context, _ string) (*models.Snippet, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := NewSnippetService(snippetRepo, noopCommentRepo(), nil)
		_, err := svc.GetSnippet(ctx, "gone")
		assertNotFoundError(t, err)
	})
}

func TestSnippetService_Feed(t *testing.T) {
	t.Parallel()

	var got repository.FeedQuery
	snippetRepo := noopSnippetRepo()
	snippetRepo.listFeedFn = func(_ context.Context, q repository.FeedQuery) ([]*models.Snippet, error) {
		got = q
		return nil, nil
	}
	svc := NewSnippetService(snippetRepo, noopCommentRepo(), nil)

	after := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	_, err := svc.Feed(context.Background(), FeedInput{Genre: "jazz", Limit: 0, After: after})
	require.NoError(t, err)
	assert.Equal(t, "jazz", got.Genre)
	assert.Equal(t, defaultPageSize, got.Limit)
	assert.Equal(t, after, got.After)

	_, err = svc.Feed(context.Background(), FeedInput{Limit: 5000})
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, got.Limit)
}

func TestSnippetService_DeleteSnippet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("owner delete cascades and publishes", func(t *testing.T) {
		t.Parallel()
		var cascaded string
		snippetRepo := noopSnippetRepo()
		snippetRepo.getByIDFn = func(_ context.Context, id string) (*models.Snippet, error) {
			return &models.Snippet{ID: id, OwnerHandle: "ada"}, nil
		}
		snippetRepo.deleteCascadeFn = func(_ context.Context, id string) (repository.CascadeResult, error) {
			cascaded = id
			return repository.CascadeResult{Comments: 2, Likes: 3, Notifications: 3}, nil
		}
		pub := &publisherStub{}
		svc := NewSnippetService(snippetRepo, noopCommentRepo(), pub)

		err := svc.DeleteSnippet(ctx, "snip-1", "ada")
		require.NoError(t, err)
		assert.Equal(t, "snip-1", cascaded)
		require.Equal(t, []string{events.TypeSnippetDeleted}, pub.types)
		assert.Equal(t, events.SnippetDeleted{SnippetID: "snip-1"}, pub.payloads[0])
	})

	t.Run("non-owner is forbidden and nothing is deleted", func(t *testing.T) {
		t.Parallel()
		snippetRepo := noopSnippetRepo()
		snippetRepo.getByIDFn = func(_ context.Context, id string) (*models.Snippet, error) {
			return &models.Snippet{ID: id, OwnerHandle: "ada"}, nil
		}
		snippetRepo.deleteCascadeFn = func(_ context.Context, _ string) (repository.CascadeResult, error) {
			t.Fatal("forbidden delete must not cascade")
			return repository.CascadeResult{}, nil
		}
		svc := NewSnippetService(snippetRepo, noopCommentRepo(), nil)

		err := svc.DeleteSnippet(ctx, "snip-1", "mallory")
		assertForbiddenError(t, err)
	})

	t.Run("missing snippet is not found", func(t *testing.T) {
		t.Parallel()
		snippetRepo := noopSnippetRepo()
		snippetRepo.getByIDFn = func(_ context.Context, _ string) (*models.Snippet, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := NewSnippetService(snippetRepo, noopCommentRepo(), nil)
		err := svc.DeleteSnippet(ctx, "gone", "ada")
		assertNotFoundError(t, err)
	})
}
