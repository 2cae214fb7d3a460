// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"time"

	"soundbite/internal/cache"
	"soundbite/internal/models"
	"soundbite/internal/observability"

	"gorm.io/gorm"
)

// cascadeChunkSize is the store's per-batch operation limit. Reference sets
// larger than this are deleted in multiple statements inside one transaction.
const cascadeChunkSize = 500

// feedCacheLimit is the only page size served from the feed cache. Caching a
// page of one size and serving it for another would break the limit contract,
// so other sizes always go to the database.
const feedCacheLimit = 20

// FeedQuery describes one page of the public feed.
type FeedQuery struct {
	Genre string
	Limit int
	// After is the created_at cursor; zero means the first page.
	After time.Time
}

// CascadeResult reports how many referencing documents a cascade removed.
type CascadeResult struct {
	Comments      int64
	Likes         int64
	Notifications int64
}

// SnippetRepository defines the interface for snippet data operations
type SnippetRepository interface {
	Create(ctx context.Context, snippet *models.Snippet) error
	GetByID(ctx context.Context, id string) (*models.Snippet, error)
	ListFeed(ctx context.Context, q FeedQuery) ([]*models.Snippet, error)
	ListByOwner(ctx context.Context, ownerHandle string, limit int, after time.Time) ([]*models.Snippet, error)
	DeleteCascade(ctx context.Context, id string) (CascadeResult, error)
	UpdateOwnerImage(ctx context.Context, ownerHandle, imageURL string) (int64, error)
}

// snippetRepository implements SnippetRepository
type snippetRepository struct {
	db *gorm.DB
}

// NewSnippetRepository creates a new snippet repository
func NewSnippetRepository(db *gorm.DB) SnippetRepository {
	return &snippetRepository{db: db}
}

func (r *snippetRepository) Create(ctx context.Context, snippet *models.Snippet) error {
	err := r.db.WithContext(ctx).Create(snippet).Error
	if err == nil {
		cache.InvalidateFeed(ctx)
	}
	return err
}

func (r *snippetRepository) GetByID(ctx context.Context, id string) (*models.Snippet, error) {
	var snippet models.Snippet
	err := cache.Aside(ctx, cache.SnippetKey(id), &snippet, cache.SnippetTTL, func() error {
		return r.db.WithContext(ctx).First(&snippet, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &snippet, nil
}

func (r *snippetRepository) ListFeed(ctx context.Context, q FeedQuery) ([]*models.Snippet, error) {
	var snippets []*models.Snippet

	// Only the unfiltered, default-sized first page is hot enough to cache.
	if q.Genre == "" && q.After.IsZero() && q.Limit == feedCacheLimit {
		err := cache.Aside(ctx, cache.FeedFirstPageKey, &snippets, cache.FeedTTL, func() error {
			return r.feedQuery(ctx, q).Find(&snippets).Error
		})
		return snippets, err
	}

	err := r.feedQuery(ctx, q).Find(&snippets).Error
	return snippets, err
}

func (r *snippetRepository) feedQuery(ctx context.Context, q FeedQuery) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&models.Snippet{}).Order("created_at DESC").Limit(q.Limit)
	if q.Genre != "" {
		db = db.Where("genre = ?", q.Genre)
	}
	if !q.After.IsZero() {
		db = db.Where("created_at < ?", q.After)
	}
	return db
}

func (r *snippetRepository) ListByOwner(ctx context.Context, ownerHandle string, limit int, after time.Time) ([]*models.Snippet, error) {
	var snippets []*models.Snippet
	db := r.db.WithContext(ctx).
		Where("owner_handle = ?", ownerHandle).
		Order("created_at DESC").
		Limit(limit)
	if !after.IsZero() {
		db = db.Where("created_at < ?", after)
	}
	err := db.Find(&snippets).Error
	return snippets, err
}

// DeleteCascade removes every comment, like and notification referencing the
// snippet plus the snippet itself in one transaction. Deletions run against
// collected ids in chunks of cascadeChunkSize so an oversized reference set
// cannot exceed the store's batch limit. Play records are intentionally left
// in place. Re-running against an already-swept snippet id is a no-op.
func (r *snippetRepository) DeleteCascade(ctx context.Context, id string) (CascadeResult, error) {
	var result CascadeResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var commentIDs []string
		if err := tx.Model(&models.Comment{}).Where("snippet_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		var likeIDs []string
		if err := tx.Model(&models.Engagement{}).
			Where("kind = ? AND snippet_id = ?", models.EngagementLike, id).
			Pluck("id", &likeIDs).Error; err != nil {
			return err
		}
		var notificationIDs []string
		if err := tx.Model(&models.Notification{}).Where("snippet_id = ?", id).Pluck("id", &notificationIDs).Error; err != nil {
			return err
		}

		for _, chunk := range chunkIDs(commentIDs, cascadeChunkSize) {
			res := tx.Where("id IN ?", chunk).Delete(&models.Comment{})
			if res.Error != nil {
				return res.Error
			}
			result.Comments += res.RowsAffected
		}
		for _, chunk := range chunkIDs(likeIDs, cascadeChunkSize) {
			res := tx.Where("id IN ?", chunk).Delete(&models.Engagement{})
			if res.Error != nil {
				return res.Error
			}
			result.Likes += res.RowsAffected
		}
		for _, chunk := range chunkIDs(notificationIDs, cascadeChunkSize) {
			res := tx.Where("id IN ?", chunk).Delete(&models.Notification{})
			if res.Error != nil {
				return res.Error
			}
			result.Notifications += res.RowsAffected
		}

		return tx.Where("id = ?", id).Delete(&models.Snippet{}).Error
	})
	if err != nil {
		return CascadeResult{}, err
	}

	observability.CascadeDeletedDocs.WithLabelValues("comments").Add(float64(result.Comments))
	observability.CascadeDeletedDocs.WithLabelValues("likes").Add(float64(result.Likes))
	observability.CascadeDeletedDocs.WithLabelValues("notifications").Add(float64(result.Notifications))

	cache.InvalidateSnippet(ctx, id)
	cache.InvalidateFeed(ctx)
	return result, nil
}

// UpdateOwnerImage rewrites the denormalized owner image on all of a user's
// snippets, chunked at the store batch limit, inside one transaction.
func (r *snippetRepository) UpdateOwnerImage(ctx context.Context, ownerHandle, imageURL string) (int64, error) {
	var updated int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&models.Snippet{}).Where("owner_handle = ?", ownerHandle).Pluck("id", &ids).Error; err != nil {
			return err
		}
		for _, chunk := range chunkIDs(ids, cascadeChunkSize) {
			res := tx.Model(&models.Snippet{}).
				Where("id IN ?", chunk).
				UpdateColumn("owner_image_url", imageURL)
			if res.Error != nil {
				return res.Error
			}
			updated += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	cache.InvalidateFeed(ctx)
	return updated, nil
}

// chunkIDs splits ids into slices of at most size elements.
func chunkIDs(ids []string, size int) [][]string {
	if len(ids) == 0 {
		return nil
	}
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
