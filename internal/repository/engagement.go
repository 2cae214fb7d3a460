package repository

import (
	"context"

	"soundbite/internal/models"

	"gorm.io/gorm"
)

// EngagementRepository defines the interface for like and play records.
type EngagementRepository interface {
	// Find returns the engagement for (kind, userHandle, snippetID) or
	// gorm.ErrRecordNotFound.
	Find(ctx context.Context, kind models.EngagementKind, userHandle, snippetID string) (*models.Engagement, error)
	// Create inserts the engagement. It reports false when a concurrent
	// request won the race for the same (kind, user, snippet) identity.
	Create(ctx context.Context, engagement *models.Engagement) (bool, error)
	Delete(ctx context.Context, id string) error
}

type engagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository creates a new engagement repository
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

func (r *engagementRepository) Find(ctx context.Context, kind models.EngagementKind, userHandle, snippetID string) (*models.Engagement, error) {
	var engagement models.Engagement
	err := r.db.WithContext(ctx).
		Where("kind = ? AND user_handle = ? AND snippet_id = ?", kind, userHandle, snippetID).
		Limit(1).
		First(&engagement).Error
	if err != nil {
		return nil, err
	}
	return &engagement, nil
}

func (r *engagementRepository) Create(ctx context.Context, engagement *models.Engagement) (bool, error) {
	// INSERT ... ON CONFLICT DO NOTHING backstops the guard's pre-check:
	// the loser of a duplicate race inserts zero rows instead of erroring.
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO engagements (id, kind, user_handle, snippet_id, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (kind, user_handle, snippet_id) DO NOTHING`,
		engagement.ID, engagement.Kind, engagement.UserHandle, engagement.SnippetID, engagement.CreatedAt,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *engagementRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Engagement{}).Error
}
