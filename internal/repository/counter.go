package repository

import (
	"context"
	"fmt"

	"soundbite/internal/cache"
	"soundbite/internal/models"
	"soundbite/internal/observability"

	"gorm.io/gorm"
)

// CounterRepository applies deltas to a snippet's denormalized counters.
//
// Every update is a single atomic column expression executed by the store, so
// concurrent engagements on the same snippet serialize on the row instead of
// losing increments to a read-modify-write race. Counters are floored at zero.
type CounterRepository interface {
	Increment(ctx context.Context, snippetID string, field models.CounterField, delta int) error
}

type counterRepository struct {
	db *gorm.DB
}

// NewCounterRepository creates a new counter repository
func NewCounterRepository(db *gorm.DB) CounterRepository {
	return &counterRepository{db: db}
}

func (r *counterRepository) Increment(ctx context.Context, snippetID string, field models.CounterField, delta int) error {
	if !field.Valid() {
		return fmt.Errorf("unknown counter field %q", field)
	}

	col := field.Column()
	res := r.db.WithContext(ctx).Model(&models.Snippet{}).
		Where("id = ?", snippetID).
		UpdateColumn(col, gorm.Expr("GREATEST("+col+" + ?, 0)", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	direction := "increment"
	if delta < 0 {
		direction = "decrement"
	}
	observability.CounterUpdates.WithLabelValues(string(field), direction).Inc()

	cache.InvalidateSnippet(ctx, snippetID)
	cache.InvalidateFeed(ctx)
	return nil
}
