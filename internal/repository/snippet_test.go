package repository

import (
	"context"
	"regexp"
	"testing"

	"soundbite/internal/cache"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnippetRepository_DeleteCascade(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSnippetRepository(db)
	ctx := context.Background()

	// The whole cascade runs inside one transaction: collect referencing ids,
	// delete comments, likes (plays stay), notifications, then the snippet.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "comments" WHERE snippet_id = $1`)).
		WithArgs("snip-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("c1").AddRow("c2"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "engagements" WHERE kind = $1 AND snippet_id = $2`)).
		WithArgs("like", "snip-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("l1"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "notifications" WHERE snippet_id = $1`)).
		WithArgs("snip-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("l1").AddRow("c1"))

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "comments" WHERE id IN ($1,$2)`)).
		WithArgs("c1", "c2").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "engagements" WHERE id IN ($1)`)).
		WithArgs("l1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "notifications" WHERE id IN ($1,$2)`)).
		WithArgs("l1", "c1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "snippets" WHERE id = $1`)).
		WithArgs("snip-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.DeleteCascade(ctx, "snip-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Comments)
	assert.Equal(t, int64(1), result.Likes)
	assert.Equal(t, int64(2), result.Notifications)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnippetRepository_DeleteCascadeEmptyIsNoop(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSnippetRepository(db)

	// Re-running against an already-swept snippet converges with no deletes
	// beyond the (absent) snippet row.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "comments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "engagements"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "notifications"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "snippets" WHERE id = $1`)).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	result, err := repo.DeleteCascade(context.Background(), "gone")
	require.NoError(t, err)
	assert.Zero(t, result.Comments)
	assert.Zero(t, result.Likes)
	assert.Zero(t, result.Notifications)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnippetRepository_UpdateOwnerImage(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSnippetRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "snippets" WHERE owner_handle = $1`)).
		WithArgs("ada").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("s1").AddRow("s2"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "snippets" SET "owner_image_url"=$1 WHERE id IN ($2,$3)`)).
		WithArgs("new.png", "s1", "s2").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	updated, err := repo.UpdateOwnerImage(context.Background(), "ada", "new.png")
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnippetRepository_ListFeedCacheHonorsLimit(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSnippetRepository(db)
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })
	ctx := context.Background()

	feedRows := func(ids ...string) *sqlmock.Rows {
		rows := sqlmock.NewRows([]string{"id"})
		for _, id := range ids {
			rows.AddRow(id)
		}
		return rows
	}
	feedSQL := regexp.QuoteMeta(`SELECT * FROM "snippets" ORDER BY created_at DESC LIMIT $1`)

	// The default-sized first page loads from the database and fills the cache.
	mock.ExpectQuery(feedSQL).WithArgs(feedCacheLimit).WillReturnRows(feedRows("s1", "s2"))
	first, err := repo.ListFeed(ctx, FeedQuery{Limit: feedCacheLimit})
	require.NoError(t, err)
	require.Len(t, first, 2)

	// A different limit must not be served from the cached page; it queries
	// the database with its own limit.
	mock.ExpectQuery(feedSQL).WithArgs(1).WillReturnRows(feedRows("s1"))
	one, err := repo.ListFeed(ctx, FeedQuery{Limit: 1})
	require.NoError(t, err)
	require.Len(t, one, 1)

	// The default-sized page is still a cache hit, no further query expected.
	again, err := repo.ListFeed(ctx, FeedQuery{Limit: feedCacheLimit})
	require.NoError(t, err)
	assert.Len(t, again, 2)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChunkIDs(t *testing.T) {
	ids := make([]string, 1201)
	for i := range ids {
		ids[i] = "id"
	}

	chunks := chunkIDs(ids, cascadeChunkSize)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], cascadeChunkSize)
	assert.Len(t, chunks[1], cascadeChunkSize)
	assert.Len(t, chunks[2], 201)

	assert.Nil(t, chunkIDs(nil, cascadeChunkSize))
}
