package store

import (
	"context"
	"testing"
	"time"

	"github.com/linkvaultapp/linkvault-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBookmark(id, categoryID string) *domain.Bookmark {
	return &domain.Bookmark{
		ID:         id,
		UserID:     testUserID,
		CategoryID: categoryID,
		URL:        "https://example.com/" + id,
		Name:       "Bookmark " + id,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

func TestCreateBookmark(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	bm := newTestBookmark("bm-001", "cat-001")
	err := store.CreateBookmark(ctx, bm)
	require.NoError(t, err)

	retrieved, err := store.GetBookmark(ctx, bm.ID)
	require.NoError(t, err)
	assert.Equal(t, bm.ID, retrieved.ID)
	assert.Equal(t, bm.URL, retrieved.URL)
	assert.Equal(t, bm.CategoryID, retrieved.CategoryID)
}

func TestCreateBookmark_Duplicate(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	bm := newTestBookmark("bm-001", "cat-001")
	require.NoError(t, store.CreateBookmark(ctx, bm))

	err := store.CreateBookmark(ctx, bm)
	assert.ErrorIs(t, err, ErrDuplicateBookmark)
}

func TestGetBookmark_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	_, err := store.GetBookmark(ctx, "nonexistent")
	assert.ErrorIs(t, err, ErrBookmarkNotFound)
}

func TestUpdateBookmark_Refile(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	bm := newTestBookmark("bm-001", "cat-001")
	require.NoError(t, store.CreateBookmark(ctx, bm))

	// Move to another category.
	bm.CategoryID = "cat-002"
	require.NoError(t, store.UpdateBookmark(ctx, bm))

	// Category index follows the move.
	inOld, err := store.ListBookmarksByCategory(ctx, "cat-001")
	require.NoError(t, err)
	assert.Empty(t, inOld)

	inNew, err := store.ListBookmarksByCategory(ctx, "cat-002")
	require.NoError(t, err)
	require.Len(t, inNew, 1)
	assert.Equal(t, bm.ID, inNew[0].ID)
}

func TestDeleteBookmark(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	bm := newTestBookmark("bm-001", "cat-001")
	require.NoError(t, store.CreateBookmark(ctx, bm))

	require.NoError(t, store.DeleteBookmark(ctx, bm.ID))

	_, err := store.GetBookmark(ctx, bm.ID)
	assert.ErrorIs(t, err, ErrBookmarkNotFound)

	byOwner, err := store.ListBookmarksByOwner(ctx, testUserID)
	require.NoError(t, err)
	assert.Empty(t, byOwner)

	byCategory, err := store.ListBookmarksByCategory(ctx, "cat-001")
	require.NoError(t, err)
	assert.Empty(t, byCategory)
}

func TestDeleteBookmark_Idempotent(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	assert.NoError(t, store.DeleteBookmark(ctx, "nonexistent"))
}

func TestListBookmarksByOwner(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateBookmark(ctx, newTestBookmark("bm-001", "cat-001")))
	require.NoError(t, store.CreateBookmark(ctx, newTestBookmark("bm-002", "cat-002")))

	other := newTestBookmark("bm-other", "cat-003")
	other.UserID = "user-other"
	require.NoError(t, store.CreateBookmark(ctx, other))

	bookmarks, err := store.ListBookmarksByOwner(ctx, testUserID)
	require.NoError(t, err)
	assert.Len(t, bookmarks, 2)

	for _, bm := range bookmarks {
		assert.Equal(t, testUserID, bm.UserID)
	}
}

func TestDeleteBookmarksByCategory(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateBookmark(ctx, newTestBookmark("bm-001", "cat-001")))
	require.NoError(t, store.CreateBookmark(ctx, newTestBookmark("bm-002", "cat-001")))
	require.NoError(t, store.CreateBookmark(ctx, newTestBookmark("bm-003", "cat-002")))

	deleted, err := store.DeleteBookmarksByCategory(ctx, "cat-001")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	// Bookmarks in other categories survive.
	_, err = store.GetBookmark(ctx, "bm-001")
	assert.ErrorIs(t, err, ErrBookmarkNotFound)
	_, err = store.GetBookmark(ctx, "bm-002")
	assert.ErrorIs(t, err, ErrBookmarkNotFound)
	_, err = store.GetBookmark(ctx, "bm-003")
	assert.NoError(t, err)

	// Owner index entries for the deleted bookmarks are cleaned up.
	byOwner, err := store.ListBookmarksByOwner(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, byOwner, 1)
	assert.Equal(t, "bm-003", byOwner[0].ID)
}

func TestDeleteBookmarksByCategory_Empty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	deleted, err := store.DeleteBookmarksByCategory(ctx, "cat-empty")
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestAllBookmarks(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateBookmark(ctx, newTestBookmark("bm-001", "cat-001")))

	other := newTestBookmark("bm-other", "cat-002")
	other.UserID = "user-other"
	require.NoError(t, store.CreateBookmark(ctx, other))

	all, err := store.AllBookmarks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
