package service

import (
	"context"
	"testing"

	domainerrors "github.com/linkvaultapp/linkvault-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSearcher returns a fixed hit list and records whether it was called.
type stubSearcher struct {
	ids    []string
	called bool
}

func (s *stubSearcher) SearchBookmarkIDs(_ context.Context, _, _ string, _, _ int) ([]string, error) {
	s.called = true
	return s.ids, nil
}

func TestBookmarkService_CreateBookmark(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	catSvc := NewCategoryService(st, testLogger())
	svc := NewBookmarkService(st, nil, testLogger())
	ctx := context.Background()

	cat, err := catSvc.CreateCategory(ctx, testUserID, "Reading")
	require.NoError(t, err)

	bm, err := svc.CreateBookmark(ctx, testUserID, CreateBookmarkInput{
		CategoryID:  cat.ID,
		URL:         "https://example.com",
		Name:        "Example",
		Description: "A site",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, bm.ID)
	assert.Equal(t, cat.ID, bm.CategoryID)
}

func TestBookmarkService_CreateBookmark_CategoryNotFound(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	svc := NewBookmarkService(st, nil, testLogger())

	_, err := svc.CreateBookmark(context.Background(), testUserID, CreateBookmarkInput{
		CategoryID: "cat-missing",
		URL:        "https://example.com",
		Name:       "Example",
	})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestBookmarkService_CreateBookmark_ForeignCategory(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	catSvc := NewCategoryService(st, testLogger())
	svc := NewBookmarkService(st, nil, testLogger())
	ctx := context.Background()

	cat, err := catSvc.CreateCategory(ctx, "user-other", "Theirs")
	require.NoError(t, err)

	_, err = svc.CreateBookmark(ctx, testUserID, CreateBookmarkInput{
		CategoryID: cat.ID,
		URL:        "https://example.com",
		Name:       "Example",
	})
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestBookmarkService_GetBookmark_ResolvesCategory(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	catSvc := NewCategoryService(st, testLogger())
	svc := NewBookmarkService(st, nil, testLogger())
	ctx := context.Background()

	cat, err := catSvc.CreateCategory(ctx, testUserID, "Reading")
	require.NoError(t, err)
	bm, err := svc.CreateBookmark(ctx, testUserID, CreateBookmarkInput{
		CategoryID: cat.ID,
		URL:        "https://example.com",
		Name:       "Example",
	})
	require.NoError(t, err)

	got, err := svc.GetBookmark(ctx, testUserID, bm.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Category)
	assert.Equal(t, cat.ID, got.Category.ID)
}

func TestBookmarkService_ListBookmarks_ResolvesCategories(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	catSvc := NewCategoryService(st, testLogger())
	svc := NewBookmarkService(st, nil, testLogger())
	ctx := context.Background()

	reading, err := catSvc.CreateCategory(ctx, testUserID, "Reading")
	require.NoError(t, err)
	work, err := catSvc.CreateCategory(ctx, testUserID, "Work")
	require.NoError(t, err)

	for _, target := range []string{reading.ID, work.ID} {
		_, err := svc.CreateBookmark(ctx, testUserID, CreateBookmarkInput{
			CategoryID: target,
			URL:        "https://example.com",
			Name:       "Link",
		})
		require.NoError(t, err)
	}

	all, err := svc.ListBookmarks(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, entry := range all {
		require.NotNil(t, entry.Category)
		assert.Equal(t, entry.Bookmark.CategoryID, entry.Category.ID)
	}

	filed, err := svc.ListBookmarksByCategory(ctx, testUserID, work.ID)
	require.NoError(t, err)
	require.Len(t, filed, 1)
	require.NotNil(t, filed[0].Category)
	assert.Equal(t, work.ID, filed[0].Category.ID)
}

func TestBookmarkService_UpdateBookmark_Partial(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	catSvc := NewCategoryService(st, testLogger())
	svc := NewBookmarkService(st, nil, testLogger())
	ctx := context.Background()

	cat, err := catSvc.CreateCategory(ctx, testUserID, "Reading")
	require.NoError(t, err)
	bm, err := svc.CreateBookmark(ctx, testUserID, CreateBookmarkInput{
		CategoryID:  cat.ID,
		URL:         "https://example.com",
		Name:        "Example",
		Description: "Original",
	})
	require.NoError(t, err)

	newName := "Renamed"
	updated, err := svc.UpdateBookmark(ctx, testUserID, bm.ID, UpdateBookmarkInput{
		Name: &newName,
	})
	require.NoError(t, err)

	// Only the named field changes.
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "https://example.com", updated.URL)
	assert.Equal(t, "Original", updated.Description)
}

func TestBookmarkService_UpdateBookmark_RefileChecksTarget(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	catSvc := NewCategoryService(st, testLogger())
	svc := NewBookmarkService(st, nil, testLogger())
	ctx := context.Background()

	cat, err := catSvc.CreateCategory(ctx, testUserID, "Reading")
	require.NoError(t, err)
	bm, err := svc.CreateBookmark(ctx, testUserID, CreateBookmarkInput{
		CategoryID: cat.ID,
		URL:        "https://example.com",
		Name:       "Example",
	})
	require.NoError(t, err)

	missing := "cat-missing"
	_, err = svc.UpdateBookmark(ctx, testUserID, bm.ID, UpdateBookmarkInput{
		CategoryID: &missing,
	})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	// The bookmark keeps its original category after the failed refile.
	got, err := svc.GetBookmark(ctx, testUserID, bm.ID)
	require.NoError(t, err)
	assert.Equal(t, cat.ID, got.Bookmark.CategoryID)
}

func TestBookmarkService_DeleteBookmark_Foreign(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	catSvc := NewCategoryService(st, testLogger())
	svc := NewBookmarkService(st, nil, testLogger())
	ctx := context.Background()

	cat, err := catSvc.CreateCategory(ctx, "user-other", "Theirs")
	require.NoError(t, err)
	bm, err := svc.CreateBookmark(ctx, "user-other", CreateBookmarkInput{
		CategoryID: cat.ID,
		URL:        "https://example.com",
		Name:       "Example",
	})
	require.NoError(t, err)

	err = svc.DeleteBookmark(ctx, testUserID, bm.ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestBookmarkService_SearchBookmarks_EmptyKeyword(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	searcher := &stubSearcher{}
	svc := NewBookmarkService(st, searcher, testLogger())

	_, err := svc.SearchBookmarks(context.Background(), testUserID, "   ", 10, 0)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	// The index is never consulted for a blank keyword.
	assert.False(t, searcher.called)
}

func TestBookmarkService_SearchBookmarks_ResolvesHits(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	catSvc := NewCategoryService(st, testLogger())
	ctx := context.Background()

	cat, err := catSvc.CreateCategory(ctx, testUserID, "Reading")
	require.NoError(t, err)

	bmSvc := NewBookmarkService(st, nil, testLogger())
	mine, err := bmSvc.CreateBookmark(ctx, testUserID, CreateBookmarkInput{
		CategoryID: cat.ID,
		URL:        "https://example.com",
		Name:       "Example",
	})
	require.NoError(t, err)

	// Hit list includes a stale ID and our bookmark; only the live,
	// owned document comes back.
	searcher := &stubSearcher{ids: []string{"bm-stale", mine.ID}}
	svc := NewBookmarkService(st, searcher, testLogger())

	results, err := svc.SearchBookmarks(ctx, testUserID, "example", 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, mine.ID, results[0].ID)
}

func TestBookmarkService_ListBookmarks_StorageError(t *testing.T) {
	st, cleanup := newTestStore(t)
	defer cleanup()

	catSvc := NewCategoryService(st, testLogger())
	svc := NewBookmarkService(st, nil, testLogger())
	ctx := context.Background()

	cat, err := catSvc.CreateCategory(ctx, testUserID, "Reading")
	require.NoError(t, err)
	_, err = svc.CreateBookmark(ctx, testUserID, CreateBookmarkInput{
		CategoryID: cat.ID,
		URL:        "https://example.com",
		Name:       "Example",
	})
	require.NoError(t, err)

	require.NoError(t, st.Close())

	_, err = svc.ListBookmarks(ctx, testUserID)
	assert.ErrorIs(t, err, domainerrors.ErrStorage)
}
