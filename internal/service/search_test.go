package service

import (
	"context"
	"os"
	"testing"

	"github.com/linkvaultapp/linkvault-server/internal/search"
	"github.com/linkvaultapp/linkvault-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSearchService(t *testing.T) (*SearchService, *store.Store, func()) {
	t.Helper()

	st, storeCleanup := newTestStore(t)

	tmpDir, err := os.MkdirTemp("", "linkvault-search-svc-test-*")
	require.NoError(t, err)

	idx, err := search.NewSearchIndex(search.Options{
		DataPath: tmpDir,
		Logger:   testLogger(),
	})
	require.NoError(t, err)

	svc := NewSearchService(idx, st, testLogger())
	st.SetSearchIndexer(svc)

	cleanup := func() {
		idx.Close()
		os.RemoveAll(tmpDir)
		storeCleanup()
	}
	return svc, st, cleanup
}

func documentCount(t *testing.T, svc *SearchService) uint64 {
	t.Helper()

	count, err := svc.DocumentCount()
	require.NoError(t, err)
	return count
}

func TestSearchService_RebuildIndex(t *testing.T) {
	svc, st, cleanup := newTestSearchService(t)
	defer cleanup()

	catSvc := NewCategoryService(st, testLogger())
	bmSvc := NewBookmarkService(st, svc, testLogger())
	ctx := context.Background()

	cat, err := catSvc.CreateCategory(ctx, testUserID, "Reading")
	require.NoError(t, err)

	blog, err := bmSvc.CreateBookmark(ctx, testUserID, CreateBookmarkInput{
		CategoryID: cat.ID, URL: "https://go.dev/blog", Name: "Go Blog",
	})
	require.NoError(t, err)
	_, err = bmSvc.CreateBookmark(ctx, testUserID, CreateBookmarkInput{
		CategoryID: cat.ID, URL: "https://go.dev/doc", Name: "Go Docs",
	})
	require.NoError(t, err)
	require.EqualValues(t, 2, documentCount(t, svc))

	// Drop a document from the index only; the store still has it.
	require.NoError(t, svc.DeleteBookmark(ctx, blog.ID))
	require.EqualValues(t, 1, documentCount(t, svc))

	require.NoError(t, svc.RebuildIndex(ctx))

	assert.EqualValues(t, 2, documentCount(t, svc))
	ids, err := svc.SearchBookmarkIDs(ctx, testUserID, "blog", 10, 0)
	require.NoError(t, err)
	assert.Contains(t, ids, blog.ID)
}

func TestSearchService_SyncIndex_Backfills(t *testing.T) {
	svc, st, cleanup := newTestSearchService(t)
	defer cleanup()

	catSvc := NewCategoryService(st, testLogger())
	bmSvc := NewBookmarkService(st, svc, testLogger())
	ctx := context.Background()

	cat, err := catSvc.CreateCategory(ctx, testUserID, "Reading")
	require.NoError(t, err)

	bm, err := bmSvc.CreateBookmark(ctx, testUserID, CreateBookmarkInput{
		CategoryID: cat.ID, URL: "https://example.com", Name: "Example",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBookmark(ctx, bm.ID))
	require.EqualValues(t, 0, documentCount(t, svc))

	require.NoError(t, svc.SyncIndex(ctx))
	assert.EqualValues(t, 1, documentCount(t, svc))
}
