package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBookmark_InvalidURL(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.registerTestUser(t, "alice", "alice@example.com")
	cat := ts.createTestCategory(t, token, "Reading")

	resp := ts.api.Post("/api/v1/bookmarks",
		map[string]any{
			"category_id": cat.ID,
			"url":         "not a url",
			"name":        "Broken",
		},
		"Authorization: Bearer "+token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateBookmark_CategoryNotFound(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.registerTestUser(t, "alice", "alice@example.com")

	resp := ts.api.Post("/api/v1/bookmarks",
		map[string]any{
			"category_id": "cat-missing",
			"url":         "https://example.com",
			"name":        "Example",
		},
		"Authorization: Bearer "+token)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestBookmarkLifecycle(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.registerTestUser(t, "alice", "alice@example.com")
	cat := ts.createTestCategory(t, token, "Reading")

	bm := ts.createTestBookmarkAPI(t, token, cat.ID, "https://example.com", "Example")

	// Get resolves the category.
	resp := ts.api.Get("/api/v1/bookmarks/"+bm.ID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	var detail BookmarkDetailResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &detail))
	assert.Equal(t, bm.ID, detail.Bookmark.ID)
	require.NotNil(t, detail.Category)
	assert.Equal(t, cat.ID, detail.Category.ID)

	// Partial update keeps omitted fields.
	resp = ts.api.Patch("/api/v1/bookmarks/"+bm.ID,
		map[string]any{"name": "Renamed"},
		"Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	var updated BookmarkResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &updated))
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "https://example.com", updated.URL)

	// Delete, then the bookmark is gone.
	resp = ts.api.Delete("/api/v1/bookmarks/"+bm.ID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/bookmarks/"+bm.ID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestListBookmarks_CategoryFilter(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.registerTestUser(t, "alice", "alice@example.com")

	reading := ts.createTestCategory(t, token, "Reading")
	work := ts.createTestCategory(t, token, "Work")

	ts.createTestBookmarkAPI(t, token, reading.ID, "https://example.com/1", "One")
	ts.createTestBookmarkAPI(t, token, work.ID, "https://example.com/2", "Two")

	resp := ts.api.Get("/api/v1/bookmarks?category_id="+work.ID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	var body ListBookmarksResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Bookmarks, 1)
	assert.Equal(t, "Two", body.Bookmarks[0].Bookmark.Name)
	require.NotNil(t, body.Bookmarks[0].Category)
	assert.Equal(t, work.ID, body.Bookmarks[0].Category.ID)
}

func TestSearchBookmarks(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.registerTestUser(t, "alice", "alice@example.com")
	cat := ts.createTestCategory(t, token, "Reading")

	ts.createTestBookmarkAPI(t, token, cat.ID, "https://golang.org", "The Go Programming Language")
	ts.createTestBookmarkAPI(t, token, cat.ID, "https://news.example.com", "Daily News")

	resp := ts.api.Get("/api/v1/bookmarks/search?q=golang", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	var body SearchBookmarksResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "golang", body.Keyword)
	require.Len(t, body.Bookmarks, 1)
	assert.Equal(t, "https://golang.org", body.Bookmarks[0].URL)
}

func TestSearchBookmarks_EmptyKeyword(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.registerTestUser(t, "alice", "alice@example.com")

	resp := ts.api.Get("/api/v1/bookmarks/search?q=", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSearchBookmarks_ScopedToUser(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	aliceToken, _ := ts.registerTestUser(t, "alice", "alice@example.com")
	bobToken, _ := ts.registerTestUser(t, "bob", "bob@example.com")

	cat := ts.createTestCategory(t, aliceToken, "Reading")
	ts.createTestBookmarkAPI(t, aliceToken, cat.ID, "https://golang.org", "Go")

	resp := ts.api.Get("/api/v1/bookmarks/search?q=golang", "Authorization: Bearer "+bobToken)
	assert.Equal(t, http.StatusOK, resp.Code)

	var body SearchBookmarksResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Empty(t, body.Bookmarks)
}
