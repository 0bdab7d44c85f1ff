package api

import (
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkvaultapp/linkvault-server/internal/auth"
	"github.com/linkvaultapp/linkvault-server/internal/ratelimit"
	"github.com/linkvaultapp/linkvault-server/internal/search"
	"github.com/linkvaultapp/linkvault-server/internal/service"
	"github.com/linkvaultapp/linkvault-server/internal/store"
)

// testServer wraps the API server for handler testing.
type testServer struct {
	*Server
	api     humatest.TestAPI
	cleanup func()
}

// setupTestServer wires the full stack against a temp directory,
// including a real search index so the search endpoint works end to end.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "linkvault-api-test-*")
	require.NoError(t, err)

	st, err := store.New(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	idx, err := search.NewSearchIndex(search.Options{
		DataPath: tmpDir,
		Logger:   logger,
	})
	require.NoError(t, err)

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(
		hex.EncodeToString(authKey),
		15*time.Minute,
		30*24*time.Hour,
	)
	require.NoError(t, err)

	searchService := service.NewSearchService(idx, st, logger)
	st.SetSearchIndexer(searchService)

	services := &Services{
		Auth:     service.NewAuthService(st, tokenService, logger),
		User:     service.NewUserService(st, logger),
		Category: service.NewCategoryService(st, logger),
		Bookmark: service.NewBookmarkService(st, searchService, logger),
		Search:   searchService,
	}

	loginLimiter := ratelimit.PerMinute(600, 100)

	s := NewServer(st, services, loginLimiter, logger)

	cleanup := func() {
		loginLimiter.Stop()
		_ = idx.Close()
		_ = st.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return &testServer{
		Server:  s,
		api:     humatest.Wrap(t, s.api),
		cleanup: cleanup,
	}
}

// registerTestUser registers a user and returns a bearer token and the
// user's ID.
func (ts *testServer) registerTestUser(t *testing.T, username, email string) (token, userID string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"username": username,
		"email":    email,
		"password": "correct horse battery",
	})
	require.Equal(t, http.StatusOK, resp.Code, "register failed: %s", resp.Body.String())

	var body AuthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))

	return body.Tokens.AccessToken, body.User.ID
}

// createTestCategory creates a category over the API and returns it.
func (ts *testServer) createTestCategory(t *testing.T, token, name string) CategoryResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/categories",
		map[string]any{"name": name},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusCreated, resp.Code, "create category failed: %s", resp.Body.String())

	var body CategoryResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body
}

// createTestSubcategory creates a subcategory over the API.
func (ts *testServer) createTestSubcategory(t *testing.T, token, parentID, name string) CategoryResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/categories/"+parentID+"/subcategories",
		map[string]any{"name": name},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusCreated, resp.Code, "create subcategory failed: %s", resp.Body.String())

	var body CategoryResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body
}

// createTestBookmarkAPI creates a bookmark over the API.
func (ts *testServer) createTestBookmarkAPI(t *testing.T, token, categoryID, url, name string) BookmarkResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/bookmarks",
		map[string]any{
			"category_id": categoryID,
			"url":         url,
			"name":        name,
		},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusCreated, resp.Code, "create bookmark failed: %s", resp.Body.String())

	var body BookmarkResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body
}

// === Tests ===

func TestCreateCategory_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Post("/api/v1/categories", map[string]any{"name": "Reading"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCreateAndListCategories(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.registerTestUser(t, "alice", "alice@example.com")

	root := ts.createTestCategory(t, token, "Reading")
	ts.createTestCategory(t, token, "Work")
	sub := ts.createTestSubcategory(t, token, root.ID, "Articles")

	resp := ts.api.Get("/api/v1/categories", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	var body ListCategoriesResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Categories, 3)

	// The subcategory comes back with its parent resolved, roots without.
	for _, entry := range body.Categories {
		if entry.Category.ID == sub.ID {
			require.NotNil(t, entry.Parent)
			assert.Equal(t, root.ID, entry.Parent.ID)
		} else {
			assert.Nil(t, entry.Parent)
		}
	}
}

func TestCreateCategory_EmptyName(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.registerTestUser(t, "alice", "alice@example.com")

	resp := ts.api.Post("/api/v1/categories",
		map[string]any{"name": ""},
		"Authorization: Bearer "+token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateSubcategory_TooDeep(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.registerTestUser(t, "alice", "alice@example.com")

	root := ts.createTestCategory(t, token, "Reading")
	sub := ts.createTestSubcategory(t, token, root.ID, "Articles")

	resp := ts.api.Post("/api/v1/categories/"+sub.ID+"/subcategories",
		map[string]any{"name": "Deep"},
		"Authorization: Bearer "+token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetCategory_ResolvesParent(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.registerTestUser(t, "alice", "alice@example.com")

	root := ts.createTestCategory(t, token, "Reading")
	sub := ts.createTestSubcategory(t, token, root.ID, "Articles")

	resp := ts.api.Get("/api/v1/categories/"+sub.ID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	var body CategoryDetailResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, sub.ID, body.Category.ID)
	require.NotNil(t, body.Parent)
	assert.Equal(t, root.ID, body.Parent.ID)
}

func TestGetCategory_NotFound(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.registerTestUser(t, "alice", "alice@example.com")

	resp := ts.api.Get("/api/v1/categories/cat-missing", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetCategory_OtherUsersCategory(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	aliceToken, _ := ts.registerTestUser(t, "alice", "alice@example.com")
	bobToken, _ := ts.registerTestUser(t, "bob", "bob@example.com")

	cat := ts.createTestCategory(t, aliceToken, "Private")

	resp := ts.api.Get("/api/v1/categories/"+cat.ID, "Authorization: Bearer "+bobToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestUpdateCategory_Rename(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.registerTestUser(t, "alice", "alice@example.com")
	cat := ts.createTestCategory(t, token, "Reading")

	resp := ts.api.Patch("/api/v1/categories/"+cat.ID,
		map[string]any{"name": "Books"},
		"Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	var body CategoryResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "Books", body.Name)
}

func TestUpdateCategory_Reparent(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.registerTestUser(t, "alice", "alice@example.com")

	rootA := ts.createTestCategory(t, token, "Reading")
	rootB := ts.createTestCategory(t, token, "Work")
	sub := ts.createTestSubcategory(t, token, rootA.ID, "Articles")

	resp := ts.api.Patch("/api/v1/categories/"+sub.ID,
		map[string]any{"parent_id": rootB.ID},
		"Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	var body CategoryResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, rootB.ID, body.ParentID)

	// A root that still has subcategories cannot be moved under another.
	ts.createTestSubcategory(t, token, rootB.ID, "Drafts")

	resp = ts.api.Patch("/api/v1/categories/"+rootB.ID,
		map[string]any{"parent_id": rootA.ID},
		"Authorization: Bearer "+token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestDeleteCategory_CascadeCounts(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.registerTestUser(t, "alice", "alice@example.com")

	root := ts.createTestCategory(t, token, "Reading")
	subX := ts.createTestSubcategory(t, token, root.ID, "Articles")
	subY := ts.createTestSubcategory(t, token, root.ID, "Papers")

	ts.createTestBookmarkAPI(t, token, root.ID, "https://example.com/1", "One")
	ts.createTestBookmarkAPI(t, token, subX.ID, "https://example.com/2", "Two")
	ts.createTestBookmarkAPI(t, token, subY.ID, "https://example.com/3", "Three")

	// Unrelated data that must survive.
	other := ts.createTestCategory(t, token, "Work")
	keep := ts.createTestBookmarkAPI(t, token, other.ID, "https://example.com/keep", "Keep")

	resp := ts.api.Delete("/api/v1/categories/"+root.ID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	var cascade CascadeResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &cascade))
	assert.Equal(t, root.ID, cascade.CategoryID)
	assert.Equal(t, 2, cascade.DeletedSubcategories)
	assert.Equal(t, 3, cascade.DeletedBookmarks)

	// The subtree is gone.
	resp = ts.api.Get("/api/v1/categories/"+root.ID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	resp = ts.api.Get("/api/v1/categories/"+subX.ID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	// The unrelated bookmark survives.
	resp = ts.api.Get("/api/v1/bookmarks", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	var list ListBookmarksResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Len(t, list.Bookmarks, 1)
	assert.Equal(t, keep.ID, list.Bookmarks[0].Bookmark.ID)
}

func TestListCategoryBookmarks(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.registerTestUser(t, "alice", "alice@example.com")

	cat := ts.createTestCategory(t, token, "Reading")
	otherCat := ts.createTestCategory(t, token, "Work")

	ts.createTestBookmarkAPI(t, token, cat.ID, "https://example.com/1", "One")
	ts.createTestBookmarkAPI(t, token, otherCat.ID, "https://example.com/2", "Two")

	resp := ts.api.Get("/api/v1/categories/"+cat.ID+"/bookmarks", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	var body ListBookmarksResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Bookmarks, 1)
	assert.Equal(t, "One", body.Bookmarks[0].Bookmark.Name)
	require.NotNil(t, body.Bookmarks[0].Category)
	assert.Equal(t, cat.ID, body.Bookmarks[0].Category.ID)
}
