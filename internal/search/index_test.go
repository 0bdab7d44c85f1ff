package search

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestIndex(t *testing.T) (*SearchIndex, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "linkvault-search-test-*")
	require.NoError(t, err)

	idx, err := NewSearchIndex(Options{
		DataPath: tmpDir,
		Logger:   slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)

	cleanup := func() {
		idx.Close()
		os.RemoveAll(tmpDir)
	}

	return idx, cleanup
}

func indexTestDocs(t *testing.T, idx *SearchIndex) {
	t.Helper()

	docs := []*SearchDocument{
		{ID: "bm-001", UserID: "user-a", URL: "https://golang.org", Name: "The Go Programming Language"},
		{ID: "bm-002", UserID: "user-a", URL: "https://news.example.com", Name: "Daily News", Description: "Morning reading about Go"},
		{ID: "bm-003", UserID: "user-b", URL: "https://golang.org/doc", Name: "Go Docs"},
	}
	require.NoError(t, idx.IndexDocuments(docs))
}

func searchIDs(t *testing.T, idx *SearchIndex, userID, keyword string) []string {
	t.Helper()

	result, err := idx.Search(context.Background(), SearchParams{
		UserID:  userID,
		Keyword: keyword,
		Limit:   50,
	})
	require.NoError(t, err)

	ids := make([]string, 0, len(result.Hits))
	for _, hit := range result.Hits {
		ids = append(ids, hit.ID)
	}
	return ids
}

func TestSearch_SubstringAcrossFields(t *testing.T) {
	idx, cleanup := setupTestIndex(t)
	defer cleanup()

	indexTestDocs(t, idx)

	// "go" matches the URL of bm-001 and the description of bm-002.
	ids := searchIDs(t, idx, "user-a", "go")
	assert.ElementsMatch(t, []string{"bm-001", "bm-002"}, ids)

	// URL-only match.
	ids = searchIDs(t, idx, "user-a", "news.example")
	assert.Equal(t, []string{"bm-002"}, ids)
}

func TestSearch_CaseInsensitive(t *testing.T) {
	idx, cleanup := setupTestIndex(t)
	defer cleanup()

	indexTestDocs(t, idx)

	ids := searchIDs(t, idx, "user-a", "PROGRAMMING")
	assert.Equal(t, []string{"bm-001"}, ids)
}

func TestSearch_ScopedToUser(t *testing.T) {
	idx, cleanup := setupTestIndex(t)
	defer cleanup()

	indexTestDocs(t, idx)

	// user-b only sees their own document even though user-a has
	// matches for the same keyword.
	ids := searchIDs(t, idx, "user-b", "golang")
	assert.Equal(t, []string{"bm-003"}, ids)
}

func TestSearch_NoMatches(t *testing.T) {
	idx, cleanup := setupTestIndex(t)
	defer cleanup()

	indexTestDocs(t, idx)

	ids := searchIDs(t, idx, "user-a", "zzzzzz")
	assert.Empty(t, ids)
}

func TestSearch_DeletedDocumentGone(t *testing.T) {
	idx, cleanup := setupTestIndex(t)
	defer cleanup()

	indexTestDocs(t, idx)
	require.NoError(t, idx.DeleteDocument("bm-001"))

	ids := searchIDs(t, idx, "user-a", "golang")
	assert.Empty(t, ids)
}

func TestDocumentCount(t *testing.T) {
	idx, cleanup := setupTestIndex(t)
	defer cleanup()

	indexTestDocs(t, idx)

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestSubstringPattern(t *testing.T) {
	assert.Equal(t, `.*plain.*`, substringPattern(`plain`))
	assert.Equal(t, `.*go.*`, substringPattern(`GO`))
	assert.Equal(t, `.*2\*3.*`, substringPattern(`2*3`))
	assert.Equal(t, `.*a\?b.*`, substringPattern(`a?b`))
}

func TestSearch_WildcardLiteral(t *testing.T) {
	idx, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, idx.IndexDocument(&SearchDocument{
		ID: "bm-star", UserID: "user-a", URL: "https://example.com", Name: "what is 2*3",
	}))
	require.NoError(t, idx.IndexDocument(&SearchDocument{
		ID: "bm-plain", UserID: "user-a", URL: "https://example.com/2", Name: "what is 243",
	}))

	// A literal asterisk in the keyword matches only the document that
	// actually contains one.
	ids := searchIDs(t, idx, "user-a", "2*3")
	assert.Equal(t, []string{"bm-star"}, ids)
}
