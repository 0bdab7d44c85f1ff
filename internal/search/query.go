package search

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a bookmark search.
type SearchParams struct {
	UserID  string // Owner scope, required
	Keyword string // Substring to match, required

	// Pagination
	Limit  int
	Offset int
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:  50,
		Offset: 0,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Keyword string      `json:"keyword"`
	Total   uint64      `json:"total"`
	TookMs  int64       `json:"took_ms"`
	Hits    []SearchHit `json:"hits"`
}

// SearchHit identifies a matching bookmark. The caller resolves the ID
// against the store; the index is not the source of truth.
type SearchHit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Search executes a substring search over the user's bookmarks.
// The keyword matches case-insensitively against url, name, and
// description.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = DefaultSearchParams().Limit
	}

	searchQuery := buildSearchQuery(params)
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Keyword: params.Keyword,
		Total:   searchResult.Total,
		TookMs:  searchResult.Took.Milliseconds(),
		Hits:    make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		result.Hits = append(result.Hits, SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		})
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
//
// Fields are indexed as single lowercase terms, and a regexp query must
// match the whole term, so .*keyword.* behaves as a case-insensitive
// substring match. A regexp query is used instead of a wildcard query
// because wildcard syntax has no escape for literal * or ? in the
// keyword; QuoteMeta handles those.
// The owner term query is conjoined so results never cross users.
func buildSearchQuery(params SearchParams) query.Query {
	pattern := substringPattern(params.Keyword)

	textQueries := make([]query.Query, 0, 3)
	for _, field := range []string{"url", "name", "description"} {
		rq := bleve.NewRegexpQuery(pattern)
		rq.SetField(field)
		textQueries = append(textQueries, rq)
	}

	ownerQuery := bleve.NewTermQuery(params.UserID)
	ownerQuery.SetField("user_id")

	return bleve.NewConjunctionQuery(
		ownerQuery,
		bleve.NewDisjunctionQuery(textQueries...),
	)
}

// substringPattern builds the term regexp for a keyword. Lowercased to
// match the analyzer, quoted so the keyword cannot inject syntax.
func substringPattern(keyword string) string {
	return ".*" + regexp.QuoteMeta(strings.ToLower(keyword)) + ".*"
}
