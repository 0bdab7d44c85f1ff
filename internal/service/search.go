package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linkvaultapp/linkvault-server/internal/domain"
	"github.com/linkvaultapp/linkvault-server/internal/search"
	"github.com/linkvaultapp/linkvault-server/internal/store"
)

// SearchService bridges the store and the Bleve index. It implements
// store.SearchIndexer so writes keep the index in sync, and
// BookmarkSearcher for query-side use.
type SearchService struct {
	index  *search.SearchIndex
	store  *store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, st *store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  st,
		logger: logger,
	}
}

// IndexBookmark adds or updates a bookmark in the search index.
func (s *SearchService) IndexBookmark(_ context.Context, bm *domain.Bookmark) error {
	return s.index.IndexDocument(search.BookmarkToSearchDocument(bm))
}

// DeleteBookmark removes a bookmark from the search index.
func (s *SearchService) DeleteBookmark(_ context.Context, bookmarkID string) error {
	return s.index.DeleteDocument(bookmarkID)
}

// SearchBookmarkIDs returns the IDs of the user's bookmarks matching
// the keyword, best score first.
func (s *SearchService) SearchBookmarkIDs(ctx context.Context, userID, keyword string, limit, offset int) ([]string, error) {
	params := search.DefaultSearchParams()
	params.UserID = userID
	params.Keyword = keyword
	if limit > 0 {
		params.Limit = limit
	}
	if offset > 0 {
		params.Offset = offset
	}

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(result.Hits))
	for _, hit := range result.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// DocumentCount returns the number of indexed documents.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// RebuildIndex drops the index and re-feeds it from the store.
// Run at startup when the mapping version changed, or on demand after
// suspected corruption.
func (s *SearchService) RebuildIndex(ctx context.Context) error {
	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	bookmarks, err := s.store.AllBookmarks(ctx)
	if err != nil {
		return fmt.Errorf("load bookmarks for reindex: %w", err)
	}

	docs := make([]*search.SearchDocument, 0, len(bookmarks))
	for _, bm := range bookmarks {
		docs = append(docs, search.BookmarkToSearchDocument(bm))
	}

	if err := s.index.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index bookmarks: %w", err)
	}

	s.logger.Info("search index rebuilt", "documents", len(docs))
	return nil
}

// SyncIndex feeds any bookmarks missing from the index without a full
// rebuild. Cheap enough to run at every startup.
func (s *SearchService) SyncIndex(ctx context.Context) error {
	count, err := s.index.DocumentCount()
	if err != nil {
		return fmt.Errorf("count indexed documents: %w", err)
	}

	bookmarks, err := s.store.AllBookmarks(ctx)
	if err != nil {
		return fmt.Errorf("load bookmarks: %w", err)
	}

	if count == uint64(len(bookmarks)) {
		return nil
	}

	s.logger.Info("search index out of sync, reindexing",
		"indexed", count,
		"stored", len(bookmarks),
	)

	docs := make([]*search.SearchDocument, 0, len(bookmarks))
	for _, bm := range bookmarks {
		docs = append(docs, search.BookmarkToSearchDocument(bm))
	}
	return s.index.IndexDocuments(docs)
}
