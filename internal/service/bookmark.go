package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/linkvaultapp/linkvault-server/internal/domain"
	domainerrors "github.com/linkvaultapp/linkvault-server/internal/errors"
	"github.com/linkvaultapp/linkvault-server/internal/id"
	"github.com/linkvaultapp/linkvault-server/internal/store"
)

// BookmarkSearcher finds bookmark IDs matching a keyword for a user.
// Implemented by the search service; kept as an interface so bookmark
// tests don't need a Bleve index on disk.
type BookmarkSearcher interface {
	SearchBookmarkIDs(ctx context.Context, userID, keyword string, limit, offset int) ([]string, error)
}

// BookmarkService orchestrates bookmark operations with category
// reference checks and ownership enforcement.
type BookmarkService struct {
	store    *store.Store
	searcher BookmarkSearcher
	logger   *slog.Logger
}

// NewBookmarkService creates a new bookmark service.
func NewBookmarkService(st *store.Store, searcher BookmarkSearcher, logger *slog.Logger) *BookmarkService {
	return &BookmarkService{
		store:    st,
		searcher: searcher,
		logger:   logger,
	}
}

// CreateBookmarkInput holds the fields for creating a bookmark.
type CreateBookmarkInput struct {
	CategoryID  string
	URL         string
	Name        string
	Icon        string
	Description string
}

// UpdateBookmarkInput holds the optional fields for a partial update.
// Nil pointers leave the current value untouched.
type UpdateBookmarkInput struct {
	CategoryID  *string
	URL         *string
	Name        *string
	Icon        *string
	Description *string
}

// CreateBookmark creates a new bookmark. The target category must exist
// and belong to the same user before anything is written.
func (s *BookmarkService) CreateBookmark(ctx context.Context, userID string, input CreateBookmarkInput) (*domain.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if input.URL == "" {
		return nil, domainerrors.Validation("bookmark url cannot be empty")
	}
	if input.Name == "" {
		return nil, domainerrors.Validation("bookmark name cannot be empty")
	}

	// Hold the user lock so the category cannot be cascaded away between
	// the reference check and the write.
	unlock := treeLocks.Lock(userID)
	defer unlock()

	if err := s.checkCategoryRef(ctx, userID, input.CategoryID); err != nil {
		return nil, err
	}

	bookmarkID, err := id.Generate("bm")
	if err != nil {
		return nil, fmt.Errorf("generate bookmark ID: %w", err)
	}

	now := time.Now()
	bm := &domain.Bookmark{
		ID:          bookmarkID,
		UserID:      userID,
		CategoryID:  input.CategoryID,
		URL:         input.URL,
		Name:        input.Name,
		Icon:        input.Icon,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateBookmark(ctx, bm); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "create bookmark")
	}

	s.logger.Info("bookmark created",
		"bookmark_id", bookmarkID,
		"user_id", userID,
		"category_id", input.CategoryID,
	)

	return bm, nil
}

// GetBookmark retrieves a bookmark with its category resolved.
// Requires ownership.
func (s *BookmarkService) GetBookmark(ctx context.Context, userID, bookmarkID string) (*domain.BookmarkWithCategory, error) {
	bm, err := s.getOwned(ctx, userID, bookmarkID)
	if err != nil {
		return nil, err
	}

	result := &domain.BookmarkWithCategory{Bookmark: bm}

	category, err := s.store.GetCategory(ctx, bm.CategoryID)
	if err != nil {
		if !domainerrors.Is(err, store.ErrCategoryNotFound) {
			return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "get bookmark category")
		}
		// Orphaned reference; surface the bookmark without its category.
	} else {
		result.Category = category
	}

	return result, nil
}

// ListBookmarks returns all bookmarks owned by the user, each with its
// category resolved. Orphaned references surface without a category.
func (s *BookmarkService) ListBookmarks(ctx context.Context, userID string) ([]*domain.BookmarkWithCategory, error) {
	bookmarks, err := s.store.ListBookmarksByOwner(ctx, userID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "list bookmarks")
	}
	return s.resolveCategories(ctx, userID, bookmarks)
}

// ListBookmarksByCategory returns the bookmarks filed under a category.
// Requires ownership of the category.
func (s *BookmarkService) ListBookmarksByCategory(ctx context.Context, userID, categoryID string) ([]*domain.BookmarkWithCategory, error) {
	category, err := s.getCategoryRef(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	bookmarks, err := s.store.ListBookmarksByCategory(ctx, categoryID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "list bookmarks by category")
	}

	result := make([]*domain.BookmarkWithCategory, 0, len(bookmarks))
	for _, bm := range bookmarks {
		result = append(result, &domain.BookmarkWithCategory{Bookmark: bm, Category: category})
	}
	return result, nil
}

// UpdateBookmark applies a partial update to a bookmark. Refiling into
// another category re-checks that the target exists and is owned by the
// same user. Requires ownership.
func (s *BookmarkService) UpdateBookmark(ctx context.Context, userID, bookmarkID string, input UpdateBookmarkInput) (*domain.Bookmark, error) {
	bm, err := s.getOwned(ctx, userID, bookmarkID)
	if err != nil {
		return nil, err
	}

	if input.CategoryID != nil && *input.CategoryID != bm.CategoryID {
		// Refiling races the cascade the same way a create does; hold
		// the user lock across the check and the write.
		unlock := treeLocks.Lock(userID)
		defer unlock()

		if err := s.checkCategoryRef(ctx, userID, *input.CategoryID); err != nil {
			return nil, err
		}
		bm.CategoryID = *input.CategoryID
	}
	if input.URL != nil {
		if *input.URL == "" {
			return nil, domainerrors.Validation("bookmark url cannot be empty")
		}
		bm.URL = *input.URL
	}
	if input.Name != nil {
		if *input.Name == "" {
			return nil, domainerrors.Validation("bookmark name cannot be empty")
		}
		bm.Name = *input.Name
	}
	if input.Icon != nil {
		bm.Icon = *input.Icon
	}
	if input.Description != nil {
		bm.Description = *input.Description
	}
	bm.UpdatedAt = time.Now()

	if err := s.store.UpdateBookmark(ctx, bm); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "update bookmark")
	}

	return bm, nil
}

// DeleteBookmark deletes a single bookmark. Requires ownership.
func (s *BookmarkService) DeleteBookmark(ctx context.Context, userID, bookmarkID string) error {
	if _, err := s.getOwned(ctx, userID, bookmarkID); err != nil {
		return err
	}

	if err := s.store.DeleteBookmark(ctx, bookmarkID); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeStorage, "delete bookmark")
	}

	s.logger.Info("bookmark deleted", "bookmark_id", bookmarkID, "user_id", userID)
	return nil
}

// SearchBookmarks finds the user's bookmarks whose url, name, or
// description contains the keyword, case-insensitively. The keyword is
// validated before the index or store is touched.
func (s *BookmarkService) SearchBookmarks(ctx context.Context, userID, keyword string, limit, offset int) ([]*domain.Bookmark, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, domainerrors.Validation("search keyword cannot be empty")
	}

	ids, err := s.searcher.SearchBookmarkIDs(ctx, userID, keyword, limit, offset)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "search bookmarks")
	}

	// Resolve hits against the store; the index is not the source of
	// truth and may briefly reference deleted documents.
	bookmarks := make([]*domain.Bookmark, 0, len(ids))
	for _, bmID := range ids {
		bm, err := s.store.GetBookmark(ctx, bmID)
		if err != nil {
			if domainerrors.Is(err, store.ErrBookmarkNotFound) {
				continue
			}
			return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "resolve search hit")
		}
		if bm.UserID != userID {
			continue
		}
		bookmarks = append(bookmarks, bm)
	}

	return bookmarks, nil
}

// getOwned loads a bookmark and enforces ownership.
func (s *BookmarkService) getOwned(ctx context.Context, userID, bookmarkID string) (*domain.Bookmark, error) {
	bm, err := s.store.GetBookmark(ctx, bookmarkID)
	if err != nil {
		if domainerrors.Is(err, store.ErrBookmarkNotFound) {
			return nil, domainerrors.NotFound("bookmark not found")
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "get bookmark")
	}
	if bm.UserID != userID {
		return nil, domainerrors.Forbidden("bookmark belongs to another user")
	}
	return bm, nil
}

// resolveCategories joins bookmarks with the user's categories in one
// pass over the owner index.
func (s *BookmarkService) resolveCategories(ctx context.Context, userID string, bookmarks []*domain.Bookmark) ([]*domain.BookmarkWithCategory, error) {
	categories, err := s.store.ListCategoriesByOwner(ctx, userID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "list categories")
	}
	byID := make(map[string]*domain.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	result := make([]*domain.BookmarkWithCategory, 0, len(bookmarks))
	for _, bm := range bookmarks {
		result = append(result, &domain.BookmarkWithCategory{
			Bookmark: bm,
			Category: byID[bm.CategoryID],
		})
	}
	return result, nil
}

// getCategoryRef verifies that a category reference resolves and is
// owned by the user, returning the category.
func (s *BookmarkService) getCategoryRef(ctx context.Context, userID, categoryID string) (*domain.Category, error) {
	if categoryID == "" {
		return nil, domainerrors.Validation("category id cannot be empty")
	}

	category, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		if domainerrors.Is(err, store.ErrCategoryNotFound) {
			return nil, domainerrors.NotFound("category not found")
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "get category")
	}
	if category.UserID != userID {
		return nil, domainerrors.Forbidden("category belongs to another user")
	}
	return category, nil
}

// checkCategoryRef verifies a category reference without returning it.
func (s *BookmarkService) checkCategoryRef(ctx context.Context, userID, categoryID string) error {
	_, err := s.getCategoryRef(ctx, userID, categoryID)
	return err
}
