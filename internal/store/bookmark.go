package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/linkvaultapp/linkvault-server/internal/domain"
)

// Key prefixes for bookmark storage.
const (
	bookmarkPrefix            = "bookmark:"
	bookmarksByOwnerPrefix    = "idx:bookmarks:owner:"    // idx:bookmarks:owner:{userID}:{bookmarkID}
	bookmarksByCategoryPrefix = "idx:bookmarks:category:" // idx:bookmarks:category:{categoryID}:{bookmarkID}
)

// CreateBookmark creates a new bookmark in the store.
// Writes the document plus owner and category indexes, then feeds the
// search index. Index failures are logged, not fatal; the document is
// the source of truth and the index can be rebuilt.
func (s *Store) CreateBookmark(ctx context.Context, bm *domain.Bookmark) error {
	key := []byte(bookmarkPrefix + bm.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check bookmark exists: %w", err)
	}
	if exists {
		return ErrDuplicateBookmark
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(bm)
		if err != nil {
			return fmt.Errorf("marshal bookmark: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		ownerIndexKey := fmt.Appendf(nil, "%s%s:%s", bookmarksByOwnerPrefix, bm.UserID, bm.ID)
		if err := txn.Set(ownerIndexKey, []byte{}); err != nil {
			return fmt.Errorf("set owner index: %w", err)
		}

		categoryIndexKey := fmt.Appendf(nil, "%s%s:%s", bookmarksByCategoryPrefix, bm.CategoryID, bm.ID)
		if err := txn.Set(categoryIndexKey, []byte{}); err != nil {
			return fmt.Errorf("set category index: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("create bookmark: %w", err)
	}

	s.indexBookmark(ctx, bm)

	if s.logger != nil {
		s.logger.Info("bookmark created",
			"id", bm.ID,
			"name", bm.Name,
			"user_id", bm.UserID,
			"category_id", bm.CategoryID,
		)
	}
	return nil
}

// GetBookmark retrieves a bookmark by ID.
func (s *Store) GetBookmark(_ context.Context, id string) (*domain.Bookmark, error) {
	key := []byte(bookmarkPrefix + id)

	var bm domain.Bookmark
	if err := s.get(key, &bm); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrBookmarkNotFound
		}
		return nil, fmt.Errorf("get bookmark: %w", err)
	}

	return &bm, nil
}

// UpdateBookmark updates an existing bookmark in the store.
// Maintains the category index if the bookmark was refiled.
func (s *Store) UpdateBookmark(ctx context.Context, bm *domain.Bookmark) error {
	key := []byte(bookmarkPrefix + bm.ID)

	oldBookmark, err := s.GetBookmark(ctx, bm.ID)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(bm)
		if err != nil {
			return fmt.Errorf("marshal bookmark: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set bookmark: %w", err)
		}

		if oldBookmark.CategoryID != bm.CategoryID {
			oldCategoryKey := fmt.Appendf(nil, "%s%s:%s", bookmarksByCategoryPrefix, oldBookmark.CategoryID, bm.ID)
			if err := txn.Delete(oldCategoryKey); err != nil {
				return fmt.Errorf("delete old category index: %w", err)
			}

			newCategoryKey := fmt.Appendf(nil, "%s%s:%s", bookmarksByCategoryPrefix, bm.CategoryID, bm.ID)
			if err := txn.Set(newCategoryKey, []byte{}); err != nil {
				return fmt.Errorf("set category index: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("update bookmark: %w", err)
	}

	s.indexBookmark(ctx, bm)

	if s.logger != nil {
		s.logger.Info("bookmark updated", "id", bm.ID, "name", bm.Name)
	}
	return nil
}

// DeleteBookmark deletes a bookmark and its indexes. Deleting an absent
// bookmark is a no-op so interrupted cascades can be retried.
func (s *Store) DeleteBookmark(ctx context.Context, id string) error {
	bm, err := s.GetBookmark(ctx, id)
	if err != nil {
		if errors.Is(err, ErrBookmarkNotFound) {
			return nil
		}
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(bookmarkPrefix + id)); err != nil {
			return fmt.Errorf("delete bookmark: %w", err)
		}

		ownerIndexKey := fmt.Appendf(nil, "%s%s:%s", bookmarksByOwnerPrefix, bm.UserID, id)
		if err := txn.Delete(ownerIndexKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete owner index: %w", err)
		}

		categoryIndexKey := fmt.Appendf(nil, "%s%s:%s", bookmarksByCategoryPrefix, bm.CategoryID, id)
		if err := txn.Delete(categoryIndexKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete category index: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}

	s.unindexBookmark(ctx, id)

	if s.logger != nil {
		s.logger.Info("bookmark deleted", "id", id)
	}
	return nil
}

// ListBookmarksByOwner returns all bookmarks owned by a user.
func (s *Store) ListBookmarksByOwner(ctx context.Context, userID string) ([]*domain.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := fmt.Appendf(nil, "%s%s:", bookmarksByOwnerPrefix, userID)
	return s.loadBookmarks(ctx, prefix)
}

// ListBookmarksByCategory returns all bookmarks filed under a category.
func (s *Store) ListBookmarksByCategory(ctx context.Context, categoryID string) ([]*domain.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := fmt.Appendf(nil, "%s%s:", bookmarksByCategoryPrefix, categoryID)
	return s.loadBookmarks(ctx, prefix)
}

// loadBookmarks scans an index prefix and loads the referenced documents.
func (s *Store) loadBookmarks(ctx context.Context, prefix []byte) ([]*domain.Bookmark, error) {
	ids, err := s.scanIndexIDs(prefix)
	if err != nil {
		return nil, fmt.Errorf("scan bookmark index: %w", err)
	}

	bookmarks := make([]*domain.Bookmark, 0, len(ids))
	for _, id := range ids {
		bm, err := s.GetBookmark(ctx, id)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("failed to get bookmark from index", "bookmark_id", id, "error", err)
			}
			continue
		}
		bookmarks = append(bookmarks, bm)
	}

	return bookmarks, nil
}

// DeleteBookmarksByCategory bulk-deletes all bookmarks filed under a
// category in a single transaction. Returns the number of bookmarks removed.
func (s *Store) DeleteBookmarksByCategory(ctx context.Context, categoryID string) (int, error) {
	bookmarks, err := s.ListBookmarksByCategory(ctx, categoryID)
	if err != nil {
		return 0, err
	}
	if len(bookmarks) == 0 {
		return 0, nil
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, bm := range bookmarks {
			if err := txn.Delete([]byte(bookmarkPrefix + bm.ID)); err != nil {
				return fmt.Errorf("delete bookmark %s: %w", bm.ID, err)
			}

			ownerIndexKey := fmt.Appendf(nil, "%s%s:%s", bookmarksByOwnerPrefix, bm.UserID, bm.ID)
			if err := txn.Delete(ownerIndexKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete owner index: %w", err)
			}

			categoryIndexKey := fmt.Appendf(nil, "%s%s:%s", bookmarksByCategoryPrefix, categoryID, bm.ID)
			if err := txn.Delete(categoryIndexKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete category index: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete bookmarks by category: %w", err)
	}

	for _, bm := range bookmarks {
		s.unindexBookmark(ctx, bm.ID)
	}

	if s.logger != nil {
		s.logger.Info("bookmarks deleted", "category_id", categoryID, "count", len(bookmarks))
	}
	return len(bookmarks), nil
}

// AllBookmarks returns every bookmark in the store. Used by the search
// index rebuild.
func (s *Store) AllBookmarks(ctx context.Context) ([]*domain.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var bookmarks []*domain.Bookmark
	prefix := []byte(bookmarkPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var bm domain.Bookmark
				if err := json.Unmarshal(val, &bm); err != nil {
					return err
				}
				bookmarks = append(bookmarks, &bm)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	return bookmarks, nil
}

// indexBookmark feeds a bookmark to the search index, logging failures.
func (s *Store) indexBookmark(ctx context.Context, bm *domain.Bookmark) {
	if s.searchIndexer == nil {
		return
	}
	if err := s.searchIndexer.IndexBookmark(ctx, bm); err != nil && s.logger != nil {
		s.logger.Warn("failed to index bookmark", "bookmark_id", bm.ID, "error", err)
	}
}

// unindexBookmark removes a bookmark from the search index, logging failures.
func (s *Store) unindexBookmark(ctx context.Context, id string) {
	if s.searchIndexer == nil {
		return
	}
	if err := s.searchIndexer.DeleteBookmark(ctx, id); err != nil && s.logger != nil {
		s.logger.Warn("failed to remove bookmark from index", "bookmark_id", id, "error", err)
	}
}
