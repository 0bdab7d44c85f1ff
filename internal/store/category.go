package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/linkvaultapp/linkvault-server/internal/domain"
)

// Key prefixes for category storage.
const (
	categoryPrefix           = "category:"
	categoriesByOwnerPrefix  = "idx:categories:owner:"  // idx:categories:owner:{userID}:{categoryID}
	categoriesByParentPrefix = "idx:categories:parent:" // idx:categories:parent:{parentID}:{categoryID}
)

// CreateCategory creates a new category in the store.
// Writes the document, the owner index, and the parent index for subcategories.
func (s *Store) CreateCategory(_ context.Context, category *domain.Category) error {
	key := []byte(categoryPrefix + category.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check category exists: %w", err)
	}
	if exists {
		return ErrDuplicateCategory
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(category)
		if err != nil {
			return fmt.Errorf("marshal category: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		ownerIndexKey := fmt.Appendf(nil, "%s%s:%s", categoriesByOwnerPrefix, category.UserID, category.ID)
		if err := txn.Set(ownerIndexKey, []byte{}); err != nil {
			return fmt.Errorf("set owner index: %w", err)
		}

		if category.ParentID != "" {
			parentIndexKey := fmt.Appendf(nil, "%s%s:%s", categoriesByParentPrefix, category.ParentID, category.ID)
			if err := txn.Set(parentIndexKey, []byte{}); err != nil {
				return fmt.Errorf("set parent index: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("category created",
			"id", category.ID,
			"name", category.Name,
			"user_id", category.UserID,
			"level", category.Level,
		)
	}
	return nil
}

// GetCategory retrieves a category by ID.
func (s *Store) GetCategory(_ context.Context, id string) (*domain.Category, error) {
	key := []byte(categoryPrefix + id)

	var category domain.Category
	if err := s.get(key, &category); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	return &category, nil
}

// UpdateCategory updates an existing category in the store.
// Maintains the parent index if the category moved under a different root.
func (s *Store) UpdateCategory(ctx context.Context, category *domain.Category) error {
	key := []byte(categoryPrefix + category.ID)

	oldCategory, err := s.GetCategory(ctx, category.ID)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(category)
		if err != nil {
			return fmt.Errorf("marshal category: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set category: %w", err)
		}

		if oldCategory.ParentID != category.ParentID {
			if oldCategory.ParentID != "" {
				oldParentKey := fmt.Appendf(nil, "%s%s:%s", categoriesByParentPrefix, oldCategory.ParentID, category.ID)
				if err := txn.Delete(oldParentKey); err != nil {
					return fmt.Errorf("delete old parent index: %w", err)
				}
			}
			if category.ParentID != "" {
				newParentKey := fmt.Appendf(nil, "%s%s:%s", categoriesByParentPrefix, category.ParentID, category.ID)
				if err := txn.Set(newParentKey, []byte{}); err != nil {
					return fmt.Errorf("set parent index: %w", err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("category updated", "id", category.ID, "name", category.Name)
	}
	return nil
}

// DeleteCategory deletes a category and its indexes. Deleting an absent
// category is a no-op so interrupted cascades can be retried.
// Bookmarks filed under it and subcategories are NOT touched here;
// cascading is the service layer's job.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return nil
		}
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(categoryPrefix + id)); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}

		ownerIndexKey := fmt.Appendf(nil, "%s%s:%s", categoriesByOwnerPrefix, category.UserID, id)
		if err := txn.Delete(ownerIndexKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete owner index: %w", err)
		}

		if category.ParentID != "" {
			parentIndexKey := fmt.Appendf(nil, "%s%s:%s", categoriesByParentPrefix, category.ParentID, id)
			if err := txn.Delete(parentIndexKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete parent index: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("category deleted", "id", id)
	}
	return nil
}

// ListCategoriesByOwner returns all categories owned by a user, roots
// and subcategories alike.
func (s *Store) ListCategoriesByOwner(ctx context.Context, userID string) ([]*domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := fmt.Appendf(nil, "%s%s:", categoriesByOwnerPrefix, userID)
	ids, err := s.scanIndexIDs(prefix)
	if err != nil {
		return nil, fmt.Errorf("scan owner index: %w", err)
	}

	categories := make([]*domain.Category, 0, len(ids))
	for _, id := range ids {
		category, err := s.GetCategory(ctx, id)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("failed to get category from index", "category_id", id, "error", err)
			}
			continue
		}
		categories = append(categories, category)
	}

	return categories, nil
}

// ListSubcategories returns all direct subcategories of a category.
func (s *Store) ListSubcategories(ctx context.Context, parentID string) ([]*domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := fmt.Appendf(nil, "%s%s:", categoriesByParentPrefix, parentID)
	ids, err := s.scanIndexIDs(prefix)
	if err != nil {
		return nil, fmt.Errorf("scan parent index: %w", err)
	}

	subcategories := make([]*domain.Category, 0, len(ids))
	for _, id := range ids {
		category, err := s.GetCategory(ctx, id)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("failed to get subcategory from index", "category_id", id, "error", err)
			}
			continue
		}
		subcategories = append(subcategories, category)
	}

	return subcategories, nil
}

// DeleteSubcategories bulk-deletes all direct subcategories of a
// category in a single transaction, removing their documents and
// indexes. Returns the number of subcategories removed.
func (s *Store) DeleteSubcategories(ctx context.Context, parentID string) (int, error) {
	subcategories, err := s.ListSubcategories(ctx, parentID)
	if err != nil {
		return 0, err
	}
	if len(subcategories) == 0 {
		return 0, nil
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, sub := range subcategories {
			if err := txn.Delete([]byte(categoryPrefix + sub.ID)); err != nil {
				return fmt.Errorf("delete subcategory %s: %w", sub.ID, err)
			}

			ownerIndexKey := fmt.Appendf(nil, "%s%s:%s", categoriesByOwnerPrefix, sub.UserID, sub.ID)
			if err := txn.Delete(ownerIndexKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete owner index: %w", err)
			}

			parentIndexKey := fmt.Appendf(nil, "%s%s:%s", categoriesByParentPrefix, parentID, sub.ID)
			if err := txn.Delete(parentIndexKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete parent index: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete subcategories: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("subcategories deleted", "parent_id", parentID, "count", len(subcategories))
	}
	return len(subcategories), nil
}
