package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/linkvaultapp/linkvault-server/internal/domain"
	domainerrors "github.com/linkvaultapp/linkvault-server/internal/errors"
	"github.com/linkvaultapp/linkvault-server/internal/id"
	"github.com/linkvaultapp/linkvault-server/internal/store"
)

// CategoryService orchestrates category tree operations with ownership
// enforcement and cascading deletion.
type CategoryService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(st *store.Store, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		store:  st,
		logger: logger,
	}
}

// CascadeResult reports what a cascading delete removed.
type CascadeResult struct {
	CategoryID           string `json:"category_id"`
	DeletedSubcategories int    `json:"deleted_subcategories"`
	DeletedBookmarks     int    `json:"deleted_bookmarks"`
}

// CreateCategory creates a new root category for the user.
func (s *CategoryService) CreateCategory(ctx context.Context, userID, name string) (*domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if name == "" {
		return nil, domainerrors.Validation("category name cannot be empty")
	}

	categoryID, err := id.Generate("cat")
	if err != nil {
		return nil, fmt.Errorf("generate category ID: %w", err)
	}

	now := time.Now()
	category := &domain.Category{
		ID:        categoryID,
		UserID:    userID,
		Name:      name,
		Level:     domain.LevelRoot,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "create category")
	}

	s.logger.Info("category created",
		"category_id", categoryID,
		"user_id", userID,
		"name", name,
	)

	return category, nil
}

// CreateSubcategory creates a new subcategory under a root category.
// The parent must exist, belong to the same user, and itself be a root;
// the tree never goes deeper than two levels.
func (s *CategoryService) CreateSubcategory(ctx context.Context, userID, parentID, name string) (*domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if name == "" {
		return nil, domainerrors.Validation("category name cannot be empty")
	}

	// Hold the user lock so the parent cannot be cascaded away between
	// the existence check and the write.
	unlock := treeLocks.Lock(userID)
	defer unlock()

	parent, err := s.store.GetCategory(ctx, parentID)
	if err != nil {
		if domainerrors.Is(err, store.ErrCategoryNotFound) {
			return nil, domainerrors.NotFound("parent category not found")
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "get parent category")
	}
	if parent.UserID != userID {
		return nil, domainerrors.Forbidden("parent category belongs to another user")
	}
	if !parent.IsRoot() {
		return nil, domainerrors.Validation("subcategories cannot be nested")
	}

	categoryID, err := id.Generate("cat")
	if err != nil {
		return nil, fmt.Errorf("generate category ID: %w", err)
	}

	now := time.Now()
	category := &domain.Category{
		ID:        categoryID,
		UserID:    userID,
		Name:      name,
		ParentID:  parentID,
		Level:     domain.LevelSub,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "create subcategory")
	}

	s.logger.Info("subcategory created",
		"category_id", categoryID,
		"parent_id", parentID,
		"user_id", userID,
		"name", name,
	)

	return category, nil
}

// GetCategory retrieves a category, resolving its parent for
// subcategories. Requires ownership.
func (s *CategoryService) GetCategory(ctx context.Context, userID, categoryID string) (*domain.CategoryWithParent, error) {
	category, err := s.getOwned(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	result := &domain.CategoryWithParent{Category: category}

	if category.ParentID != "" {
		parent, err := s.store.GetCategory(ctx, category.ParentID)
		if err != nil {
			if !domainerrors.Is(err, store.ErrCategoryNotFound) {
				return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "get parent category")
			}
			// Parent already removed by a concurrent cascade; surface
			// the category without it.
		} else {
			result.Parent = parent
		}
	}

	return result, nil
}

// ListCategories returns all of the user's categories, roots and
// subcategories alike, with each subcategory's parent resolved.
func (s *CategoryService) ListCategories(ctx context.Context, userID string) ([]*domain.CategoryWithParent, error) {
	all, err := s.store.ListCategoriesByOwner(ctx, userID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "list categories")
	}

	byID := make(map[string]*domain.Category, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}

	result := make([]*domain.CategoryWithParent, 0, len(all))
	for _, c := range all {
		entry := &domain.CategoryWithParent{Category: c}
		if c.ParentID != "" {
			entry.Parent = byID[c.ParentID]
		}
		result = append(result, entry)
	}
	return result, nil
}

// ListSubcategories returns the direct subcategories of a category.
// Requires ownership of the parent.
func (s *CategoryService) ListSubcategories(ctx context.Context, userID, parentID string) ([]*domain.Category, error) {
	if _, err := s.getOwned(ctx, userID, parentID); err != nil {
		return nil, err
	}

	subs, err := s.store.ListSubcategories(ctx, parentID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "list subcategories")
	}
	return subs, nil
}

// UpdateCategoryInput holds the optional fields for a partial category
// update. Nil pointers leave the current value untouched.
type UpdateCategoryInput struct {
	Name     *string
	ParentID *string
}

// UpdateCategory applies a partial update to a category. Moving one
// keeps the tree two levels deep: the target parent must be an owned
// root, a root that still has subcategories cannot be moved under one,
// and an empty parent id promotes a subcategory back to a root.
// Requires ownership.
func (s *CategoryService) UpdateCategory(ctx context.Context, userID, categoryID string, input UpdateCategoryInput) (*domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Hold the user lock so a move cannot race a cascade that removes
	// the target parent between the check and the write.
	unlock := treeLocks.Lock(userID)
	defer unlock()

	category, err := s.getOwned(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, domainerrors.Validation("category name cannot be empty")
		}
		category.Name = *input.Name
	}

	if input.ParentID != nil && *input.ParentID != category.ParentID {
		if *input.ParentID == "" {
			category.ParentID = ""
			category.Level = domain.LevelRoot
		} else {
			if *input.ParentID == categoryID {
				return nil, domainerrors.Validation("category cannot be its own parent")
			}
			parent, err := s.store.GetCategory(ctx, *input.ParentID)
			if err != nil {
				if domainerrors.Is(err, store.ErrCategoryNotFound) {
					return nil, domainerrors.NotFound("parent category not found")
				}
				return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "get parent category")
			}
			if parent.UserID != userID {
				return nil, domainerrors.Forbidden("parent category belongs to another user")
			}
			if !parent.IsRoot() {
				return nil, domainerrors.Validation("subcategories cannot be nested")
			}
			subs, err := s.store.ListSubcategories(ctx, categoryID)
			if err != nil {
				return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "list subcategories")
			}
			if len(subs) > 0 {
				return nil, domainerrors.Validation("category with subcategories cannot become a subcategory")
			}
			category.ParentID = *input.ParentID
			category.Level = domain.LevelSub
		}
	}

	category.UpdatedAt = time.Now()

	if err := s.store.UpdateCategory(ctx, category); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "update category")
	}

	return category, nil
}

// DeleteCategory deletes a category and everything beneath it: its own
// bookmarks, each subcategory's bookmarks, the subcategories, then the
// category itself, in that fixed order. Each step commits on its own;
// there is no rollback. If a step fails the error is surfaced and the
// remaining steps are skipped, leaving a partially deleted subtree that
// a retry will finish, since every step tolerates already-deleted rows.
func (s *CategoryService) DeleteCategory(ctx context.Context, userID, categoryID string) (*CascadeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	unlock := treeLocks.Lock(userID)
	defer unlock()

	category, err := s.getOwned(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	result := &CascadeResult{CategoryID: categoryID}

	// Step 1: bookmarks filed directly under the category.
	n, err := s.store.DeleteBookmarksByCategory(ctx, categoryID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "delete category bookmarks")
	}
	result.DeletedBookmarks += n

	// Step 2: collect subcategories.
	subs, err := s.store.ListSubcategories(ctx, categoryID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "list subcategories")
	}

	// Step 3: each subcategory's bookmarks.
	for _, sub := range subs {
		n, err := s.store.DeleteBookmarksByCategory(ctx, sub.ID)
		if err != nil {
			return nil, domainerrors.Wrapf(err, domainerrors.CodeStorage, "delete bookmarks of subcategory %s", sub.ID)
		}
		result.DeletedBookmarks += n
	}

	// Step 4: the subcategories themselves, in bulk.
	deletedSubs, err := s.store.DeleteSubcategories(ctx, categoryID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "delete subcategories")
	}
	result.DeletedSubcategories = deletedSubs

	// Step 5: finally the category document.
	if err := s.store.DeleteCategory(ctx, categoryID); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "delete category")
	}

	s.logger.Info("category cascade deleted",
		"category_id", categoryID,
		"user_id", userID,
		"level", category.Level,
		"deleted_subcategories", result.DeletedSubcategories,
		"deleted_bookmarks", result.DeletedBookmarks,
	)

	return result, nil
}

// getOwned loads a category and enforces ownership.
func (s *CategoryService) getOwned(ctx context.Context, userID, categoryID string) (*domain.Category, error) {
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
