package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/linkvaultapp/linkvault-server/internal/domain"
	"github.com/linkvaultapp/linkvault-server/internal/service"
)

func (s *Server) registerCategoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Description: "Returns all categories owned by the current user, with each subcategory's parent resolved",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createCategory",
		Method:        http.MethodPost,
		Path:          "/api/v1/categories",
		Summary:       "Create category",
		Description:   "Creates a new root category for organizing bookmarks",
		Tags:          []string{"Categories"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCategory",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/{id}",
		Summary:     "Get category",
		Description: "Returns a category by ID, with its parent resolved for subcategories",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCategory",
		Method:      http.MethodPatch,
		Path:        "/api/v1/categories/{id}",
		Summary:     "Update category",
		Description: "Renames or moves a category (owner only). Moving keeps the tree at most two levels deep.",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCategory",
		Method:      http.MethodDelete,
		Path:        "/api/v1/categories/{id}",
		Summary:     "Delete category",
		Description: "Deletes a category together with its subcategories and every bookmark filed under them. Returns what the cascade removed.",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "listSubcategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/{id}/subcategories",
		Summary:     "List subcategories",
		Description: "Returns the direct subcategories of a category",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListSubcategories)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createSubcategory",
		Method:        http.MethodPost,
		Path:          "/api/v1/categories/{id}/subcategories",
		Summary:       "Create subcategory",
		Description:   "Creates a subcategory under a root category. The tree is at most two levels deep.",
		Tags:          []string{"Categories"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateSubcategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCategoryBookmarks",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/{id}/bookmarks",
		Summary:     "List category bookmarks",
		Description: "Returns the bookmarks filed directly under a category",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListCategoryBookmarks)
}

// === DTOs ===

// CategoryResponse contains category data in API responses.
type CategoryResponse struct {
	ID        string    `json:"id" doc:"Category ID"`
	Name      string    `json:"name" doc:"Category name"`
	ParentID  string    `json:"parent_id,omitempty" doc:"Parent category ID, set for subcategories"`
	Level     int       `json:"level" doc:"Tree level: 0 for roots, 1 for subcategories"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// CategoryDetailResponse contains a category with its resolved parent.
type CategoryDetailResponse struct {
	Category CategoryResponse  `json:"category" doc:"The category"`
	Parent   *CategoryResponse `json:"parent,omitempty" doc:"Parent category, absent for roots"`
}

// ListCategoriesResponse contains the user's categories, each with its
// parent resolved when present.
type ListCategoriesResponse struct {
	Categories []CategoryDetailResponse `json:"categories" doc:"List of categories with resolved parents"`
}

// ListSubcategoriesResponse contains the direct subcategories of a
// category.
type ListSubcategoriesResponse struct {
	Categories []CategoryResponse `json:"categories" doc:"List of subcategories"`
}

// ListCategoriesInput contains parameters for listing categories.
type ListCategoriesInput struct {
	Authorization string `header:"Authorization"`
}

// ListCategoriesOutput wraps the list categories response for Huma.
type ListCategoriesOutput struct {
	Body ListCategoriesResponse
}

// ListSubcategoriesOutput wraps the subcategory list for Huma.
type ListSubcategoriesOutput struct {
	Body ListSubcategoriesResponse
}

// CreateCategoryRequest is the request body for creating a category.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100" doc:"Category name"`
}

// CreateCategoryInput wraps the create category request for Huma.
type CreateCategoryInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateCategoryRequest
}

// CategoryOutput wraps the category response for Huma.
type CategoryOutput struct {
	Body CategoryResponse
}

// GetCategoryInput contains parameters for getting a category.
type GetCategoryInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Category ID"`
}

// CategoryDetailOutput wraps the category detail response for Huma.
type CategoryDetailOutput struct {
	Body CategoryDetailResponse
}

// UpdateCategoryRequest is the request body for a partial category
// update. Omitted fields keep their current value; an empty parent_id
// promotes a subcategory back to a root.
type UpdateCategoryRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=100" doc:"New category name"`
	ParentID *string `json:"parent_id,omitempty" doc:"New parent category, must be an owned root"`
}

// UpdateCategoryInput wraps the update category request for Huma.
type UpdateCategoryInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Category ID"`
	Body          UpdateCategoryRequest
}

// CascadeResponse reports what a cascading delete removed.
type CascadeResponse struct {
	CategoryID           string `json:"category_id" doc:"Deleted category ID"`
	DeletedSubcategories int    `json:"deleted_subcategories" doc:"Number of subcategories removed"`
	DeletedBookmarks     int    `json:"deleted_bookmarks" doc:"Number of bookmarks removed"`
}

// CascadeOutput wraps the cascade response for Huma.
type CascadeOutput struct {
	Body CascadeResponse
}

// CreateSubcategoryInput wraps the create subcategory request for Huma.
type CreateSubcategoryInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Parent category ID"`
	Body          CreateCategoryRequest
}

// === Handlers ===

func (s *Server) handleListCategories(ctx context.Context, _ *ListCategoriesInput) (*ListCategoriesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	categories, err := s.services.Category.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ListCategoriesOutput{Body: mapCategoryList(categories)}, nil
}

func (s *Server) handleCreateCategory(ctx context.Context, input *CreateCategoryInput) (*CategoryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	category, err := s.services.Category.CreateCategory(ctx, userID, input.Body.Name)
	if err != nil {
		return nil, err
	}

	return &CategoryOutput{Body: mapCategoryResponse(category)}, nil
}

func (s *Server) handleGetCategory(ctx context.Context, input *GetCategoryInput) (*CategoryDetailOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	detail, err := s.services.Category.GetCategory(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &CategoryDetailOutput{Body: mapCategoryDetail(detail)}, nil
}

func (s *Server) handleUpdateCategory(ctx context.Context, input *UpdateCategoryInput) (*CategoryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	category, err := s.services.Category.UpdateCategory(ctx, userID, input.ID, service.UpdateCategoryInput{
		Name:     input.Body.Name,
		ParentID: input.Body.ParentID,
	})
	if err != nil {
		return nil, err
	}

	return &CategoryOutput{Body: mapCategoryResponse(category)}, nil
}

func (s *Server) handleDeleteCategory(ctx context.Context, input *GetCategoryInput) (*CascadeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Category.DeleteCategory(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &CascadeOutput{Body: CascadeResponse{
		CategoryID:           result.CategoryID,
		DeletedSubcategories: result.DeletedSubcategories,
		DeletedBookmarks:     result.DeletedBookmarks,
	}}, nil
}

func (s *Server) handleListSubcategories(ctx context.Context, input *GetCategoryInput) (*ListSubcategoriesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	subs, err := s.services.Category.ListSubcategories(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	resp := ListSubcategoriesResponse{Categories: make([]CategoryResponse, 0, len(subs))}
	for _, sub := range subs {
		resp.Categories = append(resp.Categories, mapCategoryResponse(sub))
	}
	return &ListSubcategoriesOutput{Body: resp}, nil
}

func (s *Server) handleCreateSubcategory(ctx context.Context, input *CreateSubcategoryInput) (*CategoryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	category, err := s.services.Category.CreateSubcategory(ctx, userID, input.ID, input.Body.Name)
	if err != nil {
		return nil, err
	}

	return &CategoryOutput{Body: mapCategoryResponse(category)}, nil
}

func (s *Server) handleListCategoryBookmarks(ctx context.Context, input *GetCategoryInput) (*ListBookmarksOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	bookmarks, err := s.services.Bookmark.ListBookmarksByCategory(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &ListBookmarksOutput{Body: mapBookmarkList(bookmarks)}, nil
}

// === Mappers ===

func mapCategoryResponse(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		ParentID:  category.ParentID,
		Level:     category.Level,
		CreatedAt: category.CreatedAt,
		UpdatedAt: category.UpdatedAt,
	}
}

func mapCategoryDetail(detail *domain.CategoryWithParent) CategoryDetailResponse {
	resp := CategoryDetailResponse{Category: mapCategoryResponse(detail.Category)}
	if detail.Parent != nil {
		parent := mapCategoryResponse(detail.Parent)
		resp.Parent = &parent
	}
	return resp
}

func mapCategoryList(categories []*domain.CategoryWithParent) ListCategoriesResponse {
	resp := ListCategoriesResponse{Categories: make([]CategoryDetailResponse, 0, len(categories))}
	for _, category := range categories {
		resp.Categories = append(resp.Categories, mapCategoryDetail(category))
	}
	return resp
}
