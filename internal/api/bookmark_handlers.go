package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/linkvaultapp/linkvault-server/internal/domain"
	"github.com/linkvaultapp/linkvault-server/internal/service"
)

func (s *Server) registerBookmarkRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBookmarks",
		Method:      http.MethodGet,
		Path:        "/api/v1/bookmarks",
		Summary:     "List bookmarks",
		Description: "Returns the current user's bookmarks with their categories resolved, optionally filtered by category",
		Tags:        []string{"Bookmarks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBookmarks)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBookmark",
		Method:        http.MethodPost,
		Path:          "/api/v1/bookmarks",
		Summary:       "Create bookmark",
		Description:   "Creates a new bookmark filed under an existing category",
		Tags:          []string{"Bookmarks"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBookmark)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchBookmarks",
		Method:      http.MethodGet,
		Path:        "/api/v1/bookmarks/search",
		Summary:     "Search bookmarks",
		Description: "Finds bookmarks whose URL, name, or description contains the keyword, case-insensitively",
		Tags:        []string{"Bookmarks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchBookmarks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookmark",
		Method:      http.MethodGet,
		Path:        "/api/v1/bookmarks/{id}",
		Summary:     "Get bookmark",
		Description: "Returns a bookmark by ID with its category resolved",
		Tags:        []string{"Bookmarks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBookmark)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBookmark",
		Method:      http.MethodPatch,
		Path:        "/api/v1/bookmarks/{id}",
		Summary:     "Update bookmark",
		Description: "Applies a partial update to a bookmark (owner only). Refiling re-checks the target category.",
		Tags:        []string{"Bookmarks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBookmark)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBookmark",
		Method:      http.MethodDelete,
		Path:        "/api/v1/bookmarks/{id}",
		Summary:     "Delete bookmark",
		Description: "Deletes a bookmark (owner only)",
		Tags:        []string{"Bookmarks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBookmark)
}

// === DTOs ===

// BookmarkResponse contains bookmark data in API responses.
type BookmarkResponse struct {
	ID          string    `json:"id" doc:"Bookmark ID"`
	CategoryID  string    `json:"category_id" doc:"Category the bookmark is filed under"`
	URL         string    `json:"url" doc:"Bookmarked URL"`
	Name        string    `json:"name" doc:"Bookmark name"`
	Icon        string    `json:"icon,omitempty" doc:"Icon URL or identifier"`
	Description string    `json:"description,omitempty" doc:"Free-form description"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update time"`
}

// BookmarkDetailResponse contains a bookmark with its resolved category.
type BookmarkDetailResponse struct {
	Bookmark BookmarkResponse  `json:"bookmark" doc:"The bookmark"`
	Category *CategoryResponse `json:"category,omitempty" doc:"Category, absent when the reference no longer resolves"`
}

// ListBookmarksResponse contains a list of bookmarks, each with its
// resolved category.
type ListBookmarksResponse struct {
	Bookmarks []BookmarkDetailResponse `json:"bookmarks" doc:"List of bookmarks with resolved categories"`
}

// ListBookmarksInput contains parameters for listing bookmarks.
type ListBookmarksInput struct {
	Authorization string `header:"Authorization"`
	CategoryID    string `query:"category_id" doc:"Restrict to bookmarks filed under this category"`
}

// ListBookmarksOutput wraps the list bookmarks response for Huma.
type ListBookmarksOutput struct {
	Body ListBookmarksResponse
}

// CreateBookmarkRequest is the request body for creating a bookmark.
type CreateBookmarkRequest struct {
	CategoryID  string `json:"category_id" validate:"required" doc:"Category to file the bookmark under"`
	URL         string `json:"url" validate:"required,url,max=2048" doc:"URL to bookmark"`
	Name        string `json:"name" validate:"required,min=1,max=200" doc:"Bookmark name"`
	Icon        string `json:"icon,omitempty" validate:"max=2048" doc:"Icon URL or identifier"`
	Description string `json:"description,omitempty" validate:"max=1000" doc:"Free-form description"`
}

// CreateBookmarkInput wraps the create bookmark request for Huma.
type CreateBookmarkInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateBookmarkRequest
}

// BookmarkOutput wraps the bookmark response for Huma.
type BookmarkOutput struct {
	Body BookmarkResponse
}

// GetBookmarkInput contains parameters for getting a bookmark.
type GetBookmarkInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Bookmark ID"`
}

// BookmarkDetailOutput wraps the bookmark detail response for Huma.
type BookmarkDetailOutput struct {
	Body BookmarkDetailResponse
}

// UpdateBookmarkRequest is the request body for a partial bookmark
// update. Omitted fields keep their current value.
type UpdateBookmarkRequest struct {
	CategoryID  *string `json:"category_id,omitempty" validate:"omitempty,min=1" doc:"New category to file the bookmark under"`
	URL         *string `json:"url,omitempty" validate:"omitempty,url,max=2048" doc:"New URL"`
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200" doc:"New name"`
	Icon        *string `json:"icon,omitempty" validate:"omitempty,max=2048" doc:"New icon"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000" doc:"New description"`
}

// UpdateBookmarkInput wraps the update bookmark request for Huma.
type UpdateBookmarkInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Bookmark ID"`
	Body          UpdateBookmarkRequest
}

// SearchBookmarksInput contains parameters for searching bookmarks.
type SearchBookmarksInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Keyword to match against URL, name, and description"`
	Limit         int    `query:"limit" doc:"Maximum number of results (default 50)"`
	Offset        int    `query:"offset" doc:"Number of results to skip"`
}

// SearchBookmarksResponse contains search results.
type SearchBookmarksResponse struct {
	Keyword   string             `json:"keyword" doc:"The searched keyword"`
	Bookmarks []BookmarkResponse `json:"bookmarks" doc:"Matching bookmarks, best match first"`
}

// SearchBookmarksOutput wraps the search response for Huma.
type SearchBookmarksOutput struct {
	Body SearchBookmarksResponse
}

// === Handlers ===

func (s *Server) handleListBookmarks(ctx context.Context, input *ListBookmarksInput) (*ListBookmarksOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	var bookmarks []*domain.BookmarkWithCategory
	if input.CategoryID != "" {
		bookmarks, err = s.services.Bookmark.ListBookmarksByCategory(ctx, userID, input.CategoryID)
	} else {
		bookmarks, err = s.services.Bookmark.ListBookmarks(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	return &ListBookmarksOutput{Body: mapBookmarkList(bookmarks)}, nil
}

func (s *Server) handleCreateBookmark(ctx context.Context, input *CreateBookmarkInput) (*BookmarkOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	bm, err := s.services.Bookmark.CreateBookmark(ctx, userID, service.CreateBookmarkInput{
		CategoryID:  input.Body.CategoryID,
		URL:         input.Body.URL,
		Name:        input.Body.Name,
		Icon:        input.Body.Icon,
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, err
	}

	return &BookmarkOutput{Body: mapBookmarkResponse(bm)}, nil
}

func (s *Server) handleSearchBookmarks(ctx context.Context, input *SearchBookmarksInput) (*SearchBookmarksOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	bookmarks, err := s.services.Bookmark.SearchBookmarks(ctx, userID, input.Query, input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}

	matches := make([]BookmarkResponse, 0, len(bookmarks))
	for _, bm := range bookmarks {
		matches = append(matches, mapBookmarkResponse(bm))
	}

	resp := SearchBookmarksResponse{
		Keyword:   input.Query,
		Bookmarks: matches,
	}
	return &SearchBookmarksOutput{Body: resp}, nil
}

func (s *Server) handleGetBookmark(ctx context.Context, input *GetBookmarkInput) (*BookmarkDetailOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	detail, err := s.services.Bookmark.GetBookmark(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookmarkDetailOutput{Body: mapBookmarkDetail(detail)}, nil
}

func (s *Server) handleUpdateBookmark(ctx context.Context, input *UpdateBookmarkInput) (*BookmarkOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	bm, err := s.services.Bookmark.UpdateBookmark(ctx, userID, input.ID, service.UpdateBookmarkInput{
		CategoryID:  input.Body.CategoryID,
		URL:         input.Body.URL,
		Name:        input.Body.Name,
		Icon:        input.Body.Icon,
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, err
	}

	return &BookmarkOutput{Body: mapBookmarkResponse(bm)}, nil
}

func (s *Server) handleDeleteBookmark(ctx context.Context, input *GetBookmarkInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Bookmark.DeleteBookmark(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Bookmark deleted"}}, nil
}

// === Mappers ===

func mapBookmarkResponse(bm *domain.Bookmark) BookmarkResponse {
	return BookmarkResponse{
		ID:          bm.ID,
		CategoryID:  bm.CategoryID,
		URL:         bm.URL,
		Name:        bm.Name,
		Icon:        bm.Icon,
		Description: bm.Description,
		CreatedAt:   bm.CreatedAt,
		UpdatedAt:   bm.UpdatedAt,
	}
}

func mapBookmarkDetail(detail *domain.BookmarkWithCategory) BookmarkDetailResponse {
	resp := BookmarkDetailResponse{Bookmark: mapBookmarkResponse(detail.Bookmark)}
	if detail.Category != nil {
		category := mapCategoryResponse(detail.Category)
		resp.Category = &category
	}
	return resp
}

func mapBookmarkList(bookmarks []*domain.BookmarkWithCategory) ListBookmarksResponse {
	resp := ListBookmarksResponse{Bookmarks: make([]BookmarkDetailResponse, 0, len(bookmarks))}
	for _, bm := range bookmarks {
		resp.Bookmarks = append(resp.Bookmarks, mapBookmarkDetail(bm))
	}
	return resp
}
