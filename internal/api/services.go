package api

import (
	"github.com/linkvaultapp/linkvault-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth     *service.AuthService
	User     *service.UserService
	Category *service.CategoryService
	Bookmark *service.BookmarkService
	Search   *service.SearchService
}
