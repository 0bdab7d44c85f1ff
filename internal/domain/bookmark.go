package domain

import "time"

// Bookmark is a saved link filed under exactly one category. The
// category may be a root or a subcategory; either way it must belong
// to the same user as the bookmark.
type Bookmark struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	CategoryID  string    `json:"category_id"`
	URL         string    `json:"url"`
	Name        string    `json:"name"`
	Icon        string    `json:"icon,omitempty"`
	Description string    `json:"description,omitempty"`
}

// BookmarkWithCategory pairs a bookmark with its resolved category
// document. Category is nil when the reference no longer resolves
// (an orphan left behind by a failed cascade).
type BookmarkWithCategory struct {
	Bookmark *Bookmark `json:"bookmark"`
	Category *Category `json:"category,omitempty"`
}
