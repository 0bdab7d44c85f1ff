package domain

import "time"

// Category levels. The tree is at most two levels deep.
const (
	// LevelRoot is a top-level category with no parent.
	LevelRoot = 0
	// LevelSub is a second-level category nested under a root.
	LevelSub = 1
)

// Category is a named grouping for bookmarks. Each category belongs to
// exactly one user. Roots (level 0) carry no parent; subcategories
// (level 1) reference a root owned by the same user. Subcategories
// cannot have children of their own.
type Category struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	ParentID  string    `json:"parent_id,omitempty"` // Set iff Level == LevelSub
	Level     int       `json:"level"`
}

// IsRoot reports whether this is a top-level category.
func (c *Category) IsRoot() bool {
	return c.Level == LevelRoot
}

// CategoryWithParent pairs a category with its resolved parent
// document. Parent is nil for roots and for subcategories whose parent
// has already been removed by a concurrent cascade.
type CategoryWithParent struct {
	Category *Category `json:"category"`
	Parent   *Category `json:"parent,omitempty"`
}
