package domain

import "time"

// User represents a registered account. Categories and bookmarks
// reference their owner through their own user_id field; the user
// document deliberately carries no list of owned resource IDs, so
// ownership has a single source of truth.
type User struct {
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	LastLoginAt  time.Time `json:"last_login_at,omitzero"`
}
