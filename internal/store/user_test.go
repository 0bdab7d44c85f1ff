package store

import (
	"context"
	"testing"
	"time"

	"github.com/linkvaultapp/linkvault-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(id, username, email string) *domain.User {
	return &domain.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestCreateUser(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	user := newTestUser("user-001", "alice", "alice@example.com")
	require.NoError(t, store.CreateUser(ctx, user))

	retrieved, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", retrieved.Username)
	assert.Equal(t, "alice@example.com", retrieved.Email)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, newTestUser("user-001", "alice", "alice@example.com")))

	err := store.CreateUser(ctx, newTestUser("user-002", "alice", "other@example.com"))
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestCreateUser_DuplicateEmailCaseInsensitive(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, newTestUser("user-001", "alice", "alice@example.com")))

	err := store.CreateUser(ctx, newTestUser("user-002", "bob", "Alice@Example.COM"))
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestGetUserByUsername(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, newTestUser("user-001", "Alice", "alice@example.com")))

	// Lookup is case-insensitive.
	user, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "user-001", user.ID)
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	_, err := store.GetUserByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateUser_RotatesIndexes(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	user := newTestUser("user-001", "alice", "alice@example.com")
	require.NoError(t, store.CreateUser(ctx, user))

	user.Email = "new@example.com"
	require.NoError(t, store.UpdateUser(ctx, user))

	// Old email no longer resolves, new one does.
	_, err := store.GetUserByEmail(ctx, "alice@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	found, err := store.GetUserByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-001", found.ID)
}
