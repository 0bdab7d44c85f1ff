package service

import (
	"context"
	"testing"

	domainerrors "github.com/linkvaultapp/linkvault-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_UpdateUser_Partial(t *testing.T) {
	authSvc, cleanup := newTestAuthService(t)
	defer cleanup()

	ctx := context.Background()
	user, _, err := authSvc.Register(ctx, "alice", "alice@example.com", "correct horse battery")
	require.NoError(t, err)

	svc := NewUserService(authSvc.store, testLogger())

	newName := "alice2"
	updated, err := svc.UpdateUser(ctx, user.ID, UpdateUserInput{Username: &newName})
	require.NoError(t, err)

	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, "alice@example.com", updated.Email)
}

func TestUserService_UpdateUser_DuplicateEmail(t *testing.T) {
	authSvc, cleanup := newTestAuthService(t)
	defer cleanup()

	ctx := context.Background()
	_, _, err := authSvc.Register(ctx, "alice", "alice@example.com", "correct horse battery")
	require.NoError(t, err)
	bob, _, err := authSvc.Register(ctx, "bob", "bob@example.com", "correct horse battery")
	require.NoError(t, err)

	svc := NewUserService(authSvc.store, testLogger())

	taken := "alice@example.com"
	_, err = svc.UpdateUser(ctx, bob.ID, UpdateUserInput{Email: &taken})
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
}

func TestUserService_UpdateUser_PasswordChangeRevokesSessions(t *testing.T) {
	authSvc, cleanup := newTestAuthService(t)
	defer cleanup()

	ctx := context.Background()
	user, pair, err := authSvc.Register(ctx, "alice", "alice@example.com", "correct horse battery")
	require.NoError(t, err)

	svc := NewUserService(authSvc.store, testLogger())

	newPassword := "even better password"
	_, err = svc.UpdateUser(ctx, user.ID, UpdateUserInput{Password: &newPassword})
	require.NoError(t, err)

	// Open sessions are revoked, so the old refresh token is dead.
	_, err = authSvc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	// The new password works for a fresh login.
	_, _, err = authSvc.Login(ctx, "alice@example.com", newPassword)
	assert.NoError(t, err)
}

func TestUserService_ListSessions_FiltersTokenHash(t *testing.T) {
	authSvc, cleanup := newTestAuthService(t)
	defer cleanup()

	ctx := context.Background()
	user, _, err := authSvc.Register(ctx, "alice", "alice@example.com", "correct horse battery")
	require.NoError(t, err)

	svc := NewUserService(authSvc.store, testLogger())

	sessions, err := svc.ListSessions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Empty(t, sessions[0].RefreshTokenHash)
}

func TestUserService_RevokeSession_Foreign(t *testing.T) {
	authSvc, cleanup := newTestAuthService(t)
	defer cleanup()

	ctx := context.Background()
	alice, _, err := authSvc.Register(ctx, "alice", "alice@example.com", "correct horse battery")
	require.NoError(t, err)
	bob, _, err := authSvc.Register(ctx, "bob", "bob@example.com", "correct horse battery")
	require.NoError(t, err)

	svc := NewUserService(authSvc.store, testLogger())

	bobSessions, err := svc.ListSessions(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobSessions, 1)

	err = svc.RevokeSession(ctx, alice.ID, bobSessions[0].ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}
