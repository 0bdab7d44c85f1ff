package store

import (
	"context"
	"errors"

	"github.com/linkvaultapp/linkvault-server/internal/domain"
)

// User operations are thin wrappers over the generic Users entity that
// translate entity sentinels into user-specific ones.

// CreateUser stores a new user.
// Returns ErrDuplicateUser if the ID, username, or email is taken.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	if err := s.Users.Create(ctx, user.ID, user); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return ErrDuplicateUser.WithCause(err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Info("user created", "id", user.ID, "username", user.Username)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.Users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username (case-insensitive).
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.Users.GetByIndex(ctx, "username", username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email (case-insensitive).
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.Users.GetByIndex(ctx, "email", email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateUser updates an existing user.
// Returns ErrUserNotFound if the user does not exist and ErrDuplicateUser
// if the new username or email collides with another account.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	if err := s.Users.Update(ctx, user.ID, user); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUserNotFound
		}
		if errors.Is(err, ErrAlreadyExists) {
			return ErrDuplicateUser.WithCause(err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Info("user updated", "id", user.ID)
	}
	return nil
}
