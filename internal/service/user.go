package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/linkvaultapp/linkvault-server/internal/auth"
	"github.com/linkvaultapp/linkvault-server/internal/domain"
	domainerrors "github.com/linkvaultapp/linkvault-server/internal/errors"
	"github.com/linkvaultapp/linkvault-server/internal/store"
)

// UserService handles account profile operations.
type UserService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(st *store.Store, logger *slog.Logger) *UserService {
	return &UserService{
		store:  st,
		logger: logger,
	}
}

// UpdateUserInput holds the optional fields for a partial profile
// update. Nil pointers leave the current value untouched.
type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
}

// GetUser retrieves a user's own profile.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if domainerrors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "get user")
	}
	return user, nil
}

// UpdateUser applies a partial update to the user's own profile.
// Changing the password revokes every open session so stolen refresh
// tokens stop working.
func (s *UserService) UpdateUser(ctx context.Context, userID string, input UpdateUserInput) (*domain.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	passwordChanged := false

	if input.Username != nil {
		if *input.Username == "" {
			return nil, domainerrors.Validation("username cannot be empty")
		}
		user.Username = *input.Username
	}
	if input.Email != nil {
		if *input.Email == "" {
			return nil, domainerrors.Validation("email cannot be empty")
		}
		user.Email = *input.Email
	}
	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, domainerrors.Validation(err.Error())
		}
		user.PasswordHash = hash
		passwordChanged = true
	}
	user.UpdatedAt = time.Now()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		if domainerrors.Is(err, store.ErrDuplicateUser) {
			return nil, domainerrors.Conflict("username or email already taken")
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "update user")
	}

	if passwordChanged {
		if err := s.store.DeleteSessionsForUser(ctx, userID); err != nil {
			s.logger.Warn("failed to revoke sessions after password change",
				"user_id", userID,
				"error", err,
			)
		}
	}

	s.logger.Info("user profile updated", "user_id", userID, "password_changed", passwordChanged)
	return user, nil
}

// ListSessions returns the user's active sessions.
func (s *UserService) ListSessions(ctx context.Context, userID string) ([]*domain.Session, error) {
	sessions, err := s.store.ListSessionsByUser(ctx, userID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "list sessions")
	}

	// Never hand token hashes to clients.
	for _, session := range sessions {
		session.RefreshTokenHash = ""
	}
	return sessions, nil
}

// RevokeSession deletes one of the user's own sessions.
func (s *UserService) RevokeSession(ctx context.Context, userID, sessionID string) error {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if domainerrors.Is(err, store.ErrSessionNotFound) {
			return domainerrors.NotFound("session not found")
		}
		return domainerrors.Wrap(err, domainerrors.CodeStorage, "get session")
	}
	if session.UserID != userID {
		return domainerrors.Forbidden("session belongs to another user")
	}

	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeStorage, "delete session")
	}
	return nil
}
