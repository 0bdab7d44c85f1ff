package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/linkvaultapp/linkvault-server/internal/auth"
	"github.com/linkvaultapp/linkvault-server/internal/domain"
	domainerrors "github.com/linkvaultapp/linkvault-server/internal/errors"
	"github.com/linkvaultapp/linkvault-server/internal/id"
	"github.com/linkvaultapp/linkvault-server/internal/store"
)

// AuthService handles registration, login, and session lifecycle.
type AuthService struct {
	store  *store.Store
	tokens *auth.TokenService
	logger *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(st *store.Store, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:  st,
		tokens: tokens,
		logger: logger,
	}
}

// TokenPair is an access token plus the refresh token that renews it.
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshToken          string    `json:"refresh_token"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
}

// Register creates a new user account and signs them in.
// Returns a Conflict error when the username or email is taken.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, *TokenPair, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, nil, domainerrors.Validation(err.Error())
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, nil, fmt.Errorf("generate user ID: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           userID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if domainerrors.Is(err, store.ErrDuplicateUser) {
			return nil, nil, domainerrors.Conflict("username or email already taken")
		}
		return nil, nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "create user")
	}

	pair, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user registered", "user_id", userID, "username", username)
	return user, pair, nil
}

// Login authenticates by email and password and opens a new session.
// Invalid email and wrong password produce the same error so the
// endpoint doesn't reveal which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if domainerrors.Is(err, store.ErrUserNotFound) {
			return nil, nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "get user")
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return nil, nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	user.LastLoginAt = time.Now()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		s.logger.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}

	pair, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return user, pair, nil
}

// Refresh rotates a refresh token and returns a fresh token pair.
// The old refresh token stops working immediately.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	session, err := s.store.GetSessionByTokenHash(ctx, auth.HashRefreshToken(refreshToken))
	if err != nil {
		if domainerrors.Is(err, store.ErrSessionNotFound) {
			return nil, domainerrors.Unauthorized("invalid refresh token")
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "get session")
	}

	if session.IsExpired() {
		if err := s.store.DeleteSession(ctx, session.ID); err != nil {
			s.logger.Warn("failed to delete expired session", "session_id", session.ID, "error", err)
		}
		return nil, domainerrors.TokenExpired("refresh token expired")
	}

	user, err := s.store.GetUser(ctx, session.UserID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "get session user")
	}

	accessToken, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	newRefreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	now := time.Now()
	session.RefreshTokenHash = auth.HashRefreshToken(newRefreshToken)
	session.ExpiresAt = now.Add(s.tokens.RefreshTokenDuration())
	session.Touch()

	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "rotate session")
	}

	return &TokenPair{
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  now.Add(s.tokens.AccessTokenDuration()),
		RefreshToken:          newRefreshToken,
		RefreshTokenExpiresAt: session.ExpiresAt,
	}, nil
}

// Logout revokes the session behind a refresh token.
// Unknown tokens are ignored; logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	session, err := s.store.GetSessionByTokenHash(ctx, auth.HashRefreshToken(refreshToken))
	if err != nil {
		if domainerrors.Is(err, store.ErrSessionNotFound) {
			return nil
		}
		return domainerrors.Wrap(err, domainerrors.CodeStorage, "get session")
	}

	if err := s.store.DeleteSession(ctx, session.ID); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeStorage, "delete session")
	}

	s.logger.Info("user logged out", "user_id", session.UserID, "session_id", session.ID)
	return nil
}

// VerifyAccessToken validates an access token and returns its claims.
func (s *AuthService) VerifyAccessToken(tokenString string) (*auth.AccessClaims, error) {
	claims, err := s.tokens.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired access token")
	}
	return claims, nil
}

// issueSession opens a session for the user and returns its token pair.
func (s *AuthService) issueSession(ctx context.Context, user *domain.User) (*TokenPair, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	now := time.Now()
	session := &domain.Session{
		ID:               "session-" + uuid.NewString(),
		UserID:           user.ID,
		RefreshTokenHash: auth.HashRefreshToken(refreshToken),
		ExpiresAt:        now.Add(s.tokens.RefreshTokenDuration()),
		CreatedAt:        now,
		LastSeenAt:       now,
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeStorage, "create session")
	}

	return &TokenPair{
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  now.Add(s.tokens.AccessTokenDuration()),
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: session.ExpiresAt,
	}, nil
}
