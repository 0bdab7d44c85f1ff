package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/linkvaultapp/linkvault-server/internal/domain"
	"github.com/linkvaultapp/linkvault-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCurrentUser",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me",
		Summary:     "Update current user",
		Description: "Applies a partial update to the authenticated user's profile. Changing the password revokes all sessions.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "listSessions",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me/sessions",
		Summary:     "List sessions",
		Description: "Returns the authenticated user's active sessions",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListSessions)

	huma.Register(s.api, huma.Operation{
		OperationID: "revokeSession",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/me/sessions/{id}",
		Summary:     "Revoke session",
		Description: "Revokes one of the authenticated user's sessions",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRevokeSession)
}

// === DTOs ===

// GetCurrentUserInput contains parameters for getting the current user.
type GetCurrentUserInput struct {
	Authorization string `header:"Authorization"`
}

// UserOutput wraps the user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// UpdateUserRequest is the request body for a partial profile update.
// Omitted fields keep their current value.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=50" doc:"New username"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=254" doc:"New email address"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=1024" doc:"New password"`
}

// UpdateUserInput wraps the update user request for Huma.
type UpdateUserInput struct {
	Authorization string `header:"Authorization"`
	Body          UpdateUserRequest
}

// SessionResponse contains session data in API responses.
type SessionResponse struct {
	ID         string    `json:"id" doc:"Session ID"`
	CreatedAt  time.Time `json:"created_at" doc:"When the session was opened"`
	LastSeenAt time.Time `json:"last_seen_at" doc:"Last refresh time"`
	ExpiresAt  time.Time `json:"expires_at" doc:"When the session expires"`
}

// ListSessionsResponse contains a list of sessions.
type ListSessionsResponse struct {
	Sessions []SessionResponse `json:"sessions" doc:"Active sessions"`
}

// ListSessionsOutput wraps the list sessions response for Huma.
type ListSessionsOutput struct {
	Body ListSessionsResponse
}

// RevokeSessionInput contains parameters for revoking a session.
type RevokeSessionInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Session ID"`
}

// === Handlers ===

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *GetCurrentUserInput) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.User.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleUpdateCurrentUser(ctx context.Context, input *UpdateUserInput) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	user, err := s.services.User.UpdateUser(ctx, userID, service.UpdateUserInput{
		Username: input.Body.Username,
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleListSessions(ctx context.Context, _ *GetCurrentUserInput) (*ListSessionsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	sessions, err := s.services.User.ListSessions(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := ListSessionsResponse{Sessions: make([]SessionResponse, 0, len(sessions))}
	for _, session := range sessions {
		resp.Sessions = append(resp.Sessions, mapSessionResponse(session))
	}

	return &ListSessionsOutput{Body: resp}, nil
}

func (s *Server) handleRevokeSession(ctx context.Context, input *RevokeSessionInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.User.RevokeSession(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Session revoked"}}, nil
}

// === Mappers ===

func mapSessionResponse(session *domain.Session) SessionResponse {
	return SessionResponse{
		ID:         session.ID,
		CreatedAt:  session.CreatedAt,
		LastSeenAt: session.LastSeenAt,
		ExpiresAt:  session.ExpiresAt,
	}
}
