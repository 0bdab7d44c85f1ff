package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/linkvaultapp/linkvault-server/internal/domain"
)

// Key prefixes for session storage.
const (
	sessionPrefix         = "session:"
	sessionsByUserPrefix  = "idx:sessions:user:"  // idx:sessions:user:{userID}:{sessionID}
	sessionsByTokenPrefix = "idx:sessions:token:" // idx:sessions:token:{refreshTokenHash} -> sessionID
)

// CreateSession creates a new session in the store.
func (s *Store) CreateSession(_ context.Context, session *domain.Session) error {
	key := []byte(sessionPrefix + session.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check session exists: %w", err)
	}
	if exists {
		return ErrDuplicateSession
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		userIndexKey := fmt.Appendf(nil, "%s%s:%s", sessionsByUserPrefix, session.UserID, session.ID)
		if err := txn.Set(userIndexKey, []byte{}); err != nil {
			return fmt.Errorf("set user index: %w", err)
		}

		// Token index maps the refresh token hash directly to the session ID.
		tokenIndexKey := []byte(sessionsByTokenPrefix + session.RefreshTokenHash)
		if err := txn.Set(tokenIndexKey, []byte(session.ID)); err != nil {
			return fmt.Errorf("set token index: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("session created", "id", session.ID, "user_id", session.UserID)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(_ context.Context, id string) (*domain.Session, error) {
	key := []byte(sessionPrefix + id)

	var session domain.Session
	if err := s.get(key, &session); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	return &session, nil
}

// GetSessionByTokenHash retrieves a session by its refresh token hash.
func (s *Store) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	indexKey := []byte(sessionsByTokenPrefix + tokenHash)

	var sessionID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(indexKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			sessionID = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session by token: %w", err)
	}

	return s.GetSession(ctx, sessionID)
}

// UpdateSession updates an existing session in the store.
// Maintains the token index if the refresh token was rotated.
func (s *Store) UpdateSession(ctx context.Context, session *domain.Session) error {
	oldSession, err := s.GetSession(ctx, session.ID)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}

		if err := txn.Set([]byte(sessionPrefix+session.ID), data); err != nil {
			return fmt.Errorf("set session: %w", err)
		}

		if oldSession.RefreshTokenHash != session.RefreshTokenHash {
			oldTokenKey := []byte(sessionsByTokenPrefix + oldSession.RefreshTokenHash)
			if err := txn.Delete(oldTokenKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete old token index: %w", err)
			}

			newTokenKey := []byte(sessionsByTokenPrefix + session.RefreshTokenHash)
			if err := txn.Set(newTokenKey, []byte(session.ID)); err != nil {
				return fmt.Errorf("set token index: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	return nil
}

// DeleteSession deletes a session and its indexes.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(sessionPrefix + id)); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}

		userIndexKey := fmt.Appendf(nil, "%s%s:%s", sessionsByUserPrefix, session.UserID, id)
		if err := txn.Delete(userIndexKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete user index: %w", err)
		}

		tokenIndexKey := []byte(sessionsByTokenPrefix + session.RefreshTokenHash)
		if err := txn.Delete(tokenIndexKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete token index: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("session deleted", "id", id)
	}
	return nil
}

// ListSessionsByUser returns all sessions for a user.
func (s *Store) ListSessionsByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := fmt.Appendf(nil, "%s%s:", sessionsByUserPrefix, userID)
	ids, err := s.scanIndexIDs(prefix)
	if err != nil {
		return nil, fmt.Errorf("scan user index: %w", err)
	}

	sessions := make([]*domain.Session, 0, len(ids))
	for _, id := range ids {
		session, err := s.GetSession(ctx, id)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("failed to get session from index", "session_id", id, "error", err)
			}
			continue
		}
		sessions = append(sessions, session)
	}

	return sessions, nil
}

// DeleteSessionsForUser deletes all sessions for a user.
// Used to force logout everywhere after a password change.
func (s *Store) DeleteSessionsForUser(ctx context.Context, userID string) error {
	sessions, err := s.ListSessionsByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("list sessions for user: %w", err)
	}

	for _, session := range sessions {
		if err := s.DeleteSession(ctx, session.ID); err != nil {
			return fmt.Errorf("delete session %s: %w", session.ID, err)
		}
	}

	if s.logger != nil {
		s.logger.Info("deleted sessions for user", "user_id", userID, "count", len(sessions))
	}
	return nil
}
