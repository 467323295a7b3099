package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionStore maps opaque tokens to user ids. Sessions are ephemeral, so an
// in-process store with expiry is enough; a restart just logs everyone out.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]session
	ttl      time.Duration
}

type session struct {
	userID    string
	expiresAt time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]session),
		ttl:      ttl,
	}
}

// Create issues a new token for the user.
func (s *SessionStore) Create(userID string) string {
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = session{
		userID:    userID,
		expiresAt: time.Now().Add(s.ttl),
	}
	return token
}

// Lookup resolves a token to a user id. Expired sessions are dropped.
func (s *SessionStore) Lookup(token string) (string, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return "", false
	}
	if time.Now().After(sess.expiresAt) {
		s.Delete(token)
		return "", false
	}
	return sess.userID, true
}

// Delete removes a token. Idempotent.
func (s *SessionStore) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}
