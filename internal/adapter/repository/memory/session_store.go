package memory

import (
	"context"
	"sync"
	"time"

	"github.com/iho/gowallet/internal/domain"
)

// SessionStore implements usecase.SessionStore.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	now      func() time.Time
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*domain.Session),
		now:      time.Now,
	}
}

// Save stores a session.
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *session
	s.sessions[c.Token] = &c
	return nil
}

// Get returns the session for token. Expired sessions are dropped.
func (s *SessionStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if session.Expired(s.now()) {
		delete(s.sessions, token)
		return nil, domain.ErrSessionNotFound
	}
	c := *session
	return &c, nil
}

// Delete removes the session for token.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}
