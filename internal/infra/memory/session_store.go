package memory

import (
	"context"
	"sync"
	"time"

	"live-quiz-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	clock    func() time.Time
	sessions map[string]storedSession
}

type storedSession struct {
	session   domain.PlayerSession
	expiresAt time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		clock:    time.Now,
		sessions: make(map[string]storedSession),
	}
}

// Save stores the session. A non-positive ttl never expires.
func (s *SessionStore) Save(_ context.Context, session domain.PlayerSession, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := storedSession{session: session}
	if ttl > 0 {
		entry.expiresAt = s.clock().Add(ttl)
	}
	s.sessions[session.Token] = entry
	return nil
}

func (s *SessionStore) Load(_ context.Context, token string) (domain.PlayerSession, error) {
	s.mu.RLock()
	entry, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return domain.PlayerSession{}, domain.ErrSessionNotFound
	}
	if !entry.expiresAt.IsZero() && !entry.expiresAt.After(s.clock()) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return domain.PlayerSession{}, domain.ErrSessionNotFound
	}
	return entry.session, nil
}

func (s *SessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
