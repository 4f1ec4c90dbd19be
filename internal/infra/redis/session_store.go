package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"live-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps player restore tokens in Redis so a reload on any
// instance can re-attach the player.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Save stores the session as JSON. A non-positive ttl never expires.
func (s *SessionStore) Save(ctx context.Context, session domain.PlayerSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.key(session.Token), data, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Load(ctx context.Context, token string) (domain.PlayerSession, error) {
	data, err := s.client.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.PlayerSession{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.PlayerSession{}, fmt.Errorf("load session: %w", err)
	}
	var session domain.PlayerSession
	if err := json.Unmarshal(data, &session); err != nil {
		return domain.PlayerSession{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return session, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(token)).Err()
}

func (s *SessionStore) key(token string) string {
	return "quiz:session:" + token
}
