package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"live-quiz-service/internal/domain"

	"github.com/google/uuid"
)

// PlayerService handles joining a room and restoring a player after reload.
type PlayerService struct {
	store      Store
	sessions   SessionStore
	sessionTTL time.Duration
	now        func() time.Time
}

func NewPlayerService(store Store, sessions SessionStore, sessionTTL time.Duration) *PlayerService {
	return &PlayerService{store: store, sessions: sessions, sessionTTL: sessionTTL, now: time.Now}
}

// Join registers name in the room, or re-attaches to the existing player with
// the same name. A fresh restore token is issued either way.
func (s *PlayerService) Join(ctx context.Context, roomID, name string) (domain.Player, domain.PlayerSession, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Player{}, domain.PlayerSession{}, domain.ErrInvalidInput
	}
	if _, err := s.store.GetRoom(ctx, roomID); err != nil {
		return domain.Player{}, domain.PlayerSession{}, err
	}

	player, err := s.store.FindPlayerByName(ctx, roomID, name)
	if errors.Is(err, domain.ErrPlayerNotFound) {
		now := s.now()
		player = domain.Player{
			ID:        uuid.NewString(),
			Name:      name,
			RoomID:    roomID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		err = s.store.CreatePlayer(ctx, player)
	}
	if err != nil {
		return domain.Player{}, domain.PlayerSession{}, err
	}

	session := domain.PlayerSession{
		Token:    uuid.NewString(),
		RoomID:   roomID,
		PlayerID: player.ID,
	}
	if err := s.sessions.Save(ctx, session, s.sessionTTL); err != nil {
		return domain.Player{}, domain.PlayerSession{}, err
	}
	return player, session, nil
}

// Restore resolves a token to its player. Tokens for another room or for a
// player removed by a reset are deleted and reported as ErrSessionNotFound.
func (s *PlayerService) Restore(ctx context.Context, roomID, token string) (domain.Player, error) {
	if token == "" {
		return domain.Player{}, domain.ErrSessionNotFound
	}
	session, err := s.sessions.Load(ctx, token)
	if err != nil {
		return domain.Player{}, err
	}
	if session.RoomID != roomID {
		_ = s.sessions.Delete(ctx, token)
		return domain.Player{}, domain.ErrSessionNotFound
	}

	player, err := s.store.GetPlayer(ctx, session.PlayerID)
	if errors.Is(err, domain.ErrPlayerNotFound) || (err == nil && player.RoomID != roomID) {
		_ = s.sessions.Delete(ctx, token)
		return domain.Player{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Player{}, err
	}
	return player, nil
}

func (s *PlayerService) List(ctx context.Context, roomID string) ([]domain.Player, error) {
	return s.store.ListPlayers(ctx, roomID)
}
