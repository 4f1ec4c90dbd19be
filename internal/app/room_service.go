package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"live-quiz-service/internal/domain"

	"github.com/google/uuid"
)

// RoomService drives the room lifecycle:
// waiting -> active -> revealed -> active ... -> finished, and back to waiting on reset.
type RoomService struct {
	store Store
	now   func() time.Time
	mu    sync.Mutex
}

func NewRoomService(store Store) *RoomService {
	return &RoomService{store: store, now: time.Now}
}

// NewRoomServiceWithClock is test-only for deterministic timestamps.
func NewRoomServiceWithClock(store Store, now func() time.Time) *RoomService {
	return &RoomService{store: store, now: now}
}

// EnsureRoom returns the first existing room, creating a waiting one if there is none.
func (s *RoomService) EnsureRoom(ctx context.Context) (domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.store.FirstRoom(ctx)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, domain.ErrRoomNotFound) {
		return domain.Room{}, err
	}

	now := s.now()
	room = domain.Room{
		ID:           uuid.NewString(),
		Status:       domain.StatusWaiting,
		RevealedRank: domain.RankHidden,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateRoom(ctx, room); err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

func (s *RoomService) Get(ctx context.Context, roomID string) (domain.Room, error) {
	return s.store.GetRoom(ctx, roomID)
}

// StartQuestion opens the first question of a waiting room. An empty questionID
// picks the first question by order index.
func (s *RoomService) StartQuestion(ctx context.Context, roomID, questionID string) (domain.Room, error) {
	return s.transition(ctx, roomID, func(room *domain.Room) error {
		if room.Status != domain.StatusWaiting {
			return domain.ErrInvalidTransition
		}
		var q domain.Question
		if questionID == "" {
			questions, err := s.store.ListQuestions(ctx)
			if err != nil {
				return err
			}
			if len(questions) == 0 {
				return domain.ErrNoQuestions
			}
			q = questions[0]
		} else {
			var err error
			if q, err = s.store.GetQuestion(ctx, questionID); err != nil {
				return err
			}
		}
		room.Status = domain.StatusActive
		room.CurrentQuestionID = &q.ID
		return nil
	})
}

// RevealAnswer locks answers for the active question and exposes the correct option.
func (s *RoomService) RevealAnswer(ctx context.Context, roomID string) (domain.Room, error) {
	return s.transition(ctx, roomID, func(room *domain.Room) error {
		if room.Status != domain.StatusActive {
			return domain.ErrInvalidTransition
		}
		room.Status = domain.StatusRevealed
		return nil
	})
}

// NextQuestion advances a revealed room to the next question by order index,
// or finishes the game when none remain.
func (s *RoomService) NextQuestion(ctx context.Context, roomID string) (domain.Room, error) {
	return s.transition(ctx, roomID, func(room *domain.Room) error {
		if room.Status != domain.StatusRevealed {
			return domain.ErrInvalidTransition
		}
		questions, err := s.store.ListQuestions(ctx)
		if err != nil {
			return err
		}
		if next := nextQuestion(questions, room.CurrentQuestionID); next != nil {
			room.Status = domain.StatusActive
			room.CurrentQuestionID = &next.ID
			return nil
		}
		room.Status = domain.StatusFinished
		room.RevealedRank = domain.RankHidden
		return nil
	})
}

// RevealRank announces the next podium place: 3rd, then 2nd, then 1st.
// Once first place is shown further calls leave the room unchanged.
func (s *RoomService) RevealRank(ctx context.Context, roomID string) (domain.Room, error) {
	return s.transition(ctx, roomID, func(room *domain.Room) error {
		if room.Status != domain.StatusFinished {
			return domain.ErrInvalidTransition
		}
		if room.RevealedRank.Terminal() {
			return errNoChange
		}
		room.RevealedRank = room.RevealedRank.Next()
		return nil
	})
}

// Reset removes every player (and with them their answers) and returns the room to waiting.
func (s *RoomService) Reset(ctx context.Context, roomID string) (domain.Room, error) {
	return s.transition(ctx, roomID, func(room *domain.Room) error {
		if _, err := s.store.DeletePlayers(ctx, room.ID); err != nil {
			return err
		}
		room.Status = domain.StatusWaiting
		room.CurrentQuestionID = nil
		room.RevealedRank = domain.RankHidden
		return nil
	})
}

var errNoChange = errors.New("no change")

func (s *RoomService) transition(ctx context.Context, roomID string, apply func(*domain.Room) error) (domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return domain.Room{}, err
	}
	if err := apply(&room); err != nil {
		if errors.Is(err, errNoChange) {
			return room, nil
		}
		return domain.Room{}, err
	}
	room.UpdatedAt = s.now()
	if err := s.store.SaveRoom(ctx, room); err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

// nextQuestion returns the question following current in order, or nil.
// A current question that no longer exists ends the game.
func nextQuestion(questions []domain.Question, current *string) *domain.Question {
	if current == nil {
		if len(questions) == 0 {
			return nil
		}
		return &questions[0]
	}
	for i := range questions {
		if questions[i].ID == *current {
			if i+1 < len(questions) {
				return &questions[i+1]
			}
			return nil
		}
	}
	return nil
}
