package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"live-quiz-service/internal/domain"

	"github.com/google/uuid"
)

// AnswerLedger records player answers and keeps scores reconciled with them.
type AnswerLedger struct {
	store     Store
	questions QuestionReader
	now       func() time.Time
	locks     *keyedMutex
	observer  func(domain.AnswerChange)
}

// NewAnswerLedger builds a ledger. questions may be a cache in front of store;
// nil falls back to reading the store directly.
func NewAnswerLedger(store Store, questions QuestionReader) *AnswerLedger {
	if questions == nil {
		questions = store
	}
	return &AnswerLedger{
		store:     store,
		questions: questions,
		now:       time.Now,
		locks:     newKeyedMutex(),
	}
}

// WithClock is test-only for deterministic timestamps.
func (l *AnswerLedger) WithClock(now func() time.Time) *AnswerLedger {
	l.now = now
	return l
}

// OnChange registers a callback invoked after every successful submission.
func (l *AnswerLedger) OnChange(fn func(domain.AnswerChange)) {
	l.observer = fn
}

// SubmitOrUpdateAnswer records the player's choice for the room's current question.
// A repeated submission overwrites the previous one and the score is reconciled
// from the previous and new correctness.
func (l *AnswerLedger) SubmitOrUpdateAnswer(ctx context.Context, roomID, playerID, questionID string, choice domain.Choice) (domain.AnswerChange, error) {
	if !choice.Valid() {
		return domain.AnswerChange{}, domain.ErrInvalidChoice
	}

	unlock := l.locks.lock(playerID)
	defer unlock()

	room, err := l.store.GetRoom(ctx, roomID)
	if err != nil {
		return domain.AnswerChange{}, err
	}
	if room.Status == domain.StatusRevealed && room.IsCurrent(questionID) {
		return domain.AnswerChange{}, domain.ErrAnswersLocked
	}
	if room.Status != domain.StatusActive || !room.IsCurrent(questionID) {
		return domain.AnswerChange{}, domain.ErrQuestionNotActive
	}

	player, err := l.store.GetPlayer(ctx, playerID)
	if err != nil {
		return domain.AnswerChange{}, err
	}
	if player.RoomID != roomID {
		return domain.AnswerChange{}, domain.ErrPlayerNotFound
	}

	question, err := l.questions.GetQuestion(ctx, questionID)
	if err != nil {
		return domain.AnswerChange{}, err
	}

	now := l.now()
	next := domain.Answer{
		ID:             uuid.NewString(),
		PlayerID:       playerID,
		QuestionID:     questionID,
		SelectedAnswer: choice,
		IsCorrect:      choice == question.CorrectAnswer,
		AnsweredAt:     now,
		CreatedAt:      now,
	}
	previous, err := l.store.UpsertAnswer(ctx, next)
	if err != nil {
		return domain.AnswerChange{}, err
	}
	if previous != nil {
		next.ID = previous.ID
		next.CreatedAt = previous.CreatedAt
	}

	change := domain.AnswerChange{
		Previous: previous,
		Current:  next,
		Delta:    ScoreDelta(previous, next),
		Score:    player.Score,
	}
	if change.Delta != 0 {
		score, err := l.store.AdjustScore(ctx, playerID, change.Delta)
		if err != nil {
			return domain.AnswerChange{}, err
		}
		change.Score = score
	} else if fresh, err := l.store.GetPlayer(ctx, playerID); err == nil {
		change.Score = fresh.Score
	}

	if l.observer != nil {
		l.observer(change)
	}
	return change, nil
}

// PlayerAnswer returns the player's answer to a question, or nil if there is none.
func (l *AnswerLedger) PlayerAnswer(ctx context.Context, playerID, questionID string) (*domain.Answer, error) {
	a, err := l.store.GetAnswer(ctx, playerID, questionID)
	if errors.Is(err, domain.ErrAnswerNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// keyedMutex serializes work per key. Entries are dropped once nobody holds them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
