package app

import (
	"context"
	"time"

	"live-quiz-service/internal/domain"
)

// RoomRepository persists rooms.
type RoomRepository interface {
	// FirstRoom returns the oldest room or domain.ErrRoomNotFound.
	FirstRoom(ctx context.Context) (domain.Room, error)
	CreateRoom(ctx context.Context, room domain.Room) error
	GetRoom(ctx context.Context, roomID string) (domain.Room, error)
	// SaveRoom writes status, current question and revealed rank.
	SaveRoom(ctx context.Context, room domain.Room) error
}

// QuestionRepository persists the global question list.
type QuestionRepository interface {
	// ListQuestions returns every question ordered by order index.
	ListQuestions(ctx context.Context) ([]domain.Question, error)
	GetQuestion(ctx context.Context, questionID string) (domain.Question, error)
	CreateQuestion(ctx context.Context, q domain.Question) error
	UpdateQuestion(ctx context.Context, q domain.Question) error
	DeleteQuestion(ctx context.Context, questionID string) error
}

// PlayerRepository persists players and their scores.
type PlayerRepository interface {
	// ListPlayers returns the room's players ordered by score descending.
	ListPlayers(ctx context.Context, roomID string) ([]domain.Player, error)
	GetPlayer(ctx context.Context, playerID string) (domain.Player, error)
	FindPlayerByName(ctx context.Context, roomID, name string) (domain.Player, error)
	CreatePlayer(ctx context.Context, p domain.Player) error
	// AdjustScore atomically adds delta to the stored score and returns the new value.
	AdjustScore(ctx context.Context, playerID string, delta int) (int, error)
	// DeletePlayers removes every player of the room together with their answers.
	DeletePlayers(ctx context.Context, roomID string) (int, error)
}

// AnswerRepository persists answers.
type AnswerRepository interface {
	// UpsertAnswer inserts or overwrites the (player, question) answer and returns
	// the row as it was before the write. Calls for the same player are serialized.
	UpsertAnswer(ctx context.Context, a domain.Answer) (*domain.Answer, error)
	GetAnswer(ctx context.Context, playerID, questionID string) (domain.Answer, error)
	ListAnswers(ctx context.Context, questionID string) ([]domain.Answer, error)
	ListPlayerAnswers(ctx context.Context, playerID string) ([]domain.Answer, error)
}

// Store is the data-access boundary over the four tables.
type Store interface {
	RoomRepository
	QuestionRepository
	PlayerRepository
	AnswerRepository
}

// QuestionReader is the read path used on every submission; usually a cache.
type QuestionReader interface {
	GetQuestion(ctx context.Context, questionID string) (domain.Question, error)
}

// QuestionCache is a QuestionReader that can drop stale entries.
type QuestionCache interface {
	QuestionReader
	Invalidate(ctx context.Context, questionID string)
}

// SessionStore keeps player restore tokens.
type SessionStore interface {
	Save(ctx context.Context, session domain.PlayerSession, ttl time.Duration) error
	Load(ctx context.Context, token string) (domain.PlayerSession, error)
	Delete(ctx context.Context, token string) error
}

// ChangeFeed is the push-notification primitive the live views are built on.
// The returned cancel function must be called to release the subscription.
type ChangeFeed interface {
	Subscribe(filter domain.ChangeFilter) (<-chan domain.ChangeEvent, func())
}
