package app_test

import (
	"context"
	"testing"
	"time"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/infra/memory"
)

type fixture struct {
	store     *memory.Store
	hub       *app.ChangeHub
	rooms     *app.RoomService
	players   *app.PlayerService
	questions *app.QuestionService
	ledger    *app.AnswerLedger
	views     *app.ViewService
	room      domain.Room
	q1, q2    domain.Question
}

// newFixture seeds a waiting room with two questions: q1 (correct B) and q2 (correct C).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	hub := app.NewChangeHub()
	store := memory.NewStore(hub)
	f := &fixture{
		store:     store,
		hub:       hub,
		rooms:     app.NewRoomService(store),
		players:   app.NewPlayerService(store, memory.NewSessionStore(), time.Hour),
		questions: app.NewQuestionService(store, nil),
		ledger:    app.NewAnswerLedger(store, nil),
		views:     app.NewViewService(store, hub),
	}

	room, err := f.rooms.EnsureRoom(ctx)
	if err != nil {
		t.Fatalf("ensure room: %v", err)
	}
	f.room = room
	f.q1 = f.mustCreateQuestion(t, "2 + 2 = ?", "B")
	f.q2 = f.mustCreateQuestion(t, "Capital of France?", "C")
	return f
}

func (f *fixture) mustCreateQuestion(t *testing.T, text, correct string) domain.Question {
	t.Helper()
	q, err := f.questions.Create(context.Background(), app.QuestionInput{
		Text:          text,
		OptionA:       "one",
		OptionB:       "two",
		OptionC:       "three",
		OptionD:       "four",
		CorrectAnswer: correct,
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	return q
}

func (f *fixture) mustJoin(t *testing.T, name string) domain.Player {
	t.Helper()
	p, _, err := f.players.Join(context.Background(), f.room.ID, name)
	if err != nil {
		t.Fatalf("join %s: %v", name, err)
	}
	return p
}

func (f *fixture) mustStart(t *testing.T) domain.Room {
	t.Helper()
	room, err := f.rooms.StartQuestion(context.Background(), f.room.ID, "")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return room
}

func (f *fixture) mustAnswer(t *testing.T, playerID, questionID string, choice domain.Choice) domain.AnswerChange {
	t.Helper()
	change, err := f.ledger.SubmitOrUpdateAnswer(context.Background(), f.room.ID, playerID, questionID, choice)
	if err != nil {
		t.Fatalf("answer %s: %v", choice, err)
	}
	return change
}

func (f *fixture) score(t *testing.T, playerID string) int {
	t.Helper()
	p, err := f.store.GetPlayer(context.Background(), playerID)
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	return p.Score
}
