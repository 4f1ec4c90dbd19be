package app_test

import (
	"context"
	"testing"
	"time"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

func waitFor(t *testing.T, ch <-chan app.ViewUpdate, kind string, match func(any) bool) any {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case u, ok := <-ch:
			if !ok {
				t.Fatalf("view stream closed while waiting for %s", kind)
			}
			if u.Kind == kind && (match == nil || match(u.Payload)) {
				return u.Payload
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s update", kind)
		}
	}
}

func TestWatchPushesProjections(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := f.views.Watch(ctx, f.room.ID, true)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	for _, kind := range []string{app.ViewRoom, app.ViewPlayers, app.ViewAnswers, app.ViewStandings} {
		waitFor(t, updates, kind, nil)
	}

	alice := f.mustJoin(t, "Alice")
	waitFor(t, updates, app.ViewPlayers, func(p any) bool {
		return len(p.([]domain.Player)) == 1
	})

	f.mustStart(t)
	payload := waitFor(t, updates, app.ViewRoom, func(p any) bool {
		return p.(app.RoomView).Room.Status == domain.StatusActive
	})
	rv := payload.(app.RoomView)
	if rv.Question == nil || rv.Question.ID != f.q1.ID || rv.Question.CorrectAnswer != "" {
		t.Fatalf("expected redacted q1, got %+v", rv.Question)
	}

	f.mustAnswer(t, alice.ID, f.q1.ID, domain.ChoiceB)
	waitFor(t, updates, app.ViewAnswers, func(p any) bool {
		stats := p.(app.AnswerStats)
		return stats.QuestionID == f.q1.ID && stats.Count == 1 && stats.ByChoice[domain.ChoiceB] == 1
	})

	if _, err := f.rooms.RevealAnswer(ctx, f.room.ID); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	payload = waitFor(t, updates, app.ViewRoom, func(p any) bool {
		return p.(app.RoomView).Room.Status == domain.StatusRevealed
	})
	if q := payload.(app.RoomView).Question; q == nil || q.CorrectAnswer != domain.ChoiceB {
		t.Fatalf("expected correct answer after reveal, got %+v", q)
	}

	cancel()
	for range updates {
	}
}

func TestWatchResyncsAfterDrop(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := f.views.Watch(ctx, f.room.ID, false)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	waitFor(t, updates, app.ViewStandings, nil)

	f.hub.CloseAll()
	waitFor(t, updates, app.ViewRoom, nil)
	waitFor(t, updates, app.ViewStandings, nil)

	f.mustJoin(t, "Bob")
	waitFor(t, updates, app.ViewPlayers, func(p any) bool {
		return len(p.([]domain.Player)) == 1
	})
}

func TestWatchUnknownRoom(t *testing.T) {
	f := newFixture(t)
	if _, err := f.views.Watch(context.Background(), "missing", true); err == nil {
		t.Fatalf("expected error for unknown room")
	}
}

func TestStandingsRevealedStepByStep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.mustJoin(t, "Alice")
	bob := f.mustJoin(t, "Bob")
	f.mustJoin(t, "Carol")

	f.mustStart(t)
	f.mustAnswer(t, alice.ID, f.q1.ID, domain.ChoiceB)
	f.mustAnswer(t, bob.ID, f.q1.ID, domain.ChoiceB)

	standings, err := f.views.Standings(ctx, f.room.ID)
	if err != nil || len(standings) != 0 {
		t.Fatalf("expected no standings before finish, got %+v %v", standings, err)
	}

	if _, err := f.rooms.RevealAnswer(ctx, f.room.ID); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if _, err := f.rooms.NextQuestion(ctx, f.room.ID); err != nil {
		t.Fatalf("next: %v", err)
	}
	if _, err := f.rooms.RevealAnswer(ctx, f.room.ID); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if _, err := f.rooms.NextQuestion(ctx, f.room.ID); err != nil {
		t.Fatalf("finish: %v", err)
	}

	// Alice and Bob share rank 1, Carol is rank 2; nobody holds rank 3.
	wantCounts := []int{0, 1, 3}
	for i, want := range wantCounts {
		if _, err := f.rooms.RevealRank(ctx, f.room.ID); err != nil {
			t.Fatalf("reveal rank: %v", err)
		}
		standings, err := f.views.Standings(ctx, f.room.ID)
		if err != nil {
			t.Fatalf("standings: %v", err)
		}
		if len(standings) != want {
			t.Fatalf("step %d: expected %d visible, got %+v", i, want, standings)
		}
	}
}

func TestPlayerViewHidesCorrectnessUntilReveal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.mustJoin(t, "Alice")
	f.mustStart(t)
	f.mustAnswer(t, alice.ID, f.q1.ID, domain.ChoiceB)

	view, err := f.views.Player(ctx, f.room.ID, alice.ID)
	if err != nil {
		t.Fatalf("player view: %v", err)
	}
	if view.Answer == nil || view.Answer.IsCorrect || view.Rank != 1 {
		t.Fatalf("expected hidden correctness, got %+v", view)
	}

	if _, err := f.rooms.RevealAnswer(ctx, f.room.ID); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	view, err = f.views.Player(ctx, f.room.ID, alice.ID)
	if err != nil || view.Answer == nil || !view.Answer.IsCorrect || view.Player.Score != 1 {
		t.Fatalf("expected revealed correct answer, got %+v %v", view, err)
	}

	room, err := f.views.Room(ctx, f.room.ID, false)
	if err != nil || room.Question == nil || room.Question.CorrectAnswer != domain.ChoiceB {
		t.Fatalf("expected unredacted admin view, got %+v %v", room, err)
	}
}
