package memory

import (
	"context"
	"testing"
	"time"

	"live-quiz-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	session := domain.PlayerSession{Token: "tok", RoomID: "room-1", PlayerID: "p1"}

	if err := store.Save(ctx, session, time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load(ctx, "tok")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != session {
		t.Fatalf("expected %+v, got %+v", session, got)
	}

	_ = store.Delete(ctx, "tok")
	if _, err := store.Load(ctx, "tok"); err != domain.ErrSessionNotFound {
		t.Fatalf("expected session removed, got %v", err)
	}
}

func TestSessionStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	now := time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC)
	store.clock = func() time.Time { return now }

	_ = store.Save(ctx, domain.PlayerSession{Token: "tok", RoomID: "r", PlayerID: "p"}, time.Minute)
	now = now.Add(time.Minute)
	if _, err := store.Load(ctx, "tok"); err != domain.ErrSessionNotFound {
		t.Fatalf("expected expired session, got %v", err)
	}
}
