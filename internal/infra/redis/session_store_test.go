package redis

import (
	"context"
	"testing"
	"time"

	"live-quiz-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(newClient(mr))
	session := domain.PlayerSession{Token: "tok-1", RoomID: "room-1", PlayerID: "p1"}

	if err := store.Save(ctx, session, time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("quiz:session:tok-1") {
		t.Fatalf("expected redis key to be set")
	}
	got, err := store.Load(ctx, "tok-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != session {
		t.Fatalf("expected %+v, got %+v", session, got)
	}

	if err := store.Delete(ctx, "tok-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("quiz:session:tok-1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, err := store.Load(ctx, "tok-1"); err != domain.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionStoreExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(newClient(mr))
	_ = store.Save(ctx, domain.PlayerSession{Token: "tok-2", RoomID: "r", PlayerID: "p"}, time.Minute)

	mr.FastForward(2 * time.Minute)
	if _, err := store.Load(ctx, "tok-2"); err != domain.ErrSessionNotFound {
		t.Fatalf("expected expired session, got %v", err)
	}
}
