package app_test

import (
	"strconv"
	"testing"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

func playerEvent(roomID, id string) domain.ChangeEvent {
	return domain.ChangeEvent{
		Table: domain.TablePlayers,
		Type:  domain.ChangeInsert,
		Keys:  map[string]string{"id": id, "room_id": roomID},
	}
}

func TestHubFiltersByColumn(t *testing.T) {
	hub := app.NewChangeHub()
	ch, cancel := hub.Subscribe(domain.ChangeFilter{Table: domain.TablePlayers, Column: "room_id", Value: "r1"})
	defer cancel()

	hub.Publish(playerEvent("r2", "p0"))
	hub.Publish(playerEvent("r1", "p1"))
	hub.Publish(domain.ChangeEvent{Table: domain.TableAnswers, Type: domain.ChangeInsert, Keys: map[string]string{"room_id": "r1"}})

	select {
	case ev := <-ch:
		if ev.Keys["id"] != "p1" {
			t.Fatalf("expected p1, got %+v", ev)
		}
	default:
		t.Fatalf("expected a matching event")
	}
	select {
	case ev := <-ch:
		t.Fatalf("unexpected extra event %+v", ev)
	default:
	}
}

func TestHubDropsOldestWhenFull(t *testing.T) {
	hub := app.NewChangeHub()
	ch, cancel := hub.Subscribe(domain.ChangeFilter{Table: domain.TablePlayers})
	defer cancel()

	for i := 0; i < 20; i++ {
		hub.Publish(playerEvent("r1", strconv.Itoa(i)))
	}

	first := <-ch
	if first.Keys["id"] != "4" {
		t.Fatalf("expected oldest surviving event 4, got %s", first.Keys["id"])
	}
	n := 1
	for len(ch) > 0 {
		<-ch
		n++
	}
	if n != 16 {
		t.Fatalf("expected 16 buffered events, got %d", n)
	}
}

func TestHubCloseAllAndCancel(t *testing.T) {
	hub := app.NewChangeHub()
	ch1, cancel1 := hub.Subscribe(domain.ChangeFilter{})
	_, cancel2 := hub.Subscribe(domain.ChangeFilter{})
	if hub.Subscribers() != 2 {
		t.Fatalf("expected 2 subscribers, got %d", hub.Subscribers())
	}

	cancel2()
	cancel2()
	if hub.Subscribers() != 1 {
		t.Fatalf("expected 1 subscriber after cancel, got %d", hub.Subscribers())
	}

	hub.CloseAll()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected closed channel")
	}
	cancel1()
	if hub.Subscribers() != 0 {
		t.Fatalf("expected no subscribers, got %d", hub.Subscribers())
	}
}
