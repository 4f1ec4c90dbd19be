package app

import (
	"context"
	"errors"

	"live-quiz-service/internal/domain"
)

// View kinds pushed to live clients.
const (
	ViewRoom      = "room"
	ViewPlayers   = "players"
	ViewAnswers   = "answers"
	ViewStandings = "standings"
)

// RoomView is the room state plus the question it points at.
type RoomView struct {
	Room     domain.Room      `json:"room"`
	Question *domain.Question `json:"question,omitempty"`
}

// AnswerStats counts answers to one question.
type AnswerStats struct {
	QuestionID string                `json:"questionId"`
	Count      int                   `json:"count"`
	ByChoice   map[domain.Choice]int `json:"byChoice,omitempty"`
}

// PlayerView is what a single player sees about themselves.
type PlayerView struct {
	Player domain.Player  `json:"player"`
	Rank   int            `json:"rank"`
	Answer *domain.Answer `json:"answer,omitempty"`
}

// ViewUpdate is one projection refresh.
type ViewUpdate struct {
	Kind    string `json:"type"`
	Payload any    `json:"payload"`
}

// ViewService builds the read-only projections consumed by the admin, join and screen clients.
type ViewService struct {
	store Store
	feed  ChangeFeed
}

func NewViewService(store Store, feed ChangeFeed) *ViewService {
	return &ViewService{store: store, feed: feed}
}

// Room returns the room and its current question. The correct answer is only
// included when redact is false or the question has been revealed.
func (v *ViewService) Room(ctx context.Context, roomID string, redact bool) (RoomView, error) {
	room, err := v.store.GetRoom(ctx, roomID)
	if err != nil {
		return RoomView{}, err
	}
	view := RoomView{Room: room}
	if room.CurrentQuestionID == nil {
		return view, nil
	}
	q, err := v.store.GetQuestion(ctx, *room.CurrentQuestionID)
	if errors.Is(err, domain.ErrQuestionNotFound) {
		return view, nil
	}
	if err != nil {
		return RoomView{}, err
	}
	if redact && room.Status == domain.StatusActive {
		q = q.Redacted()
	}
	view.Question = &q
	return view, nil
}

func (v *ViewService) Players(ctx context.Context, roomID string) ([]domain.Player, error) {
	return v.store.ListPlayers(ctx, roomID)
}

// Answers counts answers for the question. An empty questionID yields zero counts.
func (v *ViewService) Answers(ctx context.Context, questionID string) (AnswerStats, error) {
	stats := AnswerStats{QuestionID: questionID, ByChoice: map[domain.Choice]int{}}
	if questionID == "" {
		return stats, nil
	}
	answers, err := v.store.ListAnswers(ctx, questionID)
	if err != nil {
		return AnswerStats{}, err
	}
	stats.Count = len(answers)
	for _, a := range answers {
		stats.ByChoice[a.SelectedAnswer]++
	}
	return stats, nil
}

// Standings returns the podium revealed so far. It is empty until the game is finished.
func (v *ViewService) Standings(ctx context.Context, roomID string) ([]domain.Standing, error) {
	room, err := v.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != domain.StatusFinished {
		return []domain.Standing{}, nil
	}
	players, err := v.store.ListPlayers(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return RevealedStandings(players, room.RevealedRank), nil
}

// Player returns a player's own view. Correctness of the current answer stays
// hidden until the question is revealed.
func (v *ViewService) Player(ctx context.Context, roomID, playerID string) (PlayerView, error) {
	room, err := v.store.GetRoom(ctx, roomID)
	if err != nil {
		return PlayerView{}, err
	}
	players, err := v.store.ListPlayers(ctx, roomID)
	if err != nil {
		return PlayerView{}, err
	}
	view := PlayerView{Rank: RankOf(players, playerID)}
	found := false
	for _, p := range players {
		if p.ID == playerID {
			view.Player = p
			found = true
			break
		}
	}
	if !found {
		return PlayerView{}, domain.ErrPlayerNotFound
	}
	if room.CurrentQuestionID == nil {
		return view, nil
	}
	a, err := v.store.GetAnswer(ctx, playerID, *room.CurrentQuestionID)
	if errors.Is(err, domain.ErrAnswerNotFound) {
		return view, nil
	}
	if err != nil {
		return PlayerView{}, err
	}
	if room.Status == domain.StatusActive {
		a.IsCorrect = false
	}
	view.Answer = &a
	return view, nil
}

// Watch streams projection refreshes for a room until ctx is done. The room,
// players and answers feeds are subscribed independently, so no ordering holds
// between updates of different kinds. When a subscription is dropped the full
// state is fetched again.
func (v *ViewService) Watch(ctx context.Context, roomID string, redact bool) (<-chan ViewUpdate, error) {
	if _, err := v.store.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}
	out := make(chan ViewUpdate, 16)
	go v.watch(ctx, roomID, redact, out)
	return out, nil
}

type watchSubs struct {
	room, players, answers             <-chan domain.ChangeEvent
	cancelRoom, cancelPlayers, cancelA func()
	questionID                         string
}

func (s *watchSubs) close() {
	if s.cancelRoom != nil {
		s.cancelRoom()
	}
	if s.cancelPlayers != nil {
		s.cancelPlayers()
	}
	if s.cancelA != nil {
		s.cancelA()
	}
}

func (v *ViewService) subscribeAnswers(subs *watchSubs, questionID string) {
	if subs.cancelA != nil {
		subs.cancelA()
		subs.cancelA = nil
		subs.answers = nil
	}
	subs.questionID = questionID
	if questionID == "" {
		return
	}
	subs.answers, subs.cancelA = v.feed.Subscribe(domain.ChangeFilter{
		Table:  domain.TableAnswers,
		Column: "question_id",
		Value:  questionID,
	})
}

func (v *ViewService) subscribe(roomID string) *watchSubs {
	subs := &watchSubs{}
	subs.room, subs.cancelRoom = v.feed.Subscribe(domain.ChangeFilter{
		Table:  domain.TableRooms,
		Column: "id",
		Value:  roomID,
		Types:  []domain.ChangeType{domain.ChangeUpdate},
	})
	subs.players, subs.cancelPlayers = v.feed.Subscribe(domain.ChangeFilter{
		Table:  domain.TablePlayers,
		Column: "room_id",
		Value:  roomID,
	})
	return subs
}

func (v *ViewService) watch(ctx context.Context, roomID string, redact bool, out chan<- ViewUpdate) {
	defer close(out)

	subs := v.subscribe(roomID)
	defer func() { subs.close() }()

	emit := func(kind string, payload any) bool {
		select {
		case out <- ViewUpdate{Kind: kind, Payload: payload}:
			return true
		case <-ctx.Done():
			return false
		}
	}

	sendRoom := func() (RoomView, bool) {
		rv, err := v.Room(ctx, roomID, redact)
		if err != nil {
			return RoomView{}, ctx.Err() == nil
		}
		return rv, emit(ViewRoom, rv)
	}
	sendPlayers := func() bool {
		players, err := v.Players(ctx, roomID)
		if err != nil {
			return ctx.Err() == nil
		}
		return emit(ViewPlayers, players)
	}
	sendAnswers := func() bool {
		stats, err := v.Answers(ctx, subs.questionID)
		if err != nil {
			return ctx.Err() == nil
		}
		return emit(ViewAnswers, stats)
	}
	sendStandings := func() bool {
		standings, err := v.Standings(ctx, roomID)
		if err != nil {
			return ctx.Err() == nil
		}
		return emit(ViewStandings, standings)
	}

	resync := func() bool {
		rv, ok := sendRoom()
		if !ok {
			return false
		}
		v.subscribeAnswers(subs, currentQuestion(rv.Room))
		return sendPlayers() && sendAnswers() && sendStandings()
	}

	if !resync() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-subs.room:
			if !ok {
				subs.close()
				subs = v.subscribe(roomID)
				if !resync() {
					return
				}
				continue
			}
			rv, ok := sendRoom()
			if !ok {
				return
			}
			if q := currentQuestion(rv.Room); q != subs.questionID {
				v.subscribeAnswers(subs, q)
				if !sendAnswers() {
					return
				}
			}
			if !sendStandings() {
				return
			}
		case _, ok := <-subs.players:
			if !ok {
				subs.close()
				subs = v.subscribe(roomID)
				if !resync() {
					return
				}
				continue
			}
			if !sendPlayers() || !sendStandings() {
				return
			}
		case _, ok := <-subs.answers:
			if !ok {
				subs.close()
				subs = v.subscribe(roomID)
				if !resync() {
					return
				}
				continue
			}
			if !sendAnswers() {
				return
			}
		}
	}
}

func currentQuestion(room domain.Room) string {
	if room.CurrentQuestionID == nil {
		return ""
	}
	return *room.CurrentQuestionID
}
