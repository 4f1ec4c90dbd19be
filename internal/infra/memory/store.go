package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"live-quiz-service/internal/domain"
)

// Publisher receives row changes; app.ChangeHub satisfies it.
type Publisher interface {
	Publish(ev domain.ChangeEvent)
}

// Store is an in-memory implementation of app.Store. Every mutation is
// published as a change event, mirroring database triggers.
type Store struct {
	mu        sync.RWMutex
	now       func() time.Time
	publisher Publisher

	rooms     map[string]domain.Room
	roomOrder []string
	questions map[string]domain.Question
	players   map[string]domain.Player
	answers   map[answerKey]domain.Answer
}

type answerKey struct {
	playerID   string
	questionID string
}

// NewStore builds an empty store. publisher may be nil.
func NewStore(publisher Publisher) *Store {
	return &Store{
		now:       time.Now,
		publisher: publisher,
		rooms:     make(map[string]domain.Room),
		questions: make(map[string]domain.Question),
		players:   make(map[string]domain.Player),
		answers:   make(map[answerKey]domain.Answer),
	}
}

func (s *Store) FirstRoom(_ context.Context) (domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.roomOrder) == 0 {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	return s.rooms[s.roomOrder[0]], nil
}

func (s *Store) CreateRoom(_ context.Context, room domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = room
	s.roomOrder = append(s.roomOrder, room.ID)
	s.publishLocked(domain.TableRooms, domain.ChangeInsert, room, nil)
	return nil
}

func (s *Store) GetRoom(_ context.Context, roomID string) (domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	return room, nil
}

func (s *Store) SaveRoom(_ context.Context, room domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.rooms[room.ID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if room.CurrentQuestionID != nil {
		id := *room.CurrentQuestionID
		room.CurrentQuestionID = &id
	}
	s.rooms[room.ID] = room
	s.publishLocked(domain.TableRooms, domain.ChangeUpdate, room, old)
	return nil
}

func (s *Store) ListQuestions(_ context.Context) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Question, 0, len(s.questions))
	for _, q := range s.questions {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetQuestion(_ context.Context, questionID string) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[questionID]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, nil
}

func (s *Store) CreateQuestion(_ context.Context, q domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[q.ID] = q
	s.publishLocked(domain.TableQuestions, domain.ChangeInsert, q, nil)
	return nil
}

func (s *Store) UpdateQuestion(_ context.Context, q domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.questions[q.ID]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	s.questions[q.ID] = q
	s.publishLocked(domain.TableQuestions, domain.ChangeUpdate, q, old)
	return nil
}

func (s *Store) DeleteQuestion(_ context.Context, questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.questions[questionID]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	delete(s.questions, questionID)
	s.publishLocked(domain.TableQuestions, domain.ChangeDelete, nil, old)
	return nil
}

func (s *Store) ListPlayers(_ context.Context, roomID string) ([]domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Player, 0)
	for _, p := range s.players {
		if p.RoomID == roomID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetPlayer(_ context.Context, playerID string) (domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[playerID]
	if !ok {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	return p, nil
}

func (s *Store) FindPlayerByName(_ context.Context, roomID, name string) (domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.players {
		if p.RoomID == roomID && p.Name == name {
			return p, nil
		}
	}
	return domain.Player{}, domain.ErrPlayerNotFound
}

func (s *Store) CreatePlayer(_ context.Context, p domain.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[p.ID] = p
	s.publishLocked(domain.TablePlayers, domain.ChangeInsert, p, nil)
	return nil
}

func (s *Store) AdjustScore(_ context.Context, playerID string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[playerID]
	if !ok {
		return 0, domain.ErrPlayerNotFound
	}
	old := p
	p.Score += delta
	p.UpdatedAt = s.now()
	s.players[playerID] = p
	s.publishLocked(domain.TablePlayers, domain.ChangeUpdate, p, old)
	return p.Score, nil
}

func (s *Store) DeletePlayers(_ context.Context, roomID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, p := range s.players {
		if p.RoomID != roomID {
			continue
		}
		for key, a := range s.answers {
			if key.playerID == id {
				delete(s.answers, key)
				s.publishLocked(domain.TableAnswers, domain.ChangeDelete, nil, a)
			}
		}
		delete(s.players, id)
		s.publishLocked(domain.TablePlayers, domain.ChangeDelete, nil, p)
		removed++
	}
	return removed, nil
}

func (s *Store) UpsertAnswer(_ context.Context, a domain.Answer) (*domain.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[a.PlayerID]; !ok {
		return nil, domain.ErrPlayerNotFound
	}
	key := answerKey{playerID: a.PlayerID, questionID: a.QuestionID}
	prev, ok := s.answers[key]
	if !ok {
		s.answers[key] = a
		s.publishLocked(domain.TableAnswers, domain.ChangeInsert, a, nil)
		return nil, nil
	}
	updated := prev
	updated.SelectedAnswer = a.SelectedAnswer
	updated.IsCorrect = a.IsCorrect
	updated.AnsweredAt = a.AnsweredAt
	s.answers[key] = updated
	s.publishLocked(domain.TableAnswers, domain.ChangeUpdate, updated, prev)
	return &prev, nil
}

func (s *Store) GetAnswer(_ context.Context, playerID, questionID string) (domain.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.answers[answerKey{playerID: playerID, questionID: questionID}]
	if !ok {
		return domain.Answer{}, domain.ErrAnswerNotFound
	}
	return a, nil
}

func (s *Store) ListAnswers(_ context.Context, questionID string) ([]domain.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Answer, 0)
	for key, a := range s.answers {
		if key.questionID == questionID {
			out = append(out, a)
		}
	}
	sortAnswers(out)
	return out, nil
}

func (s *Store) ListPlayerAnswers(_ context.Context, playerID string) ([]domain.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Answer, 0)
	for key, a := range s.answers {
		if key.playerID == playerID {
			out = append(out, a)
		}
	}
	sortAnswers(out)
	return out, nil
}

func sortAnswers(answers []domain.Answer) {
	sort.Slice(answers, func(i, j int) bool {
		return answers[i].AnsweredAt.Before(answers[j].AnsweredAt)
	})
}

func (s *Store) publishLocked(table string, typ domain.ChangeType, newRow, oldRow any) {
	if s.publisher == nil {
		return
	}
	ev := domain.ChangeEvent{Table: table, Type: typ, Keys: map[string]string{}}
	if newRow != nil {
		ev.New, _ = json.Marshal(newRow)
		addKeys(ev.Keys, newRow)
	}
	if oldRow != nil {
		ev.Old, _ = json.Marshal(oldRow)
		if newRow == nil {
			addKeys(ev.Keys, oldRow)
		}
	}
	s.publisher.Publish(ev)
}

func addKeys(keys map[string]string, row any) {
	switch r := row.(type) {
	case domain.Room:
		keys["id"] = r.ID
	case domain.Question:
		keys["id"] = r.ID
	case domain.Player:
		keys["id"] = r.ID
		keys["room_id"] = r.RoomID
	case domain.Answer:
		keys["id"] = r.ID
		keys["player_id"] = r.PlayerID
		keys["question_id"] = r.QuestionID
	}
}
