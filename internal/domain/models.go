package domain

import "time"

// RoomStatus is the lifecycle state of a room.
type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusActive   RoomStatus = "active"
	StatusRevealed RoomStatus = "revealed"
	StatusFinished RoomStatus = "finished"
)

// Room is the shared state of one game.
type Room struct {
	ID                string     `json:"id"`
	Status            RoomStatus `json:"status"`
	CurrentQuestionID *string    `json:"currentQuestionId"`
	RevealedRank      RevealRank `json:"revealedRank"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// IsCurrent reports whether questionID is the room's active question.
func (r Room) IsCurrent(questionID string) bool {
	return r.CurrentQuestionID != nil && *r.CurrentQuestionID == questionID
}

// Choice is one of the four option labels.
type Choice string

const (
	ChoiceA Choice = "A"
	ChoiceB Choice = "B"
	ChoiceC Choice = "C"
	ChoiceD Choice = "D"
)

func (c Choice) Valid() bool {
	switch c {
	case ChoiceA, ChoiceB, ChoiceC, ChoiceD:
		return true
	}
	return false
}

// Question is a multiple-choice item with four labeled options.
type Question struct {
	ID            string    `json:"id"`
	Text          string    `json:"questionText"`
	OptionA       string    `json:"optionA"`
	OptionB       string    `json:"optionB"`
	OptionC       string    `json:"optionC"`
	OptionD       string    `json:"optionD"`
	CorrectAnswer Choice    `json:"correctAnswer,omitempty"`
	OrderIndex    int       `json:"orderIndex"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Redacted returns a copy safe to show players before the answer is revealed.
func (q Question) Redacted() Question {
	q.CorrectAnswer = ""
	return q
}

// Player is a participant scoped to a room.
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Score     int       `json:"score"`
	RoomID    string    `json:"roomId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Answer is the single current answer of a player to a question.
type Answer struct {
	ID             string    `json:"id"`
	PlayerID       string    `json:"playerId"`
	QuestionID     string    `json:"questionId"`
	SelectedAnswer Choice    `json:"selectedAnswer"`
	IsCorrect      bool      `json:"isCorrect"`
	AnsweredAt     time.Time `json:"answeredAt"`
	CreatedAt      time.Time `json:"createdAt"`
}

// AnswerChange is the outcome of one submission.
type AnswerChange struct {
	Previous *Answer `json:"previous,omitempty"`
	Current  Answer  `json:"current"`
	Delta    int     `json:"delta"`
	Score    int     `json:"score"`
}

// Standing is a player's dense rank in a room.
type Standing struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

// PlayerSession binds a restore token to a player of a room.
type PlayerSession struct {
	Token    string `json:"token"`
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}
