package postgres

import (
	"time"

	"live-quiz-service/internal/domain"
	"github.com/uptrace/bun"
)

type roomRow struct {
	bun.BaseModel `bun:"table:rooms,alias:r"`

	ID                string    `bun:"id,pk"`
	Status            string    `bun:"status,notnull"`
	CurrentQuestionID *string   `bun:"current_question_id"`
	RevealedRank      int       `bun:"revealed_rank,notnull"`
	CreatedAt         time.Time `bun:"created_at,notnull"`
	UpdatedAt         time.Time `bun:"updated_at,notnull"`
}

func (r roomRow) toDomain() domain.Room {
	return domain.Room{
		ID:                r.ID,
		Status:            domain.RoomStatus(r.Status),
		CurrentQuestionID: r.CurrentQuestionID,
		RevealedRank:      domain.RevealRank(r.RevealedRank),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func roomFromDomain(r domain.Room) roomRow {
	return roomRow{
		ID:                r.ID,
		Status:            string(r.Status),
		CurrentQuestionID: r.CurrentQuestionID,
		RevealedRank:      int(r.RevealedRank),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions,alias:q"`

	ID            string    `bun:"id,pk"`
	Text          string    `bun:"question_text,notnull"`
	OptionA       string    `bun:"option_a,notnull"`
	OptionB       string    `bun:"option_b,notnull"`
	OptionC       string    `bun:"option_c,notnull"`
	OptionD       string    `bun:"option_d,notnull"`
	CorrectAnswer string    `bun:"correct_answer,notnull"`
	OrderIndex    int       `bun:"order_index,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
}

func (q questionRow) toDomain() domain.Question {
	return domain.Question{
		ID:            q.ID,
		Text:          q.Text,
		OptionA:       q.OptionA,
		OptionB:       q.OptionB,
		OptionC:       q.OptionC,
		OptionD:       q.OptionD,
		CorrectAnswer: domain.Choice(q.CorrectAnswer),
		OrderIndex:    q.OrderIndex,
		CreatedAt:     q.CreatedAt,
	}
}

func questionFromDomain(q domain.Question) questionRow {
	return questionRow{
		ID:            q.ID,
		Text:          q.Text,
		OptionA:       q.OptionA,
		OptionB:       q.OptionB,
		OptionC:       q.OptionC,
		OptionD:       q.OptionD,
		CorrectAnswer: string(q.CorrectAnswer),
		OrderIndex:    q.OrderIndex,
		CreatedAt:     q.CreatedAt,
	}
}

type playerRow struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID        string    `bun:"id,pk"`
	Name      string    `bun:"name,notnull"`
	Score     int       `bun:"score,notnull"`
	RoomID    string    `bun:"room_id,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (p playerRow) toDomain() domain.Player {
	return domain.Player{
		ID:        p.ID,
		Name:      p.Name,
		Score:     p.Score,
		RoomID:    p.RoomID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func playerFromDomain(p domain.Player) playerRow {
	return playerRow{
		ID:        p.ID,
		Name:      p.Name,
		Score:     p.Score,
		RoomID:    p.RoomID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

type answerRow struct {
	bun.BaseModel `bun:"table:answers,alias:a"`

	ID             string    `bun:"id,pk"`
	PlayerID       string    `bun:"player_id,notnull"`
	QuestionID     string    `bun:"question_id,notnull"`
	SelectedAnswer string    `bun:"selected_answer,notnull"`
	IsCorrect      bool      `bun:"is_correct,notnull"`
	AnsweredAt     time.Time `bun:"answered_at,notnull"`
	CreatedAt      time.Time `bun:"created_at,notnull"`
}

func (a answerRow) toDomain() domain.Answer {
	return domain.Answer{
		ID:             a.ID,
		PlayerID:       a.PlayerID,
		QuestionID:     a.QuestionID,
		SelectedAnswer: domain.Choice(a.SelectedAnswer),
		IsCorrect:      a.IsCorrect,
		AnsweredAt:     a.AnsweredAt,
		CreatedAt:      a.CreatedAt,
	}
}

func answerFromDomain(a domain.Answer) answerRow {
	return answerRow{
		ID:             a.ID,
		PlayerID:       a.PlayerID,
		QuestionID:     a.QuestionID,
		SelectedAnswer: string(a.SelectedAnswer),
		IsCorrect:      a.IsCorrect,
		AnsweredAt:     a.AnsweredAt,
		CreatedAt:      a.CreatedAt,
	}
}
