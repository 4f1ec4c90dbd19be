package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"live-quiz-service/internal/domain"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Store implements app.Store on Postgres with bun. Change events are not
// published here; database triggers emit them and ChangeListener relays them.
type Store struct {
	db  *bun.DB
	now func() time.Time
}

// Open connects bun to dsn.
func Open(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) FirstRoom(ctx context.Context) (domain.Room, error) {
	var row roomRow
	err := s.db.NewSelect().Model(&row).Order("created_at ASC").Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	if err != nil {
		return domain.Room{}, fmt.Errorf("first room: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) CreateRoom(ctx context.Context, room domain.Room) error {
	row := roomFromDomain(room)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

func (s *Store) GetRoom(ctx context.Context, roomID string) (domain.Room, error) {
	var row roomRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", roomID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	if err != nil {
		return domain.Room{}, fmt.Errorf("get room: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) SaveRoom(ctx context.Context, room domain.Room) error {
	row := roomFromDomain(room)
	res, err := s.db.NewUpdate().
		Model(&row).
		Column("status", "current_question_id", "revealed_rank", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save room: %w", err)
	}
	return expectRows(res, domain.ErrRoomNotFound)
}

func (s *Store) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	var rows []questionRow
	if err := s.db.NewSelect().Model(&rows).Order("order_index ASC", "created_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	out := make([]domain.Question, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) GetQuestion(ctx context.Context, questionID string) (domain.Question, error) {
	var row questionRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", questionID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("get question: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) CreateQuestion(ctx context.Context, q domain.Question) error {
	row := questionFromDomain(q)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("create question: %w", err)
	}
	return nil
}

func (s *Store) UpdateQuestion(ctx context.Context, q domain.Question) error {
	row := questionFromDomain(q)
	res, err := s.db.NewUpdate().
		Model(&row).
		Column("question_text", "option_a", "option_b", "option_c", "option_d", "correct_answer", "order_index").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	return expectRows(res, domain.ErrQuestionNotFound)
}

func (s *Store) DeleteQuestion(ctx context.Context, questionID string) error {
	res, err := s.db.NewDelete().Model((*questionRow)(nil)).Where("id = ?", questionID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	return expectRows(res, domain.ErrQuestionNotFound)
}

func (s *Store) ListPlayers(ctx context.Context, roomID string) ([]domain.Player, error) {
	var rows []playerRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("room_id = ?", roomID).
		Order("score DESC", "created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	out := make([]domain.Player, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) GetPlayer(ctx context.Context, playerID string) (domain.Player, error) {
	var row playerRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", playerID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	if err != nil {
		return domain.Player{}, fmt.Errorf("get player: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) FindPlayerByName(ctx context.Context, roomID, name string) (domain.Player, error) {
	var row playerRow
	err := s.db.NewSelect().
		Model(&row).
		Where("room_id = ?", roomID).
		Where("name = ?", name).
		Order("created_at ASC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	if err != nil {
		return domain.Player{}, fmt.Errorf("find player: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) CreatePlayer(ctx context.Context, p domain.Player) error {
	row := playerFromDomain(p)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("create player: %w", err)
	}
	return nil
}

// AdjustScore applies delta in a single UPDATE so concurrent adjustments never
// overwrite each other.
func (s *Store) AdjustScore(ctx context.Context, playerID string, delta int) (int, error) {
	var score int
	err := s.db.NewUpdate().
		Model((*playerRow)(nil)).
		Set("score = score + ?", delta).
		Set("updated_at = ?", s.now()).
		Where("id = ?", playerID).
		Returning("score").
		Scan(ctx, &score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrPlayerNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("adjust score: %w", err)
	}
	return score, nil
}

// DeletePlayers relies on ON DELETE CASCADE to remove the players' answers.
func (s *Store) DeletePlayers(ctx context.Context, roomID string) (int, error) {
	res, err := s.db.NewDelete().Model((*playerRow)(nil)).Where("room_id = ?", roomID).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete players: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete players: %w", err)
	}
	return int(n), nil
}

// UpsertAnswer locks the player row for the duration of the transaction, which
// serializes submissions of one player across instances.
func (s *Store) UpsertAnswer(ctx context.Context, a domain.Answer) (*domain.Answer, error) {
	var previous *domain.Answer
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var locked playerRow
		err := tx.NewSelect().
			Model(&locked).
			Column("id").
			Where("id = ?", a.PlayerID).
			For("UPDATE").
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrPlayerNotFound
		}
		if err != nil {
			return err
		}

		var existing answerRow
		err = tx.NewSelect().
			Model(&existing).
			Where("player_id = ?", a.PlayerID).
			Where("question_id = ?", a.QuestionID).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			row := answerFromDomain(a)
			_, err = tx.NewInsert().Model(&row).Exec(ctx)
			return err
		}
		if err != nil {
			return err
		}

		prev := existing.toDomain()
		previous = &prev
		existing.SelectedAnswer = string(a.SelectedAnswer)
		existing.IsCorrect = a.IsCorrect
		existing.AnsweredAt = a.AnsweredAt
		_, err = tx.NewUpdate().
			Model(&existing).
			Column("selected_answer", "is_correct", "answered_at").
			WherePK().
			Exec(ctx)
		return err
	})
	if errors.Is(err, domain.ErrPlayerNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("upsert answer: %w", err)
	}
	return previous, nil
}

func (s *Store) GetAnswer(ctx context.Context, playerID, questionID string) (domain.Answer, error) {
	var row answerRow
	err := s.db.NewSelect().
		Model(&row).
		Where("player_id = ?", playerID).
		Where("question_id = ?", questionID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Answer{}, domain.ErrAnswerNotFound
	}
	if err != nil {
		return domain.Answer{}, fmt.Errorf("get answer: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) ListAnswers(ctx context.Context, questionID string) ([]domain.Answer, error) {
	return s.listAnswers(ctx, "question_id = ?", questionID)
}

func (s *Store) ListPlayerAnswers(ctx context.Context, playerID string) ([]domain.Answer, error) {
	return s.listAnswers(ctx, "player_id = ?", playerID)
}

func (s *Store) listAnswers(ctx context.Context, where string, arg string) ([]domain.Answer, error) {
	var rows []answerRow
	if err := s.db.NewSelect().Model(&rows).Where(where, arg).Order("answered_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	out := make([]domain.Answer, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func expectRows(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
