package app

import (
	"context"
	"fmt"
	"time"

	"live-quiz-service/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// QuestionInput is the admin form for creating or editing a question.
type QuestionInput struct {
	Text          string `json:"questionText" validate:"required,max=500"`
	OptionA       string `json:"optionA" validate:"required,max=200"`
	OptionB       string `json:"optionB" validate:"required,max=200"`
	OptionC       string `json:"optionC" validate:"required,max=200"`
	OptionD       string `json:"optionD" validate:"required,max=200"`
	CorrectAnswer string `json:"correctAnswer" validate:"required,oneof=A B C D"`
}

// QuestionService manages the global question list.
type QuestionService struct {
	store    Store
	cache    QuestionCache
	validate *validator.Validate
	now      func() time.Time
}

// NewQuestionService builds the service; cache may be nil.
func NewQuestionService(store Store, cache QuestionCache) *QuestionService {
	return &QuestionService{
		store:    store,
		cache:    cache,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (s *QuestionService) List(ctx context.Context) ([]domain.Question, error) {
	return s.store.ListQuestions(ctx)
}

func (s *QuestionService) Get(ctx context.Context, questionID string) (domain.Question, error) {
	return s.store.GetQuestion(ctx, questionID)
}

// Create appends a question after the current highest order index.
func (s *QuestionService) Create(ctx context.Context, in QuestionInput) (domain.Question, error) {
	if err := s.validate.Struct(in); err != nil {
		return domain.Question{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	existing, err := s.store.ListQuestions(ctx)
	if err != nil {
		return domain.Question{}, err
	}
	maxOrder := 0
	for _, q := range existing {
		if q.OrderIndex > maxOrder {
			maxOrder = q.OrderIndex
		}
	}

	q := applyInput(domain.Question{
		ID:         uuid.NewString(),
		OrderIndex: maxOrder + 1,
		CreatedAt:  s.now(),
	}, in)
	if err := s.store.CreateQuestion(ctx, q); err != nil {
		return domain.Question{}, err
	}
	return q, nil
}

// Update replaces the text, options and correct answer of a question.
// Existing answers keep the correctness recorded when they were submitted.
func (s *QuestionService) Update(ctx context.Context, questionID string, in QuestionInput) (domain.Question, error) {
	if err := s.validate.Struct(in); err != nil {
		return domain.Question{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	q, err := s.store.GetQuestion(ctx, questionID)
	if err != nil {
		return domain.Question{}, err
	}
	q = applyInput(q, in)
	if err := s.store.UpdateQuestion(ctx, q); err != nil {
		return domain.Question{}, err
	}
	s.invalidate(ctx, questionID)
	return q, nil
}

// Delete removes a question. Answers referencing it are left in place.
func (s *QuestionService) Delete(ctx context.Context, questionID string) error {
	if err := s.store.DeleteQuestion(ctx, questionID); err != nil {
		return err
	}
	s.invalidate(ctx, questionID)
	return nil
}

func (s *QuestionService) invalidate(ctx context.Context, questionID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, questionID)
	}
}

func applyInput(q domain.Question, in QuestionInput) domain.Question {
	q.Text = in.Text
	q.OptionA = in.OptionA
	q.OptionB = in.OptionB
	q.OptionC = in.OptionC
	q.OptionD = in.OptionD
	q.CorrectAnswer = domain.Choice(in.CorrectAnswer)
	return q
}
