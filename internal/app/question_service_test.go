package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/infra/memory"
)

func TestCreateAppendsAfterHighestOrder(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, 1, f.q1.OrderIndex)
	require.Equal(t, 2, f.q2.OrderIndex)

	require.NoError(t, f.questions.Delete(context.Background(), f.q1.ID))
	q3 := f.mustCreateQuestion(t, "Largest planet?", "A")
	require.Equal(t, 3, q3.OrderIndex)
}

func TestCreateValidatesInput(t *testing.T) {
	f := newFixture(t)
	_, err := f.questions.Create(context.Background(), app.QuestionInput{
		Text:          "Missing option",
		OptionA:       "a",
		OptionB:       "b",
		OptionC:       "c",
		CorrectAnswer: "A",
	})
	require.True(t, errors.Is(err, domain.ErrInvalidInput), "got %v", err)

	_, err = f.questions.Create(context.Background(), app.QuestionInput{
		Text: "Bad answer", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", CorrectAnswer: "E",
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(nil)
	cache := memory.NewQuestionCache(store, time.Minute)
	questions := app.NewQuestionService(store, cache)

	q, err := questions.Create(ctx, app.QuestionInput{
		Text: "Q", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", CorrectAnswer: "A",
	})
	require.NoError(t, err)

	cached, err := cache.GetQuestion(ctx, q.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ChoiceA, cached.CorrectAnswer)

	_, err = questions.Update(ctx, q.ID, app.QuestionInput{
		Text: "Q", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d", CorrectAnswer: "D",
	})
	require.NoError(t, err)

	cached, err = cache.GetQuestion(ctx, q.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ChoiceD, cached.CorrectAnswer)

	require.NoError(t, questions.Delete(ctx, q.ID))
	_, err = cache.GetQuestion(ctx, q.ID)
	require.ErrorIs(t, err, domain.ErrQuestionNotFound)
	require.ErrorIs(t, questions.Delete(ctx, q.ID), domain.ErrQuestionNotFound)
}
