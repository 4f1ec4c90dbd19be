package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"live-quiz-service/internal/domain"
)

func TestQuestionCacheCaches(t *testing.T) {
	loader := &countingLoader{question: sampleQuestion()}
	cache := NewQuestionCache(loader, time.Minute)

	if _, err := cache.GetQuestion(context.Background(), "q1"); err != nil {
		t.Fatalf("get question: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader once, got %d", loader.count())
	}

	if _, err := cache.GetQuestion(context.Background(), "q1"); err != nil {
		t.Fatalf("get question 2: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.count())
	}
}

func TestQuestionCacheInvalidate(t *testing.T) {
	loader := &countingLoader{question: sampleQuestion()}
	cache := NewQuestionCache(loader, time.Minute)

	if _, err := cache.GetQuestion(context.Background(), "q1"); err != nil {
		t.Fatalf("get question: %v", err)
	}
	cache.Invalidate(context.Background(), "q1")
	if _, err := cache.GetQuestion(context.Background(), "q1"); err != nil {
		t.Fatalf("get question after invalidate: %v", err)
	}
	if loader.count() != 2 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.count())
	}
}

func TestQuestionCacheExpires(t *testing.T) {
	loader := &countingLoader{question: sampleQuestion()}
	cache := NewQuestionCache(loader, time.Minute)
	now := time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }

	_, _ = cache.GetQuestion(context.Background(), "q1")
	now = now.Add(2 * time.Minute)
	_, _ = cache.GetQuestion(context.Background(), "q1")
	if loader.count() != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.count())
	}
}

func TestQuestionCacheMissingQuestion(t *testing.T) {
	cache := NewQuestionCache(NewStore(nil), time.Minute)
	if _, err := cache.GetQuestion(context.Background(), "nope"); err != domain.ErrQuestionNotFound {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

type countingLoader struct {
	mu       sync.Mutex
	calls    int
	question domain.Question
}

func (l *countingLoader) GetQuestion(_ context.Context, questionID string) (domain.Question, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if questionID != l.question.ID {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return l.question, nil
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func sampleQuestion() domain.Question {
	return domain.Question{
		ID:            "q1",
		Text:          "Where did the couple first meet?",
		OptionA:       "Library",
		OptionB:       "Ski trip",
		OptionC:       "Office",
		OptionD:       "Concert",
		CorrectAnswer: domain.ChoiceB,
		OrderIndex:    1,
	}
}
