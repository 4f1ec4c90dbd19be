package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/infra/memory"
)

func TestSeedQuestionsFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.yaml")
	body := `
- text: "What is 2 + 2?"
  a: "3"
  b: "4"
  c: "5"
  d: "22"
  correct: B
- text: "Capital of Japan?"
  a: Kyoto
  b: Osaka
  c: Tokyo
  d: Nara
  correct: C
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	questions, err := readSeedFile(path)
	if err != nil {
		t.Fatalf("read seed file: %v", err)
	}

	store := memory.NewStore(nil)
	svc := app.NewQuestionService(store, nil)
	n, err := seedQuestions(context.Background(), svc, questions)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 seeded, got %d %v", n, err)
	}
	list, _ := svc.List(context.Background())
	if len(list) != 2 || list[1].CorrectAnswer != domain.ChoiceC || list[1].OrderIndex != 2 {
		t.Fatalf("unexpected questions %+v", list)
	}
}

func TestSeedRejectsInvalidQuestion(t *testing.T) {
	svc := app.NewQuestionService(memory.NewStore(nil), nil)
	_, err := seedQuestions(context.Background(), svc, []seedQuestion{{Text: "no options", Correct: "A"}})
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestSampleQuestionsAreValid(t *testing.T) {
	svc := app.NewQuestionService(memory.NewStore(nil), nil)
	if _, err := seedQuestions(context.Background(), svc, sampleQuestions()); err != nil {
		t.Fatalf("sample questions: %v", err)
	}
}
