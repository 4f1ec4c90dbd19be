package cli

import (
	"context"
	"fmt"
	"os"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/config"
	"live-quiz-service/internal/infra/postgres"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type seedQuestion struct {
	Text    string `yaml:"text"`
	A       string `yaml:"a"`
	B       string `yaml:"b"`
	C       string `yaml:"c"`
	D       string `yaml:"d"`
	Correct string `yaml:"correct"`
}

func (q seedQuestion) input() app.QuestionInput {
	return app.QuestionInput{
		Text:          q.Text,
		OptionA:       q.A,
		OptionB:       q.B,
		OptionC:       q.C,
		OptionD:       q.D,
		CorrectAnswer: q.Correct,
	}
}

// NewSeedCmd appends questions from a YAML file to the database.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load questions from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Log.Level)
			if err := runMigrationsWithConfig(cmd.Context(), cfg, logger); err != nil {
				return err
			}
			questions, err := readSeedFile(file)
			if err != nil {
				return err
			}

			db := postgres.Open(cfg.Postgres.URL)
			defer db.Close()
			svc := app.NewQuestionService(postgres.NewStore(db), nil)
			n, err := seedQuestions(cmd.Context(), svc, questions)
			if err != nil {
				return err
			}
			logger.Info("questions seeded", "count", n, "file", file)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "questions.yaml", "YAML file with a list of questions")
	return cmd
}

func readSeedFile(path string) ([]seedQuestion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var questions []seedQuestion
	if err := yaml.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return questions, nil
}

func seedQuestions(ctx context.Context, svc *app.QuestionService, questions []seedQuestion) (int, error) {
	for i, q := range questions {
		if _, err := svc.Create(ctx, q.input()); err != nil {
			return i, fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return len(questions), nil
}

// sampleQuestions seeds the in-memory store so the service is usable without a database.
func sampleQuestions() []seedQuestion {
	return []seedQuestion{
		{Text: "What is 2 + 2?", A: "3", B: "4", C: "5", D: "22", Correct: "B"},
		{Text: "Which planet is known as the Red Planet?", A: "Venus", B: "Jupiter", C: "Mars", D: "Mercury", Correct: "C"},
		{Text: "How many continents are there?", A: "7", B: "5", C: "6", D: "8", Correct: "A"},
	}
}
