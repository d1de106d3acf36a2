package app

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"trivia-quiz/internal/domain"

	"github.com/go-playground/validator/v10"
)

// QuestionBank resolves a category to its ordered questions.
type QuestionBank interface {
	QuestionsFor(ctx context.Context, category string) ([]domain.Question, error)
	Categories(ctx context.Context) ([]string, error)
}

// HighScoreStore persists the best score per category.
// Get reports false when the category has never been scored.
type HighScoreStore interface {
	Get(ctx context.Context, category string) (int, bool, error)
	Set(ctx context.Context, category string, score int) error
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func questionValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterStructValidation(func(sl validator.StructLevel) {
			q := sl.Current().Interface().(domain.Question)
			if !slices.Contains(q.Choices, q.CorrectChoice) {
				sl.ReportError(q.CorrectChoice, "CorrectChoice", "CorrectChoice", "choice", "")
			}
		}, domain.Question{})
	})
	return validate
}

// ValidateQuestions checks every question of a category: at least two unique
// choices and a correct choice that is one of them.
func ValidateQuestions(category string, questions []domain.Question) error {
	v := questionValidator()
	for i, q := range questions {
		if err := v.Struct(q); err != nil {
			return fmt.Errorf("%w: %s[%d]: %v", domain.ErrInvalidQuestion, category, i, err)
		}
	}
	return nil
}

// CloneQuestions returns a deep copy so callers never share choice slices with a bank.
func CloneQuestions(questions []domain.Question) []domain.Question {
	out := make([]domain.Question, len(questions))
	for i, q := range questions {
		q.Choices = slices.Clone(q.Choices)
		out[i] = q
	}
	return out
}
