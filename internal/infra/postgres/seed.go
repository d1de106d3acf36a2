package postgres

import (
	"context"
	"fmt"
	"sort"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"

	"github.com/uptrace/bun"
)

type categoryRow struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	Name string            `bun:"name,pk"`
	Data []domain.Question `bun:"data,type:jsonb,notnull"`
}

// SeedCategories upserts every category, replacing the stored questions.
// Content is validated before anything is written.
func SeedCategories(ctx context.Context, db *bun.DB, categories map[string][]domain.Question) (int, error) {
	names := make([]string, 0, len(categories))
	for name, questions := range categories {
		if err := app.ValidateQuestions(name, questions); err != nil {
			return 0, err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]categoryRow, 0, len(names))
	for _, name := range names {
		rows = append(rows, categoryRow{Name: name, Data: categories[name]})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	_, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (name) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = now()").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed categories: %w", err)
	}
	return len(rows), nil
}
