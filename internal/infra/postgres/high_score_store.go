package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"trivia-quiz/internal/domain"

	"github.com/uptrace/bun"
)

type highScoreRow struct {
	bun.BaseModel `bun:"table:high_scores,alias:hs"`

	Key   string `bun:"key,pk"`
	Score int    `bun:"score,notnull"`
}

// HighScoreStore keeps best scores in the high_scores table, keyed like the
// other stores (quiz_high_{category}).
type HighScoreStore struct {
	db *bun.DB
}

func NewHighScoreStore(db *bun.DB) *HighScoreStore {
	return &HighScoreStore{db: db}
}

func (s *HighScoreStore) Get(ctx context.Context, category string) (int, bool, error) {
	var row highScoreRow
	err := s.db.NewSelect().
		Model(&row).
		Where("hs.key = ?", domain.HighScoreKey(category)).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get high score: %w", err)
	}
	return row.Score, true, nil
}

// Set upserts with GREATEST so the stored value never goes down.
func (s *HighScoreStore) Set(ctx context.Context, category string, score int) error {
	if score < 0 {
		return fmt.Errorf("negative high score %d", score)
	}
	row := highScoreRow{Key: domain.HighScoreKey(category), Score: score}
	_, err := s.db.NewInsert().
		Model(&row).
		On("CONFLICT (key) DO UPDATE").
		Set("score = GREATEST(hs.score, EXCLUDED.score)").
		Set("updated_at = now()").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("set high score: %w", err)
	}
	return nil
}
