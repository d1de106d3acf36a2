package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"trivia-quiz/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

// HighScoreStore keeps best scores in a local SQLite file, for terminal play
// without any server around.
type HighScoreStore struct {
	db *sql.DB
}

func NewHighScoreStore(dbPath string) (*HighScoreStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &HighScoreStore{db: db}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *HighScoreStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS high_scores (
		key TEXT PRIMARY KEY,
		score INTEGER NOT NULL CHECK (score >= 0),
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *HighScoreStore) Get(ctx context.Context, category string) (int, bool, error) {
	var score int
	err := s.db.QueryRowContext(ctx,
		`SELECT score FROM high_scores WHERE key = ?`,
		domain.HighScoreKey(category),
	).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get high score: %w", err)
	}
	return score, true, nil
}

// Set upserts with MAX so the stored value never goes down.
func (s *HighScoreStore) Set(ctx context.Context, category string, score int) error {
	if score < 0 {
		return fmt.Errorf("negative high score %d", score)
	}
	query := `
		INSERT INTO high_scores (key, score) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET
			score = MAX(high_scores.score, excluded.score),
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, query, domain.HighScoreKey(category), score); err != nil {
		return fmt.Errorf("set high score: %w", err)
	}
	return nil
}

func (s *HighScoreStore) Close() error {
	return s.db.Close()
}
