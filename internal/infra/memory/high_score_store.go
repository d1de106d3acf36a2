package memory

import (
	"context"
	"sync"

	"trivia-quiz/internal/domain"
)

// HighScoreStore keeps best scores in process memory; nothing survives a restart.
type HighScoreStore struct {
	mu     sync.Mutex
	scores map[string]int
}

func NewHighScoreStore() *HighScoreStore {
	return &HighScoreStore{scores: make(map[string]int)}
}

func (s *HighScoreStore) Get(_ context.Context, category string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	score, ok := s.scores[domain.HighScoreKey(category)]
	return score, ok, nil
}

// Set only ever raises the stored value.
func (s *HighScoreStore) Set(_ context.Context, category string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := domain.HighScoreKey(category)
	if current, ok := s.scores[key]; ok && current >= score {
		return nil
	}
	s.scores[key] = score
	return nil
}
