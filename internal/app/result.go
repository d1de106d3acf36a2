package app

import (
	"context"
	"fmt"
	"math"

	"trivia-quiz/internal/domain"
)

// CelebrationPercent is the score percentage that earns a celebration.
const CelebrationPercent = 60

// Finalize summarises a finished session and raises the category's best score
// when it was beaten. A session can be finalized once; the store write is the
// only side effect.
func Finalize(ctx context.Context, s *Session, store HighScoreStore) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseFinished {
		return domain.Result{}, domain.ErrSessionNotFinished
	}
	if s.consumed {
		return domain.Result{}, domain.ErrResultAlreadyFinalized
	}

	total := len(s.questions)
	percent := 0
	if total > 0 {
		percent = int(math.Round(100 * float64(s.score) / float64(total)))
	}

	previous, ok, err := store.Get(ctx, s.category)
	if err != nil {
		return domain.Result{}, fmt.Errorf("read high score: %w", err)
	}
	if !ok {
		previous = 0
	}

	result := domain.Result{
		Category:     s.category,
		Score:        s.score,
		Total:        total,
		Percent:      percent,
		PreviousBest: previous,
		UpdatedBest:  previous,
		Celebrate:    percent >= CelebrationPercent,
	}
	if s.score > previous {
		if err := store.Set(ctx, s.category, s.score); err != nil {
			return domain.Result{}, fmt.Errorf("write high score: %w", err)
		}
		result.IsNewBest = true
		result.UpdatedBest = s.score
	}

	s.consumed = true
	return result, nil
}
