package app

import (
	"math/rand"
	"sync"
	"time"

	"trivia-quiz/internal/domain"
)

// Shuffler produces the question order for one session.
type Shuffler interface {
	Shuffle(questions []domain.Question) []domain.Question
}

// RandomShuffler is a Fisher-Yates shuffle over a copy of its input.
type RandomShuffler struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomShuffler() *RandomShuffler {
	return NewSeededShuffler(time.Now().UnixNano())
}

// NewSeededShuffler is used by tests that need a reproducible order.
func NewSeededShuffler(seed int64) *RandomShuffler {
	return &RandomShuffler{rnd: rand.New(rand.NewSource(seed))}
}

func (s *RandomShuffler) Shuffle(questions []domain.Question) []domain.Question {
	shuffled := CloneQuestions(questions)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(shuffled) - 1; i > 0; i-- {
		j := s.rnd.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}
