package app

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"trivia-quiz/internal/domain"
)

type fakeBank map[string][]domain.Question

func (b fakeBank) QuestionsFor(_ context.Context, category string) ([]domain.Question, error) {
	qs, ok := b[category]
	if !ok {
		return nil, domain.ErrUnknownCategory
	}
	return CloneQuestions(qs), nil
}

func (b fakeBank) Categories(context.Context) ([]string, error) {
	out := make([]string, 0, len(b))
	for name := range b {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// keepOrder leaves questions in bank order so tests can reason about positions.
type keepOrder struct{}

func (keepOrder) Shuffle(qs []domain.Question) []domain.Question { return CloneQuestions(qs) }

type mapStore struct {
	mu     sync.Mutex
	scores map[string]int
	writes int
}

func newMapStore() *mapStore { return &mapStore{scores: map[string]int{}} }

func (m *mapStore) Get(_ context.Context, category string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.scores[category]
	return v, ok, nil
}

func (m *mapStore) Set(_ context.Context, category string, score int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[category] = score
	m.writes++
	return nil
}

func q(prompt, answer string, others ...string) domain.Question {
	return domain.Question{
		Prompt:        prompt,
		Choices:       append([]string{answer}, others...),
		CorrectChoice: answer,
	}
}

func testBank() fakeBank {
	return fakeBank{
		"science": {
			q("What planet is known as the Red Planet?", "Mars", "Venus", "Jupiter", "Neptune"),
			q("Water's chemical formula?", "H2O", "CO2", "O2", "H2"),
			q("The powerhouse of the cell?", "Mitochondria", "Nucleus", "Ribosome", "Golgi body"),
			q("Light speed approx?", "300,000 km/s", "150,000 km/s", "1,000,000 km/s", "30,000 km/s"),
		},
		"history": {
			q("Which year did WW2 end?", "1945", "1939", "1918", "1950"),
			q("The Great Pyramid is in which country?", "Egypt", "Mexico", "Peru", "Iraq"),
			q("Who discovered America (commonly credited)?", "Christopher Columbus", "Vasco da Gama"),
			q("Which empire was ruled by Julius Caesar?", "Roman Empire", "Mongol Empire"),
		},
		"general": {
			q("What is the capital of France?", "Paris", "London", "Berlin", "Rome"),
			q("HTML stands for?", "HyperText Markup Language", "HighText", "HyperTrain"),
		},
		"single": {
			q("2 + 2?", "4", "3", "5"),
		},
		"empty": {},
	}
}

func begin(t testing.TB, category string, seconds int) *Session {
	t.Helper()
	s := NewSession(testBank(), keepOrder{})
	if err := s.Begin(context.Background(), category, seconds); err != nil {
		t.Fatalf("begin %s: %v", category, err)
	}
	return s
}

// manualTicker is a TickerFactory whose ticks are pushed by the test.
type manualTicker struct {
	mu      sync.Mutex
	created []*fakeTicker
	made    chan *fakeTicker
}

func newManualTicker() *manualTicker {
	return &manualTicker{made: make(chan *fakeTicker, 64)}
}

func (m *manualTicker) factory(time.Duration) Ticker {
	ft := &fakeTicker{ch: make(chan time.Time)}
	m.mu.Lock()
	m.created = append(m.created, ft)
	m.mu.Unlock()
	m.made <- ft
	return ft
}

func (m *manualTicker) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created)
}

type fakeTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }

func (f *fakeTicker) Stop() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

func (f *fakeTicker) isStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}
