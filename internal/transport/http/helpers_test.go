package http

import (
	"io"
	"testing"
	"time"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
	"trivia-quiz/internal/infra/memory"

	"github.com/sirupsen/logrus"
)

type keepOrder struct{}

func (keepOrder) Shuffle(qs []domain.Question) []domain.Question { return app.CloneQuestions(qs) }

type pushTicker struct{ ch chan time.Time }

func (p *pushTicker) C() <-chan time.Time { return p.ch }
func (p *pushTicker) Stop()               {}

// tickers hands every ticker the runners create to the test, in order.
type tickers struct{ made chan *pushTicker }

func newTickers() *tickers { return &tickers{made: make(chan *pushTicker, 64)} }

func (tk *tickers) factory(time.Duration) app.Ticker {
	p := &pushTicker{ch: make(chan time.Time)}
	tk.made <- p
	return p
}

func (tk *tickers) next(t *testing.T) *pushTicker {
	t.Helper()
	select {
	case p := <-tk.made:
		return p
	case <-time.After(2 * time.Second):
		t.Fatalf("no ticker created")
		return nil
	}
}

type fixture struct {
	service  *app.QuizService
	scores   *memory.HighScoreStore
	sessions *memory.SessionStore
	tickers  *tickers
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	bank, err := memory.NewStaticBank(map[string][]domain.Question{
		"quiz": {
			{Prompt: "2 + 2?", Choices: []string{"3", "4", "5"}, CorrectChoice: "4"},
			{Prompt: "Capital of France?", Choices: []string{"Paris", "Rome"}, CorrectChoice: "Paris"},
		},
		"empty": {},
	})
	if err != nil {
		t.Fatalf("bank: %v", err)
	}
	f := &fixture{
		scores:   memory.NewHighScoreStore(),
		sessions: memory.NewSessionStore(),
		tickers:  newTickers(),
	}
	f.service = app.NewQuizService(bank, f.scores, f.sessions,
		app.WithShuffler(keepOrder{}),
		app.WithTicker(f.tickers.factory),
		app.WithLogger(quietLogger()),
	)
	return f
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
