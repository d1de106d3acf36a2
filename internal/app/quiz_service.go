package app

import (
	"context"
	"io"
	"time"

	"trivia-quiz/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultSecondsPerQuestion is the per-question time limit when none is configured.
const DefaultSecondsPerQuestion = 25

// SessionRepository abstracts where live session runners are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Put(r *Runner)
	Get(id string) (*Runner, bool)
	Delete(id string)
	List() []*Runner
}

// QuizService contains the quiz use cases shared by every transport.
type QuizService struct {
	bank      QuestionBank
	scores    HighScoreStore
	sessions  SessionRepository
	shuffler  Shuffler
	newTicker TickerFactory
	seconds   int
	log       logrus.FieldLogger
}

// Option customises a QuizService.
type Option func(*QuizService)

func WithShuffler(sh Shuffler) Option {
	return func(s *QuizService) { s.shuffler = sh }
}

func WithTicker(f TickerFactory) Option {
	return func(s *QuizService) { s.newTicker = f }
}

func WithSecondsPerQuestion(seconds int) Option {
	return func(s *QuizService) {
		if seconds > 0 {
			s.seconds = seconds
		}
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *QuizService) { s.log = log }
}

func NewQuizService(bank QuestionBank, scores HighScoreStore, sessions SessionRepository, opts ...Option) *QuizService {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &QuizService{
		bank:      bank,
		scores:    scores,
		sessions:  sessions,
		shuffler:  NewRandomShuffler(),
		newTicker: RealTicker,
		seconds:   DefaultSecondsPerQuestion,
		log:       discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Categories lists the selectable subjects.
func (s *QuizService) Categories(ctx context.Context) ([]string, error) {
	return s.bank.Categories(ctx)
}

// HighScore returns the stored best for a category; false when never scored.
func (s *QuizService) HighScore(ctx context.Context, category string) (int, bool, error) {
	return s.scores.Get(ctx, category)
}

// Start begins a session for category and hands it to a fresh runner.
// A non-positive seconds value selects the configured default.
func (s *QuizService) Start(ctx context.Context, category string, seconds int) (*Runner, error) {
	if seconds <= 0 {
		seconds = s.seconds
	}
	session := NewSession(s.bank, s.shuffler)
	if err := session.Begin(ctx, category, seconds); err != nil {
		return nil, err
	}

	runner := NewRunner(uuid.NewString(), session, s.newTicker)
	s.sessions.Put(runner)
	s.log.WithFields(logrus.Fields{
		"session":  runner.ID(),
		"category": category,
		"seconds":  seconds,
	}).Info("quiz session started")
	return runner, nil
}

// Get returns a live runner by id.
func (s *QuizService) Get(id string) (*Runner, error) {
	runner, ok := s.sessions.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return runner, nil
}

// Finish finalizes a finished session, records the best score and releases the runner.
func (s *QuizService) Finish(ctx context.Context, id string) (domain.Result, error) {
	runner, err := s.Get(id)
	if err != nil {
		return domain.Result{}, err
	}
	result, err := runner.Finalize(ctx, s.scores)
	if err != nil {
		return domain.Result{}, err
	}
	s.release(runner)
	s.log.WithFields(logrus.Fields{
		"session":  id,
		"category": result.Category,
		"score":    result.Score,
		"total":    result.Total,
		"newBest":  result.IsNewBest,
	}).Info("quiz session finished")
	return result, nil
}

// Abandon discards a session without persisting anything.
func (s *QuizService) Abandon(id string) {
	runner, ok := s.sessions.Get(id)
	if !ok {
		return
	}
	s.release(runner)
	s.log.WithField("session", id).Info("quiz session abandoned")
}

// Reap abandons sessions nobody has touched for maxIdle and returns how many were dropped.
func (s *QuizService) Reap(maxIdle time.Duration) int {
	reaped := 0
	for _, runner := range s.sessions.List() {
		if runner.IdleFor() < maxIdle {
			continue
		}
		s.release(runner)
		reaped++
	}
	if reaped > 0 {
		s.log.WithField("count", reaped).Info("reaped idle quiz sessions")
	}
	return reaped
}

func (s *QuizService) release(runner *Runner) {
	runner.Stop()
	s.sessions.Delete(runner.ID())
}
