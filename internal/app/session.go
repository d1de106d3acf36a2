package app

import (
	"context"
	"slices"
	"sync"

	"trivia-quiz/internal/domain"
)

// Session is one attempt at a category's questions. All transitions go
// through its methods; the embedded Countdown is only touched under mu.
//
// The history holds one entry per opened question, so while the session is in
// progress the open (or just resolved) question is history[index].
type Session struct {
	mu       sync.Mutex
	bank     QuestionBank
	shuffler Shuffler
	timer    Countdown
	listener func(domain.Event)

	category  string
	seconds   int
	questions []domain.Question
	index     int
	score     int
	history   []domain.QuestionState
	phase     domain.Phase
	remaining int
	consumed  bool
}

func NewSession(bank QuestionBank, shuffler Shuffler) *Session {
	return &Session{
		bank:     bank,
		shuffler: shuffler,
		phase:    domain.PhaseNotStarted,
	}
}

// OnEvent registers a listener called synchronously on every transition.
// The listener runs with the session locked and must not call back into it.
func (s *Session) OnEvent(fn func(domain.Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = fn
}

// Begin loads and shuffles the category, opens the first question and starts its timer.
// On error the session stays untouched.
func (s *Session) Begin(ctx context.Context, category string, seconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseNotStarted {
		return domain.ErrSessionAlreadyStarted
	}
	if category == "" || category == domain.NoCategory {
		return domain.ErrNoCategorySelected
	}
	if seconds <= 0 {
		return domain.ErrInvalidDuration
	}

	questions, err := s.bank.QuestionsFor(ctx, category)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return domain.ErrEmptyCategory
	}

	s.category = category
	s.seconds = seconds
	s.questions = s.shuffler.Shuffle(questions)
	s.index = 0
	s.score = 0
	s.history = make([]domain.QuestionState, 0, len(s.questions))
	s.phase = domain.PhaseInProgress
	return s.openLocked()
}

func (s *Session) openLocked() error {
	s.history = append(s.history, domain.QuestionState{
		Question: s.questions[s.index],
		Outcome:  domain.OutcomePending,
	})
	s.remaining = s.seconds
	s.emitLocked(domain.EventQuestion, nil)

	index := s.index
	s.timer.Cancel()
	return s.timer.Start(s.seconds,
		func(remaining int) {
			s.remaining = remaining
			s.emitLocked(domain.EventTick, nil)
		},
		func() { s.expireLocked(index) },
	)
}

// CurrentQuestion returns the open question.
func (s *Session) CurrentQuestion() (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.PhaseInProgress {
		return domain.Question{}, domain.ErrSessionNotActive
	}
	q := s.questions[s.index]
	q.Choices = slices.Clone(q.Choices)
	return q, nil
}

// SubmitAnswer resolves the open question. Only the first resolution counts.
func (s *Session) SubmitAnswer(choice string) (domain.AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseInProgress {
		return domain.AnswerResult{}, domain.ErrSessionNotActive
	}
	current := &s.history[s.index]
	if current.Outcome != domain.OutcomePending {
		return domain.AnswerResult{}, domain.ErrAnswerAlreadyRecorded
	}

	s.timer.Cancel()
	current.Selected = choice
	if choice == current.Question.CorrectChoice {
		current.Outcome = domain.OutcomeCorrect
		s.score++
	} else {
		current.Outcome = domain.OutcomeIncorrect
	}

	result := domain.AnswerResult{
		Outcome:       current.Outcome,
		Selected:      choice,
		CorrectChoice: current.Question.CorrectChoice,
		Score:         s.score,
	}
	s.emitLocked(domain.EventAnswered, &result)
	return result, nil
}

// TimerExpired marks the open question as timed out. When the question was
// already answered it does nothing: whichever resolution came first wins.
func (s *Session) TimerExpired() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.PhaseInProgress {
		return domain.ErrSessionNotActive
	}
	s.expireLocked(s.index)
	return nil
}

func (s *Session) expireLocked(index int) {
	if s.phase != domain.PhaseInProgress || index != s.index {
		return
	}
	current := &s.history[s.index]
	if current.Outcome != domain.OutcomePending {
		return
	}
	s.timer.Cancel()
	current.Outcome = domain.OutcomeTimedOut
	s.remaining = 0

	result := domain.AnswerResult{
		Outcome:       domain.OutcomeTimedOut,
		CorrectChoice: current.Question.CorrectChoice,
		Score:         s.score,
	}
	s.emitLocked(domain.EventTimeout, &result)
}

// Advance moves past a resolved question, finishing the session after the last one.
func (s *Session) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseInProgress {
		return domain.ErrSessionNotActive
	}
	if s.history[s.index].Outcome == domain.OutcomePending {
		return domain.ErrQuestionStillPending
	}

	s.index++
	if s.index < len(s.questions) {
		return s.openLocked()
	}
	s.timer.Cancel()
	s.phase = domain.PhaseFinished
	s.remaining = 0
	s.emitLocked(domain.EventFinished, nil)
	return nil
}

// Tick feeds one second from the timing source into the countdown.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer.Tick()
}

// ProgressFraction is index/total while running, 0 before and 1 after.
func (s *Session) ProgressFraction() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progressLocked()
}

func (s *Session) progressLocked() float64 {
	switch s.phase {
	case domain.PhaseInProgress:
		return float64(s.index) / float64(len(s.questions))
	case domain.PhaseFinished:
		return 1
	default:
		return 0
	}
}

func (s *Session) View() domain.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() domain.View {
	v := domain.View{
		Category:  s.category,
		Phase:     s.phase,
		Index:     s.index,
		Total:     len(s.questions),
		Remaining: s.remaining,
		Progress:  s.progressLocked(),
		Score:     s.score,
	}
	if s.phase != domain.PhaseInProgress {
		return v
	}
	current := s.history[s.index]
	v.Prompt = current.Question.Prompt
	v.Choices = slices.Clone(current.Question.Choices)
	v.Outcome = current.Outcome
	v.Selected = current.Selected
	if current.Outcome != domain.OutcomePending {
		v.CorrectChoice = current.Question.CorrectChoice
	}
	return v
}

func (s *Session) emitLocked(typ domain.EventType, answer *domain.AnswerResult) {
	if s.listener == nil {
		return
	}
	s.listener(domain.Event{Type: typ, View: s.viewLocked(), Answer: answer})
}

// History returns a copy of every opened question and its outcome.
func (s *Session) History() []domain.QuestionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.QuestionState, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

func (s *Session) Phase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) Category() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.category
}

// timerState lets a driver align its ticker with the countdown run.
func (s *Session) timerState() (active bool, generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer.Active(), s.timer.Generation()
}
