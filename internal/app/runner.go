package app

import (
	"context"
	"sync"
	"time"

	"trivia-quiz/internal/domain"
)

// Runner drives one session from a single goroutine: commands and timer ticks
// are applied in the order they arrive, so answer-vs-timeout races resolve
// deterministically.
type Runner struct {
	id        string
	session   *Session
	newTicker TickerFactory
	interval  time.Duration
	now       func() time.Time

	cmds     chan func()
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	mu          sync.Mutex
	lastActive  time.Time
	subscribers map[chan domain.Event]struct{}
}

// NewRunner starts the driver loop for an already begun session.
func NewRunner(id string, session *Session, newTicker TickerFactory) *Runner {
	return NewRunnerWithClock(id, session, newTicker, time.Now)
}

// NewRunnerWithClock allows deterministic idle tracking in tests.
func NewRunnerWithClock(id string, session *Session, newTicker TickerFactory, now func() time.Time) *Runner {
	if newTicker == nil {
		newTicker = RealTicker
	}
	r := &Runner{
		id:          id,
		session:     session,
		newTicker:   newTicker,
		interval:    time.Second,
		now:         now,
		cmds:        make(chan func()),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
		lastActive:  now(),
		subscribers: make(map[chan domain.Event]struct{}),
	}
	session.OnEvent(r.broadcast)
	go r.loop()
	return r
}

func (r *Runner) ID() string { return r.id }

func (r *Runner) loop() {
	defer close(r.done)

	var (
		ticker     Ticker
		ticks      <-chan time.Time
		generation uint64
	)
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, ticks = nil, nil
		}
	}
	defer stopTicker()

	// A fresh countdown run gets a fresh ticker so its first second is a full one.
	align := func() {
		active, gen := r.session.timerState()
		if !active {
			stopTicker()
			return
		}
		if ticker == nil || gen != generation {
			stopTicker()
			ticker = r.newTicker(r.interval)
			ticks = ticker.C()
			generation = gen
		}
	}

	align()
	for {
		select {
		case <-r.quit:
			return
		case cmd := <-r.cmds:
			cmd()
			align()
		case <-ticks:
			r.session.Tick()
			align()
		}
	}
}

// Do runs fn against the session on the driver goroutine.
func (r *Runner) Do(fn func(s *Session) error) error {
	errc := make(chan error, 1)
	select {
	case r.cmds <- func() { errc <- fn(r.session) }:
	case <-r.done:
		return domain.ErrSessionNotFound
	}
	r.touch()
	return <-errc
}

func (r *Runner) Submit(choice string) (domain.AnswerResult, error) {
	var result domain.AnswerResult
	err := r.Do(func(s *Session) error {
		var err error
		result, err = s.SubmitAnswer(choice)
		return err
	})
	return result, err
}

func (r *Runner) Advance() (domain.View, error) {
	var view domain.View
	err := r.Do(func(s *Session) error {
		if err := s.Advance(); err != nil {
			return err
		}
		view = s.View()
		return nil
	})
	return view, err
}

func (r *Runner) Finalize(ctx context.Context, store HighScoreStore) (domain.Result, error) {
	var result domain.Result
	err := r.Do(func(s *Session) error {
		var err error
		result, err = Finalize(ctx, s, store)
		return err
	})
	return result, err
}

// View reads the session state without going through the driver loop.
func (r *Runner) View() domain.View {
	return r.session.View()
}

// Subscribe returns a channel of session events, starting with a snapshot of
// the current question. The snapshot and the registration happen on the driver
// goroutine, so no event falls between them. The caller must invoke the
// returned cancel function.
func (r *Runner) Subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, 8)
	registered := make(chan struct{})
	register := func() {
		defer close(registered)
		ch <- domain.Event{Type: domain.EventQuestion, View: r.session.View()}
		r.mu.Lock()
		r.subscribers[ch] = struct{}{}
		r.mu.Unlock()
	}

	select {
	case r.cmds <- register:
		<-registered
	case <-r.done:
		close(ch)
		return ch, func() {}
	}

	cancel := func() {
		r.mu.Lock()
		if _, ok := r.subscribers[ch]; ok {
			delete(r.subscribers, ch)
			close(ch)
		}
		r.mu.Unlock()
	}
	return ch, cancel
}

func (r *Runner) broadcast(ev domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ch := range r.subscribers {
		select {
		case ch <- ev:
		default:
			// slow subscriber: drop its oldest event rather than stall the driver
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

// IdleFor reports how long ago the last command was issued.
func (r *Runner) IdleFor() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now().Sub(r.lastActive)
}

func (r *Runner) touch() {
	r.mu.Lock()
	r.lastActive = r.now()
	r.mu.Unlock()
}

// Stop terminates the driver loop and closes every subscription. Idempotent.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		close(r.quit)
		<-r.done
		r.session.OnEvent(nil)

		r.mu.Lock()
		for ch := range r.subscribers {
			delete(r.subscribers, ch)
			close(ch)
		}
		r.mu.Unlock()
	})
}

// Done is closed once the driver loop has exited.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}
