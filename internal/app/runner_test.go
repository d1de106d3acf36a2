package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"trivia-quiz/internal/domain"
)

// barrier returns once the runner has processed everything sent before it.
func barrier(t *testing.T, r *Runner) {
	t.Helper()
	if err := r.Do(func(*Session) error { return nil }); err != nil {
		t.Fatalf("barrier: %v", err)
	}
}

func nextTicker(t *testing.T, mt *manualTicker) *fakeTicker {
	t.Helper()
	select {
	case ft := <-mt.made:
		return ft
	case <-time.After(2 * time.Second):
		t.Fatalf("runner did not create a ticker")
		return nil
	}
}

func TestRunnerTicksExpireQuestion(t *testing.T) {
	mt := newManualTicker()
	r := NewRunner("r1", begin(t, "science", 2), mt.factory)
	defer r.Stop()

	ft := nextTicker(t, mt)
	ft.ch <- time.Now()
	ft.ch <- time.Now()
	barrier(t, r)

	v := r.View()
	if v.Outcome != domain.OutcomeTimedOut || v.Remaining != 0 {
		t.Fatalf("expected timeout, got %+v", v)
	}
	if !ft.isStopped() {
		t.Fatalf("ticker should be parked once the countdown expired")
	}
	if _, err := r.Submit("Mars"); !errors.Is(err, domain.ErrAnswerAlreadyRecorded) {
		t.Fatalf("late submit: %v", err)
	}
}

func TestRunnerRealignsTickerPerQuestion(t *testing.T) {
	mt := newManualTicker()
	r := NewRunner("r1", begin(t, "science", 5), mt.factory)
	defer r.Stop()

	first := nextTicker(t, mt)
	first.ch <- time.Now()
	barrier(t, r)

	res, err := r.Submit("Mars")
	if err != nil || res.Outcome != domain.OutcomeCorrect {
		t.Fatalf("submit: %+v %v", res, err)
	}
	barrier(t, r)
	if !first.isStopped() {
		t.Fatalf("ticker still running after answer")
	}

	view, err := r.Advance()
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if view.Index != 1 || view.Remaining != 5 {
		t.Fatalf("unexpected view after advance: %+v", view)
	}
	second := nextTicker(t, mt)
	if second == first {
		t.Fatalf("expected a fresh ticker for the new question")
	}
	second.ch <- time.Now()
	barrier(t, r)
	if got := r.View().Remaining; got != 4 {
		t.Fatalf("remaining = %d, want 4", got)
	}
}

func TestRunnerBroadcastsEvents(t *testing.T) {
	mt := newManualTicker()
	r := NewRunner("r1", begin(t, "single", 5), mt.factory)
	defer r.Stop()

	events, cancel := r.Subscribe()
	defer cancel()

	initial := <-events
	if initial.Type != domain.EventQuestion || initial.View.Prompt != "2 + 2?" {
		t.Fatalf("unexpected snapshot: %+v", initial)
	}

	if _, err := r.Submit("3"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	answered := <-events
	if answered.Type != domain.EventAnswered || answered.Answer == nil || answered.Answer.CorrectChoice != "4" {
		t.Fatalf("unexpected answer event: %+v", answered)
	}

	if _, err := r.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	finished := <-events
	if finished.Type != domain.EventFinished || finished.View.Phase != domain.PhaseFinished {
		t.Fatalf("unexpected finish event: %+v", finished)
	}

	store := newMapStore()
	res, err := r.Finalize(context.Background(), store)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if res.Score != 0 || res.Total != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestRunnerSubscribeMidCountdownMissesNothing(t *testing.T) {
	for i := 0; i < 50; i++ {
		mt := newManualTicker()
		r := NewRunner("r1", begin(t, "science", 30), mt.factory)
		ft := nextTicker(t, mt)

		ticked := make(chan struct{})
		go func() {
			defer close(ticked)
			for n := 0; n < 5; n++ {
				ft.ch <- time.Now()
			}
		}()
		events, cancel := r.Subscribe()
		<-ticked
		barrier(t, r)

		var got []domain.Event
	drain:
		for {
			select {
			case ev := <-events:
				got = append(got, ev)
			default:
				break drain
			}
		}
		if len(got) == 0 || got[0].Type != domain.EventQuestion {
			t.Fatalf("run %d: expected snapshot first, got %+v", i, got)
		}
		want := got[0].View.Remaining
		for _, ev := range got[1:] {
			want--
			if ev.Type != domain.EventTick || ev.View.Remaining != want {
				t.Fatalf("run %d: expected tick at %ds after snapshot %ds, got %+v", i, want, got[0].View.Remaining, ev)
			}
		}
		if want != 25 {
			t.Fatalf("run %d: stream ends at %ds, want 25s", i, want)
		}
		cancel()
		r.Stop()
	}
}

func TestRunnerStop(t *testing.T) {
	mt := newManualTicker()
	r := NewRunner("r1", begin(t, "science", 5), mt.factory)
	ft := nextTicker(t, mt)

	events, cancel := r.Subscribe()
	<-events

	r.Stop()
	r.Stop()
	cancel()

	if _, ok := <-events; ok {
		t.Fatalf("expected subscription closed")
	}
	if _, err := r.Submit("Mars"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected stopped runner to reject commands, got %v", err)
	}
	if !ft.isStopped() {
		t.Fatalf("ticker not released on stop")
	}
	select {
	case <-r.Done():
	default:
		t.Fatalf("done not closed")
	}
}

func TestRunnerIdleTracking(t *testing.T) {
	now := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	r := NewRunnerWithClock("r1", begin(t, "science", 5), newManualTicker().factory, clock)
	defer r.Stop()

	now = now.Add(3 * time.Minute)
	if got := r.IdleFor(); got != 3*time.Minute {
		t.Fatalf("idle = %v, want 3m", got)
	}
	barrier(t, r)
	if got := r.IdleFor(); got != 0 {
		t.Fatalf("idle after command = %v, want 0", got)
	}
}
