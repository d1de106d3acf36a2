package app

import (
	"time"

	"trivia-quiz/internal/domain"
)

// Countdown is the per-question timer. It does not own a clock: each call to
// Tick consumes one second, so the caller decides where seconds come from.
// Countdown is not safe for concurrent use; Session guards it with its own lock.
type Countdown struct {
	remaining  int
	active     bool
	generation uint64
	onTick     func(remaining int)
	onExpire   func()
}

// Start begins a run of the given length and immediately reports the full value.
func (c *Countdown) Start(seconds int, onTick func(remaining int), onExpire func()) error {
	if seconds <= 0 {
		return domain.ErrInvalidDuration
	}
	if c.active {
		return domain.ErrTimerActive
	}
	c.generation++
	c.remaining = seconds
	c.active = true
	c.onTick = onTick
	c.onExpire = onExpire
	if c.onTick != nil {
		c.onTick(c.remaining)
	}
	return nil
}

// Tick consumes one second. At zero it fires onExpire once and goes inert.
func (c *Countdown) Tick() {
	if !c.active {
		return
	}
	c.remaining--
	if c.onTick != nil {
		c.onTick(c.remaining)
	}
	if c.remaining > 0 {
		return
	}
	expire := c.onExpire
	c.stop()
	if expire != nil {
		expire()
	}
}

// Cancel stops the current run. Safe to call repeatedly.
func (c *Countdown) Cancel() {
	c.stop()
}

func (c *Countdown) stop() {
	c.active = false
	c.onTick = nil
	c.onExpire = nil
}

func (c *Countdown) Active() bool { return c.active }

func (c *Countdown) Remaining() int { return c.remaining }

func (c *Countdown) Generation() uint64 { return c.generation }

// Ticker is the timing source driving a Countdown in real time.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a ticker firing every d.
type TickerFactory func(d time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }

func (r realTicker) Stop() { r.t.Stop() }

// RealTicker is the wall-clock TickerFactory.
func RealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}
