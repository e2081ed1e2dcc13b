package session

import (
	"fmt"
	"time"
)

// Ticker is a cancellable periodic signal.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker is the TickerFunc backed by time.NewTicker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Clock counts whole seconds down (or up) while running. The owner drains
// C() and calls Tick for each value received; C() is nil while stopped, so
// a select on it blocks until the clock runs again.
type Clock struct {
	initial   int
	remaining int
	countDown bool
	running   bool
	period    time.Duration
	newTicker TickerFunc
	ticker    Ticker
	onTimeUp  func()
}

// ClockOption configures a Clock.
type ClockOption func(*Clock)

// WithCountUp makes the clock count elapsed seconds instead of remaining ones.
func WithCountUp() ClockOption {
	return func(c *Clock) { c.countDown = false }
}

// WithTicker replaces the ticker factory, mainly for tests.
func WithTicker(f TickerFunc) ClockOption {
	return func(c *Clock) { c.newTicker = f }
}

// WithOnTimeUp sets the expiry handler.
func WithOnTimeUp(f func()) ClockOption {
	return func(c *Clock) { c.onTimeUp = f }
}

// NewClock returns a stopped countdown starting at initialSeconds.
func NewClock(initialSeconds int, opts ...ClockOption) *Clock {
	c := &Clock{
		initial:   initialSeconds,
		remaining: initialSeconds,
		countDown: true,
		period:    time.Second,
		newTicker: NewTimeTicker,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetOnTimeUp swaps the expiry handler without touching the schedule.
func (c *Clock) SetOnTimeUp(f func()) {
	c.onTimeUp = f
}

// Start begins ticking. It is a no-op while running, and for a countdown
// that has already reached zero.
func (c *Clock) Start() {
	if c.running || (c.countDown && c.remaining <= 0) {
		return
	}
	c.running = true
	c.ticker = c.newTicker(c.period)
}

// Pause stops ticking and keeps the remaining value.
func (c *Clock) Pause() {
	if !c.running {
		return
	}
	c.stopTicker()
	c.running = false
}

// Reset stops the clock and restores the initial value.
func (c *Clock) Reset() {
	c.ResetTo(c.initial)
}

// ResetTo stops the clock and sets the value to seconds. The initial value
// used by Reset is unchanged.
func (c *Clock) ResetTo(seconds int) {
	c.stopTicker()
	c.running = false
	c.remaining = seconds
}

// Stop releases the ticker. Call it when the owner goes away.
func (c *Clock) Stop() {
	c.Pause()
}

// Tick advances the clock by one second. Ticks delivered while stopped are
// ignored, which keeps the expiry handler to one call per countdown.
func (c *Clock) Tick() {
	if !c.running {
		return
	}
	if !c.countDown {
		c.remaining++
		return
	}
	c.remaining--
	if c.remaining > 0 {
		return
	}
	c.remaining = 0
	c.stopTicker()
	c.running = false
	if c.onTimeUp != nil {
		c.onTimeUp()
	}
}

// C is the tick channel, nil while stopped.
func (c *Clock) C() <-chan time.Time {
	if c.ticker == nil {
		return nil
	}
	return c.ticker.C()
}

// Running reports whether the clock is ticking.
func (c *Clock) Running() bool {
	return c.running
}

// Remaining returns the current value in seconds.
func (c *Clock) Remaining() int {
	return c.remaining
}

// Formatted returns the value as m:ss.
func (c *Clock) Formatted() string {
	return FormatSeconds(c.remaining)
}

func (c *Clock) stopTicker() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
}

// FormatSeconds renders total seconds as minutes:seconds with two-digit seconds.
func FormatSeconds(total int) string {
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
