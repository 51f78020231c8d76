package watch

import (
	"strings"
	"time"
)

// Ticker alternates between a pair of arrows once per tick so a frozen
// daemon is visible at a glance: the arrow stops turning.
type Ticker struct {
	flip bool
}

func NewTicker() Ticker {
	return Ticker{}
}

func (t *Ticker) Tick() {
	t.flip = !t.flip
}

func (t Ticker) Current() string {
	if t.flip {
		return "⟳"
	}
	return "⟲"
}

const spinnerDots = 5

// Spinner is the activity gauge: every event lights all dots, then one dot
// fades every two seconds of silence.
type Spinner struct {
	dots      int
	lastEvent time.Time
}

func NewSpinner() Spinner {
	return Spinner{}
}

func (s *Spinner) OnEvent() {
	s.dots = spinnerDots
	s.lastEvent = time.Now()
}

// Decay recomputes the lit dot count from the time since the last event.
func (s *Spinner) Decay() {
	if s.lastEvent.IsZero() {
		return
	}
	lit := spinnerDots - int(time.Since(s.lastEvent)/(2*time.Second))
	if lit < 0 {
		lit = 0
	}
	s.dots = lit
}

func (s Spinner) Render(theme Theme) string {
	return strings.Repeat(theme.TickerActive.Render("●"), s.dots) +
		strings.Repeat(theme.TickerInactive.Render("○"), spinnerDots-s.dots)
}

func (s Spinner) LastEvent() time.Time {
	return s.lastEvent
}
