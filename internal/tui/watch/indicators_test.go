package watch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickerAlternates(t *testing.T) {
	tk := NewTicker()
	first := tk.Current()
	tk.Tick()
	assert.NotEqual(t, first, tk.Current())
	tk.Tick()
	assert.Equal(t, first, tk.Current())
}

func TestSpinnerDecay(t *testing.T) {
	var s Spinner

	// No events yet: decay is a no-op on the dark state.
	s.Decay()
	assert.Equal(t, 0, s.dots)

	s.OnEvent()
	assert.Equal(t, spinnerDots, s.dots)

	s.lastEvent = time.Now().Add(-5 * time.Second)
	s.Decay()
	assert.Equal(t, 3, s.dots)

	s.lastEvent = time.Now().Add(-time.Minute)
	s.Decay()
	assert.Equal(t, 0, s.dots)
}
