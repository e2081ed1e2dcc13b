package session

// Interlock ties the clock to the fullscreen signal: the clock may only run
// while the phase is timed and fullscreen is active. Losing fullscreen
// pauses the clock and never resets it.
type Interlock struct {
	clock      *Clock
	fullscreen bool
}

// NewInterlock binds clock with fullscreen initially inactive.
func NewInterlock(clock *Clock) *Interlock {
	return &Interlock{clock: clock}
}

// Fullscreen reports the last known fullscreen state.
func (i *Interlock) Fullscreen() bool {
	return i.fullscreen
}

// SetFullscreen records a fullscreen notification. Only edges act on the clock.
func (i *Interlock) SetFullscreen(active bool, phase Phase) {
	if active == i.fullscreen {
		return
	}
	i.fullscreen = active
	i.Sync(phase)
}

// Sync starts or pauses the clock to match phase and the fullscreen state.
func (i *Interlock) Sync(phase Phase) {
	if phase.Timed() && i.fullscreen {
		i.clock.Start()
		return
	}
	i.clock.Pause()
}
