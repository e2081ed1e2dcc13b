package session

import "testing"

func TestInterlockStartsOnlyInFullscreen(t *testing.T) {
	clock := NewClock(30, WithTicker((&stubTickers{}).New))
	lock := NewInterlock(clock)

	// Entering fullscreen failed: the flag never turned true.
	lock.Sync(PhaseRunning)
	if clock.Running() {
		t.Fatalf("clock started without fullscreen")
	}

	lock.SetFullscreen(true, PhaseRunning)
	if !clock.Running() {
		t.Fatalf("clock should run once fullscreen is active")
	}
}

func TestInterlockFullscreenLossPauses(t *testing.T) {
	clock := NewClock(30, WithTicker((&stubTickers{}).New))
	lock := NewInterlock(clock)
	lock.SetFullscreen(true, PhaseRunning)

	clock.Tick()
	lock.SetFullscreen(false, PhaseRunning)
	if clock.Running() || clock.Remaining() != 29 {
		t.Fatalf("expected paused at 29, got running=%v remaining=%d", clock.Running(), clock.Remaining())
	}

	lock.SetFullscreen(true, PhaseRunning)
	if !clock.Running() || clock.Remaining() != 29 {
		t.Fatalf("expected resumed at 29, got running=%v remaining=%d", clock.Running(), clock.Remaining())
	}
	clock.Tick()
	if clock.Remaining() != 28 {
		t.Fatalf("expected 28 after one running tick, got %d", clock.Remaining())
	}
}

func TestInterlockIgnoresRepeatedSignals(t *testing.T) {
	tickers := &stubTickers{}
	clock := NewClock(30, WithTicker(tickers.New))
	lock := NewInterlock(clock)

	lock.SetFullscreen(true, PhaseRunning)
	lock.SetFullscreen(true, PhaseRunning)
	if len(tickers.created) != 1 {
		t.Fatalf("repeated true signal restarted the clock")
	}
}

func TestInterlockOutsideTimedPhases(t *testing.T) {
	clock := NewClock(30, WithTicker((&stubTickers{}).New))
	lock := NewInterlock(clock)

	lock.SetFullscreen(true, PhaseIntro)
	if clock.Running() {
		t.Fatalf("clock started in intro")
	}
	if !lock.Fullscreen() {
		t.Fatalf("fullscreen flag not recorded")
	}

	lock.Sync(PhaseReview)
	if !clock.Running() {
		t.Fatalf("review keeps the clock running")
	}

	lock.Sync(PhaseResults)
	if clock.Running() || clock.Remaining() != 30 {
		t.Fatalf("results should stop without resetting, got running=%v remaining=%d", clock.Running(), clock.Remaining())
	}
}
