package app

import (
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// Janitor periodically closes abandoned test sessions.
type Janitor struct {
	scheduler *gocron.Scheduler
	tests     *TestService
	interval  time.Duration
	idle      time.Duration
	log       zerolog.Logger
}

func NewJanitor(tests *TestService, interval, idle time.Duration, log zerolog.Logger) *Janitor {
	return &Janitor{
		scheduler: gocron.NewScheduler(time.UTC),
		tests:     tests,
		interval:  interval,
		idle:      idle,
		log:       log.With().Str("component", "janitor").Logger(),
	}
}

// Start schedules the sweep and runs the scheduler in the background.
func (j *Janitor) Start() error {
	if _, err := j.scheduler.Every(j.interval).WaitForSchedule().Do(j.Sweep); err != nil {
		return err
	}
	j.scheduler.StartAsync()
	j.log.Info().Dur("interval", j.interval).Dur("idle", j.idle).Msg("janitor started")
	return nil
}

// Stop terminates the scheduler.
func (j *Janitor) Stop() {
	j.scheduler.Stop()
}

// Sweep closes idle sessions once.
func (j *Janitor) Sweep() {
	if n := j.tests.SweepIdle(j.idle); n > 0 {
		j.log.Info().Int("closed", n).Msg("closed idle sessions")
	}
}
