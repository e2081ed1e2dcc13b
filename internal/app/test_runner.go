package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"kanguru-service/internal/domain"
	"kanguru-service/internal/session"
)

const recordTimeout = 5 * time.Second

// QuestionView is a question as shown to the child, without its answer.
type QuestionView struct {
	ID         string                         `json:"id"`
	Text       string                         `json:"text"`
	Options    map[domain.AnswerOption]string `json:"options"`
	Difficulty domain.Difficulty              `json:"difficulty"`
	Topic      domain.Topic                   `json:"topic"`
	Hint       string                         `json:"hint,omitempty"`
	ImageURL   string                         `json:"imageUrl,omitempty"`
}

func newQuestionView(q domain.Question, withHint bool) QuestionView {
	view := QuestionView{
		ID:         q.ID,
		Text:       q.Text,
		Options:    q.Options,
		Difficulty: q.Difficulty,
		Topic:      q.Topic,
		ImageURL:   q.ImageURL,
	}
	if withHint {
		view.Hint = q.Hint
	}
	return view
}

// ClockView is the countdown as displayed.
type ClockView struct {
	Remaining int    `json:"remaining"`
	Formatted string `json:"formatted"`
	Running   bool   `json:"running"`
}

// Snapshot is the broadcast view of a test session.
type Snapshot struct {
	Phase          session.Phase       `json:"phase"`
	TestID         string              `json:"testId,omitempty"`
	TestName       string              `json:"testName,omitempty"`
	CurrentIndex   int                 `json:"currentIndex"`
	TotalQuestions int                 `json:"totalQuestions"`
	AnsweredCount  int                 `json:"answeredCount"`
	Question       *QuestionView       `json:"question,omitempty"`
	Answers        []domain.TestAnswer `json:"answers"`
	Clock          ClockView           `json:"clock"`
	Fullscreen     bool                `json:"fullscreen"`
	Result         *domain.TestResult  `json:"result,omitempty"`
}

type request struct {
	apply func() error
	reply chan error
}

// TestRunner owns one user's test session. A single goroutine applies user
// commands, clock ticks and fullscreen edges in arrival order.
type TestRunner struct {
	ownerID  string
	machine  *session.Machine
	clock    *session.Clock
	lock     *session.Interlock
	scoring  domain.ScoringConfig
	recorder ResultRecorder
	log      zerolog.Logger
	now      func() time.Time

	requests chan request
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}

	// saved is the stored result of the current session; loop-owned.
	saved *domain.TestResult

	mu          sync.RWMutex
	snapshot    Snapshot
	lastActive  time.Time
	subscribers map[chan Snapshot]struct{}
}

func newTestRunner(ownerID string, scoring domain.ScoringConfig, recorder ResultRecorder, log zerolog.Logger, now func() time.Time, ticker session.TickerFunc) *TestRunner {
	if ticker == nil {
		ticker = session.NewTimeTicker
	}
	ctx, cancel := context.WithCancel(context.Background())
	clock := session.NewClock(0, session.WithTicker(ticker))
	r := &TestRunner{
		ownerID:     ownerID,
		machine:     session.NewMachine(now),
		clock:       clock,
		lock:        session.NewInterlock(clock),
		scoring:     scoring,
		recorder:    recorder,
		log:         log.With().Str("component", "test_runner").Str("owner", ownerID).Logger(),
		now:         now,
		requests:    make(chan request),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
		lastActive:  now(),
		subscribers: make(map[chan Snapshot]struct{}),
	}
	clock.SetOnTimeUp(func() {
		r.log.Info().Msg("time is up")
		r.dispatch(session.TimeUp{Scoring: r.scoring})
	})
	r.snapshot = r.buildSnapshot()
	go r.run()
	return r
}

func (r *TestRunner) run() {
	defer close(r.done)
	defer r.clock.Stop()
	for {
		select {
		case <-r.ctx.Done():
			return
		case req := <-r.requests:
			req.reply <- req.apply()
			r.publish()
		case <-r.clock.C():
			r.clock.Tick()
			r.publish()
		}
	}
}

// dispatch applies a to the machine and keeps the clock and persistence in step.
func (r *TestRunner) dispatch(a session.Action) session.State {
	prev := r.machine.State()
	state := r.machine.Dispatch(a)

	switch a.(type) {
	case session.Start:
		r.saved = nil
		r.clock.ResetTo(int(state.Test.TimeLimit() / time.Second))
	case session.Reset:
		r.saved = nil
		r.clock.Reset()
	}
	r.lock.Sync(state.Phase)

	if state.Phase == session.PhaseResults && prev.Phase != session.PhaseResults && state.Result != nil {
		r.record(*state.Result)
	}
	return state
}

func (r *TestRunner) record(result domain.TestResult) {
	if r.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(r.ctx, recordTimeout)
	defer cancel()

	stored, err := r.recorder.Record(ctx, r.ownerID, result)
	if err != nil {
		r.log.Warn().Err(err).Str("test", result.TestID).Msg("saving result failed")
		return
	}
	r.saved = &stored
	r.log.Info().Str("test", result.TestID).Str("result", stored.ID).Int("score", stored.Score).Msg("result saved")
}

// do runs fn on the session goroutine and waits for its error.
func (r *TestRunner) do(ctx context.Context, fn func() error) error {
	req := request{apply: fn, reply: make(chan error, 1)}
	select {
	case r.requests <- req:
	case <-r.done:
		return domain.ErrSessionNotFound
	case <-ctx.Done():
		return ctx.Err()
	}
	r.touch()
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start begins test, replacing any session in progress.
func (r *TestRunner) Start(ctx context.Context, test domain.MockTest) error {
	return r.do(ctx, func() error {
		r.dispatch(session.Start{Test: test})
		r.log.Info().Str("test", test.ID).Int("questions", len(test.Questions)).Msg("test started")
		return nil
	})
}

// SelectAnswer sets the answer of question index; nil clears it.
func (r *TestRunner) SelectAnswer(ctx context.Context, index int, answer *domain.AnswerOption) error {
	return r.do(ctx, func() error {
		if !r.machine.State().Phase.Timed() {
			return domain.ErrSessionNotRunning
		}
		if err := r.machine.Validate(index, answer); err != nil {
			return err
		}
		r.dispatch(session.SelectAnswer{Index: index, Answer: answer})
		return nil
	})
}

// UpdateTimeSpent records the seconds spent on question index.
func (r *TestRunner) UpdateTimeSpent(ctx context.Context, index, seconds int) error {
	return r.do(ctx, func() error {
		if !r.machine.State().Phase.Timed() {
			return domain.ErrSessionNotRunning
		}
		if err := r.machine.Validate(index, nil); err != nil {
			return err
		}
		r.dispatch(session.UpdateTimeSpent{Index: index, Seconds: seconds})
		return nil
	})
}

// Navigate moves to question index, clamped into range.
func (r *TestRunner) Navigate(ctx context.Context, index int) error {
	return r.do(ctx, func() error {
		r.dispatch(session.Navigate{Index: index})
		return nil
	})
}

// GoToReview moves a running test into review.
func (r *TestRunner) GoToReview(ctx context.Context) error {
	return r.do(ctx, func() error {
		r.dispatch(session.GoToReview{})
		return nil
	})
}

// Finish scores the session with scoring. Finishing twice is a no-op.
func (r *TestRunner) Finish(ctx context.Context, scoring domain.ScoringConfig) error {
	return r.do(ctx, func() error {
		r.dispatch(session.Finish{Scoring: scoring})
		return nil
	})
}

// SetFullscreen forwards a fullscreen notification from the client.
func (r *TestRunner) SetFullscreen(ctx context.Context, active bool) error {
	return r.do(ctx, func() error {
		r.lock.SetFullscreen(active, r.machine.State().Phase)
		return nil
	})
}

// Reset returns the session to intro.
func (r *TestRunner) Reset(ctx context.Context) error {
	return r.do(ctx, func() error {
		r.dispatch(session.Reset{})
		return nil
	})
}

// Snapshot returns the latest published view.
func (r *TestRunner) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// Subscribe returns a channel of snapshots, starting with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (r *TestRunner) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	r.mu.Lock()
	r.subscribers[ch] = struct{}{}
	ch <- r.snapshot
	r.mu.Unlock()

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

// Subscribers returns the number of attached listeners.
func (r *TestRunner) Subscribers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subscribers)
}

// LastActive returns the time of the last command.
func (r *TestRunner) LastActive() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastActive
}

// OwnerID returns the user the runner belongs to.
func (r *TestRunner) OwnerID() string {
	return r.ownerID
}

// Closed reports whether the session goroutine has exited.
func (r *TestRunner) Closed() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Close stops the session goroutine, releases its ticker and closes every
// subscription.
func (r *TestRunner) Close() {
	r.cancel()
	<-r.done

	r.mu.Lock()
	for ch := range r.subscribers {
		delete(r.subscribers, ch)
		close(ch)
	}
	r.mu.Unlock()
}

func (r *TestRunner) touch() {
	r.mu.Lock()
	r.lastActive = r.now()
	r.mu.Unlock()
}

func (r *TestRunner) publish() {
	snap := r.buildSnapshot()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = snap
	for ch := range r.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the stale update so a slow client never blocks the session.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (r *TestRunner) buildSnapshot() Snapshot {
	state := r.machine.State()
	snap := Snapshot{
		Phase:          state.Phase,
		CurrentIndex:   state.CurrentIndex,
		TotalQuestions: state.TotalQuestions(),
		AnsweredCount:  state.AnsweredCount(),
		Answers:        state.Answers,
		Clock: ClockView{
			Remaining: r.clock.Remaining(),
			Formatted: r.clock.Formatted(),
			Running:   r.clock.Running(),
		},
		Fullscreen: r.lock.Fullscreen(),
		Result:     state.Result,
	}
	if state.Test != nil {
		snap.TestID = state.Test.ID
		snap.TestName = state.Test.Name
	}
	if q, ok := state.CurrentQuestion(); ok && state.Phase.Timed() {
		view := newQuestionView(q, false)
		snap.Question = &view
	}
	if r.saved != nil {
		snap.Result = r.saved
	}
	return snap
}
