// Package session holds the test-session state machine, its countdown clock
// and the fullscreen interlock binding the two. Nothing here performs I/O and
// nothing here is safe for concurrent use: a session is owned by one goroutine.
package session

import (
	"slices"
	"time"

	"kanguru-service/internal/domain"
)

// Phase is the coarse lifecycle stage of a test session.
type Phase string

const (
	PhaseIntro   Phase = "intro"
	PhaseRunning Phase = "running"
	PhaseReview  Phase = "review"
	PhaseResults Phase = "results"
)

// Timed reports whether the countdown governs the phase.
func (p Phase) Timed() bool {
	return p == PhaseRunning || p == PhaseReview
}

// State is an immutable snapshot of a session. Reduce never mutates a State
// in place, so slices may be shared between successive values.
type State struct {
	Phase        Phase
	Test         *domain.MockTest
	CurrentIndex int
	Answers      []domain.TestAnswer
	StartedAt    time.Time
	CompletedAt  time.Time
	Result       *domain.TestResult
}

// AnsweredCount is the number of non-blank answers.
func (s State) AnsweredCount() int {
	n := 0
	for _, a := range s.Answers {
		if a.SelectedAnswer != nil {
			n++
		}
	}
	return n
}

// TotalQuestions is the question count of the active test, 0 without one.
func (s State) TotalQuestions() int {
	if s.Test == nil {
		return 0
	}
	return len(s.Test.Questions)
}

// CurrentQuestion returns the question at CurrentIndex.
func (s State) CurrentQuestion() (domain.Question, bool) {
	if s.Test == nil || s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Test.Questions) {
		return domain.Question{}, false
	}
	return s.Test.Questions[s.CurrentIndex], true
}

// Action is a tagged transition request. The concrete types below are the
// only implementations.
type Action interface {
	action()
}

// Start begins a test from any phase.
type Start struct {
	Test domain.MockTest
	At   time.Time
}

// SelectAnswer sets or clears (Answer == nil) the selection of one question.
type SelectAnswer struct {
	Index  int
	Answer *domain.AnswerOption
}

// UpdateTimeSpent overwrites the seconds recorded for one question.
type UpdateTimeSpent struct {
	Index   int
	Seconds int
}

// Navigate moves to a question, clamped into range.
type Navigate struct {
	Index int
}

// GoToReview moves a running test to review.
type GoToReview struct{}

// Finish scores the session on explicit user request.
type Finish struct {
	Scoring domain.ScoringConfig
	At      time.Time
}

// TimeUp scores the session when the countdown expires.
type TimeUp struct {
	Scoring domain.ScoringConfig
	At      time.Time
}

// Reset returns to the initial empty state.
type Reset struct{}

func (Start) action()           {}
func (SelectAnswer) action()    {}
func (UpdateTimeSpent) action() {}
func (Navigate) action()        {}
func (GoToReview) action()      {}
func (Finish) action()          {}
func (TimeUp) action()          {}
func (Reset) action()           {}

// Initial returns the empty intro state.
func Initial() State {
	return State{Phase: PhaseIntro}
}

// Reduce is the pure transition function of the session.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case Start:
		test := a.Test
		answers := make([]domain.TestAnswer, len(test.Questions))
		for i, q := range test.Questions {
			answers[i] = domain.TestAnswer{QuestionID: q.ID}
		}
		return State{
			Phase:     PhaseRunning,
			Test:      &test,
			Answers:   answers,
			StartedAt: a.At,
		}

	case SelectAnswer:
		if !s.Phase.Timed() || !s.inRange(a.Index) {
			return s
		}
		if a.Answer != nil && !s.Test.Questions[a.Index].HasOption(*a.Answer) {
			return s
		}
		var selected *domain.AnswerOption
		if a.Answer != nil {
			selected = domain.Selected(*a.Answer)
		}
		s.Answers = slices.Clone(s.Answers)
		s.Answers[a.Index].SelectedAnswer = selected
		return s

	case UpdateTimeSpent:
		if !s.inRange(a.Index) {
			return s
		}
		s.Answers = slices.Clone(s.Answers)
		s.Answers[a.Index].TimeSpentSeconds = max(a.Seconds, 0)
		return s

	case Navigate:
		if s.Test == nil || len(s.Test.Questions) == 0 {
			return s
		}
		s.CurrentIndex = min(max(a.Index, 0), len(s.Test.Questions)-1)
		if s.Phase == PhaseReview {
			s.Phase = PhaseRunning
		}
		return s

	case GoToReview:
		if s.Phase == PhaseRunning {
			s.Phase = PhaseReview
		}
		return s

	case Finish:
		return finish(s, a.Scoring, a.At)

	case TimeUp:
		return finish(s, a.Scoring, a.At)

	case Reset:
		return Initial()
	}
	return s
}

func finish(s State, scoring domain.ScoringConfig, at time.Time) State {
	if s.Test == nil || s.StartedAt.IsZero() || !s.Phase.Timed() {
		return s
	}
	elapsed := at.Sub(s.StartedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	s.Phase = PhaseResults
	s.CompletedAt = at
	s.Result = &domain.TestResult{
		TestID:           s.Test.ID,
		Model:            scoring.Model,
		Score:            Score(*s.Test, s.Answers, scoring),
		MaxScore:         scoring.MaxScore,
		Answers:          slices.Clone(s.Answers),
		StartedAt:        s.StartedAt,
		CompletedAt:      at,
		TimeTakenSeconds: int(elapsed / time.Second),
	}
	return s
}

func (s State) inRange(index int) bool {
	return s.Test != nil && index >= 0 && index < len(s.Test.Questions) && index < len(s.Answers)
}

// Machine wraps Reduce with a time source used to stamp Start, Finish and
// TimeUp actions that arrive without a timestamp.
type Machine struct {
	state State
	now   func() time.Time
}

// NewMachine returns a machine in the intro phase. A nil now uses time.Now.
func NewMachine(now func() time.Time) *Machine {
	if now == nil {
		now = time.Now
	}
	return &Machine{state: Initial(), now: now}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Dispatch applies a to the current state and returns the new state.
func (m *Machine) Dispatch(a Action) State {
	switch act := a.(type) {
	case Start:
		if act.At.IsZero() {
			act.At = m.now()
		}
		a = act
	case Finish:
		if act.At.IsZero() {
			act.At = m.now()
		}
		a = act
	case TimeUp:
		if act.At.IsZero() {
			act.At = m.now()
		}
		a = act
	}
	m.state = Reduce(m.state, a)
	return m.state
}

// Validate reports why a selection would be ignored, or nil if it applies.
func (m *Machine) Validate(index int, answer *domain.AnswerOption) error {
	if !m.state.inRange(index) {
		return domain.ErrQuestionNotFound
	}
	if answer != nil && !m.state.Test.Questions[index].HasOption(*answer) {
		return domain.ErrOptionNotFound
	}
	return nil
}
