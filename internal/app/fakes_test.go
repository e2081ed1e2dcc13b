package app

import (
	"context"
	"strconv"
	"sync"
	"time"

	"kanguru-service/internal/domain"
	"kanguru-service/internal/session"
)

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]*TestRunner
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[string]*TestRunner)}
}

func (s *fakeSessions) GetOrCreate(ownerID string, create func() *TestRunner) *TestRunner {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.sessions[ownerID]; ok {
		return r
	}
	r := create()
	s.sessions[ownerID] = r
	return r
}

func (s *fakeSessions) Get(ownerID string) (*TestRunner, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.sessions[ownerID]
	return r, ok
}

func (s *fakeSessions) Delete(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, ownerID)
}

func (s *fakeSessions) All() []*TestRunner {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*TestRunner, 0, len(s.sessions))
	for _, r := range s.sessions {
		out = append(out, r)
	}
	return out
}

type fakeTests map[string]domain.MockTest

func (f fakeTests) GetTest(_ context.Context, testID string) (domain.MockTest, error) {
	if t, ok := f[testID]; ok {
		return t, nil
	}
	return domain.MockTest{}, domain.ErrTestNotFound
}

func (f fakeTests) ListTests(context.Context) ([]domain.MockTest, error) {
	out := make([]domain.MockTest, 0, len(f))
	for _, t := range f {
		out = append(out, t)
	}
	return out, nil
}

type fakeResults struct {
	mu      sync.Mutex
	saved   map[string][]domain.TestResult
	saveErr error
}

func newFakeResults() *fakeResults {
	return &fakeResults{saved: make(map[string][]domain.TestResult)}
}

func (f *fakeResults) Save(_ context.Context, ownerID string, result domain.TestResult) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return "", f.saveErr
	}
	result.ID = "r" + strconv.Itoa(len(f.saved[ownerID])+1)
	f.saved[ownerID] = append([]domain.TestResult{result}, f.saved[ownerID]...)
	return result.ID, nil
}

func (f *fakeResults) List(_ context.Context, ownerID string, max int) ([]domain.TestResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.saved[ownerID]
	if len(list) > max {
		list = list[:max]
	}
	return append([]domain.TestResult{}, list...), nil
}

func (f *fakeResults) count(ownerID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved[ownerID])
}

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[string]domain.UserProfile
	pins     map[string]string
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{profiles: make(map[string]domain.UserProfile), pins: make(map[string]string)}
}

func (f *fakeProfiles) GetProfile(_ context.Context, uid string) (domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[uid]
	if !ok {
		return domain.UserProfile{}, domain.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeProfiles) PutProfile(_ context.Context, uid string, p domain.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[uid] = p
	return nil
}

func (f *fakeProfiles) UpdateProfile(_ context.Context, uid string, fn func(*domain.UserProfile) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[uid]
	if !ok {
		return domain.ErrProfileNotFound
	}
	if err := fn(&p); err != nil {
		return err
	}
	f.profiles[uid] = p
	return nil
}

func (f *fakeProfiles) ClaimPIN(_ context.Context, pin, uid string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, taken := f.pins[pin]; taken {
		return false, nil
	}
	f.pins[pin] = uid
	return true, nil
}

func (f *fakeProfiles) LookupPIN(_ context.Context, pin string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uid, ok := f.pins[pin]
	if !ok {
		return "", domain.ErrPINNotFound
	}
	return uid, nil
}

type stubTicker struct {
	ch chan time.Time

	mu      sync.Mutex
	stopped bool
}

func (s *stubTicker) C() <-chan time.Time { return s.ch }

func (s *stubTicker) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

func (s *stubTicker) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

type stubTickers struct {
	mu      sync.Mutex
	created []*stubTicker
}

func (f *stubTickers) New(time.Duration) session.Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &stubTicker{ch: make(chan time.Time)}
	f.created = append(f.created, t)
	return t
}

func (f *stubTickers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func (f *stubTickers) latest() *stubTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.created) == 0 {
		return nil
	}
	return f.created[len(f.created)-1]
}

func question(id string, correct domain.AnswerOption, d domain.Difficulty) domain.Question {
	return domain.Question{
		ID:   id,
		Text: "Question " + id,
		Options: map[domain.AnswerOption]string{
			domain.OptionA: "1",
			domain.OptionB: "2",
			domain.OptionC: "3",
			domain.OptionD: "4",
			domain.OptionE: "5",
		},
		CorrectAnswer: correct,
		Difficulty:    d,
		Topic:         domain.TopicArithmetic,
		Hint:          "think",
		Solution:      "because",
	}
}

func oneMinuteTest() domain.MockTest {
	return domain.MockTest{
		ID:               "mini",
		Name:             "Mini",
		TimeLimitMinutes: 1,
		Questions: []domain.Question{
			question("q1", domain.OptionA, domain.DifficultyEasy),
			question("q2", domain.OptionB, domain.DifficultyMedium),
			question("q3", domain.OptionC, domain.DifficultyHard),
		},
	}
}
