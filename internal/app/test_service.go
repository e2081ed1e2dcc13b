package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"kanguru-service/internal/domain"
	"kanguru-service/internal/session"
)

// TestService contains the mock-test use cases.
type TestService struct {
	sessions SessionRepository
	tests    TestRepository
	recorder ResultRecorder
	scoring  domain.ScoringConfig
	log      zerolog.Logger
	now      func() time.Time
	ticker   session.TickerFunc
}

// TestServiceOption configures a TestService.
type TestServiceOption func(*TestService)

// WithNow sets the time source, for deterministic timestamps in tests.
func WithNow(now func() time.Time) TestServiceOption {
	return func(s *TestService) { s.now = now }
}

// WithTickerFunc sets the ticker factory used by session clocks.
func WithTickerFunc(f session.TickerFunc) TestServiceOption {
	return func(s *TestService) { s.ticker = f }
}

// NewTestService wires the test use cases. scoring is applied when the clock
// runs out and when a finish request names no model.
func NewTestService(sessions SessionRepository, tests TestRepository, recorder ResultRecorder, scoring domain.ScoringConfig, log zerolog.Logger, opts ...TestServiceOption) *TestService {
	s := &TestService{
		sessions: sessions,
		tests:    tests,
		recorder: recorder,
		scoring:  scoring,
		log:      log.With().Str("component", "test_service").Logger(),
		now:      time.Now,
		ticker:   session.NewTimeTicker,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListTests returns the catalog of mock tests.
func (s *TestService) ListTests(ctx context.Context) ([]domain.TestSummary, error) {
	tests, err := s.tests.ListTests(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}
	out := make([]domain.TestSummary, 0, len(tests))
	for _, t := range tests {
		out = append(out, t.Summary())
	}
	return out, nil
}

// Open returns the live session of ownerID, creating one in intro if needed.
func (s *TestService) Open(ownerID string) *TestRunner {
	create := func() *TestRunner {
		s.log.Debug().Str("owner", ownerID).Msg("opening session")
		return newTestRunner(ownerID, s.scoring, s.recorder, s.log, s.now, s.ticker)
	}
	runner := s.sessions.GetOrCreate(ownerID, create)
	if runner.Closed() {
		s.sessions.Delete(ownerID)
		runner = s.sessions.GetOrCreate(ownerID, create)
	}
	return runner
}

// Session returns the live session of ownerID.
func (s *TestService) Session(ownerID string) (*TestRunner, error) {
	runner, ok := s.sessions.Get(ownerID)
	if !ok || runner.Closed() {
		return nil, domain.ErrSessionNotFound
	}
	return runner, nil
}

// StartTest loads testID and starts it in the session of ownerID.
func (s *TestService) StartTest(ctx context.Context, ownerID, testID string) error {
	test, err := s.tests.GetTest(ctx, testID)
	if err != nil {
		return err
	}
	if len(test.Questions) == 0 {
		return fmt.Errorf("start %s: %w", testID, domain.ErrQuestionNotFound)
	}
	return s.Open(ownerID).Start(ctx, test)
}

// Scoring resolves a model name; an empty name selects the default preset.
func (s *TestService) Scoring(model string) (domain.ScoringConfig, error) {
	if model == "" {
		return s.scoring, nil
	}
	scoring, ok := domain.ScoringFor(domain.ScoringModel(model))
	if !ok {
		return domain.ScoringConfig{}, fmt.Errorf("%w: %q", domain.ErrUnknownScoringModel, model)
	}
	return scoring, nil
}

// Close stops and forgets the session of ownerID.
func (s *TestService) Close(ownerID string) {
	runner, ok := s.sessions.Get(ownerID)
	if !ok {
		return
	}
	runner.Close()
	s.sessions.Delete(ownerID)
}

// SweepIdle closes sessions without listeners that saw no command for idle.
// It returns the number of sessions closed.
func (s *TestService) SweepIdle(idle time.Duration) int {
	cutoff := s.now().Add(-idle)
	closed := 0
	for _, runner := range s.sessions.All() {
		if runner.Subscribers() > 0 || runner.LastActive().After(cutoff) {
			continue
		}
		runner.Close()
		s.sessions.Delete(runner.OwnerID())
		closed++
	}
	return closed
}

// CloseAll stops every live session.
func (s *TestService) CloseAll() {
	for _, runner := range s.sessions.All() {
		runner.Close()
		s.sessions.Delete(runner.OwnerID())
	}
}
