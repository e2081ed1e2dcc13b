package memory

import (
	"sync"

	"kanguru-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.TestRunner
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.TestRunner),
	}
}

func (s *SessionStore) GetOrCreate(ownerID string, create func() *app.TestRunner) *app.TestRunner {
	s.mu.Lock()
	defer s.mu.Unlock()
	if runner, ok := s.sessions[ownerID]; ok {
		return runner
	}
	runner := create()
	s.sessions[ownerID] = runner
	return runner
}

func (s *SessionStore) Get(ownerID string) (*app.TestRunner, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runner, ok := s.sessions[ownerID]
	return runner, ok
}

func (s *SessionStore) Delete(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, ownerID)
}

func (s *SessionStore) All() []*app.TestRunner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*app.TestRunner, 0, len(s.sessions))
	for _, runner := range s.sessions {
		out = append(out, runner)
	}
	return out
}
