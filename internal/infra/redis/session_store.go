package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"kanguru-service/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Runners live in process; Redis only carries a liveness marker per user so
// other instances and operators can see who is mid-test.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.TestRunner
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
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
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(ownerID), "1", s.ttl).Err()
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
	if _, ok := s.sessions[ownerID]; !ok {
		return
	}
	delete(s.sessions, ownerID)
	_ = s.client.Del(context.Background(), s.key(ownerID)).Err()
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

func (s *SessionStore) key(ownerID string) string {
	return "test:session:" + ownerID
}
