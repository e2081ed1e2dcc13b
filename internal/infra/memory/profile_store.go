package memory

import (
	"context"
	"encoding/json"
	"sync"

	"kanguru-service/internal/domain"
)

// ProfileStore keeps PIN accounts in memory. Profiles are stored as JSON so
// callers never share maps or slices with the store.
type ProfileStore struct {
	mu       sync.Mutex
	profiles map[string][]byte
	pins     map[string]string
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles: make(map[string][]byte),
		pins:     make(map[string]string),
	}
}

func (s *ProfileStore) GetProfile(_ context.Context, uid string) (domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(uid)
}

func (s *ProfileStore) PutProfile(_ context.Context, uid string, profile domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putLocked(uid, profile)
}

func (s *ProfileStore) UpdateProfile(_ context.Context, uid string, fn func(*domain.UserProfile) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, err := s.getLocked(uid)
	if err != nil {
		return err
	}
	if err := fn(&profile); err != nil {
		return err
	}
	return s.putLocked(uid, profile)
}

func (s *ProfileStore) ClaimPIN(_ context.Context, pin, uid string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.pins[pin]; taken {
		return false, nil
	}
	s.pins[pin] = uid
	return true, nil
}

func (s *ProfileStore) LookupPIN(_ context.Context, pin string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.pins[pin]
	if !ok {
		return "", domain.ErrPINNotFound
	}
	return uid, nil
}

func (s *ProfileStore) getLocked(uid string) (domain.UserProfile, error) {
	raw, ok := s.profiles[uid]
	if !ok {
		return domain.UserProfile{}, domain.ErrProfileNotFound
	}
	var profile domain.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return domain.UserProfile{}, err
	}
	return profile, nil
}

func (s *ProfileStore) putLocked(uid string, profile domain.UserProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	s.profiles[uid] = raw
	return nil
}
