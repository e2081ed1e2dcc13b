package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"kanguru-service/internal/domain"
)

// pinAttempts bounds how many random PINs are tried before giving up.
const pinAttempts = 20

// Identity is the request-scoped view of the signed-in child. It is built
// per request from the uid and passed explicitly to the use cases.
type Identity struct {
	UID     string
	Profile domain.UserProfile
}

// AuthService implements PIN accounts.
type AuthService struct {
	profiles ProfileStore
	newID    func() string
	newPIN   func() string
}

// AuthOption configures an AuthService.
type AuthOption func(*AuthService)

// WithPINGenerator replaces the random PIN source.
func WithPINGenerator(f func() string) AuthOption {
	return func(s *AuthService) { s.newPIN = f }
}

// WithIDGenerator replaces the uid source.
func WithIDGenerator(f func() string) AuthOption {
	return func(s *AuthService) { s.newID = f }
}

func NewAuthService(profiles ProfileStore, opts ...AuthOption) *AuthService {
	s := &AuthService{
		profiles: profiles,
		newID:    uuid.NewString,
		newPIN:   randomPIN(rand.New(rand.NewSource(time.Now().UnixNano()))),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// randomPIN returns a generator of four-digit PINs in [1000, 9999].
func randomPIN(rnd *rand.Rand) func() string {
	var mu sync.Mutex
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		return strconv.Itoa(1000 + rnd.Intn(9000))
	}
}

// CreateAccount registers displayName under a fresh uid and unique PIN.
func (s *AuthService) CreateAccount(ctx context.Context, displayName string) (string, string, error) {
	uid := s.newID()
	for attempt := 0; attempt < pinAttempts; attempt++ {
		pin := s.newPIN()
		won, err := s.profiles.ClaimPIN(ctx, pin, uid)
		if err != nil {
			return "", "", fmt.Errorf("claim pin: %w", err)
		}
		if !won {
			continue
		}
		if err := s.profiles.PutProfile(ctx, uid, domain.NewUserProfile(displayName, pin)); err != nil {
			return "", "", fmt.Errorf("store profile: %w", err)
		}
		return uid, pin, nil
	}
	return "", "", domain.ErrPINExhausted
}

// Login resolves pin to its account.
func (s *AuthService) Login(ctx context.Context, pin string) (Identity, error) {
	uid, err := s.profiles.LookupPIN(ctx, pin)
	if err != nil {
		return Identity{}, err
	}
	return s.Identify(ctx, uid)
}

// Identify loads the profile of uid.
func (s *AuthService) Identify(ctx context.Context, uid string) (Identity, error) {
	if uid == "" {
		return Identity{}, domain.ErrProfileNotFound
	}
	profile, err := s.profiles.GetProfile(ctx, uid)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return Identity{}, err
		}
		return Identity{}, fmt.Errorf("load profile: %w", err)
	}
	return Identity{UID: uid, Profile: profile}, nil
}
