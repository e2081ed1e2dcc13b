package app

import (
	"context"

	"kanguru-service/internal/domain"
)

// SessionRepository keeps the live test runners, one per user.
type SessionRepository interface {
	// GetOrCreate returns the runner of ownerID, calling create when there is none.
	GetOrCreate(ownerID string, create func() *TestRunner) *TestRunner
	Get(ownerID string) (*TestRunner, bool)
	Delete(ownerID string)
	All() []*TestRunner
}

// TestRepository loads mock tests (from cache/backing store).
type TestRepository interface {
	GetTest(ctx context.Context, testID string) (domain.MockTest, error)
	ListTests(ctx context.Context) ([]domain.MockTest, error)
}

// ResultStore persists test results per user.
type ResultStore interface {
	Save(ctx context.Context, ownerID string, result domain.TestResult) (string, error)
	// List returns at most max results, most recently completed first.
	List(ctx context.Context, ownerID string, max int) ([]domain.TestResult, error)
}

// ProfileStore persists PIN accounts.
type ProfileStore interface {
	GetProfile(ctx context.Context, uid string) (domain.UserProfile, error)
	PutProfile(ctx context.Context, uid string, profile domain.UserProfile) error
	// UpdateProfile applies fn to the stored profile atomically.
	UpdateProfile(ctx context.Context, uid string, fn func(*domain.UserProfile) error) error
	// ClaimPIN maps pin to uid unless the pin is taken; it reports whether the claim won.
	ClaimPIN(ctx context.Context, pin, uid string) (bool, error)
	LookupPIN(ctx context.Context, pin string) (string, error)
}

// ResultRecorder receives the result of every completed session.
type ResultRecorder interface {
	Record(ctx context.Context, ownerID string, result domain.TestResult) (domain.TestResult, error)
}

// PracticeBank serves practice questions.
type PracticeBank interface {
	PracticeQuestions(topic domain.Topic) []domain.Question
	PracticeQuestion(id string) (domain.Question, bool)
}

// TipSource serves learning content.
type TipSource interface {
	Topics() []domain.TopicMeta
	Tips(topic domain.Topic) []domain.Tip
}
