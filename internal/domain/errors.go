package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no test session is open for a user.
	ErrSessionNotFound = errors.New("test session not found")
	// ErrTestNotFound indicates the mock test could not be loaded.
	ErrTestNotFound = errors.New("test not found")
	// ErrQuestionNotFound indicates a question index or ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates a selected label is not an option of the question.
	ErrOptionNotFound = errors.New("option not found")
	// ErrProfileNotFound is returned when a user has no stored profile.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrPINNotFound is returned when logging in with an unknown PIN.
	ErrPINNotFound = errors.New("pin not found")
	// ErrPINExhausted is returned when no free PIN could be generated.
	ErrPINExhausted = errors.New("could not generate a unique pin")
	// ErrInvalidTopic indicates an unknown topic tag.
	ErrInvalidTopic = errors.New("invalid topic")
	// ErrUnknownScoringModel indicates a scoring model name with no preset.
	ErrUnknownScoringModel = errors.New("unknown scoring model")
	// ErrSessionNotRunning is returned for answer updates outside running or review.
	ErrSessionNotRunning = errors.New("test session is not running")
)
