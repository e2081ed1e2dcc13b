package domain

import "time"

// Difficulty tiers a question can carry, ordered easy < medium < hard.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Topic tags the area a question or tip belongs to.
type Topic string

const (
	TopicLogic      Topic = "logic"
	TopicPatterns   Topic = "patterns"
	TopicCounting   Topic = "counting"
	TopicGeometry   Topic = "geometry"
	TopicArithmetic Topic = "arithmetic"
)

// Topics lists every topic in display order.
var Topics = []Topic{TopicLogic, TopicPatterns, TopicCounting, TopicGeometry, TopicArithmetic}

// Valid reports whether t is one of the known topics.
func (t Topic) Valid() bool {
	for _, known := range Topics {
		if t == known {
			return true
		}
	}
	return false
}

// AnswerOption is the label of a multiple choice option.
type AnswerOption string

const (
	OptionA AnswerOption = "A"
	OptionB AnswerOption = "B"
	OptionC AnswerOption = "C"
	OptionD AnswerOption = "D"
	OptionE AnswerOption = "E"
)

// Selected returns a pointer to a copy of o, for use as a TestAnswer selection.
func Selected(o AnswerOption) *AnswerOption {
	return &o
}

// Question models a multiple choice question with exactly one correct option.
type Question struct {
	ID            string                  `json:"id" yaml:"id"`
	Text          string                  `json:"text" yaml:"text"`
	Options       map[AnswerOption]string `json:"options" yaml:"options"`
	CorrectAnswer AnswerOption            `json:"correctAnswer" yaml:"correctAnswer"`
	Difficulty    Difficulty              `json:"difficulty" yaml:"difficulty"`
	Topic         Topic                   `json:"topic" yaml:"topic"`
	Hint          string                  `json:"hint,omitempty" yaml:"hint"`
	Solution      string                  `json:"solution" yaml:"solution"`
	ImageURL      string                  `json:"imageUrl,omitempty" yaml:"imageUrl"`
}

// HasOption reports whether label is one of the question's options.
func (q Question) HasOption(label AnswerOption) bool {
	_, ok := q.Options[label]
	return ok
}

// MockTest is a timed collection of questions.
type MockTest struct {
	ID               string     `json:"id" yaml:"id"`
	Name             string     `json:"name" yaml:"name"`
	Description      string     `json:"description" yaml:"description"`
	Questions        []Question `json:"questions" yaml:"questions"`
	TimeLimitMinutes int        `json:"timeLimitMinutes" yaml:"timeLimitMinutes"`
}

// TimeLimit returns the limit as a duration.
func (t MockTest) TimeLimit() time.Duration {
	return time.Duration(t.TimeLimitMinutes) * time.Minute
}

// TestSummary is the catalog view of a mock test without its questions.
type TestSummary struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	QuestionCount    int    `json:"questionCount"`
	TimeLimitMinutes int    `json:"timeLimitMinutes"`
}

// Summary returns the catalog view of t.
func (t MockTest) Summary() TestSummary {
	return TestSummary{
		ID:               t.ID,
		Name:             t.Name,
		Description:      t.Description,
		QuestionCount:    len(t.Questions),
		TimeLimitMinutes: t.TimeLimitMinutes,
	}
}

// TestAnswer is the per-question record of a running test.
// SelectedAnswer is nil while the question is blank.
type TestAnswer struct {
	QuestionID       string        `json:"questionId"`
	SelectedAnswer   *AnswerOption `json:"selectedAnswer"`
	TimeSpentSeconds int           `json:"timeSpentSeconds"`
}

// TestResult is produced once per completed test session.
type TestResult struct {
	ID               string       `json:"id,omitempty"`
	TestID           string       `json:"testId"`
	Model            ScoringModel `json:"model"`
	Score            int          `json:"score"`
	MaxScore         int          `json:"maxScore"`
	Answers          []TestAnswer `json:"answers"`
	StartedAt        time.Time    `json:"startedAt"`
	CompletedAt      time.Time    `json:"completedAt"`
	TimeTakenSeconds int          `json:"timeTakenSeconds"`
}

// Tip is a short learning card for a topic.
type Tip struct {
	ID      string `json:"id" yaml:"id"`
	Topic   Topic  `json:"topic" yaml:"topic"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
	Example string `json:"example,omitempty" yaml:"example"`
}

// TopicMeta describes a topic for the learning and practice menus.
type TopicMeta struct {
	Topic       Topic  `json:"topic" yaml:"topic"`
	Label       string `json:"label" yaml:"label"`
	Emoji       string `json:"emoji" yaml:"emoji"`
	Description string `json:"description" yaml:"description"`
}

// UserStats aggregates a user's activity.
type UserStats struct {
	TotalTests             int     `json:"totalTests"`
	AverageScore           float64 `json:"averageScore"`
	BestScore              int     `json:"bestScore"`
	TotalPracticeQuestions int     `json:"totalPracticeQuestions"`
	CorrectPracticeAnswers int     `json:"correctPracticeAnswers"`
	CurrentStreak          int     `json:"currentStreak"`
	LastActiveDate         string  `json:"lastActiveDate"`
}

// UserProfile is the stored document for a PIN account.
// PracticeProgress maps a topic to the IDs of practice questions already answered.
type UserProfile struct {
	DisplayName      string             `json:"displayName"`
	PIN              string             `json:"pin"`
	Stats            UserStats          `json:"stats"`
	PracticeProgress map[Topic][]string `json:"practiceProgress"`
}

// NewUserProfile returns a profile with zero stats and empty progress for every topic.
func NewUserProfile(displayName, pin string) UserProfile {
	progress := make(map[Topic][]string, len(Topics))
	for _, topic := range Topics {
		progress[topic] = []string{}
	}
	return UserProfile{
		DisplayName:      displayName,
		PIN:              pin,
		PracticeProgress: progress,
	}
}
