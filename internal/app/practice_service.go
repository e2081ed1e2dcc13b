package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"kanguru-service/internal/domain"
)

const dateLayout = "2006-01-02"

// Feedback is returned right after a practice answer.
type Feedback struct {
	QuestionID    string              `json:"questionId"`
	Correct       bool                `json:"correct"`
	CorrectAnswer domain.AnswerOption `json:"correctAnswer"`
	Solution      string              `json:"solution"`
}

// PracticeService delivers practice questions and records progress.
type PracticeService struct {
	bank     PracticeBank
	profiles ProfileStore
	log      zerolog.Logger
	now      func() time.Time
}

func NewPracticeService(bank PracticeBank, profiles ProfileStore, log zerolog.Logger) *PracticeService {
	return &PracticeService{
		bank:     bank,
		profiles: profiles,
		log:      log.With().Str("component", "practice_service").Logger(),
		now:      time.Now,
	}
}

// Questions returns the practice questions of topic with answers withheld.
func (s *PracticeService) Questions(topic domain.Topic) ([]QuestionView, error) {
	if !topic.Valid() {
		return nil, domain.ErrInvalidTopic
	}
	questions := s.bank.PracticeQuestions(topic)
	out := make([]QuestionView, 0, len(questions))
	for _, q := range questions {
		out = append(out, newQuestionView(q, true))
	}
	return out, nil
}

// CheckAnswer grades answer and records progress for uid. Progress that
// fails to save is logged and does not withhold the feedback.
func (s *PracticeService) CheckAnswer(ctx context.Context, uid, questionID string, answer domain.AnswerOption) (Feedback, error) {
	q, ok := s.bank.PracticeQuestion(questionID)
	if !ok {
		return Feedback{}, domain.ErrQuestionNotFound
	}
	if !q.HasOption(answer) {
		return Feedback{}, domain.ErrOptionNotFound
	}
	correct := answer == q.CorrectAnswer

	today := s.now().UTC().Format(dateLayout)
	err := s.profiles.UpdateProfile(ctx, uid, func(p *domain.UserProfile) error {
		applyPractice(p, q, correct, today)
		return nil
	})
	if err != nil {
		s.log.Warn().Err(err).Str("uid", uid).Str("question", q.ID).Msg("saving practice progress failed")
	}

	return Feedback{
		QuestionID:    q.ID,
		Correct:       correct,
		CorrectAnswer: q.CorrectAnswer,
		Solution:      q.Solution,
	}, nil
}

func applyPractice(p *domain.UserProfile, q domain.Question, correct bool, today string) {
	if p.PracticeProgress == nil {
		p.PracticeProgress = make(map[domain.Topic][]string)
	}
	done := p.PracticeProgress[q.Topic]
	seen := false
	for _, id := range done {
		if id == q.ID {
			seen = true
			break
		}
	}
	if !seen {
		p.PracticeProgress[q.Topic] = append(done, q.ID)
	}

	p.Stats.TotalPracticeQuestions++
	if correct {
		p.Stats.CorrectPracticeAnswers++
	}
	p.Stats.CurrentStreak = nextStreak(p.Stats.CurrentStreak, p.Stats.LastActiveDate, today)
	p.Stats.LastActiveDate = today
}

// nextStreak extends the streak on consecutive days and restarts it after a gap.
func nextStreak(streak int, lastActive, today string) int {
	if lastActive == "" {
		return 1
	}
	last, err := time.Parse(dateLayout, lastActive)
	if err != nil {
		return 1
	}
	now, err := time.Parse(dateLayout, today)
	if err != nil {
		return streak
	}
	switch days := int(now.Sub(last).Hours() / 24); {
	case days == 1:
		return streak + 1
	case days > 1:
		return 1
	default:
		return streak
	}
}
