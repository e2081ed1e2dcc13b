package session

import "kanguru-service/internal/domain"

// Score computes the clamped score of answers against test. Answers are
// matched to questions by position; a missing or nil selection is blank.
func Score(test domain.MockTest, answers []domain.TestAnswer, scoring domain.ScoringConfig) int {
	score := scoring.StartingScore
	for i, q := range test.Questions {
		if i >= len(answers) || answers[i].SelectedAnswer == nil {
			continue
		}
		if *answers[i].SelectedAnswer == q.CorrectAnswer {
			score += scoring.PointsFor(q.Difficulty)
		} else {
			score += scoring.WrongPenalty
		}
	}
	return scoring.Clamp(score)
}
