package domain

// ScoringModel names a scoring preset.
type ScoringModel string

const (
	ScoringKSF ScoringModel = "ksf"
	ScoringUSA ScoringModel = "usa"
)

// ScoringConfig holds the point values and bounds applied when a test is scored.
type ScoringConfig struct {
	Model         ScoringModel `json:"model" yaml:"model"`
	StartingScore int          `json:"startingScore" yaml:"startingScore"`
	EasyPoints    int          `json:"easyPoints" yaml:"easyPoints"`
	MediumPoints  int          `json:"mediumPoints" yaml:"mediumPoints"`
	HardPoints    int          `json:"hardPoints" yaml:"hardPoints"`
	WrongPenalty  int          `json:"wrongPenalty" yaml:"wrongPenalty"`
	MinScore      int          `json:"minScore" yaml:"minScore"`
	MaxScore      int          `json:"maxScore" yaml:"maxScore"`
}

// KSFScoring is the Kangourou sans Frontières preset.
var KSFScoring = ScoringConfig{
	Model:         ScoringKSF,
	StartingScore: 24,
	EasyPoints:    3,
	MediumPoints:  4,
	HardPoints:    5,
	WrongPenalty:  -1,
	MinScore:      0,
	MaxScore:      120,
}

// USAScoring is the Math Kangaroo USA preset: no starting credit, no penalty.
var USAScoring = ScoringConfig{
	Model:         ScoringUSA,
	StartingScore: 0,
	EasyPoints:    3,
	MediumPoints:  4,
	HardPoints:    5,
	WrongPenalty:  0,
	MinScore:      0,
	MaxScore:      96,
}

// PointsFor returns the points awarded for a correct answer of the given tier.
// Unknown tiers score as hard, matching the fallthrough of the tier switch.
func (c ScoringConfig) PointsFor(d Difficulty) int {
	switch d {
	case DifficultyEasy:
		return c.EasyPoints
	case DifficultyMedium:
		return c.MediumPoints
	default:
		return c.HardPoints
	}
}

// Clamp bounds score into [MinScore, MaxScore].
func (c ScoringConfig) Clamp(score int) int {
	if score < c.MinScore {
		return c.MinScore
	}
	if score > c.MaxScore {
		return c.MaxScore
	}
	return score
}

// ScoringFor resolves a preset by model name. The second result is false for unknown names.
func ScoringFor(model ScoringModel) (ScoringConfig, bool) {
	switch model {
	case ScoringKSF:
		return KSFScoring, true
	case ScoringUSA:
		return USAScoring, true
	}
	return ScoringConfig{}, false
}
