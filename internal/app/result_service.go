package app

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"kanguru-service/internal/domain"
)

const (
	defaultResultLimit = 20
	maxResultLimit     = 100
)

// ResultService stores finished tests and keeps the profile statistics.
type ResultService struct {
	results  ResultStore
	profiles ProfileStore
	log      zerolog.Logger
}

func NewResultService(results ResultStore, profiles ProfileStore, log zerolog.Logger) *ResultService {
	return &ResultService{
		results:  results,
		profiles: profiles,
		log:      log.With().Str("component", "result_service").Logger(),
	}
}

// Record saves result for uid and folds its score into the profile stats.
// Users without a profile only get the result stored.
func (s *ResultService) Record(ctx context.Context, uid string, result domain.TestResult) (domain.TestResult, error) {
	id, err := s.results.Save(ctx, uid, result)
	if err != nil {
		return domain.TestResult{}, fmt.Errorf("save result: %w", err)
	}
	result.ID = id

	err = s.profiles.UpdateProfile(ctx, uid, func(p *domain.UserProfile) error {
		applyTestStats(&p.Stats, result.Score)
		return nil
	})
	if errors.Is(err, domain.ErrProfileNotFound) {
		s.log.Debug().Str("uid", uid).Msg("no profile for result")
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("update stats: %w", err)
	}
	return result, nil
}

// List returns the latest results of uid. A non-positive limit selects the
// default of 20; limits are capped at 100.
func (s *ResultService) List(ctx context.Context, uid string, limit int) ([]domain.TestResult, error) {
	if limit <= 0 {
		limit = defaultResultLimit
	}
	if limit > maxResultLimit {
		limit = maxResultLimit
	}
	results, err := s.results.List(ctx, uid, limit)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return results, nil
}

// applyTestStats counts one more test, keeping the running mean to one decimal.
func applyTestStats(stats *domain.UserStats, score int) {
	total := stats.TotalTests + 1
	mean := (stats.AverageScore*float64(stats.TotalTests) + float64(score)) / float64(total)
	stats.TotalTests = total
	stats.AverageScore = math.Round(mean*10) / 10
	if score > stats.BestScore {
		stats.BestScore = score
	}
}
