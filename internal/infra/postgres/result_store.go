package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"kanguru-service/internal/domain"
)

// ResultStore persists completed test results. The full result is kept as
// JSONB next to the columns used for lookups.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) Save(ctx context.Context, ownerID string, result domain.TestResult) (string, error) {
	result.ID = uuid.NewString()
	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO test_results (id, owner_id, test_id, score, completed_at, data) VALUES ($1, $2, $3, $4, $5, $6)`,
		result.ID, ownerID, result.TestID, result.Score, result.CompletedAt, data,
	)
	if err != nil {
		return "", fmt.Errorf("insert result: %w", err)
	}
	return result.ID, nil
}

func (s *ResultStore) List(ctx context.Context, ownerID string, max int) ([]domain.TestResult, error) {
	results := []domain.TestResult{}
	if max <= 0 {
		return results, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM test_results WHERE owner_id=$1 ORDER BY completed_at DESC LIMIT $2`,
		ownerID, max,
	)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var result domain.TestResult
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}
