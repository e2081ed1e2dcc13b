package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"kanguru-service/internal/domain"
)

// TestLoader loads mock test JSONB from Postgres.
type TestLoader struct {
	pool *pgxpool.Pool
}

func NewTestLoader(pool *pgxpool.Pool) *TestLoader {
	return &TestLoader{pool: pool}
}

func (l *TestLoader) LoadTest(ctx context.Context, testID string) (domain.MockTest, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM mock_tests WHERE id=$1`, testID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.MockTest{}, fmt.Errorf("load test %s: %w", testID, domain.ErrTestNotFound)
	}
	if err != nil {
		return domain.MockTest{}, fmt.Errorf("load test: %w", err)
	}
	var test domain.MockTest
	if err := json.Unmarshal(raw, &test); err != nil {
		return domain.MockTest{}, fmt.Errorf("unmarshal test: %w", err)
	}
	return test, nil
}

func (l *TestLoader) ListTests(ctx context.Context) ([]domain.MockTest, error) {
	rows, err := l.pool.Query(ctx, `SELECT data FROM mock_tests ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}
	defer rows.Close()

	tests := []domain.MockTest{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var test domain.MockTest
		if err := json.Unmarshal(raw, &test); err != nil {
			return nil, fmt.Errorf("unmarshal test: %w", err)
		}
		tests = append(tests, test)
	}
	return tests, rows.Err()
}
