package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"kanguru-service/internal/domain"
)

// ResultStore keeps results in one sorted set per user, scored by completion
// time in milliseconds: ZADD results:{uid} {completedAt} {json}
type ResultStore struct {
	client *redis.Client
}

func NewResultStore(client *redis.Client) *ResultStore {
	return &ResultStore{client: client}
}

func (s *ResultStore) Save(ctx context.Context, ownerID string, result domain.TestResult) (string, error) {
	result.ID = uuid.NewString()
	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	err = s.client.ZAdd(ctx, s.key(ownerID), redis.Z{
		Score:  float64(result.CompletedAt.UnixMilli()),
		Member: data,
	}).Err()
	if err != nil {
		return "", err
	}
	return result.ID, nil
}

func (s *ResultStore) List(ctx context.Context, ownerID string, max int) ([]domain.TestResult, error) {
	if max <= 0 {
		return []domain.TestResult{}, nil
	}
	members, err := s.client.ZRevRange(ctx, s.key(ownerID), 0, int64(max-1)).Result()
	if err != nil && !isMiss(err) {
		return nil, err
	}
	out := make([]domain.TestResult, 0, len(members))
	for _, member := range members {
		var result domain.TestResult
		if err := json.Unmarshal([]byte(member), &result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		out = append(out, result)
	}
	return out, nil
}

func (s *ResultStore) key(ownerID string) string {
	return "results:" + ownerID
}
