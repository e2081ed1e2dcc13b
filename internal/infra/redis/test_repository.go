package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"kanguru-service/internal/domain"
)

// TestLoader fetches mock tests from a backing store (e.g., Postgres).
type TestLoader interface {
	LoadTest(ctx context.Context, testID string) (domain.MockTest, error)
	ListTests(ctx context.Context) ([]domain.MockTest, error)
}

// TestRepository caches mock tests in Redis and falls back to a loader on cache miss.
// Tests are stored as: SET mocktest:{testID} {json} EX ttl
type TestRepository struct {
	client *redis.Client
	loader TestLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewTestRepository(client *redis.Client, loader TestLoader, ttl time.Duration) *TestRepository {
	return &TestRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *TestRepository) GetTest(ctx context.Context, testID string) (domain.MockTest, error) {
	if test, ok := r.cached(ctx, testID); ok {
		return test, nil
	}

	result, err, _ := r.sf.Do(testID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if test, ok := r.cached(ctx, testID); ok {
			return test, nil
		}

		test, err := r.loader.LoadTest(ctx, testID)
		if err != nil {
			return domain.MockTest{}, err
		}

		data, err := json.Marshal(test)
		if err != nil {
			return domain.MockTest{}, err
		}
		// best-effort fill; a failed write only costs another load
		_ = r.client.Set(ctx, r.key(testID), data, r.ttlWithJitter()).Err()
		return test, nil
	})
	if err != nil {
		return domain.MockTest{}, err
	}
	return result.(domain.MockTest), nil
}

// ListTests reads through to the loader.
func (r *TestRepository) ListTests(ctx context.Context) ([]domain.MockTest, error) {
	return r.loader.ListTests(ctx)
}

// Invalidate drops the cached copy of testID.
func (r *TestRepository) Invalidate(ctx context.Context, testID string) error {
	return r.client.Del(ctx, r.key(testID)).Err()
}

func (r *TestRepository) cached(ctx context.Context, testID string) (domain.MockTest, bool) {
	raw, err := r.client.Get(ctx, r.key(testID)).Bytes()
	if err != nil {
		return domain.MockTest{}, false
	}
	var test domain.MockTest
	if err := json.Unmarshal(raw, &test); err != nil {
		return domain.MockTest{}, false
	}
	return test, true
}

func (r *TestRepository) key(testID string) string {
	return "mocktest:" + testID
}

func (r *TestRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// isMiss reports whether err is a plain cache miss.
func isMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}
