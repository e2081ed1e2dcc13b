package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"kanguru-service/internal/domain"
)

// TestLoader fetches mock tests from a backing store (e.g., Postgres).
type TestLoader interface {
	LoadTest(ctx context.Context, testID string) (domain.MockTest, error)
	ListTests(ctx context.Context) ([]domain.MockTest, error)
}

// TestRepository caches mock tests with TTL to avoid repeated DB hits.
type TestRepository struct {
	loader TestLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedTest
}

type cachedTest struct {
	test      domain.MockTest
	expiresAt time.Time
}

func NewTestRepository(loader TestLoader, ttl time.Duration) *TestRepository {
	return &TestRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedTest),
	}
}

func (r *TestRepository) GetTest(ctx context.Context, testID string) (domain.MockTest, error) {
	if test, ok := r.lookup(testID); ok {
		return test, nil
	}

	result, err, _ := r.sf.Do(testID, func() (interface{}, error) {
		if test, ok := r.lookup(testID); ok {
			return test, nil
		}

		test, err := r.loader.LoadTest(ctx, testID)
		if err != nil {
			return domain.MockTest{}, err
		}

		expiresAt := r.clock().Add(r.ttlWithJitter())
		r.mu.Lock()
		r.cache[testID] = cachedTest{test: test, expiresAt: expiresAt}
		r.mu.Unlock()
		return test, nil
	})
	if err != nil {
		return domain.MockTest{}, err
	}
	return result.(domain.MockTest), nil
}

// ListTests always asks the loader so new tests show up without waiting for a TTL.
func (r *TestRepository) ListTests(ctx context.Context) ([]domain.MockTest, error) {
	return r.loader.ListTests(ctx)
}

func (r *TestRepository) lookup(testID string) (domain.MockTest, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.cache[testID]; ok && entry.expiresAt.After(now) {
		return entry.test, true
	}
	return domain.MockTest{}, false
}

func (r *TestRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	r.mu.Lock()
	defer r.mu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticTestLoader is a loader backed by an in-memory map (bundled content, tests).
type StaticTestLoader struct {
	tests map[string]domain.MockTest
}

func NewStaticTestLoader(tests map[string]domain.MockTest) *StaticTestLoader {
	return &StaticTestLoader{tests: tests}
}

func (l *StaticTestLoader) LoadTest(_ context.Context, testID string) (domain.MockTest, error) {
	if test, ok := l.tests[testID]; ok {
		return test, nil
	}
	return domain.MockTest{}, domain.ErrTestNotFound
}

func (l *StaticTestLoader) ListTests(_ context.Context) ([]domain.MockTest, error) {
	out := make([]domain.MockTest, 0, len(l.tests))
	for _, test := range l.tests {
		out = append(out, test)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
