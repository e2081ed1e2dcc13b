package memory

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"kanguru-service/internal/app"
	"kanguru-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()
	tests := NewTestRepository(NewStaticTestLoader(map[string]domain.MockTest{"mock-1": sampleTest()}), time.Minute)
	service := app.NewTestService(store, tests, nil, domain.KSFScoring, zerolog.Nop())

	runner := service.Open("u1")
	if runner == nil {
		t.Fatalf("expected runner")
	}
	if got, ok := store.Get("u1"); !ok || got != runner {
		t.Fatalf("expected runner present")
	}
	if again := service.Open("u1"); again != runner {
		t.Fatalf("expected the same runner on reopen")
	}
	if len(store.All()) != 1 {
		t.Fatalf("expected one runner, got %d", len(store.All()))
	}

	service.Close("u1")
	if _, ok := store.Get("u1"); ok {
		t.Fatalf("expected runner removed")
	}
	if !runner.Closed() {
		t.Fatalf("expected runner stopped")
	}
}
