package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"kanguru-service/internal/app"
	"kanguru-service/internal/content"
	"kanguru-service/internal/domain"
	"kanguru-service/internal/infra/memory"
)

type testEnv struct {
	server   *httptest.Server
	auth     *app.AuthService
	tests    *app.TestService
	results  *memory.ResultStore
	profiles *memory.ProfileStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	catalog, err := content.Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	log := zerolog.Nop()

	profiles := memory.NewProfileStore()
	results := memory.NewResultStore()
	auth := app.NewAuthService(profiles)
	resultService := app.NewResultService(results, profiles, log)
	testRepo := memory.NewTestRepository(memory.NewStaticTestLoader(catalog.Tests()), time.Minute)
	tests := app.NewTestService(memory.NewSessionStore(), testRepo, resultService, domain.KSFScoring, log)
	practice := app.NewPracticeService(catalog, profiles, log)
	tips := app.NewTipService(catalog)

	mux := http.NewServeMux()
	NewAPIHandler(auth, tests, resultService, practice, tips, log).Register(mux)
	mux.HandleFunc("/ws/test", NewWSHandler(tests, auth, log).ServeWS)

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		tests.CloseAll()
	})
	return &testEnv{server: server, auth: auth, tests: tests, results: results, profiles: profiles}
}
